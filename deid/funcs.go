package deid

import (
	"crypto/sha512"
	"math/big"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

const (
	// DefaultUIDPrefix is the UUID-derived OID root, see PS3.5 B.2.
	DefaultUIDPrefix = "2.25."
	// DefaultOrgRoot roots the UIDs generated by dicom_uuid.
	DefaultOrgRoot = "1.2.826.0.1.3680043.9.7133"

	maxUIDLength = 64
)

var uidPrefixPattern = regexp.MustCompile(`^(0|[1-9][0-9]*)(\.(0|[1-9][0-9]*))*\.$`)

type jitterOptions struct {
	Days  int `mapstructure:"days"`
	Years int `mapstructure:"years"`
}

type uidOptions struct {
	Prefix          string `mapstructure:"prefix"`
	StableRemapping bool   `mapstructure:"stable_remapping"`
	OrgRoot         string `mapstructure:"org_root"`
}

// Builtins returns the functions available to deid_func: directives.
func Builtins() Funcs {
	return Funcs{
		"jitter":       jitterFunc,
		"basic_uuid":   basicUUID,
		"pydicom_uuid": pydicomUUID,
		"suffix_uuid":  suffixUUID,
		"dicom_uuid":   dicomUUID,
	}
}

func decodeExtras(call Call, out interface{}) bool {
	if err := mapstructure.WeakDecode(call.Extras, out); err != nil {
		call.Logger.Warnf("Invalid arguments in %s: %v", call.Raw, err)
		return false
	}
	return true
}

// jitterFunc shifts the field's date by days plus years*365.
func jitterFunc(call Call) interface{} {
	var opts jitterOptions
	if !decodeExtras(call, &opts) {
		return nil
	}
	if call.Field == nil {
		return nil
	}
	value, ok, err := jitterField(call.Field, opts.Days+opts.Years*365)
	if err != nil {
		call.Logger.Warnf("Cannot jitter %s: %v", call.Field.Name, err)
		return nil
	}
	if !ok {
		return nil
	}
	return value
}

func basicUUID(Call) interface{} {
	return uuid.NewString()
}

// pydicomUUID derives a UID from the original value of the field, so the
// same input maps to the same output across files. With
// stable_remapping=false the UID is random.
func pydicomUUID(call Call) interface{} {
	opts := uidOptions{Prefix: DefaultUIDPrefix, StableRemapping: true}
	if !decodeExtras(call, &opts) {
		return nil
	}
	if !uidPrefixPattern.MatchString(opts.Prefix) {
		call.Logger.Warnf("%s is not a valid UID prefix, it must end with a dot", opts.Prefix)
		return nil
	}

	var entropy []string
	if opts.StableRemapping && call.Field != nil {
		entropy = call.Field.Element.StringValues()
	}
	return GenerateUID(opts.Prefix, entropy)
}

// GenerateUID returns prefix followed by a decimal number, truncated to 64
// characters. The number is the SHA-512 of the joined entropy sources, or a
// random UUID when there are none.
func GenerateUID(prefix string, entropy []string) string {
	var n *big.Int
	if len(entropy) == 0 {
		u := uuid.New()
		n = new(big.Int).SetBytes(u[:])
	} else {
		sum := sha512.Sum512([]byte(strings.Join(entropy, "")))
		n = new(big.Int).SetBytes(sum[:])
	}
	return truncate(prefix+n.String(), maxUIDLength)
}

// suffixUUID joins the lower-cased field name and a random UUID.
func suffixUUID(call Call) interface{} {
	name := ""
	if call.Field != nil {
		name = call.Field.Element.Name()
		if name == "" {
			name = call.Field.Name
		}
	}
	return strings.ToLower(name) + "-" + uuid.NewString()
}

// dicomUUID roots a random UUID, as an integer, under org_root.
func dicomUUID(call Call) interface{} {
	opts := uidOptions{OrgRoot: DefaultOrgRoot}
	if !decodeExtras(call, &opts) {
		return nil
	}
	u := uuid.New()
	n := new(big.Int).SetBytes(u[:])
	return truncate(strings.TrimSuffix(opts.OrgRoot, ".")+"."+n.String(), maxUIDLength)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
