package deid

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
	"github.com/sirupsen/logrus"

	"github.com/gillesdemey/go-deid/dicom"
)

// Value directive prefixes.
const (
	DirectiveVar     = "var"
	DirectiveFunc    = "func"
	DirectiveDeidFn  = "deid_func"
	directiveDivider = ":"
)

// Call carries the arguments of a func: or deid_func: invocation.
type Call struct {
	File *dicom.File
	// Raw is the value directive, e.g. "deid_func:jitter days=3".
	Raw string
	// Field is the field the action targets. It is nil when ADD creates a
	// new element.
	Field     *Field
	Variables Variables
	// Extras holds the k=v pairs following a deid_func: name.
	Extras map[string]string
	Logger *logrus.Entry
}

// Func generates a value, or decides whether a gated action proceeds. It
// returns nil for "no value". Strings, string slices and numbers become
// element values; a bool gates REMOVE and BLANK.
type Func func(call Call) interface{}

// Funcs is a table of named functions.
type Funcs map[string]Func

// Variables holds the per-image values and functions referenced by var: and
// func: directives.
type Variables map[string]interface{}

// isDirective reports whether raw is a var:, func: or deid_func: value.
func isDirective(raw string) bool {
	kind, _, ok := strings.Cut(raw, directiveDivider)
	if !ok {
		return false
	}
	switch strings.ToLower(kind) {
	case DirectiveVar, DirectiveFunc, DirectiveDeidFn:
		return true
	}
	return false
}

// resolveValue turns a value directive into a value. Anything but var:,
// func: and deid_func: is a literal.
func (p *DicomParser) resolveValue(raw string, field *Field) interface{} {
	if raw == "" {
		return nil
	}
	kind, rest, ok := strings.Cut(raw, directiveDivider)
	if !ok {
		return raw
	}

	switch strings.ToLower(kind) {
	case DirectiveVar:
		value, ok := p.variables[rest]
		if !ok {
			p.logger.Warnf("%s is not a defined variable", rest)
			return nil
		}
		return value

	case DirectiveFunc:
		fn, ok := asFunc(p.variables[rest])
		if !ok {
			p.logger.Warnf("%s is not a defined function", rest)
			return nil
		}
		return fn(p.call(raw, field, nil))

	case DirectiveDeidFn:
		name, extras, err := parseExtras(rest)
		if err != nil {
			p.logger.Warnf("Cannot parse extras of %s: %v", raw, err)
			return nil
		}
		fn, ok := p.funcs[name]
		if !ok {
			p.logger.Warnf("%s is not a valid deid function", name)
			return nil
		}
		return fn(p.call(raw, field, extras))
	}
	return raw
}

func (p *DicomParser) call(raw string, field *Field, extras map[string]string) Call {
	return Call{
		File:      p.File,
		Raw:       raw,
		Field:     field,
		Variables: p.variables,
		Extras:    extras,
		Logger:    p.logger,
	}
}

func asFunc(v interface{}) (Func, bool) {
	switch fn := v.(type) {
	case Func:
		return fn, fn != nil
	case func(Call) interface{}:
		return fn, fn != nil
	}
	return nil, false
}

// parseExtras splits `name k1=v1 k2="a b"` into the function name and its
// keyword arguments.
func parseExtras(s string) (string, map[string]string, error) {
	words, err := shlex.Split(s)
	if err != nil {
		return "", nil, err
	}
	if len(words) == 0 {
		return "", nil, fmt.Errorf("missing function name")
	}
	extras := map[string]string{}
	for _, word := range words[1:] {
		k, v, ok := strings.Cut(word, "=")
		if !ok {
			return "", nil, fmt.Errorf("%q is not a key=value pair", word)
		}
		extras[k] = v
	}
	return words[0], extras, nil
}

// valueString renders a resolved value as element text. ok is false for nil
// and for values that cannot be stored, such as bools.
func valueString(v interface{}) (string, bool) {
	switch v := v.(type) {
	case nil, bool:
		return "", false
	case string:
		return v, true
	case []string:
		return strings.Join(v, "\\"), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}
