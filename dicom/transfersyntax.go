package dicom

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// IsImplicitVR defines whether a 2-character VR tag is emitted with each data
// element.
type IsImplicitVR int

const (
	// ImplicitVR encodes a data element without a VR tag. The reader
	// consults the static tag->VR mapping to infer the VR type.
	ImplicitVR IsImplicitVR = iota

	// ExplicitVR encodes a data element with its VR tag.
	ExplicitVR

	// UnknownVR is to be used when you never encode or decode DataElement.
	UnknownVR
)

// Transfer syntax UIDs. P3.5 10.
const (
	ImplicitVRLittleEndian         = "1.2.840.10008.1.2"
	ExplicitVRLittleEndian         = "1.2.840.10008.1.2.1"
	ExplicitVRBigEndian            = "1.2.840.10008.1.2.2"
	DeflatedExplicitVRLittleEndian = "1.2.840.10008.1.2.1.99"
)

// StandardTransferSyntaxes lists the transfer syntaxes with native pixel
// encoding.
var StandardTransferSyntaxes = []string{
	ImplicitVRLittleEndian,
	ExplicitVRLittleEndian,
	ExplicitVRBigEndian,
	DeflatedExplicitVRLittleEndian,
}

const transferSyntaxPrefix = "1.2.840.10008.1.2"

// CanonicalTransferSyntaxUID returns the transfer syntax from
// StandardTransferSyntaxes whose data set encoding matches uid. Compressed
// (encapsulated) syntaxes all use explicit VR little endian. Returns an error
// if uid is not a transfer syntax.
func CanonicalTransferSyntaxUID(uid string) (string, error) {
	uid = strings.TrimRight(uid, "\x00 ")
	switch uid {
	case ImplicitVRLittleEndian, ExplicitVRLittleEndian, ExplicitVRBigEndian, DeflatedExplicitVRLittleEndian:
		return uid, nil
	}
	if strings.HasPrefix(uid, transferSyntaxPrefix+".") {
		return ExplicitVRLittleEndian, nil
	}
	return "", fmt.Errorf("UID '%s' is not a transfer syntax", uid)
}

// IsEncapsulated returns true if pixel data in the given syntax is stored as
// a sequence of fragments.
func IsEncapsulated(uid string) bool {
	canonical, err := CanonicalTransferSyntaxUID(uid)
	return err == nil && canonical == ExplicitVRLittleEndian && strings.TrimRight(uid, "\x00 ") != ExplicitVRLittleEndian
}

// ParseTransferSyntaxUID returns the byte order and VR encoding of the data
// set for the given transfer syntax uid, e.g. (LittleEndian, ImplicitVR) for
// 1.2.840.10008.1.2 or (LittleEndian, ExplicitVR) for 1.2.840.10008.1.2.4.50.
func ParseTransferSyntaxUID(uid string) (bo binary.ByteOrder, implicit IsImplicitVR, err error) {
	canonical, err := CanonicalTransferSyntaxUID(uid)
	if err != nil {
		return nil, UnknownVR, err
	}
	switch canonical {
	case ImplicitVRLittleEndian:
		return binary.LittleEndian, ImplicitVR, nil
	case ExplicitVRBigEndian:
		return binary.BigEndian, ExplicitVR, nil
	default:
		return binary.LittleEndian, ExplicitVR, nil
	}
}
