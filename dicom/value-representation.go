package dicom

import "strings"

// VRKind is the storage class of an element value. It decides the Go type
// held in Element.Value.
type VRKind int

const (
	// VRStringList means the element stores a list of strings
	VRStringList VRKind = iota
	// VRBytes means the element stores a []byte
	VRBytes
	// VRString means the element stores a string, without '\' splitting
	VRString
	// VRUInt16List means the element stores a list of uint16s
	VRUInt16List
	// VRUInt32List means the element stores a list of uint32s
	VRUInt32List
	// VRInt16List means the element stores a list of int16s
	VRInt16List
	// VRInt32List element stores a list of int32s
	VRInt32List
	// VRFloat32List element stores a list of float32s
	VRFloat32List
	// VRFloat64List element stores a list of float64s
	VRFloat64List
	// VRSequence means the element stores a list of *DataSet, one per item
	VRSequence
	// VRTagList element stores a list of Tags
	VRTagList
	// VRDate means the element stores a date string. See ParseDate.
	VRDate
	// VRPixelData means the element stores []byte (native) or *PixelDataInfo
	// (encapsulated)
	VRPixelData
)

// GetVRKind returns the storage class of values with the given tag and VR.
func GetVRKind(tag Tag, vr string) VRKind {
	if tag == TagPixelData {
		return VRPixelData
	}
	switch strings.ToUpper(vr) {
	case "DA":
		return VRDate
	case "AT":
		return VRTagList
	case "OW", "OB", "OD", "OF", "OL", "OV", "UN", "OX":
		return VRBytes
	case "LT", "ST", "UT", "UR":
		return VRString
	case "UL":
		return VRUInt32List
	case "SL":
		return VRInt32List
	case "US":
		return VRUInt16List
	case "SS":
		return VRInt16List
	case "FL":
		return VRFloat32List
	case "FD":
		return VRFloat64List
	case "SQ":
		return VRSequence
	default:
		return VRStringList
	}
}

// IsStringVR returns true for VRs whose values are text.
func IsStringVR(vr string) bool {
	switch GetVRKind(Tag{}, vr) {
	case VRStringList, VRString, VRDate:
		return true
	}
	return false
}

// IsBlankableVR reports whether a value of the given VR has an empty
// representation that can be written back, i.e. every text VR plus US and SS.
func IsBlankableVR(vr string) bool {
	if IsStringVR(vr) {
		return true
	}
	switch strings.ToUpper(vr) {
	case "US", "SS":
		return true
	}
	return false
}

// hasLongLength reports whether the VR is encoded with a reserved 2-byte
// field and a 32-bit length in explicit VR syntaxes. P3.5 7.1.2.
func hasLongLength(vr string) bool {
	switch vr {
	case "NA", "OB", "OD", "OF", "OL", "OV", "OW", "SQ", "SV", "UC", "UN", "UR", "UT", "UV":
		return true
	}
	return false
}

// paddingByte returns the byte used to pad odd length values to even length.
func paddingByte(vr string) byte {
	switch GetVRKind(Tag{}, vr) {
	case VRBytes, VRPixelData:
		return 0
	}
	if vr == "UI" {
		return 0
	}
	return ' '
}
