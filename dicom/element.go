package dicom

import (
	"fmt"
	"strconv"
	"strings"
)

// Element is a single DICOM data element.
type Element struct {
	// Tag is a pair of <group, element>. See tag.go for possible values.
	Tag Tag

	// VR defines the encoding of Value[] in two-letter alphabets, e.g.,
	// "AE", "UL". See P3.5 6.2.
	//
	// In a conformant DICOM file, the VR value of an element is determined
	// by its Tag, so this field is redundant. Still, a non-conformant file
	// with explicit VR encoding may have an element with VR that's
	// different from the standard's. In such case, this library honors the
	// VR value found in the file, and this field stores the VR used for
	// parsing Value[].
	VR string

	// UndefinedLength is true if, in the DICOM file, the element is encoded
	// as having undefined length, and is delimited by end-sequence or
	// end-item element. This flag is meaningful only if VR=="SQ" or the
	// element holds encapsulated pixel data.
	UndefinedLength bool

	// List of values in the element. Their types depends on VR:
	//
	// If VR=="SQ", Value[i] is a *DataSet, one per item.
	// If Tag==TagPixelData, len(Value)==1, and Value[0] is either []byte
	//    (native pixels) or *PixelDataInfo (encapsulated fragments).
	// If VR=="OW", "OB", "UN" etc, then len(Value)==1, and Value[0] is []byte.
	// If VR=="LT", "ST", "UT" or "UR", then len(Value)==1, and Value[0] is a string.
	// If VR=="AT", then Value[] is a list of Tags.
	// If VR=="US", Value[] is a list of uint16s
	// If VR=="UL", Value[] is a list of uint32s
	// If VR=="SS", Value[] is a list of int16s
	// If VR=="SL", Value[] is a list of int32s
	// If VR=="FL", Value[] is a list of float32s
	// If VR=="FD", Value[] is a list of float64s
	// Else, Value[] is a list of strings.
	Value []interface{}
}

// PixelDataInfo is the value of an encapsulated PixelData element. P3.5 A.4.
type PixelDataInfo struct {
	// Offsets is the basic offset table. It may be empty.
	Offsets []uint32
	// Fragments are the payloads of the items that follow the offset table.
	Fragments [][]byte
}

// NewElement creates an element with the given tag and values. The VR is
// taken from the dictionary, or "UN" for unknown tags.
func NewElement(tag Tag, values ...interface{}) *Element {
	vr := "UN"
	if info, err := FindTag(tag); err == nil {
		vr = info.VR
	} else if tag.IsPrivateCreator() {
		vr = "LO"
	}
	return &Element{Tag: tag, VR: vr, Value: values}
}

// Keyword returns the dictionary keyword of the element, e.g. "PatientName",
// or "" for tags not in the dictionary.
func (e *Element) Keyword() string {
	if info, err := FindTag(e.Tag); err == nil {
		return info.Keyword
	}
	return ""
}

// Name returns the human readable name of the element, e.g. "Patient's Name".
// Private and unknown tags get a generic name.
func (e *Element) Name() string {
	if info, err := FindTag(e.Tag); err == nil {
		return info.Name
	}
	if e.Tag.IsPrivateCreator() {
		return "Private Creator"
	}
	if e.Tag.IsPrivate() {
		return "Private tag data"
	}
	return ""
}

// IsSequence returns true if the element holds nested data sets.
func (e *Element) IsSequence() bool {
	return e.VR == "SQ"
}

// Items returns the nested data sets of a sequence element, or nil.
func (e *Element) Items() []*DataSet {
	if !e.IsSequence() {
		return nil
	}
	items := make([]*DataSet, 0, len(e.Value))
	for _, v := range e.Value {
		if ds, ok := v.(*DataSet); ok {
			items = append(items, ds)
		}
	}
	return items
}

// GetUInt32 gets a uint32 value from an element. It returns an error if the
// element contains zero or >1 values, or the value is not a uint32.
func (e *Element) GetUInt32() (uint32, error) {
	if len(e.Value) != 1 {
		return 0, fmt.Errorf("found %d value(s) in getuint32 (expect 1): %v", len(e.Value), e)
	}
	v, ok := e.Value[0].(uint32)
	if !ok {
		return 0, fmt.Errorf("uint32 value not found in %v", e)
	}
	return v, nil
}

// GetUInt16 gets a uint16 value from an element. It returns an error if the
// element contains zero or >1 values, or the value is not a uint16.
func (e *Element) GetUInt16() (uint16, error) {
	if len(e.Value) != 1 {
		return 0, fmt.Errorf("found %d value(s) in getuint16 (expect 1): %v", len(e.Value), e)
	}
	v, ok := e.Value[0].(uint16)
	if !ok {
		return 0, fmt.Errorf("uint16 value not found in %v", e)
	}
	return v, nil
}

// GetInt gets the first value of an element as an int. Integer VRs and
// numeric strings (IS, DS) are accepted.
func (e *Element) GetInt() (int, error) {
	if len(e.Value) == 0 {
		return 0, fmt.Errorf("no value found in getint: %v", e)
	}
	switch v := e.Value[0].(type) {
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("integer value not found in %v: %w", e, err)
		}
		return int(f), nil
	}
	return 0, fmt.Errorf("integer value not found in %v", e)
}

// GetString gets a string value from an element. It returns an error if the
// element contains zero or >1 values, or the value is not a string.
func (e *Element) GetString() (string, error) {
	if len(e.Value) != 1 {
		return "", fmt.Errorf("found %d value(s) in getstring (expect 1): %v", len(e.Value), e.String())
	}
	v, ok := e.Value[0].(string)
	if !ok {
		return "", fmt.Errorf("string value not found in %v", e)
	}
	return v, nil
}

// MustGetString is similar to GetString(), but panics on error.
func (e *Element) MustGetString() string {
	v, err := e.GetString()
	if err != nil {
		panic(err)
	}
	return v
}

// GetStrings gets the element value as list of strings. Returns an error if
// the value is of any other type.
func (e *Element) GetStrings() ([]string, error) {
	var values []string
	for _, v := range e.Value {
		v, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("string value not found in %v", e.String())
		}
		values = append(values, v)
	}
	return values, nil
}

// StringValues renders every value of the element as a string. Sequence items
// and pixel data are skipped.
func (e *Element) StringValues() []string {
	var values []string
	for _, v := range e.Value {
		switch v := v.(type) {
		case string:
			values = append(values, v)
		case []byte:
			values = append(values, strings.TrimRight(string(v), " \x00"))
		case Tag:
			values = append(values, v.String())
		case *DataSet, *PixelDataInfo:
		default:
			values = append(values, fmt.Sprintf("%v", v))
		}
	}
	return values
}

// StringValue returns all values joined by the DICOM value delimiter '\'.
func (e *Element) StringValue() string {
	return strings.Join(e.StringValues(), "\\")
}

// IsEmpty returns true if the element holds no value, or only empty strings.
func (e *Element) IsEmpty() bool {
	for _, v := range e.Value {
		switch v := v.(type) {
		case string:
			if v != "" {
				return false
			}
		case []byte:
			if len(v) > 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// SetString parses s according to the element's VR and replaces the value.
// Multiple values are separated by '\'. An empty string clears the value.
func (e *Element) SetString(s string) error {
	values, err := ParseValue(e.Tag, e.VR, s)
	if err != nil {
		return err
	}
	e.Value = values
	return nil
}

// ParseValue converts the textual form of a value into the Go types the VR
// stores.
func ParseValue(tag Tag, vr string, s string) ([]interface{}, error) {
	kind := GetVRKind(tag, vr)
	switch kind {
	case VRSequence:
		return nil, fmt.Errorf("cannot set %s from a string", TagString(tag))
	case VRBytes, VRPixelData:
		if s == "" {
			return nil, nil
		}
		return []interface{}{[]byte(s)}, nil
	case VRString:
		if s == "" {
			return nil, nil
		}
		return []interface{}{s}, nil
	}
	if s == "" {
		return nil, nil
	}
	var values []interface{}
	for _, part := range strings.Split(s, "\\") {
		v, err := parseScalar(kind, strings.TrimSpace(part), part)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", TagString(tag), err)
		}
		values = append(values, v)
	}
	return values, nil
}

func parseScalar(kind VRKind, trimmed, raw string) (interface{}, error) {
	switch kind {
	case VRUInt16List:
		v, err := strconv.ParseUint(trimmed, 10, 16)
		return uint16(v), err
	case VRUInt32List:
		v, err := strconv.ParseUint(trimmed, 10, 32)
		return uint32(v), err
	case VRInt16List:
		v, err := strconv.ParseInt(trimmed, 10, 16)
		return int16(v), err
	case VRInt32List:
		v, err := strconv.ParseInt(trimmed, 10, 32)
		return int32(v), err
	case VRFloat32List:
		v, err := strconv.ParseFloat(trimmed, 32)
		return float32(v), err
	case VRFloat64List:
		v, err := strconv.ParseFloat(trimmed, 64)
		return v, err
	case VRTagList:
		return ParseTag(trimmed)
	default:
		return raw, nil
	}
}

func elementString(e *Element, nestLevel int) string {
	s := strings.Repeat(" ", nestLevel)
	sVl := ""
	if e.UndefinedLength {
		sVl = "UNDEF"
	}
	s = fmt.Sprintf("%s %s %s %s ", s, TagString(e.Tag), e.VR, sVl)
	if e.VR != "SQ" {
		var sv string
		switch v := firstValue(e).(type) {
		case []byte:
			sv = fmt.Sprintf("%d bytes", len(v))
		case *PixelDataInfo:
			sv = fmt.Sprintf("%d fragments", len(v.Fragments))
		default:
			sv = fmt.Sprintf("%v", e.Value)
		}
		if len(sv) > 50 {
			sv = sv[:50] + "(...)"
		}
		s += sv
	} else {
		s += " seq:"
		for i, item := range e.Items() {
			s += fmt.Sprintf("\n%s  item %d:", strings.Repeat(" ", nestLevel), i)
			for _, sub := range item.Elements {
				s += "\n" + elementString(sub, nestLevel+2)
			}
		}
	}
	return s
}

func firstValue(e *Element) interface{} {
	if len(e.Value) == 0 {
		return nil
	}
	return e.Value[0]
}

// Stringer
func (e *Element) String() string {
	return elementString(e, 0)
}

// Copy returns a deep copy of the element, including nested sequence items.
func (e *Element) Copy() *Element {
	c := &Element{Tag: e.Tag, VR: e.VR, UndefinedLength: e.UndefinedLength}
	for _, v := range e.Value {
		switch v := v.(type) {
		case *DataSet:
			c.Value = append(c.Value, v.Copy())
		case []byte:
			c.Value = append(c.Value, append([]byte(nil), v...))
		default:
			c.Value = append(c.Value, v)
		}
	}
	return c
}
