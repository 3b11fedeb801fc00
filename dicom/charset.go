package dicom

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// CodingSystem defines how a []byte is translated into a utf8 string.
type CodingSystem struct {
	// VR="PN" is the only place where we potentially use all three
	// decoders. For all other VR types, only Ideographic decoder is used.
	// See P3.5, 6.2.
	//
	// P3.5 6.1 is supposed to define the coding systems in detail. The
	// mapping below follows what pydicom charset.py does.
	Alphabetic  *encoding.Decoder
	Ideographic *encoding.Decoder
	Phonetic    *encoding.Decoder

	// Encoder converts utf8 strings back into the first character set when
	// writing. nil means the strings are written as is.
	Encoder *encoding.Encoder
}

// CodingSystemType selects one of the decoders of a CodingSystem.
type CodingSystemType int

const (
	// See CodingSystem for explanations of these coding-system types.
	AlphabeticCodingSystem CodingSystemType = iota
	IdeographicCodingSystem
	PhoneticCodingSystem
)

// Mapping of DICOM charset name to golang encoding/htmlindex name. "" means
// 7bit ascii.
var htmlEncodingNames = map[string]string{
	"ISO 2022 IR 6":   "",
	"ISO_IR 6":        "",
	"ISO_IR 13":       "shift_jis",
	"ISO 2022 IR 13":  "shift_jis",
	"ISO_IR 101":      "iso-8859-2",
	"ISO 2022 IR 101": "iso-8859-2",
	"ISO_IR 109":      "iso-8859-3",
	"ISO 2022 IR 109": "iso-8859-3",
	"ISO_IR 110":      "iso-8859-4",
	"ISO 2022 IR 110": "iso-8859-4",
	"ISO_IR 126":      "iso-ir-126",
	"ISO 2022 IR 126": "iso-ir-126",
	"ISO_IR 127":      "iso-ir-127",
	"ISO 2022 IR 127": "iso-ir-127",
	"ISO_IR 138":      "iso-ir-138",
	"ISO 2022 IR 138": "iso-ir-138",
	"ISO_IR 144":      "iso-ir-144",
	"ISO 2022 IR 144": "iso-ir-144",
	"ISO_IR 148":      "iso-ir-148",
	"ISO 2022 IR 148": "iso-ir-148",
	"ISO 2022 IR 149": "euc-kr",
	"ISO 2022 IR 159": "iso-2022-jp",
	"ISO_IR 166":      "iso-ir-166",
	"ISO 2022 IR 166": "iso-ir-166",
	"ISO 2022 IR 87":  "iso-2022-jp",
	"ISO_IR 192":      "utf-8",
	"GB18030":         "gb18030",
	"GBK":             "gbk",
}

// Latin-1 is not in htmlindex under a DICOM-friendly alias (htmlindex maps it
// to windows-1252), so it is taken from charmap directly.
var charmapEncodings = map[string]encoding.Encoding{
	"ISO_IR 100":      charmap.ISO8859_1,
	"ISO 2022 IR 100": charmap.ISO8859_1,
}

func lookupEncoding(name string) (encoding.Encoding, bool) {
	name = strings.TrimSpace(name)
	if enc, ok := charmapEncodings[name]; ok {
		return enc, true
	}
	htmlName, ok := htmlEncodingNames[name]
	if !ok {
		return nil, false
	}
	if htmlName == "" {
		return nil, true
	}
	enc, err := htmlindex.Get(htmlName)
	if err != nil {
		// TODO: iso-ir-166 has no htmlindex alias, map it to windows-874.
		return nil, false
	}
	return enc, true
}

// ParseSpecificCharacterSet converts DICOM character encoding names, such as
// "ISO_IR 100" to golang decoders. It returns a zero CodingSystem for the
// default (7bit ASCII) encoding. Unknown names are returned in unknown so the
// caller can report them; they are treated as utf-8. Cf. P3.2 D.6.2.
func ParseSpecificCharacterSet(elem *Element) (cs CodingSystem, unknown []string, err error) {
	// Set the []byte -> string decoder for the rest of the file. It's sad
	// that SpecificCharacterSet isn't part of metadata, but is part of
	// regular attrs, so we need to watch out for multiple occurrences of
	// this type of elements.
	encodingNames, err := elem.GetStrings()
	if err != nil {
		return CodingSystem{}, nil, err
	}
	var decoders []*encoding.Decoder
	var encoder *encoding.Encoder
	for i, name := range encodingNames {
		enc, known := lookupEncoding(name)
		if !known {
			unknown = append(unknown, name)
		}
		var d *encoding.Decoder
		if enc != nil {
			d = enc.NewDecoder()
			if i == 0 {
				encoder = enc.NewEncoder()
			}
		}
		decoders = append(decoders, d)
	}
	switch len(decoders) {
	case 0:
		return CodingSystem{}, unknown, nil
	case 1:
		return CodingSystem{decoders[0], decoders[0], decoders[0], encoder}, unknown, nil
	case 2:
		return CodingSystem{decoders[0], decoders[1], decoders[1], encoder}, unknown, nil
	default:
		return CodingSystem{decoders[0], decoders[1], decoders[2], encoder}, unknown, nil
	}
}

func (cs CodingSystem) decoder(csType CodingSystemType) *encoding.Decoder {
	switch csType {
	case AlphabeticCodingSystem:
		return cs.Alphabetic
	case PhoneticCodingSystem:
		return cs.Phonetic
	default:
		return cs.Ideographic
	}
}

// Decode converts raw bytes into a utf8 string using the selected decoder.
// Bytes that cannot be decoded are returned unchanged.
func (cs CodingSystem) Decode(csType CodingSystemType, data []byte) string {
	d := cs.decoder(csType)
	if d == nil {
		return string(data)
	}
	out, err := d.Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// DecodePersonName decodes the alphabetic, ideographic and phonetic
// component groups of a PN value with their respective decoders.
func (cs CodingSystem) DecodePersonName(data []byte) string {
	groups := strings.SplitN(string(data), "=", 3)
	types := []CodingSystemType{AlphabeticCodingSystem, IdeographicCodingSystem, PhoneticCodingSystem}
	for i, group := range groups {
		groups[i] = cs.Decode(types[i], []byte(group))
	}
	return strings.Join(groups, "=")
}

// Encode converts a utf8 string into the bytes of the first character set.
func (cs CodingSystem) Encode(s string) []byte {
	if cs.Encoder == nil {
		return []byte(s)
	}
	out, err := cs.Encoder.Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}
