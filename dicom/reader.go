package dicom

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gillesdemey/go-deid/internal/log"
)

// ReadOptions defines how DataSets and Elements are parsed.
type ReadOptions struct {
	// DropPixelData stops reading at the PixelData element. The element is
	// not stored.
	DropPixelData bool

	// StopAtTag stops reading the file at the given tag. Nil means read
	// until the end.
	StopAtTag *Tag

	// Logger receives non-fatal decode warnings. Nil discards them.
	Logger *logrus.Entry
}

// UndefinedLength is the value length of elements delimited by an end marker.
const UndefinedLength uint32 = 0xffffffff

const (
	itemSeqGroup = 0xFFFE
	preambleSize = 128
)

// ReadFile reads a DICOM file from path.
func ReadFile(path string, options ReadOptions) (*File, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	st, err := in.Stat()
	if err != nil {
		return nil, err
	}
	f, err := Read(in, st.Size(), options)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ReadBytes reads a DICOM file held in memory.
func ReadBytes(data []byte, options ReadOptions) (*File, error) {
	return Read(bytes.NewReader(data), int64(len(data)), options)
}

// Read reads a DICOM file of the given size from "in".
func Read(in io.Reader, size int64, options ReadOptions) (*File, error) {
	logger := log.OrDiscard(options.Logger)
	d := NewDecoder(in, size, binary.LittleEndian, ExplicitVR)
	meta := ParseFileHeader(d)
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrokenFile, err)
	}
	file := &File{Meta: &DataSet{Elements: meta}, DataSet: &DataSet{}}
	uid := file.TransferSyntaxUID()
	bo, implicit, err := ParseTransferSyntaxUID(uid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrokenFile, err)
	}
	if uid == DeflatedExplicitVRLittleEndian {
		compressed := d.ReadBytes(int(d.Len()))
		inflated, err := io.ReadAll(flate.NewReader(bytes.NewReader(compressed)))
		if err != nil {
			return nil, fmt.Errorf("%w: inflate: %v", ErrBrokenFile, err)
		}
		d = NewBytesDecoder(inflated, bo, implicit)
	} else {
		d.PushTransferSyntax(bo, implicit)
		defer d.PopTransferSyntax()
	}
	r := &reader{d: d, options: options, logger: logger}
	for !d.EOF() {
		startLen := d.Len()
		elem := r.readElement()
		if d.Error() != nil {
			break
		}
		if elem == nil {
			break
		}
		if options.StopAtTag != nil && elem.Tag == *options.StopAtTag {
			break
		}
		if elem.Tag == TagSpecificCharacterSet {
			r.setCharacterSet(elem)
		}
		file.DataSet.Elements = append(file.DataSet.Elements, elem)
		if d.Len() >= startLen {
			d.SetError(fmt.Errorf("decoder made no progress at %s", TagString(elem.Tag)))
		}
	}
	if err := d.Error(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrBrokenFile, err)
	}
	return file, nil
}

// ParseFileHeader consumes the DICOM magic header and metadata elements
// (whose elements with tag group==2) from a Dicom file. Errors are reported
// through d.Error().
func ParseFileHeader(d *Decoder) []*Element {
	d.PushTransferSyntax(binary.LittleEndian, ExplicitVR)
	defer d.PopTransferSyntax()
	d.Skip(preambleSize) // skip preamble

	// check for magic word
	if s := d.ReadString(4); s != "DICM" {
		d.SetError(fmt.Errorf("keyword 'DICM' not found in the header"))
		return nil
	}
	r := &reader{d: d, logger: log.Discard()}

	// (0002,0000) MetaElementGroupLength
	metaElem := r.readElement()
	if d.Error() != nil {
		return nil
	}
	if metaElem.Tag != TagMetaElementGroupLength {
		d.SetError(fmt.Errorf("MetaElementGroupLength not found; instead found %s", metaElem.Tag.String()))
		return nil
	}
	metaLength, err := metaElem.GetUInt32()
	if err != nil {
		d.SetError(fmt.Errorf("failed to read uint32 in MetaElementGroupLength: %v", err))
		return nil
	}
	if d.Len() <= 0 {
		d.SetError(fmt.Errorf("no data element found"))
		return nil
	}
	metaElems := []*Element{metaElem}

	// Read meta tags
	d.PushLimit(int64(metaLength))
	defer d.PopLimit()
	for !d.EOF() {
		elem := r.readElement()
		if d.Error() != nil {
			break
		}
		metaElems = append(metaElems, elem)
	}
	return metaElems
}

type reader struct {
	d       *Decoder
	options ReadOptions
	logger  *logrus.Entry
	// VR of the pixel data element being read.
	pixelVRHint string
}

func (r *reader) setCharacterSet(elem *Element) {
	cs, unknown, err := ParseSpecificCharacterSet(elem)
	if err != nil {
		r.logger.Warnf("Could not parse SpecificCharacterSet: %v", err)
		return
	}
	for _, name := range unknown {
		r.logger.Warnf("Unknown character set '%s'. Assuming utf-8", name)
	}
	r.d.SetCodingSystem(cs)
}

// readElement reads a DICOM data element. Errors are reported through
// d.Error(). The caller must check d.Error() before using the returned value.
// It returns nil without an error when DropPixelData stops the read.
func (r *reader) readElement() *Element {
	d := r.d
	tag := readTag(d)
	// The elements for group 0xFFFE should be Encoded as Implicit VR.
	// DICOM Standard 09. PS 3.6 - Section 7.5: "Nesting of Data Sets"
	_, implicit := d.TransferSyntax()
	if tag.Group == itemSeqGroup {
		implicit = ImplicitVR
	}
	var vr string // Value Representation
	var vl uint32 // Value Length
	if implicit == ImplicitVR {
		vr, vl = readImplicit(d, tag)
	} else {
		vr, vl = readExplicit(d, tag)
	}
	if d.Error() != nil {
		return nil
	}
	if vr == "OX" {
		vr = "OW"
	}
	elem := &Element{
		Tag:             tag,
		VR:              vr,
		UndefinedLength: vl == UndefinedLength,
	}
	if tag == TagPixelData && r.options.DropPixelData {
		if vl != UndefinedLength {
			d.Skip(int(vl))
		}
		d.SetError(io.EOF)
		return nil
	}
	switch {
	case tag == TagPixelData:
		r.pixelVRHint = vr
		elem.Value = r.readPixelData(vl)
	case vr == "UN" && vl == UndefinedLength:
		// P3.5 6.2.2: an UN element of undefined length is a sequence
		// encoded in implicit VR little endian.
		elem.VR = "SQ"
		d.PushTransferSyntax(binary.LittleEndian, ImplicitVR)
		elem.Value = r.readSequence(vl)
		d.PopTransferSyntax()
	case vr == "SQ":
		elem.Value = r.readSequence(vl)
	case tag == TagItem:
		// A bare item outside of a sequence; keep its payload as a data set.
		elem.VR = "NA"
		elem.Value = []interface{}{r.readItem(vl)}
	default:
		if vl == UndefinedLength {
			d.SetError(fmt.Errorf("undefined length disallowed for VR=%s, tag %s", vr, TagString(tag)))
			return nil
		}
		d.PushLimit(int64(vl))
		elem.Value = r.readValue(tag, vr, vl)
		d.PopLimit()
	}
	return elem
}

// readSequence reads the items of a sequence.
//
//	Sequence := ItemSet* SequenceDelimitationItem (undefined length)
//	Sequence := ItemSet*VL (defined length)
//	ItemSet := Item Any* ItemDelimitationItem (when Item.VL is undefined) or
//	           Item Any*N                     (when Item.VL has a defined value)
func (r *reader) readSequence(vl uint32) []interface{} {
	d := r.d
	var items []interface{}
	if vl != UndefinedLength {
		d.PushLimit(int64(vl))
		defer d.PopLimit()
	}
	for !d.EOF() {
		tag := readTag(d)
		itemVL := d.ReadUInt32()
		if d.Error() != nil {
			break
		}
		if tag == tagSequenceDelimitationItem {
			break
		}
		if tag != TagItem {
			d.SetError(fmt.Errorf("found non-Item element in seq: %v", TagString(tag)))
			break
		}
		items = append(items, r.readItem(itemVL))
	}
	return items
}

func (r *reader) readItem(vl uint32) *DataSet {
	d := r.d
	ds := &DataSet{}
	if vl != UndefinedLength {
		d.PushLimit(int64(vl))
		defer d.PopLimit()
	}
	for !d.EOF() {
		elem := r.readElement()
		if d.Error() != nil || elem == nil {
			break
		}
		if elem.Tag == tagItemDelimitationItem {
			break
		}
		ds.Elements = append(ds.Elements, elem)
	}
	return ds
}

// readPixelData reads native or encapsulated pixel data. P3.5 A.4.
//
// Encapsulated pixel data is laid out as:
//
//	Item(BasicOffsetTable) Item(Fragment0) ... Item(FragmentM) SequenceDelimiterItem
func (r *reader) readPixelData(vl uint32) []interface{} {
	d := r.d
	if vl != UndefinedLength {
		return []interface{}{r.readWords(r.pixelVR(), int(vl))}
	}
	info := &PixelDataInfo{}
	first := true
	for !d.EOF() {
		chunk, endOfItems := readRawItem(d)
		if d.Error() != nil || endOfItems {
			break
		}
		if first {
			info.Offsets = parseOffsetTable(chunk, d)
			first = false
			continue
		}
		info.Fragments = append(info.Fragments, chunk)
	}
	if len(info.Offsets) > 1 {
		r.logger.Debugf("Encapsulated pixel data with %d frames", len(info.Offsets))
	}
	return []interface{}{info}
}

// readWords reads an OB/OW style payload. OW words of a big endian file are
// swapped so values are always held in little endian order.
func (r *reader) readWords(vr string, length int) []byte {
	data := r.d.ReadBytes(length)
	if bo, _ := r.d.TransferSyntax(); bo == binary.BigEndian && vr == "OW" {
		for i := 0; i+1 < len(data); i += 2 {
			data[i], data[i+1] = data[i+1], data[i]
		}
	}
	return data
}

func (r *reader) pixelVR() string {
	if r.pixelVRHint != "" {
		return r.pixelVRHint
	}
	return "OW"
}

func parseOffsetTable(data []byte, d *Decoder) []uint32 {
	bo, _ := d.TransferSyntax()
	sub := NewBytesDecoder(data, bo, ImplicitVR)
	var offsets []uint32
	for !sub.EOF() {
		offsets = append(offsets, sub.ReadUInt32())
	}
	return offsets
}

// readRawItem reads an Item object as raw bytes, w/o parsing them into
// DataElement. Used to parse pixel data.
func readRawItem(d *Decoder) ([]byte, bool) {
	tag := readTag(d)
	// Item is always encoded implicit. PS3.6 7.5
	vl := d.ReadUInt32()
	if d.Error() != nil {
		return nil, true
	}
	if tag == tagSequenceDelimitationItem {
		if vl != 0 {
			d.SetError(fmt.Errorf("SequenceDelimitationItem's VL != 0: %v", vl))
		}
		return nil, true
	}
	if tag != TagItem {
		d.SetError(fmt.Errorf("expect item in pixeldata but found %v", tag))
		return nil, false
	}
	if vl == UndefinedLength {
		d.SetError(fmt.Errorf("expect defined-length item in pixeldata"))
		return nil, false
	}
	return d.ReadBytes(int(vl)), false
}

func (r *reader) readValue(tag Tag, vr string, vl uint32) []interface{} {
	d := r.d
	var data []interface{}
	switch GetVRKind(tag, vr) {
	case VRDate:
		// 8-byte Date string of form 19930822 or 10-byte ACR-NEMA300 string
		// of form "1993.08.22". The latter is not compliant according to
		// P3.5 6.2, but it still happens in real life.
		str := strings.Trim(d.ReadString(int(vl)), " \x00")
		if len(str) > 0 {
			for _, s := range strings.Split(str, "\\") {
				data = append(data, s)
			}
		}
	case VRTagList:
		// (2byte group, 2byte elem)
		for !d.EOF() {
			data = append(data, readTag(d))
		}
	case VRBytes:
		data = append(data, r.readWords(vr, int(vl)))
	case VRString:
		str := d.ReadStringWithCodingSystem(IdeographicCodingSystem, int(vl))
		data = append(data, strings.TrimRight(str, " \x00"))
	case VRUInt32List:
		for !d.EOF() {
			data = append(data, d.ReadUInt32())
		}
	case VRInt32List:
		for !d.EOF() {
			data = append(data, d.ReadInt32())
		}
	case VRUInt16List:
		for !d.EOF() {
			data = append(data, d.ReadUInt16())
		}
	case VRInt16List:
		for !d.EOF() {
			data = append(data, d.ReadInt16())
		}
	case VRFloat32List:
		for !d.EOF() {
			data = append(data, d.ReadFloat32())
		}
	case VRFloat64List:
		for !d.EOF() {
			data = append(data, d.ReadFloat64())
		}
	default:
		// List of strings, each delimited by '\\'.
		raw := d.ReadBytes(int(vl))
		var v string
		if vr == "PN" {
			v = d.CodingSystem().DecodePersonName(raw)
		} else {
			v = d.CodingSystem().Decode(IdeographicCodingSystem, raw)
		}
		// String may have '\0' suffix if its length is odd.
		str := strings.Trim(v, " \x00")
		if len(str) > 0 {
			for _, s := range strings.Split(str, "\\") {
				data = append(data, strings.Trim(s, " \x00"))
			}
		}
	}
	return data
}

// readTag reads a DICOM data element's tag value, ie. (0002,0000)
func readTag(d *Decoder) Tag {
	group := d.ReadUInt16()
	element := d.ReadUInt16()
	return Tag{group, element}
}

// readImplicit reads the VL and takes the VR from the DICOM dictionary.
func readImplicit(d *Decoder, tag Tag) (string, uint32) {
	vr := "UN"
	if entry, err := FindTag(tag); err == nil {
		vr = entry.VR
	} else if tag.IsPrivateCreator() {
		vr = "LO"
	}
	if tag.Group == itemSeqGroup {
		vr = "NA"
	}
	vl := d.ReadUInt32()
	if vl != UndefinedLength && vl%2 != 0 {
		d.SetError(fmt.Errorf("%w (vl=%v) when reading implicit VR '%v' for tag %s", ErrOddLength, vl, vr, TagString(tag)))
	}
	return vr, vl
}

// readExplicit reads the VR, represented by the next two consecutive bytes,
// and the VL, whose width depends on the VR.
func readExplicit(d *Decoder, tag Tag) (string, uint32) {
	vr := d.ReadString(2)
	var vl uint32
	if hasLongLength(vr) {
		d.Skip(2) // ignore two bytes for "future use" (0000H)
		vl = d.ReadUInt32()
		if vl == UndefinedLength {
			switch vr {
			case "UC", "UR", "UT":
				d.SetError(ErrUndefLengthNotAllowed)
			}
		}
	} else {
		vl = uint32(d.ReadUInt16())
	}
	if vl != UndefinedLength && vl%2 != 0 {
		d.SetError(fmt.Errorf("%w (vl=%v) when reading explicit VR %v for tag %s", ErrOddLength, vl, vr, TagString(tag)))
	}
	return vr, vl
}
