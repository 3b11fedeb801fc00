package dicom

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Implementation identification written into the file meta group.
const (
	DefaultImplementationClassUID    = "1.2.826.0.1.3680043.9.7133.1.1"
	DefaultImplementationVersionName = "GODEID_1_0"
)

// WriteFile writes f to path, replacing any existing file.
func WriteFile(path string, f *File) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(out)
	if err := Write(w, f); err != nil {
		out.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Write serializes f. Big endian and deflated files are written back as
// explicit VR little endian; the TransferSyntaxUID in the meta group is
// updated accordingly.
func Write(out io.Writer, f *File) error {
	uid := f.TransferSyntaxUID()
	switch uid {
	case ExplicitVRBigEndian, DeflatedExplicitVRLittleEndian:
		uid = ExplicitVRLittleEndian
	}
	bo, implicit, err := ParseTransferSyntaxUID(uid)
	if err != nil {
		return err
	}
	meta := &DataSet{}
	if f.Meta != nil {
		meta = f.Meta.Copy()
	}
	meta.Remove(TagMetaElementGroupLength)
	meta.Add(NewElement(TagTransferSyntaxUID, uid))
	if _, err := meta.FindElementByTag(TagFileMetaInformationVersion); err != nil {
		meta.Add(&Element{Tag: TagFileMetaInformationVersion, VR: "OB", Value: []interface{}{[]byte{0, 1}}})
	}
	if _, err := meta.FindElementByTag(TagImplementationClassUID); err != nil {
		meta.Add(NewElement(TagImplementationClassUID, DefaultImplementationClassUID))
	}
	if _, err := meta.FindElementByTag(TagImplementationVersionName); err != nil {
		meta.Add(NewElement(TagImplementationVersionName, DefaultImplementationVersionName))
	}
	if f.DataSet != nil {
		for tag, metaTag := range map[Tag]Tag{
			TagSOPClassUID:    TagMediaStorageSOPClassUID,
			TagSOPInstanceUID: TagMediaStorageSOPInstanceUID,
		} {
			if elem, err := f.DataSet.FindElementByTag(tag); err == nil {
				if v, err := elem.GetString(); err == nil {
					meta.Add(NewElement(metaTag, v))
				}
			}
		}
	}

	e := NewEncoder(binary.LittleEndian, ExplicitVR)
	WriteFileHeader(e, meta.Elements)
	if f.DataSet != nil {
		e.PushTransferSyntax(bo, implicit)
		for _, elem := range f.DataSet.Elements {
			if elem.Tag == TagSpecificCharacterSet {
				if cs, _, err := ParseSpecificCharacterSet(elem); err == nil {
					e.SetCodingSystem(cs)
				}
			}
			EncodeDataElement(e, elem)
		}
		e.PopTransferSyntax()
	}
	data, err := e.Finish()
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

// WriteFileHeader is the inverse of ParseFileHeader: it writes the preamble,
// the magic word and the meta elements preceded by their group length.
// Errors are reported via e.Error().
func WriteFileHeader(e *Encoder, metaElems []*Element) {
	e.PushTransferSyntax(binary.LittleEndian, ExplicitVR)
	defer e.PopTransferSyntax()

	subEncoder := NewEncoder(binary.LittleEndian, ExplicitVR)
	for _, elem := range metaElems {
		if elem.Tag == TagMetaElementGroupLength {
			continue
		}
		EncodeDataElement(subEncoder, elem)
	}
	metaBytes, err := subEncoder.Finish()
	if err != nil {
		e.SetError(err)
		return
	}

	e.WriteZeros(preambleSize)
	e.WriteString("DICM")
	EncodeDataElement(e, NewElement(TagMetaElementGroupLength, uint32(len(metaBytes))))
	e.WriteBytes(metaBytes)
}

// EncodeDataElement encodes one data element, including sequences and
// encapsulated pixel data. Errors are reported through e.Error() and/or
// e.Finish().
//
// REQUIRES: Each value in Value[] must match the VR of the element. E.g., if
// the VR is UL, then each value must be uint32.
func EncodeDataElement(e *Encoder, elem *Element) {
	vr := elem.VR
	if vr == "" {
		vr = NewElement(elem.Tag).VR
	}
	if elem.Tag == TagPixelData {
		if info, ok := firstValue(elem).(*PixelDataInfo); ok {
			encodeEncapsulatedPixelData(e, elem, vr, info)
			return
		}
	}
	sube := NewEncoder(e.TransferSyntax())
	sube.SetCodingSystem(e.cs)
	if vr == "SQ" {
		encodeSequenceItems(sube, elem)
	} else {
		encodeValues(sube, elem, vr)
	}
	bytes, err := sube.Finish()
	if err != nil {
		e.SetError(err)
		return
	}
	if len(bytes)%2 == 1 {
		bytes = append(bytes, paddingByte(vr))
	}
	encodeElementHeader(e, elem.Tag, vr, uint32(len(bytes)))
	e.WriteBytes(bytes)
}

func encodeElementHeader(e *Encoder, tag Tag, vr string, vl uint32) {
	e.WriteUInt16(tag.Group)
	e.WriteUInt16(tag.Element)
	if _, implicit := e.TransferSyntax(); implicit == ExplicitVR {
		if len(vr) != 2 {
			e.SetError(fmt.Errorf("invalid VR %q for %s", vr, TagString(tag)))
			return
		}
		e.WriteString(vr)
		if hasLongLength(vr) {
			e.WriteZeros(2) // two bytes for "future use" (0000H)
			e.WriteUInt32(vl)
		} else {
			if vl > 0xFFFF {
				e.SetError(fmt.Errorf("value of %s too long for VR %s: %d bytes", TagString(tag), vr, vl))
				return
			}
			e.WriteUInt16(uint16(vl))
		}
	} else {
		e.WriteUInt32(vl)
	}
}

// encodeSequenceItems writes every item with an explicit length. The
// sequence itself gets a defined length from the caller.
func encodeSequenceItems(e *Encoder, elem *Element) {
	for _, item := range elem.Items() {
		sub := NewEncoder(e.TransferSyntax())
		sub.SetCodingSystem(e.cs)
		for _, child := range item.Elements {
			EncodeDataElement(sub, child)
		}
		bytes, err := sub.Finish()
		if err != nil {
			e.SetError(err)
			return
		}
		e.WriteUInt16(TagItem.Group)
		e.WriteUInt16(TagItem.Element)
		e.WriteUInt32(uint32(len(bytes)))
		e.WriteBytes(bytes)
	}
}

func encodeEncapsulatedPixelData(e *Encoder, elem *Element, vr string, info *PixelDataInfo) {
	e.WriteUInt16(elem.Tag.Group)
	e.WriteUInt16(elem.Tag.Element)
	if _, implicit := e.TransferSyntax(); implicit == ExplicitVR {
		e.WriteString(vr)
		e.WriteZeros(2)
	}
	e.WriteUInt32(UndefinedLength)
	writeItem := func(data []byte) {
		e.WriteUInt16(TagItem.Group)
		e.WriteUInt16(TagItem.Element)
		e.WriteUInt32(uint32(len(data)))
		e.WriteBytes(data)
	}
	offsets := NewEncoder(e.TransferSyntax())
	for _, o := range info.Offsets {
		offsets.WriteUInt32(o)
	}
	table, _ := offsets.Finish()
	writeItem(table)
	for _, fragment := range info.Fragments {
		if len(fragment)%2 == 1 {
			fragment = append(fragment, 0)
		}
		writeItem(fragment)
	}
	e.WriteUInt16(tagSequenceDelimitationItem.Group)
	e.WriteUInt16(tagSequenceDelimitationItem.Element)
	e.WriteUInt32(0)
}

func encodeValues(e *Encoder, elem *Element, vr string) {
	kind := GetVRKind(elem.Tag, vr)
	for i, value := range elem.Value {
		var ok bool
		switch kind {
		case VRUInt16List:
			var v uint16
			if v, ok = value.(uint16); ok {
				e.WriteUInt16(v)
			}
		case VRUInt32List:
			var v uint32
			if v, ok = value.(uint32); ok {
				e.WriteUInt32(v)
			}
		case VRInt32List:
			var v int32
			if v, ok = value.(int32); ok {
				e.WriteInt32(v)
			}
		case VRInt16List:
			var v int16
			if v, ok = value.(int16); ok {
				e.WriteInt16(v)
			}
		case VRFloat32List:
			var v float32
			if v, ok = value.(float32); ok {
				e.WriteFloat32(v)
			}
		case VRFloat64List:
			var v float64
			if v, ok = value.(float64); ok {
				e.WriteFloat64(v)
			}
		case VRTagList:
			var v Tag
			if v, ok = value.(Tag); ok {
				e.WriteUInt16(v.Group)
				e.WriteUInt16(v.Element)
			}
		case VRBytes, VRPixelData:
			var v []byte
			if v, ok = value.([]byte); ok {
				e.WriteBytes(v)
			}
		default:
			var v string
			if v, ok = value.(string); ok {
				if i > 0 {
					e.WriteString("\\")
				}
				e.WriteText(v)
			}
		}
		if !ok {
			e.SetError(fmt.Errorf("value %v (%T) does not match VR %s of %s", value, value, vr, TagString(elem.Tag)))
			return
		}
	}
}
