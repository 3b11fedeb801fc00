package dicom

import (
	"fmt"
	"sort"
	"strings"
)

// DataSet is an ordered collection of elements. It is the root of a header
// tree and also the payload of each sequence item.
type DataSet struct {
	// Elements are kept in ascending tag order by Add.
	Elements []*Element
}

// File is a parsed DICOM file.
type File struct {
	// Meta holds the group 0002 file meta information elements.
	Meta *DataSet
	// DataSet holds every other top-level element.
	DataSet *DataSet
}

// NewFile returns an empty file with an explicit VR little endian meta group.
func NewFile() *File {
	meta := &DataSet{}
	meta.Add(NewElement(TagTransferSyntaxUID, ExplicitVRLittleEndian))
	return &File{Meta: meta, DataSet: &DataSet{}}
}

// TransferSyntaxUID returns the transfer syntax recorded in the meta group,
// or implicit VR little endian if none is recorded.
func (f *File) TransferSyntaxUID() string {
	if f.Meta != nil {
		if elem, err := f.Meta.FindElementByTag(TagTransferSyntaxUID); err == nil {
			if uid, err := elem.GetString(); err == nil {
				return strings.TrimRight(uid, "\x00 ")
			}
		}
	}
	return ImplicitVRLittleEndian
}

// FindElementByTag returns the first element with the given tag.
func (ds *DataSet) FindElementByTag(tag Tag) (*Element, error) {
	for _, elem := range ds.Elements {
		if elem.Tag == tag {
			return elem, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrElementNotFound, TagString(tag))
}

// FindElementByName returns the element with the given keyword, name or
// numeric tag, e.g. "PatientName", "Patient's Name" or "(0010,0010)".
func (ds *DataSet) FindElementByName(name string) (*Element, error) {
	info, err := LookupTag(name)
	if err != nil {
		return nil, err
	}
	return ds.FindElementByTag(info.Tag)
}

// Add inserts elem in tag order. An existing element with the same tag is
// replaced.
func (ds *DataSet) Add(elem *Element) {
	i := sort.Search(len(ds.Elements), func(i int) bool {
		return !tagLess(ds.Elements[i].Tag, elem.Tag)
	})
	if i < len(ds.Elements) && ds.Elements[i].Tag == elem.Tag {
		ds.Elements[i] = elem
		return
	}
	ds.Elements = append(ds.Elements, nil)
	copy(ds.Elements[i+1:], ds.Elements[i:])
	ds.Elements[i] = elem
}

// Remove deletes the element with the given tag. It returns false if no such
// element exists.
func (ds *DataSet) Remove(tag Tag) bool {
	for i, elem := range ds.Elements {
		if elem.Tag == tag {
			ds.Elements = append(ds.Elements[:i], ds.Elements[i+1:]...)
			return true
		}
	}
	return false
}

// PrivateCreator returns the creator string that reserves the private block
// of tag, e.g. the value of (0033,0010) for (0033,1023).
func (ds *DataSet) PrivateCreator(tag Tag) (string, bool) {
	if !tag.IsPrivate() || tag.IsPrivateCreator() || tag.PrivateBlock() < 0x10 {
		return "", false
	}
	elem, err := ds.FindElementByTag(Tag{tag.Group, tag.PrivateBlock()})
	if err != nil {
		return "", false
	}
	values := elem.StringValues()
	if len(values) == 0 {
		return "", false
	}
	return strings.TrimSpace(values[0]), true
}

// PrivateCreatorTag returns the tag of the private data element at offset
// inside the block reserved by creator in group.
func (ds *DataSet) PrivateCreatorTag(group uint16, creator string, offset uint16) (Tag, bool) {
	for _, elem := range ds.Elements {
		if elem.Tag.Group != group || !elem.Tag.IsPrivateCreator() {
			continue
		}
		values := elem.StringValues()
		if len(values) > 0 && strings.TrimSpace(values[0]) == creator {
			return Tag{group, elem.Tag.Element<<8 | (offset & 0xFF)}, true
		}
	}
	return Tag{}, false
}

// Copy returns a deep copy of the data set.
func (ds *DataSet) Copy() *DataSet {
	c := &DataSet{Elements: make([]*Element, 0, len(ds.Elements))}
	for _, elem := range ds.Elements {
		c.Elements = append(c.Elements, elem.Copy())
	}
	return c
}

func tagLess(a, b Tag) bool {
	if a.Group != b.Group {
		return a.Group < b.Group
	}
	return a.Element < b.Element
}
