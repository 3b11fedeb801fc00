package dicom

// Standard DICOM tag definitions.
//
// ftp://medical.nema.org/medical/dicom/2011/11_06pu.pdf

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag is a <group, element> tuple that identifies an element type in a DICOM
// file. List of standard tags are defined in dictionary_data.go. See also:
//
// ftp://medical.nema.org/medical/dicom/2011/11_06pu.pdf
type Tag struct {
	// Group and element are results of parsing the hex-pair tag, such as (1000,10008)
	Group   uint16
	Element uint16
}

// Return a string of form "(0008,1234)", where 0x0008 is t.Group,
// 0x1234 is t.Element.
func (t Tag) String() string {
	return fmt.Sprintf("(%04X,%04X)", t.Group, t.Element)
}

// Stripped returns the tag as eight hex digits with no punctuation, e.g. "00100010".
func (t Tag) Stripped() string {
	return fmt.Sprintf("%04X%04X", t.Group, t.Element)
}

// IsPrivate returns true for tags in an odd group.
func (t Tag) IsPrivate() bool {
	return t.Group%2 == 1
}

// IsPrivateCreator returns true if the tag reserves a private block, i.e.
// (gggg,0010) through (gggg,00FF) in an odd group.
func (t Tag) IsPrivateCreator() bool {
	return t.IsPrivate() && t.Element >= 0x0010 && t.Element <= 0x00FF
}

// PrivateBlock returns the block number (high byte of the element) of a
// private data element, e.g. 0x10 for (0033,1023).
func (t Tag) PrivateBlock() uint16 {
	return t.Element >> 8
}

// PrivateOffset returns the low byte of a private data element, e.g. 0x23 for (0033,1023).
func (t Tag) PrivateOffset() uint16 {
	return t.Element & 0xFF
}

// Well known tags used across the module.
var (
	TagMetaElementGroupLength     = Tag{0x0002, 0x0000}
	TagFileMetaInformationVersion = Tag{0x0002, 0x0001}
	TagMediaStorageSOPClassUID    = Tag{0x0002, 0x0002}
	TagMediaStorageSOPInstanceUID = Tag{0x0002, 0x0003}
	TagTransferSyntaxUID          = Tag{0x0002, 0x0010}
	TagImplementationClassUID     = Tag{0x0002, 0x0012}
	TagImplementationVersionName  = Tag{0x0002, 0x0013}
	TagDirectoryRecordSequence    = Tag{0x0004, 0x1220}
	TagReferencedFileID           = Tag{0x0004, 0x1500}
	TagSpecificCharacterSet       = Tag{0x0008, 0x0005}
	TagSOPClassUID                = Tag{0x0008, 0x0016}
	TagSOPInstanceUID             = Tag{0x0008, 0x0018}
	TagSamplesPerPixel            = Tag{0x0028, 0x0002}
	TagNumberOfFrames             = Tag{0x0028, 0x0008}
	TagRows                       = Tag{0x0028, 0x0010}
	TagColumns                    = Tag{0x0028, 0x0011}
	TagPixelData                  = Tag{0x7FE0, 0x0010}

	TagItem                     = Tag{0xFFFE, 0xE000}
	tagItemDelimitationItem     = Tag{0xFFFE, 0xE00D}
	tagSequenceDelimitationItem = Tag{0xFFFE, 0xE0DD}
)

type TagInfo struct {
	Tag Tag
	// Data encoding "UL", "CS", etc.
	VR string
	// Keyword of the tag, e.g., "PatientName"
	Keyword string
	// Cardinality (# of values expected in the element)
	VM string
	// Human-readable name of the tag, e.g., "Patient's Name"
	Name string
}

const TagMetadataGroup = 2

// FindTag finds information about the given tag. If the tag is not part of
// the dictionary, it returns ErrTagNotFound.
func FindTag(tag Tag) (TagInfo, error) {
	maybeInitTagDict()
	entry, ok := tagDict[tag]
	if !ok {
		// (0000-u-ffff,0000)	UL	GenericGroupLength	1	GENERIC
		if tag.Group%2 == 0 && tag.Element == 0x0000 {
			entry = TagInfo{tag, "UL", "GenericGroupLength", "1", "Generic Group Length"}
		} else {
			return TagInfo{}, fmt.Errorf("%w: (0x%x, 0x%x)", ErrTagNotFound, tag.Group, tag.Element)
		}
	}
	return entry, nil
}

// Like FindTag, but panics on error.
func MustFindTag(tag Tag) TagInfo {
	e, err := FindTag(tag)
	if err != nil {
		panic(fmt.Sprintf("tag %v not found: %s", tag, err))
	}
	return e
}

// FindTagByKeyword finds information about the tag with the given keyword.
//
//	Example: FindTagByKeyword("TransferSyntaxUID")
func FindTagByKeyword(keyword string) (TagInfo, error) {
	maybeInitTagDict()
	if entry, ok := tagDictByKeyword[strings.ToLower(keyword)]; ok {
		return entry, nil
	}
	return TagInfo{}, fmt.Errorf("%w: no tag with keyword %s", ErrTagNotFound, keyword)
}

// FindTagByName finds information about the tag with the given human readable
// name, e.g. "Patient's Name". The comparison ignores case.
func FindTagByName(name string) (TagInfo, error) {
	maybeInitTagDict()
	if entry, ok := tagDictByName[strings.ToLower(name)]; ok {
		return entry, nil
	}
	return TagInfo{}, fmt.Errorf("%w: no tag named %s", ErrTagNotFound, name)
}

// LookupTag resolves a keyword, a human readable name or a numeric tag string
// ("(0010,0010)", "0010,0010", "00100010"). Numeric tags that are not in the
// dictionary resolve with VR "UN".
func LookupTag(name string) (TagInfo, error) {
	if info, err := FindTagByKeyword(name); err == nil {
		return info, nil
	}
	if info, err := FindTagByName(name); err == nil {
		return info, nil
	}
	tag, err := ParseTag(name)
	if err != nil {
		return TagInfo{}, fmt.Errorf("%w: %s", ErrTagNotFound, name)
	}
	if info, err := FindTag(tag); err == nil {
		return info, nil
	}
	return TagInfo{Tag: tag, VR: "UN", VM: "1"}, nil
}

// TagString returns a human-readable diagnostic string for the tag
func TagString(tag Tag) string {
	e, err := FindTag(tag)
	if err != nil {
		return fmt.Sprintf("(%04X,%04X)[??]", tag.Group, tag.Element)
	}
	return fmt.Sprintf("(%04X,%04X)[%s]", tag.Group, tag.Element, e.Keyword)
}

// ParseTag splits a tag into a group and element, represented as hex values.
// Accepted forms are "(7FE0,0010)", "7FE0,0010" and "7FE00010".
// TODO: support group ranges (6000-60FF,0803)
func ParseTag(tag string) (Tag, error) {
	s := strings.TrimSpace(tag)
	s = strings.Trim(s, "()")
	var parts []string
	if strings.Contains(s, ",") {
		parts = strings.Split(s, ",")
	} else if len(s) == 8 {
		parts = []string{s[:4], s[4:]}
	}
	if len(parts) != 2 {
		return Tag{}, fmt.Errorf("malformed tag %q", tag)
	}
	group, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 16, 16)
	if err != nil {
		return Tag{}, fmt.Errorf("malformed tag %q: %v", tag, err)
	}
	elem, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 16, 16)
	if err != nil {
		return Tag{}, fmt.Errorf("malformed tag %q: %v", tag, err)
	}
	return Tag{Group: uint16(group), Element: uint16(elem)}, nil
}
