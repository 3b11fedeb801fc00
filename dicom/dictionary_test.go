package dicom

import (
	"errors"
	"testing"
)

func TestFindTag(t *testing.T) {
	elem, err := FindTag(Tag{32736, 16})
	if err != nil {
		t.Error(err)
	}
	if elem.Keyword != "PixelData" || elem.VR != "OW" {
		t.Errorf("Wrong element name: %s", elem.Keyword)
	}
	elem, err = FindTag(Tag{0x0010, 0x0010})
	if err != nil {
		t.Error(err)
	}
	if elem.Keyword != "PatientName" || elem.VR != "PN" || elem.Name != "Patient's Name" {
		t.Errorf("Wrong element: %+v", elem)
	}
	elem, err = FindTag(Tag{0x0018, 0x0000})
	if err != nil || elem.Keyword != "GenericGroupLength" {
		t.Errorf("Group length not resolved: %+v %v", elem, err)
	}
	if _, err := FindTag(Tag{0x0009, 0x1001}); !errors.Is(err, ErrTagNotFound) {
		t.Errorf("Expected ErrTagNotFound, got %v", err)
	}
}

func TestFindTagByKeywordAndName(t *testing.T) {
	elem, err := FindTagByKeyword("studydate")
	if err != nil {
		t.Fatal(err)
	}
	if elem.Tag != (Tag{0x0008, 0x0020}) {
		t.Errorf("Wrong tag: %v", elem.Tag)
	}
	elem, err = FindTagByName("Patient's Birth Date")
	if err != nil {
		t.Fatal(err)
	}
	if elem.Keyword != "PatientBirthDate" {
		t.Errorf("Wrong keyword: %s", elem.Keyword)
	}
}

func TestLookupTag(t *testing.T) {
	for _, name := range []string{"Modality", "(0008,0060)", "0008,0060", "00080060", "modality"} {
		info, err := LookupTag(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if info.Tag != (Tag{0x0008, 0x0060}) || info.VR != "CS" {
			t.Errorf("%s: wrong entry %+v", name, info)
		}
	}
	info, err := LookupTag("(0033,1010)")
	if err != nil || info.VR != "UN" {
		t.Errorf("Unknown numeric tag should resolve as UN: %+v %v", info, err)
	}
	if _, err := LookupTag("NotAKeyword"); err == nil {
		t.Error("Expected error for unknown keyword")
	}
}

func TestParseTag(t *testing.T) {
	tag, err := ParseTag("(7FE0,0010)")
	if err != nil {
		t.Error(err)
	}
	if tag.Group != 0x7FE0 {
		t.Errorf("Error splitting tag. Wrong group: %#x", tag.Group)
	}
	if tag.Element != 0x0010 {
		t.Errorf("Error splitting tag. Wrong element: %#x", tag.Element)
	}
	if _, err := ParseTag("(7FE0)"); err == nil {
		t.Error("Expected error for malformed tag")
	}
	if tag.String() != "(7FE0,0010)" || tag.Stripped() != "7FE00010" {
		t.Errorf("Wrong string forms: %s %s", tag.String(), tag.Stripped())
	}
}

func TestPrivateTags(t *testing.T) {
	creator := Tag{0x0033, 0x0010}
	data := Tag{0x0033, 0x1023}
	if !creator.IsPrivateCreator() || data.IsPrivateCreator() {
		t.Error("IsPrivateCreator")
	}
	if !data.IsPrivate() || (Tag{0x0010, 0x0010}).IsPrivate() {
		t.Error("IsPrivate")
	}
	if data.PrivateBlock() != 0x10 || data.PrivateOffset() != 0x23 {
		t.Errorf("Wrong block/offset: %x %x", data.PrivateBlock(), data.PrivateOffset())
	}
}

func BenchmarkFindMetaGroupLengthTag(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := FindTag(Tag{2, 0}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFindPixelDataTag(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := FindTag(Tag{32736, 16}); err != nil {
			b.Fatal(err)
		}
	}
}
