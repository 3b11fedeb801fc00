package dicom

import (
	"testing"
)

func TestQuery(t *testing.T) {
	ds := &DataSet{}
	ds.Add(NewElement(Tag{0x0008, 0x0060}, "CT"))
	ds.Add(NewElement(Tag{0x0008, 0x0020}, "20221128"))
	ds.Add(NewElement(Tag{0x0010, 0x0010}, "Doe^John"))
	ds.Add(NewElement(TagSOPInstanceUID, "1.2.3.4"))

	for _, test := range []struct {
		query string
		match bool
	}{
		{"Modality=CT", true},
		{"Modality=MR", false},
		{"Modality=", true},
		{"PatientName=Doe*", true},
		{"PatientName=D?e^John", true},
		{"PatientName=Smith*", false},
		{"StudyDate=20220101-20221231", true},
		{"StudyDate=-20211231", false},
		{"StudyDate=20221128-", true},
		{"SOPInstanceUID=9.9\\1.2.3.4", true},
		{"Manufacturer=ACME", false},
		{"Manufacturer=", true},
	} {
		f, err := NewQuery(test.query)
		if err != nil {
			t.Fatalf("%s: %v", test.query, err)
		}
		match, _, err := Query(ds, f)
		if err != nil {
			t.Errorf("%s: %v", test.query, err)
		}
		if match != test.match {
			t.Errorf("%s: match = %v, want %v", test.query, match, test.match)
		}
	}
	if _, err := NewQuery("Modality"); err == nil {
		t.Error("Expected error for query without '='")
	}
}
