package deid_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/gillesdemey/go-deid/dicom"
	"github.com/gillesdemey/go-deid/recipe"
)

const privateCreator = "MITRA OBJECT UTF8 ATTRIBUTES 1.0"

func element(t *testing.T, name string, value string) *dicom.Element {
	t.Helper()
	info, err := dicom.LookupTag(name)
	require.NoError(t, err)
	elem := &dicom.Element{Tag: info.Tag, VR: info.VR}
	require.NoError(t, elem.SetString(value))
	return elem
}

func sequence(t *testing.T, name string, items ...*dicom.DataSet) *dicom.Element {
	t.Helper()
	info, err := dicom.LookupTag(name)
	require.NoError(t, err)
	elem := &dicom.Element{Tag: info.Tag, VR: "SQ"}
	for _, item := range items {
		elem.Value = append(elem.Value, item)
	}
	return elem
}

func dataset(elems ...*dicom.Element) *dicom.DataSet {
	ds := &dicom.DataSet{}
	for _, e := range elems {
		ds.Add(e)
	}
	return ds
}

// testFile builds a small CT header with a nested sequence, a private block
// and pixel data.
func testFile(t *testing.T) *dicom.File {
	t.Helper()
	f := dicom.NewFile()
	f.Meta.Add(element(t, "MediaStorageSOPInstanceUID", "1.2.3.4.5"))
	f.DataSet = dataset(
		element(t, "ImageType", `ORIGINAL\PRIMARY\AXIAL`),
		element(t, "SOPInstanceUID", "1.2.3.4.5"),
		element(t, "StudyDate", "20230101"),
		element(t, "AcquisitionDateTime", "20230101120000.123456"),
		element(t, "Modality", "CT"),
		element(t, "Manufacturer", "ACME"),
		element(t, "SeriesDescription", "Chest"),
		element(t, "PatientName", "Doe^John"),
		element(t, "PatientID", "123456"),
		element(t, "OtherPatientIDs", `ABC\123456`),
		element(t, "PatientBirthDate", "19700101"),
		element(t, "PatientAge", "053Y"),
		element(t, "SeriesInstanceUID", "1.2.3.4"),
		element(t, "Rows", "2"),
		element(t, "Columns", "2"),
		sequence(t, "ReferencedSeriesSequence",
			dataset(element(t, "SeriesInstanceUID", "1.2.3.4.1")),
			dataset(element(t, "SeriesInstanceUID", "1.2.3.4.2")),
		),
		&dicom.Element{Tag: dicom.Tag{Group: 0x0033, Element: 0x0010}, VR: "LO", Value: []interface{}{privateCreator}},
		&dicom.Element{Tag: dicom.Tag{Group: 0x0033, Element: 0x101E}, VR: "UN", Value: []interface{}{[]byte("secret")}},
		&dicom.Element{Tag: dicom.TagPixelData, VR: "OW", Value: []interface{}{[]byte{0, 1, 2, 3, 4, 5, 6, 7}}},
	)
	return f
}

func parseRecipe(t *testing.T, text string) *recipe.DeidRecipe {
	t.Helper()
	r, err := recipe.NewDeidRecipeFromText("test", text, nil)
	require.NoError(t, err)
	return r
}

func newLogger() (*logrus.Entry, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(logger), hook
}

func warnings(hook *test.Hook) []string {
	var out []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			out = append(out, e.Message)
		}
	}
	return out
}

func value(t *testing.T, ds *dicom.DataSet, name string) (string, bool) {
	t.Helper()
	elem, err := ds.FindElementByName(name)
	if err != nil {
		return "", false
	}
	return elem.StringValue(), true
}
