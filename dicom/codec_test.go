package dicom_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gillesdemey/go-deid/dicom"
)

func testFile(transferSyntax string) *dicom.File {
	f := dicom.NewFile()
	f.Meta.Add(dicom.NewElement(dicom.TagTransferSyntaxUID, transferSyntax))
	ds := f.DataSet
	ds.Add(dicom.NewElement(dicom.TagSOPClassUID, "1.2.840.10008.5.1.4.1.1.7"))
	ds.Add(dicom.NewElement(dicom.TagSOPInstanceUID, "1.2.3.4.5"))
	ds.Add(dicom.NewElement(dicom.Tag{Group: 0x0008, Element: 0x0020}, "20221128"))
	ds.Add(dicom.NewElement(dicom.Tag{Group: 0x0008, Element: 0x0060}, "CT"))
	ds.Add(dicom.NewElement(dicom.Tag{Group: 0x0008, Element: 0x0008}, "ORIGINAL", "PRIMARY", "AXIAL"))
	ds.Add(dicom.NewElement(dicom.Tag{Group: 0x0010, Element: 0x0010}, "Doe^John"))
	ds.Add(dicom.NewElement(dicom.Tag{Group: 0x0010, Element: 0x0020}, "PID123"))
	ds.Add(dicom.NewElement(dicom.TagRows, uint16(2)))
	ds.Add(dicom.NewElement(dicom.TagColumns, uint16(2)))
	ds.Add(dicom.NewElement(dicom.Tag{Group: 0x0028, Element: 0x0030}, "0.5", "0.5"))

	item1 := &dicom.DataSet{}
	item1.Add(dicom.NewElement(dicom.Tag{Group: 0x0020, Element: 0x000E}, "1.2.3.4.6"))
	item2 := &dicom.DataSet{}
	item2.Add(dicom.NewElement(dicom.Tag{Group: 0x0020, Element: 0x000E}, "1.2.3.4.7"))
	ds.Add(dicom.NewElement(dicom.Tag{Group: 0x0008, Element: 0x1115}, item1, item2))

	regions := &dicom.DataSet{}
	regions.Add(dicom.NewElement(dicom.Tag{Group: 0x0018, Element: 0x6018}, uint32(10)))
	regions.Add(dicom.NewElement(dicom.Tag{Group: 0x0018, Element: 0x601A}, uint32(20)))
	ds.Add(dicom.NewElement(dicom.Tag{Group: 0x0018, Element: 0x6011}, regions))

	ds.Add(dicom.NewElement(dicom.TagPixelData, []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	return f
}

func roundTrip(t *testing.T, f *dicom.File, options dicom.ReadOptions) *dicom.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, dicom.Write(&buf, f))
	out, err := dicom.ReadBytes(buf.Bytes(), options)
	require.NoError(t, err)
	return out
}

func TestRoundTripExplicitLittleEndian(t *testing.T) {
	t.Parallel()

	f := testFile(dicom.ExplicitVRLittleEndian)
	f.DataSet.Add(dicom.NewElement(dicom.Tag{Group: 0x0009, Element: 0x0010}, "ACME"))
	f.DataSet.Add(&dicom.Element{Tag: dicom.Tag{Group: 0x0009, Element: 0x1001}, VR: "LO", Value: []interface{}{"secret"}})

	out := roundTrip(t, f, dicom.ReadOptions{})
	if diff := cmp.Diff(f.DataSet, out.DataSet); diff != "" {
		t.Errorf("data set mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, dicom.ExplicitVRLittleEndian, out.TransferSyntaxUID())

	sop, err := out.Meta.FindElementByTag(dicom.TagMediaStorageSOPInstanceUID)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4.5", sop.MustGetString())

	creator, ok := out.DataSet.PrivateCreator(dicom.Tag{Group: 0x0009, Element: 0x1001})
	assert.True(t, ok)
	assert.Equal(t, "ACME", creator)
}

func TestRoundTripImplicitLittleEndian(t *testing.T) {
	t.Parallel()

	f := testFile(dicom.ImplicitVRLittleEndian)
	out := roundTrip(t, f, dicom.ReadOptions{})
	if diff := cmp.Diff(f.DataSet, out.DataSet); diff != "" {
		t.Errorf("data set mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, dicom.ImplicitVRLittleEndian, out.TransferSyntaxUID())
}

func TestRoundTripEncapsulatedPixelData(t *testing.T) {
	t.Parallel()

	const jpegBaseline = "1.2.840.10008.1.2.4.50"
	f := testFile(jpegBaseline)
	f.DataSet.Add(&dicom.Element{
		Tag:             dicom.TagPixelData,
		VR:              "OB",
		UndefinedLength: true,
		Value: []interface{}{&dicom.PixelDataInfo{
			Offsets:   []uint32{0},
			Fragments: [][]byte{{0xFF, 0xD8, 0xFF, 0xD9}, {1, 2}},
		}},
	})

	out := roundTrip(t, f, dicom.ReadOptions{})
	assert.True(t, dicom.IsEncapsulated(out.TransferSyntaxUID()))
	pixels, err := out.DataSet.FindElementByTag(dicom.TagPixelData)
	require.NoError(t, err)
	info, ok := pixels.Value[0].(*dicom.PixelDataInfo)
	require.True(t, ok)
	assert.Equal(t, []uint32{0}, info.Offsets)
	assert.Equal(t, [][]byte{{0xFF, 0xD8, 0xFF, 0xD9}, {1, 2}}, info.Fragments)
}

func TestReadDropPixelData(t *testing.T) {
	t.Parallel()

	out := roundTrip(t, testFile(dicom.ExplicitVRLittleEndian), dicom.ReadOptions{DropPixelData: true})
	_, err := out.DataSet.FindElementByTag(dicom.TagPixelData)
	assert.ErrorIs(t, err, dicom.ErrElementNotFound)
	_, err = out.DataSet.FindElementByName("PatientName")
	assert.NoError(t, err)
}

func TestReadBrokenFile(t *testing.T) {
	t.Parallel()

	_, err := dicom.ReadBytes([]byte("not a dicom file"), dicom.ReadOptions{})
	assert.ErrorIs(t, err, dicom.ErrBrokenFile)

	var buf bytes.Buffer
	require.NoError(t, dicom.Write(&buf, testFile(dicom.ExplicitVRLittleEndian)))
	truncated := buf.Bytes()[:buf.Len()-5]
	_, err = dicom.ReadBytes(truncated, dicom.ReadOptions{})
	assert.Error(t, err)
}

func TestParseDICOMDIR(t *testing.T) {
	t.Parallel()

	f := dicom.NewFile()
	var items []interface{}
	for _, path := range [][]string{{"IMAGES", "IM0001"}, {"IMAGES", "IM0002"}} {
		item := &dicom.DataSet{}
		item.Add(dicom.NewElement(dicom.Tag{Group: 0x0004, Element: 0x1430}, "IMAGE"))
		item.Add(dicom.NewElement(dicom.TagReferencedFileID, path[0], path[1]))
		items = append(items, item)
	}
	patient := &dicom.DataSet{}
	patient.Add(dicom.NewElement(dicom.Tag{Group: 0x0004, Element: 0x1430}, "PATIENT"))
	items = append(items, patient)
	f.DataSet.Add(dicom.NewElement(dicom.TagDirectoryRecordSequence, items...))

	var buf bytes.Buffer
	require.NoError(t, dicom.Write(&buf, f))
	recs, err := dicom.ParseDICOMDIR(&buf)
	require.NoError(t, err)
	assert.Equal(t, []dicom.DirectoryRecord{
		{Path: "IMAGES/IM0001", RecordType: "IMAGE"},
		{Path: "IMAGES/IM0002", RecordType: "IMAGE"},
	}, recs)
}

func TestDataSetAddRemove(t *testing.T) {
	t.Parallel()

	ds := &dicom.DataSet{}
	ds.Add(dicom.NewElement(dicom.TagRows, uint16(1)))
	ds.Add(dicom.NewElement(dicom.TagSOPClassUID, "1.2"))
	ds.Add(dicom.NewElement(dicom.TagColumns, uint16(3)))
	ds.Add(dicom.NewElement(dicom.TagRows, uint16(2)))
	require.Len(t, ds.Elements, 3)
	assert.Equal(t, dicom.TagSOPClassUID, ds.Elements[0].Tag)
	assert.Equal(t, dicom.TagRows, ds.Elements[1].Tag)
	rows, err := ds.Elements[1].GetUInt16()
	require.NoError(t, err)
	assert.Equal(t, uint16(2), rows)

	assert.True(t, ds.Remove(dicom.TagRows))
	assert.False(t, ds.Remove(dicom.TagRows))
	assert.Len(t, ds.Elements, 2)
}

func TestElementSetString(t *testing.T) {
	t.Parallel()

	rows := dicom.NewElement(dicom.TagRows)
	require.NoError(t, rows.SetString("512"))
	assert.Equal(t, []interface{}{uint16(512)}, rows.Value)
	assert.Error(t, rows.SetString("abc"))

	types := dicom.NewElement(dicom.Tag{Group: 0x0008, Element: 0x0008})
	require.NoError(t, types.SetString(`DERIVED\SECONDARY`))
	assert.Equal(t, "DERIVED\\SECONDARY", types.StringValue())

	require.NoError(t, types.SetString(""))
	assert.True(t, types.IsEmpty())
}
