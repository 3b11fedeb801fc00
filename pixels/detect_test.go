package pixels_test

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gillesdemey/go-deid/deid"
	"github.com/gillesdemey/go-deid/dicom"
	"github.com/gillesdemey/go-deid/pixels"
	"github.com/gillesdemey/go-deid/recipe"
)

func element(t *testing.T, name, value string) *dicom.Element {
	t.Helper()
	info, err := dicom.LookupTag(name)
	require.NoError(t, err)
	elem := &dicom.Element{Tag: info.Tag, VR: info.VR}
	require.NoError(t, elem.SetString(value))
	return elem
}

func dataset(elems ...*dicom.Element) *dicom.DataSet {
	ds := &dicom.DataSet{}
	for _, e := range elems {
		ds.Add(e)
	}
	return ds
}

func file(elems ...*dicom.Element) *dicom.File {
	f := dicom.NewFile()
	f.DataSet = dataset(elems...)
	return f
}

func region(t *testing.T, x0, y0, x1, y1 string) *dicom.DataSet {
	return dataset(
		element(t, "RegionLocationMinX0", x0),
		element(t, "RegionLocationMinY0", y0),
		element(t, "RegionLocationMaxX1", x1),
		element(t, "RegionLocationMaxY1", y1),
	)
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

func index(f *dicom.File) *deid.FieldIndex {
	return deid.BuildIndex(f, deid.DefaultIndexOptions())
}

func TestFilterPredicates(t *testing.T) {
	t.Parallel()

	idx := index(file(
		element(t, "Modality", "US"),
		element(t, "ImageType", `DERIVED\SECONDARY\SCREEN SAVE`),
		element(t, "SeriesDescription", ""),
		element(t, "Manufacturer", "GE Healthcare"),
	))

	assert.True(t, pixels.Contains(idx, "Manufacturer", "(GE|Siemens)"))
	assert.True(t, pixels.Contains(idx, "manufacturer", "healthcare"))
	assert.True(t, pixels.Contains(idx, "ImageType", "SAVE"))
	assert.True(t, pixels.Contains(idx, "ImageType", `SECONDARY\\SCREEN`))
	assert.False(t, pixels.Contains(idx, "Manufacturer", "GE Health("))
	assert.True(t, pixels.Contains(index(file(element(t, "Manufacturer", "GE Health(care)"))), "Manufacturer", "GE Health("), "invalid expressions match literally")
	assert.False(t, pixels.Contains(idx, "PatientName", ".*"))

	assert.True(t, pixels.Equals(idx, "Modality", "us"))
	assert.True(t, pixels.Equals(idx, "ImageType", "SECONDARY"))
	assert.False(t, pixels.Equals(idx, "Manufacturer", "GE"))

	// Missing and empty disagree on absent and blank fields.
	assert.True(t, pixels.Missing(idx, "PatientName"))
	assert.False(t, pixels.Empty(idx, "PatientName"))
	assert.False(t, pixels.Missing(idx, "SeriesDescription"))
	assert.True(t, pixels.Empty(idx, "SeriesDescription"))
	assert.False(t, pixels.Empty(idx, "Modality"))

	assert.True(t, pixels.Apply(idx, recipe.Filter{Op: recipe.FilterPresent, Field: "Modality"}))
	assert.True(t, pixels.Apply(idx, recipe.Filter{Op: recipe.FilterNotEquals, Field: "Modality", Value: "CT"}))
	assert.False(t, pixels.Apply(idx, recipe.Filter{Op: recipe.FilterNotContains, Field: "ImageType", Value: "save"}))
}

func TestHasBurnedPixelsOperators(t *testing.T) {
	t.Parallel()

	r := parseRecipe(t, `FORMAT dicom
%filter blacklist

LABEL Screen Save
contains Manufacturer (GE|Siemens) + contains SeriesDescription (screen|dose)
  coordinates 0,0,10,10

LABEL Either
equals Modality OT
  || equals BurnedInAnnotation YES
  keepcoordinates 1,1,2,2
`)

	tc := []struct {
		name   string
		header *dicom.File
		want   []string
	}{
		{
			name:   "and requires both",
			header: file(element(t, "Manufacturer", "GE"), element(t, "SeriesDescription", "Chest")),
		},
		{
			name:   "and fires",
			header: file(element(t, "Manufacturer", "Siemens"), element(t, "SeriesDescription", "Dose Report")),
			want:   []string{"Screen Save"},
		},
		{
			name:   "or fires on second",
			header: file(element(t, "Modality", "CT"), element(t, "BurnedInAnnotation", "YES")),
			want:   []string{"Either"},
		},
		{
			name:   "nothing",
			header: file(element(t, "Modality", "CT")),
		},
	}
	for _, tt := range tc {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := pixels.HasBurnedPixels(tt.header, r, nil)
			var labels []string
			for _, m := range result.Results {
				labels = append(labels, m.Name)
				assert.Equal(t, "blacklist", m.Group)
			}
			assert.Equal(t, tt.want, labels)
			assert.Equal(t, len(tt.want) > 0, result.Flagged)
		})
	}

	result := pixels.HasBurnedPixels(file(element(t, "Modality", "OT")), r, nil)
	require.Len(t, result.Results, 1)
	want := pixels.Match{
		Reason:      "equals Modality OT or equals BurnedInAnnotation YES",
		Group:       "blacklist",
		Name:        "Either",
		Coordinates: []pixels.Coordinate{{MaskValue: 0, Spec: "1,1,2,2"}},
	}
	if diff := cmp.Diff(want, result.Results[0]); diff != "" {
		t.Errorf("unexpected match (-want +got):\n%s", diff)
	}
}

func TestHasBurnedPixelsCoordinates(t *testing.T) {
	t.Parallel()

	r := parseRecipe(t, `FORMAT dicom
%filter graylist

LABEL Always
  coordinates all

LABEL Regions
present SequenceOfUltrasoundRegions
  coordinates from:SequenceOfUltrasoundRegions
  ctpcoordinates 0,0,100,20
`)

	info, err := dicom.LookupTag("SequenceOfUltrasoundRegions")
	require.NoError(t, err)
	regions := &dicom.Element{Tag: info.Tag, VR: "SQ", Value: []interface{}{
		region(t, "10", "20", "300", "400"),
		dataset(element(t, "RegionLocationMinX0", "5")),
		region(t, "0", "0", "64", "32"),
	}}

	f := file(element(t, "Rows", "480"), element(t, "Columns", "640"), element(t, "SamplesPerPixel", "3"), regions)
	result := pixels.HasBurnedPixels(f, r, nil)
	require.True(t, result.Flagged)
	want := []pixels.Match{
		{
			Group:       "graylist",
			Name:        "Always",
			Coordinates: []pixels.Coordinate{{MaskValue: 1, Spec: "0,0,640,480"}},
		},
		{
			Reason: "present SequenceOfUltrasoundRegions",
			Group:  "graylist",
			Name:   "Regions",
			Coordinates: []pixels.Coordinate{
				{MaskValue: 1, Spec: "10,20,300,400"},
				{MaskValue: 1, Spec: "0,0,64,32"},
				{MaskValue: 1, Spec: "0,0,100,20"},
			},
		},
	}
	if diff := cmp.Diff(want, result.Results); diff != "" {
		t.Errorf("unexpected matches (-want +got):\n%s", diff)
	}

	// Without image dimensions "all" cannot be expanded.
	logger, hook := newLogger()
	result = pixels.HasBurnedPixels(file(element(t, "Modality", "US")), r, logger)
	require.Len(t, result.Results, 1)
	assert.Empty(t, result.Results[0].Coordinates)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestHasBurnedPixelsBaseRecipe(t *testing.T) {
	t.Parallel()

	r, err := recipe.NewDeidRecipe(nil, true, nil)
	require.NoError(t, err)

	clean := file(element(t, "Modality", "CT"), element(t, "Manufacturer", "ACME"))
	assert.False(t, pixels.HasBurnedPixels(clean, r, nil).Flagged)

	screen := file(
		element(t, "Manufacturer", "Philips"),
		element(t, "SeriesDescription", "Dose Info"),
		element(t, "Rows", "2"),
		element(t, "Columns", "4"),
	)
	result := pixels.HasBurnedPixels(screen, r, nil)
	require.True(t, result.Flagged)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "Manufacturer Screen Save", result.Results[0].Name)
	assert.Equal(t, []pixels.Coordinate{{MaskValue: 1, Spec: "0,0,4,2"}}, result.Results[0].Coordinates)

	whitelisted := file(element(t, "BurnedInAnnotation", "NO"), element(t, "ImageType", `ORIGINAL\PRIMARY`))
	result = pixels.HasBurnedPixels(whitelisted, r, nil)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "whitelist", result.Results[0].Group)
}

func TestSummary(t *testing.T) {
	t.Parallel()

	s := pixels.NewSummary()
	var wg sync.WaitGroup
	for i, path := range []string{"c.dcm", "a.dcm", "b.dcm", "d.dcm"} {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			s.Add(path, pixels.Result{Flagged: i%2 == 0})
		}(i, path)
	}
	wg.Wait()

	assert.Equal(t, []string{"a.dcm", "d.dcm"}, s.Clean())
	assert.Equal(t, []string{"b.dcm", "c.dcm"}, s.Flagged())
	_, ok := s.Result("c.dcm")
	assert.True(t, ok)
	_, ok = s.Result("a.dcm")
	assert.False(t, ok)
}

func TestHasBurnedPixelsPixelData(t *testing.T) {
	t.Parallel()

	r := parseRecipe(t, `FORMAT dicom
%filter graylist

LABEL Has Pixels
present PixelData

LABEL No Pixels
missing PixelData
`)
	pixelData := &dicom.Element{Tag: dicom.TagPixelData, VR: "OW", Value: []interface{}{[]byte{0, 1, 2, 3}}}

	result := pixels.HasBurnedPixels(file(element(t, "Modality", "CT"), pixelData), r, nil)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "Has Pixels", result.Results[0].Name)

	result = pixels.HasBurnedPixels(file(element(t, "Modality", "CT")), r, nil)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "No Pixels", result.Results[0].Name)
}
