package pixels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gillesdemey/go-deid/dicom"
	"github.com/gillesdemey/go-deid/recipe"
)

func TestFoldFlags(t *testing.T) {
	t.Parallel()

	and, or := recipe.OperatorAnd, recipe.OperatorOr
	tc := []struct {
		name  string
		items []interface{}
		want  bool
	}{
		{"empty", nil, false},
		{"single true", []interface{}{true}, true},
		{"single false", []interface{}{false}, false},
		{"and", []interface{}{true, and, false}, false},
		{"or", []interface{}{false, or, true}, true},
		{"bare flag is anded", []interface{}{true, false}, false},
		{"left to right", []interface{}{true, or, false, and, false}, false},
		{"no short circuit", []interface{}{false, and, true, or, true}, true},
		{"leading operator", []interface{}{or, false, or, true}, true},
	}
	for _, tt := range tc {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, foldFlags(tt.items))
		})
	}
}

func imageHeader(t *testing.T, values map[string]string) *dicom.DataSet {
	t.Helper()
	ds := &dicom.DataSet{}
	for name, value := range values {
		info, err := dicom.LookupTag(name)
		require.NoError(t, err)
		elem := &dicom.Element{Tag: info.Tag, VR: info.VR}
		require.NoError(t, elem.SetString(value))
		ds.Add(elem)
	}
	return ds
}

func TestAllCoordinates(t *testing.T) {
	t.Parallel()

	tc := []struct {
		name   string
		header map[string]string
		shape  []int
		want   string
	}{
		{"greyscale", map[string]string{"Rows": "512", "Columns": "256"}, []int{512, 256}, "0,0,256,512"},
		{"color", map[string]string{"Rows": "480", "Columns": "640", "SamplesPerPixel": "3"}, []int{480, 640, 3}, "0,0,640,480"},
		{"cine", map[string]string{"Rows": "480", "Columns": "640", "NumberOfFrames": "10"}, []int{10, 480, 640}, "0,0,640,480"},
		{"color cine", map[string]string{"Rows": "480", "Columns": "640", "NumberOfFrames": "10", "SamplesPerPixel": "3"}, []int{10, 480, 640, 3}, "0,0,640,480"},
		{"single frame", map[string]string{"Rows": "4", "Columns": "8", "NumberOfFrames": "1", "SamplesPerPixel": "1"}, []int{4, 8}, "0,0,8,4"},
	}
	for _, tt := range tc {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ds := imageHeader(t, tt.header)
			shape, err := Shape(ds)
			require.NoError(t, err)
			assert.Equal(t, tt.shape, shape)
			got, err := allCoordinates(ds)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := allCoordinates(imageHeader(t, map[string]string{"Rows": "4"}))
	assert.Error(t, err)
}
