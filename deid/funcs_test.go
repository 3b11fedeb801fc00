package deid_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gillesdemey/go-deid/deid"
)

func TestJitterDate(t *testing.T) {
	t.Parallel()

	tc := []struct {
		value string
		days  int
		want  string
	}{
		{"20230101", 1, "20230102"},
		{"20230101", -1, "20221231"},
		{"20240228", 1, "20240229"},
		{"20230101", 365, "20240101"},
	}
	for _, tt := range tc {
		got, err := deid.JitterDate(tt.value, tt.days)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := deid.JitterDate("2023-01-01", 1)
	assert.Error(t, err)
	_, err = deid.JitterDate("", 1)
	assert.Error(t, err)
	_, err = deid.JitterDate("99991231", 1)
	assert.Error(t, err)
	_, err = deid.JitterDate("20230104", 20230104)
	assert.Error(t, err)
}

func TestJitterDateTime(t *testing.T) {
	t.Parallel()

	tc := []struct {
		value string
		days  int
		want  string
	}{
		{"20230101120000", 1, "20230102120000"},
		{"20230101120000.123456", 1, "20230102120000.123456"},
		{"20230101120000.5+0100", -1, "20221231120000.5+0100"},
		{"202301011200", 31, "202302011200"},
		{"20230101", 2, "20230103"},
	}
	for _, tt := range tc {
		got, err := deid.JitterDateTime(tt.value, tt.days)
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.want, got, tt.value)
	}

	_, err := deid.JitterDateTime("2023010112000", 1)
	assert.Error(t, err)
	_, err = deid.JitterDateTime("00010101120000", -1)
	assert.Error(t, err)
}

func TestGenerateUID(t *testing.T) {
	t.Parallel()

	a := deid.GenerateUID(deid.DefaultUIDPrefix, []string{"1.2.3"})
	b := deid.GenerateUID(deid.DefaultUIDPrefix, []string{"1.2.3"})
	c := deid.GenerateUID(deid.DefaultUIDPrefix, []string{"1.2.4"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "2.25."))
	assert.LessOrEqual(t, len(a), 64)
	assert.Regexp(t, `^2\.25\.[1-9][0-9]*$`, a)

	r1 := deid.GenerateUID("1.2.", nil)
	r2 := deid.GenerateUID("1.2.", nil)
	assert.NotEqual(t, r1, r2)
}

func TestBuiltinUIDs(t *testing.T) {
	t.Parallel()

	file := testFile(t)
	r := parseRecipe(t, `FORMAT dicom
%header
REPLACE StudyInstanceUID deid_func:basic_uuid
ADD StudyInstanceUID deid_func:dicom_uuid
REPLACE SeriesDescription deid_func:dicom_uuid org_root=1.2.3
REPLACE SOPInstanceUID deid_func:pydicom_uuid prefix=notanoid
`)
	logger, hook := newLogger()
	opts := deid.DefaultOptions()
	opts.Logger = logger
	deid.NewDicomParser(file, r, opts).Parse(false, false)

	got, ok := value(t, file.DataSet, "StudyInstanceUID")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(got, deid.DefaultOrgRoot+"."))
	assert.LessOrEqual(t, len(got), 64)

	got, _ = value(t, file.DataSet, "SeriesDescription")
	assert.Regexp(t, `^1\.2\.3\.[0-9]+$`, got)

	got, _ = value(t, file.DataSet, "SOPInstanceUID")
	assert.Equal(t, "1.2.3.4.5", got)
	assert.Contains(t, warnings(hook), "notanoid is not a valid UID prefix, it must end with a dot")
}

func TestCustomFuncTable(t *testing.T) {
	t.Parallel()

	file := testFile(t)
	opts := deid.DefaultOptions()
	opts.Funcs = deid.Funcs{
		"initials": func(call deid.Call) interface{} {
			var out []string
			for _, part := range strings.Split(call.Field.Value(), "^") {
				out = append(out, part[:1])
			}
			return strings.Join(out, "") + call.Extras["suffix"]
		},
	}
	r := parseRecipe(t, "FORMAT dicom\n%header\nREPLACE PatientName deid_func:initials suffix=\"  x\"\n")
	deid.NewDicomParser(file, r, opts).Parse(false, false)

	got, _ := value(t, file.DataSet, "PatientName")
	assert.Equal(t, "DJ  x", got)
}
