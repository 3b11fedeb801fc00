package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gillesdemey/go-deid/dicom"
)

func element(t *testing.T, name, value string) *dicom.Element {
	t.Helper()
	info, err := dicom.LookupTag(name)
	require.NoError(t, err)
	elem := &dicom.Element{Tag: info.Tag, VR: info.VR}
	require.NoError(t, elem.SetString(value))
	return elem
}

func writeImage(t *testing.T, path string, elems ...*dicom.Element) {
	t.Helper()
	f := dicom.NewFile()
	for _, e := range elems {
		f.DataSet.Add(e)
	}
	f.DataSet.Add(&dicom.Element{Tag: dicom.TagPixelData, VR: "OW", Value: []interface{}{[]byte{1, 2, 3, 4}}})
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, dicom.WriteFile(path, f))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeRecipe(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, "deid.custom")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestClean(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	out := t.TempDir()
	writeImage(t, filepath.Join(in, "a.dcm"), element(t, "PatientName", "Doe^Jane"), element(t, "Modality", "CT"))
	writeImage(t, filepath.Join(in, "series", "b.dcm"), element(t, "PatientName", "Doe^John"), element(t, "Modality", "MR"))
	recipe := writeRecipe(t, in, "FORMAT dicom\n%header\nREPLACE PatientName var:name\nADD PatientIdentityRemoved YES\n")

	stdout, err := execute(t, "clean", "--recipe", recipe, "-o", out, "--var", "name=anonymous", "--log-level", "error", in)
	require.NoError(t, err)
	assert.Contains(t, stdout, filepath.Join(out, "a.dcm"))
	assert.Contains(t, stdout, filepath.Join(out, "b.dcm"))

	cleaned, err := dicom.ReadFile(filepath.Join(out, "b.dcm"), dicom.ReadOptions{})
	require.NoError(t, err)
	elem, err := cleaned.DataSet.FindElementByName("PatientName")
	require.NoError(t, err)
	assert.Equal(t, "anonymous", elem.StringValue())
	elem, err = cleaned.DataSet.FindElementByName("PatientIdentityRemoved")
	require.NoError(t, err)
	assert.Equal(t, "YES", elem.StringValue())

	// Outputs exist: every image fails, which is only fatal with --strict.
	_, err = execute(t, "clean", "--recipe", recipe, "-o", out, "--log-level", "error", in)
	assert.NoError(t, err)
	_, err = execute(t, "clean", "--recipe", recipe, "-o", out, "--strict", "--log-level", "error", in)
	assert.Error(t, err)

	stdout, err = execute(t, "clean", "--recipe", recipe, "-o", out, "--overwrite", "--match", "Modality=MR", "--log-level", "error", in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "skipped "+filepath.Join(in, "a.dcm"))
}

func TestInspect(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "screen.dcm"),
		element(t, "Manufacturer", "GE MEDICAL"),
		element(t, "SeriesDescription", "Screen Save"),
		element(t, "Rows", "4"),
		element(t, "Columns", "8"),
	)
	writeImage(t, filepath.Join(dir, "ct.dcm"), element(t, "Modality", "CT"))

	stdout, err := execute(t, "inspect", "--log-level", "error", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "FLAGGED "+filepath.Join(dir, "screen.dcm"))
	assert.Contains(t, stdout, "blacklist: Manufacturer Screen Save")
	assert.Contains(t, stdout, "mask=1 0,0,8,4")
	assert.Contains(t, stdout, "CLEAN "+filepath.Join(dir, "ct.dcm"))
	assert.Contains(t, stdout, "1 flagged, 1 clean")

	recipe := writeRecipe(t, dir, "FORMAT dicom\n%header\nREMOVE PatientName\n")
	_, err = execute(t, "inspect", "--recipe", recipe, dir)
	assert.Error(t, err)
}

func TestFieldsAndDump(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "image.dcm")
	writeImage(t, path, element(t, "PatientName", "Doe^Jane"), element(t, "PatientID", "42"))

	stdout, err := execute(t, "fields", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "(0010,0010)")
	assert.Contains(t, stdout, "Doe^Jane")
	assert.NotContains(t, stdout, "(7FE0,0010)")

	stdout, err = execute(t, "fields", "--find", "patientid", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "42")
	assert.NotContains(t, stdout, "Doe^Jane")

	pixels := filepath.Join(t.TempDir(), "pixels")
	stdout, err = execute(t, "dump", "--extract-pixels", pixels, path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Meta 0:")
	assert.Contains(t, stdout, "(0010,0010)")
	data, err := os.ReadFile(filepath.Join(pixels, "image.0.raw"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)
}

func TestRecipe(t *testing.T) {
	t.Parallel()

	stdout, err := execute(t, "recipe")
	require.NoError(t, err)
	assert.Contains(t, stdout, "FORMAT dicom")
	assert.Contains(t, stdout, "%filter blacklist")

	stdout, err = execute(t, "recipe", "--list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "filters: [blacklist graylist whitelist]")

	path := writeRecipe(t, t.TempDir(), "FORMAT dicom\n%header\nREMOVE PatientName\n")
	stdout, err = execute(t, "recipe", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "REMOVE PatientName")
	assert.NotContains(t, stdout, "%filter")

	_, err = execute(t, "recipe", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestConfigFlag(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "deid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o644))
	_, err := execute(t, "--config", path, "recipe")
	assert.Error(t, err)

	_, err = execute(t, "--log-format", "xml", "recipe")
	assert.Error(t, err)
}
