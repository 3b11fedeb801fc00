package deid

import (
	"os"
	"path/filepath"

	"github.com/gillesdemey/go-deid/dicom"
	"github.com/gillesdemey/go-deid/internal/errors"
	"github.com/gillesdemey/go-deid/internal/log"
	"github.com/gillesdemey/go-deid/recipe"
)

// GetIdentifiers returns the value of every non-sequence field of file by
// uid. The map seeds the variables of a later ReplaceIdentifiers run.
func GetIdentifiers(file *dicom.File, opts IndexOptions) map[string]string {
	ids := map[string]string{}
	for _, f := range BuildIndex(file, opts).Fields() {
		if f.Element.IsSequence() {
			continue
		}
		ids[f.UID] = f.Value()
	}
	return ids
}

// ReplaceOptions configure ReplaceIdentifiers.
type ReplaceOptions struct {
	Options
	StripSequences bool
	RemovePrivate  bool
	// Save writes the cleaned files to OutputFolder, or next to the input
	// when it is empty.
	Save         bool
	OutputFolder string
	Overwrite    bool
	// Match restricts cleaning to files matching every query.
	Match []*dicom.Element
}

// Replaced is the outcome for one input file.
type Replaced struct {
	Input  string
	Output string
	File   *dicom.File
	// Skipped is true when the file did not match the queries.
	Skipped bool
}

// ReplaceFile reads path, applies the recipe with vars defined, and saves
// the result when opts.Save is set.
func ReplaceFile(path string, r *recipe.DeidRecipe, vars Variables, opts ReplaceOptions) (*Replaced, error) {
	logger := log.OrDiscard(opts.Logger).WithField("file", path)
	file, err := dicom.ReadFile(path, dicom.ReadOptions{Logger: logger})
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "reading %s", path)
	}

	out := &Replaced{Input: path, File: file}
	for _, query := range opts.Match {
		match, _, err := dicom.Query(file.DataSet, query)
		if err != nil {
			return nil, errors.WithStackTraceAndPrefix(err, "matching %s", path)
		}
		if !match {
			logger.Debugf("%s does not match, skipping", query.Tag)
			out.Skipped = true
			return out, nil
		}
	}

	parserOpts := opts.Options
	parserOpts.Logger = logger
	parser := NewDicomParser(file, r, parserOpts)
	for name, value := range vars {
		parser.Define(name, value)
	}
	parser.Parse(opts.StripSequences, opts.RemovePrivate)
	if opts.Cache != nil {
		opts.Cache.Forget(file)
	}

	if !opts.Save {
		return out, nil
	}
	out.Output = outputPath(path, opts.OutputFolder)
	if !opts.Overwrite {
		if _, err := os.Stat(out.Output); err == nil {
			return nil, errors.Errorf("%s exists, use overwrite to replace it", out.Output)
		}
	}
	if dir := filepath.Dir(out.Output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.WithStackTrace(err)
		}
	}
	if err := dicom.WriteFile(out.Output, file); err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "writing %s", out.Output)
	}
	logger.Debugf("Wrote %s", out.Output)
	return out, nil
}

// outputPath keeps the file name and moves it to folder. Without a folder
// the name gets a "cleaned-" prefix.
func outputPath(path, folder string) string {
	if folder == "" {
		return filepath.Join(filepath.Dir(path), "cleaned-"+filepath.Base(path))
	}
	return filepath.Join(folder, filepath.Base(path))
}

// ReplaceIdentifiers cleans files one after the other. ids holds the
// variables of each file, keyed by path. It stops at the first error; see
// the runner package for batches that isolate failures.
func ReplaceIdentifiers(files []string, r *recipe.DeidRecipe, ids map[string]Variables, opts ReplaceOptions) ([]*Replaced, error) {
	results := make([]*Replaced, 0, len(files))
	for _, path := range files {
		res, err := ReplaceFile(path, r, ids[path], opts)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
