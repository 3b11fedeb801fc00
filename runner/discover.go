// Package runner processes batches of images with a bounded pool of workers.
package runner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/gillesdemey/go-deid/dicom"
	"github.com/gillesdemey/go-deid/internal/errors"
)

// DICOMDIR is the basename of a media directory file.
const DICOMDIR = "DICOMDIR"

// Discover returns the sorted paths of the images under root whose basename
// matches pattern. A root naming a DICOMDIR expands to the images it lists;
// any other file is returned as is.
func Discover(root, pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "invalid pattern %q", pattern)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}
	if !info.IsDir() {
		if strings.EqualFold(filepath.Base(root), DICOMDIR) {
			return expandDICOMDIR(root)
		}
		return []string{root}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !g.Match(d.Name()) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}
	sort.Strings(paths)
	return paths, nil
}

func expandDICOMDIR(path string) ([]string, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}
	defer in.Close()

	records, err := dicom.ParseDICOMDIR(in)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "cannot read %s", path)
	}
	dir := filepath.Dir(path)
	seen := map[string]bool{}
	var paths []string
	for _, rec := range records {
		p := filepath.Join(dir, filepath.FromSlash(rec.Path))
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}
