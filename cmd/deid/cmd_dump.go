package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gillesdemey/go-deid/dicom"
	"github.com/gillesdemey/go-deid/internal/errors"
)

type dumpFlags struct {
	meta          bool
	extractPixels string
}

func newDumpCmd(a *app) *cobra.Command {
	flags := &dumpFlags{}
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print every element of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			file, err := dicom.ReadFile(path, dicom.ReadOptions{Logger: a.logger.WithField("file", path)})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flags.meta {
				dumpElements(out, "Meta", file.Meta)
			}
			dumpElements(out, "Element", file.DataSet)

			if flags.extractPixels == "" {
				return nil
			}
			written, err := extractPixels(file, path, flags.extractPixels)
			for _, p := range written {
				fmt.Fprintln(out, p)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&flags.meta, "meta", true, "Print the file meta group")
	cmd.Flags().StringVar(&flags.extractPixels, "extract-pixels", "", "Write the pixel data to this folder")
	return cmd
}

func dumpElements(out io.Writer, label string, ds *dicom.DataSet) {
	if ds == nil {
		return
	}
	for i, elem := range ds.Elements {
		fmt.Fprintf(out, "%s %d: %v\n", label, i, elem)
	}
}

// extractPixels writes native pixel data as one file and encapsulated pixel
// data as one file per fragment.
func extractPixels(file *dicom.File, path, folder string) ([]string, error) {
	elem, err := file.DataSet.FindElementByTag(dicom.TagPixelData)
	if err != nil {
		return nil, err
	}
	if len(elem.Value) == 0 {
		return nil, errors.Errorf("%s has empty pixel data", path)
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, errors.WithStackTrace(err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var chunks [][]byte
	switch v := elem.Value[0].(type) {
	case []byte:
		chunks = [][]byte{v}
	case *dicom.PixelDataInfo:
		chunks = v.Fragments
	default:
		return nil, errors.Errorf("unexpected pixel data %T", v)
	}

	var written []string
	for i, chunk := range chunks {
		out := filepath.Join(folder, fmt.Sprintf("%s.%d.raw", base, i))
		if err := os.WriteFile(out, chunk, 0o644); err != nil {
			return written, errors.WithStackTrace(err)
		}
		written = append(written, fmt.Sprintf("%s: %d bytes", out, len(chunk)))
	}
	return written, nil
}
