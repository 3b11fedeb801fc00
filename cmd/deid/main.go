// deid de-identifies DICOM headers with recipes.
//
// Usage:
//
//	deid clean [--recipe <path>]... [-o <folder>] <path>...
//	deid inspect [--recipe <path>]... <path>...
//	deid fields [--find <name>] <file>
//	deid recipe [--base] [<path>...]
//	deid dump [--extract-pixels <folder>] <file>
package main

import (
	"fmt"
	"os"

	"github.com/gillesdemey/go-deid/internal/errors"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if os.Getenv("DEID_DEBUG") != "" {
			fmt.Fprintln(os.Stderr, errors.ErrorWithStackTrace(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
