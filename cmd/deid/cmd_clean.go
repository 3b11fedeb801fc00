package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/gillesdemey/go-deid/deid"
	"github.com/gillesdemey/go-deid/dicom"
	"github.com/gillesdemey/go-deid/internal/errors"
	"github.com/gillesdemey/go-deid/runner"
)

var cleanLong = `Apply the header actions of the recipes to every image found under the
given paths. Folders are searched with the configured pattern; a DICOMDIR
expands to the images it lists. Cleaned copies are written to the output
folder, or next to each input with a "cleaned-" prefix.`

type cleanFlags struct {
	recipes        recipeFlags
	output         string
	overwrite      bool
	workers        int
	match          []string
	vars           map[string]string
	strict         bool
	removePrivate  bool
	stripSequences bool
}

func newCleanCmd(a *app) *cobra.Command {
	flags := &cleanFlags{}
	cmd := &cobra.Command{
		Use:   "clean <path>...",
		Short: "De-identify images",
		Long:  cleanLong,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, a, flags, args)
		},
	}
	f := cmd.Flags()
	flags.recipes.register(cmd)
	f.StringVarP(&flags.output, "output", "o", "", "Output folder")
	f.BoolVar(&flags.overwrite, "overwrite", false, "Replace existing output files")
	f.IntVarP(&flags.workers, "workers", "w", 0, "Images processed at once")
	f.StringSliceVar(&flags.match, "match", nil, "Only clean images matching Keyword=value, repeatable")
	f.StringToStringVar(&flags.vars, "var", nil, "Recipe variable name=value for var: values, repeatable")
	f.BoolVar(&flags.strict, "strict", false, "Fail when any image fails")
	f.BoolVar(&flags.removePrivate, "remove-private", false, "Remove every private tag")
	f.BoolVar(&flags.stripSequences, "strip-sequences", false, "Remove every sequence")
	return cmd
}

func runClean(cmd *cobra.Command, a *app, flags *cleanFlags, args []string) error {
	cfg := a.cfg
	f := cmd.Flags()
	if f.Changed("output") {
		cfg.OutputFolder = flags.output
	}
	if f.Changed("overwrite") {
		cfg.Overwrite = flags.overwrite
	}
	if f.Changed("workers") {
		cfg.Workers = flags.workers
	}
	if f.Changed("remove-private") {
		cfg.Put.RemovePrivate = flags.removePrivate
	}
	if f.Changed("strip-sequences") {
		cfg.Put.StripSequences = flags.stripSequences
	}

	r, err := a.recipe(cmd, &flags.recipes)
	if err != nil {
		return err
	}
	opts, err := cfg.ReplaceOptions(a.logger)
	if err != nil {
		return err
	}
	opts.Cache = deid.NewIndexCache(opts.Index)
	for _, m := range flags.match {
		query, err := dicom.NewQuery(m)
		if err != nil {
			return errors.WithStackTraceAndPrefix(err, "invalid --match %q", m)
		}
		opts.Match = append(opts.Match, query)
	}
	vars := deid.Variables{}
	for name, value := range flags.vars {
		vars[name] = value
	}

	files, err := discover(args, cfg.Pattern)
	if err != nil {
		return err
	}
	a.logger.Infof("Cleaning %d images with %d workers", len(files), cfg.Workers)

	var (
		mu      sync.Mutex
		out     = cmd.OutOrStdout()
		cleaned int
	)
	job := runner.JobFunc(func(_ context.Context, path string) error {
		res, err := deid.ReplaceFile(path, r, vars, opts)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		if res.Skipped {
			fmt.Fprintf(out, "skipped %s\n", path)
			return nil
		}
		cleaned++
		fmt.Fprintf(out, "%s -> %s\n", path, res.Output)
		return nil
	})

	err = runner.Run(cmd.Context(), files, job, runner.Options{Workers: cfg.Workers, Logger: a.logger})
	return report(a, err, flags.strict, cleaned, len(files))
}

// report downgrades per-image failures to a warning unless strict is set.
func report(a *app, err error, strict bool, done, total int) error {
	a.logger.Infof("Processed %d of %d images", done, total)
	var failed *errors.MultiError
	if err == nil || strict || !errors.As(err, &failed) {
		return err
	}
	a.logger.Warnf("%d images failed", failed.Len())
	return nil
}

// discover expands every path argument into image files.
func discover(args []string, pattern string) ([]string, error) {
	var files []string
	for _, arg := range args {
		found, err := runner.Discover(arg, pattern)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}
