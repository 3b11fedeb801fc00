package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gillesdemey/go-deid/dicom"
	"github.com/gillesdemey/go-deid/internal/errors"
	"github.com/gillesdemey/go-deid/pixels"
	"github.com/gillesdemey/go-deid/runner"
)

type inspectFlags struct {
	recipes recipeFlags
	workers int
	strict  bool
}

func newInspectCmd(a *app) *cobra.Command {
	flags := &inspectFlags{}
	cmd := &cobra.Command{
		Use:   "inspect <path>...",
		Short: "Flag images that may carry burned-in annotations",
		Long: "Evaluate the %filter sections of the recipes against every image and\n" +
			"list the flagged ones with the regions to mask.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, a, flags, args)
		},
	}
	flags.recipes.register(cmd)
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Images processed at once")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "Fail when any image cannot be read")
	return cmd
}

func runInspect(cmd *cobra.Command, a *app, flags *inspectFlags, args []string) error {
	if cmd.Flags().Changed("workers") {
		a.cfg.Workers = flags.workers
	}
	r, err := a.recipe(cmd, &flags.recipes)
	if err != nil {
		return err
	}
	if !r.HasFilters() {
		return errors.New("the recipes have no %filter section")
	}
	files, err := discover(args, a.cfg.Pattern)
	if err != nil {
		return err
	}

	summary := pixels.NewSummary()
	job := runner.JobFunc(func(_ context.Context, path string) error {
		logger := a.logger.WithField("file", path)
		file, err := dicom.ReadFile(path, dicom.ReadOptions{Logger: logger})
		if err != nil {
			return err
		}
		summary.Add(path, pixels.HasBurnedPixels(file, r, logger))
		return nil
	})
	runErr := runner.Run(cmd.Context(), files, job, runner.Options{Workers: a.cfg.Workers, Logger: a.logger})

	out := cmd.OutOrStdout()
	for _, path := range summary.Flagged() {
		result, _ := summary.Result(path)
		fmt.Fprintf(out, "FLAGGED %s\n", path)
		for _, m := range result.Results {
			fmt.Fprintf(out, "  %s: %s", m.Group, m.Name)
			if m.Reason != "" {
				fmt.Fprintf(out, " (%s)", m.Reason)
			}
			fmt.Fprintln(out)
			for _, c := range m.Coordinates {
				fmt.Fprintf(out, "    mask=%d %s\n", c.MaskValue, c.Spec)
			}
		}
	}
	clean := summary.Clean()
	for _, path := range clean {
		fmt.Fprintf(out, "CLEAN %s\n", path)
	}
	flagged := len(summary.Flagged())
	fmt.Fprintf(out, "%d flagged, %d clean\n", flagged, len(clean))
	return report(a, runErr, flags.strict, flagged+len(clean), len(files))
}
