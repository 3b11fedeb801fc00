package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gillesdemey/go-deid/deid"
	"github.com/gillesdemey/go-deid/dicom"
)

type fieldsFlags struct {
	find   string
	values []string
}

func newFieldsCmd(a *app) *cobra.Command {
	flags := &fieldsFlags{}
	cmd := &cobra.Command{
		Use:   "fields <file>",
		Short: "List the fields a recipe can address in an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := dicom.ReadFile(args[0], dicom.ReadOptions{Logger: a.logger})
			if err != nil {
				return err
			}
			idx := deid.BuildIndex(file, a.cfg.IndexOptions())

			fields := idx.Fields()
			switch {
			case flags.find != "":
				fields = idx.FindByName(flags.find)
			case len(flags.values) > 0:
				fields = idx.FindByValues(flags.values)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "UID\tNAME\tVR\tVALUE")
			for _, f := range fields {
				value := f.Value()
				if f.Element.IsSequence() {
					value = fmt.Sprintf("%d items", len(f.Element.Items()))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.UID, f.Name, f.Element.VR, value)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&flags.find, "find", "", "Only fields whose name contains this text")
	cmd.Flags().StringSliceVar(&flags.values, "values", nil, "Only fields holding one of these values")
	return cmd
}
