package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRecipeCmd(a *app) *cobra.Command {
	var base bool
	var list bool
	cmd := &cobra.Command{
		Use:   "recipe [<path>...]",
		Short: "Parse recipes and print the merged result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				a.cfg.Recipes = args
				a.cfg.Base = &base
			}
			r, err := a.cfg.Recipe(a.logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !list {
				fmt.Fprint(out, r.String())
				return nil
			}
			fmt.Fprintf(out, "format: %s\n", r.Format())
			fmt.Fprintf(out, "actions: %d\n", len(r.Actions("", "")))
			fmt.Fprintf(out, "filters: %v\n", r.LsFilters())
			fmt.Fprintf(out, "values: %v\n", r.LsValuesLists())
			fmt.Fprintf(out, "fields: %v\n", r.LsFieldsLists())
			return nil
		},
	}
	cmd.Flags().BoolVar(&base, "base", false, "Load the embedded base recipe before the given ones")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "Only list the sections")
	return cmd
}
