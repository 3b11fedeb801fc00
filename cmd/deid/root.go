package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gillesdemey/go-deid/config"
	"github.com/gillesdemey/go-deid/internal/log"
	"github.com/gillesdemey/go-deid/recipe"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *logrus.Entry
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "deid",
		Short: "De-identify DICOM headers with recipes",
		Long: "deid applies de-identification recipes to DICOM headers and flags\n" +
			"images that may carry burned-in annotations.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: a.setup,
		Version:           version,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "YAML configuration file")
	f.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warning or error")
	f.StringVar(&a.logFormat, "log-format", "", "Log format: text or json")

	cmd.AddCommand(newCleanCmd(a))
	cmd.AddCommand(newInspectCmd(a))
	cmd.AddCommand(newFieldsCmd(a))
	cmd.AddCommand(newRecipeCmd(a))
	cmd.AddCommand(newDumpCmd(a))
	return cmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := log.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// recipeFlags select the recipes of a subcommand.
type recipeFlags struct {
	paths []string
	base  bool
}

func (rf *recipeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&rf.paths, "recipe", "r", nil, "Recipe file or folder, repeatable")
	cmd.Flags().BoolVar(&rf.base, "base", false, "Load the embedded base recipe before the given ones")
}

// recipe loads the recipes named by flags, falling back to the configuration.
func (a *app) recipe(cmd *cobra.Command, rf *recipeFlags) (*recipe.DeidRecipe, error) {
	if cmd.Flags().Changed("recipe") {
		a.cfg.Recipes = rf.paths
		a.cfg.Base = nil
	}
	if cmd.Flags().Changed("base") {
		a.cfg.Base = &rf.base
	}
	return a.cfg.Recipe(a.logger)
}
