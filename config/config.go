// Package config loads the YAML run configuration of the deid command.
package config

import (
	"os"
	"runtime"
	"strings"

	"dario.cat/mergo"
	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/gillesdemey/go-deid/deid"
	"github.com/gillesdemey/go-deid/internal/errors"
	"github.com/gillesdemey/go-deid/internal/log"
	"github.com/gillesdemey/go-deid/recipe"
)

const DefaultPattern = "*.dcm"

// Get configures the field index.
type Get struct {
	// Skip lists keywords or tags left out of the index.
	Skip []string `yaml:"skip"`
	// ExpandSequences indexes the items of sequences. Unset means true.
	ExpandSequences *bool `yaml:"expand_sequences"`
}

// Put configures what happens after the recipe actions.
type Put struct {
	// Actions are header action lines, e.g. "REMOVE PatientComments".
	Actions        []string `yaml:"actions"`
	StripSequences bool     `yaml:"strip_sequences"`
	RemovePrivate  bool     `yaml:"remove_private"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is a complete run configuration.
type Config struct {
	Get     Get      `yaml:"get"`
	Put     Put      `yaml:"put"`
	Recipes []string `yaml:"recipes"`
	// Base loads the embedded base recipe before Recipes. Unset means true
	// when no recipe is given.
	Base         *bool  `yaml:"base"`
	Workers      int    `yaml:"workers"`
	OutputFolder string `yaml:"output_folder"`
	Overwrite    bool   `yaml:"overwrite"`
	Pattern      string `yaml:"pattern"`
	Log          Log    `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	expand := true
	return &Config{
		Get:     Get{Skip: []string{"PixelData"}, ExpandSequences: &expand},
		Workers: runtime.NumCPU(),
		Pattern: DefaultPattern,
		Log:     Log{Level: logrus.InfoLevel.String(), Format: log.FormatText},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	user := &Config{}
	if err := yaml.Unmarshal(data, user); err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "invalid configuration")
	}
	cfg := Default()
	// WithoutDereference lets an explicit "false" replace a true default.
	if err := mergo.Merge(cfg, user, mergo.WithOverride, mergo.WithoutDereference); err != nil {
		return nil, errors.WithStackTrace(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	errs := &errors.MultiError{}
	if c.Workers < 1 {
		errs = errs.Append(errors.Errorf("workers must be at least 1, found %d", c.Workers))
	}
	if _, err := glob.Compile(c.Pattern); err != nil {
		errs = errs.Append(errors.Errorf("invalid pattern %q: %v", c.Pattern, err))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = errs.Append(errors.Errorf("invalid log level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", log.FormatText, log.FormatJSON:
	default:
		errs = errs.Append(errors.Errorf("invalid log format %q", c.Log.Format))
	}
	if _, err := c.PutActions(); err != nil {
		errs = errs.Append(err)
	}
	return errs.ErrorOrNil()
}

// LoadBase reports whether the embedded base recipe is loaded.
func (c *Config) LoadBase() bool {
	if c.Base != nil {
		return *c.Base
	}
	return len(c.Recipes) == 0
}

// PutActions parses the put action lines.
func (c *Config) PutActions() ([]recipe.Action, error) {
	if len(c.Put.Actions) == 0 {
		return nil, nil
	}
	text := "FORMAT dicom\n%header\n" + strings.Join(c.Put.Actions, "\n") + "\n"
	doc, err := recipe.Parse("put.actions", text, nil)
	if err != nil {
		return nil, err
	}
	return doc.Header, nil
}

// IndexOptions returns the field index settings.
func (c *Config) IndexOptions() deid.IndexOptions {
	opts := deid.IndexOptions{Skip: c.Get.Skip, ExpandSequences: true}
	if c.Get.ExpandSequences != nil {
		opts.ExpandSequences = *c.Get.ExpandSequences
	}
	return opts
}

// Recipe loads the configured recipes.
func (c *Config) Recipe(logger *logrus.Entry) (*recipe.DeidRecipe, error) {
	return recipe.NewDeidRecipe(c.Recipes, c.LoadBase(), logger)
}

// ReplaceOptions returns the cleaning options for deid.ReplaceFile.
func (c *Config) ReplaceOptions(logger *logrus.Entry) (deid.ReplaceOptions, error) {
	actions, err := c.PutActions()
	if err != nil {
		return deid.ReplaceOptions{}, err
	}
	opts := deid.DefaultOptions()
	opts.Index = c.IndexOptions()
	opts.PutActions = actions
	opts.Logger = logger
	return deid.ReplaceOptions{
		Options:        opts,
		StripSequences: c.Put.StripSequences,
		RemovePrivate:  c.Put.RemovePrivate,
		Save:           true,
		OutputFolder:   c.OutputFolder,
		Overwrite:      c.Overwrite,
	}, nil
}
