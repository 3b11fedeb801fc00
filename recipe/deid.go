package recipe

import (
	"embed"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gillesdemey/go-deid/internal/errors"
	"github.com/gillesdemey/go-deid/internal/log"
)

//go:embed data/deid.*
var baseRecipes embed.FS

// DefaultBase is the embedded recipe loaded when base recipes are enabled.
const DefaultBase = "dicom"

// DeidRecipe holds one or more merged recipes and exposes their sections.
type DeidRecipe struct {
	// Paths lists the recipe files loaded so far, in order.
	Paths []string

	doc    *Document
	logger *logrus.Entry
}

// NewDeidRecipe loads the recipes at paths, in order. When base is true (or
// no path is given) the embedded DefaultBase recipe is loaded first, so the
// given recipes append to its actions and override its named groups.
func NewDeidRecipe(paths []string, base bool, logger *logrus.Entry) (*DeidRecipe, error) {
	r := &DeidRecipe{doc: NewDocument(), logger: log.OrDiscard(logger)}
	if base || len(paths) == 0 {
		if err := r.LoadBase(DefaultBase); err != nil {
			return nil, err
		}
	}
	if err := r.Load(paths...); err != nil {
		return nil, err
	}
	return r, nil
}

// NewDeidRecipeFromText builds a recipe from text alone, without the base
// recipe.
func NewDeidRecipeFromText(name, text string, logger *logrus.Entry) (*DeidRecipe, error) {
	r := &DeidRecipe{doc: NewDocument(), logger: log.OrDiscard(logger)}
	if err := r.LoadText(name, text); err != nil {
		return nil, err
	}
	return r, nil
}

// BaseRecipe returns the text of an embedded recipe, e.g. "dicom".
func BaseRecipe(name string) (string, error) {
	data, err := baseRecipes.ReadFile("data/deid." + name)
	if err != nil {
		return "", errors.WithStackTrace(&ParseError{Source: "deid." + name, Reason: "no such base recipe"})
	}
	return string(data), nil
}

// LoadBase merges an embedded recipe.
func (r *DeidRecipe) LoadBase(name string) error {
	text, err := BaseRecipe(name)
	if err != nil {
		return err
	}
	return r.LoadText("deid."+name, text)
}

// Load parses and merges recipe files. A directory is searched for files
// named "deid" or "deid.*".
func (r *DeidRecipe) Load(paths ...string) error {
	for _, path := range paths {
		files, err := findRecipes(path)
		if err != nil {
			return err
		}
		for _, file := range files {
			doc, err := ParseFile(file, r.logger)
			if err != nil {
				return err
			}
			if err := r.merge(file, doc); err != nil {
				return err
			}
			r.Paths = append(r.Paths, file)
		}
	}
	return nil
}

// LoadText parses and merges recipe text. name is used in error messages.
func (r *DeidRecipe) LoadText(name, text string) error {
	doc, err := Parse(name, text, r.logger)
	if err != nil {
		return err
	}
	return r.merge(name, doc)
}

func (r *DeidRecipe) merge(source string, doc *Document) error {
	if err := r.doc.Merge(doc); err != nil {
		return errors.WithStackTrace(&ParseError{Source: source, Reason: err.Error()})
	}
	return nil
}

func findRecipes(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	matches, err := filepath.Glob(filepath.Join(path, "deid*"))
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}
	var files []string
	for _, m := range matches {
		base := filepath.Base(m)
		if base == "deid" || strings.HasPrefix(base, "deid.") {
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no deid recipe found in %s", path)
	}
	sort.Strings(files)
	return files, nil
}

// Document returns the merged document. It must not be modified.
func (r *DeidRecipe) Document() *Document {
	return r.doc
}

// Format returns the recipe format, e.g. "dicom".
func (r *DeidRecipe) Format() string {
	return r.doc.Format
}

// String serializes the merged document as recipe text.
func (r *DeidRecipe) String() string {
	return Format(r.doc)
}

// Actions returns the header actions in application order, optionally
// restricted to one verb and/or one field. Empty arguments match everything.
func (r *DeidRecipe) Actions(action ActionKind, field string) []Action {
	var actions []Action
	for _, a := range r.doc.Header {
		if action != "" && a.Action != action {
			continue
		}
		if field != "" && !strings.EqualFold(a.Field, field) {
			continue
		}
		actions = append(actions, a)
	}
	return actions
}

// Filters returns the filter groups, or only the named one.
func (r *DeidRecipe) Filters(group string) map[string][]Criterion {
	return selectGroup(r.doc.Filters, group)
}

// ValuesLists returns the %values groups, or only the named one.
func (r *DeidRecipe) ValuesLists(name string) map[string][]GroupAction {
	return selectGroup(r.doc.Values, name)
}

// FieldsLists returns the %fields groups, or only the named one.
func (r *DeidRecipe) FieldsLists(name string) map[string][]GroupAction {
	return selectGroup(r.doc.Fields, name)
}

func selectGroup[V any](groups map[string]V, name string) map[string]V {
	if name == "" {
		return groups
	}
	out := map[string]V{}
	if v, ok := groups[name]; ok {
		out[name] = v
	}
	return out
}

func (r *DeidRecipe) HasActions() bool     { return len(r.doc.Header) > 0 }
func (r *DeidRecipe) HasFilters() bool     { return len(r.doc.Filters) > 0 }
func (r *DeidRecipe) HasValuesLists() bool { return len(r.doc.Values) > 0 }
func (r *DeidRecipe) HasFieldsLists() bool { return len(r.doc.Fields) > 0 }

// LsFilters lists the filter group names in sorted order.
func (r *DeidRecipe) LsFilters() []string { return sortedKeys(r.doc.Filters) }

// LsValuesLists lists the %values group names in sorted order.
func (r *DeidRecipe) LsValuesLists() []string { return sortedKeys(r.doc.Values) }

// LsFieldsLists lists the %fields group names in sorted order.
func (r *DeidRecipe) LsFieldsLists() []string { return sortedKeys(r.doc.Fields) }
