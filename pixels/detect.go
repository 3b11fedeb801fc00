package pixels

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gillesdemey/go-deid/deid"
	"github.com/gillesdemey/go-deid/dicom"
	"github.com/gillesdemey/go-deid/internal/log"
	"github.com/gillesdemey/go-deid/recipe"
)

// Coordinate is a region to mask (MaskValue 1) or keep (MaskValue 0).
type Coordinate = recipe.Coordinate

// Match is one filter criterion that fired.
type Match struct {
	// Reason describes the filters of the criterion, e.g.
	// "equals Modality US and present SequenceOfUltrasoundRegions".
	Reason string
	// Group is the filter section, e.g. "blacklist".
	Group string
	Name  string
	// Coordinates are resolved to "x0,y0,x1,y1".
	Coordinates []Coordinate
}

// Result is the decision for one image.
type Result struct {
	Flagged bool
	Results []Match
}

// foldFlags folds booleans and the operators between them left to right,
// without short circuit. The first flag seeds the result; a flag not
// preceded by an operator is ANDed.
func foldFlags(items []interface{}) bool {
	var result *bool
	op := recipe.OperatorNone
	for _, item := range items {
		switch v := item.(type) {
		case recipe.Operator:
			op = v
		case bool:
			switch {
			case result == nil:
				r := v
				result = &r
			case op == recipe.OperatorOr:
				*result = *result || v
			default:
				*result = *result && v
			}
			op = recipe.OperatorNone
		}
	}
	return result != nil && *result
}

// evaluate folds the filter groups of a criterion. A criterion with
// coordinates and no filters always fires.
func evaluate(idx *deid.FieldIndex, criterion recipe.Criterion) (bool, string) {
	if len(criterion.Filters) == 0 {
		return len(criterion.Coordinates) > 0, ""
	}
	var flags []interface{}
	var descriptions []string
	for _, group := range criterion.Filters {
		var groupFlags []interface{}
		var groupDescriptions []string
		for i, f := range group.Filters {
			groupFlags = append(groupFlags, Apply(idx, f))
			description := strings.TrimSpace(fmt.Sprintf("%s %s %s", f.Op, f.Field, f.Value))
			if f.InnerOperator != recipe.OperatorNone && i < len(group.Filters)-1 {
				groupFlags = append(groupFlags, f.InnerOperator)
				description += " " + string(f.InnerOperator)
			}
			groupDescriptions = append(groupDescriptions, description)
		}
		if group.Operator != recipe.OperatorNone {
			flags = append(flags, group.Operator)
		}
		flags = append(flags, foldFlags(groupFlags))
		descriptions = append(descriptions, strings.TrimSpace(string(group.Operator)+" "+strings.Join(groupDescriptions, " ")))
	}
	return foldFlags(flags), strings.Join(descriptions, " ")
}

// HasBurnedPixels evaluates every filter criterion of the recipe against the
// header of file. PixelData is indexed so filters can test for it.
func HasBurnedPixels(file *dicom.File, r *recipe.DeidRecipe, logger *logrus.Entry) Result {
	logger = log.OrDiscard(logger)
	idx := deid.BuildIndex(file, deid.IndexOptions{ExpandSequences: true})
	filters := r.Filters("")

	groups := make([]string, 0, len(filters))
	for name := range filters {
		groups = append(groups, name)
	}
	sort.Strings(groups)

	var result Result
	for _, group := range groups {
		for _, criterion := range filters[group] {
			fired, reason := evaluate(idx, criterion)
			if !fired {
				continue
			}
			logger.WithFields(logrus.Fields{"group": group, "label": criterion.Name}).Debugf("Flagged: %s", reason)
			result.Flagged = true
			result.Results = append(result.Results, Match{
				Reason:      reason,
				Group:       group,
				Name:        criterion.Name,
				Coordinates: resolveCoordinates(file, idx, criterion.Coordinates, logger),
			})
		}
	}
	return result
}

// Summary splits a batch of images into clean and flagged ones. It is safe
// for concurrent use.
type Summary struct {
	mu      sync.Mutex
	clean   []string
	flagged map[string]Result
}

// NewSummary returns an empty summary.
func NewSummary() *Summary {
	return &Summary{flagged: map[string]Result{}}
}

// Add records the result of one image.
func (s *Summary) Add(path string, result Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if result.Flagged {
		s.flagged[path] = result
		return
	}
	s.clean = append(s.clean, path)
}

// Clean returns the images no criterion fired for, in sorted order.
func (s *Summary) Clean() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := append([]string(nil), s.clean...)
	sort.Strings(paths)
	return paths
}

// Flagged returns the flagged images in sorted order.
func (s *Summary) Flagged() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.flagged))
	for p := range s.flagged {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Result returns the result of a flagged image.
func (s *Summary) Result(path string) (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.flagged[path]
	return r, ok
}
