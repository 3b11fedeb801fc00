// Package recipe parses de-identification recipes ("deid" files) and merges
// them into a single document.
package recipe

import (
	"fmt"
	"strings"
)

// Formats lists the recipe formats that can be loaded.
var Formats = []string{"dicom"}

// Section is one of the fixed set of recipe sections.
type Section string

const (
	SectionHeader Section = "header"
	SectionLabels Section = "labels"
	SectionFilter Section = "filter"
	SectionValues Section = "values"
	SectionFields Section = "fields"
)

var sections = []Section{SectionHeader, SectionLabels, SectionFilter, SectionValues, SectionFields}

// ActionKind is the verb of a header action.
type ActionKind string

const (
	ActionAdd     ActionKind = "ADD"
	ActionBlank   ActionKind = "BLANK"
	ActionJitter  ActionKind = "JITTER"
	ActionKeep    ActionKind = "KEEP"
	ActionReplace ActionKind = "REPLACE"
	ActionRemove  ActionKind = "REMOVE"
	ActionLabel   ActionKind = "LABEL"
)

// Actions lists every action verb in the order they are documented.
var Actions = []ActionKind{ActionAdd, ActionBlank, ActionJitter, ActionKeep, ActionReplace, ActionRemove, ActionLabel}

// RequiresValue returns true for verbs that must be followed by a value.
func (a ActionKind) RequiresValue() bool {
	switch a {
	case ActionAdd, ActionReplace, ActionJitter:
		return true
	}
	return false
}

func parseActionKind(s string) (ActionKind, bool) {
	for _, a := range Actions {
		if strings.EqualFold(s, string(a)) {
			return a, true
		}
	}
	return "", false
}

// GroupActionKind is the verb of a %values or %fields line.
type GroupActionKind string

const (
	GroupField GroupActionKind = "FIELD"
	GroupSplit GroupActionKind = "SPLIT"
)

// FilterOp is a filter predicate.
type FilterOp string

const (
	FilterContains    FilterOp = "contains"
	FilterNotContains FilterOp = "notcontains"
	FilterEquals      FilterOp = "equals"
	FilterNotEquals   FilterOp = "notequals"
	FilterMissing     FilterOp = "missing"
	FilterPresent     FilterOp = "present"
	FilterEmpty       FilterOp = "empty"
)

// FilterOps lists every filter predicate.
var FilterOps = []FilterOp{FilterContains, FilterNotContains, FilterEquals, FilterNotEquals, FilterMissing, FilterPresent, FilterEmpty}

// TakesValue returns true for predicates written as "<op> <field> <value>".
func (op FilterOp) TakesValue() bool {
	switch op {
	case FilterContains, FilterNotContains, FilterEquals, FilterNotEquals:
		return true
	}
	return false
}

func parseFilterOp(s string) (FilterOp, bool) {
	for _, op := range FilterOps {
		if strings.EqualFold(s, string(op)) {
			return op, true
		}
	}
	return "", false
}

// Operator joins two boolean flags.
type Operator string

const (
	OperatorNone Operator = ""
	OperatorAnd  Operator = "and"
	OperatorOr   Operator = "or"
)

func (o Operator) symbol() string {
	switch o {
	case OperatorAnd:
		return "+"
	case OperatorOr:
		return "||"
	}
	return ""
}

// Action is one line of the %header section.
type Action struct {
	Action ActionKind
	Field  string
	// Value is empty when the line has none.
	Value string
}

func (a Action) String() string {
	if a.Value == "" {
		return fmt.Sprintf("%s %s", a.Action, a.Field)
	}
	return fmt.Sprintf("%s %s %s", a.Action, a.Field, a.Value)
}

// GroupAction is one line of a %values or %fields section.
type GroupAction struct {
	Action GroupActionKind
	Field  string
	// Value holds the SPLIT options, e.g. `by="^";minlength=4`.
	Value string
}

func (a GroupAction) String() string {
	if a.Value == "" {
		return fmt.Sprintf("%s %s", a.Action, a.Field)
	}
	return fmt.Sprintf("%s %s %s", a.Action, a.Field, a.Value)
}

// Filter is a single predicate inside a FilterGroup.
type Filter struct {
	Op    FilterOp
	Field string
	Value string
	// InnerOperator joins this filter to the next one of the same group. It
	// is empty on the last filter.
	InnerOperator Operator
}

// FilterGroup is one member line of a label block. Its filters are chained
// by their InnerOperator; the group joins the previous groups with Operator.
type FilterGroup struct {
	Operator Operator
	Filters  []Filter
}

// Coordinate is a region to mask (MaskValue 1) or keep (MaskValue 0). Spec
// is "x0,y0,x1,y1", "all" or "from:<field>".
type Coordinate struct {
	MaskValue int
	Spec      string
}

// Criterion is a LABEL block of a %filter section.
type Criterion struct {
	Name        string
	Filters     []FilterGroup
	Coordinates []Coordinate
}

// Document is a parsed recipe, or several merged ones.
type Document struct {
	Format string
	// Header actions, in application order.
	Header  []Action
	Filters map[string][]Criterion
	Values  map[string][]GroupAction
	Fields  map[string][]GroupAction
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		Filters: map[string][]Criterion{},
		Values:  map[string][]GroupAction{},
		Fields:  map[string][]GroupAction{},
	}
}

// Merge appends the header actions of other and overrides named filter,
// values and fields groups key by key. The formats must agree.
func (d *Document) Merge(other *Document) error {
	if d.Format == "" {
		d.Format = other.Format
	} else if other.Format != "" && other.Format != d.Format {
		return fmt.Errorf("mismatch in deid formats, %s and %s", d.Format, other.Format)
	}
	d.Header = append(d.Header, other.Header...)
	for name, criteria := range other.Filters {
		d.Filters[name] = criteria
	}
	for name, actions := range other.Values {
		d.Values[name] = actions
	}
	for name, actions := range other.Fields {
		d.Fields[name] = actions
	}
	return nil
}
