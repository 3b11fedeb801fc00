package deid

import (
	"regexp"
	"strings"
)

// Expanders accepted before the colon of a field expression.
const (
	ExpanderAll        = "all"
	ExpanderEndsWith   = "endswith"
	ExpanderStartsWith = "startswith"
	ExpanderContains   = "contains"
	ExpanderExcept     = "except"
	ExpanderSelect     = "select"
	ExpanderValues     = "values"
	ExpanderFields     = "fields"
)

// privateTagPattern matches `(0033,"CREATOR",1E)` and `0033,"CREATOR",1E`.
var privateTagPattern = regexp.MustCompile(`^\(?[0-9A-Fa-f]{4},".*",[0-9A-Fa-f]{2}\)?$`)

// IsPrivateTagExpression reports whether expr uses the private creator form.
func IsPrivateTagExpression(expr string) bool {
	return privateTagPattern.MatchString(strings.TrimSpace(expr))
}

// splitExpression returns the expander and expression of "expander:expression".
// ok is false for exact names, including private creator forms whose creator
// holds a colon.
func splitExpression(expr string) (expander, expression string, ok bool) {
	if IsPrivateTagExpression(expr) {
		return "", "", false
	}
	expander, expression, ok = strings.Cut(expr, ":")
	return strings.ToLower(strings.TrimSpace(expander)), expression, ok
}

// IsWildcard reports whether expr may target fields not named explicitly:
// ALL and every expander form.
func IsWildcard(expr string) bool {
	if strings.EqualFold(strings.TrimSpace(expr), ExpanderAll) {
		return true
	}
	_, _, ok := splitExpression(expr)
	return ok
}

// predicate returns the match function of a field expression. values: and
// fields: are resolved by the parser and return nil here.
func predicate(expr string) func(*Field) bool {
	expr = strings.TrimSpace(expr)
	if strings.EqualFold(expr, ExpanderAll) {
		return func(*Field) bool { return true }
	}
	expander, expression, ok := splitExpression(expr)
	if !ok {
		key := strings.ToLower(expr)
		return func(f *Field) bool {
			for _, k := range f.keys() {
				if k == key {
					return true
				}
			}
			return false
		}
	}

	expression = strings.ToLower(expression)
	switch expander {
	case ExpanderEndsWith:
		expression = "(" + expression + ")$"
		return func(f *Field) bool { return f.NameContains(expression) }
	case ExpanderStartsWith:
		expression = "^(" + expression + ")"
		return func(f *Field) bool { return f.NameContains(expression) }
	case ExpanderContains:
		return func(f *Field) bool { return f.NameContains(expression) }
	case ExpanderExcept:
		return func(f *Field) bool { return !f.NameContains(expression) }
	case ExpanderSelect:
		return func(f *Field) bool { return f.SelectMatches(expression) }
	}
	return nil
}

// Resolve returns the fields of the index matching expr, in walk order. An
// unknown expander, and values: or fields: expressions, resolve to nothing
// here; DicomParser resolves the latter through its named lists.
func (idx *FieldIndex) Resolve(expr string) []*Field {
	if _, _, ok := splitExpression(expr); !ok && !strings.EqualFold(strings.TrimSpace(expr), ExpanderAll) {
		return idx.Lookup(expr)
	}
	return ResolveIn(idx.Fields(), expr)
}

// ResolveIn filters contenders by expr, keeping their order.
func ResolveIn(contenders []*Field, expr string) []*Field {
	match := predicate(expr)
	if match == nil {
		return nil
	}
	var fields []*Field
	seen := map[string]bool{}
	for _, f := range contenders {
		if !seen[f.UID] && match(f) {
			seen[f.UID] = true
			fields = append(fields, f)
		}
	}
	return fields
}
