// Package pixels decides whether an image may carry burned-in identifiers,
// by evaluating the %filter sections of a recipe against its header.
package pixels

import (
	"regexp"
	"strings"

	"github.com/gillesdemey/go-deid/deid"
	"github.com/gillesdemey/go-deid/recipe"
)

// fieldValues returns every value of every field named name. found is false
// when the header has no such field.
func fieldValues(idx *deid.FieldIndex, name string) (values []string, found bool) {
	fields := idx.Lookup(name)
	for _, f := range fields {
		if f.Element.IsSequence() {
			continue
		}
		values = append(values, f.Element.StringValues()...)
		if joined := f.Value(); len(f.Element.StringValues()) > 1 {
			values = append(values, joined)
		}
	}
	return values, len(fields) > 0
}

// Contains reports whether the case-insensitive regular expression matches
// any value of the field. An expression that does not compile is matched
// literally.
func Contains(idx *deid.FieldIndex, field, expression string) bool {
	re, err := regexp.Compile("(?i)" + expression)
	if err != nil {
		re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(expression))
	}
	values, _ := fieldValues(idx, field)
	for _, v := range values {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}

// Equals reports whether any value of the field equals value, ignoring case.
func Equals(idx *deid.FieldIndex, field, value string) bool {
	values, _ := fieldValues(idx, field)
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(value)) {
			return true
		}
	}
	return false
}

// Missing reports whether the header has no such field.
func Missing(idx *deid.FieldIndex, field string) bool {
	return len(idx.Lookup(field)) == 0
}

// Empty reports whether the field is present with an empty value.
func Empty(idx *deid.FieldIndex, field string) bool {
	fields := idx.Lookup(field)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if f.Element.IsSequence() {
			if len(f.Element.Items()) > 0 {
				return false
			}
			continue
		}
		if strings.TrimSpace(f.Value()) != "" {
			return false
		}
	}
	return true
}

// Apply evaluates one filter predicate.
func Apply(idx *deid.FieldIndex, f recipe.Filter) bool {
	switch f.Op {
	case recipe.FilterContains:
		return Contains(idx, f.Field, f.Value)
	case recipe.FilterNotContains:
		return !Contains(idx, f.Field, f.Value)
	case recipe.FilterEquals:
		return Equals(idx, f.Field, f.Value)
	case recipe.FilterNotEquals:
		return !Equals(idx, f.Field, f.Value)
	case recipe.FilterMissing:
		return Missing(idx, f.Field)
	case recipe.FilterPresent:
		return !Missing(idx, f.Field)
	case recipe.FilterEmpty:
		return Empty(idx, f.Field)
	}
	return false
}
