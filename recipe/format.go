package recipe

import (
	"sort"
	"strings"
)

// Format serializes a document back to recipe text. Parsing the output
// yields an equal document.
func Format(doc *Document) string {
	var b strings.Builder
	format := doc.Format
	if format == "" {
		format = Formats[0]
	}
	b.WriteString("FORMAT " + format + "\n")

	for _, name := range sortedKeys(doc.Filters) {
		b.WriteString("\n%filter " + name + "\n")
		for _, criterion := range doc.Filters[name] {
			b.WriteString("\nLABEL")
			if criterion.Name != "" {
				b.WriteString(" " + criterion.Name)
			}
			b.WriteString("\n")
			for _, group := range criterion.Filters {
				if group.Operator != OperatorNone {
					b.WriteString(group.Operator.symbol() + " ")
				}
				for _, f := range group.Filters {
					b.WriteString(string(f.Op) + " " + f.Field)
					if f.Value != "" {
						b.WriteString(" " + f.Value)
					}
					if f.InnerOperator != OperatorNone {
						b.WriteString(" " + f.InnerOperator.symbol() + " ")
					}
				}
				b.WriteString("\n")
			}
			for _, c := range criterion.Coordinates {
				if c.MaskValue == 0 {
					b.WriteString("keepcoordinates " + c.Spec + "\n")
				} else {
					b.WriteString("coordinates " + c.Spec + "\n")
				}
			}
		}
	}

	writeGroups := func(section Section, groups map[string][]GroupAction) {
		for _, name := range sortedKeys(groups) {
			b.WriteString("\n%" + string(section) + " " + name + "\n\n")
			for _, action := range groups[name] {
				b.WriteString(action.String() + "\n")
			}
		}
	}
	writeGroups(SectionValues, doc.Values)
	writeGroups(SectionFields, doc.Fields)

	if len(doc.Header) > 0 {
		b.WriteString("\n%header\n\n")
		for _, action := range doc.Header {
			b.WriteString(action.String() + "\n")
		}
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
