package dicom

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var tagQueryRetrieveLevel = Tag{0x0008, 0x0052}

// NewQuery builds a filter element from "Keyword=value" text, as accepted on
// the command line. The value follows the C-FIND matching rules of Query.
func NewQuery(expr string) (*Element, error) {
	name, value, ok := strings.Cut(expr, "=")
	if !ok {
		return nil, fmt.Errorf("malformed query %q, expected <field>=<value>", expr)
	}
	info, err := LookupTag(strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	elem := &Element{Tag: info.Tag, VR: info.VR}
	if value != "" {
		elem.Value = []interface{}{value}
	}
	return elem, nil
}

func querySequence(elem *Element, f *Element) (match bool, err error) {
	// TODO: match sequence filters item by item (P3.4 C.2.2.2.6).
	return elem != nil, nil
}

func queryElement(elem *Element, f *Element) (match bool, err error) {
	if len(f.Value) == 0 {
		// Universal match
		return true, nil
	}
	if f.VR == "SQ" {
		return querySequence(elem, f)
	}
	if elem == nil {
		return false, nil
	}
	if len(f.Value) > 1 {
		// A filter can't contain multiple values. Ps3.4, C.2.2.2.1
		return false, fmt.Errorf("multiple values found in filter '%v'", f)
	}
	expected := f.StringValues()
	if len(expected) == 0 {
		return true, nil
	}
	want := expected[0]
	switch {
	case f.VR == "UI":
		// List of UID matching: any uid listed in the filter. C.2.2.2.2
		for _, uid := range strings.Split(want, "\\") {
			for _, value := range elem.StringValues() {
				if value == uid {
					return true, nil
				}
			}
		}
		return false, nil
	case (f.VR == "DA" || f.VR == "TM" || f.VR == "DT") && strings.Contains(want, "-"):
		// Range matching. C.2.2.2.5
		lo, hi, _ := strings.Cut(want, "-")
		for _, value := range elem.StringValues() {
			if (lo == "" || value >= lo) && (hi == "" || value <= hi) {
				return true, nil
			}
		}
		return false, nil
	case strings.ContainsAny(want, "*?"):
		// Wild card matching. C.2.2.2.4
		g, err := glob.Compile(want)
		if err != nil {
			return false, err
		}
		for _, value := range elem.StringValues() {
			if g.Match(value) {
				return true, nil
			}
		}
		return false, nil
	}
	for _, value := range elem.StringValues() {
		if value == want {
			return true, nil
		}
	}
	return false, nil
}

// Query checks if the data set matches the filter element, using the C-FIND
// attribute matching rules of P3.4 C.2.2.2: universal, single value, list of
// UID, wild card and range matching. It returns the matched element, if any.
func Query(ds *DataSet, f *Element) (match bool, matchedElem *Element, err error) {
	if f.Tag == tagQueryRetrieveLevel || f.Tag == TagSpecificCharacterSet {
		return true, nil, nil
	}
	elem, err := ds.FindElementByTag(f.Tag)
	if err != nil {
		elem = nil
	}
	match, err = queryElement(elem, f)
	if match {
		return true, elem, nil
	}
	return false, nil, err
}
