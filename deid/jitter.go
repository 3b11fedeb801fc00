package deid

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "20060102"

// datetime layouts by the length of the value without fraction and offset.
var datetimeLayouts = map[int]string{
	4:  "2006",
	6:  "200601",
	8:  "20060102",
	10: "2006010215",
	12: "200601021504",
	14: "20060102150405",
}

// JitterDate shifts a DA value ("YYYYMMDD") by days.
func JitterDate(value string, days int) (string, error) {
	value = strings.TrimSpace(value)
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return "", fmt.Errorf("%q is not a date: %w", value, err)
	}
	return formatShifted(t, days, dateLayout)
}

// JitterDateTime shifts a DT value ("YYYYMMDDHHMMSS.FFFFFF&ZZXX") by days.
// The precision, the fraction and the UTC offset of the value are kept.
func JitterDateTime(value string, days int) (string, error) {
	value = strings.TrimSpace(value)
	base, offset := value, ""
	if i := strings.IndexAny(value, "+-"); i >= 0 {
		base, offset = value[:i], value[i:]
	}
	fraction := ""
	if i := strings.Index(base, "."); i >= 0 {
		base, fraction = base[:i], base[i:]
	}
	layout, ok := datetimeLayouts[len(base)]
	if !ok {
		return "", fmt.Errorf("%q is not a datetime", value)
	}
	t, err := time.Parse(layout, base)
	if err != nil {
		return "", fmt.Errorf("%q is not a datetime: %w", value, err)
	}
	shifted, err := formatShifted(t, days, layout)
	if err != nil {
		return "", err
	}
	return shifted + fraction + offset, nil
}

// formatShifted adds days to t. Years outside 0001-9999 have no DICOM form.
func formatShifted(t time.Time, days int, layout string) (string, error) {
	shifted := t.AddDate(0, 0, days)
	if y := shifted.Year(); y < 1 || y > 9999 {
		return "", fmt.Errorf("shifting %s by %d days gives year %d", t.Format(layout), days, y)
	}
	return shifted.Format(layout), nil
}

// jitterValue shifts one value according to its VR. Values of other VRs are
// tried as a date first, then as a datetime.
func jitterValue(vr, value string, days int) (string, error) {
	switch strings.ToUpper(vr) {
	case "DA":
		return JitterDate(value, days)
	case "DT":
		return JitterDateTime(value, days)
	}
	if jittered, err := JitterDate(value, days); err == nil {
		return jittered, nil
	}
	return JitterDateTime(value, days)
}

// isDateValue reports whether every component of value parses for vr.
func isDateValue(vr, value string) bool {
	for _, v := range strings.Split(value, "\\") {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, err := jitterValue(vr, v, 0); err != nil {
			return false
		}
	}
	return strings.TrimSpace(value) != ""
}

// jitterField returns the element value shifted by days. ok is false when
// the element has no value.
func jitterField(f *Field, days int) (string, bool, error) {
	values := f.Element.StringValues()
	if f.Element.IsEmpty() {
		return "", false, nil
	}
	jittered := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			jittered = append(jittered, v)
			continue
		}
		j, err := jitterValue(f.Element.VR, v, days)
		if err != nil {
			return "", false, err
		}
		jittered = append(jittered, j)
	}
	return strings.Join(jittered, "\\"), true, nil
}
