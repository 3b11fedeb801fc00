package recipe

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gillesdemey/go-deid/internal/errors"
	"github.com/gillesdemey/go-deid/internal/log"
)

// ParseError reports a recipe that cannot be used. It is fatal for the whole
// run.
type ParseError struct {
	Source string
	// Line is 1-based; 0 means the error is not tied to a line.
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("%s:%d: %s: %q", e.Source, e.Line, e.Reason, e.Text)
}

type line struct {
	num  int
	text string
}

type parser struct {
	source  string
	lines   []line
	pos     int
	logger  *logrus.Entry
	doc     *Document
	section Section
	name    string
}

// ParseFile reads and parses the recipe at path.
func ParseFile(path string, logger *logrus.Entry) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}
	return Parse(path, string(data), logger)
}

// Parse parses recipe text. source names the text in error messages. A
// malformed recipe returns a *ParseError.
func Parse(source, text string, logger *logrus.Entry) (*Document, error) {
	p := &parser{
		source: source,
		logger: log.OrDiscard(logger).WithField("recipe", source),
		doc:    NewDocument(),
	}
	for i, raw := range strings.Split(text, "\n") {
		if t := stripComment(raw); t != "" {
			p.lines = append(p.lines, line{num: i + 1, text: t})
		}
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.doc, nil
}

func stripComment(s string) string {
	if i := strings.Index(s, "#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// cutWord splits s at the first run of whitespace.
func cutWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}

// privateField matches a private creator expression such as
// (0033,"MITRA OBJECT UTF8 ATTRIBUTES 1.0",1E), whose creator may hold spaces.
var privateField = regexp.MustCompile(`^\(?[0-9A-Fa-f]{4},"[^"]*",[0-9A-Fa-f]{2}\)?`)

// cutField splits a field expression from the text that follows it.
func cutField(s string) (string, string) {
	s = strings.TrimSpace(s)
	if m := privateField.FindString(s); m != "" {
		rest := s[len(m):]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
			return m, strings.TrimSpace(rest)
		}
	}
	return cutWord(s)
}

func (p *parser) fail(l line, format string, args ...interface{}) error {
	return errors.WithStackTrace(&ParseError{
		Source: p.source,
		Line:   l.num,
		Text:   l.text,
		Reason: fmt.Sprintf(format, args...),
	})
}

func (p *parser) parse() error {
	for p.pos < len(p.lines) {
		l := p.lines[p.pos]
		p.pos++
		upper := strings.ToUpper(l.text)
		word, _ := cutWord(l.text)

		switch {
		case strings.HasPrefix(upper, "FORMAT"):
			format := strings.ToLower(strings.TrimSpace(l.text[len("FORMAT"):]))
			if !isFormat(format) {
				return p.fail(l, "%q is not a valid format, choices are %s", format, strings.Join(Formats, ", "))
			}
			p.doc.Format = format

		case strings.HasPrefix(l.text, "%"):
			if err := p.parseSection(l); err != nil {
				return err
			}

		default:
			if kind, ok := parseActionKind(word); ok {
				if err := p.parseAction(l, kind); err != nil {
					return err
				}
				continue
			}
			if group := GroupActionKind(strings.ToUpper(word)); group == GroupField || group == GroupSplit {
				if err := p.parseGroupAction(l, group); err != nil {
					return err
				}
				continue
			}
			p.logger.Debugf("%s is not a recognized line, skipping", l.text)
		}
	}
	return nil
}

func isFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

func (p *parser) parseSection(l line) error {
	word, rest := cutWord(l.text)
	section := Section(strings.ToLower(strings.TrimPrefix(word, "%")))
	valid := false
	for _, s := range sections {
		if s == section {
			valid = true
		}
	}
	if !valid {
		return p.fail(l, "%s is not a valid section", section)
	}
	switch section {
	case SectionFilter, SectionValues, SectionFields:
		if rest == "" {
			return p.fail(l, "%%%s section requires a name, e.g. %%%s blacklist", section, section)
		}
	}
	p.section = section
	p.name = rest
	return nil
}

func (p *parser) parseAction(l line, kind ActionKind) error {
	if p.section == "" {
		return p.fail(l, "action %s found before a section", kind)
	}
	switch p.section {
	case SectionFilter:
		if kind != ActionLabel {
			return p.fail(l, "%s is not a valid filter action, expected LABEL", kind)
		}
		return p.parseLabel(l)
	case SectionValues, SectionFields:
		return p.fail(l, "%s is not valid for the %s section, expected FIELD or SPLIT", kind, p.section)
	case SectionLabels:
		p.logger.Debugf("Skipping %s in the labels section", l.text)
		return nil
	}
	if kind == ActionLabel {
		return p.fail(l, "LABEL is only valid in a %%filter section")
	}

	_, rest := cutWord(l.text)
	field, value := cutField(rest)
	if field == "" {
		return p.fail(l, "%s requires a FIELD value", kind)
	}
	if kind.RequiresValue() && value == "" {
		return p.fail(l, "%s requires a VALUE", kind)
	}
	p.doc.Header = append(p.doc.Header, Action{Action: kind, Field: field, Value: value})
	return nil
}

func (p *parser) parseGroupAction(l line, kind GroupActionKind) error {
	if p.section != SectionValues && p.section != SectionFields {
		return p.fail(l, "%s is only valid in %%values and %%fields sections", kind)
	}
	_, rest := cutWord(l.text)
	field, value := cutField(rest)
	if field == "" {
		return p.fail(l, "%s requires a field", kind)
	}
	action := GroupAction{Action: kind, Field: field, Value: value}
	if p.section == SectionValues {
		p.doc.Values[p.name] = append(p.doc.Values[p.name], action)
	} else {
		p.doc.Fields[p.name] = append(p.doc.Fields[p.name], action)
	}
	return nil
}

// parseLabel consumes the member lines of a label block, up to the next
// LABEL or section line.
func (p *parser) parseLabel(l line) error {
	criterion := Criterion{Name: strings.TrimSpace(l.text[len("LABEL"):])}
	for p.pos < len(p.lines) {
		member := p.lines[p.pos]
		if strings.HasPrefix(strings.ToUpper(member.text), "LABEL") || strings.HasPrefix(member.text, "%") {
			break
		}
		p.pos++

		text := member.text
		operator := OperatorNone
		if strings.HasPrefix(text, "+") {
			operator = OperatorAnd
			text = strings.TrimSpace(text[1:])
		} else if strings.HasPrefix(text, "||") {
			operator = OperatorOr
			text = strings.TrimSpace(text[2:])
		}

		word, rest := cutWord(text)
		switch kind := strings.ToLower(word); kind {
		case "coordinates", "ctpcoordinates", "keepcoordinates", "ctpkeepcoordinates":
			coordinate, err := parseCoordinate(kind, rest)
			if err != nil {
				return p.fail(member, "%v", err)
			}
			criterion.Coordinates = append(criterion.Coordinates, coordinate)
		default:
			group, err := p.parseMember(member, text)
			if err != nil {
				return err
			}
			if group == nil {
				continue
			}
			group.Operator = operator
			criterion.Filters = append(criterion.Filters, *group)
		}
	}
	p.doc.Filters[p.name] = append(p.doc.Filters[p.name], criterion)
	return nil
}

func parseCoordinate(kind, spec string) (Coordinate, error) {
	if spec == "" {
		return Coordinate{}, fmt.Errorf("%s requires a value", kind)
	}
	mask := 1
	if strings.Contains(kind, "keep") {
		mask = 0
	}
	if strings.HasPrefix(kind, "ctp") && spec != "all" && !strings.HasPrefix(spec, "from:") {
		// x,y,width,height
		parts := strings.Split(spec, ",")
		if len(parts) != 4 {
			return Coordinate{}, fmt.Errorf("%s expects x,y,width,height, found %s", kind, spec)
		}
		var v [4]int
		for i, part := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return Coordinate{}, fmt.Errorf("%s expects integers, found %s", kind, spec)
			}
			v[i] = n
		}
		spec = fmt.Sprintf("%d,%d,%d,%d", v[0], v[1], v[0]+v[2], v[1]+v[3])
	}
	return Coordinate{MaskValue: mask, Spec: spec}, nil
}

// splitInner finds the first inline "+" or "||" of a member that is followed
// by another filter statement. Any other "+" or "||" is part of a value.
func splitInner(member string) (string, string, Operator) {
	for i := 0; i < len(member); i++ {
		size, op := 0, OperatorNone
		switch {
		case strings.HasPrefix(member[i:], "||"):
			size, op = 2, OperatorOr
		case member[i] == '+':
			size, op = 1, OperatorAnd
		default:
			continue
		}
		rest := strings.TrimSpace(member[i+size:])
		word, _ := cutWord(rest)
		if _, ok := parseFilterOp(word); ok {
			return strings.TrimSpace(member[:i]), rest, op
		}
		i += size - 1
	}
	return member, "", OperatorNone
}

// parseMember parses "<op> <field> [<value>]" statements chained by inline
// operators. It returns nil when the line uses an unknown filter and should
// be skipped.
func (p *parser) parseMember(l line, member string) (*FilterGroup, error) {
	group := &FilterGroup{}
	pending := []string{member}
	for len(pending) > 0 {
		current := pending[0]
		pending = pending[1:]

		current, rest, inner := splitInner(current)
		if rest != "" {
			pending = append(pending, rest)
		}

		word, remainder := cutWord(current)
		op, ok := parseFilterOp(word)
		if !ok {
			p.logger.Warnf("%s is not a valid filter action, skipping line %d", word, l.num)
			return nil, nil
		}
		filter := Filter{Op: op, InnerOperator: inner}
		if op.TakesValue() {
			filter.Field, filter.Value = cutField(remainder)
			if filter.Value == "" {
				return nil, p.fail(l, "%s must have field and values", op)
			}
		} else {
			filter.Field = strings.TrimSpace(remainder)
		}
		if filter.Field == "" {
			return nil, p.fail(l, "%s requires a field", op)
		}
		group.Filters = append(group.Filters, filter)
	}
	return group, nil
}
