package deid

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gillesdemey/go-deid/dicom"
	"github.com/gillesdemey/go-deid/internal/log"
	"github.com/gillesdemey/go-deid/recipe"
)

// Options configure a DicomParser.
type Options struct {
	Index IndexOptions
	// PutActions are applied after the recipe actions.
	PutActions []recipe.Action
	// Funcs backs deid_func: directives. Nil means Builtins().
	Funcs Funcs
	// Cache, when set, memoizes the field index of each file.
	Cache  *IndexCache
	Logger *logrus.Entry
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{Index: DefaultIndexOptions(), Funcs: Builtins()}
}

// DicomParser applies a recipe to one header.
type DicomParser struct {
	File   *dicom.File
	Recipe *recipe.DeidRecipe

	opts      Options
	funcs     Funcs
	logger    *logrus.Entry
	index     *FieldIndex
	variables Variables

	valueLists map[string][]string
	fieldLists map[string][]*Field
	// keep holds the exact field names of KEEP actions; wildcard actions
	// never touch them.
	keep []string
	// jittered marks fields whose value came from JITTER. REMOVE leaves them
	// alone until ADD or REPLACE writes them again.
	jittered map[string]bool
}

// NewDicomParser prepares a parser for file. The header is modified in place
// by Parse.
func NewDicomParser(file *dicom.File, r *recipe.DeidRecipe, opts Options) *DicomParser {
	funcs := opts.Funcs
	if funcs == nil {
		funcs = Builtins()
	}
	return &DicomParser{
		File:       file,
		Recipe:     r,
		opts:       opts,
		funcs:      funcs,
		logger:     log.OrDiscard(opts.Logger),
		variables:  Variables{},
		valueLists: map[string][]string{},
		fieldLists: map[string][]*Field{},
		jittered:   map[string]bool{},
	}
}

// Define sets a variable or a function for var: and func: directives.
func (p *DicomParser) Define(name string, value interface{}) {
	p.variables[name] = value
}

// Variables returns the defined variables.
func (p *DicomParser) Variables() Variables {
	return p.variables
}

// Index returns the field index of the header, building it on first use.
func (p *DicomParser) Index() *FieldIndex {
	if p.index == nil {
		if p.opts.Cache != nil {
			p.index = p.opts.Cache.Get(p.File)
		} else {
			p.index = BuildIndex(p.File, p.opts.Index)
		}
	}
	return p.index
}

// Fields returns every indexed field.
func (p *DicomParser) Fields() []*Field {
	return p.Index().Fields()
}

// Lookup returns the fields with an exact name.
func (p *DicomParser) Lookup(name string) []*Field {
	return p.Index().Lookup(name)
}

// FindByName returns the fields whose nested name contains name.
func (p *DicomParser) FindByName(name string) []*Field {
	return p.Index().FindByName(name)
}

// FindByValues returns the fields holding one of values.
func (p *DicomParser) FindByValues(values []string) []*Field {
	return p.Index().FindByValues(values)
}

// ValuesList returns the values extracted for a %values group by Parse.
func (p *DicomParser) ValuesList(name string) []string {
	return p.valueLists[name]
}

// FieldsList returns the fields extracted for a %fields group by Parse.
func (p *DicomParser) FieldsList(name string) []*Field {
	return p.fieldLists[name]
}

// Parse extracts the named lists, applies the recipe actions and the put
// actions in order, then optionally removes private elements and sequences.
func (p *DicomParser) Parse(stripSequences, removePrivate bool) *dicom.File {
	p.Index()
	p.initLists()

	var actions []recipe.Action
	if p.Recipe != nil {
		actions = append(actions, p.Recipe.Actions("", "")...)
	}
	actions = append(actions, p.opts.PutActions...)

	p.keep = nil
	for _, a := range actions {
		if a.Action == recipe.ActionKeep && !IsWildcard(a.Field) {
			p.keep = append(p.keep, a.Field)
		}
	}
	for _, a := range actions {
		p.PerformAction(a)
	}

	if removePrivate {
		p.RemovePrivate()
	} else {
		p.logger.Debug("Private tags were not removed")
	}
	if stripSequences {
		p.RemoveSequences()
	}
	return p.File
}

func (p *DicomParser) initLists() {
	if p.Recipe == nil {
		return
	}
	for name, actions := range p.Recipe.ValuesLists("") {
		p.valueLists[name] = p.extractValues(actions)
	}
	for name, actions := range p.Recipe.FieldsLists("") {
		p.fieldLists[name] = p.extractFields(actions)
	}
}

// targets resolves the field expression of an action. wildcard is true when
// the expression may reach fields it does not name.
func (p *DicomParser) targets(expr string) (fields []*Field, wildcard bool) {
	expander, name, ok := splitExpression(expr)
	if ok {
		switch expander {
		case ExpanderValues:
			values, found := p.valueLists[name]
			if !found {
				p.logger.Warnf("%s is not a defined values list", name)
			}
			return p.Index().FindByValues(values), true
		case ExpanderFields:
			list, found := p.fieldLists[name]
			if !found {
				p.logger.Warnf("%s is not a defined fields list", name)
			}
			for _, f := range list {
				if p.Index().alive(f) {
					fields = append(fields, f)
				}
			}
			return fields, true
		}
	}
	return p.Index().Resolve(expr), IsWildcard(expr)
}

// protected reports whether a KEEP action names f exactly.
func (p *DicomParser) protected(f *Field) bool {
	for _, expr := range p.keep {
		if predicate(expr)(f) {
			return true
		}
	}
	return false
}

// PerformAction applies one action to every field its expression resolves
// to. ADD creates the element when nothing resolves.
func (p *DicomParser) PerformAction(a recipe.Action) {
	expr := a.Field
	if expr == "" {
		expr = ExpanderAll
	}
	fields, wildcard := p.targets(expr)
	if wildcard {
		kept := fields[:0:0]
		for _, f := range fields {
			if !p.protected(f) {
				kept = append(kept, f)
			}
		}
		fields = kept
	}

	if len(fields) == 0 {
		if a.Action == recipe.ActionAdd {
			p.addField(expr, a.Value)
		}
		return
	}
	for _, f := range fields {
		if !p.Index().alive(f) {
			continue
		}
		p.applyAction(f, a.Action, a.Value)
	}
}

func (p *DicomParser) applyAction(f *Field, action recipe.ActionKind, value string) {
	logger := p.logger.WithFields(logrus.Fields{"action": action, "field": f.Name, "uid": f.UID})
	logger.Debug("Applying action")

	switch action {
	case recipe.ActionBlank:
		if p.gate(f, value) {
			p.blank(f, logger)
		}

	case recipe.ActionAdd, recipe.ActionReplace:
		if f.Element.IsSequence() {
			logger.Warnf("Cannot %s a sequence", action)
			return
		}
		s, ok := valueString(p.resolveValue(value, f))
		if !ok {
			logger.Warnf("%s of %s resolved to no value, skipping", action, f.Name)
			return
		}
		if err := f.Element.SetString(s); err != nil {
			logger.Warnf("Cannot set %s: %v", f.Name, err)
			return
		}
		delete(p.jittered, f.UID)

	case recipe.ActionJitter:
		jittered, ok := p.jitter(f, value, logger)
		if !ok {
			return
		}
		if err := f.Element.SetString(jittered); err != nil {
			logger.Warnf("Cannot set %s: %v", f.Name, err)
			return
		}
		p.jittered[f.UID] = true

	case recipe.ActionRemove:
		if !p.gate(f, value) {
			return
		}
		// TODO: a jittered field survives REMOVE; confirm whether callers
		// rely on this before removing it.
		if p.jittered[f.UID] {
			logger.Debugf("%s was jittered, not removing", f.Name)
			return
		}
		p.remove(f)

	case recipe.ActionKeep:

	default:
		logger.Warnf("%s is not a valid action, defaulting to BLANK", action)
		p.blank(f, logger)
	}
}

// gate runs the optional filter of REMOVE and BLANK. A value resolving to
// false skips the action.
func (p *DicomParser) gate(f *Field, value string) bool {
	if value == "" {
		return true
	}
	switch v := p.resolveValue(value, f).(type) {
	case bool:
		return v
	case nil:
		return false
	}
	return true
}

// maxJitterDays bounds the day count of a JITTER value.
const maxJitterDays = 100 * 366

// jitter returns the shifted value of f. The value resolves to a day count.
// A function may instead return the shifted date itself, which is used as is
// once it parses for the VR of f.
func (p *DicomParser) jitter(f *Field, value string, logger *logrus.Entry) (string, bool) {
	resolved := p.resolveValue(value, f)
	days := 0
	switch v := resolved.(type) {
	case int:
		days = v
	case int64:
		days = int(v)
	case float64:
		days = int(v)
	case string:
		v = strings.TrimSpace(v)
		if isDirective(value) && len(v) >= len(dateLayout) && isDateValue(f.Element.VR, v) {
			return v, true
		}
		n, err := strconv.Atoi(v)
		if err != nil || n > maxJitterDays || n < -maxJitterDays {
			logger.Warnf("Cannot jitter %s: %q is not a number of days", f.Name, v)
			return "", false
		}
		days = n
	case nil:
		logger.Warnf("JITTER of %s resolved to no value, skipping", f.Name)
		return "", false
	default:
		logger.Warnf("Cannot jitter %s: unexpected %T value", f.Name, v)
		return "", false
	}
	if days > maxJitterDays || days < -maxJitterDays {
		logger.Warnf("Cannot jitter %s: %d days is out of range", f.Name, days)
		return "", false
	}

	jittered, ok, err := jitterField(f, days)
	if err != nil {
		logger.Warnf("Cannot jitter %s: %v", f.Name, err)
		return "", false
	}
	return jittered, ok
}

func (p *DicomParser) blank(f *Field, logger *logrus.Entry) {
	if !dicom.IsBlankableVR(f.Element.VR) {
		logger.Warnf("Unrecognized VR %s for %s, cannot blank", f.Element.VR, f.Name)
		return
	}
	f.Element.Value = nil
}

// remove deletes the element from its data set and drops it, and anything
// nested below it, from the index.
func (p *DicomParser) remove(f *Field) {
	if !p.Index().alive(f) {
		return
	}
	f.Parent.Remove(f.Tag())
	p.Index().remove(f.UID)
	delete(p.jittered, f.UID)
}

// addField creates a top level element named by expr.
func (p *DicomParser) addField(expr, value string) {
	tag, vr, ok := p.newTag(expr)
	if !ok {
		p.logger.Warnf("Cannot find %s to add", expr)
		return
	}
	s, ok := valueString(p.resolveValue(value, nil))
	if !ok {
		p.logger.Warnf("ADD of %s resolved to no value, skipping", expr)
		return
	}
	elem := &dicom.Element{Tag: tag, VR: vr}
	if err := elem.SetString(s); err != nil {
		p.logger.Warnf("Cannot set %s: %v", expr, err)
		return
	}

	parent, isMeta := p.File.DataSet, false
	if tag.Group == dicom.TagMetadataGroup {
		if p.File.Meta == nil {
			p.File.Meta = &dicom.DataSet{}
		}
		parent, isMeta = p.File.Meta, true
	}
	if parent == nil {
		p.File.DataSet = &dicom.DataSet{}
		parent = p.File.DataSet
	}
	parent.Add(elem)
	// Add replaced an element that was skipped or not yet indexed.
	p.Index().remove(tag.String())
	p.Index().add(elem, parent, "", "", nil, isMeta)
	delete(p.jittered, tag.String())
}

// newTag finds the tag and VR of an element to create: a keyword, name or
// numeric tag from the dictionary, or a private creator form seen before or
// reserved in the data set.
func (p *DicomParser) newTag(expr string) (dicom.Tag, string, bool) {
	if IsPrivateTagExpression(expr) {
		return p.newPrivateTag(expr)
	}
	if strings.Contains(expr, "__") {
		return dicom.Tag{}, "", false
	}
	info, err := dicom.LookupTag(expr)
	if err != nil {
		return dicom.Tag{}, "", false
	}
	return info.Tag, info.VR, true
}

func (p *DicomParser) newPrivateTag(expr string) (dicom.Tag, string, bool) {
	key := strings.Trim(strings.TrimSpace(expr), "()")
	if entry, ok := p.Index().private[strings.ToLower(key)]; ok {
		ds := p.File.DataSet
		if ds == nil {
			p.File.DataSet = &dicom.DataSet{}
			ds = p.File.DataSet
		}
		if _, err := ds.FindElementByTag(entry.creatorTag); err != nil {
			creator := dicom.NewElement(entry.creatorTag, entry.creator)
			ds.Add(creator)
			p.Index().add(creator, ds, "", "", nil, false)
		}
		return entry.tag, entry.vr, true
	}

	groupText, rest, _ := strings.Cut(key, ",")
	i := strings.LastIndex(rest, ",")
	if i < 0 || p.File.DataSet == nil {
		return dicom.Tag{}, "", false
	}
	creator := strings.Trim(rest[:i], `"`)
	group, err1 := strconv.ParseUint(groupText, 16, 16)
	offset, err2 := strconv.ParseUint(rest[i+1:], 16, 16)
	if err1 != nil || err2 != nil {
		return dicom.Tag{}, "", false
	}
	tag, ok := p.File.DataSet.PrivateCreatorTag(uint16(group), creator, uint16(offset))
	if !ok {
		return dicom.Tag{}, "", false
	}
	return tag, "UN", true
}

// RemovePrivate removes every private element.
func (p *DicomParser) RemovePrivate() {
	for _, f := range p.Fields() {
		if f.Tag().IsPrivate() {
			p.remove(f)
		}
	}
}

// RemoveSequences removes every sequence element.
func (p *DicomParser) RemoveSequences() {
	for _, f := range p.Fields() {
		if f.Element.IsSequence() {
			p.remove(f)
		}
	}
}
