// Package deid resolves field expressions against a DICOM header and applies
// recipe actions to it.
package deid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gillesdemey/go-deid/dicom"
)

// Field is one element occurrence of a header, flattened out of its nesting.
type Field struct {
	Element *dicom.Element
	// Parent is the data set holding Element: the file meta group, the main
	// data set, or a sequence item.
	Parent *dicom.DataSet
	// Name joins the keywords of the ancestors with "__". Fields in
	// different items of one sequence share a name.
	Name string
	// UID joins the tags and item indexes of the ancestors with "__". It is
	// unique within one header.
	UID        string
	IsFileMeta bool
	// Creator is the private creator of a private data element.
	Creator string

	ancestors []string
}

// Tag returns the tag of the element.
func (f *Field) Tag() dicom.Tag {
	return f.Element.Tag
}

// StrippedTag returns the tag as eight hex digits, e.g. "00100010".
func (f *Field) StrippedTag() string {
	return f.Element.Tag.Stripped()
}

// Value renders the element value, multiple values joined by '\'.
func (f *Field) Value() string {
	return f.Element.StringValue()
}

// PrivateKeys returns the two private creator forms of a private data
// element, `(0033,"CREATOR",1E)` and `0033,"CREATOR",1E`, or nil.
func (f *Field) PrivateKeys() []string {
	if f.Creator == "" {
		return nil
	}
	key := privateKey(f.Tag().Group, f.Creator, f.Tag().PrivateOffset())
	return []string{"(" + key + ")", key}
}

func privateKey(group uint16, creator string, offset uint16) string {
	return fmt.Sprintf(`%04X,"%s",%02X`, group, creator, offset)
}

// keys returns the lower-cased names a field expression can match.
func (f *Field) keys() []string {
	keys := []string{
		strings.ToLower(f.Name),
		strings.ToLower(f.Tag().String()),
		strings.ToLower(f.StrippedTag()),
	}
	if name := f.Element.Name(); name != "" {
		keys = append(keys, strings.ToLower(name))
	}
	if keyword := f.Element.Keyword(); keyword != "" {
		keys = append(keys, strings.ToLower(keyword))
	}
	for _, key := range f.PrivateKeys() {
		keys = append(keys, strings.ToLower(key))
	}
	return keys
}

// NameContains reports whether the regular expression matches any of the
// field's names: nested name, tag, stripped tag, element name, keyword and
// private creator forms. Matching ignores case. An expression that does not
// compile is matched literally.
func (f *Field) NameContains(expression string) bool {
	re := compileExpression("(" + expression + ")")
	for _, key := range f.keys() {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}

// SelectMatches evaluates "vr:<vr>" or "group:<gggg>" against the element.
func (f *Field) SelectMatches(expression string) bool {
	kind, value, ok := strings.Cut(expression, ":")
	if !ok {
		return false
	}
	switch strings.ToLower(kind) {
	case "vr":
		vr := strings.ToLower(f.Element.VR)
		value = strings.ToLower(value)
		if len(value) > 2 {
			value = value[:2]
		}
		return vr == value
	case "group":
		var group uint16
		if _, err := fmt.Sscanf(value, "%x", &group); err != nil {
			return false
		}
		return f.Tag().Group == group
	}
	return false
}

func compileExpression(expression string) *regexp.Regexp {
	re, err := regexp.Compile("(?i)" + expression)
	if err != nil {
		re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(expression))
	}
	return re
}

// IndexOptions control which elements are indexed.
type IndexOptions struct {
	// Skip lists keywords or tags that are never indexed. Skipped elements
	// can't be targeted by actions.
	Skip []string
	// ExpandSequences indexes the elements of sequence items.
	ExpandSequences bool
}

// DefaultIndexOptions skips the pixel data and expands sequences.
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{Skip: []string{"PixelData"}, ExpandSequences: true}
}

type privateEntry struct {
	tag        dicom.Tag
	vr         string
	creatorTag dicom.Tag
	creator    string
}

// FieldIndex is the flattened view of one header. Fields are looked up by
// UID, or by any of their exact names through Lookup. The index stays in
// sync with the header while actions add and remove elements.
type FieldIndex struct {
	file   *dicom.File
	opts   IndexOptions
	skip   map[string]bool
	fields map[string]*Field
	order  []string
	lookup map[string][]string
	// private remembers every private key ever indexed so a removed private
	// element can be added again.
	private map[string]privateEntry
}

type pending struct {
	ds         *dicom.DataSet
	prefix     string
	uid        string
	ancestors  []string
	isFileMeta bool
}

// BuildIndex walks the header breadth first, main data set first, then the
// file meta group.
func BuildIndex(file *dicom.File, opts IndexOptions) *FieldIndex {
	idx := &FieldIndex{
		file:    file,
		opts:    opts,
		skip:    map[string]bool{},
		fields:  map[string]*Field{},
		lookup:  map[string][]string{},
		private: map[string]privateEntry{},
	}
	for _, s := range opts.Skip {
		idx.skip[strings.ToLower(s)] = true
	}

	var queue []pending
	if file.DataSet != nil {
		queue = append(queue, pending{ds: file.DataSet})
	}
	if file.Meta != nil {
		queue = append(queue, pending{ds: file.Meta, isFileMeta: true})
	}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		queue = append(queue, idx.walk(next)...)
	}
	return idx
}

func (idx *FieldIndex) skipped(elem *dicom.Element) bool {
	if len(idx.skip) == 0 {
		return false
	}
	return idx.skip[strings.ToLower(elem.Keyword())] ||
		idx.skip[strings.ToLower(elem.Tag.String())] ||
		idx.skip[strings.ToLower(elem.Tag.Stripped())]
}

func (idx *FieldIndex) walk(p pending) []pending {
	var children []pending
	for _, elem := range p.ds.Elements {
		if idx.skipped(elem) {
			continue
		}
		field := idx.add(elem, p.ds, p.prefix, p.uid, p.ancestors, p.isFileMeta)
		if field == nil || !elem.IsSequence() || !idx.opts.ExpandSequences {
			continue
		}
		ancestors := append(append([]string(nil), p.ancestors...), field.UID)
		for i, item := range elem.Items() {
			children = append(children, pending{
				ds:         item,
				prefix:     field.Name,
				uid:        fmt.Sprintf("%s__%d", field.UID, i),
				ancestors:  ancestors,
				isFileMeta: p.isFileMeta,
			})
		}
	}
	return children
}

// add indexes one element. It returns nil when the uid is already indexed.
func (idx *FieldIndex) add(elem *dicom.Element, parent *dicom.DataSet, prefix, parentUID string, ancestors []string, isFileMeta bool) *Field {
	uid := elem.Tag.String()
	if parentUID != "" {
		uid = parentUID + "__" + uid
	}
	if _, seen := idx.fields[uid]; seen {
		return nil
	}

	name := elem.Keyword()
	if name == "" {
		name = elem.Tag.String()
	}
	if prefix != "" {
		name = prefix + "__" + name
	}

	field := &Field{
		Element:    elem,
		Parent:     parent,
		Name:       name,
		UID:        uid,
		IsFileMeta: isFileMeta,
		ancestors:  ancestors,
	}
	if creator, ok := parent.PrivateCreator(elem.Tag); ok {
		field.Creator = creator
		entry := privateEntry{
			tag:        elem.Tag,
			vr:         elem.VR,
			creatorTag: dicom.Tag{Group: elem.Tag.Group, Element: elem.Tag.PrivateBlock()},
			creator:    creator,
		}
		for _, key := range field.PrivateKeys() {
			idx.private[strings.ToLower(key)] = entry
		}
	}

	idx.fields[uid] = field
	idx.order = append(idx.order, uid)
	for _, key := range field.keys() {
		idx.lookup[key] = append(idx.lookup[key], uid)
	}
	return field
}

// remove drops a field and everything nested below it from the index.
func (idx *FieldIndex) remove(uid string) {
	if _, ok := idx.fields[uid]; !ok {
		return
	}
	prefix := uid + "__"
	dropped := map[string]bool{}
	for _, other := range idx.order {
		if other == uid || strings.HasPrefix(other, prefix) {
			dropped[other] = true
		}
	}
	for d := range dropped {
		field := idx.fields[d]
		for _, key := range field.keys() {
			idx.lookup[key] = without(idx.lookup[key], d)
			if len(idx.lookup[key]) == 0 {
				delete(idx.lookup, key)
			}
		}
		delete(idx.fields, d)
	}
	order := idx.order[:0]
	for _, other := range idx.order {
		if !dropped[other] {
			order = append(order, other)
		}
	}
	idx.order = order
}

func without(uids []string, uid string) []string {
	out := uids[:0]
	for _, u := range uids {
		if u != uid {
			out = append(out, u)
		}
	}
	return out
}

// Len returns the number of indexed fields.
func (idx *FieldIndex) Len() int {
	return len(idx.order)
}

// Get returns the field with the given uid.
func (idx *FieldIndex) Get(uid string) (*Field, bool) {
	f, ok := idx.fields[uid]
	return f, ok
}

// Fields returns every field in walk order. The slice is a snapshot.
func (idx *FieldIndex) Fields() []*Field {
	fields := make([]*Field, 0, len(idx.order))
	for _, uid := range idx.order {
		fields = append(fields, idx.fields[uid])
	}
	return fields
}

// Lookup returns the fields whose nested name, tag, stripped tag, element
// name, keyword or private creator form equals name, ignoring case.
func (idx *FieldIndex) Lookup(name string) []*Field {
	uids := idx.lookup[strings.ToLower(strings.TrimSpace(name))]
	fields := make([]*Field, 0, len(uids))
	for _, uid := range idx.ordered(uids) {
		fields = append(fields, idx.fields[uid])
	}
	return fields
}

// ordered sorts a set of uids in walk order, dropping duplicates.
func (idx *FieldIndex) ordered(uids []string) []string {
	want := make(map[string]bool, len(uids))
	for _, uid := range uids {
		want[uid] = true
	}
	out := make([]string, 0, len(want))
	for _, uid := range idx.order {
		if want[uid] {
			out = append(out, uid)
		}
	}
	return out
}

// alive reports whether a field and all of its ancestors are still indexed.
func (idx *FieldIndex) alive(f *Field) bool {
	if _, ok := idx.fields[f.UID]; !ok {
		return false
	}
	for _, uid := range f.ancestors {
		if _, ok := idx.fields[uid]; !ok {
			return false
		}
	}
	return true
}

// FindByValues returns the fields whose value, or one component of a multi
// valued field, is in values.
func (idx *FieldIndex) FindByValues(values []string) []*Field {
	want := make(map[string]bool, len(values))
	for _, v := range values {
		want[v] = true
	}
	var fields []*Field
	for _, f := range idx.Fields() {
		if f.Element.IsSequence() {
			continue
		}
		if want[f.Value()] {
			fields = append(fields, f)
			continue
		}
		for _, v := range f.Element.StringValues() {
			if want[v] {
				fields = append(fields, f)
				break
			}
		}
	}
	return fields
}

// FindByName returns the fields whose nested name contains name, ignoring
// case.
func (idx *FieldIndex) FindByName(name string) []*Field {
	name = strings.ToLower(name)
	var fields []*Field
	for _, f := range idx.Fields() {
		if strings.Contains(strings.ToLower(f.Name), name) {
			fields = append(fields, f)
		}
	}
	return fields
}
