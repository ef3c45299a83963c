package marc

import (
	"iter"
	"sort"
)

// Record is a leader plus an ordered list of fields. Field order is storage
// and output order; it is not required to be sorted by tag.
type Record struct {
	leader Leader
	fields []Field
	policy *Policy
}

// NewRecord starts a record with the given leader type, bibliographic level
// and, when controlNumber is not empty, an 001 field.
func NewRecord(recordType byte, bibLevel byte, controlNumber string) *Record {
	r := &Record{leader: NewLeader(recordType, bibLevel)}
	if controlNumber != "" {
		r.fields = append(r.fields, NewControlField("001", controlNumber))
	}
	return r
}

// NewRecordWithPolicy is NewRecord with an explicit field policy.
func NewRecordWithPolicy(recordType byte, bibLevel byte, controlNumber string, p *Policy) *Record {
	r := NewRecord(recordType, bibLevel, controlNumber)
	r.policy = p
	return r
}

func (r *Record) Leader() *Leader {
	return &r.leader
}

func (r *Record) SetLeader(l Leader) {
	r.leader = l
}

func (r *Record) Policy() *Policy {
	if r.policy == nil {
		return DefaultPolicy
	}
	return r.policy
}

func (r *Record) SetPolicy(p *Policy) {
	r.policy = p
}

// Empty reports whether r holds no fields. A nil record is empty, and the
// lookup methods below treat it as a record without fields.
func (r *Record) Empty() bool {
	return r == nil || len(r.fields) == 0
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// Fields returns the field slice. It is owned by the record and invalidated
// by any insert or delete.
func (r *Record) Fields() []Field {
	if r == nil {
		return nil
	}
	return r.fields
}

// Field returns the field at index, or nil when out of range.
func (r *Record) Field(index int) *Field {
	if r == nil || index < 0 || index >= len(r.fields) {
		return nil
	}
	return &r.fields[index]
}

// ControlNumber returns the contents of the 001 field, or "".
func (r *Record) ControlNumber() string {
	if r == nil {
		return ""
	}
	idx := r.FindTag("001")
	if idx < 0 || !r.fields[idx].IsControlField() {
		return ""
	}
	return r.fields[idx].contents
}

// FindTag returns the index of the first field with tag, or -1.
func (r *Record) FindTag(tag string) int {
	if r == nil {
		return -1
	}
	for i := range r.fields {
		if r.fields[i].tag == tag {
			return i
		}
	}
	return -1
}

func (r *Record) HasTag(tag string) bool {
	return r.FindTag(tag) >= 0
}

// FirstField returns the first field with tag, or nil.
func (r *Record) FirstField(tag string) *Field {
	idx := r.FindTag(tag)
	if idx < 0 {
		return nil
	}
	return &r.fields[idx]
}

// TagRange yields the fields with tag in record order. The sequence reads the
// record on every iteration, so ranging over it again restarts it. Mutating
// the record's field list while ranging is not supported.
func (r *Record) TagRange(tag string) iter.Seq[*Field] {
	return func(yield func(*Field) bool) {
		if r == nil {
			return
		}
		for i := range r.fields {
			if r.fields[i].tag == tag {
				if !yield(&r.fields[i]) {
					return
				}
			}
		}
	}
}

// FieldsWithTag collects TagRange into a slice.
func (r *Record) FieldsWithTag(tag string) []*Field {
	out := make([]*Field, 0)
	for f := range r.TagRange(tag) {
		out = append(out, f)
	}
	return out
}

// Tags returns the distinct tags in order of first appearance.
func (r *Record) Tags() []string {
	seen := make(map[string]bool)
	tags := make([]string, 0)
	if r == nil {
		return tags
	}
	for i := range r.fields {
		if !seen[r.fields[i].tag] {
			seen[r.fields[i].tag] = true
			tags = append(tags, r.fields[i].tag)
		}
	}
	return tags
}

// SubfieldValues returns the values of the listed subfield codes across all
// fields with tag.
func (r *Record) SubfieldValues(tag string, codes string) []string {
	values := make([]string, 0)
	for f := range r.TagRange(tag) {
		values = append(values, f.subfields.Values(codes)...)
	}
	return values
}

// FirstSubfieldValue returns the first value of code in the first field with
// tag that has one.
func (r *Record) FirstSubfieldValue(tag string, code byte) string {
	for f := range r.TagRange(tag) {
		if v, ok := f.subfields.First(code); ok {
			return v
		}
	}
	return ""
}

// InsertField adds f after the last field whose tag sorts at or below f's
// tag, keeping a sorted record sorted. Non-repeatable tags are handled per
// the record's policy.
func (r *Record) InsertField(f Field) error {
	if err := r.checkInsert("InsertField", f); err != nil {
		return err
	}

	done, err := r.applyDuplicatePolicy(f)
	if done || err != nil {
		return err
	}

	// fields need not be sorted, so go after the last lower or equal tag
	pos := 0
	for i := len(r.fields) - 1; i >= 0; i-- {
		if r.fields[i].tag <= f.tag {
			pos = i + 1
			break
		}
	}

	r.fields = append(r.fields, Field{})
	copy(r.fields[pos+1:], r.fields[pos:])
	r.fields[pos] = f
	return nil
}

// InsertDataField builds and inserts a data field.
func (r *Record) InsertDataField(tag string, ind1, ind2 byte, subfields ...Subfield) error {
	return r.InsertField(NewDataField(tag, ind1, ind2, subfields...))
}

// InsertControlField builds and inserts a control field.
func (r *Record) InsertControlField(tag string, contents string) error {
	if containsDelimiter(contents) {
		return invalidMutation("InsertControlField", "field %s: contents contain a MARC delimiter", tag)
	}
	return r.InsertField(NewControlField(tag, contents))
}

// InsertFieldAtEnd appends f regardless of tag order.
func (r *Record) InsertFieldAtEnd(f Field) error {
	if err := r.checkInsert("InsertFieldAtEnd", f); err != nil {
		return err
	}
	done, err := r.applyDuplicatePolicy(f)
	if done || err != nil {
		return err
	}
	r.fields = append(r.fields, f)
	return nil
}

func (r *Record) checkInsert(op string, f Field) error {
	return checkKind(op, f.tag, f.kind, r.Policy())
}

// applyDuplicatePolicy returns true when f has been merged and must not be
// inserted.
func (r *Record) applyDuplicatePolicy(f Field) (bool, error) {
	p := r.Policy()
	if p.IsRepeatable(f.tag) {
		return false, nil
	}
	existing := r.FirstField(f.tag)
	if existing == nil {
		return false, nil
	}

	switch p.Duplicates {
	case DuplicatesReject:
		return false, invalidMutation("InsertField", "tag %s is not repeatable", f.tag)
	case DuplicatesMerge:
		if existing.kind == ControlFieldKind || f.kind == ControlFieldKind {
			existing.kind = f.kind
			existing.contents = f.contents
			existing.ind1, existing.ind2 = f.ind1, f.ind2
			existing.subfields = f.subfields.clone()
			return true, nil
		}
		for _, sf := range f.subfields {
			if !existing.subfields.HasValue(sf.Code, sf.Value, false) {
				existing.subfields = append(existing.subfields, sf)
			}
		}
		return true, nil
	}
	return false, nil
}

// ReplaceField overwrites the field at index.
func (r *Record) ReplaceField(index int, f Field) error {
	if index < 0 || index >= len(r.fields) {
		return invalidMutation("ReplaceField", "index %d out of range (%d fields)", index, len(r.fields))
	}
	if err := r.checkInsert("ReplaceField", f); err != nil {
		return err
	}
	r.fields[index] = f
	return nil
}

// Erase removes every field with tag and returns how many were removed.
func (r *Record) Erase(tag string) int {
	return r.FilterFields(func(f *Field) bool { return f.tag != tag })
}

// EraseAt removes the single field at index.
func (r *Record) EraseAt(index int) error {
	if index < 0 || index >= len(r.fields) {
		return invalidMutation("EraseAt", "index %d out of range (%d fields)", index, len(r.fields))
	}
	r.fields = append(r.fields[:index], r.fields[index+1:]...)
	return nil
}

// DeleteFields removes the fields at indices, all taken from the same
// snapshot of the record. Every index is validated before anything is
// removed; duplicates are ignored and removal runs from the highest index
// down so earlier removals never shift later ones.
func (r *Record) DeleteFields(indices []int) error {
	if len(indices) == 0 {
		return nil
	}
	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	if sorted[0] >= len(r.fields) || sorted[len(sorted)-1] < 0 {
		return invalidMutation("DeleteFields", "index out of range (%d fields)", len(r.fields))
	}

	last := -1
	for _, idx := range sorted {
		if idx == last {
			continue
		}
		r.fields = append(r.fields[:idx], r.fields[idx+1:]...)
		last = idx
	}
	return nil
}

// FilterFields keeps only the fields for which keep returns true, rebuilding
// the field list in one pass. It returns the number of fields removed.
func (r *Record) FilterFields(keep func(*Field) bool) int {
	kept := make([]Field, 0, len(r.fields))
	for i := range r.fields {
		if keep(&r.fields[i]) {
			kept = append(kept, r.fields[i])
		}
	}
	removed := len(r.fields) - len(kept)
	r.fields = kept
	return removed
}

// ReTag relabels every field with tag from as to and returns the count.
// Field positions do not change. A field whose kind does not match to under
// the record's policy fails the whole call and nothing is relabelled.
func (r *Record) ReTag(from string, to string) (int, error) {
	if err := checkTag("ReTag", to); err != nil {
		return 0, err
	}
	for i := range r.fields {
		if r.fields[i].tag == from {
			if err := checkKind("ReTag", to, r.fields[i].kind, r.Policy()); err != nil {
				return 0, err
			}
		}
	}
	n := 0
	for i := range r.fields {
		if r.fields[i].tag == from {
			r.fields[i].tag = to
			n++
		}
	}
	return n, nil
}

// SortFields orders fields by tag, keeping the relative order of equal tags.
func (r *Record) SortFields() {
	sort.SliceStable(r.fields, func(i, j int) bool { return r.fields[i].tag < r.fields[j].tag })
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	c := &Record{leader: r.leader, policy: r.policy, fields: make([]Field, len(r.fields))}
	for i := range r.fields {
		c.fields[i] = r.fields[i].Clone()
	}
	return c
}

// Equal compares the leaders (ignoring the computed record length and base
// address) and every field in order.
func (r *Record) Equal(o *Record) bool {
	if r.Empty() || o.Empty() {
		return r.Empty() == o.Empty()
	}
	if !r.leader.equivalent(o.leader) || len(r.fields) != len(o.fields) {
		return false
	}
	for i := range r.fields {
		if !r.fields[i].Equal(&o.fields[i]) {
			return false
		}
	}
	return true
}

//
// end of file
//
