package marc

import (
	"strings"
)

// FieldKind distinguishes control fields from data fields. It is decided once
// when a field is constructed or decoded.
type FieldKind int

const (
	ControlFieldKind FieldKind = iota
	DataFieldKind
)

func (k FieldKind) String() string {
	if k == ControlFieldKind {
		return "control"
	}
	return "data"
}

// Field is either a control field (tag + raw contents) or a data field
// (tag + two indicators + subfields).
type Field struct {
	tag       string
	kind      FieldKind
	contents  string
	ind1      byte
	ind2      byte
	subfields Subfields
}

// NewControlField returns a control field. The tag is not checked against a
// policy; any 3 character tag may be used as a local pseudo control field.
func NewControlField(tag string, contents string) Field {
	return Field{tag: tag, kind: ControlFieldKind, contents: contents}
}

// NewDataField returns a data field owning a copy of subfields.
func NewDataField(tag string, ind1, ind2 byte, subfields ...Subfield) Field {
	subs := make(Subfields, len(subfields))
	copy(subs, subfields)
	return Field{tag: tag, kind: DataFieldKind, ind1: ind1, ind2: ind2, subfields: subs}
}

func (f *Field) Tag() string {
	return f.tag
}

func (f *Field) Kind() FieldKind {
	return f.kind
}

func (f *Field) IsControlField() bool {
	return f.kind == ControlFieldKind
}

func (f *Field) IsDataField() bool {
	return f.kind == DataFieldKind
}

// SetTag relabels the field. The kind does not change, so the new tag must be
// of the same kind under DefaultPolicy. Fields of a record with its own
// policy are relabelled through Record.ReTag.
func (f *Field) SetTag(tag string) error {
	if err := checkKind("SetTag", tag, f.kind, DefaultPolicy); err != nil {
		return err
	}
	f.tag = tag
	return nil
}

// Contents returns the raw data of a control field; data fields yield "".
func (f *Field) Contents() string {
	return f.contents
}

func (f *Field) SetContents(contents string) error {
	if f.kind != ControlFieldKind {
		return invalidMutation("SetContents", "field %s is a data field", f.tag)
	}
	if containsDelimiter(contents) {
		return invalidMutation("SetContents", "field %s: contents contain a MARC delimiter", f.tag)
	}
	f.contents = contents
	return nil
}

func (f *Field) Indicator1() byte {
	return f.ind1
}

func (f *Field) Indicator2() byte {
	return f.ind2
}

func (f *Field) SetIndicators(ind1, ind2 byte) error {
	if f.kind != DataFieldKind {
		return invalidMutation("SetIndicators", "field %s is a control field", f.tag)
	}
	f.ind1, f.ind2 = ind1, ind2
	return nil
}

// Subfields returns the field's subfield list. The slice is owned by the
// field; modify it through the field's methods.
func (f *Field) Subfields() Subfields {
	return f.subfields
}

// FirstSubfieldValue returns the first value with code, or "".
func (f *Field) FirstSubfieldValue(code byte) string {
	return f.subfields.FirstValue(code)
}

func (f *Field) HasSubfield(code byte) bool {
	return f.subfields.HasCode(code)
}

// SubfieldValues returns all values whose code is in codes.
func (f *Field) SubfieldValues(codes string) []string {
	return f.subfields.Values(codes)
}

func (f *Field) HasSubfieldWithValue(code byte, value string, ignoreCase bool) bool {
	return f.subfields.HasValue(code, value, ignoreCase)
}

// InsertOrReplaceSubfield replaces the value of the first subfield with code
// or appends a new subfield when there is none.
func (f *Field) InsertOrReplaceSubfield(code byte, value string) error {
	if err := f.checkSubfield("InsertOrReplaceSubfield", value); err != nil {
		return err
	}
	for i := range f.subfields {
		if f.subfields[i].Code == code {
			f.subfields[i].Value = value
			return nil
		}
	}
	f.subfields = append(f.subfields, Subfield{Code: code, Value: value})
	return nil
}

// AppendSubfield always adds a subfield at the end.
func (f *Field) AppendSubfield(code byte, value string) error {
	if err := f.checkSubfield("AppendSubfield", value); err != nil {
		return err
	}
	f.subfields = append(f.subfields, Subfield{Code: code, Value: value})
	return nil
}

// AddSubfields appends several subfields, all or nothing.
func (f *Field) AddSubfields(subfields ...Subfield) error {
	for _, sf := range subfields {
		if err := f.checkSubfield("AddSubfields", sf.Value); err != nil {
			return err
		}
	}
	f.subfields = append(f.subfields, subfields...)
	return nil
}

// RemoveSubfields deletes every subfield with code and returns how many went.
func (f *Field) RemoveSubfields(code byte) int {
	kept := f.subfields[:0]
	removed := 0
	for _, sf := range f.subfields {
		if sf.Code == code {
			removed++
			continue
		}
		kept = append(kept, sf)
	}
	f.subfields = kept
	return removed
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() Field {
	c := *f
	c.subfields = f.subfields.clone()
	return c
}

// Equal compares tag, kind and contents or indicators and subfields. An
// unset indicator equals a blank one.
func (f *Field) Equal(o *Field) bool {
	if f.tag != o.tag || f.kind != o.kind {
		return false
	}
	if f.kind == ControlFieldKind {
		return f.contents == o.contents
	}
	if orBlank(f.ind1, ' ') != orBlank(o.ind1, ' ') || orBlank(f.ind2, ' ') != orBlank(o.ind2, ' ') || len(f.subfields) != len(o.subfields) {
		return false
	}
	for i := range f.subfields {
		if f.subfields[i] != o.subfields[i] {
			return false
		}
	}
	return true
}

// String renders the field in the mnemonic form used by dumps,
// e.g. "245 10 $aTitle$bsubtitle".
func (f *Field) String() string {
	var sb strings.Builder
	sb.WriteString(f.tag)
	sb.WriteByte(' ')
	if f.kind == ControlFieldKind {
		sb.WriteString(f.contents)
		return sb.String()
	}
	sb.WriteByte(printableIndicator(f.ind1))
	sb.WriteByte(printableIndicator(f.ind2))
	sb.WriteByte(' ')
	for _, sf := range f.subfields {
		sb.WriteByte('$')
		sb.WriteByte(sf.Code)
		sb.WriteString(sf.Value)
	}
	return sb.String()
}

// encodedLength is the number of bytes the field occupies in the data
// segment, including its terminator.
func (f *Field) encodedLength() int {
	if f.kind == ControlFieldKind {
		return len(f.contents) + 1
	}
	return 2 + f.subfields.encodedLength() + 1
}

func (f *Field) appendTo(buf []byte) []byte {
	if f.kind == ControlFieldKind {
		buf = append(buf, f.contents...)
	} else {
		buf = append(buf, orBlank(f.ind1, ' '), orBlank(f.ind2, ' '))
		buf = f.subfields.appendTo(buf)
	}
	return append(buf, FieldTerminator)
}

// validate checks what the encoder cannot represent, including a field whose
// kind would decode differently under p.
func (f *Field) validate(p *Policy) error {
	if err := checkKind("Encode", f.tag, f.kind, p); err != nil {
		return err
	}
	if f.kind == ControlFieldKind {
		if containsDelimiter(f.contents) {
			return invalidMutation("Encode", "field %s: contents contain a MARC delimiter", f.tag)
		}
		return nil
	}
	for _, sf := range f.subfields {
		if containsDelimiter(sf.Value) || sf.Code == SubfieldDelimiter || sf.Code == FieldTerminator || sf.Code == RecordTerminator {
			return invalidMutation("Encode", "field %s: subfield $%c contains a MARC delimiter", f.tag, sf.Code)
		}
	}
	return nil
}

func (f *Field) checkSubfield(op string, value string) error {
	if f.kind != DataFieldKind {
		return invalidMutation(op, "field %s is a control field", f.tag)
	}
	if containsDelimiter(value) {
		return invalidMutation(op, "field %s: value contains a MARC delimiter", f.tag)
	}
	return nil
}

func checkTag(op string, tag string) error {
	if len(tag) != 3 {
		return invalidMutation(op, "tag %q is not 3 bytes", tag)
	}
	return nil
}

// checkKind rejects a tag whose kind under p differs from kind.
func checkKind(op string, tag string, kind FieldKind, p *Policy) error {
	if err := checkTag(op, tag); err != nil {
		return err
	}
	if kind == ControlFieldKind && !p.IsControlField(tag) {
		return invalidMutation(op, "tag %s is a data field under the record's policy", tag)
	}
	if kind == DataFieldKind && p.IsControlField(tag) {
		return invalidMutation(op, "tag %s is a control field under the record's policy", tag)
	}
	return nil
}

func printableIndicator(b byte) byte {
	if b == ' ' || b == 0 {
		return '_'
	}
	return b
}

//
// end of file
//
