package marc

// decoder stages, used to label errors
type decodeState int

const (
	stateLeader decodeState = iota
	stateDirectory
	stateFieldData
	stateComplete
)

func (s decodeState) String() string {
	switch s {
	case stateLeader:
		return "leader"
	case stateDirectory:
		return "directory"
	case stateFieldData:
		return "field data"
	default:
		return "complete"
	}
}

// Codec converts between records and ISO 2709 bytes. The zero value uses
// DefaultPolicy. A Codec holds no state between calls.
type Codec struct {
	Policy *Policy
}

// Decode parses one binary record using DefaultPolicy.
func Decode(data []byte) (*Record, error) {
	return Codec{}.Decode(data)
}

// Encode serialises r to its binary form.
func Encode(r *Record) ([]byte, error) {
	return Codec{}.Encode(r)
}

// Decode parses exactly one record. data must hold the whole record and
// nothing else: the declared record length has to equal len(data) and the
// last byte has to be the record terminator.
func (c Codec) Decode(data []byte) (*Record, error) {
	state := stateLeader

	if len(data) < LeaderLength+2 {
		return nil, malformed(len(data), state, "truncated record (%d bytes)", len(data))
	}
	if data[len(data)-1] != RecordTerminator {
		return nil, malformed(len(data)-1, state, "missing record terminator (%#x)", data[len(data)-1])
	}
	leader, err := DecodeLeader(data, len(data))
	if err != nil {
		return nil, err
	}

	state = stateDirectory
	base := leader.BaseAddress
	dataLength := len(data) - 1 - base
	entries, err := DecodeDirectory(data[LeaderLength:base], leader, dataLength)
	if err != nil {
		return nil, err
	}

	state = stateFieldData
	rec := &Record{leader: leader, fields: make([]Field, 0, len(entries)), policy: c.Policy}
	for _, e := range entries {
		start := base + e.Start
		end := start + e.Length - 1
		if data[end] != FieldTerminator {
			return nil, malformed(end, state, "field %s not terminated (%#x)", e.Tag, data[end])
		}
		raw := data[start:end]

		if rec.Policy().IsControlField(e.Tag) {
			rec.fields = append(rec.fields, NewControlField(e.Tag, string(raw)))
			continue
		}
		ind1, ind2, subs, err := ParseSubfields(raw)
		if err != nil {
			if me, ok := err.(*MalformedRecordError); ok {
				me.Offset += start
				me.Reason = "field " + e.Tag + ": " + me.Reason
			}
			return nil, err
		}
		rec.fields = append(rec.fields, Field{tag: e.Tag, kind: DataFieldKind, ind1: ind1, ind2: ind2, subfields: subs})
	}

	return rec, nil
}

// Encode lays the fields out in their current order, rebuilding the
// directory and the computed leader positions. r is not modified. Field kinds
// are checked against the codec's policy, or the record's when the codec has
// none, so that the output decodes back to the same fields.
func (c Codec) Encode(r *Record) ([]byte, error) {
	if r == nil {
		return nil, invalidMutation("Encode", "nil record")
	}
	p := c.Policy
	if p == nil {
		p = r.Policy()
	}

	dataLength := 0
	for i := range r.fields {
		f := &r.fields[i]
		if err := f.validate(p); err != nil {
			return nil, err
		}
		length := f.encodedLength()
		if length > MaxFieldLength {
			return nil, &EncodingOverflowError{Tag: f.tag, Length: length, Limit: MaxFieldLength}
		}
		dataLength += length
	}

	base := LeaderLength + len(r.fields)*DirectoryEntryLength + 1
	total := base + dataLength + 1
	if total > MaxRecordLength {
		return nil, &EncodingOverflowError{Length: total, Limit: MaxRecordLength}
	}

	buf := make([]byte, 0, total)
	buf = r.leader.appendTo(buf, total, base)

	start := 0
	for i := range r.fields {
		f := &r.fields[i]
		length := f.encodedLength()
		buf = append(buf, f.tag...)
		buf = appendPadded(buf, length, canonicalLengthDigits)
		buf = appendPadded(buf, start, canonicalStartDigits)
		start += length
	}
	buf = append(buf, FieldTerminator)

	for i := range r.fields {
		buf = r.fields[i].appendTo(buf)
	}
	buf = append(buf, RecordTerminator)

	return buf, nil
}

// EncodedFieldLength is the number of bytes f adds to an encoded record:
// its data including the terminator plus its directory entry.
func EncodedFieldLength(f *Field) int {
	return f.encodedLength() + DirectoryEntryLength
}

//
// end of file
//
