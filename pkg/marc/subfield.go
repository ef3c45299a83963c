package marc

import (
	"bytes"
	"strings"
)

// Subfield is one coded value inside a data field.
type Subfield struct {
	Code  byte
	Value string
}

// Subfields is the ordered subfield list of a data field.
type Subfields []Subfield

// ParseSubfields splits the payload of a data field (indicators included,
// field terminator excluded) into its indicators and subfields.
//
// A payload shorter than the two indicators, a payload whose first byte
// after the indicators is not a subfield delimiter and a delimiter with no
// code byte are all errors; nothing is silently dropped. The returned offsets
// are relative to the start of raw.
func ParseSubfields(raw []byte) (byte, byte, Subfields, error) {
	if len(raw) < 2 {
		return 0, 0, nil, malformed(len(raw), stateFieldData, "data field of %d bytes has no indicators", len(raw))
	}
	ind1, ind2 := raw[0], raw[1]
	body := raw[2:]
	if len(body) == 0 {
		return ind1, ind2, Subfields{}, nil
	}
	if body[0] != SubfieldDelimiter {
		return 0, 0, nil, malformed(2, stateFieldData, "data after indicators does not start with a subfield delimiter (%#x)", body[0])
	}

	subs := make(Subfields, 0, bytes.Count(body, []byte{SubfieldDelimiter}))
	pos := 2
	for _, chunk := range bytes.Split(body[1:], []byte{SubfieldDelimiter}) {
		pos++
		if len(chunk) == 0 {
			return 0, 0, nil, malformed(pos, stateFieldData, "subfield delimiter without a code")
		}
		subs = append(subs, Subfield{Code: chunk[0], Value: string(chunk[1:])})
		pos += len(chunk)
	}
	return ind1, ind2, subs, nil
}

// First returns the value of the first subfield with the given code.
func (s Subfields) First(code byte) (string, bool) {
	for _, sf := range s {
		if sf.Code == code {
			return sf.Value, true
		}
	}
	return "", false
}

// FirstValue is First without the presence flag; absent subfields yield "".
func (s Subfields) FirstValue(code byte) string {
	v, _ := s.First(code)
	return v
}

// HasCode reports whether any subfield carries code.
func (s Subfields) HasCode(code byte) bool {
	_, ok := s.First(code)
	return ok
}

// Values returns the values of every subfield whose code is listed in codes,
// grouped by code in the order codes lists them.
func (s Subfields) Values(codes string) []string {
	values := make([]string, 0)
	for i := 0; i < len(codes); i++ {
		for _, sf := range s {
			if sf.Code == codes[i] {
				values = append(values, sf.Value)
			}
		}
	}
	return values
}

// HasValue reports whether a subfield with code has exactly value, or value
// under Unicode case folding when ignoreCase is set.
func (s Subfields) HasValue(code byte, value string, ignoreCase bool) bool {
	for _, sf := range s {
		if sf.Code != code {
			continue
		}
		if sf.Value == value || (ignoreCase && strings.EqualFold(sf.Value, value)) {
			return true
		}
	}
	return false
}

func (s Subfields) encodedLength() int {
	n := 0
	for _, sf := range s {
		n += 2 + len(sf.Value)
	}
	return n
}

func (s Subfields) appendTo(buf []byte) []byte {
	for _, sf := range s {
		buf = append(buf, SubfieldDelimiter, sf.Code)
		buf = append(buf, sf.Value...)
	}
	return buf
}

// clone returns a deep copy; values are immutable strings so copying the
// slice suffices.
func (s Subfields) clone() Subfields {
	if s == nil {
		return nil
	}
	out := make(Subfields, len(s))
	copy(out, s)
	return out
}

func containsDelimiter(s string) bool {
	return strings.IndexByte(s, SubfieldDelimiter) >= 0 ||
		strings.IndexByte(s, FieldTerminator) >= 0 ||
		strings.IndexByte(s, RecordTerminator) >= 0
}

//
// end of file
//
