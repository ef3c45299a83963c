package marc

import (
	"fmt"

	"github.com/goccy/go-json"
)

// MARC-in-JSON layout:
//
//	{"leader":"...","fields":[{"001":"..."},{"245":{"ind1":"1","ind2":"0","subfields":[{"a":"..."}]}}]}

type jsonRecord struct {
	Leader string                       `json:"leader"`
	Fields []map[string]json.RawMessage `json:"fields"`
}

type jsonDataField struct {
	Ind1      string              `json:"ind1"`
	Ind2      string              `json:"ind2"`
	Subfields []map[string]string `json:"subfields"`
}

// MarshalJSON renders the record as MARC-in-JSON.
func (r *Record) MarshalJSON() ([]byte, error) {
	total, base := r.computedLengths()
	out := struct {
		Leader string        `json:"leader"`
		Fields []interface{} `json:"fields"`
	}{
		Leader: string(r.leader.appendTo(nil, total, base)),
		Fields: make([]interface{}, 0, len(r.fields)),
	}

	for i := range r.fields {
		f := &r.fields[i]
		if f.kind == ControlFieldKind {
			out.Fields = append(out.Fields, map[string]string{f.tag: f.contents})
			continue
		}
		df := jsonDataField{
			Ind1:      string([]byte{orBlank(f.ind1, ' ')}),
			Ind2:      string([]byte{orBlank(f.ind2, ' ')}),
			Subfields: make([]map[string]string, 0, len(f.subfields)),
		}
		for _, sf := range f.subfields {
			df.Subfields = append(df.Subfields, map[string]string{string([]byte{sf.Code}): sf.Value})
		}
		out.Fields = append(out.Fields, map[string]jsonDataField{f.tag: df})
	}

	return json.Marshal(out)
}

// UnmarshalJSON parses MARC-in-JSON. A field object must carry exactly one
// tag; a string value makes a control field, an object a data field, and the
// kind has to match the tag under the record's policy.
func (r *Record) UnmarshalJSON(data []byte) error {
	var in jsonRecord
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	leader, err := ParseLeader(in.Leader)
	if err != nil {
		return err
	}

	fields := make([]Field, 0, len(in.Fields))
	for i, obj := range in.Fields {
		if len(obj) != 1 {
			return fmt.Errorf("MARC-in-JSON field %d: expected one tag, got %d", i, len(obj))
		}
		for tag, raw := range obj {
			if len(tag) != 3 {
				return fmt.Errorf("MARC-in-JSON field %d: tag %q is not 3 bytes", i, tag)
			}
			isControl := len(raw) > 0 && raw[0] == '"'
			if isControl != r.Policy().IsControlField(tag) {
				return fmt.Errorf("MARC-in-JSON field %s: %s field value for a %s field tag", tag, kindOf(isControl), kindOf(r.Policy().IsControlField(tag)))
			}
			if isControl {
				var contents string
				if err := json.Unmarshal(raw, &contents); err != nil {
					return fmt.Errorf("MARC-in-JSON field %s: %w", tag, err)
				}
				fields = append(fields, NewControlField(tag, contents))
				continue
			}

			var df jsonDataField
			if err := json.Unmarshal(raw, &df); err != nil {
				return fmt.Errorf("MARC-in-JSON field %s: %w", tag, err)
			}
			f := NewDataField(tag, firstByte(df.Ind1), firstByte(df.Ind2))
			for _, sub := range df.Subfields {
				if len(sub) != 1 {
					return fmt.Errorf("MARC-in-JSON field %s: subfield object with %d codes", tag, len(sub))
				}
				for code, value := range sub {
					if len(code) != 1 {
						return fmt.Errorf("MARC-in-JSON field %s: subfield code %q is not one byte", tag, code)
					}
					f.subfields = append(f.subfields, Subfield{Code: code[0], Value: value})
				}
			}
			fields = append(fields, f)
		}
	}

	r.leader = leader
	r.fields = fields
	return nil
}

func kindOf(control bool) FieldKind {
	if control {
		return ControlFieldKind
	}
	return DataFieldKind
}

func firstByte(s string) byte {
	if s == "" {
		return ' '
	}
	return s[0]
}

//
// end of file
//
