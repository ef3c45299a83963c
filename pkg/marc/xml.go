package marc

import (
	"bufio"
	"encoding/xml"
	"io"
	"strings"
)

// MARCXML namespace
const SlimNamespace = "http://www.loc.gov/MARC21/slim"

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// computedLengths returns the record length and base address the binary
// encoding would use, or zeros when the record is too large to encode.
func (r *Record) computedLengths() (int, int) {
	base := LeaderLength + len(r.fields)*DirectoryEntryLength + 1
	total := base + 1
	for i := range r.fields {
		total += r.fields[i].encodedLength()
	}
	if total > MaxRecordLength {
		return 0, 0
	}
	return total, base
}

// writeXMLRecord renders one <record> element with two space indentation
// starting at depth.
func writeXMLRecord(w *bufio.Writer, r *Record, depth int) error {
	pad := strings.Repeat("  ", depth)
	total, base := r.computedLengths()

	w.WriteString(pad + "<record>\n")
	w.WriteString(pad + "  <leader>")
	xml.EscapeText(w, r.leader.appendTo(nil, total, base))
	w.WriteString("</leader>\n")

	for i := range r.fields {
		f := &r.fields[i]
		if f.kind == ControlFieldKind {
			w.WriteString(pad + `  <controlfield tag="`)
			xml.EscapeText(w, []byte(f.tag))
			w.WriteString(`">`)
			xml.EscapeText(w, []byte(f.contents))
			w.WriteString("</controlfield>\n")
			continue
		}
		w.WriteString(pad + `  <datafield tag="`)
		xml.EscapeText(w, []byte(f.tag))
		w.WriteString(`" ind1="`)
		xml.EscapeText(w, []byte{orBlank(f.ind1, ' ')})
		w.WriteString(`" ind2="`)
		xml.EscapeText(w, []byte{orBlank(f.ind2, ' ')})
		w.WriteString("\">\n")
		for _, sf := range f.subfields {
			w.WriteString(pad + `    <subfield code="`)
			xml.EscapeText(w, []byte{sf.Code})
			w.WriteString(`">`)
			xml.EscapeText(w, []byte(sf.Value))
			w.WriteString("</subfield>\n")
		}
		w.WriteString(pad + "  </datafield>\n")
	}

	_, err := w.WriteString(pad + "</record>\n")
	return err
}

// MarshalXML renders a standalone MARCXML record, namespace included.
func MarshalXML(r *Record) ([]byte, error) {
	var sb strings.Builder
	w := bufio.NewWriter(&sb)
	w.WriteString(xmlHeader)
	if err := writeXMLRecord(w, r, 0); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	out := strings.Replace(sb.String(), "<record>", `<record xmlns="`+SlimNamespace+`">`, 1)
	return []byte(out), nil
}

// UnmarshalXML parses the first <record> element found in data.
func UnmarshalXML(data []byte) (*Record, error) {
	d := xml.NewDecoder(strings.NewReader(string(data)))
	return decodeXMLRecord(d, 0, nil)
}

// decodeXMLRecord scans raw tokens up to the next <record> start element and
// decodes it. Raw tokens are used because readers may be positioned in the
// middle of a <collection>, where the closing tag has no matching start.
// base is added to decoder offsets in errors. Returns io.EOF when no further
// record starts.
func decodeXMLRecord(d *xml.Decoder, base int64, p *Policy) (*Record, error) {
	for {
		tok, err := d.RawToken()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, xmlMalformed(d, base, stateLeader, err.Error())
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "record" {
			break
		}
	}

	rec := &Record{fields: make([]Field, 0), policy: p}
	haveLeader := false
	var current *Field

	for {
		tok, err := d.RawToken()
		if err != nil {
			if err == io.EOF {
				return nil, xmlMalformed(d, base, stateFieldData, "unterminated <record>")
			}
			return nil, xmlMalformed(d, base, stateFieldData, err.Error())
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "leader":
				text, err := xmlText(d)
				if err != nil {
					return nil, xmlMalformed(d, base, stateLeader, err.Error())
				}
				leader, err := ParseLeader(text)
				if err != nil {
					return nil, xmlMalformed(d, base, stateLeader, err.Error())
				}
				rec.leader = leader
				haveLeader = true

			case "controlfield":
				tag := xmlAttr(t, "tag")
				if len(tag) != 3 {
					return nil, xmlMalformed(d, base, stateFieldData, "controlfield tag "+tag+" is not 3 bytes")
				}
				text, err := xmlText(d)
				if err != nil {
					return nil, xmlMalformed(d, base, stateFieldData, err.Error())
				}
				if !rec.Policy().IsControlField(tag) {
					return nil, xmlMalformed(d, base, stateFieldData, "<controlfield> with data field tag "+tag)
				}
				rec.fields = append(rec.fields, NewControlField(tag, text))

			case "datafield":
				tag := xmlAttr(t, "tag")
				if len(tag) != 3 {
					return nil, xmlMalformed(d, base, stateFieldData, "datafield tag "+tag+" is not 3 bytes")
				}
				if rec.Policy().IsControlField(tag) {
					return nil, xmlMalformed(d, base, stateFieldData, "<datafield> with control field tag "+tag)
				}
				f := NewDataField(tag, xmlIndicator(t, "ind1"), xmlIndicator(t, "ind2"))
				rec.fields = append(rec.fields, f)
				current = &rec.fields[len(rec.fields)-1]

			case "subfield":
				if current == nil {
					return nil, xmlMalformed(d, base, stateFieldData, "<subfield> outside <datafield>")
				}
				code := xmlAttr(t, "code")
				if len(code) != 1 {
					return nil, xmlMalformed(d, base, stateFieldData, "subfield code "+code+" is not one byte")
				}
				text, err := xmlText(d)
				if err != nil {
					return nil, xmlMalformed(d, base, stateFieldData, err.Error())
				}
				current.subfields = append(current.subfields, Subfield{Code: code[0], Value: text})
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "datafield":
				current = nil
			case "record":
				if !haveLeader {
					return nil, xmlMalformed(d, base, stateLeader, "<record> without <leader>")
				}
				return rec, nil
			}
		}
	}
}

// xmlText collects character data up to the end of the current element.
func xmlText(d *xml.Decoder) (string, error) {
	var sb strings.Builder
	for {
		tok, err := d.RawToken()
		if err != nil {
			if err == io.EOF {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			return sb.String(), nil
		}
	}
}

func xmlAttr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func xmlIndicator(se xml.StartElement, name string) byte {
	v := xmlAttr(se, name)
	if len(v) == 0 {
		return ' '
	}
	return v[0]
}

func xmlMalformed(d *xml.Decoder, base int64, stage decodeState, reason string) error {
	return malformed(int(base+d.InputOffset()), stage, "%s", reason)
}

//
// end of file
//
