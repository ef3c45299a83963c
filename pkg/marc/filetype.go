package marc

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// FileType selects the serialisation of a record stream.
type FileType int

const (
	FileTypeAuto FileType = iota
	FileTypeBinary
	FileTypeXML
	FileTypeJSON
)

var ErrUnknownFileType = fmt.Errorf("unrecognized MARC file format")

func (t FileType) String() string {
	switch t {
	case FileTypeBinary:
		return "binary"
	case FileTypeXML:
		return "xml"
	case FileTypeJSON:
		return "json"
	default:
		return "auto"
	}
}

// ParseFileType accepts the names String produces plus "marc" and "mrc".
func ParseFileType(s string) (FileType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FileTypeAuto, nil
	case "binary", "marc", "mrc", "raw":
		return FileTypeBinary, nil
	case "xml", "marcxml", "marc-xml":
		return FileTypeXML, nil
	case "json", "jsonl", "marc-in-json":
		return FileTypeJSON, nil
	}
	return FileTypeAuto, fmt.Errorf("%w: %q", ErrUnknownFileType, s)
}

// FileTypeFromName guesses the type from a file extension, returning
// FileTypeAuto when the extension says nothing.
func FileTypeFromName(name string) FileType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mrc", ".marc", ".raw", ".iso", ".bin":
		return FileTypeBinary
	case ".xml":
		return FileTypeXML
	case ".json", ".jsonl", ".ndjson":
		return FileTypeJSON
	}
	return FileTypeAuto
}

// sniffFileType inspects the start of a stream without consuming it. An empty
// stream is reported as binary so that reading it yields io.EOF.
func sniffFileType(br *bufio.Reader) (FileType, error) {
	head, _ := br.Peek(512)
	head = bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	head = bytes.TrimLeft(head, " \t\r\n")
	if len(head) == 0 {
		return FileTypeBinary, nil
	}
	switch {
	case head[0] == '<':
		return FileTypeXML, nil
	case head[0] == '{':
		// JSONReader takes one object per line, not a top level array
		return FileTypeJSON, nil
	case len(head) >= recordLengthDigits:
		if _, ok := parseDigits(head[:recordLengthDigits]); ok {
			return FileTypeBinary, nil
		}
	}
	return FileTypeAuto, ErrUnknownFileType
}

//
// end of file
//
