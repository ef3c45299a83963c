package marc

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

var ErrNotSeekable = errors.New("MARC reader source is not seekable")

// Reader iterates over a stream of records.
//
// Read returns (nil, io.EOF) at the end of the stream. A malformed record
// stops the stream: the error is returned from that Read and every following
// one until the reader is repositioned with Seek or Rewind.
//
// Tell reports the offset the next Read starts at; Seek accepts any offset
// previously returned by Tell. A Reader is not safe for concurrent use; open
// one reader per goroutine, or use ReadRecordAt.
type Reader interface {
	Read() (*Record, error)
	Tell() int64
	Seek(offset int64) error
	Rewind() error
	FileType() FileType
	Close() error
}

// OpenReader opens path for reading. FileTypeAuto inspects the content.
func OpenReader(path string, ft FileType) (Reader, error) {
	return OpenReaderWithPolicy(path, ft, nil)
}

// OpenReaderWithPolicy is OpenReader with an explicit field policy.
func OpenReaderWithPolicy(path string, ft FileType, p *Policy) (Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReaderWithPolicy(file, ft, p)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// NewReader wraps src. If src is an io.Seeker the reader supports Seek and
// Rewind; if it is an io.Closer, Close closes it.
func NewReader(src io.Reader, ft FileType) (Reader, error) {
	return NewReaderWithPolicy(src, ft, nil)
}

// NewReaderWithPolicy is NewReader with an explicit field policy.
func NewReaderWithPolicy(src io.Reader, ft FileType, p *Policy) (Reader, error) {
	s := newStream(src)
	if ft == FileTypeAuto {
		sniffed, err := sniffFileType(s.buf)
		if err != nil {
			return nil, err
		}
		ft = sniffed
	}

	switch ft {
	case FileTypeBinary:
		return &BinaryReader{stream: s, codec: Codec{Policy: p}}, nil
	case FileTypeXML:
		x := &XMLReader{stream: s, policy: p}
		x.decoder = xml.NewDecoder(s.buf)
		return x, nil
	case FileTypeJSON:
		return &JSONReader{stream: s, policy: p}, nil
	}
	return nil, ErrUnknownFileType
}

// stream carries the shared cursor bookkeeping of all readers.
type stream struct {
	src    io.Reader
	buf    *bufio.Reader
	offset int64
	err    error
}

func newStream(src io.Reader) *stream {
	return &stream{src: src, buf: bufio.NewReaderSize(src, 64*1024)}
}

func (s *stream) Tell() int64 {
	return s.offset
}

func (s *stream) seek(offset int64) error {
	seeker, ok := s.src.(io.Seeker)
	if !ok {
		return ErrNotSeekable
	}
	if _, err := seeker.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	s.buf.Reset(s.src)
	s.offset = offset
	s.err = nil
	return nil
}

func (s *stream) Close() error {
	if c, ok := s.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// fail records a sticky error for the record starting at start.
func (s *stream) fail(start int64, err error) error {
	s.err = fmt.Errorf("record at offset %d: %w", start, err)
	return s.err
}

// BinaryReader reads concatenated ISO 2709 records.
type BinaryReader struct {
	*stream
	codec  Codec
	header [recordLengthDigits]byte
}

func (r *BinaryReader) FileType() FileType {
	return FileTypeBinary
}

func (r *BinaryReader) Read() (*Record, error) {
	if r.err != nil {
		return nil, r.err
	}
	start := r.offset

	n, err := io.ReadFull(r.buf, r.header[:])
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, r.fail(start, malformed(n, stateLeader, "truncated record length (%d bytes)", n))
		}
		return nil, err
	}

	length, ok := parseDigits(r.header[:])
	if !ok {
		return nil, r.fail(start, malformed(0, stateLeader, "record length not numeric (%q)", r.header[:]))
	}
	if length < LeaderLength+2 {
		return nil, r.fail(start, malformed(0, stateLeader, "record length %d shorter than a leader", length))
	}

	data := make([]byte, length)
	copy(data, r.header[:])
	n, err = io.ReadFull(r.buf, data[recordLengthDigits:])
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, r.fail(start, malformed(recordLengthDigits+n, stateLeader, "record length %d but stream ends after %d bytes", length, recordLengthDigits+n))
		}
		return nil, err
	}

	rec, err := r.codec.Decode(data)
	if err != nil {
		return nil, r.fail(start, err)
	}
	r.offset += int64(length)
	return rec, nil
}

func (r *BinaryReader) Seek(offset int64) error {
	return r.seek(offset)
}

func (r *BinaryReader) Rewind() error {
	return r.seek(0)
}

// ReadRecordAt decodes the binary record starting at offset without any
// shared cursor, so several goroutines may read the same file concurrently.
// It returns the record and the offset of the record that follows it.
func ReadRecordAt(src io.ReaderAt, offset int64, p *Policy) (*Record, int64, error) {
	var header [recordLengthDigits]byte
	n, err := src.ReadAt(header[:], offset)
	if n < len(header) {
		if n == 0 && err == io.EOF {
			return nil, offset, io.EOF
		}
		if err == nil || err == io.EOF {
			err = malformed(n, stateLeader, "truncated record length (%d bytes)", n)
		}
		return nil, offset, fmt.Errorf("record at offset %d: %w", offset, err)
	}

	length, ok := parseDigits(header[:])
	if !ok || length < LeaderLength+2 {
		return nil, offset, fmt.Errorf("record at offset %d: %w", offset, malformed(0, stateLeader, "bad record length (%q)", header[:]))
	}

	data := make([]byte, length)
	n, err = src.ReadAt(data, offset)
	if n < length {
		if err == nil || err == io.EOF {
			err = malformed(n, stateLeader, "record length %d but only %d bytes available", length, n)
		}
		return nil, offset, fmt.Errorf("record at offset %d: %w", offset, err)
	}

	rec, err := Codec{Policy: p}.Decode(data)
	if err != nil {
		return nil, offset, fmt.Errorf("record at offset %d: %w", offset, err)
	}
	return rec, offset + int64(length), nil
}

// XMLReader reads <record> elements, with or without an enclosing
// <collection>.
type XMLReader struct {
	*stream
	decoder *xml.Decoder
	base    int64
	policy  *Policy
}

func (r *XMLReader) FileType() FileType {
	return FileTypeXML
}

func (r *XMLReader) Read() (*Record, error) {
	if r.err != nil {
		return nil, r.err
	}
	start := r.offset
	rec, err := decodeXMLRecord(r.decoder, r.base, r.policy)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, r.fail(start, err)
	}
	r.offset = r.base + r.decoder.InputOffset()
	return rec, nil
}

func (r *XMLReader) Seek(offset int64) error {
	if err := r.seek(offset); err != nil {
		return err
	}
	r.decoder = xml.NewDecoder(r.buf)
	r.base = offset
	return nil
}

func (r *XMLReader) Rewind() error {
	return r.Seek(0)
}

// JSONReader reads MARC-in-JSON, one record per line.
type JSONReader struct {
	*stream
	policy *Policy
}

func (r *JSONReader) FileType() FileType {
	return FileTypeJSON
}

func (r *JSONReader) Read() (*Record, error) {
	if r.err != nil {
		return nil, r.err
	}
	for {
		start := r.offset
		line, err := r.buf.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		r.offset += int64(len(line))

		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			if err == io.EOF {
				return nil, io.EOF
			}
			continue
		}

		rec := &Record{policy: r.policy}
		if jerr := json.Unmarshal(trimmed, rec); jerr != nil {
			r.offset = start
			return nil, r.fail(start, &MalformedRecordError{Offset: 0, Stage: stateFieldData.String(), Reason: jerr.Error()})
		}
		return rec, nil
	}
}

func (r *JSONReader) Seek(offset int64) error {
	return r.seek(offset)
}

func (r *JSONReader) Rewind() error {
	return r.seek(0)
}

//
// end of file
//
