package marc

import (
	"bufio"
	"io"
	"os"

	"github.com/goccy/go-json"
)

// Writer serialises records to a stream.
type Writer interface {
	Write(r *Record) error
	Flush() error
	Close() error
}

// CreateWriter creates (truncating) path. FileTypeAuto picks the type from
// the extension and falls back to binary.
func CreateWriter(path string, ft FileType) (Writer, error) {
	if ft == FileTypeAuto {
		ft = FileTypeFromName(path)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(file, ft)
	if err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

// NewWriter wraps dst. Close flushes and, when dst is an io.Closer, closes it.
func NewWriter(dst io.Writer, ft FileType) (Writer, error) {
	base := writerBase{dst: dst, buf: bufio.NewWriterSize(dst, 64*1024)}
	switch ft {
	case FileTypeAuto, FileTypeBinary:
		return &BinaryWriter{writerBase: base}, nil
	case FileTypeXML:
		return &XMLWriter{writerBase: base}, nil
	case FileTypeJSON:
		return &JSONWriter{writerBase: base}, nil
	}
	return nil, ErrUnknownFileType
}

type writerBase struct {
	dst io.Writer
	buf *bufio.Writer
}

func (w *writerBase) Flush() error {
	return w.buf.Flush()
}

func (w *writerBase) close() error {
	err := w.buf.Flush()
	if c, ok := w.dst.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// BinaryWriter writes concatenated ISO 2709 records.
type BinaryWriter struct {
	writerBase
	codec Codec
}

func (w *BinaryWriter) Write(r *Record) error {
	data, err := w.codec.Encode(r)
	if err != nil {
		return err
	}
	_, err = w.buf.Write(data)
	return err
}

func (w *BinaryWriter) Close() error {
	return w.close()
}

// XMLWriter writes a MARCXML <collection>. The collection is opened by the
// first Write and closed by Close, so an empty collection is still valid XML.
type XMLWriter struct {
	writerBase
	started bool
}

func (w *XMLWriter) start() {
	if !w.started {
		w.buf.WriteString(xmlHeader)
		w.buf.WriteString(`<collection xmlns="` + SlimNamespace + `">` + "\n")
		w.started = true
	}
}

func (w *XMLWriter) Write(r *Record) error {
	w.start()
	return writeXMLRecord(w.buf, r, 1)
}

func (w *XMLWriter) Close() error {
	w.start()
	w.buf.WriteString("</collection>\n")
	return w.close()
}

// JSONWriter writes MARC-in-JSON, one record per line.
type JSONWriter struct {
	writerBase
}

func (w *JSONWriter) Write(r *Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	w.buf.Write(data)
	return w.buf.WriteByte('\n')
}

func (w *JSONWriter) Close() error {
	return w.close()
}

//
// end of file
//
