//go:build !unix

package marc

import (
	"errors"
)

var errAppendUnsupported = errors.New("locked append is not supported on this platform")

// AppendWriter is only available on unix systems.
type AppendWriter struct{}

func OpenAppendWriter(path string) (*AppendWriter, error) {
	return nil, errAppendUnsupported
}

func (w *AppendWriter) Write(r *Record) error {
	return errAppendUnsupported
}

func (w *AppendWriter) Flush() error {
	return nil
}

func (w *AppendWriter) Close() error {
	return nil
}

func AppendRecord(path string, r *Record) error {
	return errAppendUnsupported
}

//
// end of file
//
