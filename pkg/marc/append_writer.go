//go:build unix

package marc

import (
	"os"

	"golang.org/x/sys/unix"
)

// AppendWriter appends binary records to a file shared with other processes.
// Each Write takes an exclusive flock on the whole file for the duration of
// the write, so records from concurrent writers never interleave.
type AppendWriter struct {
	file  *os.File
	codec Codec
}

// OpenAppendWriter opens path for appending, creating it if necessary.
func OpenAppendWriter(path string) (*AppendWriter, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	return &AppendWriter{file: file}, nil
}

// Write encodes r first, so nothing is locked or written when encoding fails.
func (w *AppendWriter) Write(r *Record) error {
	data, err := w.codec.Encode(r)
	if err != nil {
		return err
	}

	if err := lockFile(w.file, unix.LOCK_EX); err != nil {
		return err
	}
	defer lockFile(w.file, unix.LOCK_UN)

	_, err = w.file.Write(data)
	return err
}

// Flush is a no-op; every Write reaches the file before the lock is released.
func (w *AppendWriter) Flush() error {
	return nil
}

func (w *AppendWriter) Close() error {
	return w.file.Close()
}

// AppendRecord opens path, appends r under the lock and closes the file.
func AppendRecord(path string, r *Record) error {
	w, err := OpenAppendWriter(path)
	if err != nil {
		return err
	}
	if err := w.Write(r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func lockFile(file *os.File, how int) error {
	for {
		err := unix.Flock(int(file.Fd()), how)
		if err != unix.EINTR {
			return err
		}
	}
}

//
// end of file
//
