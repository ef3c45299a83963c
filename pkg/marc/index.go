package marc

import (
	"errors"
	"io"
)

var ErrNotIndexed = errors.New("control number not in index")

// Index maps control numbers to the stream offset of the first record
// carrying them. Records without a control number are not indexed.
type Index map[string]int64

// BuildIndex reads r from its current position to the end and returns the
// offsets it saw along with the number of records read. The reader is left
// at the end of the stream; Seek to an indexed offset to read a record again.
func BuildIndex(r Reader) (Index, int, error) {
	idx := make(Index)
	count := 0
	for {
		offset := r.Tell()
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				return idx, count, nil
			}
			return nil, count, err
		}
		count++
		id := rec.ControlNumber()
		if id == "" {
			continue
		}
		if _, seen := idx[id]; !seen {
			idx[id] = offset
		}
	}
}

// ReadIndexed seeks r to the record indexed under id and reads it.
func ReadIndexed(r Reader, idx Index, id string) (*Record, error) {
	offset, ok := idx[id]
	if !ok {
		return nil, ErrNotIndexed
	}
	if err := r.Seek(offset); err != nil {
		return nil, err
	}
	return r.Read()
}

//
// end of file
//
