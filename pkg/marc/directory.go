package marc

import (
	"sort"
)

// DirectoryEntry locates one field inside the data segment of a record.
type DirectoryEntry struct {
	Tag    string
	Length int // includes the field terminator
	Start  int // relative to the base address of data
}

// DecodeDirectory parses the directory block of a record. dir runs from the
// end of the leader up to and including the directory terminator, dataLength
// is the size of the data segment (base address to record terminator,
// exclusive). Offsets in errors are relative to the start of the record.
func DecodeDirectory(dir []byte, l Leader, dataLength int) ([]DirectoryEntry, error) {

	if len(dir) == 0 || dir[len(dir)-1] != FieldTerminator {
		return nil, malformed(LeaderLength+len(dir)-1, stateDirectory, "missing directory terminator")
	}
	dir = dir[:len(dir)-1]

	lengthDigits, startDigits, implDigits := l.directoryWidths()
	width := 3 + lengthDigits + startDigits + implDigits
	if len(dir)%width != 0 {
		return nil, malformed(LeaderLength, stateDirectory, "directory length %d is not a multiple of %d", len(dir), width)
	}

	entries := make([]DirectoryEntry, 0, len(dir)/width)
	for pos := 0; pos < len(dir); pos += width {
		raw := dir[pos : pos+width]
		offset := LeaderLength + pos

		length, ok := parseDigits(raw[3 : 3+lengthDigits])
		if !ok {
			return nil, malformed(offset+3, stateDirectory, "field length not numeric (%q)", raw[3:3+lengthDigits])
		}
		start, ok := parseDigits(raw[3+lengthDigits : 3+lengthDigits+startDigits])
		if !ok {
			return nil, malformed(offset+3+lengthDigits, stateDirectory, "field offset not numeric (%q)", raw[3+lengthDigits:3+lengthDigits+startDigits])
		}
		if length == 0 {
			return nil, malformed(offset+3, stateDirectory, "zero length field %s", raw[0:3])
		}
		if start+length > dataLength {
			return nil, malformed(offset, stateDirectory, "field %s (start %d, length %d) runs past the data segment (%d bytes)", raw[0:3], start, length, dataLength)
		}

		entries = append(entries, DirectoryEntry{Tag: string(raw[0:3]), Length: length, Start: start})
	}

	if err := checkTiling(entries, width, dataLength); err != nil {
		return nil, err
	}
	return entries, nil
}

// checkTiling requires the entries, taken in offset order, to cover the data
// segment exactly: no gaps, no overlaps and no bytes left before the record
// terminator. Directory order itself may differ from offset order.
func checkTiling(entries []DirectoryEntry, width int, dataLength int) error {
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return entries[order[a]].Start < entries[order[b]].Start })

	next := 0
	for _, i := range order {
		e := entries[i]
		offset := LeaderLength + i*width
		if e.Start < next {
			return malformed(offset, stateDirectory, "field %s (start %d) overlaps the previous field ending at %d", e.Tag, e.Start, next)
		}
		if e.Start > next {
			return malformed(offset, stateDirectory, "gap of %d bytes before field %s (start %d)", e.Start-next, e.Tag, e.Start)
		}
		next = e.Start + e.Length
	}
	if next != dataLength {
		return malformed(LeaderLength, stateDirectory, "fields cover %d of %d data bytes", next, dataLength)
	}
	return nil
}

//
// end of file
//
