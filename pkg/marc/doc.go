// Package marc implements the MARC 21 bibliographic record model together with
// its ISO 2709 binary encoding, MARCXML and MARC-in-JSON.
//
// A binary record is laid out as
//
//	leader (24 bytes) | directory (N x 12 bytes) 0x1E | field data | 0x1D
//
// where each directory entry is a 3 byte tag, a 4 digit field length and a 5
// digit start offset relative to the base address of data. Every field is
// terminated by 0x1E; subfields inside a data field start with 0x1F followed
// by a one byte code.
//
// Encoding a record that was just decoded reproduces the input bytes, with
// the following documented exceptions, all of which decode to an equal record:
//
//   - leader positions 20-22 (the entry map) are always written as "450"
//     regardless of the widths the input declared
//   - field data is laid out in directory order, so inputs whose directory
//     offsets are not ascending are rewritten with ascending offsets
//
// The decoder rejects directories whose entries, in offset order, overlap,
// leave gaps or stop short of the record terminator.
package marc

//
// end of file
//
