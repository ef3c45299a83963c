package marc

import (
	"errors"
	"fmt"
)

var ErrMalformedRecord = errors.New("malformed MARC record")
var ErrEncodingOverflow = errors.New("MARC encoding overflow")
var ErrInvalidMutation = errors.New("invalid MARC record mutation")

// MalformedRecordError reports a structural violation found while decoding.
// Offset is relative to the first byte of the record.
type MalformedRecordError struct {
	Offset int
	Stage  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed MARC record: %s at offset %d (%s)", e.Reason, e.Offset, e.Stage)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// EncodingOverflowError is returned when a length or offset does not fit the
// fixed width decimal field reserved for it.
type EncodingOverflowError struct {
	Tag    string
	Length int
	Limit  int
}

func (e *EncodingOverflowError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("MARC record length %d exceeds %d", e.Length, e.Limit)
	}
	return fmt.Sprintf("MARC field %s: length %d exceeds %d", e.Tag, e.Length, e.Limit)
}

func (e *EncodingOverflowError) Is(target error) bool {
	return target == ErrEncodingOverflow
}

// InvalidMutationError is returned when an operation does not fit the record
// model, for example adding a subfield to a control field.
type InvalidMutationError struct {
	Op     string
	Reason string
}

func (e *InvalidMutationError) Error() string {
	return fmt.Sprintf("invalid MARC mutation %s: %s", e.Op, e.Reason)
}

func (e *InvalidMutationError) Is(target error) bool {
	return target == ErrInvalidMutation
}

func malformed(offset int, stage decodeState, format string, args ...interface{}) error {
	return &MalformedRecordError{Offset: offset, Stage: stage.String(), Reason: fmt.Sprintf(format, args...)}
}

func invalidMutation(op string, format string, args ...interface{}) error {
	return &InvalidMutationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

//
// end of file
//
