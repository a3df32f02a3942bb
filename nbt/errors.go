package nbt

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrUnexpectedEnd = errors.New("nbt: unexpected end of input")
var ErrInvalidTagID = errors.New("nbt: invalid tag id")
var ErrInvalidText = errors.New("nbt: invalid utf-8 text")
var ErrNegativeLength = errors.New("nbt: negative length")
var ErrMaxDepth = errors.New("nbt: maximum nesting depth exceeded")

// DecodeError reports where in the input a decode failed. Err is always one of the package
// sentinels, so callers can match with errors.Is.
type DecodeError struct {
	Offset int
	Err    error

	// ID is set for ErrInvalidTagID, Length for ErrNegativeLength and ErrUnexpectedEnd.
	ID     byte
	Length int
}

func (e *DecodeError) Error() string {
	switch e.Err {
	case ErrInvalidTagID:
		return fmt.Sprintf("%s %d at offset %d", e.Err, e.ID, e.Offset)
	case ErrNegativeLength:
		return fmt.Sprintf("%s %d at offset %d", e.Err, e.Length, e.Offset)
	case ErrUnexpectedEnd:
		return fmt.Sprintf("%s at offset %d (wanted %d bytes)", e.Err, e.Offset, e.Length)
	default:
		return fmt.Sprintf("%s at offset %d", e.Err, e.Offset)
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func errAt(offset int, err error) *DecodeError {
	return &DecodeError{Offset: offset, Err: err}
}
