package distribution

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocolViolation covers requests the protocol does not allow,
	// such as an unknown category.
	ErrProtocolViolation = errors.New("protocol violation")
	// ErrSizeMismatch means a serializer cursor did not land on the
	// precomputed category size. It is only ever raised through a panic.
	ErrSizeMismatch = errors.New("serialized size mismatch")
	// ErrOutOfRangeReference means an object id does not address a node of
	// the current context, usually because the tracer still holds ids from
	// a previous scene.
	ErrOutOfRangeReference = errors.New("out of range reference")
)

// SizeMismatchError is the panic value raised when size accounting and
// encoding disagree.
type SizeMismatchError struct {
	Category string
	Want     int
	Got      int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("%s: category %q wrote %d bytes into a %d byte buffer", ErrSizeMismatch, e.Category, e.Got, e.Want)
}

func (e *SizeMismatchError) Unwrap() error { return ErrSizeMismatch }
