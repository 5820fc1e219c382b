package gapbuffer

import (
	"errors"
	"fmt"
)

// Errors returned by buffer operations.
var (
	// ErrIndexOutOfBounds indicates a logical index outside the buffer.
	ErrIndexOutOfBounds = errors.New("index out of bounds")

	// ErrAllocationFailure indicates the backing storage could not grow.
	// It is raised by panic: the buffer cannot continue after it.
	ErrAllocationFailure = errors.New("allocation failure")
)

// IndexError describes a rejected logical index.
type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d, len %d: %s", e.Op, e.Index, e.Len, ErrIndexOutOfBounds)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfBounds
}
