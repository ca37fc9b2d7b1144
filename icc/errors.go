package icc

import (
	"errors"
	"fmt"

	"github.com/kovidgoyal/qcms/colorconv"
)

var (
	ErrOutOfBounds       = errors.New("read out of bounds")
	ErrInvalidProfile    = errors.New("invalid ICC profile")
	ErrUnsupported       = errors.New("unsupported ICC feature")
	ErrAllocationFailure = errors.New("table too large")

	// Singular or degenerate primaries when building a colorant matrix
	ErrInvalidColorPrimaries = colorconv.ErrInvalidColorPrimaries
)

// BoundsError is returned by Reader when a read would go past the end of
// its data. It matches ErrOutOfBounds with errors.Is.
type BoundsError struct {
	Offset, Width, Len int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("read of %d bytes at offset %d out of bounds for data of length %d", e.Width, e.Offset, e.Len)
}

func (e *BoundsError) Is(target error) bool { return target == ErrOutOfBounds }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidProfile, fmt.Sprintf(format, args...))
}

func unsupported(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...))
}
