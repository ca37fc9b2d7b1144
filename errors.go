package qcms

import (
	"errors"

	"github.com/kovidgoyal/qcms/icc"
)

var (
	ErrOutOfBounds             = icc.ErrOutOfBounds
	ErrInvalidProfile          = icc.ErrInvalidProfile
	ErrUnsupported             = icc.ErrUnsupported
	ErrInvalidColorPrimaries   = icc.ErrInvalidColorPrimaries
	ErrAllocationFailure       = icc.ErrAllocationFailure
	ErrIncompatiblePixelFormat = errors.New("pixel format incompatible with profile")

	// Apply was called with buffers too short for the requested pixel count
	ErrBufferTooSmall = errors.New("buffer too small")
)
