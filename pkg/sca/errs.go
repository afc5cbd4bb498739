package sca

import "errors"

var (
	// ErrNilReader indicates ParseReader was called with a nil reader.
	ErrNilReader = errors.New("sca: nil reader")
)
