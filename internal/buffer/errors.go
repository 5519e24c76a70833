package buffer

import "errors"

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("buffer: offset out of range")
	ErrRangeInvalid     = errors.New("buffer: invalid range")
	ErrEditsOverlap     = errors.New("buffer: edits overlap or are not in descending-offset order")
)
