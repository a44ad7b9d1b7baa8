package engine

import "errors"

var (
	// ErrInvalidArgument is returned for an unusable configuration.
	ErrInvalidArgument = errors.New("engine: invalid argument")

	// ErrWidthExceeded is returned when a candidate column is wider than the
	// spanning-tree solver supports.
	ErrWidthExceeded = errors.New("engine: merge width exceeded")
)
