package program

import "errors"

var (
	// ErrFieldCount reports a class registration whose instances could not
	// fit a single block.
	ErrFieldCount = errors.New("program: field count out of range")

	// ErrClassTableFull reports that every encodable class identity is taken.
	ErrClassTableFull = errors.New("program: class table full")
)
