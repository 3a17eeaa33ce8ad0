package layout

import "errors"

var (
	// ErrSignatureMismatch indicates a block header had an unexpected magic.
	ErrSignatureMismatch = errors.New("layout: block signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("layout: truncated buffer")
	// ErrSizeRange indicates a length or size outside the representable range
	// for its kind.
	ErrSizeRange = errors.New("layout: size out of range")
)
