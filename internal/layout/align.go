package layout

// Alignment utilities for the program-heap format.
// Objects are word-aligned within blocks; block capacities are page-sized.

// AlignWord returns n aligned up to the next word (4-byte) boundary.
// Used for object allocation sizes, which must be word aligned so the
// following object's header lands on a word boundary.
//
// Example:
//
//	AlignWord(1) = 4
//	AlignWord(4) = 4
//	AlignWord(5) = 8
func AlignWord(n int) int {
	return (n + WordAlignmentMask) & ^WordAlignmentMask
}

// AlignBlock returns n aligned up to the next block (4096-byte) boundary.
// Used when sizing backing memory for whole blocks.
//
// Example:
//
//	AlignBlock(1)    = 4096
//	AlignBlock(4096) = 4096
//	AlignBlock(4097) = 8192
func AlignBlock(n int) int {
	return (n + BlockAlignmentMask) & ^BlockAlignmentMask
}

// IsWordAligned reports whether n sits on a word boundary.
func IsWordAligned(n int) bool {
	return n&WordAlignmentMask == 0
}
