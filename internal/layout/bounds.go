package layout

import "math"

// Overflow-safe arithmetic for size computations. Lengths reaching the size
// formulas may come straight from untrusted image bytes, so count*elementSize
// and base+payload math must never wrap before the range checks run.

// addOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func addOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// mulOverflowSafe multiplies non-negative a and b, returning ok = false when
// the result would overflow int. This is essential for count * elementSize
// calculations when decoding length fields.
func mulOverflowSafe(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}
