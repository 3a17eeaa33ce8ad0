package layout

// Tagged word encode/decode. See the encoding tables in consts.go.

// IsSmi reports whether the value word encodes a small integer.
func IsSmi(w uint32) bool {
	return w&SmiTagMask == 0
}

// IsRef reports whether the value word encodes a heap reference.
func IsRef(w uint32) bool {
	return w&SmiTagMask != 0
}

// SmiWord encodes v as a small-integer word. Callers validate the
// [MinSmi, MaxSmi] range; out-of-range values must box instead.
func SmiWord(v int32) uint32 {
	return uint32(v) << SmiShift
}

// SmiValue decodes the signed payload of a small-integer word.
// The arithmetic shift restores the sign bit.
func SmiValue(w uint32) int32 {
	return int32(w) >> SmiShift
}

// FitsSmi reports whether v is representable as a small integer.
func FitsSmi(v int64) bool {
	return v >= MinSmi && v <= MaxSmi
}

// RefWord encodes a heap address as a reference word. Addresses are word
// aligned, so the tag bit is always free.
func RefWord(addr uint32) uint32 {
	return addr | SmiTagMask
}

// RefAddress decodes the heap address of a reference word.
func RefAddress(w uint32) uint32 {
	return w &^ SmiTagMask
}

// PackHeader builds the header word for an object of the given class and
// type-tag. The result is small-integer tagged; a traversal finding a set
// low bit in a header slot is looking at corruption.
func PackHeader(classID uint32, tag uint8) uint32 {
	return SmiWord(int32(classID<<HeaderTagBits | uint32(tag)&HeaderTagMask))
}

// HeaderClassID extracts the class identity from a header word.
func HeaderClassID(w uint32) uint32 {
	return uint32(SmiValue(w)) >> HeaderTagBits
}

// HeaderTag extracts the type-tag from a header word.
func HeaderTag(w uint32) uint8 {
	return uint8(SmiValue(w)) & HeaderTagMask
}

// EncodeExternalLength stores a payload length in the external shape's
// length field. External variants are marked by a negative stored value:
// length n encodes as -1-n, so 0 maps to -1 and the sign alone
// distinguishes the shapes.
func EncodeExternalLength(n int) int32 {
	return int32(-1 - n)
}

// DecodeExternalLength recovers the payload length from a negative stored
// length field.
func DecodeExternalLength(raw int32) int {
	return int(-1 - raw)
}

// IsExternalLength reports whether a stored length field marks the external
// shape.
func IsExternalLength(raw int32) bool {
	return raw < 0
}
