package layout

// Allocation-size formulas. Each returns the exact number of block bytes an
// object of the given kind and length occupies, word aligned, together with
// ok = false when the length is outside the kind's single-block ceiling.
// Sizes include the header word.

// ArraySize returns the allocation size of an array with length elements.
func ArraySize(length int) (int, bool) {
	if length < 0 || length > MaxArrayLength {
		return 0, false
	}
	slots, ok := mulOverflowSafe(length, ArraySlotSize)
	if !ok {
		return 0, false
	}
	size, ok := addOverflowSafe(ArraySlotsOffset, slots)
	if !ok {
		return 0, false
	}
	return size, true
}

// InternalByteArraySize returns the allocation size of a byte array with an
// inline payload of length bytes.
func InternalByteArraySize(length int) (int, bool) {
	if length < 0 || length > MaxInternalByteArrayLength {
		return 0, false
	}
	size, ok := addOverflowSafe(ByteArrayDataOffset, length)
	if !ok {
		return 0, false
	}
	return AlignWord(size), true
}

// InternalStringSize returns the allocation size of a string with inline
// content of length bytes. One extra byte holds the trailing NUL sentinel.
func InternalStringSize(length int) (int, bool) {
	if length < 0 || length > MaxInternalStringLength {
		return 0, false
	}
	size, ok := addOverflowSafe(StringDataOffset, length+1)
	if !ok {
		return 0, false
	}
	return AlignWord(size), true
}

// InstanceSize returns the allocation size of an instance with fieldCount
// value-word fields.
func InstanceSize(fieldCount int) (int, bool) {
	if fieldCount < 0 {
		return 0, false
	}
	fields, ok := mulOverflowSafe(fieldCount, WordSize)
	if !ok {
		return 0, false
	}
	size, ok := addOverflowSafe(HeaderSize, fields)
	if !ok || size > BlockPayloadSize {
		return 0, false
	}
	return size, true
}
