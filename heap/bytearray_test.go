package heap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAllocateByteArray_InternalReadback tests that inline payloads
// reproduce the input exactly.
func TestAllocateByteArray_InternalReadback(t *testing.T) {
	h := newTestHeap(t)

	data := bytes.Repeat([]byte{0xAB, 0x01, 0xFF}, 100)
	ba, err := h.AllocateByteArray(data)
	require.NoError(t, err)

	assert.False(t, ba.IsExternal(), "payload within the ceiling stays inline")
	assert.Equal(t, len(data), ba.Length())
	assert.Equal(t, data, ba.Bytes())

	// Inline means copied: mutating the input must not reach the heap.
	data[0] = 0x00
	assert.Equal(t, byte(0xAB), ba.Bytes()[0])
}

// TestAllocateByteArray_ExternalReadback tests that payloads above the
// ceiling read back exactly through the external path.
func TestAllocateByteArray_ExternalReadback(t *testing.T) {
	h := newTestHeap(t)

	data := make([]byte, MaxInternalByteArrayLength+100)
	for i := range data {
		data[i] = byte(i * 7)
	}
	ba, err := h.AllocateByteArray(data)
	require.NoError(t, err)

	assert.True(t, ba.IsExternal(), "payload above the ceiling goes external")
	assert.Equal(t, len(data), ba.Length())
	assert.Equal(t, data, ba.Bytes())
	assert.Equal(t, uint32(0), ba.ExternalTag(), "heap-built external payloads are raw bytes")
}

// TestAllocateByteArray_ExternalAliasesCaller tests that the external path
// wraps the caller's buffer instead of copying it.
func TestAllocateByteArray_ExternalAliasesCaller(t *testing.T) {
	h := newTestHeap(t)

	data := make([]byte, MaxInternalByteArrayLength+1)
	ba, err := h.AllocateByteArray(data)
	require.NoError(t, err)
	require.True(t, ba.IsExternal())

	data[42] = 0xEE
	assert.Equal(t, byte(0xEE), ba.Bytes()[42], "view and caller share the backing array")

	ba.Bytes()[43] = 0xDD
	assert.Equal(t, byte(0xDD), data[43])
}

// TestAllocateInternalByteArray_CeilingEnforced tests the inline ceiling,
// inclusive bound and rejection.
func TestAllocateInternalByteArray_CeilingEnforced(t *testing.T) {
	h := newTestHeap(t)

	ba, err := h.AllocateInternalByteArray(MaxInternalByteArrayLength)
	require.NoError(t, err)
	assert.Equal(t, MaxInternalByteArrayLength, ba.Length())

	_, err = h.AllocateInternalByteArray(MaxInternalByteArrayLength + 1)
	assert.ErrorIs(t, err, ErrLengthRange)
	_, err = h.AllocateInternalByteArray(-1)
	assert.ErrorIs(t, err, ErrLengthRange)
}

// TestAllocateExternalByteArray_LengthValidated tests that the declared
// length cannot exceed the provided buffer.
func TestAllocateExternalByteArray_LengthValidated(t *testing.T) {
	h := newTestHeap(t)

	buf := make([]byte, 16)
	_, err := h.AllocateExternalByteArray(17, buf)
	assert.ErrorIs(t, err, ErrLengthRange)
	_, err = h.AllocateExternalByteArray(-1, buf)
	assert.ErrorIs(t, err, ErrLengthRange)

	ba, err := h.AllocateExternalByteArray(10, buf)
	require.NoError(t, err)
	assert.Equal(t, 10, ba.Length(), "a shorter declared length views a prefix")
	assert.Len(t, ba.Bytes(), 10)
}

// TestAllocateExternalByteArray_HeaderCostOnly tests that only the small
// block-resident header hits the allocation accounting.
func TestAllocateExternalByteArray_HeaderCostOnly(t *testing.T) {
	h := newTestHeap(t)

	before := h.TotalBytesAllocated()
	buf := make([]byte, 100_000)
	_, err := h.AllocateExternalByteArray(len(buf), buf)
	require.NoError(t, err)

	assert.Equal(t, int64(16), h.TotalBytesAllocated()-before,
		"external payload bytes never count against the heap")
	assert.Equal(t, 1, h.Externals().Len())
}

// TestAsByteArray_ResolvesThroughTable tests the typed downcast for both
// shapes, including the unregistered-id failure.
func TestAsByteArray_ResolvesThroughTable(t *testing.T) {
	h := newTestHeap(t)

	internal, err := h.AllocateByteArray([]byte{1, 2, 3})
	require.NoError(t, err)
	external, err := h.AllocateExternalByteArray(4, []byte{9, 8, 7, 6})
	require.NoError(t, err)

	got, err := AsByteArray(internal.Object, h.Externals())
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got.Bytes())

	got, err = AsByteArray(external.Object, h.Externals())
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8, 7, 6}, got.Bytes())

	var empty ExternalTable
	_, err = AsByteArray(external.Object, &empty)
	assert.ErrorIs(t, err, ErrBadRef, "resolving against the wrong table must fail")

	arr, err := h.AllocateArray(1, Smi(0))
	require.NoError(t, err)
	_, err = AsByteArray(arr.Object, h.Externals())
	assert.ErrorIs(t, err, ErrWrongTag)
}
