package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// ============================================================================
// Class Table Utilities
// ============================================================================

// Test class identities. The five built-in kinds get fixed ids; the rest are
// instance classes with known field counts.
const (
	testArrayClass        ClassID = 1
	testByteArrayClass    ClassID = 2
	testStringClass       ClassID = 3
	testDoubleClass       ClassID = 4
	testLargeIntegerClass ClassID = 5
	testPointClass        ClassID = 6 // 2 fields
	testTaskClass         ClassID = 7 // 5 fields
)

// testClassIndex is a fixed class table serving the tests: the built-in
// kinds plus two instance classes with declared sizes.
type testClassIndex struct{}

func (testClassIndex) InstanceSize(id ClassID) int {
	switch id {
	case testPointClass:
		return 4 + 2*4
	case testTaskClass:
		return 4 + 5*4
	default:
		return 0
	}
}

func (testClassIndex) TypeTag(id ClassID) TypeTag {
	switch id {
	case testArrayClass:
		return TagArray
	case testByteArrayClass:
		return TagByteArray
	case testStringClass:
		return TagString
	case testDoubleClass:
		return TagDouble
	case testLargeIntegerClass:
		return TagLargeInteger
	default:
		return TagInstance
	}
}

func (testClassIndex) ArrayClassID() ClassID        { return testArrayClass }
func (testClassIndex) ByteArrayClassID() ClassID    { return testByteArrayClass }
func (testClassIndex) StringClassID() ClassID       { return testStringClass }
func (testClassIndex) DoubleClassID() ClassID       { return testDoubleClass }
func (testClassIndex) LargeIntegerClassID() ClassID { return testLargeIntegerClass }

// ============================================================================
// Heap Creation Utilities
// ============================================================================

// newTestHeap creates a heap over the fixed test class table, closed on
// test cleanup.
func newTestHeap(t testing.TB) *Heap {
	t.Helper()

	h, err := New(testClassIndex{})
	require.NoError(t, err, "failed to create test heap")

	t.Cleanup(func() { _ = h.Close() })

	return h
}

// fillBlockTail allocates internal byte arrays until less than want bytes
// remain free in the current last block, so the next allocation of want
// bytes must append a block. want must be word aligned and at least 8; the
// block count is unchanged on return.
func fillBlockTail(t testing.TB, h *Heap, want int) {
	t.Helper()

	blocks := h.BlockCount()
	for {
		free := BlockPayloadSize - h.blocks.Last().PayloadSize()
		if free < want {
			break
		}
		// Aim to leave a sliver smaller than want. A zero-length byte array
		// still takes 8 bytes of header+length.
		size := free - want + 4
		if size < 8 {
			size = 8
		}
		if size > 8+MaxInternalByteArrayLength {
			size = 8 + MaxInternalByteArrayLength
		}
		_, err := h.AllocateInternalByteArray(size - 8)
		require.NoError(t, err, "filling block tail")
	}
	require.Equal(t, blocks, h.BlockCount(), "tail fill must not grow the heap")
}
