package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAllocateInstance_MatchesClassMetadata tests that the allocated object
// reports exactly the class identity and byte size the class table declares.
func TestAllocateInstance_MatchesClassMetadata(t *testing.T) {
	h := newTestHeap(t)
	meta := testClassIndex{}

	for _, id := range []ClassID{testPointClass, testTaskClass} {
		inst, err := h.AllocateInstance(id)
		require.NoError(t, err, "class %d", id)

		assert.Equal(t, id, inst.ClassID())
		assert.Equal(t, TagInstance, inst.Tag())
		assert.Equal(t, meta.InstanceSize(id), inst.Size(meta), "reported size must match the declared size")
	}
}

// TestAllocateInstance_FieldsReadSmiZero tests that untouched fields of a
// fresh instance read as small integer zero.
func TestAllocateInstance_FieldsReadSmiZero(t *testing.T) {
	h := newTestHeap(t)

	inst, err := h.AllocateInstance(testTaskClass)
	require.NoError(t, err)

	require.Equal(t, 5, inst.FieldCount())
	fields := inst.FieldCount()
	for n := 0; n < fields; n++ {
		w := inst.Field(n)
		assert.True(t, IsSmi(w), "field %d should read as a small integer", n)
		assert.Equal(t, int32(0), SmiValue(w))
	}
}

// TestInstance_FieldRoundtrip tests storing small integers and references
// into fields.
func TestInstance_FieldRoundtrip(t *testing.T) {
	h := newTestHeap(t)

	inst, err := h.AllocateInstance(testPointClass)
	require.NoError(t, err)
	str, err := h.AllocateString("origin")
	require.NoError(t, err)

	inst.SetField(0, Smi(-17))
	inst.SetField(1, str.Ref())

	assert.Equal(t, int32(-17), SmiValue(inst.Field(0)))
	require.True(t, IsRef(inst.Field(1)))

	target, err := h.ObjectAt(inst.Field(1))
	require.NoError(t, err)
	got, err := AsString(target, h.Externals())
	require.NoError(t, err)
	assert.Equal(t, "origin", got.String())
}

// TestAllocateInstance_RejectsNonInstanceClass tests that built-in kind ids
// cannot be allocated as instances.
func TestAllocateInstance_RejectsNonInstanceClass(t *testing.T) {
	h := newTestHeap(t)

	_, err := h.AllocateInstance(testArrayClass)
	assert.ErrorIs(t, err, ErrWrongTag)

	_, err = h.AllocateInstance(testStringClass)
	assert.ErrorIs(t, err, ErrWrongTag)
}

// TestInstance_FieldRangePanics tests that out-of-range field access panics
// like an index expression.
func TestInstance_FieldRangePanics(t *testing.T) {
	h := newTestHeap(t)

	inst, err := h.AllocateInstance(testPointClass)
	require.NoError(t, err)

	assert.Panics(t, func() { inst.Field(2) })
	assert.Panics(t, func() { inst.Field(-1) })
	assert.Panics(t, func() { inst.SetField(2, Smi(0)) })
}

// TestAsInstance_ChecksTag tests the typed downcast.
func TestAsInstance_ChecksTag(t *testing.T) {
	h := newTestHeap(t)

	inst, err := h.AllocateInstance(testPointClass)
	require.NoError(t, err)
	arr, err := h.AllocateArray(1, Smi(0))
	require.NoError(t, err)

	got, err := AsInstance(inst.Object, testClassIndex{})
	require.NoError(t, err)
	assert.Equal(t, 2, got.FieldCount())

	_, err = AsInstance(arr.Object, testClassIndex{})
	assert.ErrorIs(t, err, ErrWrongTag)
}
