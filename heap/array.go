package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/layout"
)

// Array is a view over a length-prefixed sequence of value words.
//
//	uint32 header
//	int32  length   // >= 0
//	uint32 slots[length]
//
// Arrays always fit within one block; the loader never needs larger ones.
type Array struct {
	Object
}

// AllocateArray allocates an array of length elements with every slot set
// to filler. Length must be within [0, MaxArrayLength].
func (h *Heap) AllocateArray(length int, filler Word) (Array, error) {
	arr, err := h.AllocateArrayUnfilled(length)
	if err != nil {
		return Array{}, err
	}
	arr.Fill(filler)
	return arr, nil
}

// AllocateArrayUnfilled allocates an array of length elements, leaving the
// slots for the caller's subsequent initialization. Fresh block memory
// reads as small integer 0 until then.
func (h *Heap) AllocateArrayUnfilled(length int) (Array, error) {
	size, ok := layout.ArraySize(length)
	if !ok {
		return Array{}, fmt.Errorf("heap: array length %d (max %d): %w", length, MaxArrayLength, ErrLengthRange)
	}
	obj, err := h.allocateRaw(size)
	if err != nil {
		return Array{}, err
	}
	obj.stampHeader(h.meta.ArrayClassID(), TagArray)
	obj.putI32(layout.ArrayLengthOffset, int32(length))
	return Array{Object: obj}, nil
}

// AsArray views an object as an array.
func AsArray(o Object) (Array, error) {
	if o.Tag() != TagArray {
		return Array{}, fmt.Errorf("heap: %s is not an array: %w", o.Tag(), ErrWrongTag)
	}
	return Array{Object: o}, nil
}

// Length returns the element count.
func (a Array) Length() int {
	return int(a.readI32(layout.ArrayLengthOffset))
}

// At returns element n. It panics when n is out of range, like an index
// expression.
func (a Array) At(n int) Word {
	a.check(n)
	return a.readU32(layout.ArraySlotsOffset + n*layout.ArraySlotSize)
}

// SetAt stores w into element n. It panics when n is out of range.
func (a Array) SetAt(n int, w Word) {
	a.check(n)
	a.putU32(layout.ArraySlotsOffset+n*layout.ArraySlotSize, w)
}

// Fill sets every element to w.
func (a Array) Fill(w Word) {
	length := a.Length()
	for n := 0; n < length; n++ {
		a.putU32(layout.ArraySlotsOffset+n*layout.ArraySlotSize, w)
	}
}

func (a Array) check(n int) {
	if n < 0 || n >= a.Length() {
		panic(fmt.Sprintf("heap: array index %d out of range [0,%d)", n, a.Length()))
	}
}
