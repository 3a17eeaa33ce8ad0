package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/layout"
)

// Double is a view over a boxed IEEE 754 double:
//
//	uint32 header
//	8 bytes value bits
type Double struct {
	Object
}

// AllocateDouble allocates a boxed double holding v.
func (h *Heap) AllocateDouble(v float64) (Double, error) {
	obj, err := h.allocateRaw(layout.DoubleSize)
	if err != nil {
		return Double{}, err
	}
	obj.stampHeader(h.meta.DoubleClassID(), TagDouble)
	obj.putF64(layout.DoubleValueOffset, v)
	return Double{Object: obj}, nil
}

// AsDouble views an object as a boxed double.
func AsDouble(o Object) (Double, error) {
	if o.Tag() != TagDouble {
		return Double{}, fmt.Errorf("heap: %s is not a double: %w", o.Tag(), ErrWrongTag)
	}
	return Double{Object: o}, nil
}

// Value returns the boxed value.
func (d Double) Value() float64 {
	return d.readF64(layout.DoubleValueOffset)
}

// SetValue replaces the boxed value.
func (d Double) SetValue(v float64) {
	d.putF64(layout.DoubleValueOffset, v)
}

// LargeInteger is a view over a boxed 64-bit integer, the overflow box for
// values outside the small-integer range:
//
//	uint32 header
//	8 bytes two's-complement value
type LargeInteger struct {
	Object
}

// AllocateLargeInteger allocates a boxed 64-bit integer holding v. Values
// inside the small-integer range still box; callers wanting the compact
// form check FitsSmi first.
func (h *Heap) AllocateLargeInteger(v int64) (LargeInteger, error) {
	obj, err := h.allocateRaw(layout.LargeIntegerSize)
	if err != nil {
		return LargeInteger{}, err
	}
	obj.stampHeader(h.meta.LargeIntegerClassID(), TagLargeInteger)
	obj.putI64(layout.LargeIntegerValueOffset, v)
	return LargeInteger{Object: obj}, nil
}

// AsLargeInteger views an object as a boxed 64-bit integer.
func AsLargeInteger(o Object) (LargeInteger, error) {
	if o.Tag() != TagLargeInteger {
		return LargeInteger{}, fmt.Errorf("heap: %s is not a large integer: %w", o.Tag(), ErrWrongTag)
	}
	return LargeInteger{Object: o}, nil
}

// Value returns the boxed value.
func (li LargeInteger) Value() int64 {
	return li.readI64(layout.LargeIntegerValueOffset)
}

// SetValue replaces the boxed value.
func (li LargeInteger) SetValue(v int64) {
	li.putI64(layout.LargeIntegerValueOffset, v)
}
