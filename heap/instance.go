package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/layout"
)

// Instance is a view over a class instance: a header followed by a fixed
// number of value-word fields determined by class metadata.
//
//	uint32 header
//	uint32 fields[n]
type Instance struct {
	Object
	fields int
}

// AllocateInstance allocates an instance of the class, stamping its header
// with the class identity and the tag the metadata declares. Fields are
// left for the loader to fill; fresh block memory reads as small integer 0
// until then.
func (h *Heap) AllocateInstance(classID ClassID) (Instance, error) {
	if h.meta.TypeTag(classID) != TagInstance {
		return Instance{}, fmt.Errorf("heap: class %d is not an instance class: %w", classID, ErrWrongTag)
	}
	size := h.meta.InstanceSize(classID)
	if size < layout.HeaderSize || !layout.IsWordAligned(size) {
		return Instance{}, fmt.Errorf("heap: class %d declares instance size %d: %w", classID, size, ErrObjectTooLarge)
	}
	obj, err := h.allocateRaw(size)
	if err != nil {
		return Instance{}, err
	}
	obj.stampHeader(classID, TagInstance)
	return Instance{Object: obj, fields: (size - layout.HeaderSize) / layout.WordSize}, nil
}

// AsInstance views an object as an instance, deriving the field count from
// the class metadata.
func AsInstance(o Object, meta ClassIndex) (Instance, error) {
	if o.Tag() != TagInstance {
		return Instance{}, fmt.Errorf("heap: %s is not an instance: %w", o.Tag(), ErrWrongTag)
	}
	return Instance{Object: o, fields: (o.Size(meta) - layout.HeaderSize) / layout.WordSize}, nil
}

// FieldCount returns the number of value-word fields.
func (i Instance) FieldCount() int {
	return i.fields
}

// Field returns field n. It panics when n is out of range, like an index
// expression.
func (i Instance) Field(n int) Word {
	i.check(n)
	return i.readU32(layout.HeaderSize + n*layout.WordSize)
}

// SetField stores w into field n. It panics when n is out of range.
func (i Instance) SetField(n int, w Word) {
	i.check(n)
	i.putU32(layout.HeaderSize+n*layout.WordSize, w)
}

func (i Instance) check(n int) {
	if n < 0 || n >= i.fields {
		panic(fmt.Sprintf("heap: instance field %d out of range [0,%d)", n, i.fields))
	}
}
