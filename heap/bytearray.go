package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/layout"
)

// ByteArray is a view over raw byte content in one of two shapes selected
// by the sign of the stored length:
//
//	internal  uint32 header; int32 length >= 0; payload bytes
//	external  uint32 header; int32 -1-length; uint32 external id; uint32 external tag
//
// Internal payloads live inline after the header, bounded by one block's
// capacity. External payloads live in caller-owned memory registered with
// the heap; the block holds only the small fixed header, and the bytes are
// never copied.
type ByteArray struct {
	Object
	ext []byte // caller buffer when external, nil when internal
}

// AllocateInternalByteArray allocates a byte array with an inline zeroed
// payload of length bytes. Length must be within
// [0, MaxInternalByteArrayLength].
func (h *Heap) AllocateInternalByteArray(length int) (ByteArray, error) {
	size, ok := layout.InternalByteArraySize(length)
	if !ok {
		return ByteArray{}, fmt.Errorf("heap: internal byte-array length %d (max %d): %w",
			length, MaxInternalByteArrayLength, ErrLengthRange)
	}
	obj, err := h.allocateRaw(size)
	if err != nil {
		return ByteArray{}, err
	}
	obj.stampHeader(h.meta.ByteArrayClassID(), TagByteArray)
	obj.putI32(layout.ByteArrayLengthOffset, int32(length))
	return ByteArray{Object: obj}, nil
}

// AllocateExternalByteArray allocates the block-resident header of a byte
// array whose payload is the first length bytes of mem. The memory is not
// copied and not owned by the heap; ownership semantics stay with the
// caller.
func (h *Heap) AllocateExternalByteArray(length int, mem []byte) (ByteArray, error) {
	if length < 0 || length > len(mem) {
		return ByteArray{}, fmt.Errorf("heap: external byte-array length %d with %d-byte buffer: %w",
			length, len(mem), ErrLengthRange)
	}
	obj, err := h.allocateRaw(layout.ExternalByteArraySize)
	if err != nil {
		return ByteArray{}, err
	}
	obj.stampHeader(h.meta.ByteArrayClassID(), TagByteArray)
	obj.putI32(layout.ByteArrayLengthOffset, layout.EncodeExternalLength(length))
	obj.putU32(layout.ByteArrayExternalIDOffset, h.externals.Register(mem))
	obj.putU32(layout.ByteArrayExternalTagOffset, layout.RawByteTag)
	return ByteArray{Object: obj, ext: mem}, nil
}

// AllocateByteArray copies data inline when it fits the internal ceiling
// and wraps it externally otherwise. The external path aliases data rather
// than copying it.
func (h *Heap) AllocateByteArray(data []byte) (ByteArray, error) {
	if len(data) > MaxInternalByteArrayLength {
		return h.AllocateExternalByteArray(len(data), data)
	}
	ba, err := h.AllocateInternalByteArray(len(data))
	if err != nil {
		return ByteArray{}, err
	}
	copy(ba.Bytes(), data)
	return ba, nil
}

// AsByteArray views an object as a byte array, resolving an external
// payload through the owning table.
func AsByteArray(o Object, externals *ExternalTable) (ByteArray, error) {
	if o.Tag() != TagByteArray {
		return ByteArray{}, fmt.Errorf("heap: %s is not a byte array: %w", o.Tag(), ErrWrongTag)
	}
	ba := ByteArray{Object: o}
	if ba.IsExternal() {
		mem, ok := externals.Bytes(o.readU32(layout.ByteArrayExternalIDOffset))
		if !ok {
			return ByteArray{}, fmt.Errorf("heap: external id %d unregistered: %w",
				o.readU32(layout.ByteArrayExternalIDOffset), ErrBadRef)
		}
		ba.ext = mem
	}
	return ba, nil
}

// Length returns the payload length in bytes.
func (b ByteArray) Length() int {
	raw := b.readI32(layout.ByteArrayLengthOffset)
	if layout.IsExternalLength(raw) {
		return layout.DecodeExternalLength(raw)
	}
	return int(raw)
}

// IsExternal reports whether the payload lives in caller-owned memory.
func (b ByteArray) IsExternal() bool {
	return layout.IsExternalLength(b.readI32(layout.ByteArrayLengthOffset))
}

// Bytes returns the mutable payload. For internal byte arrays this is the
// inline block region; for external ones it aliases the caller's buffer.
func (b ByteArray) Bytes() []byte {
	if b.IsExternal() {
		return b.ext[:b.Length()]
	}
	return b.payloadBytes(layout.ByteArrayDataOffset, b.Length())
}

// ExternalTag returns the payload tag of an external byte array; this heap
// only ever stamps raw bytes.
func (b ByteArray) ExternalTag() uint32 {
	return b.readU32(layout.ByteArrayExternalTagOffset)
}
