package heap

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/heapkit/internal/layout"
)

// String is a view over string content with a cached 16-bit content hash,
// in one of two shapes selected by the sign of the stored length:
//
//	internal  uint32 header; uint32 hash; int32 length >= 0; bytes; NUL
//	external  uint32 header; uint32 hash; int32 -1-length; uint32 external id
//
// Internal content carries one trailing NUL sentinel after the bytes, kept
// for legacy readers that scan for a terminator; the sentinel is not part
// of the length. External content lives in caller-owned memory and must be
// terminator-safe the same way; allocation patches the sentinel in when the
// buffer lacks one.
type String struct {
	Object
	ext []byte // caller buffer when external, nil when internal
}

// AllocateInternalString allocates a string with zeroed inline content of
// length bytes and the hash marked not-yet-computed. The caller fills the
// content afterwards; the trailing sentinel is already in place. Length
// must be within [0, MaxInternalStringLength].
func (h *Heap) AllocateInternalString(length int) (String, error) {
	size, ok := layout.InternalStringSize(length)
	if !ok {
		return String{}, fmt.Errorf("heap: internal string length %d (max %d): %w",
			length, MaxInternalStringLength, ErrLengthRange)
	}
	obj, err := h.allocateRaw(size)
	if err != nil {
		return String{}, err
	}
	obj.stampHeader(h.meta.StringClassID(), TagString)
	obj.putU32(layout.StringHashOffset, layout.NoHashCode)
	obj.putI32(layout.StringLengthOffset, int32(length))
	// Fresh block memory is zeroed, so content and sentinel already read as
	// NUL; stamping the length is what defines the payload extent.
	return String{Object: obj}, nil
}

// AllocateExternalString allocates the block-resident header of a string
// whose content is the first length bytes of mem. The memory is not copied;
// the content hash is computed immediately. The buffer must be terminator
// safe: when the byte at index length is missing or non-NUL, allocation
// patches a NUL in place, extending into spare capacity if the slice allows
// it, and reports ErrNoTerminatorRoom when the buffer physically cannot
// hold one.
func (h *Heap) AllocateExternalString(length int, mem []byte) (String, error) {
	if length < 0 || length > len(mem) {
		return String{}, fmt.Errorf("heap: external string length %d with %d-byte buffer: %w",
			length, len(mem), ErrLengthRange)
	}
	buf := mem
	if len(buf) == length {
		if cap(buf) == length {
			return String{}, fmt.Errorf("heap: external string of %d bytes: %w", length, ErrNoTerminatorRoom)
		}
		buf = buf[:length+1]
	}
	if buf[length] != 0 {
		buf[length] = 0
	}
	obj, err := h.allocateRaw(layout.ExternalStringSize)
	if err != nil {
		return String{}, err
	}
	obj.stampHeader(h.meta.StringClassID(), TagString)
	obj.putU32(layout.StringHashOffset, uint32(stringHash(buf[:length])))
	obj.putI32(layout.StringLengthOffset, layout.EncodeExternalLength(length))
	obj.putU32(layout.StringExternalIDOffset, h.externals.Register(buf))
	return String{Object: obj, ext: buf}, nil
}

// AllocateString copies s inline when it fits the internal ceiling and
// wraps a terminated copy of it externally otherwise. Either way the
// content hash is computed at creation.
func (h *Heap) AllocateString(s string) (String, error) {
	if len(s) > MaxInternalStringLength {
		buf := make([]byte, len(s)+1)
		copy(buf, s)
		return h.AllocateExternalString(len(s), buf)
	}
	str, err := h.AllocateInternalString(len(s))
	if err != nil {
		return String{}, err
	}
	copy(str.Bytes(), s)
	str.RecomputeHash()
	return str, nil
}

// AllocateStringBytes is AllocateString for raw content bytes. The external
// path wraps b without copying, so over-ceiling buffers need one spare byte
// for the sentinel.
func (h *Heap) AllocateStringBytes(b []byte) (String, error) {
	if len(b) > MaxInternalStringLength {
		return h.AllocateExternalString(len(b), b)
	}
	str, err := h.AllocateInternalString(len(b))
	if err != nil {
		return String{}, err
	}
	copy(str.Bytes(), b)
	str.RecomputeHash()
	return str, nil
}

// AsString views an object as a string, resolving an external payload
// through the owning table.
func AsString(o Object, externals *ExternalTable) (String, error) {
	if o.Tag() != TagString {
		return String{}, fmt.Errorf("heap: %s is not a string: %w", o.Tag(), ErrWrongTag)
	}
	s := String{Object: o}
	if s.IsExternal() {
		mem, ok := externals.Bytes(o.readU32(layout.StringExternalIDOffset))
		if !ok {
			return String{}, fmt.Errorf("heap: external id %d unregistered: %w",
				o.readU32(layout.StringExternalIDOffset), ErrBadRef)
		}
		s.ext = mem
	}
	return s, nil
}

// Length returns the content length in bytes, sentinel excluded.
func (s String) Length() int {
	raw := s.readI32(layout.StringLengthOffset)
	if layout.IsExternalLength(raw) {
		return layout.DecodeExternalLength(raw)
	}
	return int(raw)
}

// IsExternal reports whether the content lives in caller-owned memory.
func (s String) IsExternal() bool {
	return layout.IsExternalLength(s.readI32(layout.StringLengthOffset))
}

// Bytes returns the mutable content, sentinel excluded.
func (s String) Bytes() []byte {
	if s.IsExternal() {
		return s.ext[:s.Length()]
	}
	return s.payloadBytes(layout.StringDataOffset, s.Length())
}

// String returns the content as a Go string.
func (s String) String() string {
	return string(s.Bytes())
}

// Hash returns the cached content hash, computing and caching it first when
// the slot still holds the not-yet-computed marker.
func (s String) Hash() uint16 {
	cached := uint16(s.readU32(layout.StringHashOffset))
	if cached != layout.NoHashCode {
		return cached
	}
	return s.RecomputeHash()
}

// RecomputeHash hashes the current content and stores the result, for
// callers that filled an internal string after allocation.
func (s String) RecomputeHash() uint16 {
	h := stringHash(s.Bytes())
	s.putU32(layout.StringHashOffset, uint32(h))
	return h
}

// Equal reports whether both strings have identical content, using the
// cached hashes to reject mismatches early.
func (s String) Equal(t String) bool {
	if s.Length() != t.Length() || s.Hash() != t.Hash() {
		return false
	}
	return bytes.Equal(s.Bytes(), t.Bytes())
}

// EqualString reports whether the content equals x.
func (s String) EqualString(x string) bool {
	return s.Length() == len(x) && string(s.Bytes()) == x
}

// stringHash is the content hash cached next to the length: seeded with the
// length, folded over each byte, and clamped into uint16. A result that
// collides with the not-yet-computed marker is stored as 0.
func stringHash(content []byte) uint16 {
	h := uint16(len(content))
	for _, b := range content {
		h = 31*h + uint16(b)
	}
	if h == layout.NoHashCode {
		return 0
	}
	return h
}
