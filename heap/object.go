package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/layout"
)

// Object is a zero-copy view over one allocated object inside a block. An
// object looks like:
//
//	uint32 header   // tagged (class-id, type-tag) word, always smi encoded
//	...    payload  // shape selected by the type-tag
//
// The header alone determines the object's exact byte size (instances via
// class metadata), which is what lets traversals walk blocks without any
// side tables.
type Object struct {
	block *Block
	off   int
}

// IsZero reports whether the view points at nothing, the zero value used
// alongside errors.
func (o Object) IsZero() bool {
	return o.block == nil
}

// Ref returns the tagged reference word addressing this object, suitable
// for storing into array slots and instance fields.
func (o Object) Ref() Ref {
	return layout.RefWord(uint32(o.block.index*layout.BlockSize + o.off))
}

// ClassID returns the class identity stamped in the header.
func (o Object) ClassID() ClassID {
	return ClassID(layout.HeaderClassID(o.header()))
}

// Tag returns the type-tag stamped in the header.
func (o Object) Tag() TypeTag {
	return TypeTag(layout.HeaderTag(o.header()))
}

// Size returns the object's exact byte size, derived from its header.
// Instance sizes come from the class metadata; every other kind is
// self-describing. Size panics on a corrupt header, like the traversals
// built on top of it.
func (o Object) Size(meta ClassIndex) int {
	switch o.Tag() {
	case TagArray:
		size, ok := layout.ArraySize(int(o.readI32(layout.ArrayLengthOffset)))
		if !ok {
			panic(fmt.Sprintf("heap: corrupt array length at block %d offset %d", o.block.index, o.off))
		}
		return size
	case TagByteArray:
		raw := o.readI32(layout.ByteArrayLengthOffset)
		if layout.IsExternalLength(raw) {
			return layout.ExternalByteArraySize
		}
		size, ok := layout.InternalByteArraySize(int(raw))
		if !ok {
			panic(fmt.Sprintf("heap: corrupt byte-array length at block %d offset %d", o.block.index, o.off))
		}
		return size
	case TagString:
		raw := o.readI32(layout.StringLengthOffset)
		if layout.IsExternalLength(raw) {
			return layout.ExternalStringSize
		}
		size, ok := layout.InternalStringSize(int(raw))
		if !ok {
			panic(fmt.Sprintf("heap: corrupt string length at block %d offset %d", o.block.index, o.off))
		}
		return size
	case TagDouble:
		return layout.DoubleSize
	case TagLargeInteger:
		return layout.LargeIntegerSize
	case TagInstance:
		size := meta.InstanceSize(o.ClassID())
		if size < layout.HeaderSize || size > layout.BlockPayloadSize || !layout.IsWordAligned(size) {
			panic(fmt.Sprintf("heap: class %d reports invalid instance size %d", o.ClassID(), size))
		}
		return size
	default:
		panic(fmt.Sprintf("heap: corrupt type tag at block %d offset %d", o.block.index, o.off))
	}
}

// header returns the raw header word.
func (o Object) header() uint32 {
	return layout.ReadU32(o.block.data, o.off)
}

// stampHeader writes the (class-id, type-tag) header word. Allocators call
// it before an object becomes observable to any traversal.
func (o Object) stampHeader(classID ClassID, tag TypeTag) {
	layout.PutU32(o.block.data, o.off, layout.PackHeader(uint32(classID), uint8(tag)))
}

// Field-sized accessors relative to the object start.

func (o Object) readU32(rel int) uint32 {
	return layout.ReadU32(o.block.data, o.off+rel)
}

func (o Object) putU32(rel int, v uint32) {
	layout.PutU32(o.block.data, o.off+rel, v)
}

func (o Object) readI32(rel int) int32 {
	return layout.ReadI32(o.block.data, o.off+rel)
}

func (o Object) putI32(rel int, v int32) {
	layout.PutI32(o.block.data, o.off+rel, v)
}

func (o Object) readI64(rel int) int64 {
	return layout.ReadI64(o.block.data, o.off+rel)
}

func (o Object) putI64(rel int, v int64) {
	layout.PutI64(o.block.data, o.off+rel, v)
}

func (o Object) readF64(rel int) float64 {
	return layout.ReadF64(o.block.data, o.off+rel)
}

func (o Object) putF64(rel int, v float64) {
	layout.PutF64(o.block.data, o.off+rel, v)
}

// payloadBytes returns the n bytes starting at rel, bounds-checked against
// the block.
func (o Object) payloadBytes(rel, n int) []byte {
	return o.block.data[o.off+rel : o.off+rel+n]
}
