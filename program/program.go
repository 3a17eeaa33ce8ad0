// Package program carries the metadata half of a program image: the class
// table consulted during allocation and traversal, and the permanent store
// that receives a heap's blocks once loading succeeds.
package program

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/layout"
)

// Built-in class identities, fixed for every program. Compiler-declared
// instance classes are registered after them.
const (
	ArrayClass heap.ClassID = iota
	ByteArrayClass
	StringClass
	DoubleClass
	LargeIntegerClass

	builtinClassCount = iota
)

type classInfo struct {
	name   string
	fields int
	tag    heap.TypeTag
}

// Program is the class table built alongside a program image. The five
// built-in kinds are pre-registered under fixed identities; instance classes
// are appended with RegisterClass and identified by registration order.
//
// It implements heap.ClassIndex, so a Program is what a Heap is constructed
// over.
type Program struct {
	classes []classInfo
}

// New returns a class table holding only the built-in kinds.
func New() *Program {
	return &Program{classes: []classInfo{
		{name: "Array", tag: heap.TagArray},
		{name: "ByteArray", tag: heap.TagByteArray},
		{name: "String", tag: heap.TagString},
		{name: "Double", tag: heap.TagDouble},
		{name: "LargeInteger", tag: heap.TagLargeInteger},
	}}
}

// RegisterClass adds an instance class with fieldCount value-word fields and
// returns its identity. The class's instances must fit a single block, which
// bounds the field count.
func (p *Program) RegisterClass(name string, fieldCount int) (heap.ClassID, error) {
	if _, ok := layout.InstanceSize(fieldCount); !ok {
		return 0, fmt.Errorf("program: class %q with %d fields: %w", name, fieldCount, ErrFieldCount)
	}
	if len(p.classes) > layout.MaxClassID {
		return 0, fmt.Errorf("program: registering class %q: %w", name, ErrClassTableFull)
	}
	p.classes = append(p.classes, classInfo{name: name, fields: fieldCount, tag: heap.TagInstance})
	return heap.ClassID(len(p.classes) - 1), nil
}

// ClassCount returns the number of registered classes, built-ins included.
func (p *Program) ClassCount() int {
	return len(p.classes)
}

// ClassName returns the class's registered name, or "" for an unknown id.
func (p *Program) ClassName(id heap.ClassID) string {
	if int(id) >= len(p.classes) {
		return ""
	}
	return p.classes[id].name
}

// FieldCount returns the number of value-word fields of an instance class.
// Built-in and unknown ids report zero.
func (p *Program) FieldCount(id heap.ClassID) int {
	if int(id) >= len(p.classes) {
		return 0
	}
	return p.classes[id].fields
}

// InstanceSize returns the fixed allocation size in bytes for instances of
// the class, or zero when id is not an instance class.
func (p *Program) InstanceSize(id heap.ClassID) int {
	if int(id) >= len(p.classes) || p.classes[id].tag != heap.TagInstance {
		return 0
	}
	size, _ := layout.InstanceSize(p.classes[id].fields)
	return size
}

// TypeTag returns the header tag stamped on objects of the class. Unknown
// ids report TagInstance and fail later at allocation, where the zero
// instance size is rejected.
func (p *Program) TypeTag(id heap.ClassID) heap.TypeTag {
	if int(id) >= len(p.classes) {
		return heap.TagInstance
	}
	return p.classes[id].tag
}

func (p *Program) ArrayClassID() heap.ClassID        { return ArrayClass }
func (p *Program) ByteArrayClassID() heap.ClassID    { return ByteArrayClass }
func (p *Program) StringClassID() heap.ClassID       { return StringClass }
func (p *Program) DoubleClassID() heap.ClassID       { return DoubleClass }
func (p *Program) LargeIntegerClassID() heap.ClassID { return LargeIntegerClass }

var _ heap.ClassIndex = (*Program)(nil)
