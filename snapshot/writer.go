package snapshot

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/program"
)

// ImageSource is the object surface a writer serializes: a heap still being
// built, or a permanent store after migration. Both expose the same
// allocation-order walk and external payload table.
type ImageSource interface {
	Objects() *heap.Iterator
	Externals() *heap.ExternalTable
}

// Writer serializes a program image: the class table, every object in
// allocation order, and the root value. Reference words are rewritten as
// image-order object indices, so the produced image is position
// independent.
type Writer struct {
	prog *program.Program
	src  ImageSource
}

// NewWriter returns a writer over the program's class table and object
// source.
func NewWriter(prog *program.Program, src ImageSource) *Writer {
	return &Writer{prog: prog, src: src}
}

// Write serializes one complete image to w with root as the image's root
// value (a small integer or a reference to one of the source's objects).
func Write(w io.Writer, prog *program.Program, src ImageSource, root heap.Word) error {
	return NewWriter(prog, src).Write(w, root)
}

// Write emits the image to w. The source must not gain objects between the
// indexing walk and the record walk, which holds for any single-goroutine
// caller.
func (wr *Writer) Write(w io.Writer, root heap.Word) error {
	refs := wr.indexRefs()

	buf := make([]byte, 0, 1024)
	buf = append(buf, imageMagic...)
	buf = append(buf, formatVersion)
	buf = wr.appendClassTable(buf)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(refs)))
	var err error
	for it := wr.src.Objects(); !it.EOS(); it.Advance() {
		if buf, err = wr.appendObject(buf, it.Current(), refs); err != nil {
			return err
		}
	}

	if buf, err = appendValue(buf, root, refs); err != nil {
		return fmt.Errorf("snapshot: root value: %w", err)
	}

	_, err = w.Write(buf)
	return err
}

// indexRefs maps every object's reference to its image-order index.
func (wr *Writer) indexRefs() map[heap.Ref]uint32 {
	refs := make(map[heap.Ref]uint32)
	for it := wr.src.Objects(); !it.EOS(); it.Advance() {
		refs[it.Current().Ref()] = uint32(len(refs))
	}
	return refs
}

// appendClassTable emits the instance classes in registration order. The
// built-in kinds are fixed in every program, so only registered classes
// travel.
func (wr *Writer) appendClassTable(buf []byte) []byte {
	var ids []heap.ClassID
	for id := heap.ClassID(0); int(id) < wr.prog.ClassCount(); id++ {
		if wr.prog.TypeTag(id) == heap.TagInstance {
			ids = append(ids, id)
		}
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(ids)))
	for _, id := range ids {
		name := wr.prog.ClassName(id)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(name)))
		buf = append(buf, name...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(wr.prog.FieldCount(id)))
	}
	return buf
}

func (wr *Writer) appendObject(buf []byte, obj heap.Object, refs map[heap.Ref]uint32) ([]byte, error) {
	switch obj.Tag() {
	case heap.TagInstance:
		inst, err := heap.AsInstance(obj, wr.prog)
		if err != nil {
			return nil, err
		}
		buf = append(buf, recordInstance)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(inst.ClassID()))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(inst.FieldCount()))
		fields := inst.FieldCount()
		for i := 0; i < fields; i++ {
			if buf, err = appendValue(buf, inst.Field(i), refs); err != nil {
				return nil, fmt.Errorf("snapshot: instance field %d: %w", i, err)
			}
		}
		return buf, nil

	case heap.TagArray:
		arr, err := heap.AsArray(obj)
		if err != nil {
			return nil, err
		}
		buf = append(buf, recordArray)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(arr.Length()))
		length := arr.Length()
		for i := 0; i < length; i++ {
			if buf, err = appendValue(buf, arr.At(i), refs); err != nil {
				return nil, fmt.Errorf("snapshot: array slot %d: %w", i, err)
			}
		}
		return buf, nil

	case heap.TagByteArray:
		ba, err := heap.AsByteArray(obj, wr.src.Externals())
		if err != nil {
			return nil, err
		}
		buf = append(buf, recordByteArray)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(ba.Length()))
		return append(buf, ba.Bytes()...), nil

	case heap.TagString:
		str, err := heap.AsString(obj, wr.src.Externals())
		if err != nil {
			return nil, err
		}
		buf = append(buf, recordString)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(str.Length()))
		buf = append(buf, str.Bytes()...)
		// The sentinel travels with the content so external loads can alias
		// the image bytes without patching them.
		return append(buf, 0), nil

	case heap.TagDouble:
		d, err := heap.AsDouble(obj)
		if err != nil {
			return nil, err
		}
		buf = append(buf, recordDouble)
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(d.Value())), nil

	case heap.TagLargeInteger:
		li, err := heap.AsLargeInteger(obj)
		if err != nil {
			return nil, err
		}
		buf = append(buf, recordLargeInteger)
		return binary.LittleEndian.AppendUint64(buf, uint64(li.Value())), nil

	default:
		return nil, fmt.Errorf("snapshot: object with tag %s: %w", obj.Tag(), ErrBadRecord)
	}
}

// appendValue encodes one value word: small integers travel as their signed
// payload, references as the image index of their referent.
func appendValue(buf []byte, w heap.Word, refs map[heap.Ref]uint32) ([]byte, error) {
	if heap.IsSmi(w) {
		buf = append(buf, valueSmi)
		return binary.LittleEndian.AppendUint32(buf, uint32(heap.SmiValue(w))), nil
	}
	idx, ok := refs[w]
	if !ok {
		return nil, fmt.Errorf("reference %#x: %w", w, ErrDanglingReference)
	}
	buf = append(buf, valueRef)
	return binary.LittleEndian.AppendUint32(buf, idx), nil
}
