package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/program"
)

// Image is a loaded program image: the reconstructed class table, the
// permanent store holding the object graph, and the root value.
type Image struct {
	Program *program.Program
	Store   *program.Store
	Root    heap.Word
}

// Reader decodes a program image from a byte buffer.
//
// Payloads longer than ExternalCutoff are not copied; the loaded objects
// alias the image buffer, which must therefore stay unmodified for as long
// as the returned store is in use.
type Reader struct {
	data []byte
	off  int
}

// NewReader returns a reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Read is shorthand for NewReader(data).Read().
func Read(data []byte) (*Image, error) {
	return NewReader(data).Read()
}

// Read decodes the whole image. Objects are materialized in two passes:
// the first allocates every object and records its reference, leaving
// value slots as small-integer zero placeholders; the second walks the
// fresh heap in lockstep with the decoded records and patches reference
// slots, now that every index has a reference. The finished heap migrates
// into a permanent store.
func (r *Reader) Read() (*Image, error) {
	prog, err := r.readHeader()
	if err != nil {
		return nil, err
	}

	h, err := heap.New(prog)
	if err != nil {
		return nil, err
	}
	root, err := r.readObjects(prog, h)
	if err != nil {
		_ = h.Close()
		return nil, err
	}

	store := program.NewStore(prog)
	h.MigrateTo(store)
	return &Image{Program: prog, Store: store, Root: root}, nil
}

// readHeader validates the magic and version and rebuilds the class table.
func (r *Reader) readHeader() (*program.Program, error) {
	if len(r.data) < headerSize {
		return nil, fmt.Errorf("snapshot: %d-byte image: %w", len(r.data), ErrTruncated)
	}
	if !bytes.Equal(r.data[:len(imageMagic)], imageMagic) {
		return nil, ErrInvalidMagic
	}
	if r.data[len(imageMagic)] != formatVersion {
		return nil, fmt.Errorf("snapshot: version %d: %w", r.data[len(imageMagic)], ErrUnsupportedVersion)
	}
	r.off = headerSize

	classCount, err := r.takeU32()
	if err != nil {
		return nil, err
	}
	// Each class record is at least six bytes; a count beyond that is a lie
	// about the bytes that follow.
	if int(classCount) > (len(r.data)-r.off)/6 {
		return nil, fmt.Errorf("snapshot: class count %d: %w", classCount, ErrTruncated)
	}

	prog := program.New()
	for i := 0; i < int(classCount); i++ {
		nameLen, err := r.takeU16()
		if err != nil {
			return nil, err
		}
		name, err := r.takeBytes(int(nameLen))
		if err != nil {
			return nil, err
		}
		fields, err := r.takeU32()
		if err != nil {
			return nil, err
		}
		if _, err := prog.RegisterClass(string(name), int(fields)); err != nil {
			return nil, fmt.Errorf("snapshot: class record %d: %w: %w", i, ErrBadRecord, err)
		}
	}
	return prog, nil
}

// encodedValue is a decoded but unresolved value: resolution needs the
// complete index-to-reference table, which exists only after every object
// is allocated.
type encodedValue struct {
	isRef bool
	smi   int32
	ref   uint32
}

// readObjects runs both passes and decodes the root.
func (r *Reader) readObjects(prog *program.Program, h *heap.Heap) (heap.Word, error) {
	count, err := r.takeU32()
	if err != nil {
		return 0, err
	}
	if int(count) > len(r.data)-r.off {
		return 0, fmt.Errorf("snapshot: object count %d: %w", count, ErrTruncated)
	}

	refs := make([]heap.Ref, 0, count)
	pending := make([][]encodedValue, count)
	for i := 0; i < int(count); i++ {
		obj, values, err := r.readObject(prog, h, count)
		if err != nil {
			return 0, fmt.Errorf("snapshot: object %d: %w", i, err)
		}
		refs = append(refs, obj.Ref())
		pending[i] = values
	}

	// Patch pass: revisit the objects just allocated, in the same order the
	// records were decoded, and fill the slots that had to wait for the
	// reference table.
	i := 0
	for it := h.Objects(); !it.EOS(); it.Advance() {
		if err := patchObject(it.Current(), prog, pending[i], refs); err != nil {
			return 0, fmt.Errorf("snapshot: object %d: %w", i, err)
		}
		i++
	}

	root, err := r.readValue(count)
	if err != nil {
		return 0, fmt.Errorf("snapshot: root value: %w", err)
	}
	return resolveValue(root, refs), nil
}

// readObject decodes one record and allocates it. Instances and arrays
// return their still-encoded slot values for the patch pass; every other
// kind is fully materialized here.
func (r *Reader) readObject(prog *program.Program, h *heap.Heap, count uint32) (heap.Object, []encodedValue, error) {
	kind, err := r.takeByte()
	if err != nil {
		return heap.Object{}, nil, err
	}

	switch kind {
	case recordInstance:
		rawClass, err := r.takeU32()
		if err != nil {
			return heap.Object{}, nil, err
		}
		fields, err := r.takeU32()
		if err != nil {
			return heap.Object{}, nil, err
		}
		classID := heap.ClassID(rawClass)
		if int(rawClass) >= prog.ClassCount() || prog.TypeTag(classID) != heap.TagInstance {
			return heap.Object{}, nil, fmt.Errorf("class %d: %w", rawClass, ErrBadRecord)
		}
		if int(fields) != prog.FieldCount(classID) {
			return heap.Object{}, nil, fmt.Errorf("class %q with %d fields, record has %d: %w",
				prog.ClassName(classID), prog.FieldCount(classID), fields, ErrBadRecord)
		}
		values, err := r.readValues(int(fields), count)
		if err != nil {
			return heap.Object{}, nil, err
		}
		inst, err := h.AllocateInstance(classID)
		if err != nil {
			return heap.Object{}, nil, err
		}
		return inst.Object, values, nil

	case recordArray:
		length, err := r.takeU32()
		if err != nil {
			return heap.Object{}, nil, err
		}
		if int(length) > heap.MaxArrayLength {
			return heap.Object{}, nil, fmt.Errorf("array length %d: %w", length, ErrBadRecord)
		}
		values, err := r.readValues(int(length), count)
		if err != nil {
			return heap.Object{}, nil, err
		}
		arr, err := h.AllocateArrayUnfilled(int(length))
		if err != nil {
			return heap.Object{}, nil, err
		}
		return arr.Object, values, nil

	case recordByteArray:
		length, err := r.takeU32()
		if err != nil {
			return heap.Object{}, nil, err
		}
		payload, err := r.takeBytes(int(length))
		if err != nil {
			return heap.Object{}, nil, err
		}
		if int(length) > ExternalCutoff {
			ba, err := h.AllocateExternalByteArray(int(length), payload)
			if err != nil {
				return heap.Object{}, nil, err
			}
			return ba.Object, nil, nil
		}
		ba, err := h.AllocateInternalByteArray(int(length))
		if err != nil {
			return heap.Object{}, nil, err
		}
		copy(ba.Bytes(), payload)
		return ba.Object, nil, nil

	case recordString:
		length, err := r.takeU32()
		if err != nil {
			return heap.Object{}, nil, err
		}
		payload, err := r.takeBytes(int(length) + 1)
		if err != nil {
			return heap.Object{}, nil, err
		}
		if payload[length] != 0 {
			return heap.Object{}, nil, fmt.Errorf("string missing sentinel: %w", ErrBadRecord)
		}
		if int(length) > ExternalCutoff {
			str, err := h.AllocateExternalString(int(length), payload)
			if err != nil {
				return heap.Object{}, nil, err
			}
			return str.Object, nil, nil
		}
		str, err := h.AllocateInternalString(int(length))
		if err != nil {
			return heap.Object{}, nil, err
		}
		copy(str.Bytes(), payload[:length])
		str.RecomputeHash()
		return str.Object, nil, nil

	case recordDouble:
		bits, err := r.takeU64()
		if err != nil {
			return heap.Object{}, nil, err
		}
		d, err := h.AllocateDouble(math.Float64frombits(bits))
		if err != nil {
			return heap.Object{}, nil, err
		}
		return d.Object, nil, nil

	case recordLargeInteger:
		raw, err := r.takeU64()
		if err != nil {
			return heap.Object{}, nil, err
		}
		li, err := h.AllocateLargeInteger(int64(raw))
		if err != nil {
			return heap.Object{}, nil, err
		}
		return li.Object, nil, nil

	default:
		return heap.Object{}, nil, fmt.Errorf("kind %d: %w", kind, ErrBadRecord)
	}
}

// patchObject fills the slots readObject left encoded. Objects without
// pending values pass through untouched.
func patchObject(obj heap.Object, prog *program.Program, values []encodedValue, refs []heap.Ref) error {
	if values == nil {
		return nil
	}
	switch obj.Tag() {
	case heap.TagInstance:
		inst, err := heap.AsInstance(obj, prog)
		if err != nil {
			return err
		}
		for n, v := range values {
			inst.SetField(n, resolveValue(v, refs))
		}
	case heap.TagArray:
		arr, err := heap.AsArray(obj)
		if err != nil {
			return err
		}
		for n, v := range values {
			arr.SetAt(n, resolveValue(v, refs))
		}
	}
	return nil
}

func (r *Reader) readValues(n int, count uint32) ([]encodedValue, error) {
	values := make([]encodedValue, n)
	for i := range values {
		v, err := r.readValue(count)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// readValue decodes one value, validating smi range and reference indices
// against the image's own object count.
func (r *Reader) readValue(count uint32) (encodedValue, error) {
	tag, err := r.takeByte()
	if err != nil {
		return encodedValue{}, err
	}
	raw, err := r.takeU32()
	if err != nil {
		return encodedValue{}, err
	}
	switch tag {
	case valueSmi:
		v := int32(raw)
		if !heap.FitsSmi(int64(v)) {
			return encodedValue{}, fmt.Errorf("small integer %d: %w", v, ErrBadRecord)
		}
		return encodedValue{smi: v}, nil
	case valueRef:
		if raw >= count {
			return encodedValue{}, fmt.Errorf("reference to object %d of %d: %w", raw, count, ErrBadRecord)
		}
		return encodedValue{isRef: true, ref: raw}, nil
	default:
		return encodedValue{}, fmt.Errorf("value tag %d: %w", tag, ErrBadRecord)
	}
}

func resolveValue(v encodedValue, refs []heap.Ref) heap.Word {
	if v.isRef {
		return refs[v.ref]
	}
	return heap.Smi(v.smi)
}

// Cursor-advancing primitives. Every decode failure is a truncation at a
// known offset.

func (r *Reader) takeByte() (byte, error) {
	if r.off+1 > len(r.data) {
		return 0, fmt.Errorf("snapshot: need 1 byte at offset %d: %w", r.off, ErrTruncated)
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

func (r *Reader) takeU16() (uint16, error) {
	if r.off+2 > len(r.data) {
		return 0, fmt.Errorf("snapshot: need 2 bytes at offset %d: %w", r.off, ErrTruncated)
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

func (r *Reader) takeU32() (uint32, error) {
	if r.off+4 > len(r.data) {
		return 0, fmt.Errorf("snapshot: need 4 bytes at offset %d: %w", r.off, ErrTruncated)
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *Reader) takeU64() (uint64, error) {
	if r.off+8 > len(r.data) {
		return 0, fmt.Errorf("snapshot: need 8 bytes at offset %d: %w", r.off, ErrTruncated)
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v, nil
}

// takeBytes returns n bytes aliasing the image buffer.
func (r *Reader) takeBytes(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.data) {
		return nil, fmt.Errorf("snapshot: need %d bytes at offset %d: %w", n, r.off, ErrTruncated)
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}
