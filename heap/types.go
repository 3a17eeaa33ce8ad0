package heap

import "github.com/joshuapare/heapkit/internal/layout"

// Word is a value word as stored in array slots and instance fields: either
// a tagged small integer (low bit clear) or a tagged object reference (low
// bit set).
type Word = uint32

// Ref is a tagged object-reference word. The untagged form is a heap
// address: blockIndex*BlockSize + offsetInBlock.
type Ref = uint32

// ClassID identifies an object's logical class in the program's class table.
type ClassID uint32

// TypeTag identifies the payload shape encoded in an object header.
type TypeTag uint8

const (
	TagInstance TypeTag = iota
	TagArray
	TagByteArray
	TagString
	TagDouble
	TagLargeInteger
)

// String returns the tag name for diagnostics.
func (t TypeTag) String() string {
	switch t {
	case TagInstance:
		return "instance"
	case TagArray:
		return "array"
	case TagByteArray:
		return "byte-array"
	case TagString:
		return "string"
	case TagDouble:
		return "double"
	case TagLargeInteger:
		return "large-integer"
	default:
		return "invalid"
	}
}

// AllocationResult records the outcome of the most recent block-growth
// attempt, for diagnostics.
type AllocationResult uint8

const (
	// AllocationSuccess means the last growth attempt produced a block.
	AllocationSuccess AllocationResult = iota
	// AllocationFailed means the block-memory source could not produce one.
	AllocationFailed
)

// String returns the result name for diagnostics.
func (r AllocationResult) String() string {
	switch r {
	case AllocationSuccess:
		return "success"
	case AllocationFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// Re-exported geometry so callers can pre-validate lengths without reaching
// into the layout tables.
const (
	// BlockSize is the fixed capacity of a heap block in bytes.
	BlockSize = layout.BlockSize

	// BlockPayloadSize is the usable object space in one block.
	BlockPayloadSize = layout.BlockPayloadSize

	// MaxArrayLength is the array element ceiling; arrays must fit entirely
	// within one block.
	MaxArrayLength = layout.MaxArrayLength

	// MaxInternalByteArrayLength is the inline byte-array payload ceiling.
	MaxInternalByteArrayLength = layout.MaxInternalByteArrayLength

	// MaxInternalStringLength is the inline string content ceiling.
	MaxInternalStringLength = layout.MaxInternalStringLength

	// NoHashCode marks a string whose content hash is not yet computed.
	NoHashCode = layout.NoHashCode

	// MaxSmi and MinSmi bound the tagged small-integer range; values outside
	// it box as large integers.
	MaxSmi = layout.MaxSmi
	MinSmi = layout.MinSmi
)

// ClassIndex supplies the class facts allocation and traversal need: fixed
// instance sizes, header tags, and the well-known class identities stamped
// on the built-in kinds.
//
// Implementations:
//   - program.Program: the class table built alongside a program image
type ClassIndex interface {
	// InstanceSize returns the fixed allocation size in bytes (header
	// included) for instances of the class.
	InstanceSize(id ClassID) int

	// TypeTag returns the header tag for instances of the class.
	TypeTag(id ClassID) TypeTag

	// Well-known class identities for the built-in kinds.
	ArrayClassID() ClassID
	ByteArrayClassID() ClassID
	StringClassID() ClassID
	DoubleClassID() ClassID
	LargeIntegerClassID() ClassID
}

// ProgramStore is the destination of migration: the permanent home of a
// finished program image's blocks and external payloads.
//
// Implementations:
//   - program.Store
type ProgramStore interface {
	// TakeBlocks transfers ownership of every block in list to the store,
	// leaving list empty. Block indices are preserved so references minted
	// before migration stay valid.
	TakeBlocks(list *BlockList)

	// TakeExternals transfers the external payload table, leaving it empty.
	TakeExternals(table *ExternalTable)
}

// Smi encodes v as a small-integer word. It panics when v is outside
// [MinSmi, MaxSmi]; callers converting arbitrary integers must check
// FitsSmi and box out-of-range values as large integers.
func Smi(v int32) Word {
	if !layout.FitsSmi(int64(v)) {
		panic("heap: small integer out of range")
	}
	return layout.SmiWord(v)
}

// SmiValue decodes the signed payload of a small-integer word.
func SmiValue(w Word) int32 {
	return layout.SmiValue(w)
}

// FitsSmi reports whether v is representable as a small integer.
func FitsSmi(v int64) bool {
	return layout.FitsSmi(v)
}

// IsSmi reports whether w encodes a small integer.
func IsSmi(w Word) bool {
	return layout.IsSmi(w)
}

// IsRef reports whether w encodes an object reference.
func IsRef(w Word) bool {
	return layout.IsRef(w)
}
