// Package layout houses the binary layout of program-heap blocks and the
// objects inside them. The goal is to keep every offset, size formula, and
// word-encoding rule in one place, allocation-free and independent from the
// public API, so higher-level packages can orchestrate the data in a more
// ergonomic form.
//
// All multi-byte fields are little-endian 32-bit words. Objects are laid out
// contiguously inside fixed-capacity blocks so that an object's exact byte
// size is always computable from its header word alone.
package layout

// BlockSignature is the four-byte signature at the start of every heap block.
// Layout (little-endian):
//
//	0x00  'h' 'b' 'l' 'k'
var BlockSignature = []byte{'h', 'b', 'l', 'k'}

const (
	// WordSize is the size of a heap word in bytes. The heap targets 32-bit
	// images; references and small integers are packed into one word.
	WordSize = 4

	// HeaderSize is the size of the object header preceding every object's
	// payload. A single tagged word.
	HeaderSize = WordSize

	// BlockSize is the fixed capacity of a heap block in bytes. Blocks are
	// page-sized and never resized after creation.
	BlockSize = 4096

	// BlockHeaderSize is the size of the block header in bytes. Objects start
	// after it.
	BlockHeaderSize = 0x20

	// BlockPayloadSize is the usable object space in a block (total size
	// minus header).
	BlockPayloadSize = BlockSize - BlockHeaderSize // 4064 bytes

	// WordAlignment is the required alignment of objects within a block.
	WordAlignment = WordSize

	// WordAlignmentMask is the bitmask used for aligning to word boundaries
	// (WordAlignment - 1).
	WordAlignmentMask = WordAlignment - 1

	// BlockAlignment is the alignment of block capacities. Block-relative
	// addressing relies on BlockSize being a power of two.
	BlockAlignment = BlockSize

	// BlockAlignmentMask is the bitmask used for aligning to block boundaries
	// (BlockAlignment - 1).
	BlockAlignmentMask = BlockAlignment - 1

	// Block header field offsets.
	BlockSignatureOffset = 0x00 // 4 bytes, "hblk"
	BlockSignatureSize   = 4
	BlockIndexOffset     = 0x04 // uint32, position of the block in its list
	BlockSizeOffset      = 0x08 // uint32, capacity echo (always BlockSize)
)

// ============================================================================
// Header Word Encoding
// ============================================================================
//
// Every object starts with one header word packing (class-id, type-tag). The
// word is stored small-integer tagged (low bit clear) so a traversal can tell
// a live header apart from a stray reference word: a set low bit in a header
// slot means the bytes are corrupt. Relocation/forwarding markers exist only
// in garbage-collected heaps and are never written here.
const (
	// HeaderTagBits is the width of the type-tag field inside a header word.
	HeaderTagBits = 4

	// HeaderTagMask extracts the type-tag from an unpacked header value.
	HeaderTagMask = (1 << HeaderTagBits) - 1

	// MaxClassID is the largest encodable class identity. The packed header
	// value must round-trip through the signed small-integer payload, which
	// leaves 30 bits for class-id plus type-tag.
	MaxClassID = (1 << (30 - HeaderTagBits)) - 1
)

// ============================================================================
// Word Value Encoding
// ============================================================================
//
// Slot values (array elements, instance fields) are either small integers or
// heap references, distinguished by the low bit:
//
//	xxxx...xxx0  small integer, signed payload in the upper 31 bits
//	xxxx...xxx1  heap reference, word-aligned heap address in the upper bits
//
// A heap address is blockIndex*BlockSize + offsetInBlock; offsets are word
// aligned and start past the block header, so the low bit is always free.
const (
	// SmiTagMask isolates the tag bit of a value word.
	SmiTagMask = 1

	// SmiShift is the left shift applied to a small integer's payload.
	SmiShift = 1

	// MaxSmi is the largest value representable as a small integer.
	MaxSmi = 1<<30 - 1

	// MinSmi is the smallest value representable as a small integer.
	MinSmi = -(1 << 30)
)

// ============================================================================
// Array Layout
// ============================================================================
// Arrays hold a length-prefixed sequence of value words.
const (
	ArrayLengthOffset = HeaderSize                    // int32, element count (>= 0)
	ArraySlotsOffset  = ArrayLengthOffset + WordSize  // start of element words
	ArraySlotSize     = WordSize                      // one value word per element

	// MaxArrayLength is the single-block element ceiling. Arrays must fit
	// entirely inside one block; the loader never builds larger ones.
	MaxArrayLength = (BlockPayloadSize - ArraySlotsOffset) / ArraySlotSize // 1014
)

// ============================================================================
// ByteArray Layout
// ============================================================================
// Byte arrays come in two shapes sharing the length field:
//
//	internal  [header][length>=0][payload bytes...]
//	external  [header][encoded length<0][external id][external tag]
//
// The external shape is a fixed small header; the payload lives in
// caller-owned memory registered with the heap, never inside a block.
const (
	ByteArrayLengthOffset      = HeaderSize                         // int32, see external encoding
	ByteArrayDataOffset        = ByteArrayLengthOffset + WordSize   // internal payload start
	ByteArrayExternalIDOffset  = ByteArrayLengthOffset + WordSize   // uint32 external registry id
	ByteArrayExternalTagOffset = ByteArrayExternalIDOffset + WordSize

	// ExternalByteArraySize is the fixed block-resident size of an external
	// byte array.
	ExternalByteArraySize = ByteArrayExternalTagOffset + WordSize // 16

	// MaxInternalByteArrayLength is the inline payload ceiling (one block's
	// worth, minus header overhead).
	MaxInternalByteArrayLength = BlockPayloadSize - ByteArrayDataOffset // 4056

	// RawByteTag marks an external payload as plain bytes. Struct-typed
	// external tags belong to runtime resources and are never produced here.
	RawByteTag = 0
)

// ============================================================================
// String Layout
// ============================================================================
// Strings carry a cached 16-bit content hash next to the length. Internal
// strings additionally store one trailing NUL sentinel byte after the
// content for legacy readers that scan for a terminator; the sentinel is not
// part of the length.
//
//	internal  [header][hash][length>=0][bytes...][NUL]
//	external  [header][hash][encoded length<0][external id]
const (
	StringHashOffset       = HeaderSize                      // uint16 value in a word slot
	StringLengthOffset     = StringHashOffset + WordSize     // int32, see external encoding
	StringDataOffset       = StringLengthOffset + WordSize   // internal content start
	StringExternalIDOffset = StringLengthOffset + WordSize   // uint32 external registry id

	// ExternalStringSize is the fixed block-resident size of an external
	// string.
	ExternalStringSize = StringExternalIDOffset + WordSize // 16

	// MaxInternalStringLength is the inline content ceiling, reserving one
	// byte for the trailing sentinel.
	MaxInternalStringLength = BlockPayloadSize - StringDataOffset - 1 // 4051

	// NoHashCode marks a string whose content hash has not been computed
	// yet. A real hash that collides with the marker is stored as 0.
	NoHashCode = 0xFFFF
)

// ============================================================================
// Boxed Primitive Layout
// ============================================================================
const (
	DoubleValueOffset = HeaderSize // 8 bytes, IEEE 754 bits
	DoubleSize        = DoubleValueOffset + 8

	LargeIntegerValueOffset = HeaderSize // 8 bytes, two's complement
	LargeIntegerSize        = LargeIntegerValueOffset + 8
)
