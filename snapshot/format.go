package snapshot

import "github.com/joshuapare/heapkit/heap"

// Image wire format. Every multi-byte quantity is little-endian.
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------------------
//	0x00    4     'H' 'K' 'I' 'M'
//	0x04    1     format version (1)
//	0x05    4     instance-class count C
//	              C class records, registration order:
//	                u16 name length, name bytes, u32 field count
//	              u32 object count N
//	              N object records, allocation order:
//	                u8 kind, kind payload (below)
//	              root value
//
// Kind payloads:
//
//	instance       u32 class id, u32 field count, field count values
//	array          u32 length, length values
//	byte array     u32 length, length payload bytes
//	string         u32 length, length content bytes, one NUL byte
//	double         8 bytes, IEEE 754 bits
//	large integer  8 bytes, two's complement
//
// A value is one u8 tag followed by four bytes: a signed small-integer
// payload, or the image-order index of the referenced object. Object records
// carry no addresses; references are rebuilt from indices when the image is
// loaded, which is what keeps images position-independent.
const (
	formatVersion = 1

	// headerSize covers the magic and the version byte.
	headerSize = 5
)

var imageMagic = []byte("HKIM")

// Object record kinds.
const (
	recordInstance uint8 = iota
	recordArray
	recordByteArray
	recordString
	recordDouble
	recordLargeInteger
)

// Value encodings inside records and for the root.
const (
	valueSmi uint8 = iota
	valueRef
)

// ExternalCutoff is the content length above which byte-array and string
// payloads load through the external path, aliasing the image buffer
// instead of being copied into blocks. A quarter block: large enough that
// block space is not shredded by copies, small enough that inline loads
// stay cheap.
const ExternalCutoff = heap.BlockSize >> 2
