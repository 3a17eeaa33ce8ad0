package layout

import (
	"bytes"
	"fmt"
)

// Block header stamp/verify. Every block opens with a 32-byte header carrying
// the "hblk" signature, the block's position in its list, and a capacity
// echo. The header makes blocks self-describing for diagnostics and lets
// traversals detect clobbered memory before walking object headers.

// StampBlockHeader writes a fresh block header into b. The buffer must hold
// a whole block.
func StampBlockHeader(b []byte, index int) error {
	if len(b) < BlockSize {
		return fmt.Errorf("stamping block %d: have %d bytes: %w", index, len(b), ErrTruncated)
	}
	copy(b[BlockSignatureOffset:], BlockSignature)
	PutU32(b, BlockIndexOffset, uint32(index))
	PutU32(b, BlockSizeOffset, BlockSize)
	return nil
}

// VerifyBlockHeader checks the signature and capacity echo of a block
// header, returning the stored block index.
func VerifyBlockHeader(b []byte) (int, error) {
	if len(b) < BlockHeaderSize {
		return 0, fmt.Errorf("block header: have %d bytes: %w", len(b), ErrTruncated)
	}
	if !bytes.Equal(b[BlockSignatureOffset:BlockSignatureOffset+BlockSignatureSize], BlockSignature) {
		return 0, fmt.Errorf("block header: %w", ErrSignatureMismatch)
	}
	if got := ReadU32(b, BlockSizeOffset); got != BlockSize {
		return 0, fmt.Errorf("block header: capacity echo %d: %w", got, ErrSizeRange)
	}
	return int(ReadU32(b, BlockIndexOffset)), nil
}
