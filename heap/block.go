package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/layout"
)

// Block is a fixed-capacity region of object memory with a bump cursor.
// The backing slab holds a 32-byte self-describing header followed by
// objects laid out back to back:
//
//	[block header][object][object]...[free space]
//	              ^base              ^top
//
// Blocks are filled front to back and never reuse space; only the owning
// list's last block accepts allocations.
type Block struct {
	data  []byte // whole slab, header included
	index int    // position in the owning list; fixed for the block's lifetime
	top   int    // offset of the next free byte
}

// newBlock wraps a fresh zeroed slab and stamps its header. The slab must be
// exactly BlockSize bytes.
func newBlock(mem []byte, index int) (*Block, error) {
	if len(mem) != layout.BlockSize {
		return nil, fmt.Errorf("heap: block slab is %d bytes, want %d: %w",
			len(mem), layout.BlockSize, ErrAllocationFailed)
	}
	if err := layout.StampBlockHeader(mem, index); err != nil {
		return nil, err
	}
	return &Block{data: mem, index: index, top: layout.BlockHeaderSize}, nil
}

// Allocate bumps the cursor by size bytes and returns the offset of the
// reserved region, or ok = false when the block cannot hold it. Sizes are
// word aligned by the caller.
func (b *Block) Allocate(size int) (int, bool) {
	if b.top+size > len(b.data) {
		return 0, false
	}
	off := b.top
	b.top += size
	return off, true
}

// Top returns the bump cursor: the offset one past the last allocated byte.
func (b *Block) Top() int {
	return b.top
}

// Index returns the block's position in its list.
func (b *Block) Index() int {
	return b.index
}

// PayloadSize returns the bytes currently allocated within the block.
func (b *Block) PayloadSize() int {
	return b.top - layout.BlockHeaderSize
}

// IsEmpty reports whether the block holds no objects.
func (b *Block) IsEmpty() bool {
	return b.top == layout.BlockHeaderSize
}

// Bytes exposes the whole backing slab, header included. Views index into
// it with layout offsets.
func (b *Block) Bytes() []byte {
	return b.data
}

// BlockList is an ordered sequence of blocks, oldest first. The last block
// is the sole allocation target; every earlier block is no longer written.
type BlockList struct {
	blocks []*Block
}

// Append adds b as the new last block.
func (l *BlockList) Append(b *Block) {
	l.blocks = append(l.blocks, b)
}

// Len returns the number of blocks.
func (l *BlockList) Len() int {
	return len(l.blocks)
}

// IsEmpty reports whether the list holds no blocks.
func (l *BlockList) IsEmpty() bool {
	return len(l.blocks) == 0
}

// First returns the oldest block, or nil when empty.
func (l *BlockList) First() *Block {
	if len(l.blocks) == 0 {
		return nil
	}
	return l.blocks[0]
}

// Last returns the newest block (the allocation target), or nil when empty.
func (l *BlockList) Last() *Block {
	if len(l.blocks) == 0 {
		return nil
	}
	return l.blocks[len(l.blocks)-1]
}

// At returns the block at position i.
func (l *BlockList) At(i int) *Block {
	return l.blocks[i]
}

// PayloadSize returns the sum of payload bytes across all blocks.
func (l *BlockList) PayloadSize() int {
	total := 0
	for _, b := range l.blocks {
		total += b.PayloadSize()
	}
	return total
}

// Free releases every block's memory back to the source and empties the
// list. The first release error is reported; remaining blocks are still
// released.
func (l *BlockList) Free(source BlockSource) error {
	var firstErr error
	for _, b := range l.blocks {
		if err := source.FreeBlockMemory(b.data); err != nil && firstErr == nil {
			firstErr = err
		}
		b.data = nil
	}
	l.blocks = nil
	return firstErr
}

// Take transfers every block from src to l in one step, leaving src empty.
// The destination must be empty so block indices, and therefore references,
// keep their meaning after the move.
func (l *BlockList) Take(src *BlockList) {
	if len(l.blocks) != 0 {
		panic("heap: taking blocks into a non-empty list")
	}
	l.blocks = src.blocks
	src.blocks = nil
}

// ObjectAt resolves a tagged reference word to an object view, validating
// that it points into allocated space on a word boundary. It works on any
// list, so references stay resolvable after the blocks migrate to a
// permanent store.
func (l *BlockList) ObjectAt(ref Ref) (Object, error) {
	if !layout.IsRef(ref) {
		return Object{}, fmt.Errorf("heap: word %#x is not a reference: %w", ref, ErrBadRef)
	}
	addr := int(layout.RefAddress(ref))
	idx := addr / layout.BlockSize
	off := addr & layout.BlockAlignmentMask
	if idx >= len(l.blocks) {
		return Object{}, fmt.Errorf("heap: reference %#x beyond block %d: %w", ref, len(l.blocks)-1, ErrBadRef)
	}
	b := l.blocks[idx]
	if off < layout.BlockHeaderSize || off >= b.Top() || !layout.IsWordAligned(off) {
		return Object{}, fmt.Errorf("heap: reference %#x offset %d invalid: %w", ref, off, ErrBadRef)
	}
	return Object{block: b, off: off}, nil
}
