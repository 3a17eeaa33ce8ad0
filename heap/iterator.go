package heap

import (
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/internal/layout"
)

// Iterator walks every object in a block list in allocation order: blocks
// oldest first, and within a block, lowest offset first. It binds lazily on
// first use and tolerates tail appends: whether the bound block is the
// list's last block is re-evaluated on every call, never cached, so a block
// appended mid-traversal is still reached without revisiting anything.
//
// Tail append is the only structural change the iterator survives. Freeing
// a block or reordering the list invalidates it.
//
// Driving past the end of the stream, or encountering a header word with
// its low bit set (a relocation marker, a concept this heap does not have),
// is fatal and panics.
type Iterator struct {
	list *BlockList
	meta ClassIndex

	// blockIdx is -1 until the first Current/Advance binds the iterator.
	blockIdx int
	off      int
}

// NewIterator returns an unbound iterator over list. Instance sizes during
// traversal come from meta.
func NewIterator(list *BlockList, meta ClassIndex) *Iterator {
	return &Iterator{list: list, meta: meta, blockIdx: -1}
}

// EOS reports whether the iterator is at the end of the stream: the list
// holds no objects past the cursor. The check is live; an EOS iterator
// becomes non-EOS again if a block is appended behind it.
func (it *Iterator) EOS() bool {
	if it.list.IsEmpty() {
		return true
	}
	idx, off := it.blockIdx, it.off
	if idx < 0 {
		idx, off = 0, layout.BlockHeaderSize
	}
	if idx != it.list.Len()-1 {
		return false
	}
	return off >= it.list.At(idx).Top()
}

// ensureStarted binds the iterator on first use. Callers must not drive an
// iterator that is at end of stream.
func (it *Iterator) ensureStarted() {
	if it.EOS() {
		panic("heap: iterator driven past end of stream")
	}
	if it.blockIdx < 0 {
		it.blockIdx = 0
		it.off = layout.BlockHeaderSize
	}
}

// Current returns the object at the cursor, rolling over to the next block
// first when the cursor is parked at the frontier of a block that is no
// longer the list's last.
func (it *Iterator) Current() Object {
	it.ensureStarted()
	block := it.list.At(it.blockIdx)
	if it.off >= block.Top() && it.blockIdx != it.list.Len()-1 {
		it.blockIdx++
		it.off = layout.BlockHeaderSize
		block = it.list.At(it.blockIdx)
	}
	// Headers are always smi encoded; a set low bit in a header slot means
	// the bytes are corrupt.
	if layout.IsRef(layout.ReadU32(block.Bytes(), it.off)) {
		panic(fmt.Sprintf("heap: corrupt object header at block %d offset %d", block.Index(), it.off))
	}
	return Object{block: block, off: it.off}
}

// Advance moves the cursor past the current object. The step is the
// object's exact byte size rounded up to word alignment, the same stride
// the allocator bumped by.
func (it *Iterator) Advance() {
	cur := it.Current()
	it.off = cur.off + layout.AlignWord(cur.Size(it.meta))
}

// Next returns the current object and advances, or io.EOF at end of
// stream. It is the loop-friendly wrapper over Current/Advance; the
// append-tolerance semantics are identical.
func (it *Iterator) Next() (Object, error) {
	if it.EOS() {
		return Object{}, io.EOF
	}
	obj := it.Current()
	it.Advance()
	return obj, nil
}
