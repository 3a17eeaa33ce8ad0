package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/layout"
)

// Heap is the block-structured object heap a loader materializes one
// program image into. It owns exactly one BlockList plus the table of
// external payloads, and is driven by a single synchronous writer: there is
// no internal locking, and growth during traversal is just re-entrant
// allocation from the same call stack.
//
// A heap ends in one of two ways: Close frees every block back to the
// source (the abort path), or MigrateTo seals the heap and hands every
// block to the permanent program store in one bulk transfer (the success
// path).
type Heap struct {
	meta      ClassIndex
	source    BlockSource
	blocks    BlockList
	externals ExternalTable

	// totalBytesAllocated grows by exactly the requested size on every
	// successful raw allocation, across all block boundaries.
	totalBytesAllocated int64

	// lastAllocationResult records the outcome of the most recent
	// block-growth attempt, for diagnostics.
	lastAllocationResult AllocationResult

	// sealed flips when migration hands the blocks away; a sealed heap
	// rejects all further allocation.
	sealed bool
}

// Options configures heap construction.
type Options struct {
	// Source produces and frees block memory.
	// Default: SliceSource
	Source BlockSource
}

// DefaultOptions returns the recommended options for general-purpose use.
func DefaultOptions() *Options {
	return &Options{
		Source: NewSliceSource(),
	}
}

// New creates a heap with one pre-allocated empty block, using the default
// options.
func New(meta ClassIndex) (*Heap, error) {
	return NewWithOptions(meta, DefaultOptions())
}

// NewWithOptions creates a heap with one pre-allocated empty block. Nil
// option fields fall back to their defaults.
func NewWithOptions(meta ClassIndex, opts *Options) (*Heap, error) {
	if meta == nil {
		return nil, fmt.Errorf("heap: nil class index")
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	source := opts.Source
	if source == nil {
		source = NewSliceSource()
	}
	h := &Heap{meta: meta, source: source}
	if err := h.grow(); err != nil {
		return nil, err
	}
	return h, nil
}

// allocateRaw reserves byteSize exclusively-owned bytes in the last block,
// appending a fresh block when it cannot fit. The region is uninitialized;
// the caller must stamp a complete header and payload before any traversal
// runs. Growth failing to produce a block is the only runtime failure;
// oversized requests are contract violations rejected up front.
func (h *Heap) allocateRaw(byteSize int) (Object, error) {
	if h.sealed {
		return Object{}, ErrHeapSealed
	}
	if byteSize <= 0 {
		return Object{}, fmt.Errorf("heap: raw allocation of %d bytes: %w", byteSize, ErrObjectTooLarge)
	}
	size := layout.AlignWord(byteSize)
	if size > layout.BlockPayloadSize {
		return Object{}, fmt.Errorf("heap: raw allocation of %d bytes: %w", byteSize, ErrObjectTooLarge)
	}

	off, ok := h.blocks.Last().Allocate(size)
	if !ok {
		if err := h.grow(); err != nil {
			return Object{}, fmt.Errorf("%w: %w", ErrAllocationFailed, err)
		}
		// A fresh block always satisfies a size within BlockPayloadSize.
		off, ok = h.blocks.Last().Allocate(size)
		if !ok {
			return Object{}, fmt.Errorf("heap: fresh block refused %d bytes: %w", size, ErrAllocationFailed)
		}
	}

	h.totalBytesAllocated += int64(size)
	return Object{block: h.blocks.Last(), off: off}, nil
}

// grow appends one brand-new empty block. Growth always succeeds by
// construction unless the block-memory source itself fails; either way the
// outcome lands in lastAllocationResult.
func (h *Heap) grow() error {
	mem, err := h.source.AllocateBlockMemory()
	if err != nil {
		h.lastAllocationResult = AllocationFailed
		return fmt.Errorf("heap: growing block list: %w", err)
	}
	b, err := newBlock(mem, h.blocks.Len())
	if err != nil {
		h.lastAllocationResult = AllocationFailed
		return err
	}
	h.blocks.Append(b)
	h.lastAllocationResult = AllocationSuccess
	return nil
}

// MigrateTo seals the heap and transfers every block and the external
// payload table to the permanent store in one bulk operation. The transfer
// cannot fail; afterwards the heap's list is empty, its payload size is
// zero, and all further allocation reports ErrHeapSealed.
func (h *Heap) MigrateTo(store ProgramStore) {
	h.sealed = true
	store.TakeBlocks(&h.blocks)
	store.TakeExternals(&h.externals)
}

// Close frees every block back to the block-memory source: the abort path
// for a loading attempt that will not migrate. Closing after migration is a
// no-op.
func (h *Heap) Close() error {
	h.sealed = true
	return h.blocks.Free(h.source)
}

// PayloadSize returns the sum of payload bytes across all blocks.
func (h *Heap) PayloadSize() int {
	return h.blocks.PayloadSize()
}

// TotalBytesAllocated returns the monotonically increasing sum of all raw
// allocation sizes.
func (h *Heap) TotalBytesAllocated() int64 {
	return h.totalBytesAllocated
}

// LastAllocationResult returns the outcome of the most recent block-growth
// attempt.
func (h *Heap) LastAllocationResult() AllocationResult {
	return h.lastAllocationResult
}

// BlockCount returns the number of blocks currently owned.
func (h *Heap) BlockCount() int {
	return h.blocks.Len()
}

// Externals exposes the external payload table for resolving external
// objects viewed through this heap.
func (h *Heap) Externals() *ExternalTable {
	return &h.externals
}

// Meta returns the class index the heap allocates against, for callers that
// need it to view instances.
func (h *Heap) Meta() ClassIndex {
	return h.meta
}

// Objects returns an append-tolerant iterator over every object currently
// held, in allocation order. Allocating while iterating is allowed; blocks
// appended mid-traversal are still reached.
func (h *Heap) Objects() *Iterator {
	return NewIterator(&h.blocks, h.meta)
}

// ObjectAt resolves a tagged reference word to an object view, validating
// that it points into allocated space on a word boundary.
func (h *Heap) ObjectAt(ref Ref) (Object, error) {
	return h.blocks.ObjectAt(ref)
}
