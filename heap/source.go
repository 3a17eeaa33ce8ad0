package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/arena"
	"github.com/joshuapare/heapkit/internal/layout"
)

// BlockSource produces and releases the fixed-capacity slabs backing blocks.
// Memory-constrained targets can plug in a specialized provider.
//
// Implementations:
//   - SliceSource: Go-heap slabs (default)
//   - ArenaSource: anonymous page mappings outside the Go heap
type BlockSource interface {
	// AllocateBlockMemory returns a zeroed slab of exactly BlockSize bytes,
	// or an error when no memory can be produced.
	AllocateBlockMemory() ([]byte, error)

	// FreeBlockMemory releases a slab previously returned by
	// AllocateBlockMemory.
	FreeBlockMemory(mem []byte) error
}

// SliceSource allocates block slabs from the Go heap. Freed slabs are left
// to the garbage collector.
type SliceSource struct{}

// NewSliceSource returns the default block-memory source.
func NewSliceSource() *SliceSource {
	return &SliceSource{}
}

// AllocateBlockMemory returns a zeroed BlockSize slab.
func (s *SliceSource) AllocateBlockMemory() ([]byte, error) {
	return make([]byte, layout.BlockSize), nil
}

// FreeBlockMemory is a no-op; the garbage collector reclaims the slab.
func (s *SliceSource) FreeBlockMemory(_ []byte) error {
	return nil
}

// ArenaSource allocates block slabs with anonymous page mappings outside the
// Go heap, releasing pages eagerly on free. Useful when image memory should
// not linger until the next collection, and on builds without mapping
// support it degrades to Go-heap slabs.
type ArenaSource struct{}

// NewArenaSource returns a page-mapping block-memory source.
func NewArenaSource() *ArenaSource {
	return &ArenaSource{}
}

// AllocateBlockMemory maps a zeroed BlockSize slab.
func (s *ArenaSource) AllocateBlockMemory() ([]byte, error) {
	mem, err := arena.Map(layout.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("heap: mapping block memory: %w", err)
	}
	return mem, nil
}

// FreeBlockMemory unmaps a slab.
func (s *ArenaSource) FreeBlockMemory(mem []byte) error {
	return arena.Unmap(mem)
}

// Compile-time interface checks.
var (
	_ BlockSource = (*SliceSource)(nil)
	_ BlockSource = (*ArenaSource)(nil)
)
