package program

import (
	"github.com/joshuapare/heapkit/heap"
)

// Store is the permanent home of a finished program image: the migration
// destination that takes a heap's blocks and external payloads wholesale and
// serves reads for the program's lifetime.
//
// Block indices survive the transfer, so every reference minted while the
// image was being built resolves unchanged against the store.
type Store struct {
	meta      heap.ClassIndex
	blocks    heap.BlockList
	externals heap.ExternalTable
}

// NewStore returns an empty store reading object sizes from meta, normally
// the same Program the heap was built over.
func NewStore(meta heap.ClassIndex) *Store {
	return &Store{meta: meta}
}

// TakeBlocks receives every block of a migrating heap in one transfer.
func (s *Store) TakeBlocks(list *heap.BlockList) {
	s.blocks.Take(list)
}

// TakeExternals receives a migrating heap's external payload table.
func (s *Store) TakeExternals(table *heap.ExternalTable) {
	s.externals.Take(table)
}

// PayloadSize returns the stored image's object bytes across all blocks.
func (s *Store) PayloadSize() int {
	return s.blocks.PayloadSize()
}

// BlockCount returns the number of blocks holding the image.
func (s *Store) BlockCount() int {
	return s.blocks.Len()
}

// Objects returns an iterator over the stored image in allocation order.
func (s *Store) Objects() *heap.Iterator {
	return heap.NewIterator(&s.blocks, s.meta)
}

// ObjectAt resolves a reference minted before migration against the stored
// blocks.
func (s *Store) ObjectAt(ref heap.Ref) (heap.Object, error) {
	return s.blocks.ObjectAt(ref)
}

// Externals exposes the payload table external objects resolve through.
func (s *Store) Externals() *heap.ExternalTable {
	return &s.externals
}

var _ heap.ProgramStore = (*Store)(nil)
