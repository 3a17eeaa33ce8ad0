package heap

import "errors"

var (
	// ErrAllocationFailed indicates raw allocation could not be satisfied
	// even after attempting to append a new block; ultimately the
	// block-memory source could not produce one. Every typed allocator
	// reports this uniformly regardless of cause.
	ErrAllocationFailed = errors.New("heap: allocation failed")

	// ErrObjectTooLarge indicates a requested size above one block's usable
	// capacity. Callers are expected to have validated image limits before
	// reaching this layer.
	ErrObjectTooLarge = errors.New("heap: object exceeds block capacity")

	// ErrLengthRange indicates a negative length or one above the
	// single-block ceiling for its kind.
	ErrLengthRange = errors.New("heap: length out of range")

	// ErrHeapSealed indicates allocation was attempted after migration
	// sealed the heap.
	ErrHeapSealed = errors.New("heap: sealed by migration")

	// ErrBadRef indicates a reference that does not point at an allocated
	// object.
	ErrBadRef = errors.New("heap: reference outside allocated space")

	// ErrWrongTag indicates a typed view was requested for an object of a
	// different kind.
	ErrWrongTag = errors.New("heap: object has different type tag")

	// ErrNoTerminatorRoom indicates an external string buffer with no byte
	// available at index length for the trailing sentinel.
	ErrNoTerminatorRoom = errors.New("heap: external string buffer cannot hold terminator")
)
