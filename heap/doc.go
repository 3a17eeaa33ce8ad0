// Package heap implements the object heap a program image is built in while
// it is loaded.
//
// # Overview
//
// Loading a compiled program means allocating thousands of objects whose
// final home is the permanent program store. This package provides the
// staging heap for that construction: a bump allocator over fixed-capacity
// blocks, a typed allocation API for every object kind a program image
// contains, and an iterator the loader drives to patch references between
// already-allocated objects. When loading succeeds the heap is sealed and
// every block moves wholesale to the permanent store; when it aborts the
// blocks are freed in bulk. Nothing is ever freed object by object and
// nothing is ever collected.
//
// # Key Types
//
// The main types provided by this package are:
//
//   - Heap: the staging heap; owns the block list and external payloads
//   - Block: a fixed 4KB region filled front to back by bump allocation
//   - BlockList: ordered blocks, oldest first; the last is the sole
//     allocation target
//   - Object: a zero-copy view over one allocated object
//   - Instance, Array, ByteArray, String, Double, LargeInteger: typed views
//   - Iterator: append-tolerant traversal in allocation order
//   - ExternalTable: registry of caller-owned payloads referenced from
//     block-resident headers
//
// # Memory Model
//
// A heap is a list of 4KB blocks, each with a 32-byte self-describing
// header:
//
//	[block header][object][object]...[free space]
//
// Every object starts with one header word packing a class identity and a
// type tag, stored small-integer encoded. The header alone determines the
// object's exact byte size (instances via class metadata), which is what
// lets the iterator walk blocks with no side tables.
//
// Slot values are 32-bit words: small integers carry a signed payload with
// the low bit clear, references carry a block-relative address with the low
// bit set. Byte arrays and strings above the single-block ceiling keep a
// small header in the block and their payload in caller-supplied memory,
// registered with the heap and never copied.
//
// # Building a Program Image
//
// The loader allocates through the typed API and patches references with
// the iterator:
//
//	h, err := heap.New(classes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	arr, err := h.AllocateArray(3, heap.Smi(0))
//	str, err := h.AllocateString("main")
//	arr.SetAt(0, str.Ref())
//
//	for it := h.Objects(); !it.EOS(); it.Advance() {
//	    obj := it.Current()
//	    // resolve placeholder slots now that every target exists
//	}
//
// Allocating while iterating is allowed: a block appended mid-traversal is
// still reached, without revisiting anything already visited.
//
// # Lifecycle
//
// A heap ends in exactly one of two ways. On success, MigrateTo seals it
// and transfers every block and the external table to a permanent store;
// references minted before migration stay valid because block indices are
// preserved. On abort, Close frees every block back to the block-memory
// source. A sealed heap rejects further allocation with ErrHeapSealed.
//
// # Thread Safety
//
// A Heap is single-writer and unsynchronized. The loading phase is
// synchronous; share a heap across goroutines only with external locking.
//
// # Related Packages
//
//   - github.com/joshuapare/heapkit/program: class tables and the permanent
//     program store
//   - github.com/joshuapare/heapkit/snapshot: program-image serialization
package heap
