//go:build !unix

// Package arena provides platform-specific helpers for acquiring page-backed
// slabs of block memory outside the Go heap.
package arena

import "fmt"

// Map returns a zeroed slab from the Go heap when anonymous mappings are not
// available.
func Map(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("arena: negative slab size %d", size)
	}
	return make([]byte, size), nil
}

// Unmap is a no-op; the Go runtime reclaims the slab.
func Unmap(_ []byte) error {
	return nil
}
