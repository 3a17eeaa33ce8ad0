//go:build unix

package arena

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Map returns a zeroed, page-backed slab of exactly size bytes, allocated
// outside the Go heap with an anonymous private mapping.
func Map(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("arena: negative slab size %d", size)
	}
	if size == 0 {
		return []byte{}, nil
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("arena: mmap %d bytes: %w", size, err)
	}
	return data, nil
}

// Unmap releases a slab obtained from Map.
func Unmap(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	err := unix.Munmap(b)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
