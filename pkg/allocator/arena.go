package allocator

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// pageSize is the granularity at which the arena manager requests memory
// from the operating system.
const pageSize = 4096

// arena owns the set of OS-mapped regions backing an allocator instance.
// Mappings are never unmapped (see the allocator's Non-goals): once
// requested, a region lives for the rest of the process.
//
// Mirrors the mmap bookkeeping in balloc's BuddyPool, trading the buddy
// pool's single fixed-size mapping for a growable list of page-multiple
// regions, one per Init/Grow call.
type arena struct {
	regions     [][]byte
	totalMapped uint64
}

// init maps one region of initialSize bytes (rounded up to a whole number of
// pages) and formats it as a single free block spanning the whole mapping
// minus one header.
func (a *arena) init(initialSize int) (*block, error) {
	return a.mapRegion(initialSize)
}

// grow rounds requiredBytes up to a whole number of pages, maps that much
// additional memory, and formats it as one free block. It does not attempt
// to coalesce the new region with any existing mapping: physical adjacency,
// if any, is discovered later by the free-list insertion/coalesce logic in
// freelist.go, which is the sole source of truth for adjacency.
func (a *arena) grow(requiredBytes int) (*block, error) {
	return a.mapRegion(requiredBytes)
}

func (a *arena) mapRegion(minBytes int) (*block, error) {
	numPages := (minBytes + pageSize - 1) / pageSize
	if numPages < 1 {
		numPages = 1
	}
	size := numPages * pageSize

	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, &ArenaMapError{Size: size, Err: err}
	}

	a.regions = append(a.regions, data)
	a.totalMapped += uint64(size)

	b := blockAt(unsafe.Pointer(&data[0]))
	b.size = uint32(size) - uint32(headerSize)
	b.isFree = true
	b.prev = nil
	b.next = nil

	return b, nil
}
