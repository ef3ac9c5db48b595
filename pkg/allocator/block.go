package allocator

import "unsafe"

// block is the header-prefixed cell carved out of arena memory. Every
// addressable unit in the arena is a block: a header immediately followed by
// its payload.
//
// A block is on exactly one of the two lists (free or alloc) at a time, and
// the same prev/next pair is reused by both, mirroring the C source's
// block_header_t.
type block struct {
	size   uint32 // payload size in bytes, excluding the header, always a multiple of 4
	isFree bool

	prev *block
	next *block
}

// headerSize is the fixed byte cost of a block header.
const headerSize = unsafe.Sizeof(block{})

// blockAt reinterprets the memory at addr as a block header.
func blockAt(addr unsafe.Pointer) *block {
	return (*block)(addr)
}

// addr returns the header's own address.
func (b *block) addr() uintptr {
	return uintptr(unsafe.Pointer(b))
}

// payload returns the pointer handed out to callers: one header past the
// header address.
func (b *block) payload() unsafe.Pointer {
	return unsafe.Pointer(b.addr() + headerSize)
}

// end returns the address immediately past this block's payload, i.e. where
// the next physically-adjacent block's header would begin.
func (b *block) end() uintptr {
	return b.addr() + headerSize + uintptr(b.size)
}

// headerFromPayload derives a block's header address by subtracting one
// header size from a payload pointer previously returned by malloc.
func headerFromPayload(ptr unsafe.Pointer) *block {
	return (*block)(unsafe.Pointer(uintptr(ptr) - headerSize))
}

// align4 rounds size up to the next multiple of 4, per the spec's 4-byte
// alignment requirement (not the strictest scalar alignment).
func align4(size int) uint32 {
	return uint32((size + 3) &^ 3)
}

// adjoins reports whether b is physically immediately followed by other,
// i.e. b.end() == other's header address. This is the sole test used to
// decide whether two free blocks may be coalesced.
func (b *block) adjoins(other *block) bool {
	return other != nil && b.end() == other.addr()
}
