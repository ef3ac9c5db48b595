// Package allocator implements a user-space heap allocator over a growable,
// page-backed arena, serving malloc/free requests under one of three
// selectable placement policies (FirstFit, BestFit, WorstFit).
//
// It is the Go-native, policy-parameterized rewrite of the three
// near-identical C allocators in _examples/original_source
// (src/worst_fit.c and its first-fit/best-fit siblings): one
// implementation, one Allocator type, and a Policy value that decides which
// free block Malloc picks.
package allocator

import (
	"fmt"
	"unsafe"

	"github.com/aaronshuang/cs429-06-memory-allocator/internal/diag"
)

// Allocator is a single-threaded, synchronous heap allocator. It owns one
// arena, one free list, one alloc list, and the counters spec.md §4.7
// requires. A zero Allocator is not ready to use; call Init first.
//
// Allocator does not guarantee thread safety (spec.md §5): callers must
// serialize their own access.
type Allocator struct {
	policy Policy

	arena arena
	free  freeList
	alloc allocList

	currentlyAllocated uint64
	lastMallocErr      error
}

// New constructs an Allocator that will use the given placement policy for
// every subsequent Malloc call.
func New(policy Policy) *Allocator {
	return &Allocator{policy: policy}
}

// Policy returns the placement policy this allocator was constructed with.
func (a *Allocator) Policy() Policy { return a.policy }

// Init maps one region of initialSize bytes from the operating system and
// installs it as a single free block, resetting both list heads and
// counters. Callers typically pass one page (4096 bytes).
func (a *Allocator) Init(initialSize int) error {
	a.free = freeList{}
	a.alloc = allocList{}
	a.currentlyAllocated = 0
	a.arena = arena{}

	b, err := a.arena.init(initialSize)
	if err != nil {
		return err
	}

	a.free.head = b
	return nil
}

// Malloc allocates size bytes and returns a pointer to the payload, or nil
// if size is non-positive or the arena cannot be grown to satisfy the
// request.
func (a *Allocator) Malloc(size int) unsafe.Pointer {
	a.lastMallocErr = nil

	if size <= 0 {
		a.lastMallocErr = ErrBadRequestSize
		return nil
	}

	aligned := align4(size)

	candidate := a.policy.selectBlock(&a.free, aligned)
	var b *block
	if candidate.IsSome() {
		b = candidate.Unwrap()
	} else {
		grown, err := a.arena.grow(int(aligned) + int(headerSize))
		if err != nil {
			a.lastMallocErr = err
			return nil
		}
		// The newly grown region is handed out directly, without
		// re-running the policy scan over the rest of free. This
		// reproduces the source's worst_fit_malloc behavior (see
		// SPEC_FULL.md's Open Question resolution) for all three
		// policies, for consistency.
		a.free.insertSorted(grown)
		b = grown
	}

	a.splitOrTake(b, aligned)

	b.isFree = false
	a.alloc.push(b)
	a.currentlyAllocated += uint64(b.size) + uint64(headerSize)

	return b.payload()
}

// minSplitRemainder is the smallest remainder, beyond the split header and
// requested bytes, that is itself a valid 4-aligned, usable free block.
const minSplitRemainder = 4

// splitOrTake implements spec.md §4.5 steps 4-5: carve a new free block out
// of b's tail if the remainder would be large enough to be useful,
// otherwise hand b out whole (with its original, slightly larger payload).
func (a *Allocator) splitOrTake(b *block, aligned uint32) {
	if uint64(b.size) < uint64(aligned)+uint64(headerSize)+minSplitRemainder {
		a.free.unlink(b)
		return
	}

	newAddr := unsafe.Pointer(b.addr() + uintptr(headerSize) + uintptr(aligned))
	newBlock := blockAt(newAddr)
	newBlock.size = b.size - aligned - uint32(headerSize)
	newBlock.isFree = true

	// The new block inherits b's position in the free list.
	newBlock.prev = b.prev
	newBlock.next = b.next
	if b.prev != nil {
		b.prev.next = newBlock
	} else {
		a.free.head = newBlock
	}
	if b.next != nil {
		b.next.prev = newBlock
	}

	b.size = aligned
}

// LastMallocErr returns the reason the most recent call to Malloc returned
// nil, or nil if that call succeeded or no call has been made yet. Malloc's
// own return value stays a bare pointer to match the C-shaped surface
// spec.md §6 describes; this is the escape hatch for callers that want to
// tell ErrBadRequestSize apart from an ArenaMapError via errors.As.
func (a *Allocator) LastMallocErr() error { return a.lastMallocErr }

// Free returns a previously allocated block to the free list, validating
// the pointer and coalescing it with any physically adjacent free
// neighbors. A nil pointer is accepted silently. An invalid or
// already-freed pointer is reported to the diagnostic channel and causes no
// mutation (spec.md §4.6, §7).
func (a *Allocator) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	b := headerFromPayload(ptr)

	if !a.alloc.contains(b) || b.isFree {
		err := &InvalidFreeError{Reason: fmt.Sprintf("%p is not a live allocation", ptr)}
		diag.Reportf("%v", err)
		return
	}

	a.alloc.unlink(b)
	a.currentlyAllocated -= uint64(b.size) + uint64(headerSize)

	b.isFree = true

	prev, next := a.free.insertSorted(b)

	a.free.coalesceForward(b, next)
	if prev != nil {
		a.free.coalesceBackward(prev, b)
	}
}

// TotalMappedMemory returns the total bytes ever requested from the
// operating system by Init and Grow; it never decreases (spec.md §4.7).
func (a *Allocator) TotalMappedMemory() uint64 { return a.arena.totalMapped }

// CurrentlyAllocatedMemory returns the sum of (size + header size) over the
// alloc list (spec.md §4.7).
func (a *Allocator) CurrentlyAllocatedMemory() uint64 { return a.currentlyAllocated }

// StructuralOverhead returns header size times the combined length of the
// free and alloc lists (spec.md §4.7), computed on demand.
func (a *Allocator) StructuralOverhead() uint64 {
	return uint64(headerSize) * uint64(a.free.len()+a.alloc.len())
}

// MallocBytes is a convenience wrapper around Malloc that returns the
// payload as a byte slice of the requested length, for callers that would
// rather not juggle unsafe.Pointer directly. The returned slice aliases the
// same memory Malloc allocated and must not be used after a corresponding
// Free.
func (a *Allocator) MallocBytes(size int) []byte {
	p := a.Malloc(size)
	if p == nil {
		return nil
	}
	return unsafe.Slice((*byte)(p), size)
}

// FreeBytes frees a slice previously returned by MallocBytes.
func (a *Allocator) FreeBytes(b []byte) {
	if len(b) == 0 {
		return
	}
	a.Free(unsafe.Pointer(&b[0]))
}

// WalkFree calls visit once per block currently on the free list, in
// ascending address order, passing the block's header address and payload
// size. It exists for tests and diagnostics that need to inspect list shape
// without reaching into package internals.
func (a *Allocator) WalkFree(visit func(addr uintptr, size uint32)) {
	for b := a.free.head; b != nil; b = b.next {
		visit(b.addr(), b.size)
	}
}

// WalkAlloc calls visit once per block currently on the alloc list, passing
// the block's header address and payload size. Order is unspecified (the
// alloc list is unordered, per spec.md §3).
func (a *Allocator) WalkAlloc(visit func(addr uintptr, size uint32)) {
	for b := a.alloc.head; b != nil; b = b.next {
		visit(b.addr(), b.size)
	}
}
