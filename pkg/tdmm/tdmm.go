// Package tdmm is a package-level singleton façade over pkg/allocator,
// mirroring libtdmm/tdmm.c's current_strat global: one process-wide
// allocator, selected once at Init time, reached through free functions
// instead of method calls. Prefer allocator.Allocator directly in new code;
// this package exists for callers that want the original global-state shape.
package tdmm

import (
	"unsafe"

	"github.com/aaronshuang/cs429-06-memory-allocator/pkg/allocator"
)

const defaultInitialSize = 4096

var current *allocator.Allocator

// Init installs policy as the process-wide strategy and maps one page to
// back it, discarding any previously installed allocator.
func Init(policy allocator.Policy) error {
	a := allocator.New(policy)
	if err := a.Init(defaultInitialSize); err != nil {
		return err
	}
	current = a
	return nil
}

// Malloc allocates size bytes from the process-wide allocator. It panics if
// Init has not been called first.
func Malloc(size int) unsafe.Pointer {
	return current.Malloc(size)
}

// Free returns ptr to the process-wide allocator.
func Free(ptr unsafe.Pointer) {
	current.Free(ptr)
}

// GetTotalMappedMemory reports bytes ever mapped by the process-wide
// allocator.
func GetTotalMappedMemory() uint64 {
	return current.TotalMappedMemory()
}

// GetCurrentlyAllocatedMemory reports bytes currently outstanding on the
// process-wide allocator.
func GetCurrentlyAllocatedMemory() uint64 {
	return current.CurrentlyAllocatedMemory()
}

// GetStructuralOverhead reports the process-wide allocator's bookkeeping
// overhead.
func GetStructuralOverhead() uint64 {
	return current.StructuralOverhead()
}
