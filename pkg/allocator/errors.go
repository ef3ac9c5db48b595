package allocator

import (
	"errors"
	"fmt"
)

// ArenaMapError reports that the operating system could not satisfy a
// mapping request (spec §7, ArenaMapFailed). It is returned from Init and
// surfaces as a nil return from Malloc when raised by Grow.
type ArenaMapError struct {
	Size int
	Err  error
}

func (e *ArenaMapError) Error() string {
	return fmt.Sprintf("allocator: mmap of %d bytes failed: %v", e.Size, e.Err)
}

func (e *ArenaMapError) Unwrap() error { return e.Err }

// ErrBadRequestSize is the (unreported, not logged) reason Malloc returns
// nil for a zero or negative request (spec §7, BadRequestSize). Malloc
// records it on the allocator so LastMallocErr can report it for
// errors.Is, without changing Malloc's own C-shaped pointer-or-nil return.
var ErrBadRequestSize = errors.New("allocator: request size must be positive")

// InvalidFreeError describes why a call to Free was rejected: the pointer
// did not correspond to a live allocation, or was already freed (spec §7,
// InvalidFree). It is never returned to the caller — Free has no return
// value — but is the value Free formats onto the diagnostic channel, and is
// useful for tests to assert on the specific reason via errors.As.
type InvalidFreeError struct {
	Reason string
}

func (e *InvalidFreeError) Error() string {
	return "allocator: invalid or double free: " + e.Reason
}
