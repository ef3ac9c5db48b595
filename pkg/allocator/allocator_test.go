package allocator_test

import (
	"bytes"
	"errors"
	"testing"
	"unsafe"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/require"

	"github.com/aaronshuang/cs429-06-memory-allocator/internal/diag"
	"github.com/aaronshuang/cs429-06-memory-allocator/pkg/allocator"
)

// swapDiagWriter redirects the diagnostic channel to buf for the duration of
// a test, returning a func to restore the previous writer.
func swapDiagWriter(buf *bytes.Buffer) (restore func()) {
	prev := diag.Writer
	diag.Writer = buf
	return func() { diag.Writer = prev }
}

var allPolicies = []allocator.Policy{allocator.FirstFit, allocator.BestFit, allocator.WorstFit}

const onePage = 4096

func forEachPolicy(t *testing.T, run func(t *testing.T, p allocator.Policy)) {
	t.Helper()
	for _, p := range allPolicies {
		p := p
		t.Run(p.String(), func(t *testing.T) { run(t, p) })
	}
}

// TestBasicWrite reproduces original_source/main.c's "Test 1: Basic
// Allocation and Writing".
func TestBasicWrite(t *testing.T) {
	forEachPolicy(t, func(t *testing.T, p allocator.Policy) {
		Convey("Given a freshly initialized allocator", t, func() {
			a := allocator.New(p)
			require.NoError(t, a.Init(onePage))

			Convey("When 16 bytes are allocated and written", func() {
				buf := a.MallocBytes(16)
				So(buf, ShouldNotBeNil)
				copy(buf, "Hello World!!")

				Convey("Then the bytes read back unchanged", func() {
					So(string(buf[:13]), ShouldEqual, "Hello World!!")
				})

				Convey("Then freeing it drops currently-allocated to zero", func() {
					a.FreeBytes(buf)
					So(a.CurrentlyAllocatedMemory(), ShouldEqual, uint64(0))
				})
			})
		})
	})
}

// TestSplitAndCoalesce reproduces "Test 2" + "Test 5" of main.c: splitting
// three successive allocations out of one page, then coalescing all three
// back together (freeing out of address order) so a large request is
// satisfied without growing the arena.
func TestSplitAndCoalesce(t *testing.T) {
	forEachPolicy(t, func(t *testing.T, p allocator.Policy) {
		a := allocator.New(p)
		require.NoError(t, a.Init(onePage))

		p1 := a.Malloc(16)
		p2 := a.Malloc(32)
		p3 := a.Malloc(64)
		require.NotNil(t, p1)
		require.NotNil(t, p2)
		require.NotNil(t, p3)
		require.NotEqual(t, p1, p2)
		require.NotEqual(t, p2, p3)
		require.Less(t, uintptr(p1), uintptr(p2))
		require.Less(t, uintptr(p2), uintptr(p3))

		// Free the middle block, then the tail, then the head: this forces
		// the coalesce logic to check both physical neighbors.
		a.Free(p2)
		a.Free(p3)
		a.Free(p1)

		massive := a.Malloc(4000)
		require.NotNil(t, massive)
		require.EqualValues(t, onePage, a.TotalMappedMemory())

		a.Free(massive)
		require.EqualValues(t, 0, a.CurrentlyAllocatedMemory())
	})
}

// TestInvalidFree reproduces "Test 3" of main.c: freeing a pointer to a
// local variable (never allocated by this allocator) must be rejected
// without crashing or mutating state.
func TestInvalidFree(t *testing.T) {
	forEachPolicy(t, func(t *testing.T, p allocator.Policy) {
		a := allocator.New(p)
		require.NoError(t, a.Init(onePage))

		var fakePtr int
		before := a.CurrentlyAllocatedMemory()

		a.Free(unsafe.Pointer(&fakePtr))

		require.Equal(t, before, a.CurrentlyAllocatedMemory())

		// Subsequent allocation still works.
		require.NotNil(t, a.Malloc(8))
	})
}

// TestDoubleFree reproduces "Test 4" of main.c.
func TestDoubleFree(t *testing.T) {
	forEachPolicy(t, func(t *testing.T, p allocator.Policy) {
		a := allocator.New(p)
		require.NoError(t, a.Init(onePage))

		ptr := a.Malloc(32)
		require.NotNil(t, ptr)

		a.Free(ptr)
		require.EqualValues(t, 0, a.CurrentlyAllocatedMemory())

		a.Free(ptr) // should be rejected, not re-free

		require.EqualValues(t, 0, a.CurrentlyAllocatedMemory())
		require.Equal(t, 1, countFree(a))
	})
}

// TestBadRequestSize asserts that a non-positive request is rejected with
// no state change, and that LastMallocErr reports ErrBadRequestSize (spec.md
// §7, BadRequestSize) so callers that care can distinguish it from an
// ArenaMapError via errors.Is/errors.As.
func TestBadRequestSize(t *testing.T) {
	forEachPolicy(t, func(t *testing.T, p allocator.Policy) {
		a := allocator.New(p)
		require.NoError(t, a.Init(onePage))

		require.Nil(t, a.Malloc(0))
		require.True(t, errors.Is(a.LastMallocErr(), allocator.ErrBadRequestSize))

		require.Nil(t, a.Malloc(-1))
		require.True(t, errors.Is(a.LastMallocErr(), allocator.ErrBadRequestSize))

		// A subsequent successful Malloc clears the recorded error.
		require.NotNil(t, a.Malloc(8))
		require.NoError(t, a.LastMallocErr())
	})
}

// TestInvalidFreeReportsDiagnostic asserts that Free's invalid/double-free
// path actually constructs and formats an InvalidFreeError onto the
// diagnostic channel, rather than a bare, untyped string.
func TestInvalidFreeReportsDiagnostic(t *testing.T) {
	a := allocator.New(allocator.FirstFit)
	require.NoError(t, a.Init(onePage))

	var buf bytes.Buffer
	restore := swapDiagWriter(&buf)
	defer restore()

	var fakePtr int
	a.Free(unsafe.Pointer(&fakePtr))

	require.Contains(t, buf.String(), "invalid or double free")
}

// TestGrowth reproduces "Test 6" of main.c: requesting more than one page
// forces the arena to map additional memory.
func TestGrowth(t *testing.T) {
	forEachPolicy(t, func(t *testing.T, p allocator.Policy) {
		a := allocator.New(p)
		require.NoError(t, a.Init(onePage))

		ptr := a.Malloc(5000)
		require.NotNil(t, ptr)
		require.GreaterOrEqual(t, a.TotalMappedMemory(), uint64(2*onePage))

		a.Free(ptr)
		require.EqualValues(t, 0, a.CurrentlyAllocatedMemory())
	})
}

// TestPolicyDivergence reproduces the "Policy divergence" law from
// spec.md §8, scenario 6: four allocations of sizes 100, 200, 100, 200;
// freeing the second and fourth leaves the second as a 200-byte hole and
// merges the fourth into the still-free rest of the page, and each policy's
// choice between those two free blocks is exercised by a subsequent
// malloc(50). Only the absence of growth is asserted.
func TestPolicyDivergence(t *testing.T) {
	forEachPolicy(t, func(t *testing.T, p allocator.Policy) {
		a := allocator.New(p)
		require.NoError(t, a.Init(onePage))

		p1 := a.Malloc(100)
		p2 := a.Malloc(200)
		p3 := a.Malloc(100)
		p4 := a.Malloc(200)
		require.NotNil(t, p1)
		require.NotNil(t, p3)

		a.Free(p2)
		a.Free(p4)

		got := a.Malloc(50)
		require.NotNil(t, got)

		// Whichever free block is used, both fit the request, so no growth
		// should have been necessary.
		require.EqualValues(t, onePage, a.TotalMappedMemory())
	})
}

func countFree(a *allocator.Allocator) int {
	n := 0
	a.WalkFree(func(uintptr, uint32) { n++ })
	return n
}
