package tdmm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aaronshuang/cs429-06-memory-allocator/pkg/allocator"
	"github.com/aaronshuang/cs429-06-memory-allocator/pkg/tdmm"
)

func TestInitMallocFree(t *testing.T) {
	for _, policy := range []allocator.Policy{allocator.FirstFit, allocator.BestFit, allocator.WorstFit} {
		t.Run(policy.String(), func(t *testing.T) {
			require.NoError(t, tdmm.Init(policy))

			require.EqualValues(t, 4096, tdmm.GetTotalMappedMemory())
			require.EqualValues(t, 0, tdmm.GetCurrentlyAllocatedMemory())

			ptr := tdmm.Malloc(64)
			require.NotNil(t, ptr)
			require.NotZero(t, tdmm.GetCurrentlyAllocatedMemory())
			require.NotZero(t, tdmm.GetStructuralOverhead())

			tdmm.Free(ptr)
			require.EqualValues(t, 0, tdmm.GetCurrentlyAllocatedMemory())
		})
	}
}

func TestReinitReplacesAllocator(t *testing.T) {
	require.NoError(t, tdmm.Init(allocator.FirstFit))
	ptr := tdmm.Malloc(32)
	require.NotNil(t, ptr)

	require.NoError(t, tdmm.Init(allocator.WorstFit))
	require.EqualValues(t, 0, tdmm.GetCurrentlyAllocatedMemory())
}
