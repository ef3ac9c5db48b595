// Command tdmmbench drives a mixed malloc/free workload against
// pkg/allocator under each placement policy in turn (or only the one named
// by -policy), sampling throughput in fixed-size windows and emitting the
// results as CSV.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"
	"unsafe"

	"github.com/dolthub/maphash"

	"github.com/aaronshuang/cs429-06-memory-allocator/internal/xflag"
	"github.com/aaronshuang/cs429-06-memory-allocator/pkg/allocator"
)

var (
	policyFlag = xflag.Func("policy", "placement policy: first-fit, best-fit, or worst-fit", allocator.ParsePolicy)
	ops        = flag.Int("ops", 200_000, "total number of malloc/free operations to perform")
	window     = flag.Int("window", 5_000, "operations per reported sample window")
	minSize    = flag.Int("min-size", 8, "minimum request size in bytes")
	maxSize    = flag.Int("max-size", 512, "maximum request size in bytes")
	freeProb   = flag.Float64("free-prob", 0.45, "probability of a free (vs. malloc) once the live set is non-empty")
	seed       = flag.Int64("seed", 1, "PRNG seed, for reproducible runs")
	initial    = flag.Int("initial", 4096, "initial arena size in bytes, rounded up to a page")
)

// liveSet tracks outstanding allocations, supporting O(1) insert, O(1)
// swap-delete of an arbitrary member, and a running fingerprint so two runs
// with the same seed can be compared for accounting drift without diffing
// every pointer by hand.
type liveSet struct {
	ptrs        []unsafe.Pointer
	hasher      maphash.Hasher[uintptr]
	fingerprint uint64
}

func newLiveSet() *liveSet {
	return &liveSet{hasher: maphash.NewHasher[uintptr]()}
}

func (s *liveSet) add(p unsafe.Pointer) {
	s.ptrs = append(s.ptrs, p)
	s.fingerprint ^= s.hasher.Hash(uintptr(p))
}

func (s *liveSet) removeAt(i int) unsafe.Pointer {
	p := s.ptrs[i]
	s.fingerprint ^= s.hasher.Hash(uintptr(p))

	last := len(s.ptrs) - 1
	s.ptrs[i] = s.ptrs[last]
	s.ptrs = s.ptrs[:last]
	return p
}

func (s *liveSet) len() int { return len(s.ptrs) }

type sample struct {
	policy             allocator.Policy
	window             int
	ops                int
	nsPerOp            float64
	totalMapped        uint64
	currentlyAllocated uint64
	structuralOverhead uint64
	liveSetFingerprint uint64
}

func runWindows(policy allocator.Policy) ([]sample, error) {
	a := allocator.New(policy)
	if err := a.Init(*initial); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	live := newLiveSet()

	var samples []sample
	windowStart := time.Now()

	for i := 0; i < *ops; i++ {
		if live.len() > 0 && rng.Float64() < *freeProb {
			idx := rng.Intn(live.len())
			a.Free(live.removeAt(idx))
		} else {
			size := *minSize
			if *maxSize > *minSize {
				size += rng.Intn(*maxSize - *minSize + 1)
			}
			if p := a.Malloc(size); p != nil {
				live.add(p)
			}
		}

		if (i+1)%*window == 0 {
			elapsed := time.Since(windowStart)
			samples = append(samples, sample{
				policy:             policy,
				window:             len(samples) + 1,
				ops:                *window,
				nsPerOp:            float64(elapsed.Nanoseconds()) / float64(*window),
				totalMapped:        a.TotalMappedMemory(),
				currentlyAllocated: a.CurrentlyAllocatedMemory(),
				structuralOverhead: a.StructuralOverhead(),
				liveSetFingerprint: live.fingerprint,
			})
			windowStart = time.Now()
		}
	}

	return samples, nil
}

func main() {
	flag.Parse()

	policies := []allocator.Policy{allocator.FirstFit, allocator.BestFit, allocator.WorstFit}
	if xflag.Parsed("policy") {
		policies = []allocator.Policy{*policyFlag}
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	_ = w.Write([]string{
		"policy", "window", "ops", "ns_per_op",
		"total_mapped", "currently_allocated", "structural_overhead",
		"live_set_fingerprint",
	})

	for _, policy := range policies {
		samples, err := runWindows(policy)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tdmmbench: %s: %v\n", policy, err)
			os.Exit(1)
		}

		for _, s := range samples {
			_ = w.Write([]string{
				s.policy.String(),
				strconv.Itoa(s.window),
				strconv.Itoa(s.ops),
				strconv.FormatFloat(s.nsPerOp, 'f', 2, 64),
				strconv.FormatUint(s.totalMapped, 10),
				strconv.FormatUint(s.currentlyAllocated, 10),
				strconv.FormatUint(s.structuralOverhead, 10),
				strconv.FormatUint(s.liveSetFingerprint, 10),
			})
		}
	}
}
