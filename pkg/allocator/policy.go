package allocator

import "github.com/aaronshuang/cs429-06-memory-allocator/pkg/opt"

// Policy selects which candidate free block satisfies a request (spec.md
// §4.4). All three walk the entire free list (FirstFit may stop early); none
// require auxiliary index structures.
type Policy int

const (
	// FirstFit returns the first free block, by ascending address, whose
	// size is at least the aligned request size.
	FirstFit Policy = iota
	// BestFit returns the free block with the smallest size satisfying the
	// request, ties broken by lowest address.
	BestFit
	// WorstFit returns the free block with the largest size (which must
	// still satisfy the request), ties broken by lowest address.
	WorstFit
)

func (p Policy) String() string {
	switch p {
	case FirstFit:
		return "first-fit"
	case BestFit:
		return "best-fit"
	case WorstFit:
		return "worst-fit"
	default:
		return "unknown-policy"
	}
}

// ParsePolicy parses a policy by its String() name, accepting the common
// aliases "first", "best", and "worst" as well. Used by cmd/tdmmbench's -policy flag.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "first-fit", "first", "firstfit":
		return FirstFit, nil
	case "best-fit", "best", "bestfit":
		return BestFit, nil
	case "worst-fit", "worst", "worstfit":
		return WorstFit, nil
	default:
		return 0, errUnknownPolicy{s}
	}
}

type errUnknownPolicy struct{ s string }

func (e errUnknownPolicy) Error() string {
	return "allocator: unknown policy " + e.s
}

// selectBlock walks free, by ascending address, for the block this policy
// would choose to satisfy a request of aligned bytes, or opt.None if no free
// block is large enough.
func (p Policy) selectBlock(free *freeList, aligned uint32) opt.Option[*block] {
	switch p {
	case FirstFit:
		return selectFirstFit(free, aligned)
	case BestFit:
		return selectBestFit(free, aligned)
	case WorstFit:
		return selectWorstFit(free, aligned)
	default:
		return opt.None[*block]()
	}
}

func selectFirstFit(free *freeList, aligned uint32) opt.Option[*block] {
	for curr := free.head; curr != nil; curr = curr.next {
		if curr.size >= aligned {
			return opt.Some(curr)
		}
	}
	return opt.None[*block]()
}

func selectBestFit(free *freeList, aligned uint32) opt.Option[*block] {
	var best *block
	for curr := free.head; curr != nil; curr = curr.next {
		if curr.size >= aligned && (best == nil || curr.size < best.size) {
			best = curr
		}
	}
	if best == nil {
		return opt.None[*block]()
	}
	return opt.Some(best)
}

func selectWorstFit(free *freeList, aligned uint32) opt.Option[*block] {
	var worst *block
	for curr := free.head; curr != nil; curr = curr.next {
		if curr.size >= aligned && (worst == nil || curr.size > worst.size) {
			worst = curr
		}
	}
	if worst == nil {
		return opt.None[*block]()
	}
	return opt.Some(worst)
}
