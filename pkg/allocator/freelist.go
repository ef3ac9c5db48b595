package allocator

// freeList is the doubly-linked, address-ordered list of free blocks
// (spec.md §3, §4.2). Keeping it sorted by ascending header address is what
// makes coalescing on insertion cheap: once the insertion point is found,
// both neighbors are known and a single equality test on each decides
// whether to merge.
type freeList struct {
	head *block
}

// insertSorted walks the list from head until it finds the first block whose
// address exceeds b, and splices b in between its predecessor and successor.
// It returns the predecessor and successor at the insertion point so the
// caller can attempt coalescing against both without re-walking.
func (l *freeList) insertSorted(b *block) (prev, next *block) {
	curr := l.head
	for curr != nil && curr.addr() < b.addr() {
		prev = curr
		curr = curr.next
	}
	next = curr

	b.prev = prev
	b.next = next

	if prev != nil {
		prev.next = b
	} else {
		l.head = b
	}
	if next != nil {
		next.prev = b
	}

	return prev, next
}

// unlink removes b from the free list in O(1), given its links.
func (l *freeList) unlink(b *block) {
	if b.prev != nil {
		b.prev.next = b.next
	} else {
		l.head = b.next
	}
	if b.next != nil {
		b.next.prev = b.prev
	}
	b.prev, b.next = nil, nil
}

// coalesceForward absorbs next into b if they are physically adjacent,
// returning true if a merge happened. b must already be linked in place of
// next (next should be b's list successor).
func (l *freeList) coalesceForward(b, next *block) bool {
	if !b.adjoins(next) {
		return false
	}

	b.size += uint32(headerSize) + next.size
	b.next = next.next
	if next.next != nil {
		next.next.prev = b
	}

	return true
}

// coalesceBackward absorbs b into prev if they are physically adjacent,
// returning true if a merge happened. prev must already be linked as b's
// list predecessor.
func (l *freeList) coalesceBackward(prev, b *block) bool {
	if !prev.adjoins(b) {
		return false
	}

	prev.size += uint32(headerSize) + b.size
	prev.next = b.next
	if b.next != nil {
		b.next.prev = prev
	}

	return true
}

// len counts the blocks currently on the list. Used only for the
// structural-overhead counter (§4.7), which is allowed to be computed on
// demand by walking both lists.
func (l *freeList) len() int {
	n := 0
	for b := l.head; b != nil; b = b.next {
		n++
	}
	return n
}
