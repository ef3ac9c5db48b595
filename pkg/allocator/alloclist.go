package allocator

// allocList is the unordered doubly-linked list of currently handed-out
// blocks (spec.md §3, §4.3). It exists purely so free() can validate its
// argument and detect double frees in O(n).
type allocList struct {
	head *block
}

// push inserts b at the head in O(1).
func (l *allocList) push(b *block) {
	b.prev = nil
	b.next = l.head
	if l.head != nil {
		l.head.prev = b
	}
	l.head = b
}

// unlink removes b from the list in O(1), given its links.
func (l *allocList) unlink(b *block) {
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

// contains performs the linear scan that backs the defensive-free contract:
// a pointer may only be freed if it identifies a block currently on this
// list.
func (l *allocList) contains(target *block) bool {
	for curr := l.head; curr != nil; curr = curr.next {
		if curr == target {
			return true
		}
	}
	return false
}

// len counts the blocks currently on the list.
func (l *allocList) len() int {
	n := 0
	for b := l.head; b != nil; b = b.next {
		n++
	}
	return n
}
