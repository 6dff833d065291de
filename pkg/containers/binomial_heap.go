package containers

import (
	"errors"

	"golang.org/x/exp/constraints"
)

var (
	// ErrEmptyHeap is returned when reading the minimum of an empty heap
	ErrEmptyHeap = errors.New("containers: heap is empty")
	// ErrForeignHandle is returned for a handle that is not in the heap
	ErrForeignHandle = errors.New("containers: handle does not belong to heap")
	// ErrPriorityIncrease is returned when DecreasePriority would raise the priority
	ErrPriorityIncrease = errors.New("containers: new priority is larger than current priority")
)

// owner identifies a heap. Merged heaps forward to the heap that absorbed them.
type owner struct {
	forward *owner
}

func (o *owner) resolve() *owner {
	for o.forward != nil {
		o = o.forward
	}
	return o
}

// Handle refers to an element stored in a BinomialHeap
type Handle[E any, P constraints.Ordered] struct {
	element  E
	priority P
	node     *binomialNode[E, P]
	owner    *owner
}

type binomialNode[E any, P constraints.Ordered] struct {
	entry   *Handle[E, P]
	parent  *binomialNode[E, P]
	child   *binomialNode[E, P] // first child
	sibling *binomialNode[E, P] // next child of the same parent
	rank    int
}

// BinomialHeap is a mergeable min-priority queue with decrease-key support
type BinomialHeap[E any, P constraints.Ordered] struct {
	roots []*binomialNode[E, P]
	count int
	owner *owner
}

// NewBinomialHeap creates an empty heap
func NewBinomialHeap[E any, P constraints.Ordered]() *BinomialHeap[E, P] {
	return &BinomialHeap[E, P]{owner: &owner{}}
}

// Len returns the number of stored elements
func (h *BinomialHeap[E, P]) Len() int {
	return h.count
}

// IsEmpty reports whether the heap holds no elements
func (h *BinomialHeap[E, P]) IsEmpty() bool {
	return h.count == 0
}

// Push inserts an element and returns a handle to it
func (h *BinomialHeap[E, P]) Push(element E, priority P) *Handle[E, P] {
	handle := &Handle[E, P]{element: element, priority: priority, owner: h.owner}
	n := &binomialNode[E, P]{entry: handle}
	handle.node = n
	h.roots = append(h.roots, n)
	h.count++
	h.consolidate()
	return handle
}

// Merge moves every element of other into h. Handles obtained from other
// remain valid and now belong to h. other is left empty.
func (h *BinomialHeap[E, P]) Merge(other *BinomialHeap[E, P]) {
	if other == nil || other == h || other.owner.resolve() == h.owner.resolve() {
		return
	}
	h.roots = append(h.roots, other.roots...)
	h.count += other.count
	other.owner.resolve().forward = h.owner.resolve()
	other.roots = nil
	other.count = 0
	other.owner = &owner{}
	h.consolidate()
}

// Contains reports whether the handle refers to an element still in h
func (h *BinomialHeap[E, P]) Contains(handle *Handle[E, P]) bool {
	return handle != nil && handle.node != nil && handle.owner.resolve() == h.owner.resolve()
}

// Element returns the element behind a handle
func (h *BinomialHeap[E, P]) Element(handle *Handle[E, P]) (E, error) {
	if !h.Contains(handle) {
		var zero E
		return zero, ErrForeignHandle
	}
	return handle.element, nil
}

// Priority returns the current priority behind a handle
func (h *BinomialHeap[E, P]) Priority(handle *Handle[E, P]) (P, error) {
	if !h.Contains(handle) {
		var zero P
		return zero, ErrForeignHandle
	}
	return handle.priority, nil
}

// DecreasePriority lowers the priority of an element and restores heap order
func (h *BinomialHeap[E, P]) DecreasePriority(handle *Handle[E, P], priority P) error {
	if !h.Contains(handle) {
		return ErrForeignHandle
	}
	if priority > handle.priority {
		return ErrPriorityIncrease
	}
	handle.priority = priority

	n := handle.node
	for n.parent != nil && n.entry.priority < n.parent.entry.priority {
		p := n.parent
		n.entry, p.entry = p.entry, n.entry
		n.entry.node = n
		p.entry.node = p
		n = p
	}
	return nil
}

// Min returns the element with the lowest priority without removing it
func (h *BinomialHeap[E, P]) Min() (E, P, error) {
	idx := h.minRoot()
	if idx < 0 {
		var e E
		var p P
		return e, p, ErrEmptyHeap
	}
	entry := h.roots[idx].entry
	return entry.element, entry.priority, nil
}

// PopMin removes and returns the element with the lowest priority
func (h *BinomialHeap[E, P]) PopMin() (E, P, error) {
	idx := h.minRoot()
	if idx < 0 {
		var e E
		var p P
		return e, p, ErrEmptyHeap
	}
	root := h.roots[idx]
	h.roots = append(h.roots[:idx], h.roots[idx+1:]...)
	for c := root.child; c != nil; {
		next := c.sibling
		c.parent = nil
		c.sibling = nil
		h.roots = append(h.roots, c)
		c = next
	}
	h.count--
	h.consolidate()

	entry := root.entry
	entry.node = nil
	return entry.element, entry.priority, nil
}

func (h *BinomialHeap[E, P]) minRoot() int {
	best := -1
	for i, r := range h.roots {
		if best < 0 || r.entry.priority < h.roots[best].entry.priority {
			best = i
		}
	}
	return best
}

// consolidate links roots of equal rank until every rank appears once
func (h *BinomialHeap[E, P]) consolidate() {
	var byRank []*binomialNode[E, P]
	for _, t := range h.roots {
		for t.rank < len(byRank) && byRank[t.rank] != nil {
			other := byRank[t.rank]
			byRank[t.rank] = nil
			t = link(t, other)
		}
		for len(byRank) <= t.rank {
			byRank = append(byRank, nil)
		}
		byRank[t.rank] = t
	}

	h.roots = h.roots[:0]
	for _, t := range byRank {
		if t != nil {
			h.roots = append(h.roots, t)
		}
	}
}

// link makes the larger-priority tree a child of the other
func link[E any, P constraints.Ordered](a, b *binomialNode[E, P]) *binomialNode[E, P] {
	if b.entry.priority < a.entry.priority {
		a, b = b, a
	}
	b.parent = a
	b.sibling = a.child
	a.child = b
	a.rank++
	return a
}
