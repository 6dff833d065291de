package containers

import (
	"errors"
	"sort"
	"testing"

	"golang.org/x/exp/rand"
)

func drain(t *testing.T, h *BinomialHeap[string, int]) []int {
	t.Helper()
	var out []int
	for !h.IsEmpty() {
		_, p, err := h.PopMin()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		out = append(out, p)
	}
	return out
}

func TestBinomialHeapOrdering(t *testing.T) {
	h := NewBinomialHeap[string, int]()
	priorities := []int{5, 3, 8, 1, 9, 2, 7, 3, 0, 6}
	for _, p := range priorities {
		h.Push("x", p)
	}
	if h.Len() != len(priorities) {
		t.Fatalf("Expected %d elements, got %d", len(priorities), h.Len())
	}

	got := drain(t, h)
	expected := append([]int(nil), priorities...)
	sort.Ints(expected)
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("Position %d: expected %d, got %d", i, expected[i], got[i])
		}
	}
}

func TestBinomialHeapMinOnEmpty(t *testing.T) {
	h := NewBinomialHeap[string, int]()
	if _, _, err := h.Min(); !errors.Is(err, ErrEmptyHeap) {
		t.Errorf("Expected ErrEmptyHeap from Min, got %v", err)
	}
	if _, _, err := h.PopMin(); !errors.Is(err, ErrEmptyHeap) {
		t.Errorf("Expected ErrEmptyHeap from PopMin, got %v", err)
	}
}

func TestBinomialHeapHandles(t *testing.T) {
	h := NewBinomialHeap[string, int]()
	a := h.Push("a", 10)
	b := h.Push("b", 20)
	c := h.Push("c", 30)

	if err := h.DecreasePriority(c, 5); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p, _ := h.Priority(c); p != 5 {
		t.Errorf("Expected priority 5, got %d", p)
	}
	if e, _, _ := h.Min(); e != "c" {
		t.Errorf("Expected c at the top, got %s", e)
	}
	if err := h.DecreasePriority(b, 25); !errors.Is(err, ErrPriorityIncrease) {
		t.Errorf("Expected ErrPriorityIncrease, got %v", err)
	}

	e, _, _ := h.PopMin()
	if e != "c" {
		t.Errorf("Expected c, got %s", e)
	}
	if h.Contains(c) {
		t.Error("Removed handle still reported as contained")
	}
	if _, err := h.Element(c); !errors.Is(err, ErrForeignHandle) {
		t.Errorf("Expected ErrForeignHandle, got %v", err)
	}
	if el, err := h.Element(a); err != nil || el != "a" {
		t.Errorf("Expected a, got %s (%v)", el, err)
	}
}

func TestBinomialHeapDecreaseDeepNode(t *testing.T) {
	h := NewBinomialHeap[int, int]()
	handles := make([]*Handle[int, int], 64)
	for i := range handles {
		handles[i] = h.Push(i, 100+i)
	}
	if err := h.DecreasePriority(handles[63], 0); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	e, p, _ := h.PopMin()
	if e != 63 || p != 0 {
		t.Errorf("Expected element 63 with priority 0, got %d with %d", e, p)
	}
	// every other handle still resolves to its own element
	for i, hd := range handles[:63] {
		if el, _ := h.Element(hd); el != i {
			t.Fatalf("Handle %d resolves to %d", i, el)
		}
	}
}

func TestBinomialHeapMerge(t *testing.T) {
	a := NewBinomialHeap[string, int]()
	b := NewBinomialHeap[string, int]()
	a.Push("a1", 4)
	a.Push("a2", 1)
	hb := b.Push("b1", 3)
	b.Push("b2", 2)

	a.Merge(b)
	if a.Len() != 4 || !b.IsEmpty() {
		t.Fatalf("Expected 4 and 0 elements, got %d and %d", a.Len(), b.Len())
	}
	if !a.Contains(hb) {
		t.Error("Handle from merged heap should belong to the target heap")
	}
	if b.Contains(hb) {
		t.Error("Handle should no longer belong to the emptied heap")
	}
	if err := a.DecreasePriority(hb, 0); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got := drain(t, a)
	expected := []int{0, 1, 2, 4}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("Position %d: expected %d, got %d", i, expected[i], got[i])
		}
	}
}

func TestBinomialHeapRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	h := NewBinomialHeap[int, float32]()
	var handles []*Handle[int, float32]
	for i := 0; i < 300; i++ {
		handles = append(handles, h.Push(i, rng.Float32()*100))
	}
	for i := 0; i < 100; i++ {
		hd := handles[rng.Intn(len(handles))]
		p, _ := h.Priority(hd)
		_ = h.DecreasePriority(hd, p-rng.Float32()*10)
	}

	last := float32(-1e9)
	for !h.IsEmpty() {
		_, p, _ := h.PopMin()
		if p < last {
			t.Fatalf("Heap order violated: %v after %v", p, last)
		}
		last = p
	}
}
