package linesort

import "github.com/tamirms/linesort/internal/record"

// mergeHeap is a min-heap of merge source indices keyed by each source's
// head record. Uses an index-based heap for O(log k) fix/pop.
type mergeHeap struct {
	sources []int           // source indices
	heads   []record.Record // corresponding head records
}

func newMergeHeap(capacity int) *mergeHeap {
	return &mergeHeap{
		sources: make([]int, 0, capacity),
		heads:   make([]record.Record, 0, capacity),
	}
}

func (h *mergeHeap) len() int {
	return len(h.sources)
}

// push adds a source with its head record. O(log k).
func (h *mergeHeap) push(src int, head record.Record) {
	h.sources = append(h.sources, src)
	h.heads = append(h.heads, head)
	h.up(len(h.sources) - 1)
}

// peek returns the minimum without removing it.
func (h *mergeHeap) peek() (int, record.Record) {
	return h.sources[0], h.heads[0]
}

// replaceTop swaps in the next head of the minimum source and restores heap
// order. Cheaper than pop followed by push.
func (h *mergeHeap) replaceTop(head record.Record) {
	h.heads[0] = head
	h.down(0, len(h.sources))
}

func (h *mergeHeap) pop() (int, record.Record) {
	n := len(h.sources) - 1
	h.swap(0, n)
	h.down(0, n)
	src := h.sources[n]
	head := h.heads[n]
	h.sources = h.sources[:n]
	h.heads = h.heads[:n]
	return src, head
}

func (h *mergeHeap) swap(i, j int) {
	h.sources[i], h.sources[j] = h.sources[j], h.sources[i]
	h.heads[i], h.heads[j] = h.heads[j], h.heads[i]
}

func (h *mergeHeap) less(i, j int) bool {
	if c := record.Compare(h.heads[i], h.heads[j]); c != 0 {
		return c < 0
	}
	// Deterministic tie-break by source index
	return h.sources[i] < h.sources[j]
}

func (h *mergeHeap) up(j int) {
	for {
		i := (j - 1) / 2 // parent
		if i == j || !h.less(j, i) {
			break
		}
		h.swap(i, j)
		j = i
	}
}

func (h *mergeHeap) down(i, n int) {
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 {
			break
		}
		j := j1 // left child
		if j2 := j1 + 1; j2 < n && h.less(j2, j1) {
			j = j2 // right child
		}
		if !h.less(j, i) {
			break
		}
		h.swap(i, j)
		i = j
	}
}
