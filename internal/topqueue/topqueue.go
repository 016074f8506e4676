// Package topqueue keeps the K "worst" items seen from an unbounded stream,
// using a bounded min-heap so eviction never has to sort the whole cache.
// The comparator is supplied once and reused for both heap ordering and the
// final sorted drain, so "worst" means the same thing in both places.
package topqueue

import "container/heap"

// Less reports whether a sorts before b under the ordering BoundedTop
// should evict first (i.e. the "worse" entry, a stronger eviction
// candidate). The heap root holds the item that is currently the *best*
// (least urgent to evict) of the retained set, so that a newly offered
// worse item can displace it.
type Less[T any] func(a, b T) bool

// BoundedTop retains the `capacity` worst items, according to Less, out of
// an arbitrary number offered via Push; items that don't make the cut are
// simply dropped. `limit` is an upper bound that capacity may not exceed.
type BoundedTop[T any] struct {
	h     *boundedHeap[T]
	limit int
}

// NewBounded constructs a BoundedTop that retains up to capacity items,
// backed by a heap pre-sized for capacity. It panics if capacity exceeds
// limit, mirroring the original implementation's invariant that the
// retained set can never need to hold more than the hard delete limit.
func NewBounded[T any](capacity, limit int, less Less[T]) *BoundedTop[T] {
	if capacity > limit {
		panic("topqueue: capacity exceeds limit")
	}
	h := &boundedHeap[T]{items: make([]T, 0, capacity), less: less}
	heap.Init(h)
	return &BoundedTop[T]{h: h, limit: limit}
}

// Len reports how many items are currently retained.
func (q *BoundedTop[T]) Len() int { return q.h.Len() }

// Push offers an item for retention. If the queue has not yet reached its
// capacity, the item is always kept. Once at capacity, the item replaces
// the current root (the best-of-retained item) only if it is worse than
// the root; otherwise it is discarded. limit bounds how many items the
// queue will ever hold even transiently.
func (q *BoundedTop[T]) Push(item T) {
	if q.h.Len() < cap(q.h.items) && q.h.Len() < q.limit {
		heap.Push(q.h, item)
		return
	}
	if q.h.Len() == 0 {
		return
	}
	// Root is the best-of-retained (weakest eviction candidate). Replace it
	// only if the new item is a stronger candidate than the root.
	if q.h.less(item, q.h.items[0]) {
		q.h.items[0] = item
		heap.Fix(q.h, 0)
	}
}

// Clear empties the queue, retaining its backing capacity.
func (q *BoundedTop[T]) Clear() {
	q.h.items = q.h.items[:0]
}

// IntoSorted drains the queue into a slice ordered from worst to best
// according to Less, leaving the queue empty.
func (q *BoundedTop[T]) IntoSorted() []T {
	out := make([]T, 0, q.h.Len())
	for q.h.Len() > 0 {
		out = append(out, heap.Pop(q.h).(T))
	}
	// heap.Pop yields descending order under Less (best-first); reverse so
	// the worst (strongest eviction candidate) comes first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// boundedHeap implements container/heap.Interface over a user-supplied Less.
type boundedHeap[T any] struct {
	items []T
	less  Less[T]
}

func (h *boundedHeap[T]) Len() int { return len(h.items) }

// Less inverts the caller's ordering so the heap root is the current
// best-of-retained item: the root is the item Less would rank as the
// weakest eviction candidate among those retained, i.e. the one most
// readily displaced by something worse.
func (h *boundedHeap[T]) Less(i, j int) bool {
	return h.less(h.items[j], h.items[i])
}

func (h *boundedHeap[T]) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *boundedHeap[T]) Push(x any) {
	h.items = append(h.items, x.(T))
}

func (h *boundedHeap[T]) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}
