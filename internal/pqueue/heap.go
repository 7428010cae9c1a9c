// Package pqueue provides an indexed binary min-heap.
//
// Items are identified by a dense integer key so that membership tests and
// in-place key updates are O(1) lookups followed by an O(log n) sift.
package pqueue

// Heap is a binary min-heap ordered by less. Each item maps to a unique key in
// [0, capacity) via the key function; an item may be queued at most once.
// Not safe for concurrent use.
type Heap[T any] struct {
	items []T
	pos   []int32 // pos[key] = heap position + 1; 0 = not queued
	less  func(a, b T) bool
	key   func(T) int
}

// New creates a heap for items whose keys lie in [0, capacity).
func New[T any](capacity int, less func(a, b T) bool, key func(T) int) *Heap[T] {
	return &Heap[T]{
		items: make([]T, 0, 64),
		pos:   make([]int32, capacity),
		less:  less,
		key:   key,
	}
}

// Len returns the number of queued items.
func (h *Heap[T]) Len() int { return len(h.items) }

// Push inserts item. Pushing an item already queued is equivalent to Update.
func (h *Heap[T]) Push(item T) {
	k := h.key(item)
	if p := h.pos[k]; p != 0 {
		h.items[p-1] = item
		h.fix(int(p - 1))
		return
	}
	h.items = append(h.items, item)
	i := len(h.items) - 1
	h.pos[k] = int32(i + 1)
	h.up(i)
}

// Pop removes and returns the minimum item. ok is false when the heap is empty.
func (h *Heap[T]) Pop() (item T, ok bool) {
	n := len(h.items)
	if n == 0 {
		return item, false
	}
	item = h.items[0]
	last := n - 1
	if last > 0 {
		h.swap(0, last)
	}
	h.items = h.items[:last]
	h.pos[h.key(item)] = 0
	if last > 0 {
		h.down(0)
	}
	return item, true
}

// Peek returns the minimum item without removing it.
func (h *Heap[T]) Peek() (item T, ok bool) {
	if len(h.items) == 0 {
		return item, false
	}
	return h.items[0], true
}

// Contains reports whether item is queued.
func (h *Heap[T]) Contains(item T) bool {
	return h.pos[h.key(item)] != 0
}

// Update restores heap order after the ordering key of a queued item changed.
// It is a no-op when the item is not queued.
func (h *Heap[T]) Update(item T) {
	p := h.pos[h.key(item)]
	if p == 0 {
		return
	}
	h.items[p-1] = item
	h.fix(int(p - 1))
}

// Clear empties the heap, keeping its storage for reuse.
func (h *Heap[T]) Clear() {
	for _, it := range h.items {
		h.pos[h.key(it)] = 0
	}
	h.items = h.items[:0]
}

func (h *Heap[T]) fix(i int) {
	if !h.up(i) {
		h.down(i)
	}
}

// up sifts i towards the root and reports whether it moved.
func (h *Heap[T]) up(i int) bool {
	start := i
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(h.items[i], h.items[parent]) {
			break
		}
		h.swap(i, parent)
		i = parent
	}
	return i != start
}

func (h *Heap[T]) down(i int) {
	n := len(h.items)
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		smallest := left
		if right := left + 1; right < n && h.less(h.items[right], h.items[left]) {
			smallest = right
		}
		if !h.less(h.items[smallest], h.items[i]) {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}

func (h *Heap[T]) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.pos[h.key(h.items[i])] = int32(i + 1)
	h.pos[h.key(h.items[j])] = int32(j + 1)
}
