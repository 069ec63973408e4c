package searcher

// PriorityQueueItem represents an item in the priority queue.
type PriorityQueueItem[T any] struct {
	Value    T       // Value is the payload of the item, a node or an entity id.
	Distance float32 // Distance is the priority of the item in the queue.
}

// PriorityQueue implements a binary heap holding PriorityQueueItems.
// Storage is value based for cache locality. It does NOT implement
// container/heap to avoid interface overhead.
type PriorityQueue[T any] struct {
	isMaxHeap bool                   // true = max heap, false = min heap
	items     []PriorityQueueItem[T] // Value-based storage
}

// NewPriorityQueue creates a new priority queue.
func NewPriorityQueue[T any](isMaxHeap bool) *PriorityQueue[T] {
	return &PriorityQueue[T]{
		isMaxHeap: isMaxHeap,
		items:     make([]PriorityQueueItem[T], 0, 16),
	}
}

// Reset clears the priority queue for reuse. Payloads are zeroed so a
// pooled queue does not pin them.
func (pq *PriorityQueue[T]) Reset() {
	clear(pq.items)
	pq.items = pq.items[:0]
}

// TopItem returns the top element of the heap.
func (pq *PriorityQueue[T]) TopItem() (PriorityQueueItem[T], bool) {
	if len(pq.items) == 0 {
		return PriorityQueueItem[T]{}, false
	}
	return pq.items[0], true
}

// PushItem inserts an item while maintaining the heap invariant.
func (pq *PriorityQueue[T]) PushItem(item PriorityQueueItem[T]) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// PushItemBounded inserts an item into a bounded heap and reports whether it
// was kept. If the heap is full and the new item is not better than the top,
// it is skipped; otherwise the top is replaced.
func (pq *PriorityQueue[T]) PushItemBounded(item PriorityQueueItem[T], capacity int) bool {
	if capacity <= 0 {
		return false
	}
	if len(pq.items) < capacity {
		pq.PushItem(item)
		return true
	}

	top := pq.items[0]
	if pq.isMaxHeap {
		// MaxHeap keeps the smallest distances; top is the worst of them.
		if item.Distance < top.Distance {
			pq.items[0] = item
			pq.siftDown(0)
			return true
		}
		return false
	}
	// MinHeap keeps the largest distances.
	if item.Distance > top.Distance {
		pq.items[0] = item
		pq.siftDown(0)
		return true
	}
	return false
}

// PopItem removes and returns the top element from the heap.
func (pq *PriorityQueue[T]) PopItem() (PriorityQueueItem[T], bool) {
	n := len(pq.items)
	if n == 0 {
		return PriorityQueueItem[T]{}, false
	}

	item := pq.items[0]
	pq.items[0] = pq.items[n-1]
	pq.items[n-1] = PriorityQueueItem[T]{}
	pq.items = pq.items[:n-1]

	if len(pq.items) > 0 {
		pq.siftDown(0)
	}

	return item, true
}

// Len returns the number of elements in the heap.
func (pq *PriorityQueue[T]) Len() int {
	return len(pq.items)
}

// Drain pops every item and returns them ordered ascending by distance,
// regardless of heap orientation. The queue is empty afterwards.
func (pq *PriorityQueue[T]) Drain() []PriorityQueueItem[T] {
	out := make([]PriorityQueueItem[T], len(pq.items))
	if pq.isMaxHeap {
		for i := len(out) - 1; i >= 0; i-- {
			out[i], _ = pq.PopItem()
		}
		return out
	}
	for i := range out {
		out[i], _ = pq.PopItem()
	}
	return out
}

func (pq *PriorityQueue[T]) less(i, j int) bool {
	if pq.isMaxHeap {
		return pq.items[i].Distance > pq.items[j].Distance
	}
	return pq.items[i].Distance < pq.items[j].Distance
}

// siftUp moves the element at index i up the heap until the heap invariant is restored.
func (pq *PriorityQueue[T]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !pq.less(i, parent) {
			break
		}
		pq.items[i], pq.items[parent] = pq.items[parent], pq.items[i]
		i = parent
	}
}

// siftDown moves the element at index i down the heap until the heap invariant is restored.
func (pq *PriorityQueue[T]) siftDown(i int) {
	n := len(pq.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		right := left + 1
		if right < n && pq.less(right, left) {
			child = right
		}
		if !pq.less(child, i) {
			break
		}
		pq.items[i], pq.items[child] = pq.items[child], pq.items[i]
		i = child
	}
}
