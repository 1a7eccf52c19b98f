package sim

import "container/heap"

// PriorityKey computes the priority key of an item at push time.
// Lower keys are popped first. seq is the discipline-internal push sequence number.
type PriorityKey[T any] func(item T, seq uint64) float64

// SequenceKey keys items by push sequence number, which makes Priority
// behave exactly like FIFO.
func SequenceKey[T any](_ T, seq uint64) float64 {
	return float64(seq)
}

// ShortestServiceKey keys jobs by their sampled service time (shortest job first).
// Warning: starves long jobs under sustained load.
func ShortestServiceKey(job *Job, _ uint64) float64 {
	return job.ServiceTime
}

type priorityItem[T any] struct {
	item T
	key  float64
	seq  uint64
}

type priorityHeap[T any] []priorityItem[T]

func (h priorityHeap[T]) Len() int { return len(h) }
func (h priorityHeap[T]) Less(i, j int) bool {
	if h[i].key != h[j].key {
		return h[i].key < h[j].key
	}
	return h[i].seq < h[j].seq
}
func (h priorityHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *priorityHeap[T]) Push(x any)   { *h = append(*h, x.(priorityItem[T])) }
func (h *priorityHeap[T]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = priorityItem[T]{}
	*h = old[:n-1]
	return item
}

// Priority pops the item with the lowest key; equal keys pop in push order.
type Priority[T any] struct {
	name    string
	keyFn   PriorityKey[T]
	items   priorityHeap[T]
	nextSeq uint64
}

// NewPriority creates a Priority discipline. A nil keyFn uses SequenceKey.
func NewPriority[T any](name string, keyFn PriorityKey[T]) *Priority[T] {
	if keyFn == nil {
		keyFn = SequenceKey[T]
	}
	if name == "" {
		name = "PRIORITY"
	}
	return &Priority[T]{name: name, keyFn: keyFn}
}

func (q *Priority[T]) Push(item T) {
	seq := q.nextSeq
	q.nextSeq++
	heap.Push(&q.items, priorityItem[T]{item: item, key: q.keyFn(item, seq), seq: seq})
}

func (q *Priority[T]) Pop() (T, error) {
	if len(q.items) == 0 {
		var zero T
		return zero, ErrEmptyQueue
	}
	return heap.Pop(&q.items).(priorityItem[T]).item, nil
}

func (q *Priority[T]) IsEmpty() bool        { return len(q.items) == 0 }
func (q *Priority[T]) Len() int             { return len(q.items) }
func (q *Priority[T]) Name() string         { return q.name }
func (q *Priority[T]) Fresh() Discipline[T] { return NewPriority(q.name, q.keyFn) }
