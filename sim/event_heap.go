package sim

import "container/heap"

// heapEntry pairs an event with its insertion sequence number.
type heapEntry struct {
	event Event
	seq   uint64
}

// EventHeap implements a priority queue with deterministic ordering.
// Ordering: timestamp → kind priority → insertion sequence
type EventHeap struct {
	entries []heapEntry
	nextSeq uint64
}

// NewEventHeap creates a new event heap
func NewEventHeap() *EventHeap {
	h := &EventHeap{
		entries: make([]heapEntry, 0),
	}
	heap.Init(h)
	return h
}

// Len implements heap.Interface
func (h *EventHeap) Len() int {
	return len(h.entries)
}

// Less implements heap.Interface with deterministic ordering
func (h *EventHeap) Less(i, j int) bool {
	ei, ej := h.entries[i], h.entries[j]

	// Primary: timestamp (lower first)
	if ei.event.Timestamp() != ej.event.Timestamp() {
		return ei.event.Timestamp() < ej.event.Timestamp()
	}

	// Secondary: kind priority (departures before arrivals)
	priI := EventKindPriority[ei.event.Kind()]
	priJ := EventKindPriority[ej.event.Kind()]
	if priI != priJ {
		return priI < priJ
	}

	// Tertiary: insertion order
	return ei.seq < ej.seq
}

// Swap implements heap.Interface
func (h *EventHeap) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
}

// Push implements heap.Interface
func (h *EventHeap) Push(x any) {
	h.entries = append(h.entries, x.(heapEntry))
}

// Pop implements heap.Interface
func (h *EventHeap) Pop() any {
	old := h.entries
	n := len(old)
	item := old[n-1]
	old[n-1] = heapEntry{}
	h.entries = old[0 : n-1]
	return item
}

// Schedule adds an event to the heap
func (h *EventHeap) Schedule(e Event) {
	heap.Push(h, heapEntry{event: e, seq: h.nextSeq})
	h.nextSeq++
}

// PopNext removes and returns the next event
func (h *EventHeap) PopNext() Event {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(heapEntry).event
}

// Peek returns the next event without removing it
func (h *EventHeap) Peek() Event {
	if h.Len() == 0 {
		return nil
	}
	return h.entries[0].event
}

// Reset discards all pending events.
func (h *EventHeap) Reset() {
	h.entries = h.entries[:0]
	h.nextSeq = 0
}

// Events returns the pending events in heap (not time) order.
// Callers MUST NOT retain or mutate the returned slice.
func (h *EventHeap) Events() []Event {
	out := make([]Event, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.event
	}
	return out
}
