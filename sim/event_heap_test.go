package sim

import (
	"testing"
)

// TestEventHeap_TimestampOrdering tests that events are popped in timestamp order
func TestEventHeap_TimestampOrdering(t *testing.T) {
	h := NewEventHeap()

	h.Schedule(&ArrivalEvent{time: 1.0})
	h.Schedule(&ArrivalEvent{time: 0.5})
	h.Schedule(&DepartureEvent{time: 1.5, JobID: 3})

	want := []float64{0.5, 1.0, 1.5}
	for i, w := range want {
		ev := h.PopNext()
		if ev.Timestamp() != w {
			t.Errorf("event %d timestamp = %v, want %v", i, ev.Timestamp(), w)
		}
	}
	if h.Len() != 0 {
		t.Errorf("Heap should be empty, len = %d", h.Len())
	}
}

// TestEventHeap_DepartureBeforeArrivalOnTie tests same-timestamp events use kind priority
func TestEventHeap_DepartureBeforeArrivalOnTie(t *testing.T) {
	h := NewEventHeap()

	// Add in reverse priority order
	h.Schedule(&ArrivalEvent{time: 2.0})
	h.Schedule(&DepartureEvent{time: 2.0, JobID: 7})

	if first := h.PopNext(); first.Kind() != EventDeparture {
		t.Errorf("First event kind = %s, want departure", first.Kind())
	}
	if second := h.PopNext(); second.Kind() != EventArrival {
		t.Errorf("Second event kind = %s, want arrival", second.Kind())
	}
}

// TestEventHeap_InsertionOrderTieBreak tests same-timestamp, same-kind events pop in insertion order
func TestEventHeap_InsertionOrderTieBreak(t *testing.T) {
	h := NewEventHeap()
	for id := 0; id < 5; id++ {
		h.Schedule(&DepartureEvent{time: 3.0, JobID: id})
	}
	for want := 0; want < 5; want++ {
		ev := h.PopNext().(*DepartureEvent)
		if ev.JobID != want {
			t.Errorf("popped job %d, want %d", ev.JobID, want)
		}
	}
}

func TestEventHeap_PeekAndEmpty(t *testing.T) {
	h := NewEventHeap()
	if h.Peek() != nil || h.PopNext() != nil {
		t.Fatal("empty heap must return nil from Peek and PopNext")
	}

	h.Schedule(&ArrivalEvent{time: 4})
	h.Schedule(&ArrivalEvent{time: 2})
	if got := h.Peek().Timestamp(); got != 2 {
		t.Errorf("Peek timestamp = %v, want 2", got)
	}
	if h.Len() != 2 {
		t.Errorf("Peek removed an event: len = %d", h.Len())
	}
}

func TestEventHeap_Reset(t *testing.T) {
	h := NewEventHeap()
	h.Schedule(&ArrivalEvent{time: 1})
	h.Schedule(&DepartureEvent{time: 2})

	h.Reset()

	if h.Len() != 0 || len(h.Events()) != 0 {
		t.Errorf("Reset left %d events", h.Len())
	}
	// Sequence numbering restarts, so ties still follow insertion order.
	h.Schedule(&DepartureEvent{time: 1, JobID: 1})
	h.Schedule(&DepartureEvent{time: 1, JobID: 2})
	if ev := h.PopNext().(*DepartureEvent); ev.JobID != 1 {
		t.Errorf("after reset popped job %d, want 1", ev.JobID)
	}
}
