// Implements the buffer disciplines that hold jobs waiting for a free server.
// Jobs are pushed on arrival when every server is busy and popped when a server frees.

package sim

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Discipline orders buffered items for dispatch.
// Pop returns ErrEmptyQueue when nothing is buffered.
// Fresh returns an empty instance with the same kind and parameters.
type Discipline[T any] interface {
	Push(item T)
	Pop() (T, error)
	IsEmpty() bool
	Len() int
	Name() string
	Fresh() Discipline[T]
}

// FIFO pops items in strict push order.
type FIFO[T any] struct {
	queue []T
}

// NewFIFO creates an empty FIFO discipline.
func NewFIFO[T any]() *FIFO[T] {
	return &FIFO[T]{}
}

// Push adds an item to the back of the queue.
func (q *FIFO[T]) Push(item T) {
	q.queue = append(q.queue, item)
}

// Pop removes the item at the front of the queue.
func (q *FIFO[T]) Pop() (T, error) {
	var zero T
	if len(q.queue) == 0 {
		return zero, ErrEmptyQueue
	}
	item := q.queue[0]
	q.queue[0] = zero
	q.queue = q.queue[1:]
	return item, nil
}

func (q *FIFO[T]) IsEmpty() bool        { return len(q.queue) == 0 }
func (q *FIFO[T]) Len() int             { return len(q.queue) }
func (q *FIFO[T]) Name() string         { return "FIFO" }
func (q *FIFO[T]) Fresh() Discipline[T] { return NewFIFO[T]() }

// String renders the discipline name and the buffered items front to back,
// e.g. "FIFO[1 2]".
func (q *FIFO[T]) String() string {
	var sb strings.Builder
	sb.WriteString(q.Name())
	sb.WriteString("[")
	for i, val := range q.queue {
		sb.WriteString(fmt.Sprint(val))
		if i < len(q.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// LIFO pops the most recently pushed item.
type LIFO[T any] struct {
	stack []T
}

// NewLIFO creates an empty LIFO discipline.
func NewLIFO[T any]() *LIFO[T] {
	return &LIFO[T]{}
}

func (q *LIFO[T]) Push(item T) {
	q.stack = append(q.stack, item)
}

func (q *LIFO[T]) Pop() (T, error) {
	var zero T
	n := len(q.stack)
	if n == 0 {
		return zero, ErrEmptyQueue
	}
	item := q.stack[n-1]
	q.stack[n-1] = zero
	q.stack = q.stack[:n-1]
	return item, nil
}

func (q *LIFO[T]) IsEmpty() bool        { return len(q.stack) == 0 }
func (q *LIFO[T]) Len() int             { return len(q.stack) }
func (q *LIFO[T]) Name() string         { return "LIFO" }
func (q *LIFO[T]) Fresh() Discipline[T] { return NewLIFO[T]() }

// Random pops a uniformly selected buffered item, removed in O(1) by
// swapping it with the last item.
type Random[T any] struct {
	items []T
	rng   *rand.Rand
}

// NewRandom creates an empty Random discipline drawing from rng.
// A nil rng gets an entropy-seeded source.
func NewRandom[T any](rng *rand.Rand) *Random[T] {
	if rng == nil {
		rng = rand.New(newEntropySource())
	}
	return &Random[T]{rng: rng}
}

func (q *Random[T]) Push(item T) {
	q.items = append(q.items, item)
}

func (q *Random[T]) Pop() (T, error) {
	var zero T
	n := len(q.items)
	if n == 0 {
		return zero, ErrEmptyQueue
	}
	idx := q.rng.IntN(n)
	item := q.items[idx]
	q.items[idx] = q.items[n-1]
	q.items[n-1] = zero
	q.items = q.items[:n-1]
	return item, nil
}

func (q *Random[T]) IsEmpty() bool { return len(q.items) == 0 }
func (q *Random[T]) Len() int      { return len(q.items) }
func (q *Random[T]) Name() string  { return "RANDOM" }

// Fresh keeps drawing from the same random stream so a reset engine does not
// replay the selections of its previous run.
func (q *Random[T]) Fresh() Discipline[T] { return NewRandom[T](q.rng) }

// RoundRobin spreads items over k sub-queues. Push and Pop share one cursor:
// Push appends at the cursor and advances it, Pop scans from the cursor for
// the first non-empty sub-queue and leaves the cursor just past it.
type RoundRobin[T any] struct {
	queues  [][]T
	current int
	size    int
}

// NewRoundRobin creates a RoundRobin discipline with k sub-queues. Requires k >= 1.
func NewRoundRobin[T any](k int) (*RoundRobin[T], error) {
	if k < 1 {
		return nil, fmt.Errorf("round-robin needs at least one sub-queue, got %d: %w", k, ErrInvalidParameter)
	}
	return &RoundRobin[T]{queues: make([][]T, k)}, nil
}

// Push appends the item to the sub-queue under the cursor and advances it.
func (q *RoundRobin[T]) Push(item T) {
	q.queues[q.current] = append(q.queues[q.current], item)
	q.current = (q.current + 1) % len(q.queues)
	q.size++
}

// Pop returns the front of the first non-empty sub-queue at or after the cursor.
func (q *RoundRobin[T]) Pop() (T, error) {
	var zero T
	k := len(q.queues)
	for i := 0; i < k; i++ {
		idx := (q.current + i) % k
		if len(q.queues[idx]) == 0 {
			continue
		}
		item := q.queues[idx][0]
		q.queues[idx][0] = zero
		q.queues[idx] = q.queues[idx][1:]
		q.current = (idx + 1) % k
		q.size--
		return item, nil
	}
	return zero, ErrEmptyQueue
}

func (q *RoundRobin[T]) IsEmpty() bool { return q.size == 0 }
func (q *RoundRobin[T]) Len() int      { return q.size }
func (q *RoundRobin[T]) Name() string  { return fmt.Sprintf("ROUND_ROBIN(%d)", len(q.queues)) }

// SubQueues returns the number of sub-queues.
func (q *RoundRobin[T]) SubQueues() int { return len(q.queues) }

func (q *RoundRobin[T]) Fresh() Discipline[T] {
	return &RoundRobin[T]{queues: make([][]T, len(q.queues))}
}
