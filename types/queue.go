package types

// Queue is an unbounded FIFO. Pop never blocks; an empty queue
// reports ok == false.
type Queue[T any] struct {
	data []T
	// index of the next element to pop
	head int
}

func NewQueue[T any](vals ...T) *Queue[T] {
	q := &Queue[T]{
		data: make([]T, 0, len(vals)),
	}
	q.Push(vals...)
	return q
}

func (q *Queue[T]) Push(vals ...T) {
	q.data = append(q.data, vals...)
}

func (q *Queue[T]) Pop() (T, bool) {
	var empty T
	if q.Len() == 0 {
		return empty, false
	}
	v := q.data[q.head]
	q.data[q.head] = empty
	q.head += 1

	// reclaim the consumed prefix once it dominates the backing array
	if q.head > 32 && q.head*2 >= len(q.data) {
		n := copy(q.data, q.data[q.head:])
		q.data = q.data[:n]
		q.head = 0
	}
	return v, true
}

// Drain removes and returns every queued element in FIFO order.
func (q *Queue[T]) Drain() []T {
	out := make([]T, q.Len())
	copy(out, q.data[q.head:])
	q.Clear()
	return out
}

func (q *Queue[T]) Clear() {
	q.data = []T{}
	q.head = 0
}

func (q *Queue[T]) Len() int {
	return len(q.data) - q.head
}
