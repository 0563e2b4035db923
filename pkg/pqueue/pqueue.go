package pqueue

import (
	"cmp"
	"errors"
	"iter"
	"math"
	"slices"
)

var (
	// ErrInvalidCapacity is returned by [New] when the initial capacity is
	// smaller than one.
	ErrInvalidCapacity = errors.New("initial capacity must be at least 1")

	// ErrNilCompare is returned by [New] when no comparator is given.
	ErrNilCompare = errors.New("comparator must not be nil")

	// ErrCapacityOverflow is returned by [Queue.Add] when growing the backing
	// store would exceed [MaxCapacity]. In practice this only happens for a
	// pathological search frontier.
	ErrCapacityOverflow = errors.New("queue capacity overflow")
)

// MaxCapacity is the largest backing store a Queue will allocate. It is the
// smaller of the platform int range and 2^53-1, the largest integer that
// survives a round trip through float64 unchanged.
const MaxCapacity = min(math.MaxInt, 1<<53-1)

// maxCapacity is MaxCapacity as a variable so tests can exercise overflow.
var maxCapacity = MaxCapacity

// smallCapacity is the size below which the backing store roughly doubles
// on growth. Past it, growth is 50%.
const smallCapacity = 64

// Compare orders two items. It returns a negative number when a sorts before
// b, zero when they are equivalent and a positive number otherwise, like
// [cmp.Compare].
type Compare[T any] func(a, b T) int

// Queue is a binary min-heap ordered by a caller-supplied comparator.
//
// The zero value is not usable; create queues with [New] or [NewOrdered].
// Queue is not safe for concurrent use.
type Queue[T any] struct {
	items   []T // backing store, len(items) is the capacity
	size    int
	compare Compare[T]
}

// New creates an empty queue with room for capacity items before the first
// growth. It returns [ErrInvalidCapacity] if capacity < 1 and
// [ErrNilCompare] if compare is nil.
func New[T any](capacity int, compare Compare[T]) (*Queue[T], error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if compare == nil {
		return nil, ErrNilCompare
	}
	return &Queue[T]{
		items:   make([]T, capacity),
		compare: compare,
	}, nil
}

// NewOrdered creates a queue over an ordered type using [cmp.Compare].
func NewOrdered[T cmp.Ordered](capacity int) (*Queue[T], error) {
	return New(capacity, cmp.Compare[T])
}

// Add inserts item in O(log n). The backing store grows when full.
func (q *Queue[T]) Add(item T) error {
	if q.size >= len(q.items) {
		if err := q.grow(q.size + 1); err != nil {
			return err
		}
	}
	q.siftUp(q.size, item)
	q.size++
	return nil
}

// Poll removes and returns the minimum item. The second result is false
// when the queue is empty.
func (q *Queue[T]) Poll() (T, bool) {
	var zero T
	if q.size == 0 {
		return zero, false
	}
	q.size--
	head := q.items[0]
	last := q.items[q.size]
	q.items[q.size] = zero
	if q.size > 0 {
		q.siftDown(0, last)
	}
	return head, true
}

// Peek returns the minimum item without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	if q.size == 0 {
		var zero T
		return zero, false
	}
	return q.items[0], true
}

// ContainsFunc reports whether any queued item satisfies match. O(n).
func (q *Queue[T]) ContainsFunc(match func(T) bool) bool {
	return slices.ContainsFunc(q.items[:q.size], match)
}

// Contains reports whether item is queued, using == for comparison. O(n).
func Contains[T comparable](q *Queue[T], item T) bool {
	return q.ContainsFunc(func(v T) bool { return v == item })
}

// Clear removes all items but keeps the backing store.
func (q *Queue[T]) Clear() {
	clear(q.items[:q.size])
	q.size = 0
}

// Size returns the number of queued items.
func (q *Queue[T]) Size() int { return q.size }

// Empty reports whether the queue holds no items.
func (q *Queue[T]) Empty() bool { return q.size == 0 }

// Cap returns the current capacity of the backing store.
func (q *Queue[T]) Cap() int { return len(q.items) }

// ToSlice returns a copy of the queued items in heap order (not sorted).
func (q *Queue[T]) ToSlice() []T {
	return slices.Clone(q.items[:q.size])
}

// All iterates the queued items in heap order. The queue must not be
// modified during iteration.
func (q *Queue[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < q.size; i++ {
			if !yield(q.items[i]) {
				return
			}
		}
	}
}

func (q *Queue[T]) grow(minCapacity int) error {
	old := len(q.items)
	var next int
	if old < smallCapacity {
		next = old + old + 2
	} else {
		next = old + old>>1
	}
	if next < old || next > maxCapacity {
		// Growth overflowed. Fall back to the exact minimum if it still fits.
		if minCapacity > maxCapacity || minCapacity < 0 {
			return ErrCapacityOverflow
		}
		next = maxCapacity
	}
	if next < minCapacity {
		next = minCapacity
	}
	items := make([]T, next)
	copy(items, q.items[:q.size])
	q.items = items
	return nil
}

func (q *Queue[T]) siftUp(k int, item T) {
	for k > 0 {
		parent := (k - 1) >> 1
		p := q.items[parent]
		if q.compare(item, p) >= 0 {
			break
		}
		q.items[k] = p
		k = parent
	}
	q.items[k] = item
}

func (q *Queue[T]) siftDown(k int, item T) {
	half := q.size >> 1
	for k < half {
		child := 2*k + 1
		c := q.items[child]
		if right := child + 1; right < q.size && q.compare(c, q.items[right]) > 0 {
			child = right
			c = q.items[child]
		}
		if q.compare(item, c) <= 0 {
			break
		}
		q.items[k] = c
		k = child
	}
	q.items[k] = item
}
