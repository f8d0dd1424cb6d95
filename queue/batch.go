package queue

import "fmt"

// Batch is the result of a single atomic drain: a loosely-timed window of
// the queue's contents captured by one compare-and-swap of head. A Batch is
// a value, not a live view: it never observes items enqueued after its
// capture point.
type Batch[T any] struct {
	// start is the sentinel just before the first included item (exclusive);
	// end is the last included item (inclusive). Both are nil for an empty
	// batch.
	start, end *node[T]
}

// Len returns the number of items in the batch. It walks the captured
// chain, so it is O(n); callers iterating anyway should prefer Items or
// All.
func (b Batch[T]) Len() int {
	n := 0

	for cur := b.first(); cur != nil; cur = cur.next.Load() {
		n++

		if cur == b.end {
			break
		}
	}

	return n
}

// Empty reports whether the batch captured no items.
func (b Batch[T]) Empty() bool {
	return b.start == nil || b.start == b.end
}

func (b Batch[T]) first() *node[T] {
	if b.start == nil {
		return nil
	}

	return b.start.next.Load()
}

// Items materializes the batch into a slice, in enqueue order relative to
// the batch's capture window.
func (b Batch[T]) Items() []T {
	out := make([]T, 0, 8)

	for cur := b.first(); cur != nil; cur = cur.next.Load() {
		out = append(out, cur.item)

		if cur == b.end {
			break
		}
	}

	return out
}

// All returns a single-use iterator over the batch's items, oldest first.
// It has the shape of iter.Seq[T], so callers can convert it to
// iter.Seq[T] (for example to pass it to slices.Collect) without this
// package depending on the iter package directly.
func (b Batch[T]) All() Seq[T] {
	return func(yield func(T) bool) {
		for cur := b.first(); cur != nil; cur = cur.next.Load() {
			if !yield(cur.item) {
				return
			}

			if cur == b.end {
				return
			}
		}
	}
}

// Seq is a single-use pull sequence, matching the shape of iter.Seq[T].
type Seq[T any] func(yield func(T) bool)

// AtomicDequeueAll performs a single compare-and-swap that advances head to
// the then-current tail, logically dequeuing every item visible at that
// instant as one indivisible batch. Items enqueued after the CAS point are
// not included. Returns an empty Batch if the queue was empty.
func (q *Queue[T]) AtomicDequeueAll() Batch[T] {
	for {
		oldHead := q.head.Load()
		newHead := q.tail.Load()

		// Only capture a tail that really is the last node: a lagging tail
		// may sit inside a chain EnqueueRange linked in one CAS, and
		// draining up to it would split that run.
		if next := newHead.next.Load(); next != nil {
			q.tail.CompareAndSwap(newHead, next)

			continue
		}

		if oldHead == newHead {
			return Batch[T]{}
		}

		if q.head.CompareAndSwap(oldHead, newHead) {
			return Batch[T]{start: oldHead, end: newHead}
		}
	}
}

// DequeueAll returns a lazy sequence that pulls items one at a time via
// TryDequeue until the queue is observed empty. Unlike AtomicDequeueAll
// this is not a single atomic operation: concurrent enqueues may be
// observed and interleaved with the walk, and concurrent dequeues by other
// goroutines may race items out from under it.
func (q *Queue[T]) DequeueAll() Seq[T] {
	return func(yield func(T) bool) {
		for {
			item, ok := q.TryDequeue()
			if !ok {
				return
			}

			if !yield(item) {
				return
			}
		}
	}
}

// DequeueToList atomically drains the queue and materializes the result
// into a new slice, in the batch's capture order.
func (q *Queue[T]) DequeueToList() []T {
	return q.AtomicDequeueAll().Items()
}

// Transfer atomically drains this queue and returns a new queue seeded with
// the drained contents, preserving their order. The receiver is left
// empty of everything captured by the drain (concurrent enqueues that lose
// the race with the drain's CAS remain on the receiver).
//
// The drained items are re-materialized into fresh nodes rather than
// relinked: the captured chain's last node doubles as the receiver's new
// head sentinel, so sharing it with the destination would let a later
// enqueue on the receiver leak into the new queue.
func (q *Queue[T]) Transfer() *Queue[T] {
	batch := q.AtomicDequeueAll()
	dst := New[T]()
	dst.EnqueueRange(batch.Items())

	return dst
}

// CopyInto copies a loosely-timed snapshot of the queue's contents into dst
// starting at dst[index], without removing anything. It returns the number
// of items written.
//
// It returns ErrArgumentInvalid if index is negative, and
// ErrCopyTargetTooSmall if dst does not have room for the snapshot taken at
// call time (len(dst)-index is less than the snapshot's length); in the
// latter case dst is left untouched. Because the snapshot and the length
// check both happen before any element is written, concurrent mutation
// between the check and the last write cannot corrupt dst, only make the
// copied view stale the instant CopyInto returns, the same looseness
// Snapshot itself documents.
func (q *Queue[T]) CopyInto(dst []T, index int) (int, error) {
	if index < 0 {
		return 0, fmt.Errorf("%w: negative index %d", ErrArgumentInvalid, index)
	}

	items := make([]T, 0, 8)

	for v := range q.Snapshot() {
		items = append(items, v)
	}

	if len(dst)-index < len(items) {
		return 0, fmt.Errorf("%w: need room for %d items at index %d, dst has %d", ErrCopyTargetTooSmall, len(items), index, len(dst))
	}

	copy(dst[index:], items)

	return len(items), nil
}

// Snapshot captures head and tail at call time and returns a sequence that
// walks from head.next to tail. It is loosely timed: concurrent dequeues
// may be omitted from the walk and concurrent enqueues made before the
// tail sample may be included.
func (q *Queue[T]) Snapshot() Seq[T] {
	head := q.head.Load()
	tail := q.tail.Load()

	return func(yield func(T) bool) {
		for cur := head.next.Load(); cur != nil; cur = cur.next.Load() {
			if !yield(cur.item) {
				return
			}

			if cur == tail {
				return
			}
		}
	}
}
