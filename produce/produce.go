// Package produce provides thin producer/consumer wrappers over
// queue.Queue and set.Set that expose their respective bulk-drain
// primitives (atomic batch dequeue, arbitrary-order take) behind a common
// shape.
package produce

import (
	"github.com/lockfree-go/nbcollections/queue"
	"github.com/lockfree-go/nbcollections/set"
	"github.com/lockfree-go/nbcollections/table"
)

// GroupedProducerConsumer wraps a queue.Queue[T], exposing its atomic-batch
// semantics. "Grouped" refers to AtomicDequeueAll producing one batch (one
// countable unit) per successful drain, rather than a count of items:
// Count reports 0 or 1 depending on whether the queue is currently empty,
// not the number of items it holds.
//
// The zero value is not usable; construct one with NewGrouped.
type GroupedProducerConsumer[T any] struct {
	q *queue.Queue[T]
}

// NewGrouped returns an empty GroupedProducerConsumer.
func NewGrouped[T any]() *GroupedProducerConsumer[T] {
	return &GroupedProducerConsumer[T]{q: queue.New[T]()}
}

// Add enqueues item.
func (g *GroupedProducerConsumer[T]) Add(item T) {
	g.q.Enqueue(item)
}

// AddRange bulk-enqueues items as a single contiguous run, atomically with
// respect to TryTakeAll: a concurrent TryTakeAll either observes none of
// items or the complete contiguous run, never a partial prefix.
func (g *GroupedProducerConsumer[T]) AddRange(items []T) int {
	return g.q.EnqueueRange(items)
}

// TryTake removes and returns a single item, if any is available.
func (g *GroupedProducerConsumer[T]) TryTake() (T, bool) {
	return g.q.TryDequeue()
}

// TryTakeAll performs an atomic drain via queue.Queue.AtomicDequeueAll,
// returning every item visible at the instant of the drain's single CAS as
// one batch.
func (g *GroupedProducerConsumer[T]) TryTakeAll() queue.Batch[T] {
	return g.q.AtomicDequeueAll()
}

// Count reports 0 if the queue is currently empty, 1 otherwise: one batch
// is one countable unit under this abstraction, not the per-item count.
func (g *GroupedProducerConsumer[T]) Count() int {
	if g.q.IsEmpty() {
		return 0
	}

	return 1
}

// UniqueElementProducerConsumer wraps a set.Set[T]: TryAdd rejects
// duplicates instead of always succeeding the way a queue's Add does, and
// TryTake removes an arbitrary element with no ordering guarantee.
//
// The zero value is not usable; construct one with NewUnique.
type UniqueElementProducerConsumer[T comparable] struct {
	s *set.Set[T]
}

// NewUnique returns an empty UniqueElementProducerConsumer sized for
// roughly initialCapacity elements before its first resize.
func NewUnique[T comparable](initialCapacity int, hasher table.Hasher[T]) *UniqueElementProducerConsumer[T] {
	return &UniqueElementProducerConsumer[T]{s: set.New[T](initialCapacity, hasher)}
}

// TryAdd inserts item, reporting false if it is already present.
func (u *UniqueElementProducerConsumer[T]) TryAdd(item T) bool {
	return u.s.Add(item)
}

// TryTake removes and returns an arbitrary element, if any is present.
func (u *UniqueElementProducerConsumer[T]) TryTake() (T, bool) {
	return u.s.TryTake()
}

// Count reports the approximate number of elements currently held.
func (u *UniqueElementProducerConsumer[T]) Count() int64 {
	return u.s.Count()
}
