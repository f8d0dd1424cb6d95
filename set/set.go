// Package set implements Set[T]: the same open-addressed table algorithm
// as table.Dictionary, with the value payload elided. Rather than
// reimplementing the record/slot state machine, Set is a thin wrapper over
// table.Dictionary[T, struct{}]. An empty struct carries no storage, so
// this is a structural re-use of the table, not a second hash table
// implementation.
package set

import (
	"iter"

	"github.com/lockfree-go/nbcollections/table"
)

type unit = struct{}

// Set is a concurrent set of comparable elements of type T.
//
// The zero value is not usable; construct one with New.
type Set[T comparable] struct {
	d *table.Dictionary[T, unit]
}

// New returns an empty Set sized for roughly initialCapacity elements
// before its first resize. A nil hasher selects the table package's default
// (hash/maphash.Comparable-backed) hasher.
func New[T comparable](initialCapacity int, hasher table.Hasher[T]) *Set[T] {
	return &Set[T]{d: table.New[T, unit](initialCapacity, hasher)}
}

// Count returns the approximate number of elements currently in the set.
func (s *Set[T]) Count() int64 { return s.d.Count() }

// Capacity returns the record-array size of the current generation.
func (s *Set[T]) Capacity() int { return s.d.Capacity() }

// Contains reports whether e is a member of the set.
func (s *Set[T]) Contains(e T) bool { return s.d.ContainsKey(e) }

// Add inserts e. Reports true if e was newly added, false if it was already
// present (live).
func (s *Set[T]) Add(e T) bool {
	added, _ := s.d.TryAdd(e, unit{})

	return added
}

// Remove deletes e. Reports whether it was present.
func (s *Set[T]) Remove(e T) bool {
	removed, _ := s.d.Remove(e)

	return removed
}

// Clear removes every element.
func (s *Set[T]) Clear() { s.d.Clear() }

// TryTake removes and returns an arbitrary element of the set; no
// ordering guarantee is provided, unlike a queue's FIFO discipline. It
// walks the live table from wherever iteration happens to start and
// removes the first element it can win the race to tombstone; under heavy
// concurrent contention on a near-empty set it may report empty even
// though another goroutine removed the last element a moment earlier.
func (s *Set[T]) TryTake() (T, bool) {
	for e := range s.All() {
		if ok, _ := s.d.Remove(e); ok {
			return e, true
		}
	}

	var zero T

	return zero, false
}

// All returns a loosely consistent iterator over the set's elements: an
// element present for the whole iteration window is observed exactly once;
// concurrent Add/Remove during the walk may or may not be observed.
func (s *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for k := range s.d.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Find returns the element equal to e already stored in the set, if any.
// Because T is compared by ==, the returned value is always == e; Find
// exists for parity with FindOrStore and for callers who want to confirm
// presence without the Add side effect.
func (s *Set[T]) Find(e T) (T, bool) {
	if s.d.ContainsKey(e) {
		return e, true
	}

	var zero T

	return zero, false
}

// FindOrStore returns the element equal to e already stored in the set,
// inserting e if no such element exists. Concurrent callers racing
// FindOrStore(x) for equal-but-possibly-distinct x all observe the same
// winning instance once installed, which is what makes the set usable for
// interning.
//
// For a comparable value type (not a pointer), "the same instance" means
// the same value; callers who need identity interning for reference types
// should instantiate Set[T] with a pointer type and rely on the table's
// key-equality semantics (== on the pointer), not on deep value equality.
func (s *Set[T]) FindOrStore(e T) T {
	for {
		added, _ := s.d.TryAdd(e, unit{})
		if added {
			return e
		}

		// Another goroutine's instance won the race (or already existed);
		// return that stored instance, not e, per the interning contract.
		// A concurrent Remove can still beat us to GetKey, in which case
		// retry the whole add; the loop converges because each iteration
		// either installs e or observes some live instance.
		if stored, _, found := s.d.GetKey(e); found {
			return stored
		}
	}
}
