package set

import "iter"

// FilterAdd wraps source: each pulled element is inserted into s, and only
// elements that were newly added (not already present) are yielded. It is
// a lazy state machine driven by the returned iter.Seq[T]'s own pull
// protocol; nothing happens until the caller ranges over the result.
func (s *Set[T]) FilterAdd(source iter.Seq[T]) iter.Seq[T] {
	requireSeq(source)

	return func(yield func(T) bool) {
		for e := range source {
			if s.Add(e) {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// RemoveWhere walks the set's live elements as of construction and yields
// each one whose value matches predicate, after successfully transitioning
// it from live to tombstoned. On contention with a concurrent writer that
// changed the slot before this iterator's CAS lands, the element is simply
// skipped for this pass rather than retried: table.Dictionary has no value
// payload to re-read for a set element, so there is nothing to re-test the
// predicate against beyond "is it still live", which the underlying
// Dictionary.Remove call already re-checks atomically.
//
// The underlying table is not snapshotted: elements inserted after the
// iterator starts may or may not be observed, matching the loosely
// consistent contract of All.
func (s *Set[T]) RemoveWhere(predicate func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		removed := 0

		capacityAtStart := s.Capacity()

		for e := range s.All() {
			if !predicate(e) {
				continue
			}

			if ok, _ := s.d.Remove(e); ok {
				removed++

				if !yield(e) {
					s.maybeCompactAfterRemoveWhere(removed, capacityAtStart)

					return
				}
			}
		}

		s.maybeCompactAfterRemoveWhere(removed, capacityAtStart)
	}
}

// maybeCompactAfterRemoveWhere triggers a migration when RemoveWhere
// removed a substantial fraction of the table (more than 1/16 of capacity,
// or more than 1/4 of the live count), so a burst of deletes doesn't leave
// the table needlessly tomb-heavy. It defers to Dictionary's own resize
// machinery rather than duplicating the tomb-reclaim heuristic here.
func (s *Set[T]) maybeCompactAfterRemoveWhere(removed int, capacityAtStart int) {
	if removed == 0 {
		return
	}

	size := s.Count()

	substantial := removed > capacityAtStart/16 || (size > 0 && int64(removed) > size/4)
	if !substantial {
		return
	}

	s.d.Compact()
}
