package table

import (
	"fmt"
	"iter"
	"sync/atomic"

	"github.com/lockfree-go/nbcollections/counter"
)

// Dictionary is a concurrent, open-addressed key/value map. The zero value
// is not usable; construct one with New.
type Dictionary[K comparable, V any] struct {
	root   atomic.Pointer[table[K, V]]
	hasher Hasher[K]
	dead   *slotRef[K, V]
	cmp    Comparer[V]
}

// New returns an empty Dictionary sized for roughly initialCapacity entries
// before its first resize. A nil hasher selects comparableHasher, which
// hashes K via hash/maphash.Comparable.
//
// initialCapacity must be non-negative and no greater than the package's
// maximum table size (1<<30); either violation panics wrapping
// ErrArgumentInvalid: a caller-supplied size outside the representable
// range is a programming error, not a recoverable runtime condition.
// initialCapacity of 0 normalizes to the package's default minimum.
func New[K comparable, V any](initialCapacity int, hasher Hasher[K]) *Dictionary[K, V] {
	if initialCapacity < 0 || initialCapacity > maxCapacity {
		panic(fmt.Errorf("%w: initial capacity %d out of range [0, %d]", ErrArgumentInvalid, initialCapacity, maxCapacity))
	}

	if hasher == nil {
		hasher = newComparableHasher[K]()
	}

	dead := newDeadSentinel[K, V]()

	d := &Dictionary[K, V]{
		hasher: hasher,
		dead:   dead,
		cmp:    defaultComparer[V]{},
	}

	cap32 := nextPowerOfTwo(int32(initialCapacity))

	d.root.Store(newTable[K, V](cap32, counter.New(0), 0, dead))

	return d
}

// WithComparer overrides the value Comparer used by Update/Remove overloads
// that take an expected value. Must be called before any concurrent use.
func (d *Dictionary[K, V]) WithComparer(cmp Comparer[V]) *Dictionary[K, V] {
	d.cmp = cmp

	return d
}

func (d *Dictionary[K, V]) filteredHash(key K) int32 {
	return filteredHash(d.hasher.Hash(key))
}

// Count returns the approximate number of live entries. The backing
// counter is lock-free and possibly stale under concurrent mutation.
func (d *Dictionary[K, V]) Count() int64 {
	return d.root.Load().size.Read()
}

// Capacity returns the record-array size of the current generation. During
// an in-flight resize this is the OLD capacity until promotion completes.
func (d *Dictionary[K, V]) Capacity() int {
	return int(d.root.Load().capacity)
}

// Get returns the value stored for key, if any.
func (d *Dictionary[K, V]) Get(key K) (V, bool) {
	root := d.root.Load()

	v, ok := root.get(d.filteredHash(key), key)

	d.tryPromoteRoot()

	return v, ok
}

// tryPromoteRoot advances the root past a fully migrated table. Writers
// promote through helpCopy as a matter of course; this cheap check lets a
// read-only workload retire a finished migration too, instead of leaving
// the chain in place until the next write happens along.
func (d *Dictionary[K, V]) tryPromoteRoot() {
	root := d.root.Load()

	next := root.next.Load()
	if next == nil {
		return
	}

	if root.copyDone.Load() >= int64(root.capacity) {
		d.advanceRoot(root, next)
	}
}

// ContainsKey reports whether key is present.
func (d *Dictionary[K, V]) ContainsKey(key K) bool {
	_, ok := d.Get(key)

	return ok
}

// GetKey returns the exact key instance currently stored for a key equal to
// key, along with its value. For K types where == does not imply identity
// (pointers, interfaces over pointers), the returned key may be a different
// instance than the argument, despite comparing equal to it.
func (d *Dictionary[K, V]) GetKey(key K) (storedKey K, value V, found bool) {
	root := d.root.Load()

	storedKey, value, found = root.getRef(d.filteredHash(key), key)

	d.tryPromoteRoot()

	return storedKey, value, found
}

// advanceRoot promotes the Dictionary's visible root from a fully-copied
// table to its successor. It is safe to call redundantly; the CAS makes it
// idempotent across racing helpers.
func (d *Dictionary[K, V]) advanceRoot(from, to *table[K, V]) {
	d.root.CompareAndSwap(from, to)
}

// generationsBehind reports how many successor links separate t from the
// Dictionary's current root (0 if t is the root).
func (d *Dictionary[K, V]) generationsBehind(t *table[K, V]) int {
	root := d.root.Load()
	if root == t {
		return 0
	}

	n := 0

	for cur := root; cur != nil; cur = cur.next.Load() {
		if cur == t {
			return n
		}

		n++
	}

	return n
}

// --- predicates -------------------------------------------------------

func matchAny[V any](bool, V) bool { return true }

func matchAbsentOrTomb[V any](live bool, _ V) bool { return !live }

func matchLive[V any](live bool, _ V) bool { return live }

func matchEqualValue[V any](cmp Comparer[V], expected V) func(bool, V) bool {
	return func(live bool, cur V) bool {
		return live && cmp.Equal(cur, expected)
	}
}

func matchPredicate[V any](pred func(V) bool) func(bool, V) bool {
	return func(live bool, cur V) bool {
		return live && pred(cur)
	}
}

// --- producer caching ---------------------------------------------------

// producer derives the new value to install. It caches the add-path output
// across CAS retries so a factory supplied for the absent/tomb case runs
// at most once per successful installation: the update-path is re-run with
// fresh input on every retry, but an add-only factory's result, once
// computed, is reused verbatim.
type producer[V any] struct {
	addFn     func() V
	updateFn  func(current V) V
	cachedAdd V
	addCalled bool

	// last is whatever the most recent value() call handed to putIfMatch;
	// after a successful install it is exactly the value now in the table.
	last V
}

func (p *producer[V]) value(live bool, current V) V {
	if !live {
		if !p.addCalled {
			p.cachedAdd = p.addFn()
			p.addCalled = true
		}

		p.last = p.cachedAdd

		return p.cachedAdd
	}

	p.last = p.updateFn(current)

	return p.last
}

func constProducer[V any](v V) func(bool, V) V {
	return func(bool, V) V { return v }
}

// --- core PutIfMatch -----------------------------------------------------

// putIfMatch is the single mutation funnel every write goes through: it
// probes for key in the current generation, claiming an empty record or
// stopping at the key's existing one, then installs want if match accepts
// the current slot. It restarts in the successor table whenever it
// observes Dead/Primed, finds the key's record while a migration is in
// flight (retiring that record first, so readers of the old generation
// never see a value staler than the one being installed), or exhausts the
// reprobe budget. produce is unused (and may be nil) when want is
// stateTomb.
func (d *Dictionary[K, V]) putIfMatch(
	key K,
	want slotState,
	match func(live bool, cur V) bool,
	produce func(live bool, cur V) V,
) (priorVal V, priorExisted bool, installed bool) {
	h := d.filteredHash(key)
	cur := d.root.Load()

outer:
	for {
		idx := uint32(h) & cur.mask
		start := idx

		for reprobes := cur.reprobeLimit; reprobes > 0; reprobes-- {
			rec := &cur.records[idx]

		record:
			for {
				hv := rec.hash.Load()

				if hv == 0 {
					if want == stateTomb {
						// Nothing to delete in this table, but the key may
						// be live in a successor mid-migration.
						if next := cur.next.Load(); next != nil {
							cur = next

							continue outer
						}

						var zero V

						return zero, false, false
					}

					// Claiming a fresh record grows this generation; if it is
					// already past its load or tombstone threshold, grow
					// first and install in the successor instead.
					if cur.needsResize() {
						next := cur.triggerResize()
						cur.helpCopy(d)
						cur = next

						continue outer
					}

					if rec.hash.CompareAndSwap(0, h) {
						hv = h
					} else {
						hv = rec.hash.Load()
					}
				}

				if hv != h {
					break record
				}

				ref := rec.slot.Load()

				switch {
				case ref == cur.dead:
					cur.helpCopySlot(idx)
					cur = cur.next.Load()

					continue outer
				case ref != nil && ref.state == statePrimed:
					cur.helpCopySlot(idx)
					cur = cur.next.Load()

					continue outer
				case ref != nil && ref.key != key:
					// live or tomb of a hash-colliding key
					break record
				}

				// This record is the key's: either its live/tomb entry, or a
				// freshly claimed (possibly still slotless) record for its
				// hash. If a migration is in flight, retire the record into
				// the successor before writing, so the old generation never
				// carries a value staler than the one being installed.
				if next := cur.next.Load(); next != nil {
					cur.helpCopySlot(idx)
					cur = next

					continue outer
				}

				live := ref != nil && ref.state == stateLive

				var priorV V
				if live {
					priorV = ref.value
				}

				if !match(live, priorV) {
					return priorV, live, false
				}

				var newRef *slotRef[K, V]
				if want == stateLive {
					newRef = newLive[K, V](key, produce(live, priorV))
				} else {
					newRef = newTomb[K, V](key)
				}

				if rec.slot.CompareAndSwap(ref, newRef) {
					if ref == nil {
						cur.slots.Add(1)
					}

					switch {
					case want == stateLive && !live:
						cur.size.Increment()
					case want == stateTomb && live:
						cur.size.Decrement()
					}

					return priorV, live, true
				}

				continue record
			}

			idx = (idx + 1) & cur.mask
			if idx == start {
				break
			}
		}

		next := cur.triggerResize()
		cur.helpCopy(d)
		cur = next
	}
}

// --- higher-level operations ---------------------------------------------

// TryAdd installs value for key if it is absent (or only tombstoned).
// Reports whether it was installed and, if not, the value already present.
func (d *Dictionary[K, V]) TryAdd(key K, value V) (added bool, existing V) {
	prior, _, installed := d.putIfMatch(key, stateLive, matchAbsentOrTomb[V], constProducer(value))

	return installed, prior
}

// TryAddFunc is like TryAdd but computes the value lazily; factory runs at
// most once per successful install but may be invoked and discarded if
// another goroutine wins the race.
func (d *Dictionary[K, V]) TryAddFunc(key K, factory func() V) (added bool, existing V) {
	p := &producer[V]{addFn: factory}
	prior, _, installed := d.putIfMatch(key, stateLive, matchAbsentOrTomb[V], p.value)

	return installed, prior
}

// GetOrAdd returns the current value for key, installing value if absent.
func (d *Dictionary[K, V]) GetOrAdd(key K, value V) V {
	prior, _, installed := d.putIfMatch(key, stateLive, matchAbsentOrTomb[V], constProducer(value))
	if installed {
		return value
	}

	// matchAbsentOrTomb only ever fails against a Live witness, so a failed
	// match always carries that witness's value as prior.
	return prior
}

// GetOrAddFunc is GetOrAdd with a lazily evaluated default. factory is
// evaluated at most once per successful installation; if another goroutine
// wins the race to install first, factory's output (if already computed)
// is simply discarded.
func (d *Dictionary[K, V]) GetOrAddFunc(key K, factory func() V) V {
	p := &producer[V]{addFn: factory}

	prior, _, installed := d.putIfMatch(key, stateLive, matchAbsentOrTomb[V], p.value)
	if installed {
		return p.cachedAdd
	}

	return prior
}

// AddOrUpdate installs addValue if key is absent, else replaces the current
// value with updater(key, current). Returns the value it installed.
func (d *Dictionary[K, V]) AddOrUpdate(key K, addValue V, updater func(key K, current V) V) V {
	p := &producer[V]{
		addFn:    func() V { return addValue },
		updateFn: func(current V) V { return updater(key, current) },
	}

	_, _, _ = d.putIfMatch(key, stateLive, matchAny[V], p.value)

	return p.last
}

// AddOrUpdateFunc is AddOrUpdate with a lazily evaluated add-side value.
func (d *Dictionary[K, V]) AddOrUpdateFunc(key K, factory func() V, updater func(key K, current V) V) V {
	p := &producer[V]{
		addFn:    factory,
		updateFn: func(current V) V { return updater(key, current) },
	}

	_, _, _ = d.putIfMatch(key, stateLive, matchAny[V], p.value)

	return p.last
}

// Update replaces the value for key with newValue if and only if the
// current value equals expected under cmp (or the Dictionary's default
// Comparer, if cmp is omitted). Reports whether the replacement happened.
func (d *Dictionary[K, V]) Update(key K, newValue, expected V, cmp Comparer[V]) bool {
	if cmp == nil {
		cmp = d.cmp
	}

	_, _, installed := d.putIfMatch(key, stateLive, matchEqualValue(cmp, expected), constProducer(newValue))

	return installed
}

// UpdateFunc replaces the value for key with newValue if predicate(current)
// holds. Reports whether the replacement happened.
func (d *Dictionary[K, V]) UpdateFunc(key K, newValue V, predicate func(current V) bool) bool {
	_, _, installed := d.putIfMatch(key, stateLive, matchPredicate(predicate), constProducer(newValue))

	return installed
}

// Remove deletes key if it is currently live. Reports whether anything was
// removed and, if so, the value that was removed.
func (d *Dictionary[K, V]) Remove(key K) (removed bool, value V) {
	prior, _, installed := d.putIfMatch(key, stateTomb, matchLive[V], nil)

	return installed, prior
}

// RemoveIfEqual deletes key only if its current value equals expected
// under cmp (or the default Comparer, if cmp is nil).
func (d *Dictionary[K, V]) RemoveIfEqual(key K, expected V, cmp Comparer[V]) bool {
	if cmp == nil {
		cmp = d.cmp
	}

	_, _, installed := d.putIfMatch(key, stateTomb, matchEqualValue(cmp, expected), nil)

	return installed
}

// RemoveFunc deletes key only if predicate(current) holds for its current
// value. Reports whether the removal happened.
func (d *Dictionary[K, V]) RemoveFunc(key K, predicate func(current V) bool) bool {
	_, _, installed := d.putIfMatch(key, stateTomb, matchPredicate(predicate), nil)

	return installed
}

// All returns an iterator over the live entries visible at each step.
// Iteration is loosely consistent: no snapshot is taken, an entry present
// for the whole iteration window is observed exactly once across the
// table chain, and entries added or removed mid-walk may or may not
// appear. Primed slots are assisted and skipped rather than yielded
// directly, since their contents are (or are about to be) visible in the
// successor table.
func (d *Dictionary[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for t := d.root.Load(); t != nil; t = t.next.Load() {
			for i := int32(0); i < t.capacity; i++ {
				rec := &t.records[i]

				if rec.hash.Load() == 0 {
					continue
				}

				ref := rec.slot.Load()

				switch {
				case ref == nil, ref == t.dead, ref.state == stateTomb:
					continue
				case ref.state == statePrimed:
					t.helpCopySlot(uint32(i))

					continue
				case ref.state == stateLive:
					if !yield(ref.key, ref.value) {
						return
					}
				}
			}
		}
	}
}

// Clear removes every entry by replacing the root with a fresh, empty
// table. Concurrent operations already in flight against the old chain
// complete against it; Clear does not attempt to cooperate with them.
func (d *Dictionary[K, V]) Clear() {
	fresh := newTable[K, V](minCapacity, counter.New(0), 0, d.dead)
	d.root.Store(fresh)
}

// Clone iterates the live entries once and re-inserts them into a fresh
// Dictionary sharing the same hasher and value Comparer. The clone is
// built single-threaded from a loosely consistent walk: entries present
// for the whole walk appear exactly once; entries mutated during it may
// or may not be reflected.
func (d *Dictionary[K, V]) Clone() *Dictionary[K, V] {
	clone := New[K, V](int(d.root.Load().size.Read()), d.hasher)
	clone.cmp = d.cmp

	for k, v := range d.All() {
		clone.TryAdd(k, v)
	}

	return clone
}

// Snapshot materializes a loosely consistent view of the live entries into
// a plain map, with the same observation guarantees as All.
func (d *Dictionary[K, V]) Snapshot() map[K]V {
	out := make(map[K]V, d.root.Load().size.Read())

	for k, v := range d.All() {
		out[k] = v
	}

	return out
}

// Compact forces a migration of the current root table even if no put has
// exhausted its reprobe budget. set.Set's RemoveWhere calls this after
// removing a substantial fraction of the table so a burst of deletes
// doesn't leave the structure tomb-heavy until some unrelated future put
// happens to trip the reprobe-exhaustion trigger itself. If a migration is
// already in flight, it assists that migration instead of starting another.
func (d *Dictionary[K, V]) Compact() {
	root := d.root.Load()

	next := root.triggerResize()
	root.helpCopy(d)

	// Assist to completion so a caller that immediately inspects the table
	// observes the reclaimed generation rather than a migration still in
	// flight; readers and writers racing this call remain correct either
	// way since helpCopy is itself cooperative and idempotent.
	for root.copyDone.Load() < int64(root.capacity) && next != nil {
		root.helpCopy(d)
	}
}
