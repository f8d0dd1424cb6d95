package table

import (
	"sync/atomic"
	"time"

	"github.com/lockfree-go/nbcollections/counter"
	"github.com/lockfree-go/nbcollections/internal/hashfilter"
)

// record is a fixed-layout (hash, slot) pair. Both fields are mutated only
// via CAS; hash is one-shot (0 -> h, never again), slot cycles through the
// legal state graph described in slot.go.
type record[K comparable, V any] struct {
	hash atomic.Int32
	slot atomic.Pointer[slotRef[K, V]]
}

// table is one generation of the record array. A Dictionary links tables
// into a forward chain via next: old generations point at the newer table
// their contents are being copied into.
type table[K comparable, V any] struct {
	records []record[K, V]

	capacity     int32
	mask         uint32
	reprobeLimit int32

	// prevSize is the live entry count observed at the moment this table
	// itself was installed as a successor; it anchors the "no net growth
	// since previous resize" rule in sizingHeuristic.
	prevSize int64

	// size is shared across the whole chain a given Dictionary ever grows
	// through: copying a record between generations does not change how
	// many logical entries exist, so every table born from the same root
	// reports through the same counter.
	size *counter.Counter

	// slots counts non-empty records (live + tomb) in THIS generation only.
	slots atomic.Int64

	next atomic.Pointer[table[K, V]]

	copyIdx  atomic.Int64
	copyDone atomic.Int64

	resizers atomic.Int32

	dead *slotRef[K, V]
}

func newTable[K comparable, V any](cap32 int32, size *counter.Counter, prevSize int64, dead *slotRef[K, V]) *table[K, V] {
	cap32 = clampCapacity(cap32)

	reprobe := (cap32 >> 5) + 5
	if reprobe < 1 {
		reprobe = 1
	}

	if reprobe > cap32 {
		reprobe = cap32
	}

	return &table[K, V]{
		records:      make([]record[K, V], cap32),
		capacity:     cap32,
		mask:         uint32(cap32 - 1),
		reprobeLimit: reprobe,
		prevSize:     prevSize,
		size:         size,
		dead:         dead,
	}
}

func clampCapacity(cap32 int32) int32 {
	if cap32 < minCapacity {
		cap32 = minCapacity
	}

	if cap32 > maxCapacity {
		cap32 = maxCapacity
	}

	return nextPowerOfTwo(cap32)
}

func nextPowerOfTwo(n int32) int32 {
	if n <= 1 {
		return 1
	}

	p := int32(1)
	for p < n {
		p <<= 1
	}

	return p
}

func filteredHash(h int32) int32 {
	return hashfilter.Apply(h)
}

// get walks the table chain starting at t, following Primed/Dead
// observations forward, until it finds a key match, a definitive absence,
// or runs off the end of the chain.
func (t *table[K, V]) get(h int32, key K) (value V, found bool) {
	_, value, found = t.getRef(h, key)

	return value, found
}

// getRef is get's superset: it also returns the exact key instance stored
// in the record (which, for pointer or interface K, may differ in identity
// from the lookup key while still comparing == to it). set.Set's
// FindOrStore relies on this to return the winning instance of an
// interning race rather than the caller's own argument.
func (t *table[K, V]) getRef(h int32, key K) (storedKey K, value V, found bool) {
	cur := t

outer:
	for cur != nil {
		idx := uint32(h) & cur.mask
		start := idx

		for reprobes := cur.reprobeLimit; reprobes > 0; reprobes-- {
			rec := &cur.records[idx]

			hv := rec.hash.Load()

			switch {
			case hv == h:
				ref := rec.slot.Load()

				switch {
				case ref == nil:
					// mid-write: hash claimed, slot not yet published. The
					// write may be landing in a successor table instead, so
					// this table's search ends but the chain's does not.
					cur = cur.next.Load()

					continue outer
				case ref == cur.dead:
					cur.helpCopySlot(idx)
					cur = cur.next.Load()

					continue outer
				case ref.state == statePrimed:
					cur.helpCopySlot(idx)
					cur = cur.next.Load()

					continue outer
				case ref.state == stateTomb:
					if ref.key == key {
						var zero K

						var zeroV V

						return zero, zeroV, false
					}
				case ref.state == stateLive:
					if ref.key == key {
						return ref.key, ref.value, true
					}
				}
			case hv == 0:
				// Definitively absent in this table. A concurrent insert may
				// still be landing in the successor while a migration is in
				// flight, so continue there rather than concluding absence
				// for the whole chain.
				cur = cur.next.Load()

				continue outer
			}

			idx = (idx + 1) & cur.mask
			if idx == start {
				break
			}
		}

		cur = cur.next.Load()
	}

	var zero K

	var zeroV V

	return zero, zeroV, false
}

// helpCopySlot assists the migration of a single record, then returns. It is
// a no-op if the record has no in-flight successor (should not happen for a
// Primed/Dead observation, but readers must tolerate a racing promotion).
func (t *table[K, V]) helpCopySlot(idx uint32) {
	next := t.next.Load()
	if next == nil {
		return
	}

	t.copySlot(idx, next)
}

// copySlot migrates a single record into next: empty and tombstoned slots
// are retired directly to Dead; live slots are primed first so their
// payload can be replayed into the successor before the source dies.
func (t *table[K, V]) copySlot(idx uint32, next *table[K, V]) (migrated bool) {
	rec := &t.records[idx]

	for {
		ref := rec.slot.Load()

		switch {
		case ref == nil:
			if rec.slot.CompareAndSwap(nil, t.dead) {
				t.copyDone.Add(1)

				return true
			}

			continue
		case ref == t.dead:
			return false
		case ref.state == stateTomb:
			if rec.slot.CompareAndSwap(ref, t.dead) {
				t.copyDone.Add(1)

				return true
			}

			continue
		case ref.state == statePrimed:
			t.installPrimedIntoSuccessor(rec, ref, next)

			return false
		case ref.state == stateLive:
			primed := newPrimed(ref)
			if !rec.slot.CompareAndSwap(ref, primed) {
				continue
			}

			t.installPrimedIntoSuccessor(rec, primed, next)

			return false
		default:
			return false
		}
	}
}

// installPrimedIntoSuccessor installs the primed payload into next via a
// restricted put that only ever succeeds against an absent destination
// slot, then marks the source Dead.
func (t *table[K, V]) installPrimedIntoSuccessor(rec *record[K, V], primed *slotRef[K, V], next *table[K, V]) {
	hv := rec.hash.Load()

	next.installRestricted(hv, primed.original)

	if rec.slot.CompareAndSwap(primed, t.dead) {
		t.copyDone.Add(1)
	}
}

// installRestricted locates a destination for hash hv and installs payload
// only if the destination is currently absent; it never overwrites a value
// a concurrent writer has already placed in the successor. On reprobe
// exhaustion it recursively resizes the successor and retries there.
func (t *table[K, V]) installRestricted(hv int32, payload *slotRef[K, V]) {
	cur := t

outer:
	for {
		idx := uint32(hv) & cur.mask
		start := idx

		for reprobes := cur.reprobeLimit; reprobes > 0; reprobes-- {
			rec := &cur.records[idx]

		record:
			for {
				h := rec.hash.Load()

				if h == 0 {
					if rec.hash.CompareAndSwap(0, hv) {
						h = hv
					} else {
						h = rec.hash.Load()
					}
				}

				if h != hv {
					break record
				}

				ref := rec.slot.Load()

				switch {
				case ref == nil:
					if rec.slot.CompareAndSwap(nil, payload) {
						// slots is per-generation bookkeeping, so the new
						// record counts here; size is shared across the
						// chain and already counts this entry, so a copy
						// must not increment it again.
						cur.slots.Add(1)

						return
					}

					continue record
				case ref == cur.dead, ref.state == statePrimed:
					// the destination itself is mid-migration; chase this
					// hash into its own successor.
					cur.helpCopySlot(idx)
					cur = cur.next.Load()

					continue outer
				case ref.key == payload.key:
					// a concurrent writer beat the migration to this key in
					// the destination; the migrated payload is stale and is
					// discarded.
					return
				default:
					// same filtered hash, different key; keep probing.
					break record
				}
			}

			idx = (idx + 1) & cur.mask
			if idx == start {
				break
			}
		}

		cur = cur.triggerResize()
	}
}

// needsResize reports whether a put that is about to claim a fresh record
// should grow this generation first: the live count has reached three
// quarters of capacity, or tombstones dominate the occupied records. The
// quarter-occupancy guard on the tombstone test keeps a nearly empty table
// from churning through pointless same-size migrations.
func (t *table[K, V]) needsResize() bool {
	sz := t.size.Read()
	slots := t.slots.Load()
	cap64 := int64(t.capacity)

	if sz >= (3*cap64)/4 {
		return true
	}

	return slots >= cap64/4 && slots >= 2*sz
}

// sizingHeuristic computes the successor capacity: a growth ladder driven
// by the current load factor, a doubling when the table is tomb-heavy
// (occupied slots at least twice the live count), and another when the
// live count hasn't grown since the previous resize. If the ladder's
// output would leave the table at its current size despite a tomb-heavy or
// no-growth trigger, a doubling is forced instead of silently re-clamping
// to the unchanged capacity.
func (t *table[K, V]) sizingHeuristic() int32 {
	sz := t.size.Read()
	slots := t.slots.Load()
	cap64 := int64(t.capacity)

	var newCap int64

	switch {
	case sz >= (3*cap64)/4:
		newCap = sz * 8
	case sz >= cap64/2:
		newCap = sz * 4
	case sz >= cap64/4:
		newCap = sz * 2
	default:
		newCap = sz
	}

	tombHeavy := slots >= 2*sz
	noGrowthSincePrev := sz == t.prevSize

	if tombHeavy {
		newCap = cap64 * 2
	}

	if newCap < cap64 {
		newCap = cap64
	}

	// The ladder above can produce newCap <= cap64 even though slots>=2*sz
	// or sz==prevSize held, the very conditions meant to force growth.
	// Where that would otherwise happen, force a doubling.
	if newCap <= cap64 && (tombHeavy || noGrowthSincePrev) {
		newCap = cap64 * 2
	}

	if noGrowthSincePrev {
		newCap *= 2
	}

	if newCap > int64(maxCapacity) {
		newCap = int64(maxCapacity)
	}

	return nextPowerOfTwo(int32(newCap))
}

// maybeBackpressure rate-limits resizer stampedes: goroutines beyond the
// second concurrent resizer on a table growing past the entries threshold
// pay a delay before allocating, so a burst of writers cannot
// simultaneously allocate many huge successor tables.
func (t *table[K, V]) maybeBackpressure(newCap int32) {
	if newCap <= backpressureThresholdEntries {
		return
	}

	resizers := t.resizers.Load()
	if resizers <= 2 {
		return
	}

	mb := (int64(newCap) * 64) / (1024 * 1024) // rough per-record footprint estimate
	if mb < 1 {
		mb = 1
	}

	delay := mb * 5 * int64(resizers)
	if delay < 200 {
		delay = 200
	}

	time.Sleep(time.Duration(delay) * time.Millisecond)
}

// triggerResize installs t.next if absent (CAS from nil), then returns it.
// Every caller that observes reprobe exhaustion calls this before assisting
// the copy and restarting.
func (t *table[K, V]) triggerResize() *table[K, V] {
	if existing := t.next.Load(); existing != nil {
		return existing
	}

	t.resizers.Add(1)

	defer t.resizers.Add(-1)

	newCap := t.sizingHeuristic()

	t.maybeBackpressure(newCap)

	successor := newTable[K, V](newCap, t.size, t.size.Read(), t.dead)

	if t.next.CompareAndSwap(nil, successor) {
		return successor
	}

	return t.next.Load()
}

// helpCopy schedules the cooperative copy: small tables are swept in full
// by the first helper to arrive; larger tables are claimed in disjoint
// chunks via copyIdx, with any helper that is more than one generation
// behind the root sweeping the whole table to avoid being stranded forever
// behind an abandoned chunk boundary.
func (t *table[K, V]) helpCopy(d *Dictionary[K, V]) {
	next := t.next.Load()
	if next == nil {
		return
	}

	if t.capacity <= copyChunkRecords {
		t.sweepRange(0, t.capacity, next)
		t.maybePromote(d)

		return
	}

	if d.generationsBehind(t) > 1 {
		t.sweepRange(0, t.capacity, next)
		t.maybePromote(d)

		return
	}

	start := t.copyIdx.Add(copyChunkRecords) - copyChunkRecords
	if start >= int64(t.capacity) {
		t.maybePromote(d)

		return
	}

	end := start + copyChunkRecords
	if end > int64(t.capacity) {
		end = int64(t.capacity)
	}

	t.sweepRange(int32(start), int32(end), next)
	t.maybePromote(d)
}

func (t *table[K, V]) sweepRange(from, to int32, next *table[K, V]) {
	for i := from; i < to; i++ {
		t.copySlot(uint32(i), next)
	}
}

// maybePromote advances the Dictionary root past t once every record in t
// has migrated. copy_done reaching capacity may be observed by several
// helpers; the CAS on the Dictionary root makes promotion idempotent. Only
// the root is promoted: if t is not the current root, this does nothing,
// and t stays linked in the chain until the root advances to it.
func (t *table[K, V]) maybePromote(d *Dictionary[K, V]) {
	if t.copyDone.Load() < int64(t.capacity) {
		return
	}

	next := t.next.Load()
	if next == nil {
		return
	}

	d.advanceRoot(t, next)
}
