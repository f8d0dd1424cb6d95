package table

import "hash/maphash"

// Hasher computes a hash code for a key. Implementations need not be
// collision-resistant against adversarial input; they only need to
// distribute keys reasonably across a power-of-two table.
//
// The table filters every hasher output through internal/hashfilter before
// storing it, so a Hasher may freely return 0.
type Hasher[K any] interface {
	Hash(key K) int32
}

// comparableHasher is the default used when no Hasher is supplied: it seeds
// maphash.Comparable per Dictionary built by New, so independently
// constructed Dictionary instances don't share a hash schedule (a Clone
// reuses its source's hasher), which would make cross-instance timing attacks on
// hash collisions trivially cheap to mount.
type comparableHasher[K comparable] struct {
	seed maphash.Seed
}

func newComparableHasher[K comparable]() comparableHasher[K] {
	return comparableHasher[K]{seed: maphash.MakeSeed()}
}

func (h comparableHasher[K]) Hash(key K) int32 {
	sum := maphash.Comparable(h.seed, key)

	return int32(uint32(sum ^ (sum >> 32)))
}
