package set_test

import (
	"testing"

	"github.com/lockfree-go/nbcollections/internal/stress"
	"github.com/lockfree-go/nbcollections/set"
)

// TestSet_FleetConcurrentAddRemove runs a worker fleet (via the shared
// stress.Fleet harness) that concurrently adds and removes a shared key
// space. It asserts only the invariants that hold regardless of scheduling:
// once the fleet has finished, Count does not exceed the key space size,
// and every element All() yields is also reported present by Contains.
func TestSet_FleetConcurrentAddRemove(t *testing.T) {
	t.Parallel()

	const (
		workers   = 16
		perWorker = 2_000
		keySpace  = 500
		seedBase  = 0x5E7BA5E
	)

	s := set.New[int](64, nil)

	err := stress.Fleet(workers, func(worker int) error {
		rng := stress.Rand(seedBase, worker)

		for range perWorker {
			k := int(rng.Uint32()) % keySpace
			if k < 0 {
				k = -k
			}

			if rng.Uint32()%2 == 0 {
				s.Add(k)
			} else {
				s.Remove(k)
			}
		}

		return nil
	})
	if err != nil {
		t.Fatalf("fleet failed: %v", err)
	}

	if got := s.Count(); got > keySpace {
		t.Fatalf("Count() = %d, exceeds key space %d", got, keySpace)
	}

	for v := range s.All() {
		if !s.Contains(v) {
			t.Fatalf("All() yielded %d but Contains(%d) = false", v, v)
		}
	}
}
