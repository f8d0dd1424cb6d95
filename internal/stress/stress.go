// Package stress provides the shared goroutine fan-out and deterministic
// PRNG seeding helpers used by the queue and set stress tests and by
// cmd/nbbench. It is internal: these are harness conveniences, not part of
// the library's public contract.
package stress

import (
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// Fleet runs n goroutines, each invoking work with its own index in
// [0, n), and returns the first error any of them reports (errgroup
// semantics: all goroutines still run to completion). This is the common
// shape behind every "N goroutines hammer a shared structure" test in this
// module.
func Fleet(n int, work func(worker int) error) error {
	var g errgroup.Group

	for i := range n {
		g.Go(func() error {
			return work(i)
		})
	}

	return g.Wait()
}

// Rand returns a *rand.Rand deterministically seeded from base and worker,
// so a failing stress test's seed can be pinned and replayed exactly
// instead of depending on global math/rand state that differs run to run.
func Rand(base uint64, worker int) *rand.Rand {
	return rand.New(rand.NewSource(base ^ uint64(worker)*0x9E3779B97F4A7C15))
}
