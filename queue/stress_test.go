package queue_test

import (
	"testing"

	"github.com/lockfree-go/nbcollections/internal/stress"
	"github.com/lockfree-go/nbcollections/queue"
)

// TestQueue_FleetEnqueueDequeueNoLossNoDuplication runs a larger worker
// fleet than the hand-rolled producer/consumer tests, using the shared
// stress.Fleet harness: half the workers enqueue a deterministic run of
// values (seeded via stress.Rand so a failure is reproducible), the other
// half race them to drain via TryDequeue and AtomicDequeueAll. The union
// of every batch, every single TryDequeue, and whatever remains in the
// queue must reconstruct the full enqueued multiset exactly.
func TestQueue_FleetEnqueueDequeueNoLossNoDuplication(t *testing.T) {
	t.Parallel()

	const (
		workers   = 12
		perWorker = 500
		seedBase  = 0xC011EC7
	)

	q := queue.New[uint64]()

	enqueuedCh := make(chan uint64, workers/2*perWorker)
	dequeuedCh := make(chan uint64, workers/2*perWorker*2)

	err := stress.Fleet(workers, func(worker int) error {
		if worker%2 == 0 {
			rng := stress.Rand(seedBase, worker)

			for range perWorker {
				// High bits carry the worker id so values from different
				// producers never collide, even though the low bits are
				// random filler.
				v := uint64(worker)<<48 | uint64(rng.Uint32())
				q.Enqueue(v)
				enqueuedCh <- v
			}

			return nil
		}

		for range perWorker {
			if v, ok := q.TryDequeue(); ok {
				dequeuedCh <- v
			}

			batch := q.AtomicDequeueAll()
			for _, v := range batch.Items() {
				dequeuedCh <- v
			}
		}

		return nil
	})
	if err != nil {
		t.Fatalf("fleet failed: %v", err)
	}

	close(enqueuedCh)

	for _, v := range q.DequeueToList() {
		dequeuedCh <- v
	}

	close(dequeuedCh)

	enqueued := map[uint64]int{}
	for v := range enqueuedCh {
		enqueued[v]++
	}

	dequeued := map[uint64]int{}
	for v := range dequeuedCh {
		dequeued[v]++
	}

	for v, n := range enqueued {
		if dequeued[v] != n {
			t.Fatalf("value %#x: enqueued %d times, accounted for %d times", v, n, dequeued[v])
		}
	}

	for v, n := range dequeued {
		if enqueued[v] != n {
			t.Fatalf("value %#x: dequeued/remaining %d times, but enqueued %d times", v, n, enqueued[v])
		}
	}
}
