package queue_test

import (
	"sort"
	"testing"

	"github.com/go-test/deep"
	"golang.org/x/sync/errgroup"

	"github.com/lockfree-go/nbcollections/queue"
)

// TestQueue_AtomicDrainCorrectness: 4 producer goroutines enqueue 1..10000
// between them while one consumer goroutine loops AtomicDequeueAll. The
// concatenation of all batches (in completion order) plus whatever remains
// in the queue afterward must equal the multiset {1..10000} exactly: no
// duplication, no loss.
func TestQueue_AtomicDrainCorrectness(t *testing.T) {
	t.Parallel()

	const (
		producers = 4
		total     = 10_000
	)

	q := queue.New[int]()

	var g errgroup.Group

	perProducer := total / producers

	for p := range producers {
		start := p*perProducer + 1
		g.Go(func() error {
			for i := range perProducer {
				q.Enqueue(start + i)
			}

			return nil
		})
	}

	drained := make(chan []int, 1)

	done := make(chan struct{})

	go func() {
		var all []int

		for {
			batch := q.AtomicDequeueAll()
			all = append(all, batch.Items()...)

			select {
			case <-done:
				// One final drain to catch the remainder published before
				// producers returned but after our last loop iteration.
				batch := q.AtomicDequeueAll()
				all = append(all, batch.Items()...)
				drained <- all

				return
			default:
			}
		}
	}()

	if err := g.Wait(); err != nil {
		t.Fatalf("producer goroutine failed: %v", err)
	}

	close(done)

	all := <-drained

	// Anything the consumer never saw is still sitting in the queue.
	all = append(all, q.DequeueToList()...)

	sort.Ints(all)

	want := make([]int, total)
	for i := range want {
		want[i] = i + 1
	}

	if diff := deep.Equal(all, want); diff != nil {
		t.Fatalf("drained multiset mismatch: %v", diff)
	}
}

// TestQueue_ConcurrentEnqueueDequeuePreservesMultiset: the multiset of all
// enqueued values equals the multiset of all dequeued values plus whatever
// remains enqueued; no value is lost or duplicated under producer and
// consumer contention.
func TestQueue_ConcurrentEnqueueDequeuePreservesMultiset(t *testing.T) {
	t.Parallel()

	const (
		producers = 6
		perProd   = 2_000
	)

	q := queue.New[int]()

	var g errgroup.Group

	for p := range producers {
		base := p * perProd
		g.Go(func() error {
			for i := range perProd {
				q.Enqueue(base + i)
			}

			return nil
		})
	}

	dequeued := make(chan int, producers*perProd)

	var consumers errgroup.Group

	stop := make(chan struct{})

	for range producers {
		consumers.Go(func() error {
			for {
				select {
				case <-stop:
					for {
						v, ok := q.TryDequeue()
						if !ok {
							return nil
						}

						dequeued <- v
					}
				default:
					if v, ok := q.TryDequeue(); ok {
						dequeued <- v
					}
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("producers failed: %v", err)
	}

	close(stop)

	if err := consumers.Wait(); err != nil {
		t.Fatalf("consumers failed: %v", err)
	}

	close(dequeued)

	seen := make(map[int]int, producers*perProd)
	for v := range dequeued {
		seen[v]++
	}

	if len(seen) != producers*perProd {
		t.Fatalf("got %d distinct dequeued items, want %d", len(seen), producers*perProd)
	}

	for v, n := range seen {
		if n != 1 {
			t.Fatalf("item %d dequeued %d times, want exactly 1", v, n)
		}
	}
}
