// Package queue provides a non-blocking, multi-producer multi-consumer FIFO
// queue: the Michael & Scott lock-free queue algorithm, extended with a
// single-CAS bulk-dequeue ("atomic drain") and a loosely-timed snapshot.
//
// # Concurrency
//
// All operations on [Queue] are safe for concurrent use by any number of
// goroutines without external synchronization. No operation blocks or
// spins indefinitely; every operation either completes or is retried by
// whichever goroutine's compare-and-swap lost the race, so the queue as a
// whole always makes progress even though an individual goroutine could in
// principle be retried arbitrarily many times under extreme contention.
//
// Node reclamation relies on the Go garbage collector rather than a
// free-list: once a node is detached from the chain it is never
// reinstalled, so pointer identity comparisons in the compare-and-swap
// loops cannot suffer the classic ABA problem a pooled-node
// implementation has to guard against with a monotonic counter.
package queue
