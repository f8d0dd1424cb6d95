// Package table implements a concurrent, open-addressed hash table:
// Dictionary[K, V]. Linear probing, lazy deletion via tombstones, and
// incremental resize-by-copy, all driven entirely by compare-and-swap;
// no mutex is ever held for the duration of a Get, PutIfMatch-derived
// operation, or a cooperative migration chunk.
//
// # Concurrency
//
// Every exported method is safe for unsynchronized concurrent use. No
// operation blocks except the resize back-pressure sleep, which is a
// deliberate rate limiter, not a correctness requirement.
//
// # Errors
//
// Contention is never surfaced as an error; it is retried internally.
// Only argument validation (ErrArgumentInvalid, panicked by New),
// strict-lookup misses (ErrKeyNotFound), and strict-insert conflicts
// (ErrDuplicateKey, returned like ErrKeyNotFound) reach callers. A host allocation failure during resize or slot
// installation (an out-of-memory panic from make, on this runtime) is left
// to propagate: the partial state it leaves behind is indistinguishable
// from "never written" (an unset hash, or a slot CAS that never landed),
// so no invariant is at risk.
package table
