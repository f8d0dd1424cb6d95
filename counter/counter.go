// Package counter provides a process-wide approximate size tracker.
//
// Counter is the external collaborator referenced by the table and set
// packages for "how many live entries do I have": lock-free, wait-free on
// any platform with a native atomic add, and deliberately weak about
// ordering. Callers that need an exact count must quiesce all mutators
// first; Read during concurrent mutation may return a value that never
// existed as a single consistent snapshot.
package counter

import "sync/atomic"

// Counter is a lock-free approximate counter.
//
// The zero value is a valid Counter reading zero. Counter must not be
// copied after first use.
type Counter struct {
	v atomic.Int64
}

// New returns a Counter initialized to n.
func New(n int64) *Counter {
	c := &Counter{}
	c.v.Store(n)

	return c
}

// Increment adds one and returns the updated value.
func (c *Counter) Increment() int64 {
	return c.v.Add(1)
}

// Decrement subtracts one and returns the updated value.
func (c *Counter) Decrement() int64 {
	return c.v.Add(-1)
}

// Add adds n (which may be negative) and returns the updated value.
func (c *Counter) Add(n int64) int64 {
	return c.v.Add(n)
}

// Exchange atomically sets the counter to n and returns the previous value.
func (c *Counter) Exchange(n int64) int64 {
	return c.v.Swap(n)
}

// Read returns an approximate current value.
//
// On architectures without a globally consistent view of the most recent
// atomic add from every core, a concurrent Increment/Decrement may not yet
// be visible to this call. The table and set packages never depend on Read
// for correctness of stored data, only for resize heuristics and reported
// Count().
func (c *Counter) Read() int64 {
	return c.v.Load()
}
