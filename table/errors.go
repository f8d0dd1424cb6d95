package table

import "errors"

// Error classification codes.
//
// Contention is never surfaced here; it is retried internally until it
// resolves. Callers MUST classify errors using errors.Is.
var (
	// ErrArgumentInvalid is panicked (wrapped with context) by New when
	// initialCapacity is negative or exceeds the package's maximum table
	// size. Go's constructors signal caller programming errors by panicking
	// rather than by threading an error return through every call site that
	// already assumes a non-nil Dictionary; see New's doc comment.
	ErrArgumentInvalid = errors.New("table: invalid argument")

	// ErrKeyNotFound is returned by the strict lookup and typed-arithmetic
	// overloads (MustGet, Increment, Decrement, Plus) when key is absent.
	ErrKeyNotFound = errors.New("table: key not found")

	// ErrDuplicateKey is returned by the strict AddStrict overload when key
	// already has a live entry.
	ErrDuplicateKey = errors.New("table: duplicate key")
)
