package queue

import "errors"

// Error classification codes.
//
// Contention is never user-visible: it is retried internally. Only
// argument validation is surfaced here.
var (
	// ErrArgumentInvalid is returned by CopyInto when index is negative.
	// EnqueueRange treats a nil/empty items as a normal zero-length append
	// rather than a validation failure, matching append's own nil-slice
	// semantics.
	ErrArgumentInvalid = errors.New("queue: invalid argument")

	// ErrCopyTargetTooSmall is returned by CopyInto when dst cannot hold
	// the queue's contents starting at index.
	ErrCopyTargetTooSmall = errors.New("queue: copy target too small")
)
