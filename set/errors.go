package set

import "errors"

// ErrArgumentInvalid is panicked by the set-algebra methods and FilterAdd
// when given a nil source sequence. New's own capacity validation is
// table.Dictionary's (see table.ErrArgumentInvalid): New is a thin
// constructor over table.New and does not re-wrap that panic under a
// second sentinel. Contention is never surfaced as an error here; it is
// retried internally by the underlying table.
var ErrArgumentInvalid = errors.New("set: invalid argument")
