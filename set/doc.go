// Package set implements Set[T], a concurrent set built by eliding the
// value payload from table.Dictionary, plus the lazy add/remove iterators
// FilterAdd and RemoveWhere that mutate the underlying table while being
// walked.
//
// # Concurrency
//
// Set-algebra methods (UnionWith, IntersectWith, ExceptWith, ...) are not
// atomic: each iterates its argument once against the receiver, so
// concurrent mutation of either side yields a loosely consistent result,
// exactly as table.Dictionary's own iteration does.
package set
