package table

import "reflect"

// Comparer decides value equality for Update/Remove overloads that take an
// expected value. The zero Comparer is not usable; use defaultComparer or
// an explicit implementation for value types where == isn't meaningful
// (e.g. slices, or semantic equality narrower than struct equality).
type Comparer[V any] interface {
	Equal(a, b V) bool
}

// ComparerFunc adapts a plain function to Comparer.
type ComparerFunc[V any] func(a, b V) bool

func (f ComparerFunc[V]) Equal(a, b V) bool { return f(a, b) }

// defaultComparer is used whenever a caller omits an explicit Comparer. V is
// unconstrained (not required to be comparable), so this falls back to
// reflect.DeepEqual rather than ==; callers with a cheaper or more precise
// notion of equality should supply their own Comparer.
type defaultComparer[V any] struct{}

func (defaultComparer[V]) Equal(a, b V) bool {
	return reflect.DeepEqual(a, b)
}
