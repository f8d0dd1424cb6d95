package table

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Arithmetic exposes typed atomic increment/decrement/add operations,
// defined only for Dictionary instances whose value type is an integer. It
// is obtained with Arith, rather than being methods directly on
// Dictionary, because Go methods cannot carry an extra type constraint
// beyond the receiver's own type parameters.
type Arithmetic[K comparable, V constraints.Integer] struct {
	d *Dictionary[K, V]
}

// Arith adapts d for typed atomic arithmetic. d's value type must satisfy
// constraints.Integer; this is enforced by Arith's own type parameter list,
// not by a runtime check.
func Arith[K comparable, V constraints.Integer](d *Dictionary[K, V]) Arithmetic[K, V] {
	return Arithmetic[K, V]{d: d}
}

// Increment adds one to the value stored for key and returns the new
// value. Returns ErrKeyNotFound if key is absent.
func (a Arithmetic[K, V]) Increment(key K) (V, error) {
	return a.Plus(key, 1)
}

// Decrement subtracts one from the value stored for key and returns the new
// value. Returns ErrKeyNotFound if key is absent.
func (a Arithmetic[K, V]) Decrement(key K) (V, error) {
	var one V = 1

	return a.Plus(key, 0-one)
}

// Plus adds delta to the value stored for key and returns the new value.
// Returns ErrKeyNotFound if key is absent; the table is left unchanged in
// that case.
func (a Arithmetic[K, V]) Plus(key K, delta V) (V, error) {
	var newVal V

	producer := func(live bool, cur V) V {
		newVal = cur + delta

		return newVal
	}

	_, existed, installed := a.d.putIfMatch(key, stateLive, matchLive[V], producer)
	if !existed || !installed {
		var zero V

		return zero, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}

	return newVal, nil
}
