package table

import "fmt"

// MustGet returns the value stored for key, or returns ErrKeyNotFound
// wrapped with the key itself if key is absent. It is the strict
// counterpart of Get for callers that treat a miss as a failure rather
// than a normal outcome.
func (d *Dictionary[K, V]) MustGet(key K) (V, error) {
	v, ok := d.Get(key)
	if !ok {
		var zero V

		return zero, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}

	return v, nil
}

// AddStrict installs value for key and returns ErrDuplicateKey if key
// already carries a live entry. It is the strict counterpart of TryAdd.
func (d *Dictionary[K, V]) AddStrict(key K, value V) error {
	added, _ := d.TryAdd(key, value)
	if !added {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, key)
	}

	return nil
}
