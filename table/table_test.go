package table_test

import (
	"errors"
	"testing"

	"github.com/lockfree-go/nbcollections/table"
)

func TestDictionary_SingleThreadInsertLookup(t *testing.T) {
	t.Parallel()

	d := table.New[int, string](0, nil)

	d.TryAdd(1, "a")
	d.TryAdd(2, "b")
	d.TryAdd(3, "c")

	if v, ok := d.Get(2); !ok || v != "b" {
		t.Fatalf("Get(2) = %q, %v; want \"b\", true", v, ok)
	}

	if got := d.Count(); got != 3 {
		t.Fatalf("Count() = %d, want 3", got)
	}

	seen := map[int]string{}
	for k, v := range d.All() {
		seen[k] = v
	}

	want := map[int]string{1: "a", 2: "b", 3: "c"}
	if len(seen) != len(want) {
		t.Fatalf("All() yielded %v, want %v", seen, want)
	}

	for k, v := range want {
		if seen[k] != v {
			t.Fatalf("All()[%d] = %q, want %q", k, seen[k], v)
		}
	}
}

func TestDictionary_GetOnAbsentKey(t *testing.T) {
	t.Parallel()

	d := table.New[string, int](0, nil)

	if _, ok := d.Get("missing"); ok {
		t.Fatal("Get on absent key reported found")
	}
}

func TestDictionary_RemoveThenGetIsAbsent(t *testing.T) {
	t.Parallel()

	d := table.New[int, int](0, nil)

	d.TryAdd(1, 100)

	removed, v := d.Remove(1)
	if !removed || v != 100 {
		t.Fatalf("Remove(1) = %v, %d; want true, 100", removed, v)
	}

	if _, ok := d.Get(1); ok {
		t.Fatal("Get after Remove reports still present")
	}

	if got := d.Count(); got != 0 {
		t.Fatalf("Count() after Remove = %d, want 0", got)
	}
}

func TestDictionary_TryAddRejectsDuplicate(t *testing.T) {
	t.Parallel()

	d := table.New[int, int](0, nil)

	added1, _ := d.TryAdd(1, 10)
	added2, existing := d.TryAdd(1, 20)

	if !added1 {
		t.Fatal("first TryAdd failed")
	}

	if added2 {
		t.Fatal("second TryAdd on same key succeeded")
	}

	if existing != 10 {
		t.Fatalf("second TryAdd's existing = %d, want 10", existing)
	}
}

func TestDictionary_GetOrAddReturnsSameValueAsGet(t *testing.T) {
	t.Parallel()

	d := table.New[int, int](0, nil)

	v1 := d.GetOrAdd(1, 42)
	v2, _ := d.Get(1)

	if v1 != 42 || v2 != 42 {
		t.Fatalf("v1=%d v2=%d, want 42, 42", v1, v2)
	}

	v3 := d.GetOrAdd(1, 999)
	if v3 != 42 {
		t.Fatalf("GetOrAdd on existing key = %d, want 42 (untouched)", v3)
	}
}

func TestDictionary_AddOrUpdate(t *testing.T) {
	t.Parallel()

	d := table.New[string, int](0, nil)

	v1 := d.AddOrUpdate("k", 1, func(_ string, cur int) int { return cur + 1 })
	if v1 != 1 {
		t.Fatalf("AddOrUpdate on absent key = %d, want 1", v1)
	}

	v2 := d.AddOrUpdate("k", 1, func(_ string, cur int) int { return cur + 1 })
	if v2 != 2 {
		t.Fatalf("AddOrUpdate on present key = %d, want 2", v2)
	}
}

func TestDictionary_UpdateRequiresExpectedMatch(t *testing.T) {
	t.Parallel()

	d := table.New[int, int](0, nil)
	d.TryAdd(1, 10)

	if ok := d.Update(1, 20, 99, nil); ok {
		t.Fatal("Update succeeded with mismatched expected value")
	}

	if ok := d.Update(1, 20, 10, nil); !ok {
		t.Fatal("Update failed with matching expected value")
	}

	v, _ := d.Get(1)
	if v != 20 {
		t.Fatalf("Get after Update = %d, want 20", v)
	}
}

func TestDictionary_RemoveIfEqual(t *testing.T) {
	t.Parallel()

	d := table.New[int, int](0, nil)
	d.TryAdd(1, 10)

	if d.RemoveIfEqual(1, 99, nil) {
		t.Fatal("RemoveIfEqual succeeded with mismatched value")
	}

	if !d.RemoveIfEqual(1, 10, nil) {
		t.Fatal("RemoveIfEqual failed with matching value")
	}

	if _, ok := d.Get(1); ok {
		t.Fatal("key still present after matching RemoveIfEqual")
	}
}

func TestDictionary_RemoveFunc(t *testing.T) {
	t.Parallel()

	d := table.New[int, int](0, nil)
	d.TryAdd(1, 10)

	if d.RemoveFunc(1, func(cur int) bool { return cur > 50 }) {
		t.Fatal("RemoveFunc succeeded with failing predicate")
	}

	if !d.RemoveFunc(1, func(cur int) bool { return cur == 10 }) {
		t.Fatal("RemoveFunc failed with passing predicate")
	}

	if _, ok := d.Get(1); ok {
		t.Fatal("key still present after predicate removal")
	}
}

func TestDictionary_Clear(t *testing.T) {
	t.Parallel()

	d := table.New[int, int](0, nil)
	for i := range 100 {
		d.TryAdd(i, i)
	}

	d.Clear()

	if got := d.Count(); got != 0 {
		t.Fatalf("Count() after Clear = %d, want 0", got)
	}

	if _, ok := d.Get(0); ok {
		t.Fatal("key still present after Clear")
	}
}

func TestDictionary_MustGet(t *testing.T) {
	t.Parallel()

	d := table.New[int, int](0, nil)
	d.TryAdd(1, 5)

	if v, err := d.MustGet(1); err != nil || v != 5 {
		t.Fatalf("MustGet(1) = %d, %v; want 5, nil", v, err)
	}

	if _, err := d.MustGet(2); err == nil {
		t.Fatal("MustGet on absent key returned nil error")
	}
}

func TestDictionary_AddStrict(t *testing.T) {
	t.Parallel()

	d := table.New[int, int](0, nil)

	if err := d.AddStrict(1, 10); err != nil {
		t.Fatalf("AddStrict on absent key failed: %v", err)
	}

	if err := d.AddStrict(1, 20); err == nil {
		t.Fatal("AddStrict on present key succeeded")
	}
}

func TestDictionary_Arithmetic(t *testing.T) {
	t.Parallel()

	d := table.New[string, int](0, nil)
	d.TryAdd("k", 0)

	arith := table.Arith(d)

	v, err := arith.Increment("k")
	if err != nil || v != 1 {
		t.Fatalf("Increment = %d, %v; want 1, nil", v, err)
	}

	v, err = arith.Plus("k", 41)
	if err != nil || v != 42 {
		t.Fatalf("Plus(41) = %d, %v; want 42, nil", v, err)
	}

	if _, err := arith.Increment("missing"); err == nil {
		t.Fatal("Increment on absent key returned nil error")
	}
}

func TestDictionary_CapacityGrowsUnderLoad(t *testing.T) {
	t.Parallel()

	const n = 10_000

	d := table.New[int, int](16, nil)

	for i := range n {
		d.TryAdd(i, i*i)
	}

	if got := d.Count(); got != n {
		t.Fatalf("Count() = %d, want %d", got, n)
	}

	for i := range n {
		v, ok := d.Get(i)
		if !ok || v != i*i {
			t.Fatalf("Get(%d) = %d, %v; want %d, true", i, v, ok, i*i)
		}
	}

	if got := d.Capacity(); got < 16384 {
		t.Fatalf("Capacity() = %d, want >= 16384", got)
	}
}

func TestDictionary_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	d := table.New[int, string](0, nil)
	d.TryAdd(1, "a")
	d.TryAdd(2, "b")

	clone := d.Clone()

	if got := clone.Count(); got != 2 {
		t.Fatalf("clone.Count() = %d, want 2", got)
	}

	// Mutating either side must not affect the other.
	d.Remove(1)
	clone.TryAdd(3, "c")

	if _, ok := clone.Get(1); !ok {
		t.Fatal("clone lost key 1 after removal from the original")
	}

	if _, ok := d.Get(3); ok {
		t.Fatal("original gained key 3 after insertion into the clone")
	}
}

func TestDictionary_Snapshot(t *testing.T) {
	t.Parallel()

	d := table.New[int, int](0, nil)
	for i := range 20 {
		d.TryAdd(i, i*10)
	}

	d.Remove(5)

	snap := d.Snapshot()

	if len(snap) != 19 {
		t.Fatalf("Snapshot has %d entries, want 19", len(snap))
	}

	if _, ok := snap[5]; ok {
		t.Fatal("Snapshot contains removed key 5")
	}

	if snap[7] != 70 {
		t.Fatalf("snap[7] = %d, want 70", snap[7])
	}
}

func TestNew_NegativeCapacityPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("New(-1, nil) did not panic")
		}

		err, ok := r.(error)
		if !ok || !errors.Is(err, table.ErrArgumentInvalid) {
			t.Fatalf("recovered panic = %v, want an error wrapping ErrArgumentInvalid", r)
		}
	}()

	table.New[int, int](-1, nil)
}

func TestNew_OversizedCapacityPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("New with capacity beyond the maximum did not panic")
		}

		err, ok := r.(error)
		if !ok || !errors.Is(err, table.ErrArgumentInvalid) {
			t.Fatalf("recovered panic = %v, want an error wrapping ErrArgumentInvalid", r)
		}
	}()

	table.New[int, int](1<<30+1, nil)
}
