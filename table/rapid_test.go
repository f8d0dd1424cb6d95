package table_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/lockfree-go/nbcollections/table"
)

// TestDictionary_RapidSequentialModel fuzzes a randomized single-goroutine
// op sequence against a plain Go map reference model, shrinking on
// mismatch. It covers the same ground as TestDictionary_SequentialModel
// but over a much larger space of generated sequences; any probing or
// state-machine violation manifests as a Get/Count mismatch against the
// model.
func TestDictionary_RapidSequentialModel(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		d := table.New[int, int](0, nil)
		model := map[int]int{}

		keySpace := rapid.IntRange(0, 40)
		valSpace := rapid.Int()
		opKind := rapid.IntRange(0, 4)

		steps := rapid.IntRange(1, 300).Draw(t, "steps")

		for i := 0; i < steps; i++ {
			key := keySpace.Draw(t, "key")

			switch opKind.Draw(t, "op") {
			case 0: // TryAdd
				val := valSpace.Draw(t, "val")
				added, _ := d.TryAdd(key, val)

				_, existed := model[key]
				if added == existed {
					t.Fatalf("TryAdd(%d) added=%v but model existed=%v", key, added, existed)
				}

				if !existed {
					model[key] = val
				}
			case 1: // Remove
				removed, _ := d.Remove(key)

				_, existed := model[key]
				if removed != existed {
					t.Fatalf("Remove(%d) = %v, want %v", key, removed, existed)
				}

				delete(model, key)
			case 2: // Get
				got, ok := d.Get(key)

				want, existed := model[key]
				if ok != existed {
					t.Fatalf("Get(%d) ok=%v, want %v", key, ok, existed)
				}

				if existed && got != want {
					t.Fatalf("Get(%d) = %d, want %d", key, got, want)
				}
			case 3: // GetOrAdd
				val := valSpace.Draw(t, "val")
				got := d.GetOrAdd(key, val)

				want, existed := model[key]
				if !existed {
					model[key] = val
					want = val
				}

				if got != want {
					t.Fatalf("GetOrAdd(%d) = %d, want %d", key, got, want)
				}
			case 4: // AddOrUpdate
				val := valSpace.Draw(t, "val")
				got := d.AddOrUpdate(key, val, func(_ int, cur int) int { return cur + 1 })

				if cur, existed := model[key]; existed {
					model[key] = cur + 1
				} else {
					model[key] = val
				}

				if got != model[key] {
					t.Fatalf("AddOrUpdate(%d) = %d, want %d", key, got, model[key])
				}
			}
		}

		for k, want := range model {
			got, ok := d.Get(k)
			if !ok || got != want {
				t.Fatalf("final Get(%d) = %d, %v; want %d, true", k, got, ok, want)
			}
		}

		if got := d.Count(); got != int64(len(model)) {
			t.Fatalf("final Count() = %d, want %d", got, len(model))
		}
	})
}
