package hashfilter_test

import (
	"testing"

	"github.com/lockfree-go/nbcollections/internal/hashfilter"
)

func TestApply_NeverZero(t *testing.T) {
	t.Parallel()

	if got := hashfilter.Apply(0); got == 0 {
		t.Fatalf("Apply(0) = 0, want nonzero sentinel")
	}
}

func TestApply_PassesNonzeroThrough(t *testing.T) {
	t.Parallel()

	for _, h := range []int32{1, -1, 42, 1 << 30} {
		if got := hashfilter.Apply(h); got != h {
			t.Fatalf("Apply(%d) = %d, want %d", h, got, h)
		}
	}
}
