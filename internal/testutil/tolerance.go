package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t testing.TB, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
		return
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
			return
		}
	}
}

// RequireDelayedNearlyEqual fails t unless got is want delayed by lag
// samples: the first lag samples of got must be within eps of zero and
// got[i] within eps of want[i-lag] after that. Both slices must have the
// same length.
func RequireDelayedNearlyEqual(t testing.TB, got, want []float64, lag int, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
		return
	}
	if lag < 0 || lag > len(got) {
		t.Fatalf("lag %d out of range [0, %d]", lag, len(got))
		return
	}
	for i := range lag {
		if math.Abs(got[i]) > eps {
			t.Fatalf("index %d: got %v before the %d sample lag, want 0", i, got[i], lag)
			return
		}
	}
	for i := lag; i < len(got); i++ {
		diff := math.Abs(got[i] - want[i-lag])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v from index %d (diff %v > eps %v)", i, got[i], want[i-lag], i-lag, diff, eps)
			return
		}
	}
}
