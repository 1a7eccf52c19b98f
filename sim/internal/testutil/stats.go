// Package testutil provides statistical assertion helpers shared by the
// simulator test packages.
package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

// AssertFloat64Equal fails t when got differs from want by more than relTol,
// relative to the larger magnitude. Two zeros are always equal.
func AssertFloat64Equal(t testing.TB, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// MeanOverSeeds evaluates f for seeds 1..n and returns the sample mean.
// Averaging independent runs keeps tolerance checks on noisy estimators stable.
func MeanOverSeeds(n int, f func(seed int64) float64) float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = f(int64(i + 1))
	}
	return stat.Mean(xs, nil)
}
