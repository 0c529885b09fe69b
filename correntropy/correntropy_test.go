package correntropy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFastExpNegSqMatchesExpNear(t *testing.T) {
	// the Schraudolph approximation carries a documented ~3.6% max
	// relative error over its active interval; this is not an exact
	// exp(), so the tolerance here is loose by design.
	for _, uSq := range []float64{0, 0.01, 0.5, 1, 4, 20} {
		got := fastExpNegSq(uSq)
		want := math.Exp(-uSq)
		assert.InDelta(t, want, got, 0.04)
	}
}

func TestFastExpNegSqClampsBeyondMax(t *testing.T) {
	assert.Equal(t, 0.0, fastExpNegSq(schraudolphMax))
	assert.Equal(t, 0.0, fastExpNegSq(200))
}

func TestCheckShapeRejectsNonMultipleOf4(t *testing.T) {
	err := checkShape(Params{Win: 6, MaxLag: 8, Hop: 4})
	require.Error(t, err)
}

func TestComputeUniformSignalMatchesKernelAtZeroWithinApproxTolerance(t *testing.T) {
	// 8 windows of Win 8 with MaxLag 8 at hop 4 read (8-1)*4+8+8 = 44 samples
	n := 44
	x := make([]float32, n)
	for i := range x {
		x[i] = 0.5
	}
	p := Params{Win: 8, MaxLag: 8, Hop: 4}
	nw := NumWindows(n, p)
	require.Equal(t, 8, nw)

	sigma := []float64{1, 0.875, 0.75, 0.625, 0.5, 0.375, 0.25, 0.125}
	out := make([]float64, nw)
	require.NoError(t, Compute(out, x, sigma, p))

	for i, s := range sigma {
		want := float64(p.MaxLag) / (s * math.Sqrt(2*math.Pi))
		assert.InEpsilon(t, want, out[i], 0.05)
	}
}

func TestNumWindowsTooShortIsZero(t *testing.T) {
	assert.Equal(t, 0, NumWindows(4, Params{Win: 8, MaxLag: 8, Hop: 4}))
}
