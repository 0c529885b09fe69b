package rollsigma

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRejectsNonPositiveWindow(t *testing.T) {
	_, err := Compute([]float64{1, 2, 3}, 0, 1, ScaleFactor)
	require.Error(t, err)
}

func TestComputeRejectsNonPositiveInterval(t *testing.T) {
	_, err := Compute([]float64{1, 2, 3}, 2, 0, ScaleFactor)
	require.Error(t, err)
}

func TestComputeConstantSignalHasZeroSigma(t *testing.T) {
	x := make([]float64, 64)
	for i := range x {
		x[i] = 0.5
	}
	out, err := Compute(x, 16, 4, ScaleFactor)
	require.NoError(t, err)
	for _, v := range out {
		assert.InDelta(t, 0, v, 1e-9)
	}
}

func TestComputeSineProducesNonzeroSigma(t *testing.T) {
	n := 1024
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * float64(i) / float64(n))
	}
	out, err := Compute(x, 256, 32, 1.0)
	require.NoError(t, err)
	// the middle window is centred on the sine's zero crossing, where the
	// signal varies across the window, so its sigma is nonzero
	mid := out[len(out)/2]
	assert.Greater(t, mid, 0.0)
}

func TestAccumulatorAddRemoveRoundTrips(t *testing.T) {
	acc := &accumulator{}
	vals := []float64{1, 2, 3, 4, 5}
	for _, v := range vals {
		acc.add(v)
	}
	assert.Equal(t, 5, acc.nobs)
	for _, v := range vals {
		acc.remove(v)
	}
	assert.Equal(t, 0, acc.nobs)
	assert.InDelta(t, 0, acc.ssqdm, 1e-9)
}
