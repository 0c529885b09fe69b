package transient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentRejectsAllZeroDetFunc(t *testing.T) {
	_, err := Segment(make([]float64, 100))
	require.Error(t, err)
}

func TestSegmentReturnsEvenAlternatingIncreasing(t *testing.T) {
	d := make([]float64, 4000)
	// a single synthetic onset/offset pair of spikes on a small constant
	// floor, so the fitter has something to lock onto
	for i := range d {
		d[i] = 0.01
	}
	d[10] = 5
	d[3000] = -5

	out, err := Segment(d)
	require.NoError(t, err)
	assert.Equal(t, 0, len(out)%2)
	for i := 1; i < len(out); i++ {
		assert.Greater(t, out[i], out[i-1])
	}
	for _, v := range out {
		assert.LessOrEqual(t, v, len(d))
	}
}

func TestKernelTemplateMonotoneAndZeroCrossing(t *testing.T) {
	lam := kernelTemplate(101)
	for i := 1; i < len(lam); i++ {
		assert.Greater(t, lam[i], lam[i-1])
	}
	mid := lam[50]
	assert.InDelta(t, 0, mid, 1e-3)
}

func TestRoundMul4Helpers(t *testing.T) {
	assert.Equal(t, 8, roundUpMul4(5))
	assert.Equal(t, 8, roundUpMul4(8))
	assert.Equal(t, 4, roundDownMul4(5))
	assert.Equal(t, 4, roundDownMul4(1))
}
