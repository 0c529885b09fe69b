package stft

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRejectsPaddedSmallerThanWindow(t *testing.T) {
	_, err := Compute(make([]float32, 100), 64, 32, 16)
	require.Error(t, err)
}

func TestComputeShortSignalIsSingleBlock(t *testing.T) {
	audio := make([]float32, 10)
	spec, err := Compute(audio, 64, 64, 32)
	require.NoError(t, err)
	assert.Equal(t, 1, spec.NumBlocks)
}

func TestComputeSineHasPeakNearExpectedBin(t *testing.T) {
	sampleRate := 8000
	freq := 440.0
	n := 4096
	audio := make([]float32, n)
	for i := range audio {
		audio[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate)))
	}
	spec, err := Compute(audio, n, n, n)
	require.NoError(t, err)
	row := spec.Row(0)

	peakBin := 0
	peakVal := 0.0
	for i, v := range row {
		if v > peakVal {
			peakVal = v
			peakBin = i
		}
	}
	expected := FreqToBin(freq, n, sampleRate)
	assert.InDelta(t, expected, peakBin, 2)
}

func TestNumBlocksForClampsToOne(t *testing.T) {
	assert.Equal(t, 1, NumBlocksFor(10, 64, 32))
}
