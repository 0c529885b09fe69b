package vad

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tone(n int, amp float32) []float32 {
	x := make([]float32, n)
	for i := range x {
		x[i] = amp * float32(math.Sin(2*math.Pi*220*float64(i)/8000))
	}
	return x
}

func TestDetectRejectsNonPositiveWindow(t *testing.T) {
	_, err := Detect([]float32{1, 2, 3}, Config{Window: 0, Spacing: 10})
	require.Error(t, err)
}

func TestDetectRejectsEmptyAudio(t *testing.T) {
	_, err := Detect(nil, Config{Window: 10, Spacing: 5})
	require.Error(t, err)
}

func TestDetectRejectsBadMode(t *testing.T) {
	_, err := Detect([]float32{1, 2, 3}, Config{Window: 2, Spacing: 1, Mode: 9})
	require.Error(t, err)
}

func TestDetectFindsLoudRegionBetweenSilence(t *testing.T) {
	silence := make([]float32, 4000)
	loud := tone(8000, 0.8)
	audio := append(append(append([]float32{}, silence...), loud...), silence...)

	ranges, err := Detect(audio, Config{Window: 160, Spacing: 80, Mode: 1, SampleRate: 8000})
	require.NoError(t, err)
	require.NotEmpty(t, ranges)

	for _, r := range ranges {
		assert.Greater(t, r.End, r.Start)
		assert.GreaterOrEqual(t, r.Start, 0)
		assert.LessOrEqual(t, r.End, len(audio))
	}
	// the detected range should fall inside the loud region's vicinity
	assert.Greater(t, ranges[0].Start, 2000)
	assert.Less(t, ranges[0].End, len(audio)-2000)
}

func TestDetectAllSilenceYieldsNoRanges(t *testing.T) {
	audio := make([]float32, 4000)
	ranges, err := Detect(audio, Config{Window: 160, Spacing: 80, Mode: 1, SampleRate: 8000})
	require.NoError(t, err)
	assert.Empty(t, ranges)
}
