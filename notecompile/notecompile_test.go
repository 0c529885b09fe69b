package notecompile

import (
	"testing"

	"github.com/emer/meloscribe/vad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNotesRejectsOddTransientCount(t *testing.T) {
	_, err := BuildNotes([]int{0, 100, 200}, nil, 8000, nil)
	require.Error(t, err)
}

func TestBuildNotesWeightedAverage(t *testing.T) {
	transients := []int{0, 100}
	frames := []FramePitch{
		{StartSample: 0, Length: 50, Freq: 200},
		{StartSample: 50, Length: 50, Freq: 400},
	}
	notes, err := BuildNotes(transients, frames, 8000, nil)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.InDelta(t, 300, notes[0].Freq, 1e-9)
}

func TestBuildNotesDropsZeroOrNonFiniteFreq(t *testing.T) {
	transients := []int{0, 100}
	notes, err := BuildNotes(transients, nil, 8000, nil)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestBuildNotesDropsOnsetNearActivityBoundary(t *testing.T) {
	transients := []int{100, 200}
	frames := []FramePitch{{StartSample: 100, Length: 100, Freq: 220}}
	activity := []vad.ActivityRange{{Start: 90, End: 500}}
	notes, err := BuildNotes(transients, frames, 8000, activity)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestFreqToMIDIMode0RoundsDirectly(t *testing.T) {
	got, err := FreqToMIDI([]float64{440}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{57}, got) // A4 maps to 57 under this module's n=12log2(f/440)+57 convention
}

func TestFreqToMIDIRejectsBadMode(t *testing.T) {
	_, err := FreqToMIDI([]float64{440}, 3)
	require.Error(t, err)
}

func TestFreqToMIDIMiddleC(t *testing.T) {
	got, err := FreqToMIDI([]float64{261.6256}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{48}, got)
}

func TestFreqToMIDIMode2UsesNeighborhoodAverage(t *testing.T) {
	freqs := []float64{440, 440, 440, 440, 440}
	got, err := FreqToMIDI(freqs, 2)
	require.NoError(t, err)
	for _, n := range got {
		assert.Equal(t, 57, n)
	}
}
