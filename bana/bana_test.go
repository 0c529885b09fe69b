package bana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRatioAnalysisPaperExample exercises the harmonic peaks from the
// BaNa paper's worked example. Through the ratio table these pairs give
// candidates near 96, 98, 121, 192 (three times), 194, 196, 242 and 391,
// and f_1 adds a fourth 192 (see DESIGN.md). This test checks that f_1
// is present and that every candidate is positive.
func TestRatioAnalysisPaperExample(t *testing.T) {
	freqs := []float64{192, 391, 485, 581, 760}
	got := RatioAnalysis(freqs)

	assert.Contains(t, got, 192.0) // f_1 always inserted
	require.NotEmpty(t, got)
	for _, c := range got {
		assert.Greater(t, c, 0.0)
	}
}

func TestRatioAnalysisSinglePeakIsJustItself(t *testing.T) {
	got := RatioAnalysis([]float64{440})
	assert.Equal(t, []float64{440}, got)
}

func TestRatioAnalysisEmptyIsEmpty(t *testing.T) {
	got := RatioAnalysis(nil)
	assert.Empty(t, got)
}

func TestDistinctiveConsolidation(t *testing.T) {
	raw := []float64{96, 98, 121, 192, 192, 192, 194, 196, 242, 391, 190, 192}
	got := Distinctive(raw, 10, 50, 600)

	require.Len(t, got, 5)
	want := []struct {
		freq float64
		conf int
	}{
		{190, 7}, {96, 2}, {121, 1}, {242, 1}, {391, 1},
	}
	for i, w := range want {
		assert.InDelta(t, w.freq, got[i].Freq, 0.5)
		assert.Equal(t, w.conf, got[i].Confidence)
	}
}

func TestDistinctiveFiltersOutsideF0Range(t *testing.T) {
	raw := []float64{40, 100, 100, 900}
	got := Distinctive(raw, 10, 50, 600)
	for _, c := range got {
		assert.GreaterOrEqual(t, c.Freq, 50.0)
		assert.LessOrEqual(t, c.Freq, 600.0)
	}
}

func TestOrderedListInsertKeepsSortedOrder(t *testing.T) {
	l := NewOrderedList(4)
	l.Insert(3)
	l.Insert(1)
	l.Insert(2)
	assert.Equal(t, []float64{1, 2, 3}, l.Values())
}

func TestSelectPathPrefersStableOctave(t *testing.T) {
	frames := []DistinctList{
		{{Freq: 200, Confidence: 5}},
		{{Freq: 204, Confidence: 5}, {Freq: 408, Confidence: 1}},
		{{Freq: 201, Confidence: 5}},
	}
	path := SelectPath(frames)
	require.Len(t, path, 3)
	assert.InDelta(t, 204, path[1].Freq, 0.01)
}

func TestSelectPathSkipsSilentFrames(t *testing.T) {
	frames := []DistinctList{
		{{Freq: 200, Confidence: 3}},
		nil,
		{{Freq: 205, Confidence: 3}},
	}
	path := SelectPath(frames)
	require.Len(t, path, 2)
	assert.Equal(t, 0, path[0].FrameIndex)
	assert.Equal(t, 2, path[1].FrameIndex)
}

func TestSelectPathSingleIsolatedFrameUsesFirstCandidate(t *testing.T) {
	frames := []DistinctList{
		{{Freq: 100, Confidence: 1}, {Freq: 200, Confidence: 9}},
	}
	path := SelectPath(frames)
	require.Len(t, path, 1)
	assert.InDelta(t, 100, path[0].Freq, 0.01)
}
