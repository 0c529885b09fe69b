package melody

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n, sampleRate int, freq float64, amp float32) []float32 {
	x := make([]float32, n)
	for i := range x {
		x[i] = amp * float32(math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return x
}

func TestTranscribeRejectsEmptyAudio(t *testing.T) {
	_, err := Transcribe(context.Background(), nil, 44100, DefaultConfig())
	require.Error(t, err)
}

func TestTranscribeRejectsHPSStrategy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PitchStrategy = "HPS"
	_, err := Transcribe(context.Background(), sine(1000, 44100, 440, 0.5), 44100, cfg)
	require.Error(t, err)
}

func TestTranscribeRejectsUnknownStrategy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PitchStrategy = "bogus"
	_, err := Transcribe(context.Background(), sine(1000, 44100, 440, 0.5), 44100, cfg)
	require.Error(t, err)
}

func TestTranscribeHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := DefaultConfig()
	_, err := Transcribe(ctx, sine(4000, 44100, 440, 0.5), 44100, cfg)
	require.Error(t, err)
}

func TestParseSampleOrMsBareInteger(t *testing.T) {
	n, err := ParseSampleOrMs("4096", 44100)
	require.NoError(t, err)
	assert.Equal(t, 4096, n)
}

func TestParseSampleOrMsWithSuffix(t *testing.T) {
	n, err := ParseSampleOrMs("20ms", 44100)
	require.NoError(t, err)
	assert.Equal(t, 882, n)
}

func TestParseSampleOrMsRejectsGarbage(t *testing.T) {
	_, err := ParseSampleOrMs("not-a-number", 44100)
	require.Error(t, err)
}
