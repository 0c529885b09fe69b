// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bana

import (
	"math"

	"github.com/emer/meloscribe/peaks"
	"github.com/emer/meloscribe/stft"
)

// FrameConfig bundles the per-frame tunables §4.8.1/§4.8.2 fix for a
// given sample rate and FFT size.
type FrameConfig struct {
	FFTSize      int
	SampleRate   int
	F0Min        float64
	F0Max        float64
	HarmonicMult float64 // p: harmonics searched up to p*F0Max
	PeakCount    int     // how many harmonic peaks to locate (5 in the paper)
	Xi           ModeXi
	First        bool // true: plain BaNa (first N qualifying peaks); false: BaNaMusic (N loudest)
}

// DefaultConfig returns the paper's usual singing-voice configuration:
// 80-800 Hz search range, 5 harmonics, p=5 (the same p bounds both the
// harmonic-band preprocessing cutoff and the peak count).
func DefaultConfig(fftSize, sampleRate int, xi ModeXi) FrameConfig {
	return FrameConfig{
		FFTSize:      fftSize,
		SampleRate:   sampleRate,
		F0Min:        80,
		F0Max:        800,
		HarmonicMult: 5,
		PeakCount:    5,
		Xi:           xi,
		First:        xi == XiBaNa,
	}
}

// FrameCandidates runs one spectrogram row through preprocessing, peak
// finding, ratio analysis, and distinctive-candidate consolidation
// (§4.8.2 steps 1-5), returning the frame's distinctive f0 candidates.
func FrameCandidates(row []float64, cfg FrameConfig) DistinctList {
	work := preprocess(row, cfg)

	ampThresh, smoothWidth := frameStats(work, cfg.FFTSize, cfg.SampleRate)

	x := make([]float64, len(work))
	for i := range x {
		x[i] = stft.BinToFreq(i, cfg.FFTSize, cfg.SampleRate)
	}

	found, err := peaks.Find(x, work, peaks.Options{
		SlopeThreshold: 0,
		AmpThreshold:   ampThresh,
		SmoothWidth:    smoothWidth,
		PeakGroup:      5,
		SmoothType:     3,
		N:              cfg.PeakCount,
		First:          cfg.First,
	})
	if err != nil || len(found) == 0 {
		return nil
	}

	freqs := make([]float64, len(found))
	for i, p := range found {
		freqs[i] = p.Freq
	}

	raw := RatioAnalysis(freqs)
	return Distinctive(raw, cfg.Xi, cfg.F0Min, cfg.F0Max)
}

// preprocess zeroes every bin outside [F0Min, HarmonicMult*F0Max], the
// band the harmonic peaks of interest can actually fall in.
func preprocess(row []float64, cfg FrameConfig) []float64 {
	work := append([]float64(nil), row...)
	loBin := stft.FreqToBin(cfg.F0Min, cfg.FFTSize, cfg.SampleRate)
	hiBin := stft.FreqToBin(cfg.HarmonicMult*cfg.F0Max, cfg.FFTSize, cfg.SampleRate)
	for i := range work {
		if i < loBin || i > hiBin {
			work[i] = 0
		}
	}
	return work
}

// frameStats derives the amplitude threshold (§4.8.2 step 1:
// max(magnitude)/15) and the smoothing width (50*fftSize/sampleRate,
// scaled to the frame's frequency resolution) the O'Haver finder needs.
func frameStats(row []float64, fftSize, sampleRate int) (ampThresh float64, smoothWidth int) {
	maxV := 0.0
	for _, v := range row {
		if v > maxV {
			maxV = v
		}
	}
	ampThresh = maxV / 15
	smoothWidth = int(math.Round(50 * float64(fftSize) / float64(sampleRate)))
	if smoothWidth < 1 {
		smoothWidth = 1
	}
	return
}

// logRatioCost is the BaNa path-selection edge weight (§4.8.3): the
// octave distance between two candidates' frequencies, penalized
// inversely by the predecessor's confidence.
func logRatioCost(a, b DistinctCandidate) float64 {
	return math.Abs(math.Log2(b.Freq/a.Freq)) + 0.4/float64(a.Confidence)
}
