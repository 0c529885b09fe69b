// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package notecompile assembles the transient list and per-frame pitch
// path into discrete notes, and converts each note's averaged frequency
// into a MIDI note number under one of three tuning-correction modes.
package notecompile

import (
	"fmt"
	"math"

	"github.com/emer/meloscribe/mxerr"
	"github.com/emer/meloscribe/vad"
)

// boundaryGuardMS is how close (in milliseconds) a transient may fall to
// an activity-range boundary before it is dropped as spurious.
const boundaryGuardMS = 40

// Note is one assembled note: a sample range and its averaged
// fundamental frequency, ahead of MIDI quantization.
type Note struct {
	StartSample int
	EndSample   int
	Freq        float64
}

// FramePitch is one STFT frame's pitch-path estimate, located on the
// sample axis by its window start and length.
type FramePitch struct {
	StartSample int
	Length      int
	Freq        float64 // 0 if the frame had no selected candidate
}

// BuildNotes pairs up the alternating on/off transient list into note
// ranges (T[2i], T[2i+1]) and assigns each a frequency from the
// weighted average of the overlapping frame pitches. When activity is
// non-nil, onsets within boundaryGuardMS of an activity-range boundary
// are dropped.
func BuildNotes(transients []int, frames []FramePitch, sampleRate int, activity []vad.ActivityRange) ([]Note, error) {
	if len(transients)%2 != 0 {
		return nil, fmt.Errorf("notecompile.BuildNotes: %w", mxerr.ErrNoTransients)
	}
	guard := boundaryGuardMS * sampleRate / 1000

	var notes []Note
	for i := 0; i+1 < len(transients); i += 2 {
		start, end := transients[i], transients[i+1]
		if end <= start {
			continue
		}
		if activity != nil && nearBoundary(start, activity, guard) {
			continue
		}
		freq := weightedFreq(frames, start, end)
		if freq == 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
			continue
		}
		notes = append(notes, Note{StartSample: start, EndSample: end, Freq: freq})
	}
	return notes, nil
}

func nearBoundary(sample int, activity []vad.ActivityRange, guard int) bool {
	for _, r := range activity {
		if abs(sample-r.Start) <= guard || abs(sample-r.End) <= guard {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// weightedFreq averages the frame frequencies overlapping [start, end),
// weighted by the number of samples of overlap each frame contributes.
func weightedFreq(frames []FramePitch, start, end int) float64 {
	var sumW, sumWF float64
	for _, f := range frames {
		if f.Freq == 0 {
			continue
		}
		fStart, fEnd := f.StartSample, f.StartSample+f.Length
		lo, hi := maxInt(start, fStart), minInt(end, fEnd)
		if hi <= lo {
			continue
		}
		w := float64(hi - lo)
		sumW += w
		sumWF += w * f.Freq
	}
	if sumW == 0 {
		return 0
	}
	return sumWF / sumW
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// FreqToMIDI converts a sequence of note frequencies into fractional
// MIDI note numbers n = 12*log2(f/440) + 57, then applies the tuning
// correction selected by mode:
//
//	0: round(n)
//	1: round(round(n-nbar)+nbar) when within 0.0625 of an integer offset
//	   from the local (+/-2 note) neighbourhood average nbar, else round(n)
//	2: always round(round(n-nbar)+nbar)
func FreqToMIDI(freqs []float64, mode int) ([]int, error) {
	if mode < 0 || mode > 2 {
		return nil, fmt.Errorf("notecompile.FreqToMIDI: %w", mxerr.ErrBadTuningMode)
	}

	n := make([]float64, len(freqs))
	for i, f := range freqs {
		v := 12*math.Log2(f/440) + 57
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("notecompile.FreqToMIDI: %w", mxerr.ErrInfNote)
		}
		n[i] = v
	}

	out := make([]int, len(n))
	for i := range n {
		switch mode {
		case 0:
			out[i] = int(math.Round(n[i]))
		case 1:
			nbar := neighborhoodAverage(n, i)
			frac := n[i] - nbar
			corrected := math.Round(frac)
			if math.Abs(frac-corrected) < 0.0625 {
				out[i] = int(math.Round(corrected + nbar))
			} else {
				out[i] = int(math.Round(n[i]))
			}
		case 2:
			nbar := neighborhoodAverage(n, i)
			corrected := math.Round(n[i] - nbar)
			out[i] = int(math.Round(corrected + nbar))
		}
	}
	return out, nil
}

// neighborhoodAverage averages n over up to +/-2 surrounding notes
// (inclusive of i itself).
func neighborhoodAverage(n []float64, i int) float64 {
	lo := maxInt(0, i-2)
	hi := minInt(len(n)-1, i+2)
	var sum float64
	count := 0
	for k := lo; k <= hi; k++ {
		sum += n[k]
		count++
	}
	return sum / float64(count)
}
