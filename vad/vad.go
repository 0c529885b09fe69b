// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vad implements a simple energy-threshold voice-activity
// detector, the in-module stand-in for the fVAD-style external
// collaborator the CLI surface names. No GMM/Gaussian-mixture VAD
// library is present in the retrieved corpus (see DESIGN.md), so
// activity is instead estimated from frame RMS energy against an
// adaptive floor.
package vad

import (
	"fmt"
	"math"
	"sort"

	"github.com/emer/meloscribe/mxerr"
)

// ActivityRange is a half-open [Start, End) sample interval judged to
// contain voiced/active audio.
type ActivityRange struct {
	Start, End int
}

// Mode is the VAD aggressiveness (0..3, matching --silence_mode): higher
// modes require a shorter run of active frames before a range opens, and
// tolerate longer gaps before closing one.
type Mode int

// Config bundles the VAD's tunables.
type Config struct {
	Window     int // frame size in samples
	Spacing    int // hop in samples
	Mode       Mode
	SampleRate int // used only to size the adaptive-floor estimation window
}

// floorPercentile is the percentile of first-second frame energies used
// as the silence floor; frames at or below it are "quiet".
const floorPercentile = 0.35

// Detect scans audio in Window-sample frames hopping by Spacing and
// returns the ActivityRanges whose frames are judged active.
func Detect(audio []float32, cfg Config) ([]ActivityRange, error) {
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("vad.Detect: %w", mxerr.ErrBadSilenceWindow)
	}
	if cfg.Spacing <= 0 {
		return nil, fmt.Errorf("vad.Detect: %w", mxerr.ErrNonPositiveInterval)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("vad.Detect: %w", mxerr.ErrEmptyAudio)
	}
	if cfg.Mode < 0 || cfg.Mode > 3 {
		return nil, fmt.Errorf("vad.Detect: %w", mxerr.ErrBadSilenceWindow)
	}

	energies, starts := frameEnergies(audio, cfg.Window, cfg.Spacing)
	floorFrames := len(energies)
	if cfg.SampleRate > 0 && cfg.Spacing > 0 {
		floorFrames = cfg.SampleRate / cfg.Spacing
	}
	floor := adaptiveFloor(energies, floorFrames)

	onHold, offHold := hysteresis(cfg.Mode)

	var ranges []ActivityRange
	active := false
	start := 0
	runAbove, runBelow := 0, 0

	for i, e := range energies {
		above := e > floor
		if above {
			runAbove++
			runBelow = 0
		} else {
			runBelow++
			runAbove = 0
		}

		switch {
		case !active && runAbove >= onHold:
			active = true
			start = starts[i] - (onHold-1)*cfg.Spacing
			if start < 0 {
				start = 0
			}
		case active && runBelow >= offHold:
			active = false
			end := starts[i] + cfg.Window - (offHold-1)*cfg.Spacing
			if end > len(audio) {
				end = len(audio)
			}
			if end > start {
				ranges = append(ranges, ActivityRange{Start: start, End: end})
			}
		}
	}
	if active {
		ranges = append(ranges, ActivityRange{Start: start, End: len(audio)})
	}
	return ranges, nil
}

// hysteresis maps VAD aggressiveness to the run lengths (in frames)
// required to open and close an activity range: more aggressive modes
// commit to voiced activity faster and hold through longer gaps.
func hysteresis(mode Mode) (onHold, offHold int) {
	switch mode {
	case 0:
		return 5, 2
	case 1:
		return 4, 3
	case 2:
		return 3, 4
	default:
		return 2, 6
	}
}

func frameEnergies(audio []float32, window, spacing int) (energies []float64, starts []int) {
	for start := 0; start+window <= len(audio) || start == 0; start += spacing {
		end := start + window
		if end > len(audio) {
			end = len(audio)
		}
		if start >= len(audio) {
			break
		}
		var sum float64
		for _, v := range audio[start:end] {
			sum += float64(v) * float64(v)
		}
		rms := math.Sqrt(sum / float64(end-start))
		energies = append(energies, rms)
		starts = append(starts, start)
		if end == len(audio) {
			break
		}
	}
	return energies, starts
}

// adaptiveFloor estimates the silence floor from the first second of
// frame energies (or the whole signal if shorter, or if the caller
// didn't supply a sample rate), as the floorPercentile-th order
// statistic.
func adaptiveFloor(energies []float64, firstSecondFrames int) float64 {
	if len(energies) == 0 {
		return 0
	}
	n := firstSecondFrames
	if n <= 0 || n > len(energies) {
		n = len(energies)
	}
	sample := append([]float64(nil), energies[:n]...)
	sort.Float64s(sample)
	idx := int(float64(len(sample)-1) * floorPercentile)
	return sample[idx]
}
