// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bana

import "fmt"

// DistinctCandidate is one confidence-weighted fundamental-frequency
// candidate surviving consolidation for a single frame.
type DistinctCandidate struct {
	Freq       float64
	Confidence int
	Cost       float64
	PrevIndex  int // -1 means "no predecessor"
}

// DistinctList is one frame's ordered (by selection order) candidate set.
type DistinctList []DistinctCandidate

// ModeXi selects the clustering radius: 10 Hz for plain BaNa, 3 Hz for
// BaNaMusic (SPEC_FULL.md §4.8.2 step 5).
type ModeXi float64

const (
	XiBaNa      ModeXi = 10
	XiBaNaMusic ModeXi = 3
)

// Distinctive consolidates a raw candidate list into the distinctive
// frequencies: repeatedly pick the candidate with the most within-xi
// neighbours (ties favour the lower frequency), keep it if it falls in
// [f0Min, f0Max], then remove it and its neighbours, until none remain.
func Distinctive(raw []float64, xi ModeXi, f0Min, f0Max float64) DistinctList {
	list := NewOrderedList(len(raw))
	for _, v := range raw {
		list.Insert(v)
	}

	var out DistinctList
	vals := list.Values()
	remaining := append([]float64(nil), vals...)

	for len(remaining) > 0 {
		bestIdx, bestCount, bestLo, bestHi := -1, -1, -1, -1
		for i, v := range remaining {
			lo, hi := neighborRange(remaining, i, float64(xi))
			count := hi - lo
			if count > bestCount || (count == bestCount && bestIdx >= 0 && v < remaining[bestIdx]) {
				bestIdx, bestCount, bestLo, bestHi = i, count, lo, hi
			}
		}
		v := remaining[bestIdx]
		if v >= f0Min && v <= f0Max {
			out = append(out, DistinctCandidate{Freq: v, Confidence: bestCount, Cost: 0, PrevIndex: -1})
		}
		remaining = append(remaining[:bestLo], remaining[bestHi:]...)
	}
	return out
}

// neighborRange returns [lo, hi) bounding every element of a sorted slice
// within xi of vals[i], inclusive of vals[i] itself.
func neighborRange(vals []float64, i int, xi float64) (int, int) {
	v := vals[i]
	lo := i
	for lo > 0 && v-vals[lo-1] <= xi {
		lo--
	}
	hi := i + 1
	for hi < len(vals) && vals[hi]-v <= xi {
		hi++
	}
	return lo, hi
}

func (d DistinctList) String() string {
	return fmt.Sprintf("DistinctList(%d candidates)", len(d))
}
