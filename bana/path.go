// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bana

import "math"

// PathPoint is one selected fundamental-frequency estimate along the
// winning path, tagged with its originating frame index.
type PathPoint struct {
	FrameIndex int
	Freq       float64
	Confidence int
}

// SelectPath runs the Viterbi-style dynamic program of §4.8.3 over a
// sequence of per-frame distinctive-candidate lists, one entry per
// spectrogram block (a nil or empty entry marks a silent/unvoiced
// frame). Consecutive non-empty frames form a run; the lowest
// cumulative-cost path is chosen independently within each run, and
// runs are concatenated in frame order.
func SelectPath(frames []DistinctList) []PathPoint {
	var out []PathPoint

	for start := 0; start < len(frames); {
		if len(frames[start]) == 0 {
			start++
			continue
		}
		end := start
		for end < len(frames) && len(frames[end]) > 0 {
			end++
		}
		out = append(out, selectRun(frames[start:end], start)...)
		start = end
	}
	return out
}

// selectRun runs the forward cost-minimization pass and backtrace over
// one contiguous run of non-empty frames, offset by frameBase so the
// returned PathPoints carry absolute frame indices.
func selectRun(run []DistinctList, frameBase int) []PathPoint {
	if len(run) == 0 {
		return nil
	}
	if len(run) == 1 {
		// A run of length 1 has nothing to chain against, so it takes
		// its frame's first candidate unconditionally rather than the
		// highest-confidence one.
		first := run[0][0]
		return []PathPoint{{FrameIndex: frameBase, Freq: first.Freq, Confidence: first.Confidence}}
	}

	// cost[i][k] holds the minimum cumulative cost to reach candidate k
	// of frame i; back[i][k] is the predecessor index in frame i-1.
	cost := make([][]float64, len(run))
	back := make([][]int, len(run))

	cost[0] = make([]float64, len(run[0]))
	back[0] = make([]int, len(run[0]))
	for k := range run[0] {
		back[0][k] = -1
	}

	for i := 1; i < len(run); i++ {
		cur := run[i]
		prev := run[i-1]
		cost[i] = make([]float64, len(cur))
		back[i] = make([]int, len(cur))
		for k, c := range cur {
			bestJ, bestCost := -1, math.Inf(1)
			for j, p := range prev {
				cc := cost[i-1][j] + logRatioCost(p, c)
				if cc < bestCost || (cc == bestCost && bestJ >= 0 && prev[j].Freq < prev[bestJ].Freq) {
					bestCost, bestJ = cc, j
				}
			}
			cost[i][k] = bestCost
			back[i][k] = bestJ
		}
	}

	last := len(run) - 1
	bestK, bestCost := 0, math.Inf(1)
	for k, c := range cost[last] {
		if c < bestCost || (c == bestCost && run[last][k].Freq < run[last][bestK].Freq) {
			bestCost, bestK = c, k
		}
	}

	points := make([]PathPoint, len(run))
	k := bestK
	for i := last; i >= 0; i-- {
		cand := run[i][k]
		points[i] = PathPoint{FrameIndex: frameBase + i, Freq: cand.Freq, Confidence: cand.Confidence}
		k = back[i][k]
	}
	return points
}
