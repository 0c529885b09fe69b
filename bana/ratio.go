// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bana

// ratioRanges and mRanges are the fixed 15-entry harmonic-order lookup
// table from the BaNa paper: a peak-frequency ratio falling in
// (ratioRanges[i-1], ratioRanges[i]] is assumed to be harmonic order
// mRanges[i-1]. A negative order means the ratio isn't trusted as a
// harmonic pair.
var ratioRanges = []float64{
	1.15, 1.29, 1.42, 1.59,
	1.80, 1.90, 2.10, 2.40,
	2.60, 2.80, 3.20, 3.80,
	4.20, 4.80, 5.20,
}

var mRanges = []int{
	4, 3, 2, 3,
	-1, 1, -1, 2,
	-1, 1, -1, 1,
	-1, 1, -1,
}

// calcM looks up the harmonic order for a peak ratio r = f_j/f_i (j>i).
// It returns (0, false) when the ratio falls outside the table's trusted
// bands entirely.
func calcM(r float64) (int, bool) {
	i := bisectLeft(ratioRanges, r)
	if i == 0 || i >= len(ratioRanges) || mRanges[i-1] <= 0 {
		return 0, false
	}
	return mRanges[i-1], true
}

// RatioAnalysis builds the raw candidate list from the harmonic peaks
// f_1 < ... < f_p located by the peak finder (4.8.2 steps 3-4): every
// trusted pairwise ratio contributes f_i/m, and f_1 itself is always a
// candidate.
func RatioAnalysis(freqs []float64) []float64 {
	candidates := make([]float64, 0, len(freqs)*(len(freqs)-1)/2+1)
	for i := 0; i < len(freqs); i++ {
		for j := i + 1; j < len(freqs); j++ {
			r := freqs[j] / freqs[i]
			m, ok := calcM(r)
			if !ok {
				continue
			}
			candidates = append(candidates, freqs[i]/float64(m))
		}
	}
	if len(freqs) > 0 {
		candidates = append(candidates, freqs[0])
	}
	return candidates
}
