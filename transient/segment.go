// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transient

import (
	"fmt"
	"math"

	"github.com/emer/meloscribe/mxerr"
)

const (
	kernelSharpness = 0.15
	kernelEpsilon   = 1e-5
	kernelMinLen    = 4
	kernelMaxLen    = 1500

	// MaxTransients bounds the alternating onset/offset list's growth,
	// the Go equivalent of the reference's realloc-doubling-to-a-ceiling
	// discipline (SPEC_FULL.md §9).
	MaxTransients = 1 << 20
)

// kernelTemplate returns Λ_m, the length-m monotone kernel template used
// to fit an onset or offset shape against a window of the detection
// function.
func kernelTemplate(m int) []float64 {
	lam := make([]float64, m)
	for j := 0; j < m; j++ {
		z := (-1 + kernelEpsilon) + float64(j)*(2-2*kernelEpsilon)/float64(m-1)
		lam[j] = z / (1 + kernelSharpness - math.Abs(z))
	}
	return lam
}

// Segment normalizes d in place (conceptually -- the caller's slice is
// left untouched; a local copy is scaled) and fits alternating onset and
// offset kernels against it, returning the alternating on/off sample
// indices into d.
func Segment(d []float64) ([]int, error) {
	m := maxAbs(d)
	if m == 0 {
		return nil, fmt.Errorf("transient.Segment: %w", mxerr.ErrAllNullDetFunc)
	}
	norm := make([]float64, len(d))
	scale := 1.0 / (m * kernelSharpness)
	for i, v := range d {
		norm[i] = v * scale
	}

	// build kernel templates lazily; only lengths actually tried are
	// built, so lengths beyond the remaining detection function are
	// never built.
	templates := map[int][]float64{}
	tmpl := func(length int) []float64 {
		t, ok := templates[length]
		if !ok {
			t = kernelTemplate(length)
			templates[length] = t
		}
		return t
	}

	M := len(norm)
	transients := make([]int, 0, 64)
	p := 0
	fitOnset := true

	for p < M-kernelMinLen {
		maxM := kernelMaxLen
		if rem := M - p; rem < maxM {
			maxM = rem
		}
		if maxM < kernelMinLen {
			break
		}

		bestM := -1
		bestCost := math.Inf(1)
		sign := -1.0
		if !fitOnset {
			sign = 1.0
		}
		for length := kernelMinLen; length <= maxM; length++ {
			lam := tmpl(length)
			cost := 0.0
			for j := 0; j < length; j++ {
				diff := sign*lam[j] - norm[p+j]
				cost += diff * diff
			}
			cost /= float64(length)
			if cost < bestCost {
				bestCost = cost
				bestM = length
			}
		}
		if bestM < 0 {
			return nil, fmt.Errorf("transient.Segment: %w", mxerr.ErrBadKernelFit)
		}

		if len(transients) >= MaxTransients {
			return nil, fmt.Errorf("transient.Segment: %w", mxerr.ErrCapacityExceeded)
		}
		transients = append(transients, p+bestM)
		p += bestM
		fitOnset = !fitOnset
	}

	// a dangling onset with no matching offset is dropped
	if len(transients)%2 != 0 {
		transients = transients[:len(transients)-1]
	}
	// tail-drop heuristic: remove the final onset/offset pair
	// (SPEC_FULL.md §9 -- calibration heuristic, not derived from first
	// principles, preserved for compatibility).
	if len(transients) >= 2 {
		transients = transients[:len(transients)-2]
	}

	return transients, nil
}

func maxAbs(d []float64) float64 {
	m := 0.0
	for _, v := range d {
		a := math.Abs(v)
		if a > m {
			m = a
		}
	}
	return m
}
