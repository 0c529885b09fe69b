// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package peaks implements the O'Haver-style smoothed-derivative peak
// finder: a 2-point derivative, boxcar smoothing, downward zero-crossing
// detection, and either argmax or parabolic-log refinement of the peak
// location, bounded by a fixed-capacity min-heap of the N tallest (or N
// earliest) peaks.
package peaks

import (
	"fmt"
	"math"

	"github.com/emer/meloscribe/mxerr"
)

// Peak is one located spectral peak.
type Peak struct {
	Freq float64
	Mag  float64
}

// Options bundles the peak-finder's tunables (§4.7).
type Options struct {
	SlopeThreshold float64
	AmpThreshold   float64
	SmoothWidth    int
	PeakGroup      int
	SmoothType     int // 1, 2 or 3 ("pseudo-Gaussian")
	N              int
	First          bool // true: first N qualifying peaks; false: N loudest
}

// Find locates peaks in y over the frequency axis x.
func Find(x, y []float64, opt Options) ([]Peak, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("peaks.Find: %w", mxerr.ErrLengthMismatch)
	}
	if opt.N <= 0 {
		return nil, fmt.Errorf("peaks.Find: %w", mxerr.ErrNonPositiveWindow)
	}
	if len(y) < 3 {
		return nil, nil
	}

	d := deriv(y)
	d = smooth(d, opt.SmoothWidth, opt.SmoothType)

	heap := newMinHeap(opt.N)

	for j := 1; j < len(d)-1; j++ {
		if !(sign(d[j]) > sign(d[j+1])) {
			continue
		}
		if !(d[j]-d[j+1] > opt.SlopeThreshold*y[j]) {
			continue
		}
		if !(y[j] > opt.AmpThreshold) {
			continue
		}

		pk := refine(x, y, j, opt.PeakGroup)
		heap.push(pk)
		if opt.First && heap.len() >= opt.N {
			break
		}
	}

	return heap.sorted(), nil
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// deriv is the 2-point central difference of y, with one-sided
// differences at the endpoints.
func deriv(y []float64) []float64 {
	n := len(y)
	d := make([]float64, n)
	if n == 1 {
		return d
	}
	d[0] = y[1] - y[0]
	d[n-1] = y[n-1] - y[n-2]
	for i := 1; i < n-1; i++ {
		d[i] = (y[i+1] - y[i-1]) / 2
	}
	return d
}

// smooth applies passes boxcar smoothing passes of the given width;
// smoothtype 3 ("pseudo-Gaussian") is three boxcar passes, which the
// central-limit theorem makes converge toward a Gaussian shape.
func smooth(y []float64, width, passes int) []float64 {
	if width < 2 {
		return append([]float64(nil), y...)
	}
	out := y
	for p := 0; p < passes; p++ {
		out = boxcar(out, width)
	}
	return out
}

func boxcar(y []float64, width int) []float64 {
	n := len(y)
	out := make([]float64, n)
	half := width / 2
	for i := 0; i < n; i++ {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi >= n {
			hi = n - 1
		}
		sum := 0.0
		for k := lo; k <= hi; k++ {
			sum += y[k]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

// refine locates the precise peak position around index j, either by
// argmax over a small window (peakgroup<5) or by a parabolic fit to
// (x, log|y|) over the window.
func refine(x, y []float64, j, peakGroup int) Peak {
	n := len(y)
	half := peakGroup / 2
	lo := j - half
	if lo < 0 {
		lo = 0
	}
	hi := lo + peakGroup - 1
	if hi >= n {
		hi = n - 1
		lo = hi - peakGroup + 1
		if lo < 0 {
			lo = 0
		}
	}

	if peakGroup < 5 {
		bestI := lo
		for k := lo; k <= hi; k++ {
			if y[k] > y[bestI] {
				bestI = k
			}
		}
		return Peak{Freq: x[bestI], Mag: y[bestI]}
	}

	return quadFit(x[lo:hi+1], y[lo:hi+1])
}

// quadFit fits a parabola to (x, log|y|) over the supplied window,
// centred and scaled for numerical stability, and returns the vertex
// converted back to linear magnitude.
func quadFit(x, y []float64) Peak {
	n := len(x)
	if n < 3 {
		i := 0
		for k := 1; k < n; k++ {
			if y[k] > y[i] {
				i = k
			}
		}
		return Peak{Freq: x[i], Mag: y[i]}
	}

	xc := x[n/2]
	var sx, sx2, sx3, sx4, sy, sxy, sx2y float64
	for i := 0; i < n; i++ {
		xi := x[i] - xc
		ly := math.Log(math.Max(math.Abs(y[i]), 1e-300))
		sx += xi
		sx2 += xi * xi
		sx3 += xi * xi * xi
		sx4 += xi * xi * xi * xi
		sy += ly
		sxy += xi * ly
		sx2y += xi * xi * ly
	}
	fn := float64(n)
	// normal equations for y = a + b*x + c*x^2
	a, b, c, ok := solve3x3(
		fn, sx, sx2, sy,
		sx, sx2, sx3, sxy,
		sx2, sx3, sx4, sx2y,
	)
	if !ok || c >= 0 {
		i := 0
		for k := 1; k < n; k++ {
			if y[k] > y[i] {
				i = k
			}
		}
		return Peak{Freq: x[i], Mag: y[i]}
	}
	vx := -b / (2 * c)
	vy := a + b*vx + c*vx*vx
	return Peak{Freq: vx + xc, Mag: math.Exp(vy)}
}

// solve3x3 solves the 3x3 linear system given by three rows
// [a1 b1 c1 | d1] via Cramer's rule.
func solve3x3(a1, b1, c1, d1, a2, b2, c2, d2, a3, b3, c3, d3 float64) (x, y, z float64, ok bool) {
	det := a1*(b2*c3-b3*c2) - b1*(a2*c3-a3*c2) + c1*(a2*b3-a3*b2)
	if math.Abs(det) < 1e-300 {
		return 0, 0, 0, false
	}
	dx := d1*(b2*c3-b3*c2) - b1*(d2*c3-d3*c2) + c1*(d2*b3-d3*b2)
	dy := a1*(d2*c3-d3*c2) - d1*(a2*c3-a3*c2) + c1*(a2*d3-a3*d2)
	dz := a1*(b2*d3-b3*d2) - b1*(a2*d3-a3*d2) + d1*(a2*b3-a3*b2)
	return dx / det, dy / det, dz / det, true
}
