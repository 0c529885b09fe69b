// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package correntropy computes the summed-lag correntropy contribution
// that, pooled across gammatone channels, forms the pooled summary matrix
// behind the transient detection function. The Gaussian kernel is
// evaluated with Schraudolph's integer-cast fast exponential: the
// reference vectorizes this with 4-lane SIMD behind a scalar-equivalent
// interface, but only the scalar fallback is implemented here (see
// SPEC_FULL.md §9).
package correntropy

import (
	"fmt"
	"math"

	"github.com/emer/meloscribe/mxerr"
)

const (
	// schraudolphMax is the u^2 value beyond which the fast exponential
	// is clamped to zero rather than trusted.
	schraudolphMax = 87.33654
	// schraudolphMagic tunes the integer-cast approximation's error
	// profile; see calcSummedLagCorrentrograms.c in the reference.
	schraudolphMagic = 298765
	schraudolphSlope = -(1 << 23) / ln2

	kernelArgCoef  = 0.70710677 // 1/sqrt(2)
	kernelNormCoef = 0.3989423  // 1/sqrt(2*pi)

	ln2 = 0.6931471805599453
)

// fastExpNegSq approximates exp(-uSq) via Schraudolph's bit-cast trick.
func fastExpNegSq(uSq float64) float64 {
	if uSq >= schraudolphMax {
		return 0
	}
	bits := int64(127<<23) - schraudolphMagic + int64(math.Round(schraudolphSlope*uSq))
	return float64(math.Float32frombits(uint32(bits)))
}

// Params bundles the shape contract the summed-lag kernel imposes on its
// inputs: window, max lag and hop must each be a positive multiple of 4
// (the original SIMD lane-alignment contract, carried over as a shape
// check since Go slices need no explicit byte alignment).
type Params struct {
	Win, MaxLag, Hop int
}

// checkShape validates the lane-alignment contract.
func checkShape(p Params) error {
	if p.Win <= 0 || p.MaxLag <= 0 || p.Hop <= 0 {
		return fmt.Errorf("correntropy: %w", mxerr.ErrNonPositiveWindow)
	}
	if p.Win%4 != 0 || p.MaxLag%4 != 0 || p.Hop%4 != 0 {
		return fmt.Errorf("correntropy: %w", mxerr.ErrBadAlignment)
	}
	return nil
}

// NumWindows is the number of analysis windows Compute will produce given
// a stream of length n.
func NumWindows(n int, p Params) int {
	need := p.Win + p.MaxLag
	if n < need {
		return 0
	}
	return (n-need)/p.Hop + 1
}

// Compute accumulates the summed-lag correntropy contribution for one
// channel into out (length NumWindows(len(x), params)); out is not reset
// first, so callers pool multiple channels by calling Compute once per
// channel with the same out slice.
func Compute(out []float64, x []float32, sigma []float64, p Params) error {
	if err := checkShape(p); err != nil {
		return err
	}
	nw := NumWindows(len(x), p)
	if len(out) < nw {
		return fmt.Errorf("correntropy.Compute: %w", mxerr.ErrLengthMismatch)
	}
	if len(sigma) < nw {
		return fmt.Errorf("correntropy.Compute: %w", mxerr.ErrLengthMismatch)
	}

	for i := 0; i < nw; i++ {
		s := sigma[i]
		if s <= 0 {
			continue
		}
		base := i * p.Hop
		var sum float64
		for n := 0; n < p.Win; n++ {
			xn := float64(x[base+n])
			for j := 1; j <= p.MaxLag; j++ {
				diff := xn - float64(x[base+n+j])
				u := diff * kernelArgCoef / s
				sum += fastExpNegSq(u * u)
			}
		}
		out[i] += kernelNormCoef / (float64(p.Win) * s) * sum
	}
	return nil
}
