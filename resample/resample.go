// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package resample implements rational-rate sample-rate conversion by
// windowed-sinc interpolation, in the numeric family libsamplerate's
// SRC_SINC_FASTEST mode approximates. No example repo in the corpus
// wraps or reimplements libsamplerate, so this is re-expressed as plain
// Go rather than wired to an external library (see DESIGN.md).
package resample

import (
	"fmt"
	"math"

	"github.com/emer/meloscribe/mxerr"
)

// zeroCrossings is the sinc kernel's half-width in input-sample zero
// crossings, the same figure libsamplerate's fastest sinc mode uses.
const zeroCrossings = 16

// ResampledLength returns the output length for a given input length
// and rate ratio dstRate/srcRate.
func ResampledLength(srcLen int, ratio float64) int {
	return int(math.Round(float64(srcLen) * ratio))
}

// Resample converts in from srcRate to dstRate using a Blackman-windowed
// sinc kernel evaluated at each output sample's fractional input
// position.
func Resample(in []float32, srcRate, dstRate int) ([]float32, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("resample.Resample: %w", mxerr.ErrBadSampleRatio)
	}
	ratio := float64(dstRate) / float64(srcRate)
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio <= 0 {
		return nil, fmt.Errorf("resample.Resample: %w", mxerr.ErrBadSampleRatio)
	}
	if srcRate == dstRate {
		out := make([]float32, len(in))
		copy(out, in)
		return out, nil
	}

	outLen := ResampledLength(len(in), ratio)
	out := make([]float32, outLen)

	// When downsampling, widen the kernel support by 1/ratio to act as
	// an anti-aliasing low-pass filter at the destination Nyquist.
	scale := 1.0
	if ratio < 1 {
		scale = ratio
	}
	halfWidth := float64(zeroCrossings) / scale

	for o := 0; o < outLen; o++ {
		srcPos := float64(o) / ratio
		lo := int(math.Floor(srcPos - halfWidth))
		hi := int(math.Ceil(srcPos + halfWidth))
		if lo < 0 {
			lo = 0
		}
		if hi >= len(in) {
			hi = len(in) - 1
		}

		var acc, wsum float64
		for s := lo; s <= hi; s++ {
			d := (srcPos - float64(s)) * scale
			w := sincKernel(d) * blackman(d, float64(zeroCrossings))
			acc += w * float64(in[s])
			wsum += w
		}
		if wsum != 0 {
			acc /= wsum
		}
		out[o] = float32(acc)
	}
	return out, nil
}

// MapIndex maps a sample index at dstRate back to srcRate by the
// inverse ratio -- used to translate transient positions detected on a
// resampled signal back onto the original sample axis.
func MapIndex(idx, srcRate, dstRate int) int {
	return int(math.Round(float64(idx) * float64(srcRate) / float64(dstRate)))
}

func sincKernel(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// blackman evaluates the Blackman window at offset x within a half-width
// of halfWidth zero crossings, zero outside that support.
func blackman(x, halfWidth float64) float64 {
	if math.Abs(x) >= halfWidth {
		return 0
	}
	n := x/(2*halfWidth) + 0.5
	return 0.42 - 0.5*math.Cos(2*math.Pi*n) + 0.08*math.Cos(4*math.Pi*n)
}
