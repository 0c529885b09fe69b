// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transient locates note onsets and offsets: it builds the
// gammatone-filterbank detection function (DetFunc) and segments it into
// alternating onset/offset sample indices (Segment).
package transient

import (
	"fmt"
	"math"

	"github.com/emer/meloscribe/correntropy"
	"github.com/emer/meloscribe/gammatone"
	"github.com/emer/meloscribe/mxerr"
	"github.com/emer/meloscribe/rollsigma"
)

// Config bundles the tunables DetFunc uses; the zero value is
// not meaningful, use Defaults.
type Config struct {
	NumChannels int
	MinFreq     float64
	MaxFreq     float64
}

// Defaults matches the reference front-end: 64 ERB channels between
// 80 Hz and 4000 Hz.
func Defaults() Config {
	return Config{NumChannels: 64, MinFreq: 80, MaxFreq: 4000}
}

// roundUpMul4 rounds n up to the nearest positive multiple of 4.
func roundUpMul4(n int) int {
	if n <= 0 {
		return 4
	}
	return ((n + 3) / 4) * 4
}

// roundDownMul4 rounds n down to the nearest positive multiple of 4, not
// going below 4.
func roundDownMul4(n int) int {
	r := (n / 4) * 4
	if r < 4 {
		return 4
	}
	return r
}

// DetFunc computes the detection function over audio sampled at
// sampleRate, pooling the summed-lag correntropy contribution of every
// gammatone channel into a pooled summary matrix and returning its first
// difference (length one less than the number of analysis windows).
func DetFunc(audio []float32, sampleRate int, cfg Config) ([]float64, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("transient.DetFunc: %w", mxerr.ErrEmptyAudio)
	}

	win := roundUpMul4(int(math.Round(float64(sampleRate) / 80.0)))
	hop := roundDownMul4(int(math.Round(float64(sampleRate) / 200.0)))
	maxLag := win
	sigWinSize := sampleRate * 7
	scaleFactor := math.Pow(4.0/3.0, 0.2)

	n := len(audio)
	nw := int(math.Ceil(float64(n-win)/float64(hop))) + 1
	if nw < 1 {
		nw = 1
	}

	needed := (nw-1)*hop + win + maxLag
	padded := audio
	if needed > n {
		padded = make([]float32, needed)
		copy(padded, audio)
	}

	bank, err := gammatone.NewBank(cfg.NumChannels, cfg.MinFreq, cfg.MaxFreq, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("transient.DetFunc: %w", err)
	}

	psm := make([]float64, nw)
	filtered := make([]float32, len(padded))
	sigmaF64 := make([]float64, len(padded))

	for ch := range bank.Channels {
		if err := bank.Filter(ch, filtered, padded); err != nil {
			return nil, fmt.Errorf("transient.DetFunc: %w", err)
		}
		for i, v := range filtered {
			sigmaF64[i] = float64(v)
		}
		sigma, err := rollsigma.Compute(sigmaF64, sigWinSize, hop, scaleFactor)
		if err != nil {
			return nil, fmt.Errorf("transient.DetFunc: %w", err)
		}
		if len(sigma) < nw {
			sigma = growSigma(sigma, nw)
		}
		cp := correntropy.Params{Win: win, MaxLag: maxLag, Hop: hop}
		if err := correntropy.Compute(psm, filtered, sigma, cp); err != nil {
			return nil, fmt.Errorf("transient.DetFunc: %w", err)
		}
	}

	if nw < 2 {
		return []float64{}, nil
	}
	d := make([]float64, nw-1)
	for i := 0; i < nw-1; i++ {
		d[i] = psm[i+1] - psm[i]
	}
	return d, nil
}

// growSigma pads a short sigma estimate with its last value, which can
// happen at the tail where the rolling window runs out of samples before
// the correntropy window does.
func growSigma(sigma []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, sigma)
	last := 0.0
	if len(sigma) > 0 {
		last = sigma[len(sigma)-1]
	}
	for i := len(sigma); i < n; i++ {
		out[i] = last
	}
	return out
}
