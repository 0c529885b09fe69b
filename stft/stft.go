// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stft computes the Hamming-windowed, zero-padded short-time
// Fourier transform the pitch path runs its peak finder over. The
// complex-to-complex FFT from gonum.org/v1/gonum/dsp/fourier is used on a
// zero-imaginary-part buffer, the same pattern the auditory front end
// this was adapted from uses for its own per-window DFT.
package stft

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/emer/meloscribe/mxerr"
)

// Spectrogram is a row-major numBlocks x binsPerBlock matrix of
// non-negative real magnitudes, the Nyquist bin dropped from each row.
type Spectrogram struct {
	NumBlocks    int
	BinsPerBlock int
	Mag          []float64 // row-major, len == NumBlocks*BinsPerBlock
}

// Row returns block i's magnitude row.
func (s *Spectrogram) Row(i int) []float64 {
	return s.Mag[i*s.BinsPerBlock : (i+1)*s.BinsPerBlock]
}

// NumBlocksFor mirrors the data model invariant: at least one block, and
// one block per interval-spaced window needed to cover the signal.
func NumBlocksFor(frames, unpaddedWin, interval int) int {
	if frames <= unpaddedWin {
		return 1
	}
	nb := int(math.Ceil(float64(frames-unpaddedWin)/float64(interval))) + 1
	if nb < 1 {
		return 1
	}
	return nb
}

// hamming returns a length-n Hamming window.
func hamming(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// Compute runs the STFT over audio with an unpadded window of
// unpaddedWin samples hopping by interval samples, zero-padding each
// window to paddedFFT samples before transforming.
func Compute(audio []float32, unpaddedWin, paddedFFT, interval int) (*Spectrogram, error) {
	if unpaddedWin <= 0 {
		return nil, fmt.Errorf("stft.Compute: %w", mxerr.ErrNonPositiveWindow)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("stft.Compute: %w", mxerr.ErrNonPositiveInterval)
	}
	if paddedFFT < unpaddedWin {
		return nil, fmt.Errorf("stft.Compute: %w", mxerr.ErrPaddedTooSmall)
	}

	win := hamming(paddedFFT)
	binsPerBlock := paddedFFT / 2
	numBlocks := NumBlocksFor(len(audio), unpaddedWin, interval)

	spec := &Spectrogram{NumBlocks: numBlocks, BinsPerBlock: binsPerBlock, Mag: make([]float64, numBlocks*binsPerBlock)}
	fft := fourier.NewCmplxFFT(paddedFFT)
	buf := make([]complex128, paddedFFT)

	for b := 0; b < numBlocks; b++ {
		start := b * interval
		for i := range buf {
			buf[i] = 0
		}
		for i := 0; i < unpaddedWin && start+i < len(audio); i++ {
			buf[i] = complex(float64(audio[start+i])*win[i], 0)
		}
		coefs := fft.Coefficients(nil, buf)
		row := spec.Row(b)
		for k := 0; k < binsPerBlock; k++ {
			re, im := real(coefs[k]), imag(coefs[k])
			row[k] = math.Hypot(re, im)
		}
	}
	return spec, nil
}

// FreqToBin maps a frequency to the FFT bin floor((fftSize+1)*freq/sampleRate)
// for an FFT of size fftSize at the given sample rate (rounding down, not
// to the nearest bin) -- the same bin-mapping convention the
// auditory filterbank front end this package was adapted from uses for
// its mel-scale bins, generalized here to plain Hz.
func FreqToBin(freq float64, fftSize, sampleRate int) int {
	return int(math.Floor((float64(fftSize) + 1) * freq / float64(sampleRate)))
}

// BinToFreq is the inverse mapping used by the peak finder's frequency
// axis.
func BinToFreq(bin, fftSize, sampleRate int) float64 {
	return float64(bin) * float64(sampleRate) / float64(fftSize)
}
