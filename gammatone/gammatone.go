// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gammatone builds the ERB-spaced auditory filterbank that is the
// front end of transient detection: one 4-stage biquad cascade (Slaney's
// approximation) per channel, numerically normalized to unit gain at its
// own centre frequency.
package gammatone

import (
	"fmt"
	"math"

	"github.com/emer/meloscribe/biquad"
	"github.com/emer/meloscribe/mxerr"
)

const (
	// Stages is the number of cascaded biquad sections per channel.
	Stages = 4
	// earQ and minBW are Slaney's constants relating an ERB to its centre
	// frequency.
	earQ  = 9.26449
	minBW = 24.7
)

// Bank is a collection of Channels sharing a sample rate.
type Bank struct {
	SampleRate int
	Channels   []Channel
}

// Channel is one auditory filter: its centre frequency and its cascade.
type Channel struct {
	CenterFreq float32
	Cascade    *biquad.Cascade
}

// erbOf converts a frequency in Hz to its ERB-rate (ERBS), Glasberg &
// Moore's formula as used by the reference front-end.
func erbOf(f float64) float64 {
	return 21.4 * math.Log10(1+0.00437*f)
}

// erbInv is the inverse of erbOf.
func erbInv(erbs float64) float64 {
	return (math.Pow(10, erbs/21.4) - 1) / 0.00437
}

// centerFreqs lays out numChannels centre frequencies uniformly spaced on
// the ERB scale, with the first centre at minFreq and the last at
// maxFreq. The outermost channels' ERB bands therefore extend half a
// band below minFreq and above maxFreq; their band edges do not touch
// those limits.
func centerFreqs(numChannels int, minFreq, maxFreq float64) []float64 {
	loErb := erbOf(minFreq)
	hiErb := erbOf(maxFreq)
	cfs := make([]float64, numChannels)
	step := (hiErb - loErb) / float64(numChannels-1)
	for k := 0; k < numChannels; k++ {
		cfs[k] = erbInv(loErb + float64(k)*step)
	}
	return cfs
}

// NewBank constructs a numChannels-wide ERB-spaced filterbank between
// minFreq and maxFreq at the given sample rate.
func NewBank(numChannels int, minFreq, maxFreq float64, sampleRate int) (*Bank, error) {
	if numChannels <= 0 {
		return nil, fmt.Errorf("gammatone.NewBank: %w", mxerr.ErrNonPositiveWindow)
	}
	cfs := centerFreqs(numChannels, minFreq, maxFreq)
	b := &Bank{SampleRate: sampleRate, Channels: make([]Channel, numChannels)}
	for k, cf := range cfs {
		coefs := sosGammatoneCoef(cf, sampleRate)
		cas, err := biquad.NewCascade(coefs)
		if err != nil {
			return nil, fmt.Errorf("gammatone.NewBank: %w", err)
		}
		b.Channels[k] = Channel{CenterFreq: float32(cf), Cascade: cas}
	}
	return b, nil
}

// sosGammatoneCoef produces the four raw biquad stages of Slaney's
// gammatone approximation at centre frequency cf, then numerically
// normalizes them so the cascade's magnitude response at cf is 1.
func sosGammatoneCoef(cf float64, sampleRate int) []biquad.Coef {
	t := 1.0 / float64(sampleRate)
	erb := math.Pow(math.Pow(cf/earQ, 1)+math.Pow(minBW, 1), 1)
	bw := 1.019 * 2 * math.Pi * erb

	cosTerm := math.Cos(2 * cf * math.Pi * t)
	sinTerm := math.Sin(2 * cf * math.Pi * t)
	expBT := math.Exp(-bw * t)

	b1 := -2 * cosTerm * expBT
	b2 := expBT * expBT

	sq3p := math.Sqrt(3 + math.Pow(2, 1.5))
	sq3m := math.Sqrt(3 - math.Pow(2, 1.5))

	mkA1 := func(sq float64, sign float64) float64 {
		return -(2*t*cosTerm*expBT + sign*2*sq*t*sinTerm*expBT) / 2
	}

	coefs := []biquad.Coef{
		{B0: t, B1: mkA1(sq3p, 1), B2: 0, A0: 1, A1: b1, A2: b2},
		{B0: t, B1: mkA1(sq3p, -1), B2: 0, A0: 1, A1: b1, A2: b2},
		{B0: t, B1: mkA1(sq3m, 1), B2: 0, A0: 1, A1: b1, A2: b2},
		{B0: t, B1: mkA1(sq3m, -1), B2: 0, A0: 1, A1: b1, A2: b2},
	}
	numericalNormalize(coefs, cf, sampleRate)
	return coefs
}

// numericalNormalize scales the first stage's numerator so the complete
// cascade has unit magnitude response at cf, evaluated directly from the
// z-transform rather than from Slaney's closed-form gain expression --
// equivalent, and easier to get right from a spec description alone.
func numericalNormalize(coefs []biquad.Coef, cf float64, sampleRate int) {
	w := 2 * math.Pi * cf / float64(sampleRate)
	z := complex(math.Cos(w), math.Sin(w))
	resp := complex(1, 0)
	for _, co := range coefs {
		zInv := 1 / z
		num := complex(co.B0, 0) + complex(co.B1, 0)*zInv + complex(co.B2, 0)*zInv*zInv
		den := complex(co.A0, 0) + complex(co.A1, 0)*zInv + complex(co.A2, 0)*zInv*zInv
		resp *= num / den
	}
	mag := math.Hypot(real(resp), imag(resp))
	if mag == 0 {
		return
	}
	coefs[0].B0 /= mag
	coefs[0].B1 /= mag
	coefs[0].B2 /= mag
}

// Filter runs channel ch's cascade over in, writing to out, which must be
// at least as long as in.
func (b *Bank) Filter(ch int, out, in []float32) error {
	return b.Channels[ch].Cascade.Filter(out, in)
}

// Reset clears filter state on every channel, as at the start of a new
// signal.
func (b *Bank) Reset() {
	for i := range b.Channels {
		b.Channels[i].Cascade.Reset()
	}
}
