// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package biquad implements a cascaded second-order-section (SOS) IIR
// filter in Direct Form II Transposed, the building block the gammatone
// filterbank cascades four times per channel.
package biquad

import (
	"fmt"
	"unsafe"

	"github.com/emer/meloscribe/mxerr"
)

// MaxStages bounds the cascade length; the gammatone front-end uses 4.
const MaxStages = 8

// Coef holds one stage's six filter coefficients, b0,b1,b2 (numerator) and
// a0,a1,a2 (denominator).
type Coef struct {
	B0, B1, B2 float64
	A0, A1, A2 float64
}

// State holds the two delay registers of a single stage.
type State struct {
	D1, D2 float64
}

// Cascade is a chain of up to MaxStages biquad stages sharing no state
// with any other Cascade.
type Cascade struct {
	Coefs  []Coef
	States []State
}

// NewCascade allocates a cascade with zeroed state, failing if the number
// of stages is out of range.
func NewCascade(coefs []Coef) (*Cascade, error) {
	if len(coefs) <= 0 {
		return nil, fmt.Errorf("biquad.NewCascade: %w", mxerr.ErrNonPositiveWindow)
	}
	if len(coefs) > MaxStages {
		return nil, fmt.Errorf("biquad.NewCascade: %w", mxerr.ErrCapacityExceeded)
	}
	return &Cascade{
		Coefs:  append([]Coef(nil), coefs...),
		States: make([]State, len(coefs)),
	}, nil
}

// Reset zeroes all stage state, as though filtering were starting on
// silence for the first time.
func (c *Cascade) Reset() {
	for i := range c.States {
		c.States[i] = State{}
	}
}

// Filter runs the full cascade over in, writing len(in) samples to out.
// in and out must not overlap.
func (c *Cascade) Filter(out, in []float32) error {
	if len(out) < len(in) {
		return fmt.Errorf("biquad.Filter: %w", mxerr.ErrNegativeLength)
	}
	if overlaps(in, out) {
		return fmt.Errorf("biquad.Filter: %w", mxerr.ErrOverlappingBuffers)
	}
	for n := 0; n < len(in); n++ {
		x := float64(in[n])
		for s := range c.Coefs {
			x = c.step(s, x)
		}
		out[n] = float32(x)
	}
	return nil
}

// step advances stage s by one sample, returning the stage's output in
// double precision; the caller narrows to float32 only after the final
// stage.
func (c *Cascade) step(s int, x float64) float64 {
	co := c.Coefs[s]
	st := &c.States[s]
	y := (co.B0*x + st.D1) / co.A0
	st.D1 = co.B1*x - co.A1*y + st.D2
	st.D2 = co.B2*x - co.A2*y
	return y
}

// overlaps reports whether the backing arrays of a and b share any memory,
// the precondition the SOS kernel requires to hold the in-place Direct
// Form II Transposed recurrence (§4.1: "fails ... if the input and output
// buffers overlap").
func overlaps(a, b []float32) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	aStart := uintptr(unsafe.Pointer(&a[0]))
	aEnd := uintptr(unsafe.Pointer(&a[len(a)-1]))
	bStart := uintptr(unsafe.Pointer(&b[0]))
	bEnd := uintptr(unsafe.Pointer(&b[len(b)-1]))
	return aStart <= bEnd && bStart <= aEnd
}
