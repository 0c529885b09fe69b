// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rollsigma computes a rolling kernel-bandwidth estimate (an
// adaptive Silverman's-rule sigma) over a stream, advancing a centred
// window by a fixed interval. The running variance is maintained with the
// pandas-derived add/remove recipe rather than recomputed from scratch at
// every step.
package rollsigma

import (
	"fmt"
	"math"

	"github.com/emer/meloscribe/mxerr"
)

// ScaleFactor is Silverman's rule of thumb constant, (4/3)^0.2.
var ScaleFactor = math.Pow(4.0/3.0, 0.2)

// accumulator maintains (nobs, mean, ssqdm) under Welford-style updates.
type accumulator struct {
	nobs  int
	mean  float64
	ssqdm float64
}

func (a *accumulator) add(x float64) {
	a.nobs++
	delta := x - a.mean
	a.mean += delta / float64(a.nobs)
	a.ssqdm += delta * (x - a.mean)
}

func (a *accumulator) remove(x float64) {
	if a.nobs == 1 {
		a.nobs, a.mean, a.ssqdm = 0, 0, 0
		return
	}
	deltaOld := x - a.mean
	a.mean = (float64(a.nobs)*a.mean - x) / float64(a.nobs-1)
	a.ssqdm -= deltaOld * (x - a.mean)
	a.nobs--
}

// windowIndexer tracks the in-bounds [start, stop) span of a window of
// size sigWinSize centred on the current position, advancing by interval
// each step; the window shrinks rather than wraps at either end of the
// stream.
type windowIndexer struct {
	n, sigWinSize, interval int
	pos                     int
}

func (w *windowIndexer) start() int {
	lo := w.pos - w.sigWinSize/2
	if lo < 0 {
		return 0
	}
	return lo
}

func (w *windowIndexer) stop() int {
	hi := w.pos + w.sigWinSize/2
	if hi > w.n {
		return w.n
	}
	return hi
}

func (w *windowIndexer) advance() {
	w.pos += w.interval
}

// Compute returns the bandwidth estimate at each of the Nw analysis
// positions spaced interval samples apart over x, using a centred window
// of sigWinSize samples (narrowing at the stream edges) and the given
// scaleFactor (Silverman's rule constant, ScaleFactor, unless the caller
// has a reason to override it, as scenario F does).
func Compute(x []float64, sigWinSize, interval int, scaleFactor float64) ([]float64, error) {
	if sigWinSize <= 0 {
		return nil, fmt.Errorf("rollsigma.Compute: %w", mxerr.ErrNonPositiveWindow)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("rollsigma.Compute: %w", mxerr.ErrNonPositiveInterval)
	}

	n := len(x)
	nw := numWindows(n, interval)
	out := make([]float64, nw)

	idx := &windowIndexer{n: n, sigWinSize: sigWinSize, interval: interval, pos: 0}
	acc := &accumulator{}
	curStart, curStop := 0, 0

	for i := 0; i < nw; i++ {
		start, stop := idx.start(), idx.stop()
		for s := curStart; s < start; s++ {
			acc.remove(x[s])
		}
		for s := start; s < curStart; s++ {
			acc.add(x[s])
		}
		for s := curStop; s < stop; s++ {
			acc.add(x[s])
		}
		for s := stop; s < curStop; s++ {
			acc.remove(x[s])
		}
		curStart, curStop = start, stop

		if acc.nobs > 1 {
			variance := acc.ssqdm / float64(acc.nobs-1)
			out[i] = scaleFactor * math.Sqrt(variance) / math.Pow(float64(acc.nobs), 0.2)
		}
		idx.advance()
	}
	return out, nil
}

// numWindows is the number of analysis positions produced by Compute.
func numWindows(n, interval int) int {
	if n <= 0 {
		return 0
	}
	return (n-1)/interval + 1
}
