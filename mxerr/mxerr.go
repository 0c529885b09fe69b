// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mxerr collects the sentinel errors shared by every stage of the
// melody extraction pipeline. Every stage returns one of these (wrapped with
// fmt.Errorf and %w so errors.Is still matches) instead of an out-pointer
// and a -1 length sentinel.
package mxerr

import "errors"

// Argument errors.
var (
	ErrNonPositiveWindow   = errors.New("mxerr: window size must be positive")
	ErrNonPositiveInterval = errors.New("mxerr: interval must be positive")
	ErrNegativeStart       = errors.New("mxerr: start index must not be negative")
	ErrNegativeLength      = errors.New("mxerr: length must not be negative")
	ErrBadSampleRatio      = errors.New("mxerr: sample ratio out of representable range")
	ErrZeroMidiTiming      = errors.New("mxerr: bpm, division and samplerate must all be nonzero")
)

// Configuration errors.
var (
	ErrBadSilenceWindow  = errors.New("mxerr: invalid silence window size")
	ErrBadTuningMode     = errors.New("mxerr: invalid tuning mode")
	ErrUnknownStrategy   = errors.New("mxerr: unknown or unsupported strategy")
	ErrPaddedTooSmall    = errors.New("mxerr: padded fft size smaller than window")
	ErrUnknownFilterBank = errors.New("mxerr: unknown filterbank strategy")
)

// Input-domain errors.
var (
	ErrFileNotMono    = errors.New("mxerr: audio file is not single-channel")
	ErrUnreadableAudio = errors.New("mxerr: audio file could not be read")
	ErrEmptyAudio     = errors.New("mxerr: audio contains no samples")
)

// Numerical errors.
var (
	ErrAllNullDetFunc = errors.New("mxerr: detection function is identically zero")
	ErrBadKernelFit   = errors.New("mxerr: no valid kernel fit at this position")
	ErrInfNote        = errors.New("mxerr: non-finite midi note number")
	ErrNoTransients   = errors.New("mxerr: zero transients detected")
)

// Resource errors.
var (
	ErrAllocFailed      = errors.New("mxerr: allocation failed")
	ErrReallocFailed    = errors.New("mxerr: reallocation failed")
	ErrCapacityExceeded = errors.New("mxerr: bounded list capacity exceeded")
)

// Internal contract violations.
var (
	ErrOverlappingBuffers = errors.New("mxerr: input and output buffers overlap")
	ErrMisalignedBuffer   = errors.New("mxerr: buffer is not suitably aligned")
	ErrBadAlignment       = errors.New("mxerr: window, hop or lag is not a multiple of 4")
	ErrLengthMismatch     = errors.New("mxerr: detection function length mismatch")
)
