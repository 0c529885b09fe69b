// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package melody orchestrates the full transcription pipeline: silence
// detection, transient detection, pitch tracking, and note assembly,
// from decoded mono audio down to a MIDI note list.
package melody

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/emer/meloscribe/bana"
	"github.com/emer/meloscribe/midiwrite"
	"github.com/emer/meloscribe/mxerr"
	"github.com/emer/meloscribe/notecompile"
	"github.com/emer/meloscribe/resample"
	"github.com/emer/meloscribe/stft"
	"github.com/emer/meloscribe/transient"
	"github.com/emer/meloscribe/vad"
)

// transientSampleRate is the fixed sample rate the transient path runs
// at, matching the reference front end's correntropy tuning.
const transientSampleRate = 11025

// Config bundles every tunable the CLI surface exposes. Fields already
// resolved from "<N|Nms>" option strings into sample counts.
type Config struct {
	PitchWindow     int
	PitchPadded     int
	PitchSpacing    int
	PitchStrategy   string // "HPS", "BaNa", "BaNaMusic"
	SilenceWindow   int
	SilenceSpacing  int
	SilenceStrategy string // "", "fVAD"
	SilenceMode     vad.Mode
	TuningMode      int
	HPSOvertones    int // accepted, unused (legacy strategy)
}

// DefaultConfig matches the CLI's pitch defaults. The silence window and
// spacing are left at 0 (the CLI's 20ms/10ms depend on the sample rate
// and are filled in by the caller), and HPSOvertones is left at 0.
func DefaultConfig() Config {
	return Config{
		PitchWindow:     4096,
		PitchPadded:     4096,
		PitchSpacing:    2048,
		PitchStrategy:   "BaNaMusic",
		SilenceWindow:   0,
		SilenceSpacing:  0,
		SilenceStrategy: "",
		SilenceMode:     1,
		TuningMode:      0,
	}
}

// Result bundles the final MIDI notes alongside the intermediate
// per-frame and per-note data the "-p" debug side-files dump.
type Result struct {
	Notes []midiwrite.Note

	// FramePitches is the raw per-frame pitch path selected by BaNa,
	// before note assembly averages it across each note's span.
	FramePitches []notecompile.FramePitch

	// WeightedNotes is the per-note weighted-average frequency, after
	// note assembly but before MIDI quantization.
	WeightedNotes []notecompile.Note
}

// Transcribe runs the full pipeline over mono audio at sampleRate and
// returns the assembled MIDI notes. ctx bounds total wall-clock time;
// no stage checks it mid-computation (matching the synchronous,
// non-cancellable style this pipeline is adapted from), it is only
// honored between stage boundaries.
func Transcribe(ctx context.Context, audio []float32, sampleRate int, cfg Config) (Result, error) {
	if len(audio) == 0 {
		return Result{}, fmt.Errorf("melody.Transcribe: %w", mxerr.ErrEmptyAudio)
	}
	if cfg.PitchStrategy == "HPS" {
		return Result{}, fmt.Errorf("melody.Transcribe: %w", mxerr.ErrUnknownStrategy)
	}
	if cfg.PitchStrategy != "BaNa" && cfg.PitchStrategy != "BaNaMusic" {
		return Result{}, fmt.Errorf("melody.Transcribe: %w", mxerr.ErrUnknownStrategy)
	}

	var activity []vad.ActivityRange
	if cfg.SilenceStrategy == "fVAD" {
		log.Debug("running voice-activity detection", "window", cfg.SilenceWindow, "spacing", cfg.SilenceSpacing)
		a, err := vad.Detect(audio, vad.Config{
			Window:     cfg.SilenceWindow,
			Spacing:    cfg.SilenceSpacing,
			Mode:       cfg.SilenceMode,
			SampleRate: sampleRate,
		})
		if err != nil {
			return Result{}, fmt.Errorf("melody.Transcribe: %w", err)
		}
		activity = a
	}
	if err := checkCtx(ctx); err != nil {
		return Result{}, err
	}

	transients, err := detectTransients(audio, sampleRate)
	if err != nil {
		return Result{}, fmt.Errorf("melody.Transcribe: %w", err)
	}
	log.Info("transients detected", "count", len(transients)/2)
	if err := checkCtx(ctx); err != nil {
		return Result{}, err
	}

	frames, err := trackPitch(audio, sampleRate, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("melody.Transcribe: %w", err)
	}
	log.Debug("pitch frames tracked", "count", len(frames))
	if err := checkCtx(ctx); err != nil {
		return Result{}, err
	}

	notes, err := notecompile.BuildNotes(transients, frames, sampleRate, activity)
	if err != nil {
		return Result{}, fmt.Errorf("melody.Transcribe: %w", err)
	}
	if len(notes) == 0 {
		log.Warn("no notes survived assembly")
		return Result{FramePitches: frames}, nil
	}

	freqs := make([]float64, len(notes))
	for i, n := range notes {
		freqs[i] = n.Freq
	}
	pitches, err := notecompile.FreqToMIDI(freqs, cfg.TuningMode)
	if err != nil {
		return Result{}, fmt.Errorf("melody.Transcribe: %w", err)
	}

	out := make([]midiwrite.Note, len(notes))
	for i, n := range notes {
		out[i] = midiwrite.Note{Pitch: pitches[i], StartSample: n.StartSample, EndSample: n.EndSample}
	}
	log.Info("transcription complete", "notes", len(out))
	return Result{Notes: out, FramePitches: frames, WeightedNotes: notes}, nil
}

func checkCtx(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// detectTransients resamples audio down to transientSampleRate (the
// rate the correntropy detection function is tuned for), runs the
// gammatone/correntropy front end, and maps the result back to the
// original sample axis.
func detectTransients(audio []float32, sampleRate int) ([]int, error) {
	working := audio
	workRate := sampleRate
	if sampleRate != transientSampleRate {
		r, err := resample.Resample(audio, sampleRate, transientSampleRate)
		if err != nil {
			return nil, err
		}
		working = r
		workRate = transientSampleRate
	}

	d, err := transient.DetFunc(working, workRate, transient.Defaults())
	if err != nil {
		return nil, err
	}
	idx, err := transient.Segment(d)
	if err != nil {
		return nil, err
	}

	hop := roundDownMul4(int(float64(workRate) / 200.0))
	out := make([]int, len(idx))
	for i, v := range idx {
		sample := v * hop
		if workRate != sampleRate {
			sample = resample.MapIndex(sample, sampleRate, workRate)
		}
		out[i] = sample
	}
	return out, nil
}

func roundDownMul4(n int) int {
	r := (n / 4) * 4
	if r < 4 {
		return 4
	}
	return r
}

// trackPitch runs the STFT/BaNa pitch path over the full signal at the
// original sample rate and returns the selected fundamental frequency
// for every spectrogram frame (0 for frames with no selected path
// point).
func trackPitch(audio []float32, sampleRate int, cfg Config) ([]notecompile.FramePitch, error) {
	spec, err := stft.Compute(audio, cfg.PitchWindow, cfg.PitchPadded, cfg.PitchSpacing)
	if err != nil {
		return nil, err
	}

	xi := bana.XiBaNaMusic
	if cfg.PitchStrategy == "BaNa" {
		xi = bana.XiBaNa
	}
	bcfg := bana.DefaultConfig(cfg.PitchPadded, sampleRate, xi)

	lists := make([]bana.DistinctList, spec.NumBlocks)
	for b := 0; b < spec.NumBlocks; b++ {
		lists[b] = bana.FrameCandidates(spec.Row(b), bcfg)
	}
	path := bana.SelectPath(lists)

	freqByFrame := make([]float64, spec.NumBlocks)
	for _, p := range path {
		freqByFrame[p.FrameIndex] = p.Freq
	}

	frames := make([]notecompile.FramePitch, spec.NumBlocks)
	for b := range frames {
		start := b * cfg.PitchSpacing
		length := cfg.PitchWindow
		frames[b] = notecompile.FramePitch{StartSample: start, Length: length, Freq: freqByFrame[b]}
	}
	return frames, nil
}

// ParseSampleOrMs converts a CLI numeric option into a sample count: a
// bare integer is taken as a sample count directly, a value with the
// literal suffix "ms" is converted via (sampleRate*ms)/1000.
func ParseSampleOrMs(s string, sampleRate int) (int, error) {
	if strings.HasSuffix(s, "ms") {
		ms, err := strconv.Atoi(strings.TrimSuffix(s, "ms"))
		if err != nil {
			return 0, fmt.Errorf("melody.ParseSampleOrMs: %w", mxerr.ErrNonPositiveWindow)
		}
		return sampleRate * ms / 1000, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("melody.ParseSampleOrMs: %w", mxerr.ErrNonPositiveWindow)
	}
	return n, nil
}
