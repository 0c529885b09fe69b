// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command meloscribe transcribes a mono-PCM recording of monophonic
// singing into a Standard MIDI File.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/emer/meloscribe/audioio"
	"github.com/emer/meloscribe/melody"
	"github.com/emer/meloscribe/midiwrite"
	"github.com/emer/meloscribe/notecompile"
	"github.com/emer/meloscribe/vad"
)

func main() {
	var (
		inPath        = pflag.StringP("input", "i", "", "input WAV file (mandatory)")
		outPath       = pflag.StringP("output", "o", "", "output MIDI file (mandatory)")
		verbose       = pflag.BoolP("verbose", "v", false, "verbose logging")
		hpsOvertones  = pflag.IntP("hps-overtones", "h", 1, "HPS overtone count (legacy strategy only; accepted, unused)")
		tuningMode    = pflag.IntP("tuning", "t", 0, "tuning adjustment mode (0, 1 or 2)")
		debugPrefix   = pflag.StringP("prefix", "p", "", "dump spectrogram debug files under this prefix")
		pitchWindow   = pflag.String("pitch_window", "4096", "STFT window, <N|Nms>")
		pitchPadded   = pflag.String("pitch_padded", "", "zero-padded FFT size, <N|Nms>, default = pitch_window")
		pitchSpacing  = pflag.String("pitch_spacing", "", "hop, <N|Nms>, default = pitch_window/2")
		pitchStrategy = pflag.String("pitch_strategy", "BaNaMusic", "pitch algorithm: HPS, BaNa or BaNaMusic")
		silenceWindow = pflag.String("silence_window", "20ms", "VAD frame size: 10ms, 20ms or 30ms")
		silenceSpace  = pflag.String("silence_spacing", "10ms", "VAD hop")
		silenceStrat  = pflag.String("silence_strategy", "", "VAD strategy: fVAD or empty to disable")
		silenceMode   = pflag.IntP("silence_mode", "", 1, "VAD aggressiveness, 0..3")
	)
	pflag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if *inPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: meloscribe -i <input.wav> -o <output.mid> [options]")
		pflag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(*inPath, *outPath, *hpsOvertones, *tuningMode, *debugPrefix,
		*pitchWindow, *pitchPadded, *pitchSpacing, *pitchStrategy,
		*silenceWindow, *silenceSpace, *silenceStrat, *silenceMode); err != nil {
		log.Error("transcription failed", "err", err)
		os.Exit(1)
	}
}

func run(inPath, outPath string, hpsOvertones, tuningMode int, debugPrefix,
	pitchWindow, pitchPadded, pitchSpacing, pitchStrategy,
	silenceWindow, silenceSpacing, silenceStrategy string, silenceMode int) error {

	log.Info("loading audio", "path", inPath)
	samples, info, err := audioio.Load(inPath)
	if err != nil {
		return err
	}
	sampleRate := int(info.SampleRate)
	log.Debug("audio loaded", "frames", info.Frames, "samplerate", sampleRate)

	tensor := audioio.ToTensor(samples)
	log.Debug("audio buffered", "tensor_len", len(tensor.Values))

	cfg := melody.DefaultConfig()
	cfg.PitchStrategy = pitchStrategy
	cfg.TuningMode = tuningMode
	cfg.HPSOvertones = hpsOvertones
	cfg.SilenceStrategy = silenceStrategy
	cfg.SilenceMode = vad.Mode(silenceMode)

	if cfg.PitchWindow, err = melody.ParseSampleOrMs(pitchWindow, sampleRate); err != nil {
		return err
	}
	cfg.PitchPadded = cfg.PitchWindow
	if pitchPadded != "" {
		if cfg.PitchPadded, err = melody.ParseSampleOrMs(pitchPadded, sampleRate); err != nil {
			return err
		}
	}
	cfg.PitchSpacing = cfg.PitchWindow / 2
	if pitchSpacing != "" {
		if cfg.PitchSpacing, err = melody.ParseSampleOrMs(pitchSpacing, sampleRate); err != nil {
			return err
		}
	}
	if cfg.SilenceWindow, err = melody.ParseSampleOrMs(silenceWindow, sampleRate); err != nil {
		return err
	}
	if cfg.SilenceSpacing, err = melody.ParseSampleOrMs(silenceSpacing, sampleRate); err != nil {
		return err
	}

	ctx := context.Background()
	log.Info("transcribing", "strategy", cfg.PitchStrategy)
	res, err := melody.Transcribe(ctx, samples, sampleRate, cfg)
	if err != nil {
		return err
	}
	if debugPrefix != "" {
		if err := writeDebugFiles(debugPrefix, res, cfg); err != nil {
			log.Warn("failed to write debug files", "err", err)
		}
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := midiwrite.Write(out, res.Notes, sampleRate); err != nil {
		return err
	}
	log.Info("wrote MIDI file", "path", outPath, "notes", len(res.Notes))
	return nil
}

// writeDebugFiles emits the three diagnostic tab-separated side-files
// documented for the -p flag: the raw per-frame pitch path
// ("_original"), the per-note weighted frequency ahead of MIDI
// quantization ("_weighted"), and the final notes ("_notes"). These
// are informational only, not part of the tested contract.
func writeDebugFiles(prefix string, res melody.Result, cfg melody.Config) error {
	if err := writeOriginalDebug(prefix, res.FramePitches, cfg); err != nil {
		return err
	}
	if err := writeWeightedDebug(prefix, res.WeightedNotes); err != nil {
		return err
	}
	return writeNotesDebug(prefix, res.Notes, cfg)
}

func writeOriginalDebug(prefix string, frames []notecompile.FramePitch, cfg melody.Config) error {
	f, err := os.Create(prefix + "_original.txt")
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "# pitch_window=%d pitch_padded=%d pitch_spacing=%d\n", cfg.PitchWindow, cfg.PitchPadded, cfg.PitchSpacing)
	fmt.Fprintln(f, "#start\tfreq")
	for _, fr := range frames {
		fmt.Fprintf(f, "%d\t%g\n", fr.StartSample, fr.Freq)
	}
	return nil
}

func writeWeightedDebug(prefix string, notes []notecompile.Note) error {
	f, err := os.Create(prefix + "_weighted.txt")
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintln(f, "#start\tend\tfreq")
	for _, n := range notes {
		fmt.Fprintf(f, "%d\t%d\t%g\n", n.StartSample, n.EndSample, n.Freq)
	}
	return nil
}

func writeNotesDebug(prefix string, notes []midiwrite.Note, cfg melody.Config) error {
	f, err := os.Create(prefix + "_notes.txt")
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "# pitch_window=%d pitch_padded=%d pitch_spacing=%d\n", cfg.PitchWindow, cfg.PitchPadded, cfg.PitchSpacing)
	fmt.Fprintln(f, "#start\tend\tpitch")
	for _, n := range notes {
		fmt.Fprintf(f, "%d\t%d\t%d\n", n.StartSample, n.EndSample, n.Pitch)
	}
	return nil
}
