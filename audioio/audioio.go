// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package audioio loads mono PCM audio for the melody extraction pipeline.
// WAV decoding is delegated to go-audio/wav; everything downstream of this
// package works in float32 samples normalized to [-1, 1].
package audioio

import (
	"fmt"
	"os"

	"github.com/emer/etable/etensor"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/emer/meloscribe/mxerr"
)

// Info is the immutable descriptor that travels alongside the sample slice.
type Info struct {
	Frames     int64
	SampleRate int32
}

// Load opens and decodes path, enforcing single-channel PCM. It returns the
// normalized samples and an Info describing them.
func Load(path string) ([]float32, Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Info{}, fmt.Errorf("audioio.Load: %w: %v", mxerr.ErrUnreadableAudio, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, Info{}, fmt.Errorf("audioio.Load: %w", mxerr.ErrUnreadableAudio)
	}
	if dec.NumChans != 1 {
		return nil, Info{}, fmt.Errorf("audioio.Load: %w", mxerr.ErrFileNotMono)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, Info{}, fmt.Errorf("audioio.Load: %w: %v", mxerr.ErrUnreadableAudio, err)
	}
	nFrames := buf.NumFrames()
	if nFrames == 0 {
		return nil, Info{}, fmt.Errorf("audioio.Load: %w", mxerr.ErrEmptyAudio)
	}

	samples := make([]float32, nFrames)
	for i := 0; i < nFrames; i++ {
		samples[i] = sampleAt(buf, i)
	}

	info := Info{Frames: int64(nFrames), SampleRate: int32(dec.SampleRate)}
	return samples, info, nil
}

// sampleAt normalizes the PCM sample at idx to [-1, 1] according to the
// buffer's source bit depth.
func sampleAt(buf *audio.IntBuffer, idx int) float32 {
	switch buf.SourceBitDepth {
	case 32:
		return float32(buf.Data[idx]) / float32(0x7FFFFFFF)
	case 24:
		return float32(buf.Data[idx]) / float32(0x7FFFFF)
	case 16:
		return float32(buf.Data[idx]) / float32(0x7FFF)
	case 8:
		return float32(buf.Data[idx]) / float32(0x7F)
	}
	return 0
}

// ToTensor copies samples into a rank-1 etensor, the container type the
// CLI's loader uses to log the decoded buffer's shape before handing the
// plain []float32 slice off to the rest of the pipeline.
func ToTensor(samples []float32) *etensor.Float32 {
	t := etensor.NewFloat32([]int{len(samples)}, nil, nil)
	copy(t.Values, samples)
	return t
}
