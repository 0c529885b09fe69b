// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package midiwrite emits a Standard MIDI File, Format 1, single track,
// from a sequence of notes with sample-accurate on/off times.
package midiwrite

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/emer/meloscribe/mxerr"
)

const (
	division = 48  // ticks per quarter note
	bpm      = 120 // beats per minute
	velocity = 80
	channel  = 1

	noteOnStatus  = 0x90
	noteOffStatus = 0x80
)

// Note is one MIDI note event pair: pitch with its on/off sample times.
type Note struct {
	Pitch       int
	StartSample int
	EndSample   int
}

// Write emits a complete Format-1 MIDI file for notes, sampled at
// sampleRate, to w. w must be an io.WriteSeeker so the track-chunk
// length can be patched in after the body is written.
func Write(w io.WriteSeeker, notes []Note, sampleRate int) error {
	if sampleRate == 0 || bpm == 0 || division == 0 {
		return fmt.Errorf("midiwrite.Write: %w", mxerr.ErrZeroMidiTiming)
	}

	if err := writeHeaderChunk(w); err != nil {
		return fmt.Errorf("midiwrite.Write: %w", err)
	}

	lengthPos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("midiwrite.Write: %w", err)
	}
	if _, err := w.Write([]byte("MTrk\x00\x00\x00\x00")); err != nil {
		return fmt.Errorf("midiwrite.Write: %w", err)
	}

	bodyStart, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("midiwrite.Write: %w", err)
	}

	bw := bufio.NewWriter(w)
	if err := writeBody(bw, notes, sampleRate); err != nil {
		return fmt.Errorf("midiwrite.Write: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("midiwrite.Write: %w", err)
	}

	bodyEnd, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("midiwrite.Write: %w", err)
	}

	if _, err := w.Seek(lengthPos+4, io.SeekStart); err != nil {
		return fmt.Errorf("midiwrite.Write: %w", err)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(bodyEnd-bodyStart))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("midiwrite.Write: %w", err)
	}
	if _, err := w.Seek(bodyEnd, io.SeekStart); err != nil {
		return fmt.Errorf("midiwrite.Write: %w", err)
	}
	return nil
}

func writeHeaderChunk(w io.Writer) error {
	var buf [14]byte
	copy(buf[0:4], "MThd")
	binary.BigEndian.PutUint32(buf[4:8], 6)
	binary.BigEndian.PutUint16(buf[8:10], 1) // format 1
	binary.BigEndian.PutUint16(buf[10:12], 1) // one track
	binary.BigEndian.PutUint16(buf[12:14], division)
	_, err := w.Write(buf[:])
	return err
}

// ticksPerSample converts a sample-count delta into MIDI ticks:
// (bpm * division) / (sampleRate * 60).
func ticksPerSample(sampleRate int) float64 {
	return float64(bpm*division) / (float64(sampleRate) * 60)
}

type midiEvent struct {
	sample int
	status byte
}

func writeBody(w io.Writer, notes []Note, sampleRate int) error {
	events := make([]midiEvent, 0, len(notes)*2)
	for _, n := range notes {
		events = append(events,
			midiEvent{sample: n.StartSample, status: noteOnStatus},
			midiEvent{sample: n.EndSample, status: noteOffStatus},
		)
	}

	tps := ticksPerSample(sampleRate)
	cursorTicks := 0.0
	pitchAt := map[int]int{}
	for i, n := range notes {
		pitchAt[i*2] = n.Pitch
		pitchAt[i*2+1] = n.Pitch
	}

	for i, ev := range events {
		tick := int(float64(ev.sample) * tps)
		delta := tick - int(cursorTicks)
		if delta < 0 {
			delta = 0
		}
		cursorTicks = float64(tick)

		if err := writeVLQ(w, uint32(delta)); err != nil {
			return err
		}
		status := ev.status | (channel - 1)
		if _, err := w.Write([]byte{status, byte(pitchAt[i]), velocity}); err != nil {
			return err
		}
	}

	if err := writeVLQ(w, 2); err != nil {
		return err
	}
	_, err := w.Write([]byte{0xFF, 0x2F, 0x00})
	return err
}

// writeVLQ writes v as a MIDI variable-length quantity.
func writeVLQ(w io.Writer, v uint32) error {
	var stack [5]byte
	n := 0
	stack[n] = byte(v & 0x7F)
	n++
	v >>= 7
	for v > 0 {
		stack[n] = byte(v&0x7F) | 0x80
		n++
		v >>= 7
	}
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[i] = stack[n-1-i]
	}
	_, err := w.Write(buf)
	return err
}

// ReadVLQ decodes a single MIDI variable-length quantity from r.
func ReadVLQ(r io.ByteReader) (uint32, error) {
	var v uint32
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v = (v << 7) | uint32(b&0x7F)
		if b&0x80 == 0 {
			return v, nil
		}
	}
}
