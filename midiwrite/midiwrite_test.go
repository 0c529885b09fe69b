package midiwrite

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seekBuffer adapts a bytes.Buffer into an io.WriteSeeker backed by a
// plain byte slice, enough for the track-length patch-back Write needs.
type seekBuffer struct {
	buf []byte
	pos int64
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[s.pos:end], p)
	s.pos = end
	return len(p), nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case 0:
		s.pos = offset
	case 1:
		s.pos += offset
	case 2:
		s.pos = int64(len(s.buf)) + offset
	}
	return s.pos, nil
}

func TestWriteScenarioETwoNotes(t *testing.T) {
	notes := []Note{
		{Pitch: 60, StartSample: 0, EndSample: 22050},
		{Pitch: 60, StartSample: 22050, EndSample: 44100},
	}
	sb := &seekBuffer{}
	err := Write(sb, notes, 44100)
	require.NoError(t, err)

	// Header chunk is 14 bytes; body follows "MTrk" + 4-byte length.
	body := sb.buf[14+8:]

	want := []byte{
		0x00, 0x90, 60, 80, // delta 0, NoteOn 60,80
		48, 0x80, 60, 80, // delta 48, NoteOff 60,80
		0x00, 0x90, 60, 80, // delta 0, NoteOn 60,80
		48, 0x80, 60, 80, // delta 48, NoteOff 60,80
		2, 0xFF, 0x2F, 0x00, // delta 2, end of track
	}
	assert.Equal(t, want, body)
}

func TestWriteHeaderChunkFields(t *testing.T) {
	sb := &seekBuffer{}
	err := Write(sb, nil, 44100)
	require.NoError(t, err)
	assert.Equal(t, []byte("MThd"), sb.buf[0:4])
	assert.Equal(t, []byte("MTrk"), sb.buf[14:18])
}

func TestWriteRejectsZeroSampleRate(t *testing.T) {
	sb := &seekBuffer{}
	err := Write(sb, nil, 0)
	require.Error(t, err)
}

func TestVLQRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 16383, 16384, 2097151, 2097152, 268435455} {
		var buf bytes.Buffer
		require.NoError(t, writeVLQ(&buf, v))
		got, err := ReadVLQ(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}
