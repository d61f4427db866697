/*
NAME
  wave.go

DESCRIPTION
  wave.go converts between the modem's internal float64 PCM samples and
  the 16-bit mono WAV container the core API transmits and accepts.

LICENSE
  This software is Copyright (C) 2024 the SpectraChirp Authors.
*/

// Package wave encodes and decodes the WAV container the modem uses as
// its wire format, and mixes multi-channel PCM down to mono.
package wave

import (
	"bytes"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

const (
	bitDepth    = 16
	numChannels = 1
	audioFormat = 1 // PCM, no compression.
)

// writeSeeker adapts an in-memory buffer to io.WriteSeeker, which
// go-audio/wav.Encoder requires to back-patch the RIFF header's size
// fields after writing the sample data. Adapted from the teacher's
// exp/flac/decode.go, which needs the same adapter around an
// otherwise-append-only byte buffer.
type writeSeeker struct {
	buf []byte
	pos int64
}

func (w *writeSeeker) Write(p []byte) (int, error) {
	end := w.pos + int64(len(p))
	if end > int64(len(w.buf)) {
		grown := make([]byte, end)
		copy(grown, w.buf)
		w.buf = grown
	}
	copy(w.buf[w.pos:end], p)
	w.pos = end
	return len(p), nil
}

func (w *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = w.pos
	case io.SeekEnd:
		base = int64(len(w.buf))
	default:
		return 0, errors.Errorf("wave: invalid whence %d", whence)
	}
	w.pos = base + offset
	return w.pos, nil
}

// Encode renders pcm (samples in [-1, 1]) as a mono 16-bit WAV file at
// sampleRate.
func Encode(pcm []float64, sampleRate int) ([]byte, error) {
	ws := &writeSeeker{}
	enc := wav.NewEncoder(ws, sampleRate, bitDepth, numChannels, audioFormat)

	ints := make([]int, len(pcm))
	for i, s := range pcm {
		ints[i] = floatToInt16(s)
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{SampleRate: sampleRate, NumChannels: numChannels},
		Data:   ints,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return nil, errors.Wrap(err, "wave: encode")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "wave: close encoder")
	}
	return ws.buf, nil
}

// Decode reads a WAV file and returns its samples as mono float64 PCM in
// [-1, 1], along with the file's sample rate. Multi-channel input is
// mixed down to mono by averaging channels.
func Decode(wavBytes []byte) (pcm []float64, sampleRate int, err error) {
	dec := wav.NewDecoder(bytes.NewReader(wavBytes))
	if !dec.IsValidFile() {
		return nil, 0, errors.New("wave: not a valid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, errors.Wrap(err, "wave: read PCM buffer")
	}

	mono := ToMono(buf)
	return mono, buf.Format.SampleRate, nil
}

// ToMono mixes a (possibly multi-channel, interleaved) IntBuffer down to
// float64 PCM in [-1, 1] by averaging channels.
func ToMono(buf *audio.IntBuffer) []float64 {
	ch := buf.Format.NumChannels
	if ch < 1 {
		ch = 1
	}
	n := len(buf.Data) / ch
	out := make([]float64, n)
	maxVal := float64(int(1) << (uint(buf.SourceBitDepth) - 1))
	if buf.SourceBitDepth == 0 {
		maxVal = float64(int(1) << (bitDepth - 1))
	}
	for i := 0; i < n; i++ {
		var sum float64
		for c := 0; c < ch; c++ {
			sum += float64(buf.Data[i*ch+c])
		}
		out[i] = (sum / float64(ch)) / maxVal
	}
	return out
}

func floatToInt16(s float64) int {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return int(s * 32767)
}
