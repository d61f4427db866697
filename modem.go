/*
NAME
  modem.go

DESCRIPTION
  modem.go is the module's core API: encode text into a transmittable WAV
  file, decode a received WAV's PCM back into text, and produce a
  per-packet diagnostic report for a received signal.

LICENSE
  This software is Copyright (C) 2024 the SpectraChirp Authors.
*/

// Package modem implements an acoustic data modem: Walsh-Hadamard-coded
// multi-tone FSK framed by chirp preambles and protected by Reed-Solomon
// FEC and CRC-32, transmitted and received as 16 kHz mono PCM.
package modem

import (
	"github.com/pkg/errors"

	"github.com/saas-erp-hub/SpectraChirp/internal/analyze"
	"github.com/saas-erp-hub/SpectraChirp/internal/chirp"
	"github.com/saas-erp-hub/SpectraChirp/internal/logging"
	"github.com/saas-erp-hub/SpectraChirp/internal/mode"
	"github.com/saas-erp-hub/SpectraChirp/internal/modulate"
	"github.com/saas-erp-hub/SpectraChirp/internal/packet"
	"github.com/saas-erp-hub/SpectraChirp/internal/receive"
	"github.com/saas-erp-hub/SpectraChirp/internal/wave"
)

// ErrUnsupportedSampleRate is returned by DecodeMessage and Analyze when
// given PCM at a sample rate other than mode.SampleRate: the modem's
// tone frequencies, chirp template and symbol timing are all derived from
// a fixed 16 kHz clock and have no meaning at another rate.
var ErrUnsupportedSampleRate = errors.New("modem: unsupported sample rate, must be 16000 Hz")

// defaultMode is substituted for an empty mode/hintedMode argument.
const defaultMode = "DEFAULT"

// EncodeMessage renders text as a WAV file transmittable by this modem
// under the named mode (e.g. "DEFAULT", "ROBUST", "FAST"; an empty string
// selects "DEFAULT"). text is chunked into mode.PayloadSize-byte packets,
// each framed with a header, CRC and Reed-Solomon parity, modulated with
// a chirp preamble prepended and a silent gap appended, and the whole
// sequence is normalized to avoid clipping before being encoded as a
// mono 16-bit WAV file at mode.SampleRate.
func EncodeMessage(text string, modeName string) ([]byte, error) {
	if modeName == "" {
		modeName = defaultMode
	}
	cfg, err := mode.Lookup(modeName)
	if err != nil {
		return nil, errors.Wrap(err, "modem: encode")
	}

	chunks := packet.Chunk([]byte(text))
	template := chirp.Template(mode.SampleRate)
	pauseSamples := int(mode.SampleRate * mode.PostPacketPauseSeconds)
	pause := make([]float64, pauseSamples)
	rng := modulate.NewRand()

	var pcm []float64
	for i, chunk := range chunks {
		codeword, err := packet.Frame(i+1, len(chunks), chunk)
		if err != nil {
			return nil, errors.Wrapf(err, "modem: frame packet %d", i+1)
		}
		symbolWave, err := modulate.Modulate(codeword, cfg, rng)
		if err != nil {
			return nil, errors.Wrapf(err, "modem: modulate packet %d", i+1)
		}
		pcm = append(pcm, template...)
		pcm = append(pcm, symbolWave...)
		pcm = append(pcm, pause...)
	}

	normalize(pcm)

	wavBytes, err := wave.Encode(pcm, mode.SampleRate)
	if err != nil {
		return nil, errors.Wrap(err, "modem: encode WAV")
	}
	return wavBytes, nil
}

// normalize scales pcm in place so its peak magnitude is 1, leaving a
// silent (all-zero) signal untouched, so the waveform spans the full
// range of the 16-bit samples wave.Encode writes.
func normalize(pcm []float64) {
	var peak float64
	for _, s := range pcm {
		if a := abs(s); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return
	}
	for i, s := range pcm {
		pcm[i] = s / peak
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// DecodeMessage recovers text from received mono PCM sampled at
// sampleRate. hintedMode (empty defaults to "DEFAULT") is tried first;
// on failure the remaining registered modes are tried in turn. It
// returns receive.SentinelFailure as the text and an empty detectedMode if no mode recovers any packet; it never
// returns a non-nil error except for an unsupported sample rate, per
// spec.md's "decode never fails up except for this one precondition"
// policy.
func DecodeMessage(pcm []float64, sampleRate int, hintedMode string) (text, detectedMode string, err error) {
	if sampleRate != mode.SampleRate {
		return "", "", errors.Wrapf(ErrUnsupportedSampleRate, "got %d", sampleRate)
	}
	if hintedMode == "" {
		hintedMode = defaultMode
	}
	text, detectedMode = receive.Run(pcm, hintedMode, nil)
	return text, detectedMode, nil
}

// Analyze runs the same multi-mode receive trial as DecodeMessage but
// returns a per-packet diagnostic report instead of reassembled text.
func Analyze(pcm []float64, sampleRate int) (modeName string, analyses []analyze.PacketAnalysis, err error) {
	if sampleRate != mode.SampleRate {
		return "", nil, errors.Wrapf(ErrUnsupportedSampleRate, "got %d", sampleRate)
	}
	var log *logging.Logger
	modeName, analyses = analyze.Run(pcm, log)
	return modeName, analyses, nil
}
