/*
NAME
  modulate.go

DESCRIPTION
  modulate.go turns a byte stream into the modem's Walsh-Hadamard-coded
  multi-tone PCM waveform: each symbol is divided into NumTones time
  chips, one per tone frequency, each chip's sign set by the Hadamard row
  the symbol's bits select.

LICENSE
  This software is Copyright (C) 2024 the SpectraChirp Authors.
*/

// Package modulate converts framed packet bytes into the PCM waveform
// transmitted for them, one Walsh-Hadamard-coded multi-tone symbol at a
// time.
package modulate

import (
	"math"
	"math/rand"
	"time"

	"github.com/mjibson/go-dsp/window"
	"github.com/pkg/errors"

	"github.com/saas-erp-hub/SpectraChirp/internal/hadamard"
	"github.com/saas-erp-hub/SpectraChirp/internal/mode"
)

// chipPhases are the four phase offsets a symbol may be given, matching
// the discrete phase choices of the reference implementation (a
// decorrelation measure only — the receiver is non-coherent and never
// needs to know which one was picked).
var chipPhases = []float64{0, math.Pi / 2, math.Pi, -math.Pi / 2}

// NewRand returns a default, time-seeded source of per-symbol phase
// randomization. Production callers can pass this to Modulate; tests
// inject a fixed-seed *rand.Rand instead for reproducible waveform shape
// comparisons.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// BytesToSymbols splits data into symbol values, each bitsPerSymbol bits
// wide, most-significant-bit first. If the bit stream does not divide
// evenly, the final symbol is zero-padded on its low-order bits.
func BytesToSymbols(data []byte, bitsPerSymbol int) []int {
	totalBits := len(data) * 8
	numSymbols := (totalBits + bitsPerSymbol - 1) / bitsPerSymbol
	symbols := make([]int, numSymbols)

	bitPos := 0
	for s := 0; s < numSymbols; s++ {
		var v int
		for b := 0; b < bitsPerSymbol; b++ {
			v <<= 1
			bytePos := bitPos / 8
			if bytePos < len(data) {
				shift := 7 - (bitPos % 8)
				v |= int((data[bytePos] >> uint(shift)) & 1)
			}
			bitPos++
		}
		symbols[s] = v
	}
	return symbols
}

// Frequencies returns the NumTones chip frequencies for cfg, tone k at
// mode.BaseFreq + k*cfg.ToneSpacingHz.
func Frequencies(cfg mode.Config) []float64 {
	freqs := make([]float64, cfg.NumTones)
	for k := range freqs {
		freqs[k] = float64(mode.BaseFreq) + float64(k)*cfg.ToneSpacingHz
	}
	return freqs
}

// RenderSymbol generates the PCM waveform for one symbol value under cfg:
// cfg.SamplesPerSymbol samples divided into cfg.NumTones equal chips, chip
// k carrying a sine tone at Frequencies(cfg)[k] whose sign is row `value`
// of the order-NumTones Hadamard matrix, all chips sharing one randomly
// chosen symbol-wide phase offset.
func RenderSymbol(value int, cfg mode.Config, rng *rand.Rand) ([]float64, error) {
	row, err := hadamard.Row(cfg.NumTones, value)
	if err != nil {
		return nil, errors.Wrapf(err, "modulate: symbol value %d", value)
	}

	samplesPerChip := cfg.SamplesPerSymbol / cfg.NumTones
	chipDuration := cfg.SymbolDurationMS / 1000 / float64(cfg.NumTones)
	freqs := Frequencies(cfg)

	phase := chipPhases[0]
	if rng != nil {
		phase = chipPhases[rng.Intn(len(chipPhases))]
	}

	out := make([]float64, cfg.SamplesPerSymbol)
	for chipIdx, sign := range row {
		freq := freqs[chipIdx]
		start := chipIdx * samplesPerChip
		for i := 0; i < samplesPerChip; i++ {
			t := float64(i) / float64(samplesPerChip) * chipDuration
			out[start+i] = math.Sin(2*math.Pi*freq*t+phase) * sign
		}
	}
	return out, nil
}

// Taper applies a flat-top window to chip, shaping its edges toward zero
// to reduce the spectral splatter a hard chip boundary would otherwise
// radiate into neighbouring tones. It is not used by the default
// Modulate/RenderSymbol path above, since the receiver's matched-filter
// references in internal/demod are phase-zero rectangular chips and would
// need the identical taper applied to stay matched; it is exposed for a
// caller building a receiver that applies the same taper on both ends,
// following the same window.FlatTop construction the teacher's
// codec/pcm/filters.go uses for its FIR filter coefficients.
func Taper(chip []float64) []float64 {
	win := window.FlatTop(len(chip))
	out := make([]float64, len(chip))
	for i, s := range chip {
		out[i] = s * win[i]
	}
	return out
}

// Modulate renders the full PCM waveform for data: data is split into
// cfg.BitsPerSymbol-bit symbols with BytesToSymbols, and each symbol's
// waveform is concatenated in order.
func Modulate(data []byte, cfg mode.Config, rng *rand.Rand) ([]float64, error) {
	symbols := BytesToSymbols(data, cfg.BitsPerSymbol)
	out := make([]float64, 0, len(symbols)*cfg.SamplesPerSymbol)
	for _, v := range symbols {
		sym, err := RenderSymbol(v, cfg, rng)
		if err != nil {
			return nil, err
		}
		out = append(out, sym...)
	}
	return out, nil
}
