/*
NAME
  demod.go

DESCRIPTION
  demod.go performs non-coherent envelope demodulation of a Walsh-Hadamard
  multi-tone symbol: a quadrature (sin/cos) matched filter run against
  every possible Hadamard row, picking the row with the largest
  phase-independent correlation magnitude.

LICENSE
  This software is Copyright (C) 2024 the SpectraChirp Authors.
*/

// Package demod recovers symbol values, and ultimately bytes, from the
// PCM waveform of a synchronized packet.
package demod

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/saas-erp-hub/SpectraChirp/internal/hadamard"
	"github.com/saas-erp-hub/SpectraChirp/internal/mode"
	"github.com/saas-erp-hub/SpectraChirp/internal/modulate"
)

// References holds the precomputed, phase-zero sin and cos reference
// waveforms for every possible symbol value of a ModemConfig: O(N^2)
// samples, built once and reused for every symbol the receiver
// demodulates, rather than regenerated per call.
type References struct {
	cfg mode.Config
	sin [][]float64
	cos [][]float64
}

var (
	mu    sync.Mutex
	cache = make(map[string]*References)
)

// Build returns the (cached) References for cfg.
func Build(cfg mode.Config) (*References, error) {
	mu.Lock()
	defer mu.Unlock()
	if r, ok := cache[cfg.Name]; ok {
		return r, nil
	}

	r, err := build(cfg)
	if err != nil {
		return nil, err
	}
	cache[cfg.Name] = r
	return r, nil
}

func build(cfg mode.Config) (*References, error) {
	samplesPerChip := cfg.SamplesPerSymbol / cfg.NumTones
	chipDuration := cfg.SymbolDurationMS / 1000 / float64(cfg.NumTones)
	freqs := modulate.Frequencies(cfg)

	r := &References{
		cfg: cfg,
		sin: make([][]float64, cfg.NumTones),
		cos: make([][]float64, cfg.NumTones),
	}
	for v := 0; v < cfg.NumTones; v++ {
		row, err := hadamard.Row(cfg.NumTones, v)
		if err != nil {
			return nil, err
		}
		sinRef := make([]float64, cfg.SamplesPerSymbol)
		cosRef := make([]float64, cfg.SamplesPerSymbol)
		for chipIdx, sign := range row {
			freq := freqs[chipIdx]
			start := chipIdx * samplesPerChip
			for i := 0; i < samplesPerChip; i++ {
				t := float64(i) / float64(samplesPerChip) * chipDuration
				angle := 2 * math.Pi * freq * t
				sinRef[start+i] = math.Sin(angle) * sign
				cosRef[start+i] = math.Cos(angle) * sign
			}
		}
		r.sin[v] = sinRef
		r.cos[v] = cosRef
	}
	return r, nil
}

// Symbol returns the most likely symbol value for one symbol's worth of
// samples (len(segment) == refs.cfg.SamplesPerSymbol), by non-coherent
// quadrature correlation against every candidate Hadamard row, with ties
// broken toward the smallest index (gonum's floats.MaxIdx, like numpy's
// argmax, returns the first occurrence of the maximum).
func Symbol(segment []float64, refs *References) int {
	n := refs.cfg.NumTones
	magnitudes := make([]float64, n)
	for v := 0; v < n; v++ {
		var corrSin, corrCos float64
		for i, s := range segment {
			corrSin += s * refs.sin[v][i]
			corrCos += s * refs.cos[v][i]
		}
		magnitudes[v] = math.Hypot(corrSin, corrCos)
	}
	return floats.MaxIdx(magnitudes)
}

// SymbolsToBytes packs symbols (each bitsPerSymbol bits wide,
// most-significant-bit first, as produced by modulate.BytesToSymbols) back
// into numBytes bytes, discarding any padding bits beyond numBytes*8.
func SymbolsToBytes(symbols []int, bitsPerSymbol, numBytes int) []byte {
	out := make([]byte, numBytes)
	bitPos := 0
	totalBits := numBytes * 8
	for _, v := range symbols {
		for b := bitsPerSymbol - 1; b >= 0; b-- {
			if bitPos >= totalBits {
				return out
			}
			bit := (v >> uint(b)) & 1
			bytePos := bitPos / 8
			shift := 7 - (bitPos % 8)
			out[bytePos] |= byte(bit << uint(shift))
			bitPos++
		}
	}
	return out
}

// Packet demodulates samples (a synchronized packet's samples, exactly
// enough whole symbols to cover mode.EncodedPacket bytes) into the
// mode.EncodedPacket-byte Reed-Solomon codeword.
func Packet(samples []float64, cfg mode.Config) ([]byte, error) {
	refs, err := Build(cfg)
	if err != nil {
		return nil, err
	}
	numSymbols := len(samples) / cfg.SamplesPerSymbol
	symbols := make([]int, numSymbols)
	for j := 0; j < numSymbols; j++ {
		seg := samples[j*cfg.SamplesPerSymbol : (j+1)*cfg.SamplesPerSymbol]
		symbols[j] = Symbol(seg, refs)
	}
	return SymbolsToBytes(symbols, cfg.BitsPerSymbol, mode.EncodedPacket), nil
}
