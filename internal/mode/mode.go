/*
NAME
  mode.go

DESCRIPTION
  mode.go defines the physical-layer profiles ("modes") of the acoustic
  modem and a registry for looking them up by name.

LICENSE
  This software is Copyright (C) 2024 the SpectraChirp Authors.
*/

// Package mode defines the modem's physical-layer profiles (ModemConfig)
// and the registry of named modes a caller can select between.
package mode

import (
	"math"
	"math/bits"

	"github.com/pkg/errors"
)

// Global constants fixed for wire compatibility between transmitter and
// receiver. These never vary by mode.
const (
	SampleRate     = 16000 // Hz
	BaseFreq       = 1000  // Hz, frequency of tone 0.
	ChirpDuration  = 0.1   // seconds
	ChirpF0        = 2500  // Hz
	ChirpF1        = 3500  // Hz
	PayloadSize    = 32    // bytes
	HeaderSize     = 4     // bytes
	CRCSize        = 4     // bytes
	RSParity       = 16    // bytes
	EncodedPacket  = HeaderSize + PayloadSize + CRCSize + RSParity // 56 bytes
	MessageSize    = HeaderSize + PayloadSize + CRCSize            // 40 bytes, pre-FEC

	// MinCorrelationThreshold is the minimum chirp-correlation peak value
	// considered a potential frame start, regardless of mode.
	MinCorrelationThreshold = 10
	// SyncThresholdFactor scales the strongest correlation peak found in a
	// signal down to the threshold used to pick out the rest of its peaks.
	SyncThresholdFactor = 0.5
	// TargetRMS is the amplitude the synchronizer's AGC normalizes a
	// signal to before chirp correlation.
	TargetRMS = 0.1
	// PostPacketPauseSeconds is the silence gap the encoder inserts after
	// each packet's waveform.
	PostPacketPauseSeconds = 0.1
	// SyncSearchWindowFraction is the fraction of the expected
	// peak-to-peak spacing searched around each predicted next-peak
	// position.
	SyncSearchWindowFraction = 0.1
)

// ErrUnknownMode is returned by Lookup when given a name not present in
// the registry.
var ErrUnknownMode = errors.New("unknown modem mode")

// Config is an immutable physical-layer profile. All fields besides Name,
// NumTones, SymbolDurationMS and ToneSpacingHz are derived.
type Config struct {
	Name            string
	NumTones        int     // N, a power of 2.
	SymbolDurationMS float64
	ToneSpacingHz   float64
	SamplesPerSymbol int // round(SampleRate * SymbolDurationMS / 1000)
	BitsPerSymbol   int // log2(NumTones)
}

// New builds a Config from the three free parameters, deriving
// SamplesPerSymbol and BitsPerSymbol and validating the
// samples-per-symbol-must-be-a-multiple-of-NumTones invariant.
func New(name string, numTones int, symbolDurationMS, toneSpacingHz float64) (Config, error) {
	if numTones < 2 || numTones&(numTones-1) != 0 {
		return Config{}, errors.Errorf("mode %s: num_tones %d is not a power of 2", name, numTones)
	}
	sps := int(math.Round(SampleRate * symbolDurationMS / 1000))
	if sps%numTones != 0 {
		return Config{}, errors.Errorf("mode %s: samples_per_symbol %d is not a multiple of num_tones %d", name, sps, numTones)
	}
	return Config{
		Name:             name,
		NumTones:         numTones,
		SymbolDurationMS: symbolDurationMS,
		ToneSpacingHz:    toneSpacingHz,
		SamplesPerSymbol: sps,
		BitsPerSymbol:    bits.Len(uint(numTones)) - 1,
	}, nil
}

// registryOrder fixes the trial order used when a receiver auto-detects
// the mode: the hinted mode first, then the remaining registered modes in
// this order (spec.md section 4.7).
var registryOrder = []string{"DEFAULT", "ROBUST", "FAST"}

var registry map[string]Config

func init() {
	registry = make(map[string]Config, len(registryOrder))
	must := func(name string, numTones int, durMS, spacing float64) {
		c, err := New(name, numTones, durMS, spacing)
		if err != nil {
			panic(err) // Programmer error: registered modes must be valid.
		}
		registry[name] = c
	}
	must("DEFAULT", 32, 40, 35)
	must("ROBUST", 16, 60, 25)
	must("FAST", 32, 20, 50)
}

// Lookup returns the registered Config for name, or ErrUnknownMode wrapped
// with the offending name.
func Lookup(name string) (Config, error) {
	c, ok := registry[name]
	if !ok {
		return Config{}, errors.Wrap(ErrUnknownMode, name)
	}
	return c, nil
}

// Names returns the registered mode names in their fixed trial order.
func Names() []string {
	out := make([]string, len(registryOrder))
	copy(out, registryOrder)
	return out
}

// TrialOrder returns the mode names to attempt during auto-detection:
// hinted first (if it is a registered name), then the rest of Names() in
// order, skipping hinted if it appears again.
func TrialOrder(hinted string) []string {
	order := make([]string, 0, len(registryOrder))
	seen := make(map[string]bool, len(registryOrder))
	if _, err := Lookup(hinted); err == nil {
		order = append(order, hinted)
		seen[hinted] = true
	}
	for _, n := range registryOrder {
		if !seen[n] {
			order = append(order, n)
		}
	}
	return order
}
