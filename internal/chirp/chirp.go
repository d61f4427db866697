/*
NAME
  chirp.go

DESCRIPTION
  chirp.go generates the linear frequency sweep ("chirp") used as the
  modem's frame-synchronization preamble.

LICENSE
  This software is Copyright (C) 2024 the SpectraChirp Authors.
*/

// Package chirp generates the preamble waveform the synchronizer
// correlates against to find the start of a transmitted frame.
package chirp

import (
	"math"
	"sync"

	"github.com/saas-erp-hub/SpectraChirp/internal/mode"
)

// Samples returns the length, in samples, of the chirp preamble at the
// given sample rate.
func Samples(sampleRate int) int {
	return int(math.Round(mode.ChirpDuration * float64(sampleRate)))
}

var (
	mu    sync.Mutex
	cache = make(map[int][]float64)
)

// Template returns the chirp preamble at sampleRate: a linear sweep from
// mode.ChirpF0 to mode.ChirpF1 Hz over mode.ChirpDuration seconds. The
// waveform is computed once per sample rate and shared by every caller, so
// the transmitter's chirp and the receiver's correlation template are
// always bit-identical.
func Template(sampleRate int) []float64 {
	mu.Lock()
	defer mu.Unlock()
	if t, ok := cache[sampleRate]; ok {
		return t
	}
	t := generate(sampleRate)
	cache[sampleRate] = t
	return t
}

func generate(sampleRate int) []float64 {
	n := Samples(sampleRate)
	out := make([]float64, n)
	duration := mode.ChirpDuration
	f0 := float64(mode.ChirpF0)
	f1 := float64(mode.ChirpF1)
	k := (f1 - f0) / duration // Chirp rate, Hz/s.

	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		phase := 2 * math.Pi * (f0*t + 0.5*k*t*t)
		out[i] = math.Sin(phase)
	}
	return out
}
