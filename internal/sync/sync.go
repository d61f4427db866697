/*
NAME
  sync.go

DESCRIPTION
  sync.go recovers frame boundaries from a received signal: automatic gain
  control, FFT-based chirp correlation, and expected-spacing peak picking.

LICENSE
  This software is Copyright (C) 2024 the SpectraChirp Authors.
*/

// Package sync locates packet boundaries in a received signal by
// correlating it against the chirp preamble template.
package sync

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/saas-erp-hub/SpectraChirp/internal/mode"
)

// AGC rescales signal so its RMS amplitude is mode.TargetRMS, the way the
// synchronizer normalizes gain-varying recordings before correlation.
// The RMS is computed with gonum's stat.Mean over the squared samples.
func AGC(signal []float64) []float64 {
	sq := make([]float64, len(signal))
	for i, s := range signal {
		sq[i] = s * s
	}
	rms := math.Sqrt(stat.Mean(sq, nil))
	gain := mode.TargetRMS / (rms + 1e-9)

	out := make([]float64, len(signal))
	for i, s := range signal {
		out[i] = s * gain
	}
	return out
}

// nextPow2 returns the smallest power of two >= n.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Correlate computes the "valid"-mode cross-correlation of signal against
// template (length len(signal)-len(template)+1, requiring
// len(signal) >= len(template)): result[k] = sum_i signal[k+i]*template[i].
// Implemented via FFT, adapting codec/pcm/filters.go's fastConvolve (which
// convolves via fft.FFTReal/fft.IFFT) into a correlation by reversing the
// template before the forward transform — correlation is convolution with
// a time-reversed kernel.
func Correlate(signal, template []float64) []float64 {
	la, lv := len(signal), len(template)
	if la < lv {
		return nil
	}
	full := la + lv - 1
	n := nextPow2(full)

	a := make([]float64, n)
	copy(a, signal)
	v := make([]float64, n)
	for i := 0; i < lv; i++ {
		v[i] = template[lv-1-i]
	}

	A := fft.FFTReal(a)
	V := fft.FFTReal(v)
	prod := make([]complex128, n)
	for i := range prod {
		prod[i] = A[i] * V[i]
	}
	conv := fft.IFFT(prod)

	out := make([]float64, la-lv+1)
	for i := range out {
		out[i] = real(conv[lv-1+i])
	}
	return out
}

// FindPeaks locates frame-start candidates in a chirp correlation curve.
// It requires the global peak to clear mode.MinCorrelationThreshold, then
// takes the first sample above mode.SyncThresholdFactor of that peak as the
// first candidate, and walks forward predicting each subsequent peak at
// minSpacing past the last one (searching a window of
// +/- mode.SyncSearchWindowFraction*minSpacing around the prediction, upper
// end excluded). The walk stops when a window would run past the end of
// correlation or its maximum falls below the threshold, so a later frame
// weaker than the threshold is not found. Within any search window, ties go to the smallest index,
// matching gonum's floats.MaxIdx (and numpy's argmax) semantics.
func FindPeaks(correlation []float64, minSpacing int) []int {
	if len(correlation) == 0 {
		return nil
	}
	maxIdx := floats.MaxIdx(correlation)
	maxVal := correlation[maxIdx]
	if maxVal < mode.MinCorrelationThreshold {
		return nil
	}
	threshold := maxVal * mode.SyncThresholdFactor

	var first int
	found := false
	for i, v := range correlation {
		if v > threshold {
			first = i
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	peaks := []int{first}
	last := first
	searchWindow := int(float64(minSpacing) * mode.SyncSearchWindowFraction)
	for {
		expected := last + minSpacing
		start := expected - searchWindow
		end := expected + searchWindow
		if end > len(correlation) {
			break
		}
		if start < 0 {
			start = 0
		}
		window := correlation[start:end]
		if len(window) == 0 {
			break
		}
		wMaxIdx := floats.MaxIdx(window)
		if window[wMaxIdx] < threshold {
			break
		}
		next := start + wMaxIdx
		peaks = append(peaks, next)
		last = next
	}
	return peaks
}
