package sync

import (
	"math"
	"testing"

	"github.com/saas-erp-hub/SpectraChirp/internal/chirp"
	"github.com/saas-erp-hub/SpectraChirp/internal/mode"
)

func TestAGCNormalizesRMS(t *testing.T) {
	signal := make([]float64, 1000)
	for i := range signal {
		signal[i] = 2 * math.Sin(2*math.Pi*440*float64(i)/mode.SampleRate)
	}
	out := AGC(signal)
	var sumSq float64
	for _, s := range out {
		sumSq += s * s
	}
	rms := math.Sqrt(sumSq / float64(len(out)))
	if math.Abs(rms-mode.TargetRMS) > 1e-3 {
		t.Fatalf("rms after AGC = %v, want ~%v", rms, mode.TargetRMS)
	}
}

func TestCorrelatePeaksAtChirpOffset(t *testing.T) {
	template := chirp.Template(mode.SampleRate)
	offset := 500
	signal := make([]float64, offset+len(template)+200)
	copy(signal[offset:], template)

	corr := Correlate(signal, template)
	if len(corr) != len(signal)-len(template)+1 {
		t.Fatalf("len(corr) = %d, want %d", len(corr), len(signal)-len(template)+1)
	}

	maxIdx := 0
	for i, v := range corr {
		if v > corr[maxIdx] {
			maxIdx = i
		}
	}
	if maxIdx != offset {
		t.Fatalf("correlation peak at %d, want %d", maxIdx, offset)
	}
}

func TestFindPeaksEmptyOnSilence(t *testing.T) {
	corr := make([]float64, 1000)
	if peaks := FindPeaks(corr, 100); peaks != nil {
		t.Fatalf("FindPeaks(silence) = %v, want nil", peaks)
	}
}

func TestFindPeaksLocatesRegularSpacing(t *testing.T) {
	n := 5000
	corr := make([]float64, n)
	spacing := 1000
	for _, p := range []int{100, 1100, 2100, 3100} {
		corr[p] = 50
	}
	peaks := FindPeaks(corr, spacing)
	want := []int{100, 1100, 2100, 3100}
	if len(peaks) != len(want) {
		t.Fatalf("peaks = %v, want %v", peaks, want)
	}
	for i := range want {
		if peaks[i] != want[i] {
			t.Fatalf("peaks[%d] = %d, want %d", i, peaks[i], want[i])
		}
	}
}
