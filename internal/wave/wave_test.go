package wave

import (
	"math"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	const sampleRate = 16000
	pcm := make([]float64, 200)
	for i := range pcm {
		pcm[i] = math.Sin(2 * math.Pi * 440 * float64(i) / sampleRate)
	}

	wavBytes, err := Encode(pcm, sampleRate)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(wavBytes) == 0 {
		t.Fatalf("Encode returned no bytes")
	}

	got, sr, err := Decode(wavBytes)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if sr != sampleRate {
		t.Fatalf("sample rate = %d, want %d", sr, sampleRate)
	}
	if len(got) != len(pcm) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(pcm))
	}
	for i := range pcm {
		if math.Abs(got[i]-pcm[i]) > 1e-3 {
			t.Fatalf("sample %d = %v, want ~%v", i, got[i], pcm[i])
		}
	}
}

func TestDecodeRejectsNonWAV(t *testing.T) {
	if _, _, err := Decode([]byte("not a wav file")); err == nil {
		t.Fatalf("Decode accepted non-WAV input")
	}
}
