package modem

import (
	"errors"
	"testing"

	"github.com/saas-erp-hub/SpectraChirp/internal/mode"
	"github.com/saas-erp-hub/SpectraChirp/internal/wave"
)

func TestEncodeDecodeRoundTripHelloWorld(t *testing.T) {
	wavBytes, err := EncodeMessage("Hello, World!", "DEFAULT")
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}

	pcm, sampleRate, err := wave.Decode(wavBytes)
	if err != nil {
		t.Fatalf("wave.Decode: %v", err)
	}
	if sampleRate != mode.SampleRate {
		t.Fatalf("sampleRate = %d, want %d", sampleRate, mode.SampleRate)
	}

	text, detected, err := DecodeMessage(pcm, sampleRate, "DEFAULT")
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if detected != "DEFAULT" {
		t.Fatalf("detected mode = %q, want DEFAULT", detected)
	}
	if text != "Hello, World!" {
		t.Fatalf("text = %q, want %q", text, "Hello, World!")
	}
}

func TestEncodeDecodeRoundTripEmptyHintDefaultsToDEFAULT(t *testing.T) {
	wavBytes, err := EncodeMessage("hi", "")
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	pcm, sampleRate, err := wave.Decode(wavBytes)
	if err != nil {
		t.Fatalf("wave.Decode: %v", err)
	}
	text, detected, err := DecodeMessage(pcm, sampleRate, "")
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if detected != "DEFAULT" {
		t.Fatalf("detected mode = %q, want DEFAULT", detected)
	}
	if text != "hi" {
		t.Fatalf("text = %q, want %q", text, "hi")
	}
}

func TestEncodeDecodeRoundTripMultiPacketROBUST(t *testing.T) {
	text := ""
	for len(text) < 90 {
		text += "the quick brown fox jumps over the lazy dog. "
	}

	wavBytes, err := EncodeMessage(text, "ROBUST")
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	pcm, sampleRate, err := wave.Decode(wavBytes)
	if err != nil {
		t.Fatalf("wave.Decode: %v", err)
	}

	got, detected, err := DecodeMessage(pcm, sampleRate, "ROBUST")
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if detected != "ROBUST" {
		t.Fatalf("detected mode = %q, want ROBUST", detected)
	}
	if got != text {
		t.Fatalf("text = %q, want %q", got, text)
	}
}

func TestDecodeMessageRejectsUnsupportedSampleRate(t *testing.T) {
	pcm := make([]float64, 100)
	_, _, err := DecodeMessage(pcm, 8000, "DEFAULT")
	if err == nil {
		t.Fatal("DecodeMessage with sampleRate=8000: want error, got nil")
	}
}

func TestAnalyzeRejectsUnsupportedSampleRate(t *testing.T) {
	pcm := make([]float64, 100)
	_, _, err := Analyze(pcm, 44100)
	if err == nil {
		t.Fatal("Analyze with sampleRate=44100: want error, got nil")
	}
}

func TestAnalyzeReportsPacketsForEncodedMessage(t *testing.T) {
	wavBytes, err := EncodeMessage("diagnostics", "DEFAULT")
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	pcm, sampleRate, err := wave.Decode(wavBytes)
	if err != nil {
		t.Fatalf("wave.Decode: %v", err)
	}

	detected, analyses, err := Analyze(pcm, sampleRate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if detected != "DEFAULT" {
		t.Fatalf("detected mode = %q, want DEFAULT", detected)
	}
	if len(analyses) != 1 {
		t.Fatalf("len(analyses) = %d, want 1", len(analyses))
	}
	a := analyses[0]
	if !a.CRCValid {
		t.Fatal("analyses[0].CRCValid = false, want true")
	}
	if a.PacketNum != 1 || a.TotalPackets != 1 {
		t.Fatalf("PacketNum/TotalPackets = %d/%d, want 1/1", a.PacketNum, a.TotalPackets)
	}
}

func TestEncodeMessageRejectsUnknownModeName(t *testing.T) {
	_, err := EncodeMessage("hello", "BOGUS")
	if err == nil {
		t.Fatal("EncodeMessage with mode=BOGUS: want error, got nil")
	}
	if !errors.Is(err, mode.ErrUnknownMode) {
		t.Fatalf("EncodeMessage with mode=BOGUS: err = %v, want wrapping mode.ErrUnknownMode", err)
	}
}

func TestDecodeMessageReturnsSentinelOnSilence(t *testing.T) {
	pcm := make([]float64, mode.SampleRate*2)
	text, detected, err := DecodeMessage(pcm, mode.SampleRate, "DEFAULT")
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if detected != "" {
		t.Fatalf("detected mode = %q, want empty", detected)
	}
	if text == "" {
		t.Fatal("text = empty, want sentinel failure string")
	}
}
