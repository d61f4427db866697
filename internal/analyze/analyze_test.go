package analyze

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/saas-erp-hub/SpectraChirp/internal/chirp"
	"github.com/saas-erp-hub/SpectraChirp/internal/mode"
	"github.com/saas-erp-hub/SpectraChirp/internal/modulate"
	"github.com/saas-erp-hub/SpectraChirp/internal/packet"
)

func assemble(t *testing.T, text string, cfg mode.Config) []float64 {
	t.Helper()
	chunks := packet.Chunk([]byte(text))
	template := chirp.Template(mode.SampleRate)
	pause := make([]float64, int(mode.SampleRate*mode.PostPacketPauseSeconds))

	var signal []float64
	for i, chunk := range chunks {
		cw, err := packet.Frame(i+1, len(chunks), chunk)
		if err != nil {
			t.Fatalf("Frame: %v", err)
		}
		sym, err := modulate.Modulate(cw, cfg, rand.New(rand.NewSource(int64(i))))
		if err != nil {
			t.Fatalf("Modulate: %v", err)
		}
		signal = append(signal, template...)
		signal = append(signal, sym...)
		signal = append(signal, pause...)
	}
	return signal
}

func TestRunReportsOneCRCValidPacket(t *testing.T) {
	cfg, err := mode.Lookup("DEFAULT")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	signal := assemble(t, "diagnostics", cfg)

	detected, analyses := Run(signal, nil)
	if detected != "DEFAULT" {
		t.Fatalf("detected = %q, want DEFAULT", detected)
	}

	want := []PacketAnalysis{{
		PacketIndex:       1,
		RSDecodeSuccess:   true,
		RSErrorsCorrected: 0,
		CRCValid:          true,
		PacketNum:         1,
		TotalPackets:      1,
		HeaderDecoded:     true,
	}}
	opts := cmp.Options{cmp.Comparer(func(a, b PacketAnalysis) bool {
		a.FoundAtSeconds, b.FoundAtSeconds = 0, 0
		return a == b
	})}
	if diff := cmp.Diff(want, analyses, opts...); diff != "" {
		t.Fatalf("Run() mismatch (-want +got):\n%s", diff)
	}
}

func TestRunReturnsEmptyOnSilence(t *testing.T) {
	silence := make([]float64, mode.SampleRate)
	detected, analyses := Run(silence, nil)
	if detected != "" || analyses != nil {
		t.Fatalf("Run(silence) = (%q, %v), want (\"\", nil)", detected, analyses)
	}
}

func TestRenderCorrelationTraceProducesPNG(t *testing.T) {
	cfg, err := mode.Lookup("DEFAULT")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	signal := assemble(t, "hi", cfg)

	png, err := RenderCorrelationTrace(signal, cfg)
	if err != nil {
		t.Fatalf("RenderCorrelationTrace: %v", err)
	}
	pngMagic := []byte{0x89, 'P', 'N', 'G'}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Fatalf("RenderCorrelationTrace output does not start with PNG magic bytes")
	}
}
