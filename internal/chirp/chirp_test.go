package chirp

import (
	"math"
	"testing"

	"github.com/saas-erp-hub/SpectraChirp/internal/mode"
)

func TestTemplateLength(t *testing.T) {
	sig := Template(mode.SampleRate)
	want := int(mode.ChirpDuration * mode.SampleRate)
	if len(sig) != want {
		t.Fatalf("len(Template) = %d, want %d", len(sig), want)
	}
}

func TestTemplateIsMemoized(t *testing.T) {
	a := Template(mode.SampleRate)
	b := Template(mode.SampleRate)
	if len(a) == 0 || &a[0] != &b[0] {
		t.Fatalf("Template did not return the same cached slice backing array")
	}
}

func TestTemplateStartsAtZeroPhase(t *testing.T) {
	sig := Template(mode.SampleRate)
	if math.Abs(sig[0]) > 1e-9 {
		t.Fatalf("chirp should start at sin(0)=0, got %v", sig[0])
	}
}
