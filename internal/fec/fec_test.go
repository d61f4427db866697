package fec

import (
	"bytes"
	"testing"
)

func sampleMessage(n int) []byte {
	msg := make([]byte, n)
	for i := range msg {
		msg[i] = byte(i*7 + 3)
	}
	return msg
}

func TestEncodeDecodeNoErrors(t *testing.T) {
	msg := sampleMessage(40)
	cw := Encode(msg)
	if len(cw) != 40+Nsym {
		t.Fatalf("codeword length = %d, want %d", len(cw), 40+Nsym)
	}
	got, errata, err := Decode(cw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if errata != 0 {
		t.Fatalf("errata = %d, want 0", errata)
	}
	if !bytes.Equal(got, msg) {
		t.Fatalf("Decode = %x, want %x", got, msg)
	}
}

func TestDecodeCorrectsUpToCapacity(t *testing.T) {
	msg := sampleMessage(40)
	cw := Encode(msg)

	corrupt := append([]byte(nil), cw...)
	// Flip Nsym/2 = 8 distinct bytes, the maximum this code guarantees.
	positions := []int{0, 5, 12, 20, 27, 33, 40, 54}
	for _, p := range positions {
		corrupt[p] ^= 0xFF
	}

	got, errata, err := Decode(corrupt)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if errata != len(positions) {
		t.Fatalf("errata = %d, want %d", errata, len(positions))
	}
	if !bytes.Equal(got, msg) {
		t.Fatalf("Decode = %x, want %x", got, msg)
	}
}

func TestDecodeReportsUncorrectable(t *testing.T) {
	msg := sampleMessage(40)
	cw := Encode(msg)

	corrupt := append([]byte(nil), cw...)
	positions := []int{0, 4, 9, 13, 18, 22, 29, 35, 44}
	for _, p := range positions {
		corrupt[p] ^= 0xFF
	}

	_, _, err := Decode(corrupt)
	if err == nil {
		t.Fatalf("Decode succeeded with %d errors, want ErrUncorrectable", len(positions))
	}
}

func TestDecodeSingleByteError(t *testing.T) {
	msg := sampleMessage(40)
	cw := Encode(msg)
	cw[10] ^= 0x01

	got, errata, err := Decode(cw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if errata != 1 {
		t.Fatalf("errata = %d, want 1", errata)
	}
	if !bytes.Equal(got, msg) {
		t.Fatalf("Decode = %x, want %x", got, msg)
	}
}
