/*
NAME
  receive.go

DESCRIPTION
  receive.go is the receive pipeline: it tries each registered mode in
  turn, synchronizes, demodulates every packet it can find, and reassembles
  the message from whichever packets decode successfully.

LICENSE
  This software is Copyright (C) 2024 the SpectraChirp Authors.
*/

// Package receive implements the multi-mode receive pipeline: mode trial,
// synchronization, demodulation, FEC, and packet reassembly.
package receive

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/saas-erp-hub/SpectraChirp/internal/chirp"
	"github.com/saas-erp-hub/SpectraChirp/internal/demod"
	"github.com/saas-erp-hub/SpectraChirp/internal/logging"
	"github.com/saas-erp-hub/SpectraChirp/internal/mode"
	"github.com/saas-erp-hub/SpectraChirp/internal/packet"
	"github.com/saas-erp-hub/SpectraChirp/internal/sync"
)

// SentinelFailure is returned as the decoded text when no registered mode
// recovers any packet from the signal.
const SentinelFailure = "[Could not detect modem mode or decode message]"

// SymbolsPerPacket returns the number of cfg-sized symbols one
// mode.EncodedPacket-byte codeword occupies.
func SymbolsPerPacket(cfg mode.Config) int {
	bits := mode.EncodedPacket * 8
	return (bits + cfg.BitsPerSymbol - 1) / cfg.BitsPerSymbol
}

// Candidate is one synchronized peak found during a mode trial. DecodeOK
// is false when the FEC codec could not recover a codeword at all (more
// errors than it can correct); Packet and CRCValid are only meaningful
// when DecodeOK is true. Errata is -1 when DecodeOK is false, matching
// the "no correction count available" convention of the pipeline this is
// grounded on.
type Candidate struct {
	FoundAtSample int
	DecodeOK      bool
	Packet        packet.Packet
	Errata        int
	CRCValid      bool
}

// TryMode runs the full pipeline for a single mode against pcm: AGC,
// chirp correlation, peak picking, and per-peak demodulation, FEC and CRC
// checking. It never errors; every peak FindPeaks locates yields exactly
// one Candidate, up to the first peak whose packet would run past the end
// of the signal, where the scan stops, so callers that need a complete diagnostic trail (see
// internal/analyze) can see peaks that failed to decode at all, not just
// the ones that succeeded.
func TryMode(pcm []float64, cfg mode.Config, log *logging.Logger) []Candidate {
	signal := sync.AGC(pcm)
	template := chirp.Template(mode.SampleRate)
	corr := sync.Correlate(signal, template)

	samplesPerPacket := SymbolsPerPacket(cfg) * cfg.SamplesPerSymbol
	minSpacing := len(template) + samplesPerPacket
	peaks := sync.FindPeaks(corr, minSpacing)
	if len(peaks) == 0 {
		log.Debug("no chirp peaks found", "mode", cfg.Name)
		return nil
	}

	var candidates []Candidate
	for _, peakStart := range peaks {
		start := peakStart + len(template)
		end := start + samplesPerPacket
		if end > len(signal) {
			break
		}
		c := Candidate{FoundAtSample: peakStart, Errata: -1}

		codeword, err := demod.Packet(signal[start:end], cfg)
		if err != nil {
			log.Warning("demodulation failed", "mode", cfg.Name, "sample", start, "err", err)
			candidates = append(candidates, c)
			continue
		}
		pkt, errata, err := packet.Unframe(codeword)
		if err != nil && !errors.Is(err, packet.ErrCRCMismatch) {
			log.Warning("fec decode failed", "mode", cfg.Name, "sample", start, "err", err)
			candidates = append(candidates, c)
			continue
		}
		c.DecodeOK = true
		c.Packet = pkt
		c.Errata = errata
		c.CRCValid = err == nil
		candidates = append(candidates, c)
	}
	return candidates
}

// Run tries each mode in mode.TrialOrder(hintedMode), stopping at the
// first mode that yields at least one CRC-valid packet, and reassembles
// the message from the packets it found. It returns SentinelFailure and
// an empty detected mode if no mode recovers anything.
func Run(pcm []float64, hintedMode string, log *logging.Logger) (text string, detectedMode string) {
	for _, name := range mode.TrialOrder(hintedMode) {
		cfg, err := mode.Lookup(name)
		if err != nil {
			continue
		}
		candidates := TryMode(pcm, cfg, log)

		decoded := make(map[int][]byte)
		maxTotal := 0
		for _, c := range candidates {
			if !c.CRCValid {
				continue
			}
			if _, ok := decoded[c.Packet.PacketNum]; !ok {
				decoded[c.Packet.PacketNum] = c.Packet.Payload
			}
			if c.Packet.TotalPackets > maxTotal {
				maxTotal = c.Packet.TotalPackets
			}
		}
		if len(decoded) == 0 || maxTotal == 0 {
			continue
		}

		var buf bytes.Buffer
		for i := 1; i <= maxTotal; i++ {
			buf.Write(bytes.TrimRight(decoded[i], "\x00"))
		}
		log.Info("message decoded", "mode", name, "packets", len(decoded), "total", maxTotal)
		return decodeUTF8Replace(buf.Bytes()), name
	}
	return SentinelFailure, ""
}

// decodeUTF8Replace decodes b as UTF-8, substituting utf8.RuneError (the
// Unicode replacement character) for each invalid byte, matching
// spec.md's "decode the result as UTF-8 with replacement" policy rather
// than silently dropping invalid bytes.
func decodeUTF8Replace(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}
