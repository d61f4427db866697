/*
NAME
  analyze.go

DESCRIPTION
  analyze.go is the diagnostic counterpart to internal/receive: instead of
  reassembling a message, it reports one PacketAnalysis per chirp peak
  found under the first mode that yields any CRC-valid packet.

LICENSE
  This software is Copyright (C) 2024 the SpectraChirp Authors.
*/

// Package analyze produces a per-packet diagnostic report of a received
// signal, for callers debugging synchronization or FEC behavior rather
// than just wanting the decoded text.
package analyze

import (
	"bytes"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/saas-erp-hub/SpectraChirp/internal/chirp"
	"github.com/saas-erp-hub/SpectraChirp/internal/logging"
	"github.com/saas-erp-hub/SpectraChirp/internal/mode"
	"github.com/saas-erp-hub/SpectraChirp/internal/receive"
	"github.com/saas-erp-hub/SpectraChirp/internal/sync"
)

// PacketAnalysis is the diagnostic record for a single synchronized
// packet: where it was found, whether FEC and CRC succeeded, and the
// header fields it decoded (when decoding got that far).
type PacketAnalysis struct {
	PacketIndex        int // 1-based order within this mode's peak list.
	FoundAtSeconds     float64
	RSDecodeSuccess    bool
	RSErrorsCorrected  int
	CRCValid           bool
	PacketNum          int
	TotalPackets       int
	HeaderDecoded      bool // False when FEC failed before the header could be read.
}

// Run analyzes pcm under each registered mode in turn, returning the name
// of and per-peak PacketAnalysis for the first mode with at least one
// CRC-valid packet. If no mode produces one, it returns ("", nil).
func Run(pcm []float64, log *logging.Logger) (detectedMode string, analyses []PacketAnalysis) {
	for _, name := range mode.Names() {
		cfg, err := mode.Lookup(name)
		if err != nil {
			continue
		}
		candidates := receive.TryMode(pcm, cfg, log)
		if len(candidates) == 0 {
			continue
		}

		results := make([]PacketAnalysis, len(candidates))
		anyValid := false
		for i, c := range candidates {
			errata := c.Errata
			if !c.DecodeOK {
				errata = 0
			}
			results[i] = PacketAnalysis{
				PacketIndex:       i + 1,
				FoundAtSeconds:    float64(c.FoundAtSample) / mode.SampleRate,
				RSDecodeSuccess:   c.DecodeOK,
				RSErrorsCorrected: errata,
				CRCValid:          c.CRCValid,
				PacketNum:         c.Packet.PacketNum,
				TotalPackets:      c.Packet.TotalPackets,
				HeaderDecoded:     c.DecodeOK,
			}
			if c.CRCValid {
				anyValid = true
			}
		}
		if anyValid {
			return name, results
		}
	}
	return "", nil
}

// RenderCorrelationTrace renders the chirp-correlation curve for pcm under
// cfg as a PNG, with a marker at each sample FindPeaks accepted, for a
// caller debugging why synchronization did or didn't find a packet.
func RenderCorrelationTrace(pcm []float64, cfg mode.Config) ([]byte, error) {
	signal := sync.AGC(pcm)
	template := chirp.Template(mode.SampleRate)
	corr := sync.Correlate(signal, template)

	samplesPerPacket := receive.SymbolsPerPacket(cfg) * cfg.SamplesPerSymbol
	minSpacing := len(template) + samplesPerPacket
	peaks := sync.FindPeaks(corr, minSpacing)

	p := plot.New()
	p.Title.Text = "chirp correlation: " + cfg.Name
	p.X.Label.Text = "sample"
	p.Y.Label.Text = "correlation"

	curve := make(plotter.XYs, len(corr))
	for i, v := range corr {
		curve[i].X = float64(i)
		curve[i].Y = v
	}
	line, err := plotter.NewLine(curve)
	if err != nil {
		return nil, errors.Wrap(err, "analyze: build correlation line")
	}
	p.Add(line)

	if len(peaks) > 0 {
		markers := make(plotter.XYs, len(peaks))
		for i, idx := range peaks {
			markers[i].X = float64(idx)
			markers[i].Y = corr[idx]
		}
		scatter, err := plotter.NewScatter(markers)
		if err != nil {
			return nil, errors.Wrap(err, "analyze: build peak markers")
		}
		p.Add(scatter)
	}

	writerTo, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return nil, errors.Wrap(err, "analyze: render plot")
	}
	var buf bytes.Buffer
	if _, err := writerTo.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "analyze: write plot")
	}
	return buf.Bytes(), nil
}
