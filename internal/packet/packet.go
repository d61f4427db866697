/*
NAME
  packet.go

DESCRIPTION
  packet.go frames and unframes the modem's wire packets: a 4-byte header
  (packet_num, total_packets, both big-endian uint16), a fixed-size
  zero-padded payload, a CRC-32 trailer, and Reed-Solomon parity.

LICENSE
  This software is Copyright (C) 2024 the SpectraChirp Authors.
*/

// Package packet assembles and disassembles the modem's wire packets:
// header + payload + CRC, Reed-Solomon encoded for transmission.
package packet

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/saas-erp-hub/SpectraChirp/internal/crcutil"
	"github.com/saas-erp-hub/SpectraChirp/internal/fec"
	"github.com/saas-erp-hub/SpectraChirp/internal/mode"
)

// ErrCRCMismatch is returned by Unframe when the Reed-Solomon-corrected
// packet fails its CRC check.
var ErrCRCMismatch = errors.New("packet: crc mismatch")

// Packet is a single decoded wire packet, prior to reassembly into a
// message. Payload is mode.PayloadSize bytes, zero-padded, when Unframe
// decoded it successfully; internal/receive strips the trailing NUL
// padding from each packet's payload before concatenating them, so
// trailing NUL bytes that were part of a payload are lost as well. NUL
// bytes before a payload's last non-NUL byte are kept. Payload is nil when the header
// fields were recovered but the CRC check failed (see Unframe).
type Packet struct {
	PacketNum    int
	TotalPackets int
	Payload      []byte
}

// Chunk splits text into pieces of at most mode.PayloadSize bytes, in
// transmission order. An empty input yields a single empty chunk, so
// EncodeMessage always has at least one packet to send.
func Chunk(text []byte) [][]byte {
	if len(text) == 0 {
		return [][]byte{{}}
	}
	var chunks [][]byte
	for i := 0; i < len(text); i += mode.PayloadSize {
		end := i + mode.PayloadSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[i:end])
	}
	return chunks
}

// Frame builds the Reed-Solomon-encoded wire packet for chunk number
// packetNum (1-based) of totalPackets, whose payload is the (at most
// mode.PayloadSize-byte) slice payload.
func Frame(packetNum, totalPackets int, payload []byte) ([]byte, error) {
	if len(payload) > mode.PayloadSize {
		return nil, errors.Errorf("packet: payload length %d exceeds %d", len(payload), mode.PayloadSize)
	}
	if packetNum < 0 || packetNum > 0xFFFF || totalPackets < 0 || totalPackets > 0xFFFF {
		return nil, errors.Errorf("packet: packet_num/total_packets %d/%d out of uint16 range", packetNum, totalPackets)
	}

	header := make([]byte, mode.HeaderSize)
	binary.BigEndian.PutUint16(header[0:2], uint16(packetNum))
	binary.BigEndian.PutUint16(header[2:4], uint16(totalPackets))

	padded := make([]byte, mode.PayloadSize)
	copy(padded, payload)

	msg := make([]byte, 0, mode.MessageSize)
	msg = append(msg, header...)
	msg = append(msg, padded...)
	msg = crcutil.Append(msg)

	return fec.Encode(msg), nil
}

// Unframe Reed-Solomon-decodes an mode.EncodedPacket-byte codeword,
// verifies its CRC, and returns the recovered Packet along with the
// number of byte errors the FEC codec corrected. On a CRC mismatch, the
// header fields (PacketNum, TotalPackets) are still returned with
// Payload nil, so a caller like internal/analyze can report which packet
// failed, not just that some packet did; only the header is trusted
// without the CRC, per original_source/backend/modem_mfsk.py's
// parse_packet ("Still return header info if possible, even with bad
// CRC, for analysis").
func Unframe(codeword []byte) (Packet, int, error) {
	if len(codeword) != mode.EncodedPacket {
		return Packet{}, 0, errors.Errorf("packet: codeword length %d, want %d", len(codeword), mode.EncodedPacket)
	}

	msg, errata, err := fec.Decode(codeword)
	if err != nil {
		return Packet{}, 0, errors.Wrap(err, "packet: fec decode")
	}

	header := msg[:mode.HeaderSize]
	pkt := Packet{
		PacketNum:    int(binary.BigEndian.Uint16(header[0:2])),
		TotalPackets: int(binary.BigEndian.Uint16(header[2:4])),
	}

	body := msg[:mode.HeaderSize+mode.PayloadSize]
	crc := msg[mode.HeaderSize+mode.PayloadSize:]
	if !crcutil.Verify(body, crc) {
		return pkt, errata, errors.WithStack(ErrCRCMismatch)
	}

	payload := msg[mode.HeaderSize : mode.HeaderSize+mode.PayloadSize]
	pkt.Payload = append([]byte(nil), payload...)
	return pkt, errata, nil
}
