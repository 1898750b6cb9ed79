// Package mpegts encodes the bit-exact pieces of an MPEG-2 transport
// stream: the 188-byte packet shell, adaptation fields, PES headers and
// the fixed PAT/PMT sections. It mirrors ts_muxer.c's write_to_ts_file,
// write_adaptation_field_section, write_pes_header, write_pat and
// write_pmt, expressed as pure encoders over an accumulator rather than
// functions that fwrite() directly.
package mpegts

import "fmt"

// PacketSize is the fixed MPEG-TS packet length.
const PacketSize = 188

// Packet accumulates the bytes of one TS packet. Every write is bounds
// checked against PacketSize; a write that would overflow is the fatal
// "packet overflow" condition.
type Packet struct {
	buf [PacketSize]byte
	n   int
}

// NewPacket returns an empty packet ready for writes.
func NewPacket() *Packet {
	return &Packet{}
}

// Write appends b to the packet. It fails if doing so would exceed 188
// bytes.
func (p *Packet) Write(b []byte) error {
	if p.n+len(b) > PacketSize {
		return fmt.Errorf("ts packet overflow: %d existing + %d new > %d", p.n, len(b), PacketSize)
	}
	copy(p.buf[p.n:], b)
	p.n += len(b)
	return nil
}

// Written returns the number of bytes written so far.
func (p *Packet) Written() int {
	return p.n
}

// Pad fills the remainder of the packet with 0xFF stuffing bytes, making
// it exactly 188 bytes long. Calling Pad before the packet is fully
// assembled is a caller error; Bytes will simply return the padded
// result including any bytes that should have come after the padding.
func (p *Packet) Pad() {
	for i := p.n; i < PacketSize; i++ {
		p.buf[i] = 0xFF
	}
	p.n = PacketSize
}

// Bytes returns the full 188-byte packet. Callers should Pad first.
func (p *Packet) Bytes() []byte {
	return p.buf[:]
}
