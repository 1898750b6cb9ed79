package mpegts

import "github.com/aler9/tsmux/internal/esbuffer"

// PID values the muxer ever writes.
const (
	PATPID uint16 = 0x0000
	PMTPID uint16 = 0x1000
)

// WriteTSHeader writes the 4-byte TS header for a PES packet on pid.
// payloadStart marks the first packet of a new PES; hasAdaptationField
// selects adaptation_field_control = 11 instead of 01.
func WriteTSHeader(p *Packet, pid esbuffer.PID, payloadStart, hasAdaptationField bool, cc uint8) error {
	h := make([]byte, 4)
	h[0] = 0x47
	h[1] = byte((uint16(pid) >> 8) & 0x1f)
	if payloadStart {
		h[1] |= 0x40
	}
	h[2] = byte(pid)

	afc := byte(0x10)
	if hasAdaptationField {
		afc = 0x30
	}
	h[3] = afc | (cc & 0x0f)

	return p.Write(h)
}
