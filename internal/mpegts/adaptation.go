package mpegts

import (
	"github.com/aler9/tsmux/internal/esbuffer"
	"github.com/aler9/tsmux/internal/h264nal"
)

// PESHeaderSizeH264 and PESHeaderSizeADTS are the fixed sizes of the two
// PES header layouts this muxer ever writes.
const (
	PESHeaderSizeH264 = 19
	PESHeaderSizeADTS = 14

	// audNALSize is the length of the AUD delimiter prepended to the
	// first payload chunk of a video VCL or SPS frame.
	audNALSize = 6
)

// HasPCR reports whether a packet on pid carrying a video frame of
// frameType should carry a PCR: only the SPS NAL of the video stream
// ever does.
func HasPCR(pid esbuffer.PID, frameType h264nal.Type) bool {
	return pid == esbuffer.VideoPID && frameType == h264nal.SPS
}

// AdaptationFieldLength computes the adaptation-field length (including
// its own length byte) required for the next PES packet on a stream, per
// spec §4.4. remainingFrameBytes is the number of unconsumed bytes left
// in the current frame.
func AdaptationFieldLength(pid esbuffer.PID, frameType h264nal.Type, pesInitialized bool, remainingFrameBytes int) int {
	afSize := 0
	hasPCR := HasPCR(pid, frameType)
	if hasPCR {
		afSize += 8
	}

	pesHeaderSize := PESHeaderSizeADTS
	if pid == esbuffer.VideoPID {
		pesHeaderSize = PESHeaderSizeH264
	}

	pktSize := 4 + afSize
	if hasPCR || !pesInitialized {
		pktSize += pesHeaderSize
	}
	if pid == esbuffer.VideoPID && frameType == h264nal.VCL {
		pktSize += audNALSize
	}

	if PacketSize > pktSize+remainingFrameBytes {
		afSize += PacketSize - remainingFrameBytes - pktSize
	}
	return afSize
}

// WriteAdaptationField encodes an adaptation field of afSize bytes
// (afSize==0 writes nothing: the packet carries payload only). When
// hasPCR is set, the 6-byte PCR field is packed with a 33-bit 90kHz base
// in bits 47..15, 6 reserved bits set to 1, and a 9-bit extension of 0.
func WriteAdaptationField(p *Packet, afSize int, hasPCR bool, pcr uint64) error {
	if afSize == 0 {
		return nil
	}

	field := make([]byte, afSize)
	field[0] = byte(afSize - 1)
	if afSize == 1 {
		return p.Write(field)
	}

	field[1] = 0x00
	used := 1
	if hasPCR {
		field[1] |= 0x50
		field[2] = byte(pcr >> 25)
		field[3] = byte(pcr >> 17)
		field[4] = byte(pcr >> 9)
		field[5] = byte(pcr >> 1)
		field[6] = byte((pcr&1)<<7) | 0x7e
		field[7] = 0x00
		used = 7
	}

	for i := used + 1; i < afSize; i++ {
		field[i] = 0xFF
	}
	return p.Write(field)
}
