package mpegts

import (
	"github.com/aler9/tsmux/internal/esbuffer"
	"github.com/aler9/tsmux/internal/h264nal"
)

// audNAL is the access-unit delimiter prepended to the first payload
// chunk of a video VCL or SPS frame, per spec §4.6.
var audNAL = []byte{0x00, 0x00, 0x00, 0x01, 0x09, 0xF0}

// WritePESPayload writes min(remaining packet space, remaining frame
// bytes) bytes of frame into p. If this is the first payload chunk of a
// video VCL or SPS frame, the AUD delimiter is written first and the
// available space recomputed. It returns how many bytes of frame were
// consumed.
func WritePESPayload(p *Packet, pid esbuffer.PID, frameType h264nal.Type, isFrameStart bool, frame []byte) (int, error) {
	if pid == esbuffer.VideoPID && isFrameStart && (frameType == h264nal.VCL || frameType == h264nal.SPS) {
		if err := p.Write(audNAL); err != nil {
			return 0, err
		}
	}

	n := PacketSize - p.Written()
	if len(frame) < n {
		n = len(frame)
	}
	if err := p.Write(frame[:n]); err != nil {
		return 0, err
	}
	return n, nil
}
