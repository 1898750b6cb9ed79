// Package scheduler decides, for each 188-byte packet slot, which logical
// packet the writer should emit next. It is a direct translation of
// ts_muxer.c's packet_type_to_write.
package scheduler

import "github.com/aler9/tsmux/internal/esbuffer"

// PacketType is the kind of packet to emit next.
type PacketType int

// The five packet types the writer can produce. End is the loop
// termination signal, not a sentinel "unknown" value.
const (
	PAT PacketType = iota
	PMT
	VideoPES
	AudioPES
	End
)

func (t PacketType) String() string {
	switch t {
	case PAT:
		return "PAT"
	case PMT:
		return "PMT"
	case VideoPES:
		return "VideoPES"
	case AudioPES:
		return "AudioPES"
	default:
		return "End"
	}
}

// Next applies the priority ladder from spec §4.3:
//  1. PAT if due.
//  2. else PMT if due.
//  3. else video PES, if video has bytes and audio's PTS is strictly ahead
//     of video's and audio has no in-progress frame.
//  4. else audio PES, if audio has bytes.
//  5. else End.
func Next(
	currPacketIdx, lastPATIdx, lastPMTIdx, patInterval, pmtInterval int,
	video, audio *esbuffer.Stream,
) PacketType {
	if currPacketIdx-lastPATIdx >= patInterval {
		return PAT
	}
	if currPacketIdx-lastPMTIdx >= pmtInterval {
		return PMT
	}

	videoEmpty := video.ExhaustedInput()
	audioEmpty := audio.ExhaustedInput()

	if !videoEmpty && audio.PTS > video.PTS && audio.Frame() == nil {
		return VideoPES
	}
	if !audioEmpty {
		return AudioPES
	}
	return End
}
