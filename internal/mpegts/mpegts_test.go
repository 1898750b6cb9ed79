package mpegts

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aler9/tsmux/internal/esbuffer"
	"github.com/aler9/tsmux/internal/h264nal"
)

func TestPacketOverflowIsFatal(t *testing.T) {
	p := NewPacket()
	require.NoError(t, p.Write(make([]byte, 188)))
	err := p.Write([]byte{0x00})
	require.Error(t, err)
}

func TestPacketPadFillsTo188(t *testing.T) {
	p := NewPacket()
	require.NoError(t, p.Write([]byte{0x47, 0x40, 0x00, 0x10}))
	p.Pad()
	b := p.Bytes()
	require.Len(t, b, PacketSize)
	require.Equal(t, byte(0x47), b[0])
	for _, x := range b[4:] {
		require.Equal(t, byte(0xFF), x)
	}
}

func TestWritePATFixedBytesAndCC(t *testing.T) {
	p := NewPacket()
	require.NoError(t, WritePAT(p, 5))
	b := p.Bytes()[:p.Written()]
	require.Equal(t, byte(0x47), b[0])
	require.Equal(t, byte(0x40), b[1])
	require.Equal(t, byte(0x00), b[2])
	require.Equal(t, byte(0x15), b[3]) // 0x10 | 5
	require.Equal(t, 21, len(b))
}

func TestWritePMTFixedBytes(t *testing.T) {
	p := NewPacket()
	require.NoError(t, WritePMT(p, 0))
	b := p.Bytes()[:p.Written()]
	require.Equal(t, byte(0x47), b[0])
	require.Equal(t, byte(0x50), b[1])
	require.Equal(t, byte(0x10), b[3])
	require.Equal(t, 37, len(b))
}

func TestAdaptationFieldPCRPacking(t *testing.T) {
	const pcr uint64 = 0x1FFFFFFFF // max 33-bit value
	p := NewPacket()
	require.NoError(t, WriteAdaptationField(p, 8, true, pcr))
	b := p.Bytes()[:p.Written()]
	require.Equal(t, byte(7), b[0])  // length byte = afSize-1
	require.Equal(t, byte(0x50), b[1])

	got := (uint64(b[2]) << 25) | (uint64(b[3]) << 17) | (uint64(b[4]) << 9) | (uint64(b[5]) << 1) | uint64(b[6]>>7)
	require.Equal(t, pcr, got)
}

func TestAdaptationFieldStuffingOnly(t *testing.T) {
	p := NewPacket()
	require.NoError(t, WriteAdaptationField(p, 4, false, 0))
	b := p.Bytes()[:p.Written()]
	require.Equal(t, byte(3), b[0])
	require.Equal(t, byte(0x00), b[1])
	require.Equal(t, byte(0xFF), b[2])
	require.Equal(t, byte(0xFF), b[3])
}

func TestPESHeaderH264PTSPacking(t *testing.T) {
	const pts uint64 = 126000
	p := NewPacket()
	require.NoError(t, WritePESHeaderH264(p, pts))
	b := p.Bytes()[:p.Written()]
	require.Len(t, b, PESHeaderSizeH264)
	require.Equal(t, byte(0x1B), b[3])
	require.Equal(t, byte(0xC0), b[7])

	gotPTS := unpackTimestamp(b[9:14])
	require.Equal(t, pts, gotPTS)
	gotDTS := unpackTimestamp(b[14:19])
	require.Equal(t, pts, gotDTS)
}

func TestPESHeaderADTSLengthField(t *testing.T) {
	p := NewPacket()
	require.NoError(t, WritePESHeaderADTS(p, 126000, 200))
	b := p.Bytes()[:p.Written()]
	require.Len(t, b, PESHeaderSizeADTS)
	length := uint16(b[4])<<8 | uint16(b[5])
	require.Equal(t, uint16(208), length)
}

// unpackTimestamp reverses the 5-byte marker-bit PTS/DTS packing used by
// both PES header layouts.
func unpackTimestamp(b []byte) uint64 {
	top := uint64(b[0]>>1) & 0x07
	mid := (uint64(b[1])<<7 | uint64(b[2]>>1)) & 0x7FFF
	low := (uint64(b[3])<<7 | uint64(b[4]>>1)) & 0x7FFF
	return top<<30 | mid<<15 | low
}

func TestAdaptationFieldLengthFitsExactPacket(t *testing.T) {
	// A video SPS PES starting fresh, with a tiny frame, must still
	// produce an adaptation field long enough to make the whole packet
	// exactly 188 bytes.
	afLen := AdaptationFieldLength(esbuffer.VideoPID, h264nal.SPS, false, 10)

	total := 4 + afLen + PESHeaderSizeH264 + 10
	require.Equal(t, PacketSize, total)
}

func TestWritePESPayloadPrependsAUDOnFrameStart(t *testing.T) {
	p := NewPacket()
	frame := []byte{0x00, 0x00, 0x00, 0x01, 0x67, 0xAA, 0xBB}
	n, err := WritePESPayload(p, esbuffer.VideoPID, h264nal.SPS, true, frame)
	require.NoError(t, err)
	require.Equal(t, len(frame), n)

	b := p.Bytes()[:p.Written()]
	require.Equal(t, audNAL, b[:len(audNAL)])
	require.Equal(t, frame, b[len(audNAL):])
}

func TestWritePESPayloadNoAUDMidFrame(t *testing.T) {
	p := NewPacket()
	frame := []byte{0xCC, 0xDD}
	n, err := WritePESPayload(p, esbuffer.VideoPID, h264nal.VCL, false, frame)
	require.NoError(t, err)
	require.Equal(t, len(frame), n)
	require.Equal(t, frame, p.Bytes()[:p.Written()])
}
