package adtsframe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func adtsHeader(rawDataBlocksMinusOne byte) []byte {
	h := make([]byte, 7)
	h[0] = 0xFF
	h[1] = 0xF1
	h[6] = rawDataBlocksMinusOne & 0x03
	return h
}

func TestScanFindsTwoAdjacentFrames(t *testing.T) {
	first := adtsHeader(0)
	first = append(first, 0x11, 0x22, 0x33)
	second := adtsHeader(0)
	second = append(second, 0x44, 0x55)

	buf := append(append([]byte{}, first...), second...)

	start, end, found := Scan(buf)
	require.True(t, found)
	require.Equal(t, 0, start)
	require.Equal(t, len(first), end)
	require.Equal(t, first, buf[start:end])
}

func TestScanNoSecondSync(t *testing.T) {
	buf := adtsHeader(0)
	buf = append(buf, 0x11, 0x22)

	start, end, found := Scan(buf)
	require.False(t, found)
	require.Equal(t, 0, start)
	require.Equal(t, len(buf), end, "truncated-end bounds must span to len(buf), for EnsureFrame's EOF extraction")
}

func TestRawDataBlocks(t *testing.T) {
	for _, ca := range []struct {
		bits byte
		want int
	}{
		{0b00, 1},
		{0b01, 2},
		{0b10, 3},
		{0b11, 4},
	} {
		frame := adtsHeader(ca.bits)
		require.Equal(t, ca.want, RawDataBlocks(frame))
	}
}

func TestFrameLength(t *testing.T) {
	h := make([]byte, 7)
	h[0], h[1] = 0xFF, 0xF1
	// frame_length = 500 = 0b0_0111_1101_00, split across bytes 3-5.
	const length = 500
	h[3] = byte((length >> 11) & 0x03)
	h[4] = byte((length >> 3) & 0xFF)
	h[5] = byte((length << 5) & 0xE0)

	require.Equal(t, length, FrameLength(h))
}
