// Package adtsframe scans a concatenated ADTS byte stream for frame
// boundaries, the way ts_muxer.c's find_adts_header does. Unlike H.264 NAL
// scanning there is no start-code pushback: the ADTS sync word is the first
// byte of the frame.
package adtsframe

// syncAt reports whether buf[i:i+2] is the 0xFF 0xF1 ADTS sync word (12-bit
// sync, MPEG-4, layer 00, protection_absent=1).
func syncAt(buf []byte, i int) bool {
	return i+1 < len(buf) && buf[i] == 0xff && buf[i+1] == 0xf1
}

// Scan looks for the next complete ADTS frame in buf. found is false if no
// complete frame could be located before running out of buffer.
func Scan(buf []byte) (start, end int, found bool) {
	size := len(buf)
	i := 0

	for !syncAt(buf, i) {
		i++
		if i+1 > size {
			return 0, 0, false
		}
	}
	start = i
	i++

	for !syncAt(buf, i) {
		i++
		if i+1 > size {
			return start, size, false
		}
	}
	end = i

	return start, end, true
}

// RawDataBlocks returns the number of AAC raw-data blocks carried in frame,
// from the low two bits of header byte 6, plus one.
func RawDataBlocks(frame []byte) int {
	return int(frame[6]&0x03) + 1
}

// FrameLength returns the ADTS frame_length field (header + payload, 13
// bits spanning bytes 3-5), useful for interop but not required by the
// writer itself (the video/audio PES length fields are computed
// independently).
func FrameLength(frame []byte) int {
	return (int(frame[3]&0x03) << 11) | (int(frame[4]) << 3) | (int(frame[5]&0xe0) >> 5)
}
