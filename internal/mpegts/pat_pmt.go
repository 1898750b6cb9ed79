package mpegts

// PAT and PMT are emitted as fixed byte blobs (spec §4.7): only the
// continuity counter nibble of the TS header varies. The section
// contents declare exactly one program (PMT on PID 0x1000) and exactly
// two elementary streams (H.264 on 256, AAC-ADTS on 257); only the AAC
// stream carries the "und" language descriptor.
var (
	patHeader = []byte{0x47, 0x40, 0x00, 0x10}
	patData   = []byte{0x00, 0x00, 0xB0, 0x0D, 0x00, 0x01, 0xC1, 0x00, 0x00, 0x00, 0x01, 0xF0, 0x00}
	patCRC    = []byte{0x2A, 0xB1, 0x04, 0xB2}

	pmtHeader = []byte{0x47, 0x50, 0x00, 0x10}
	pmtData   = []byte{
		0x00, 0x02, 0xB0, 0x1D, 0x00, 0x01, 0xC1, 0x00, 0x00, 0xE1,
		0x00, 0xF0, 0x00, 0x1B, 0xE1, 0x00, 0xF0, 0x00, 0x0F, 0xE1,
		0x01, 0xF0, 0x06, 0x0A, 0x04, 0x75, 0x6E, 0x64, 0x00,
	}
	pmtCRC = []byte{0x08, 0x7D, 0xE8, 0x77}
)

// WritePAT writes the fixed PAT section with cc patched into the TS
// header's continuity-counter nibble.
func WritePAT(p *Packet, cc uint8) error {
	h := append([]byte(nil), patHeader...)
	h[3] |= cc & 0x0f
	if err := p.Write(h); err != nil {
		return err
	}
	if err := p.Write(patData); err != nil {
		return err
	}
	return p.Write(patCRC)
}

// WritePMT writes the fixed PMT section with cc patched into the TS
// header's continuity-counter nibble.
func WritePMT(p *Packet, cc uint8) error {
	h := append([]byte(nil), pmtHeader...)
	h[3] |= cc & 0x0f
	if err := p.Write(h); err != nil {
		return err
	}
	if err := p.Write(pmtData); err != nil {
		return err
	}
	return p.Write(pmtCRC)
}
