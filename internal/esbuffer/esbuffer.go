// Package esbuffer implements the per-stream input reader, refill buffer
// and frame/clock state described in ts_muxer.c's output_stream struct and
// its load_buffer/load_frame/extract_frame_from_buffer functions.
package esbuffer

import (
	"fmt"
	"io"
	"os"

	"github.com/aler9/tsmux/internal/adtsframe"
	"github.com/aler9/tsmux/internal/h264nal"
)

// PID identifies a stream's transport PID.
type PID int

// The only two elementary-stream PIDs this muxer produces.
const (
	VideoPID PID = 256
	AudioPID PID = 257
)

type scanFunc func(buf []byte) (start, end int, found bool)
type pushBackFunc func(buf []byte, start, end int) (int, int)

// Stream is the mutable per-input-file state: the refill buffer, the
// currently extracted frame, the stream's 90kHz clocks and its PES
// bookkeeping.
type Stream struct {
	PID PID
	CC  uint8 // continuity counter for this PID's PES packets, wraps mod 16

	PCR, PTS, DTS  uint64
	FramesRead     int
	PESInitialized bool

	file      *os.File
	remaining int64
	capacity  int

	buf    []byte
	cursor int
	loaded int

	frame     []byte
	frameLen  int
	frameType h264nal.Type // meaningful for video streams only

	scan      scanFunc
	pushBack  pushBackFunc // nil for audio: no start-code pushback needed
	onExtract func(s *Stream)
}

// NewVideoStream opens an H.264 Annex-B file and prepares it for scanning.
// frameClock is 90000/fps, applied to PTS and PCR on every SPS or VCL NAL.
func NewVideoStream(path string, capacity int, initialPCR, initialPTS uint64, frameClock int) (*Stream, error) {
	s, err := newStream(path, capacity, VideoPID, initialPCR, initialPTS)
	if err != nil {
		return nil, err
	}
	s.scan = func(buf []byte) (int, int, bool) { return h264nal.Scan(buf) }
	s.pushBack = h264nal.FrameBounds
	s.onExtract = func(s *Stream) {
		s.frameType = h264nal.Classify(s.frame)
		// Only SPS or VCL NALs advance the clock: IDR is always preceded by
		// SPS in this muxer's input, so the GOP-start frame's presentation
		// time is already accounted for by the time the IDR slice itself
		// is written.
		if s.frameType == h264nal.VCL || s.frameType == h264nal.SPS {
			s.FramesRead++
			s.PTS += uint64(frameClock)
			s.PCR += uint64(frameClock)
		}
	}
	return s, nil
}

// NewAudioStream opens an ADTS AAC file and prepares it for scanning.
func NewAudioStream(path string, capacity int, initialPCR, initialPTS uint64) (*Stream, error) {
	s, err := newStream(path, capacity, AudioPID, initialPCR, initialPTS)
	if err != nil {
		return nil, err
	}
	s.scan = func(buf []byte) (int, int, bool) { return adtsframe.Scan(buf) }
	s.onExtract = func(s *Stream) {
		blocks := adtsframe.RawDataBlocks(s.frame)
		s.PCR += 1920
		s.PTS += 1920 * uint64(blocks)
	}
	return s, nil
}

func newStream(path string, capacity int, pid PID, initialPCR, initialPTS uint64) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("probing size of %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding %s: %w", path, err)
	}

	return &Stream{
		PID:       pid,
		PCR:       initialPCR,
		PTS:       initialPTS,
		DTS:       initialPTS,
		file:      f,
		remaining: size,
		capacity:  capacity,
	}, nil
}

// Close releases the stream's file handle.
func (s *Stream) Close() error {
	return s.file.Close()
}

// ExhaustedInput reports whether there are no more file bytes to read and
// no unscanned bytes left in the refill buffer. A frame already extracted
// and awaiting PES emission does not count: this mirrors the
// vstream_empty/astream_empty checks in ts_muxer.c's scheduler, which look
// only at file_size and loaded_buffer_size.
func (s *Stream) ExhaustedInput() bool {
	return s.remaining == 0 && s.loaded == 0
}

// refill reads up to capacity more bytes from the file into a new buffer,
// replacing the previous one. The still-unscanned bytes of the previous
// buffer are carried over to the front of the new one, so a frame that
// spans a refill is not lost. Invoked when the loaded region is exhausted
// or when the scan finds no complete frame in it.
func (s *Stream) refill() error {
	size := s.capacity
	if int64(size) > s.remaining {
		size = int(s.remaining)
	}

	buf := make([]byte, s.loaded+size)
	copy(buf, s.buf[s.cursor:s.cursor+s.loaded])
	n, err := io.ReadFull(s.file, buf[s.loaded:])
	if err != nil && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("refilling stream: %w", err)
	}

	s.buf = buf[:s.loaded+n]
	s.cursor = 0
	s.loaded += n
	s.remaining -= int64(n)
	return nil
}

// EnsureFrame guarantees a frame is loaded, unless input is exhausted, in
// which case it returns io.EOF. It is a no-op if a frame is already
// present: callers may call it repeatedly to "peek" at the next frame's
// type without re-extracting.
func (s *Stream) EnsureFrame() error {
	if s.frame != nil {
		return nil
	}

	for {
		if s.loaded == 0 {
			if s.remaining == 0 {
				return io.EOF
			}
			if err := s.refill(); err != nil {
				return err
			}
		}

		window := s.buf[s.cursor : s.cursor+s.loaded]
		start, end, found := s.scan(window)
		if found {
			fs, fe := start, end
			if s.pushBack != nil {
				fs, fe = s.pushBack(window, start, end)
			}
			return s.extract(fs, fe)
		}

		if s.remaining == 0 {
			// No more file bytes to refill with: whatever the scanner
			// located is the final, EOF-truncated frame, mirroring
			// ts_muxer.c's unconditional extract_frame_from_buffer call
			// once its retry loop breaks on file_size==0. end is left at 0
			// when the scanner never located even a start, in which case
			// the rest of the window is taken whole.
			fs, fe := start, end
			if fe == 0 {
				fe = len(window)
			} else if s.pushBack != nil {
				fs, fe = s.pushBack(window, start, fe)
			}
			return s.extract(fs, fe)
		}
		if err := s.refill(); err != nil {
			return err
		}
	}
}

func (s *Stream) extract(frameStart, frameEnd int) error {
	length := frameEnd - frameStart
	frame := make([]byte, length)
	copy(frame, s.buf[s.cursor+frameStart:s.cursor+frameEnd])

	s.cursor += frameEnd
	s.loaded -= frameEnd

	s.frame = frame
	s.frameLen = length
	s.onExtract(s)
	return nil
}

// Frame returns the unconsumed tail of the current frame, or nil if none is
// loaded.
func (s *Stream) Frame() []byte { return s.frame }

// FrameLen returns the original length of the current frame, unaffected by
// partial consumption.
func (s *Stream) FrameLen() int { return s.frameLen }

// FrameType returns the cached NAL classification of the current video
// frame. It is meaningless for audio streams.
func (s *Stream) FrameType() h264nal.Type { return s.frameType }

// IsFrameStart reports whether no bytes of the current frame have been
// written to a TS payload yet.
func (s *Stream) IsFrameStart() bool { return len(s.frame) == s.frameLen }

// Consume advances past n bytes of the current frame. Once exhausted, the
// frame is released; for video streams the caller must call EnsureFrame
// again to peek the next NAL so the segmenter/scheduler can inspect its
// type, per spec §4.6.
func (s *Stream) Consume(n int) {
	s.frame = s.frame[n:]
	if len(s.frame) == 0 {
		s.frame = nil
		s.frameLen = 0
	}
}
