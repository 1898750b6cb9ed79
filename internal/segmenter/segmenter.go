// Package segmenter owns the rotating output .ts file and the HLS
// playlist that indexes it, the way ts_muxer.c's init_next_ts_file and
// add_segment_to_playlist do. It also keeps a per-segment summary
// (size, frame count) that nothing in the muxing loop consults — it
// exists for the optional --summary CLI flag and for tests.
package segmenter

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	prefix          = "mux"
	playlistName    = "playlist.m3u8"
	targetDuration  = 4
	playlistVersion = 3
)

// SegmentInfo describes one closed segment.
type SegmentInfo struct {
	Name       string
	Bytes      int64
	VideoFrames int
	Duration   float64
}

// Segmenter owns the current segment file and the open playlist file.
type Segmenter struct {
	outDir string
	fps    int

	index      int
	segment    *os.File
	segmentLen int64

	playlist *os.File
	closed   bool

	history []SegmentInfo
}

// New opens segment 0 and the playlist file (truncating any existing
// playlist), writing the fixed playlist header.
func New(outDir string, fps int) (*Segmenter, error) {
	s := &Segmenter{outDir: outDir, fps: fps}

	pl, err := os.Create(filepath.Join(outDir, playlistName))
	if err != nil {
		return nil, fmt.Errorf("creating playlist: %w", err)
	}
	s.playlist = pl

	header := fmt.Sprintf("#EXTM3U\n#EXT-X-VERSION:%d\n#EXT-X-PLAYLIST-TYPE:VOD\n#EXT-X-TARGETDURATION:%d\n",
		playlistVersion, targetDuration)
	if _, err := s.playlist.WriteString(header); err != nil {
		return nil, fmt.Errorf("writing playlist header: %w", err)
	}

	if err := s.openSegment(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Segmenter) segmentName(index int) string {
	return fmt.Sprintf("%s-%d.ts", prefix, index)
}

func (s *Segmenter) openSegment() error {
	name := s.segmentName(s.index)
	f, err := os.Create(filepath.Join(s.outDir, name))
	if err != nil {
		return fmt.Errorf("creating segment %s: %w", name, err)
	}
	s.segment = f
	s.segmentLen = 0
	return nil
}

// Write appends a 188-byte packet to the current segment file.
func (s *Segmenter) Write(packet []byte) error {
	n, err := s.segment.Write(packet)
	s.segmentLen += int64(n)
	if err != nil {
		return fmt.Errorf("writing segment: %w", err)
	}
	return nil
}

// closeCurrentSegment closes the current segment file and appends its
// #EXTINF entry to the playlist, with videoFrames giving the duration.
func (s *Segmenter) closeCurrentSegment(videoFrames int) error {
	name := s.segmentName(s.index)
	size := s.segmentLen

	if err := s.segment.Close(); err != nil {
		return fmt.Errorf("closing segment %s: %w", name, err)
	}

	duration := float64(videoFrames) / float64(s.fps)
	line := fmt.Sprintf("#EXTINF:%.3f\n%s\n", duration, name)
	if _, err := s.playlist.WriteString(line); err != nil {
		return fmt.Errorf("writing playlist entry for %s: %w", name, err)
	}

	s.history = append(s.history, SegmentInfo{
		Name:        name,
		Bytes:       size,
		VideoFrames: videoFrames,
		Duration:    duration,
	})
	return nil
}

// Rotate closes the current segment (recording videoFrames as its
// duration basis), opens the next one and advances the index. Called
// from internal/muxer before emitting a video PES whose SPS frame
// crosses the target-frame-count boundary, per spec §4.8.
func (s *Segmenter) Rotate(videoFrames int) error {
	if err := s.closeCurrentSegment(videoFrames); err != nil {
		return err
	}
	s.index++
	return s.openSegment()
}

// Finish closes the final segment, terminates the playlist with
// #EXT-X-ENDLIST and closes the playlist file. Safe to call at most
// once.
func (s *Segmenter) Finish(videoFrames int) error {
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.closeCurrentSegment(videoFrames); err != nil {
		return err
	}
	if _, err := s.playlist.WriteString("#EXT-X-ENDLIST\n"); err != nil {
		return fmt.Errorf("writing playlist end: %w", err)
	}
	return s.playlist.Close()
}

// Summary returns the recorded info for every segment closed so far.
func (s *Segmenter) Summary() []SegmentInfo {
	return s.history
}
