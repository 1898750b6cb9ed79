// Package muxer ties the scheduler, the elementary-stream buffers, the
// packet encoders and the segmenter together into the single
// synchronous loop described in ts_muxer.c's run_writer.
package muxer

import (
	"context"
	"fmt"

	"github.com/aler9/tsmux/internal/esbuffer"
	"github.com/aler9/tsmux/internal/h264nal"
	"github.com/aler9/tsmux/internal/logger"
	"github.com/aler9/tsmux/internal/mpegts"
	"github.com/aler9/tsmux/internal/scheduler"
	"github.com/aler9/tsmux/internal/segmenter"
	"github.com/aler9/tsmux/internal/tsconf"
)

// Initial clock values, reproduced verbatim from spec §6.
const (
	initialPCR = 63000
	initialPTS = 126000
)

// Writer drives the mux loop: it owns both elementary-stream buffers,
// the rotating segment/playlist writer and the PAT/PMT continuity
// counters.
type Writer struct {
	conf tsconf.Conf
	log  *logger.Logger

	video *esbuffer.Stream
	audio *esbuffer.Stream
	seg   *segmenter.Segmenter

	currPacketIdx int
	lastPATIdx    int
	lastPMTIdx    int
	patCC         uint8
	pmtCC         uint8
}

// New opens both input files and the initial segment/playlist, ready
// for Run.
func New(conf tsconf.Conf, log *logger.Logger) (*Writer, error) {
	video, err := esbuffer.NewVideoStream(conf.H264File, conf.BufferCapacity, initialPCR, initialPTS, conf.VideoFrameClock())
	if err != nil {
		return nil, fmt.Errorf("opening video input: %w", err)
	}

	audio, err := esbuffer.NewAudioStream(conf.ADTSFile, conf.BufferCapacity, initialPCR, initialPTS)
	if err != nil {
		video.Close()
		return nil, fmt.Errorf("opening audio input: %w", err)
	}

	seg, err := segmenter.New(conf.OutDir, conf.VideoFPS)
	if err != nil {
		video.Close()
		audio.Close()
		return nil, fmt.Errorf("opening segmenter: %w", err)
	}

	return &Writer{
		conf:       conf,
		log:        log,
		video:      video,
		audio:      audio,
		seg:        seg,
		lastPATIdx: -conf.PATIntervalPkts,
		lastPMTIdx: -conf.PMTIntervalPkts,
	}, nil
}

// Summary returns the per-segment record kept by the segmenter.
func (w *Writer) Summary() []segmenter.SegmentInfo {
	return w.seg.Summary()
}

// Run executes the mux loop until both inputs are exhausted or ctx is
// canceled. It closes both input files before returning.
func (w *Writer) Run(ctx context.Context) error {
	defer w.video.Close()
	defer w.audio.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		pt := scheduler.Next(w.currPacketIdx, w.lastPATIdx, w.lastPMTIdx,
			w.conf.PATIntervalPkts, w.conf.PMTIntervalPkts, w.video, w.audio)
		if pt == scheduler.End {
			break
		}

		if pt == scheduler.VideoPES {
			rotated, err := w.maybeRotate()
			if err != nil {
				return err
			}
			if rotated {
				continue
			}
		}

		if err := w.writePacket(pt); err != nil {
			return err
		}
		w.currPacketIdx++
	}

	if err := w.seg.Finish(w.video.FramesRead); err != nil {
		return fmt.Errorf("finishing output: %w", err)
	}
	w.log.Info("mux complete: %d packets, %d segments", w.currPacketIdx, len(w.seg.Summary()))
	return nil
}

// maybeRotate rotates the segment when the pending video frame is an
// SPS that has crossed the target frame count, per spec §4.8. Rotation
// happens before this iteration's packet is assembled, so the new
// segment's first three packets are PAT, PMT, then this same SPS video
// PES on the next loop turn (the reset last_pat_idx/last_pmt_idx make
// both immediately due).
func (w *Writer) maybeRotate() (bool, error) {
	if err := w.video.EnsureFrame(); err != nil {
		return false, nil
	}
	if w.video.FrameType() != h264nal.SPS || w.video.FramesRead < w.conf.TargetSegmentFrames() {
		return false, nil
	}

	if err := w.seg.Rotate(w.video.FramesRead); err != nil {
		return false, fmt.Errorf("rotating segment: %w", err)
	}
	w.lastPATIdx = -w.conf.PATIntervalPkts
	w.lastPMTIdx = -w.conf.PMTIntervalPkts
	w.video.FramesRead = 0
	w.audio.FramesRead = 0
	return true, nil
}

func (w *Writer) writePacket(pt scheduler.PacketType) error {
	p := mpegts.NewPacket()
	var err error

	switch pt {
	case scheduler.PAT:
		err = mpegts.WritePAT(p, w.patCC)
		w.patCC = (w.patCC + 1) % 16
		w.lastPATIdx = w.currPacketIdx
	case scheduler.PMT:
		err = mpegts.WritePMT(p, w.pmtCC)
		w.pmtCC = (w.pmtCC + 1) % 16
		w.lastPMTIdx = w.currPacketIdx
	case scheduler.VideoPES:
		err = w.writePES(p, w.video)
	case scheduler.AudioPES:
		err = w.writePES(p, w.audio)
	}
	if err != nil {
		return err
	}

	p.Pad()
	return w.seg.Write(p.Bytes())
}

func (w *Writer) writePES(p *mpegts.Packet, s *esbuffer.Stream) error {
	if err := s.EnsureFrame(); err != nil {
		return fmt.Errorf("reading frame for PID %d: %w", s.PID, err)
	}

	isStart := s.IsFrameStart()
	hasPCR := mpegts.HasPCR(s.PID, s.FrameType())
	afLen := mpegts.AdaptationFieldLength(s.PID, s.FrameType(), s.PESInitialized, len(s.Frame()))

	if err := mpegts.WriteTSHeader(p, s.PID, !s.PESInitialized, afLen > 0, s.CC); err != nil {
		return err
	}
	s.CC = (s.CC + 1) % 16

	if err := mpegts.WriteAdaptationField(p, afLen, hasPCR, s.PCR); err != nil {
		return err
	}

	if !s.PESInitialized {
		var err error
		if s.PID == esbuffer.VideoPID {
			err = mpegts.WritePESHeaderH264(p, s.PTS)
		} else {
			err = mpegts.WritePESHeaderADTS(p, s.PTS, s.FrameLen())
		}
		if err != nil {
			return err
		}
		s.PESInitialized = true
	}

	n, err := mpegts.WritePESPayload(p, s.PID, s.FrameType(), isStart, s.Frame())
	if err != nil {
		return err
	}
	s.Consume(n)

	if s.Frame() == nil {
		if s.PID == esbuffer.VideoPID {
			if peekErr := s.EnsureFrame(); peekErr == nil {
				if s.FrameType() == h264nal.VCL || s.FrameType() == h264nal.SPS {
					s.PESInitialized = false
				}
			}
		} else {
			s.PESInitialized = false
		}
	}

	return nil
}
