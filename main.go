package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"code.cloudfoundry.org/bytefmt"
	"github.com/alecthomas/kong"

	"github.com/aler9/tsmux/internal/logger"
	"github.com/aler9/tsmux/internal/muxer"
	"github.com/aler9/tsmux/internal/tsconf"
)

var cli struct {
	H264      string `help:"H.264 Annex-B input file." env:"TSMUX_H264_FILE" name:"h264"`
	ADTS      string `help:"ADTS AAC input file." env:"TSMUX_ADTS_FILE"`
	OutDir    string `help:"Output directory for segments and playlist." default:"."`
	SegmentMS int    `help:"Target segment duration, in milliseconds." default:"4000" name:"segment-ms"`
	FPS       int    `help:"Video frame rate." default:"25"`
	LogLevel  string `help:"Log level: debug, info, warn or error." default:"info" name:"log-level"`
	Summary   bool   `help:"Print per-segment size and frame count when done."`
	Config    string `help:"Optional YAML file overlaying these flags." name:"config"`
}

func main() {
	kong.Parse(&cli, kong.Description("tsmux: a batch H.264/AAC to HLS (MPEG-TS) muxer."))

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tsmux: "+err.Error())
		os.Exit(1)
	}
}

func run() error {
	conf := tsconf.Default()
	if cli.H264 != "" {
		conf.H264File = cli.H264
	}
	if cli.ADTS != "" {
		conf.ADTSFile = cli.ADTS
	}
	conf.OutDir = cli.OutDir
	conf.SegmentDurationMS = cli.SegmentMS
	conf.VideoFPS = cli.FPS
	conf.LogLevel = cli.LogLevel
	conf.Summary = cli.Summary

	if err := conf.LoadYAML(cli.Config); err != nil {
		return err
	}
	if err := conf.Validate(); err != nil {
		return err
	}

	log := logger.New(logger.ParseLevel(conf.LogLevel))

	w, err := muxer.New(conf, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := w.Run(ctx); err != nil {
		return err
	}

	if conf.Summary {
		printSummary(w)
	}
	return nil
}

func printSummary(w *muxer.Writer) {
	for _, seg := range w.Summary() {
		fmt.Printf("%-16s %10s  %5d video frames  %.3fs\n",
			seg.Name, bytefmt.ByteSize(uint64(seg.Bytes)), seg.VideoFrames, seg.Duration)
	}
}
