// Package tsconf loads the muxer's configuration: input file paths and the
// small set of tunables the reference implementation hard-codes as C
// preprocessor constants.
package tsconf

import (
	"fmt"
	"io/ioutil"
	"os"

	"gopkg.in/yaml.v2"
)

// Conf holds every value the writer needs to run. Zero values are not
// valid; use Default() and override from there.
type Conf struct {
	H264File string `yaml:"h264File"`
	ADTSFile string `yaml:"adtsFile"`
	OutDir   string `yaml:"outDir"`

	VideoFPS          int `yaml:"videoFPS"`
	SegmentDurationMS int `yaml:"segmentDurationMS"`
	PATIntervalPkts   int `yaml:"patIntervalPackets"`
	PMTIntervalPkts   int `yaml:"pmtIntervalPackets"`
	BufferCapacity    int `yaml:"bufferCapacityBytes"`

	LogLevel string `yaml:"logLevel"`
	Summary  bool   `yaml:"-"`
}

// Default returns the reference implementation's hard-coded constants
// (VIDEO_FPS, DEFAULT_TS_FILE_DURATION, DEFAULT_PAT_INTERVAL,
// DEFAULT_PMT_INTERVAL, H264_BUFFER_SIZE / ADTS_BUFFER_SIZE) as a starting
// Conf, with input paths read from the environment variables the distilled
// spec names.
func Default() Conf {
	return Conf{
		H264File:          os.Getenv("TSMUX_H264_FILE"),
		ADTSFile:          os.Getenv("TSMUX_ADTS_FILE"),
		OutDir:            ".",
		VideoFPS:          25,
		SegmentDurationMS: 4000,
		PATIntervalPkts:   40,
		PMTIntervalPkts:   40,
		BufferCapacity:    32 * 1024 * 1024,
		LogLevel:          "info",
	}
}

// LoadYAML overlays fields found in the YAML file at path onto c. A missing
// file is not an error: the overlay is optional, mirroring
// internal/conf.loadFromFile's "rtsp-simple-server.yml is optional" rule.
func (c *Conf) LoadYAML(path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil
	}

	byts, err := ioutil.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(byts, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}

	return nil
}

// Validate checks that the configuration is complete enough to start a run.
func (c Conf) Validate() error {
	if c.H264File == "" {
		return fmt.Errorf("no H264 input file: set --h264 or TSMUX_H264_FILE")
	}
	if c.ADTSFile == "" {
		return fmt.Errorf("no ADTS input file: set --adts or TSMUX_ADTS_FILE")
	}
	if c.VideoFPS <= 0 {
		return fmt.Errorf("fps must be positive")
	}
	if c.SegmentDurationMS <= 0 {
		return fmt.Errorf("segment duration must be positive")
	}
	return nil
}

// VideoFrameClock is 90000 / fps, the 90kHz tick added to PTS/PCR on every
// SPS or VCL NAL unit.
func (c Conf) VideoFrameClock() int {
	return 90000 / c.VideoFPS
}

// TargetSegmentFrames is the frame count a segment must reach, on an SPS
// boundary, before it is rotated.
func (c Conf) TargetSegmentFrames() int {
	return c.SegmentDurationMS * c.VideoFPS / 1000
}
