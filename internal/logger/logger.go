// Package logger provides the leveled console logger used throughout the
// muxer. It is intentionally small: one writer, one format, no sinks.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
)

// Level is a logging severity.
type Level int

// Levels, lowest to highest severity.
const (
	Debug Level = iota
	Info
	Warn
	Error
)

// String returns the level name used in the log prefix.
func (l Level) String() string {
	switch l {
	case Debug:
		return "DEB"
	case Info:
		return "INF"
	case Warn:
		return "WRN"
	case Error:
		return "ERR"
	default:
		return "???"
	}
}

func (l Level) colorize(s string) string {
	switch l {
	case Debug:
		return color.Gray.Sprint(s)
	case Info:
		return color.Cyan.Sprint(s)
	case Warn:
		return color.Yellow.Sprint(s)
	case Error:
		return color.Red.Sprint(s)
	default:
		return s
	}
}

// Logger writes leveled, timestamped lines to an io.Writer.
type Logger struct {
	out      io.Writer
	minLevel Level
	runID    string
}

// New allocates a Logger. minLevel filters out any Log call below it.
func New(minLevel Level) *Logger {
	return &Logger{
		out:      os.Stdout,
		minLevel: minLevel,
		runID:    uuid.New().String()[:8],
	}
}

// Log writes a line if level is at or above the logger's minimum level.
func (lg *Logger) Log(level Level, format string, args ...interface{}) {
	if level < lg.minLevel {
		return
	}

	prefix := fmt.Sprintf("%s [%s] (%s) ", time.Now().Format("15:04:05.000"), level, lg.runID)
	fmt.Fprintln(lg.out, level.colorize(prefix)+fmt.Sprintf(format, args...))
}

// Debug logs at Debug level.
func (lg *Logger) Debug(format string, args ...interface{}) { lg.Log(Debug, format, args...) }

// Info logs at Info level.
func (lg *Logger) Info(format string, args ...interface{}) { lg.Log(Info, format, args...) }

// Warn logs at Warn level.
func (lg *Logger) Warn(format string, args ...interface{}) { lg.Log(Warn, format, args...) }

// Error logs at Error level.
func (lg *Logger) Error(format string, args ...interface{}) { lg.Log(Error, format, args...) }

// ParseLevel parses a level name from a CLI flag. Unrecognized values fall
// back to Info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return Debug
	case "warn":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}
