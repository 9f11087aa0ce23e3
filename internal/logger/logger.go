// Package logger provides a configured zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger for serviceName writing to stdout.
func New(serviceName, level string, pretty bool) zerolog.Logger {
	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(out, serviceName, level)
}

func NewWithWriter(w io.Writer, serviceName, level string) zerolog.Logger {
	return zerolog.New(w).Level(ParseLevel(level)).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}

// ParseLevel falls back to info for empty or unknown levels.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
