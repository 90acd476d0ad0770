// Package logging builds the process logger: JSON records to a size-rotated
// file when a log file is configured, otherwise text records to stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Default rotation settings.
const (
	DefaultMaxSizeMB = 10
	DefaultMaxFiles  = 5
)

// ParseLevel maps debug, info, warn and error (case-insensitive) to a
// slog level. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}

// Options configures New.
type Options struct {
	Level slog.Level
	// File enables JSON logging to a rotated file at this path.
	File      string
	MaxSizeMB int
	MaxFiles  int
	// Fallback receives text records when File is empty.
	Fallback io.Writer
}

// New returns a logger and the closer for its output. The closer is never
// nil.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	if opts.File == "" {
		out := opts.Fallback
		if out == nil {
			out = io.Discard
		}
		return slog.New(slog.NewTextHandler(out, handlerOpts)), nopCloser{}, nil
	}
	w, err := OpenRotatingFile(opts.File, opts.MaxSizeMB, opts.MaxFiles)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewJSONHandler(w, handlerOpts)), w, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
