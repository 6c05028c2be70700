// Package logging builds the application's structured logger. The TUI owns
// the terminal, so records go to a size-rotated file instead of stderr.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/andy/invoicer/internal/config"
)

// New returns a JSON slog logger writing to the configured log file. The
// returned closer releases the file handle. With no file configured the
// logger discards everything.
func New(cfg config.LogConfig) (*slog.Logger, io.Closer) {
	if strings.TrimSpace(cfg.File) == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), nopCloser{}
	}

	w := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}
	return NewWithWriter(w, cfg.Level), w
}

// NewWithWriter returns a JSON slog logger at the given level writing to w
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(h).With("app", "invoicer")
}

// ParseLevel maps a config string to a slog level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
