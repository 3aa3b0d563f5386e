package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a logger writing to stderr so that tables and CSV piped from
// stdout stay clean.
func New(level string, format string) *slog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

func NewWithWriter(w io.Writer, level string, format string) *slog.Logger {
	lvl := parseLevel(level)

	opts := &slog.HandlerOptions{
		Level: lvl,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ForRun tags every record with the benchmark run id.
func ForRun(l *slog.Logger, runID string) *slog.Logger {
	return l.With("run_id", runID)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
