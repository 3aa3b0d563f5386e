package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"WARN", slog.LevelWarn},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("level %q: expected %v, got %v", tt.input, tt.expected, got)
		}
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info", "json")

	l.Info("model finished", "model", "random_forest")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if rec["model"] != "random_forest" {
		t.Errorf("expected model random_forest, got %v", rec["model"])
	}
}

func TestNewWithWriterLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn", "text")

	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected info record to be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("expected warn record, got %q", out)
	}
}

func TestForRun(t *testing.T) {
	var buf bytes.Buffer
	l := ForRun(NewWithWriter(&buf, "info", "text"), "abc-123")

	l.Info("started")

	if !strings.Contains(buf.String(), "run_id=abc-123") {
		t.Errorf("expected run_id attribute, got %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	// must not panic
	Discard().Error("dropped")
}
