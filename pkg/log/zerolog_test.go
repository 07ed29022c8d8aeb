package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestConsoleLogger_WritesLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, "info")

	logger.Info("sales.csv has been downloaded.", Feed("sales"), Int("rows", 3))
	logger.Debug("hidden")
	logger.Error("Error processing sales", Err(errors.New("boom")))

	out := buf.String()
	if !strings.Contains(out, "sales.csv has been downloaded.") {
		t.Errorf("output missing info line: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at info level: %q", out)
	}
	if !strings.Contains(out, "boom") {
		t.Errorf("output missing error value: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour codes written to non-terminal: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if ValidLevel("bogus") {
		t.Error("ValidLevel(bogus) = true")
	}
}

func TestFieldHelpers(t *testing.T) {
	tests := []struct {
		field Field
		key   string
		value any
	}{
		{String("mode", "manual"), "mode", "manual"},
		{Int("rows", 3), "rows", 3},
		{Bool("strict", true), "strict", true},
		{Duration("poll", time.Second), "poll", time.Second},
		{Any("panic", "boom"), "panic", "boom"},
		{Feed("sales"), "feed", "sales"},
		{Path("/tmp/sales.csv"), "path", "/tmp/sales.csv"},
		{RunID("r1"), "run_id", "r1"},
	}
	for _, tt := range tests {
		if tt.field.Key != tt.key || tt.field.Value != tt.value {
			t.Errorf("field = %+v, want %s=%v", tt.field, tt.key, tt.value)
		}
	}
}
