package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/phuslu/log"

	"github.com/wflogger/wflogger/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"trace", log.TraceLevel},
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"", log.WarnLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	logger.Debug().Msg("hidden")
	logger.Info().Str("path", "a.log").Int("entries", 5).Msg("ingested")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["message"] != "ingested" || rec["path"] != "a.log" || rec["entries"] != float64(5) {
		t.Errorf("record = %v", rec)
	}
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Level: "warn", Format: "console"}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("path", "b.log").Msg("skipped")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warn level: %q", out)
	}
	if !strings.Contains(out, "skipped") || !strings.Contains(out, "b.log") {
		t.Errorf("output = %q", out)
	}
}

func TestDiscard(t *testing.T) {
	// Must not panic or write anywhere.
	Discard().Error().Str("k", "v").Msg("dropped")
}
