package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/ziadkadry99/dailybrief/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"chatty", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LogConfig{Level: "info", Format: config.LogJSON}, &buf)

	logger.Debug("hidden")
	logger.Info("brief rendered", "date", "2026-02-02")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["msg"] != "brief rendered" {
		t.Errorf("msg: got %v, want %q", rec["msg"], "brief rendered")
	}
	if rec["date"] != "2026-02-02" {
		t.Errorf("date: got %v, want %q", rec["date"], "2026-02-02")
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LogConfig{Level: "debug", Format: config.LogText}, &buf)

	logger.Debug("fetching brief", "path", "./data/daily_brief.json")

	out := buf.String()
	if !strings.Contains(out, "level=DEBUG") {
		t.Errorf("expected debug level in %q", out)
	}
	if !strings.Contains(out, "path=./data/daily_brief.json") {
		t.Errorf("expected path attribute in %q", out)
	}
}
