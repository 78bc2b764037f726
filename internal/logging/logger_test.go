package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/shelfsync/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("hidden")
	logger.Warn("page limit reached", "library", "lib1", "pages", 50)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 record, got %d: %q", len(lines), buf.String())
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if record["level"] != "warn" {
		t.Errorf("level = %v, want warn", record["level"])
	}
	if record["msg"] != "page limit reached" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["library"] != "lib1" {
		t.Errorf("library = %v", record["library"])
	}
	if _, ok := record["ts"]; !ok {
		t.Error("expected ts key")
	}
}

func TestNewConsoleDebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("extracted archive", "files", 3)

	out := buf.String()
	if !strings.Contains(out, "msg=\"extracted archive\"") {
		t.Errorf("missing message: %q", out)
	}
	if !strings.Contains(out, "logger_test.go:") {
		t.Errorf("expected short source in debug output: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromSettingsWritesFile(t *testing.T) {
	s := config.DefaultSettings()
	s.Logging.Format = "json"
	s.Logging.File = filepath.Join(t.TempDir(), "logs", "shelfsync.log")

	logger, err := NewFromSettings(s)
	if err != nil {
		t.Fatalf("NewFromSettings returned error: %v", err)
	}
	logger.Info("batch finished", "success", 2)

	content, err := os.ReadFile(s.Logging.File)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "batch finished") {
		t.Errorf("log file missing record: %q", content)
	}
}
