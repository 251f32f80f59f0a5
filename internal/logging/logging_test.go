package logging

import (
	"bytes"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thenoetrevino/tandem/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, config.LoggingConfig{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatalf("NewHandler failed: %v", err)
	}
	logger := slog.New(h)
	logger.Info("dropped")
	logger.Warn("kept", "task_id", 7)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("Expected JSON record: %v", err)
	}
	if rec["msg"] != "kept" || rec["task_id"] != float64(7) {
		t.Errorf("Unexpected record %v", rec)
	}
}

func TestNewHandler_UnknownFormat(t *testing.T) {
	if _, err := NewHandler(&bytes.Buffer{}, config.LoggingConfig{Format: "xml"}); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestInit_WritesToFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		log.SetOutput(os.Stderr)
	})

	path := filepath.Join(t.TempDir(), "logs", "tandem.log")
	closer, err := Init(config.LoggingConfig{Level: "info", Format: "text", File: path})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	slog.Info("server started", "addr", ":8080")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	if !strings.Contains(string(data), "server started") {
		t.Errorf("Expected log line in file, got %q", data)
	}
}
