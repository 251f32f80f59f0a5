package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/thenoetrevino/tandem/internal/config"
)

// Logger is the global slog instance for the application
var Logger *slog.Logger

// Init initializes the logging system from cfg. Logs go to cfg.File when
// set, otherwise to stderr. The returned closer releases the file.
func Init(cfg config.LoggingConfig) (io.Closer, error) {
	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, err
		}
		// Open log file in append mode
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		out, closer = file, file
	}

	handler, err := NewHandler(out, cfg)
	if err != nil {
		return nil, err
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	// Redirect standard log package output to the same destination
	log.SetOutput(out)
	log.SetFlags(log.LstdFlags)

	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewHandler builds a text or JSON handler at the configured level
func NewHandler(w io.Writer, cfg config.LoggingConfig) (slog.Handler, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.NewTextHandler(w, opts), nil
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	}
	return nil, fmt.Errorf("unknown log format %q", cfg.Format)
}

// ParseLevel maps a config level name onto slog's levels
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Discard returns a logger that drops everything; used by tests and --quiet
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
