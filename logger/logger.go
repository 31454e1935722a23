// Package logger sets up the structured logger shared by the kocha command
// and the interpreter core.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Level     slog.Level
	Format    string // "text" or "json"
	Output    io.Writer
	AddSource bool
	LogFile   string
}

func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelWarn,
		Format: "text",
		Output: os.Stderr,
	}
}

// ParseLevel accepts debug, info, warn or error in any case.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logger: unknown level %q", name)
	}
}

// New builds a logger from cfg. The returned closer releases the log file,
// if one was opened.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("logger: open %s: %w", cfg.LogFile, err)
		}
		output = file
		closer = file
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text", "":
		handler = slog.NewTextHandler(output, opts)
	default:
		closer.Close()
		return nil, nil, fmt.Errorf("logger: unknown format %q", cfg.Format)
	}

	return slog.New(handler), closer, nil
}

// Init installs the logger built from cfg as the slog default.
func Init(cfg Config) (io.Closer, error) {
	log, closer, err := New(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
