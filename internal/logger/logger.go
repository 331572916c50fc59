// Package logger configures the process-wide slog logger. Records go to a
// size-rotated log file under ~/.conduit/logs and, when verbose output is
// requested, to stderr as well.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation settings.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 7
)

// Config describes where and how log records are written.
type Config struct {
	Level     slog.Level
	Format    string // "text" or "json"
	File      string // rotated log file; empty disables file output
	Verbose   bool   // also write to Stderr
	Stderr    io.Writer
	AddSource bool
}

// DefaultConfig returns an info-level text logger writing nowhere but a file
// chosen by the caller.
func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelInfo,
		Format: "text",
		Stderr: os.Stderr,
	}
}

// ParseLevel maps a config string to a slog level. Unknown values yield info.
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

// Init installs the configured logger as the slog default. The returned
// closer flushes and closes the rotated file, if any.
func Init(cfg Config) io.Closer {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		_ = os.MkdirAll(filepath.Dir(cfg.File), 0o750)
		rotated := &lj.Logger{
			Filename:   cfg.File,
			MaxSize:    DefaultMaxSizeMB,
			MaxBackups: DefaultMaxBackups,
			MaxAge:     DefaultMaxAgeDays,
		}
		writers = append(writers, rotated)
		closer = rotated
	}
	if cfg.Verbose {
		stderr := cfg.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		writers = append(writers, stderr)
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	slog.SetDefault(slog.New(NewHandler(out, cfg)))
	return closer
}

// NewHandler builds the slog handler for cfg writing to w.
func NewHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}
	if cfg.Format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ForComponent returns the default logger tagged with a component name.
func ForComponent(component string) *slog.Logger {
	return slog.Default().With("component", component)
}

// With returns the default logger with the given attributes.
func With(args ...any) *slog.Logger {
	return slog.Default().With(args...)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
