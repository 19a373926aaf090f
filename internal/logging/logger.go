// Package logging configures runtime JSONL logging output.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options selects the log destination and threshold.
type Options struct {
	Level slog.Level
	// File overrides the default $XDG_STATE_HOME/splconfig/log.jsonl.
	File string
	// Command tags every record so one-shot invocations and a resident
	// session can be told apart in a shared log.
	Command string
}

// Runtime bundles the configured logger and its open file handle lifecycle.
type Runtime struct {
	Logger *slog.Logger
	Path   string
	closer io.Closer
}

// Close flushes and closes the logger output sink.
func (r Runtime) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// New opens the JSONL log for appending. Records below opts.Level are dropped.
func New(opts Options) (Runtime, error) {
	path := strings.TrimSpace(opts.File)
	if path == "" {
		var err error
		if path, err = defaultLogPath(); err != nil {
			return Runtime{}, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Runtime{}, fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return Runtime{}, fmt.Errorf("open log %s: %w", path, err)
	}

	attrs := []any{"pid", os.Getpid()}
	if opts.Command != "" {
		attrs = append(attrs, "command", opts.Command)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: opts.Level})).With(attrs...)
	return Runtime{Logger: logger, Path: path, closer: f}, nil
}

// defaultLogPath selects XDG_STATE_HOME when available, otherwise ~/.local/state.
func defaultLogPath() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return filepath.Join(xdg, "splconfig", "log.jsonl"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve log path: %w", err)
	}
	return filepath.Join(home, ".local", "state", "splconfig", "log.jsonl"), nil
}
