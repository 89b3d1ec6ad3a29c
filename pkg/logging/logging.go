// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging configures structured logging for codegraph.
//
// Output follows Unix CLI conventions: logs go to stderr, leaving
// stdout for the analysis summary. Terminals get human-readable text
// and pipes get JSON lines. An optional log directory adds a JSON
// log file named {service}_{date}.log alongside the stderr output.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum level emitted.
	Level slog.Level

	// Service names the log file ({service}_{date}.log).
	Service string

	// LogDir enables file logging when non-empty. Supports ~
	// expansion. The directory is created if missing.
	LogDir string
}

// Setup builds a logger per the config and installs it as the slog
// default. The returned close function flushes and closes the log
// file; it is a no-op when file logging is disabled.
func Setup(cfg Config) (func() error, error) {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var stderr slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		stderr = slog.NewTextHandler(os.Stderr, opts)
	} else {
		stderr = slog.NewJSONHandler(os.Stderr, opts)
	}

	handler := stderr
	closeFn := func() error { return nil }

	if cfg.LogDir != "" {
		dir := expandPath(cfg.LogDir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log dir %s: %w", dir, err)
		}
		service := cfg.Service
		if service == "" {
			service = "codegraph"
		}
		name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
		file, err := os.OpenFile(filepath.Join(dir, name),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		handler = multiHandler{stderr, slog.NewJSONHandler(file, opts)}
		closeFn = file.Close
	}

	slog.SetDefault(slog.New(handler))
	return closeFn, nil
}

// multiHandler fans records out to every wrapped handler.
type multiHandler []slog.Handler

func (h multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, hh := range h {
		if hh.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, hh := range h {
		if !hh.Enabled(ctx, r.Level) {
			continue
		}
		if err := hh.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(multiHandler, len(h))
	for i, hh := range h {
		out[i] = hh.WithAttrs(attrs)
	}
	return out
}

func (h multiHandler) WithGroup(name string) slog.Handler {
	out := make(multiHandler, len(h))
	for i, hh := range h {
		out[i] = hh.WithGroup(name)
	}
	return out
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if path == "~" || len(path) > 1 && path[0] == '~' && path[1] == filepath.Separator {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
