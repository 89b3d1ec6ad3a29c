// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the analyzer configuration from a YAML file
// and fills in defaults for everything the file leaves out.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/codegraph/services/codegraph/ast"
	"github.com/AleutianAI/codegraph/services/codegraph/render"
)

// Config controls analysis and rendering.
type Config struct {
	// SourceExtensions are the file extensions parsed for structure.
	SourceExtensions []string `yaml:"source_extensions"`

	// MaxFileSize is the largest source file the parser accepts, in
	// bytes.
	MaxFileSize int64 `yaml:"max_file_size"`

	// IgnoreFile is the name of the per-directory exclusion file.
	IgnoreFile string `yaml:"ignore_file"`

	// ExcludeDirs are extra directory names skipped during the walk,
	// in addition to the built-in set (VCS metadata, caches,
	// virtualenvs).
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// Formats are the outputs to render.
	Formats []string `yaml:"formats"`

	// OutputDir overrides the default "<project>_results" directory.
	OutputDir string `yaml:"output_dir"`

	// LogDir enables file logging when non-empty.
	LogDir string `yaml:"log_dir"`

	// WatchDebounce is how long the watcher waits after the last
	// filesystem event before re-analyzing.
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		SourceExtensions: []string{".py"},
		MaxFileSize:      ast.DefaultMaxFileSize,
		IgnoreFile:       ".gitignore",
		Formats:          []string{"json", "html", "dot", "text"},
		WatchDebounce:    2 * time.Second,
	}
}

// Load reads a YAML config file and overlays it on the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot
// work with.
func (c *Config) Validate() error {
	if len(c.SourceExtensions) == 0 {
		return fmt.Errorf("source_extensions must not be empty")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	if c.IgnoreFile == "" {
		return fmt.Errorf("ignore_file must not be empty")
	}
	if len(c.Formats) == 0 {
		return fmt.Errorf("formats must not be empty")
	}
	for _, f := range c.Formats {
		if !render.Format(f).Valid() {
			return fmt.Errorf("unknown format %q", f)
		}
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative")
	}
	return nil
}

// RenderFormats returns the configured formats as render.Format
// values.
func (c *Config) RenderFormats() []render.Format {
	formats := make([]render.Format, 0, len(c.Formats))
	for _, f := range c.Formats {
		formats = append(formats, render.Format(f))
	}
	return formats
}
