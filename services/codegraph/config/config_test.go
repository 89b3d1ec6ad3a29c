// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/codegraph/services/codegraph/render"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "codegraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{".py"}, cfg.SourceExtensions)
	assert.Equal(t, []string{"json", "html", "dot", "text"}, cfg.Formats)
	assert.Equal(t, 2*time.Second, cfg.WatchDebounce)
	assert.Empty(t, cfg.OutputDir)
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
formats:
  - json
  - dot
output_dir: out
watch_debounce: 500ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"json", "dot"}, cfg.Formats)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, 500*time.Millisecond, cfg.WatchDebounce)
	// Unset keys keep their defaults.
	assert.Equal(t, []string{".py"}, cfg.SourceExtensions)
}

func TestLoad_UnknownFormatRejected(t *testing.T) {
	path := writeConfig(t, "formats:\n  - yaml\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "yaml"`)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "formats: [json\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"no extensions", func(c *Config) { c.SourceExtensions = nil }, true},
		{"zero max file size", func(c *Config) { c.MaxFileSize = 0 }, true},
		{"empty ignore file", func(c *Config) { c.IgnoreFile = "" }, true},
		{"no formats", func(c *Config) { c.Formats = nil }, true},
		{"negative debounce", func(c *Config) { c.WatchDebounce = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRenderFormats(t *testing.T) {
	cfg := Default()
	cfg.Formats = []string{"json", "text"}

	assert.Equal(t, []render.Format{render.FormatJSON, render.FormatText}, cfg.RenderFormats())
}
