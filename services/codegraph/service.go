// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package codegraph analyzes a Python project and renders its
// structure as a knowledge graph.
//
// The service orchestrates the full pipeline:
//   - Walk the project tree, honoring ignore rules
//   - Parse each source file into functions, classes, and imports
//   - Resolve call and import relationships
//   - Render the graph in the configured formats
package codegraph

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/codegraph/services/codegraph/analyzer"
	"github.com/AleutianAI/codegraph/services/codegraph/ast"
	"github.com/AleutianAI/codegraph/services/codegraph/config"
	"github.com/AleutianAI/codegraph/services/codegraph/graph"
	"github.com/AleutianAI/codegraph/services/codegraph/render"
)

// RunResult describes one completed analysis run.
type RunResult struct {
	// RunID uniquely identifies the run in logs.
	RunID string

	// Root is the directory that was analyzed.
	Root string

	// OutputDir is where the rendered outputs were written.
	OutputDir string

	// Outputs maps each rendered format to its output path.
	Outputs map[render.Format]string

	// Graph is the built knowledge graph.
	Graph *graph.Result

	// Skipped lists source files that failed to parse.
	Skipped []string

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// Service runs the analysis pipeline.
type Service struct {
	cfg *config.Config
}

// NewService builds a Service from the given configuration. A nil
// configuration uses the defaults.
func NewService(cfg *config.Config) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Service{cfg: cfg}
}

// ResolveTarget validates the analysis target and returns the
// directory to analyze. A file target resolves to its parent
// directory.
func (s *Service) ResolveTarget(target string) (string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", target, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", target, ErrPathNotFound)
		}
		return "", fmt.Errorf("stat %s: %w", target, err)
	}
	if !info.IsDir() {
		return filepath.Dir(abs), nil
	}
	return abs, nil
}

// OutputDir returns the directory outputs are written to for the
// given root. A configured output_dir wins; otherwise outputs land in
// a sibling "<name>_results" directory.
func (s *Service) OutputDir(root string) string {
	if s.cfg.OutputDir != "" {
		return s.cfg.OutputDir
	}
	return filepath.Join(filepath.Dir(root), filepath.Base(root)+"_results")
}

// Run analyzes the target directory and writes every configured
// output format. The target must already be resolved via
// ResolveTarget.
func (s *Service) Run(ctx context.Context, root string) (*RunResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := slog.With("run_id", runID, "root", root)
	log.Info("starting analysis run")

	a := analyzer.New(
		analyzer.WithParser(ast.NewPythonParser(ast.WithMaxFileSize(s.cfg.MaxFileSize))),
		analyzer.WithExtensions(s.cfg.SourceExtensions),
		analyzer.WithIgnoreFile(s.cfg.IgnoreFile),
		analyzer.WithExcludeDirs(s.cfg.ExcludeDirs),
	)
	project, err := a.Run(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", root, err)
	}

	result := graph.Build(project)

	outDir := s.OutputDir(root)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir %s: %w", outDir, err)
	}

	outputs := make(map[render.Format]string, len(s.cfg.Formats))
	for _, f := range s.cfg.RenderFormats() {
		path := filepath.Join(outDir, f.FileName())
		if err := s.renderFile(f, path, result); err != nil {
			return nil, err
		}
		outputs[f] = path
		log.Info("wrote output", "format", string(f), "path", path)
	}

	run := &RunResult{
		RunID:     runID,
		Root:      root,
		OutputDir: outDir,
		Outputs:   outputs,
		Graph:     result,
		Skipped:   project.Skipped,
		Duration:  time.Since(start),
	}
	log.Info("analysis run complete",
		"functions", result.Summary.TotalFunctions,
		"files", result.Summary.TotalFiles,
		"skipped", len(project.Skipped),
		"duration", run.Duration)
	return run, nil
}

func (s *Service) renderFile(f render.Format, path string, result *graph.Result) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := render.Render(out, f, result); err != nil {
		out.Close()
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
