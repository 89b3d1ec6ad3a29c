// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analyzer walks a project tree, parses its source files, and
// produces the Project record set the graph builder consumes: folders,
// files, modules, classes, functions, imports, and the resolved call
// relationships between functions.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/AleutianAI/codegraph/services/codegraph/ast"
	"github.com/AleutianAI/codegraph/services/codegraph/ignore"
	"github.com/AleutianAI/codegraph/services/codegraph/walker"
)

// Analyzer runs the full analysis pipeline over one project root.
type Analyzer struct {
	parser      ast.Parser
	extensions  []string
	ignoreFile  string
	excludeDirs []string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithParser replaces the default Python parser.
func WithParser(p ast.Parser) Option {
	return func(a *Analyzer) {
		if p != nil {
			a.parser = p
		}
	}
}

// WithExtensions overrides which file extensions are parsed.
func WithExtensions(exts []string) Option {
	return func(a *Analyzer) {
		if len(exts) > 0 {
			a.extensions = exts
		}
	}
}

// WithIgnoreFile overrides the ignore file name (default .gitignore).
func WithIgnoreFile(name string) Option {
	return func(a *Analyzer) {
		if name != "" {
			a.ignoreFile = name
		}
	}
}

// WithExcludeDirs adds directory names to the walker's built-in skip
// set.
func WithExcludeDirs(names []string) Option {
	return func(a *Analyzer) {
		a.excludeDirs = names
	}
}

// New creates an analyzer. By default it parses ".py" files with the
// tree-sitter Python parser.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		parser:     ast.NewPythonParser(),
		extensions: []string{".py"},
		ignoreFile: ignore.FileName,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run analyzes the tree under root.
//
// Files that fail to parse are logged, recorded in Project.Skipped,
// and excluded from the structural records; the rest of the project
// is still analyzed. The walk itself only fails on context
// cancellation.
func (a *Analyzer) Run(ctx context.Context, root string) (*Project, error) {
	matcher := ignore.NewMatcherWithFile(root, a.ignoreFile)
	slog.Info("starting analysis",
		slog.String("root", root),
		slog.Int("ignore_rules", matcher.RuleCount()))

	files, err := walker.New(root, matcher, a.extensions,
		walker.WithExcludeDirs(a.excludeDirs),
		walker.WithIgnoreFile(a.ignoreFile)).Walk(ctx)
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	slog.Info("walk complete",
		slog.Int("total_files", len(files.AllFiles)),
		slog.Int("source_files", len(files.SourceFiles)))

	project := NewProject(root)

	source := make(map[string]bool, len(files.SourceFiles))
	for _, rel := range files.SourceFiles {
		source[rel] = true
	}
	for _, rel := range files.AllFiles {
		project.RegisterFile(rel, source[rel])
	}

	for _, rel := range files.SourceFiles {
		if err := a.analyzeFile(ctx, project, rel); err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			slog.Warn("skipping unparsable file",
				slog.String("file", rel),
				slog.Any("error", err))
			project.Skipped = append(project.Skipped, rel)
		}
	}

	project.resolveCalls()

	slog.Info("analysis complete",
		slog.Int("folders", len(project.Folders)),
		slog.Int("files", len(project.Files)),
		slog.Int("modules", len(project.Modules)),
		slog.Int("classes", len(project.Classes)),
		slog.Int("functions", len(project.Functions)),
		slog.Int("skipped", len(project.Skipped)))

	return project, nil
}

// analyzeFile parses one source file and registers its structure.
func (a *Analyzer) analyzeFile(ctx context.Context, project *Project, rel string) error {
	content, err := os.ReadFile(filepath.Join(project.Root, filepath.FromSlash(rel)))
	if err != nil {
		return fmt.Errorf("reading %s: %w", rel, err)
	}

	structure, err := a.parser.Parse(ctx, content, rel)
	if err != nil {
		return err
	}

	file := project.Files[rel]
	file.Docstring = structure.Docstring
	file.LineCount = structure.LineCount

	module := project.Modules[file.Module]

	// Classes register before functions so methods can attach.
	// A redefinition of the same name overwrites the earlier record,
	// as a later Python definition shadows an earlier one.
	for _, cls := range structure.Classes {
		key := ClassKey{File: rel, Name: cls.Name}
		if existing, ok := project.Classes[key]; ok {
			existing.Def = cls
			continue
		}
		project.Classes[key] = &ClassRecord{Key: key, Def: cls}
		if module != nil {
			module.Classes = append(module.Classes, key)
		}
	}

	for _, fn := range structure.Functions {
		key := FunctionKey{File: rel, Class: fn.Class, Name: fn.Name}
		if existing, ok := project.Functions[key]; ok {
			existing.Def = fn
			continue
		}
		project.Functions[key] = &FunctionRecord{Key: key, Def: fn}
		file.Functions = append(file.Functions, key)
		if module != nil {
			module.Functions = append(module.Functions, key)
		}
		if fn.Class != "" {
			if cls, ok := project.Classes[ClassKey{File: rel, Name: fn.Class}]; ok {
				cls.Methods = append(cls.Methods, key)
			}
		}
	}

	for _, imp := range structure.Imports {
		project.Imports[rel] = append(project.Imports[rel], resolveImport(rel, imp))
	}

	return nil
}
