// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package walker enumerates the analyzable files of a project tree.
//
// The walk applies two layers of exclusion: a small built-in set of
// directories that never contain first-party source (VCS metadata,
// package caches, virtual environments), and the project's own ignore
// rules as loaded by the ignore package.
//
// Ignored directories are normally pruned without descending. When the
// ignore rules contain negations, pruning would make "!build/keep.py"
// unreachable, so the walk descends ignored directories anyway and
// admits only the paths a negation rule re-admits.
package walker

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AleutianAI/codegraph/services/codegraph/ignore"
)

// skipDirs are directory names that are never worth descending,
// independent of any ignore file.
var skipDirs = map[string]bool{
	"__pycache__":   true,
	"node_modules":  true,
	".git":          true,
	".hg":           true,
	".svn":          true,
	".tox":          true,
	".venv":         true,
	"venv":          true,
	".pytest_cache": true,
	".mypy_cache":   true,
	".idea":         true,
	".vscode":       true,
}

// Result holds the outcome of a project walk. All paths are
// slash-separated, relative to the walked root, and sorted.
type Result struct {
	// AllFiles is every admitted file, source or not. The graph
	// builder registers these so non-source files still appear in
	// the folder hierarchy.
	AllFiles []string

	// SourceFiles is the subset of AllFiles with a source extension.
	SourceFiles []string
}

// Walker enumerates files under a root directory.
type Walker struct {
	root       string
	matcher    *ignore.Matcher
	extensions map[string]bool
	extraSkip  map[string]bool
	ignoreFile string
}

// Option adjusts walker construction.
type Option func(*Walker)

// WithExcludeDirs adds directory names to the built-in skip set.
func WithExcludeDirs(names []string) Option {
	return func(w *Walker) {
		for _, n := range names {
			w.extraSkip[n] = true
		}
	}
}

// WithIgnoreFile sets the ignore file name exempted from the
// hidden-file exclusion.
func WithIgnoreFile(name string) Option {
	return func(w *Walker) {
		if name != "" {
			w.ignoreFile = name
		}
	}
}

// New returns a walker over root. Paths matching rules in matcher are
// excluded; files whose extension appears in extensions (e.g. ".py")
// are classified as source files.
func New(root string, matcher *ignore.Matcher, extensions []string, opts ...Option) *Walker {
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}
	w := &Walker{
		root:       root,
		matcher:    matcher,
		extensions: exts,
		extraSkip:  make(map[string]bool),
		ignoreFile: ignore.FileName,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk traverses the tree and returns the admitted files. Unreadable
// directories are logged and skipped rather than failing the walk.
// The context is checked once per directory.
func (w *Walker) Walk(ctx context.Context) (*Result, error) {
	res := &Result{}
	if err := w.walkDir(ctx, w.root, false, res); err != nil {
		return nil, err
	}
	sort.Strings(res.AllFiles)
	sort.Strings(res.SourceFiles)
	return res, nil
}

// walkDir recurses into dir. When inIgnored is true the directory
// itself matched an ignore rule and files are only admitted if a
// negation rule re-admits them.
func (w *Walker) walkDir(ctx context.Context, dir string, inIgnored bool, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Debug("skipping unreadable directory", "dir", dir, "error", err)
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if strings.HasPrefix(name, ".") || skipDirs[name] || w.extraSkip[name] {
				continue
			}
			ignored := inIgnored || w.matcher.ShouldIgnore(rel, true)
			if ignored && !w.matcher.HasNegations() {
				continue
			}
			if err := w.walkDir(ctx, path, ignored, res); err != nil {
				return err
			}
			continue
		}

		// Hidden files are excluded, except the ignore file itself,
		// which stays part of the registered hierarchy.
		if strings.HasPrefix(name, ".") && name != w.ignoreFile {
			continue
		}

		if inIgnored {
			if !w.matcher.NegationMatches(rel, false) {
				continue
			}
		} else if w.matcher.ShouldIgnore(rel, false) {
			continue
		}

		res.AllFiles = append(res.AllFiles, rel)
		if w.extensions[strings.ToLower(filepath.Ext(name))] {
			res.SourceFiles = append(res.SourceFiles, rel)
		}
	}
	return nil
}
