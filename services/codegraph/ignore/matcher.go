// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ignore evaluates .gitignore-style exclusion rules for the
// directory walker.
//
// Rules are collected from every ignore file found anywhere under the
// project root, not only the root itself. Patterns from nested ignore
// files are re-rooted to the directory of the file they came from, so
// a rule "build/" in sub/.gitignore only excludes sub/build.
//
// Matching follows shell-glob semantics (*, ?, [...]) per path segment.
// Negation rules ("!pattern") always win over ignore rules, regardless
// of the order they appear in.
package ignore

import (
	"bufio"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// FileName is the name of the ignore-specification file the matcher loads.
const FileName = ".gitignore"

// rule is one parsed ignore pattern.
type rule struct {
	// pattern is the raw pattern text after negation/directory markers
	// are stripped and nested-file re-rooting is applied.
	pattern string

	// negated marks "!pattern" rules, which re-admit matching paths.
	negated bool

	// dirOnly marks "pattern/" rules, which match directories only.
	dirOnly bool

	// segments is the pattern split on "/", used for sliding-window
	// matching of slashed patterns.
	segments []string

	// matcher is the compiled glob for the full pattern (slashed rules)
	// or the single segment (plain and directory rules).
	matcher glob.Glob
}

// Matcher answers whether a project-relative path is excluded by the
// ignore rules loaded from the project tree.
//
// Matcher is immutable after construction and safe for concurrent use.
type Matcher struct {
	root  string
	rules []rule
}

// NewMatcher loads every ignore file under root and returns a ready
// matcher. Unreadable ignore files are logged and skipped; their rules
// are simply absent. A missing root yields a matcher with no rules.
func NewMatcher(root string) *Matcher {
	return NewMatcherWithFile(root, FileName)
}

// NewMatcherWithFile is NewMatcher with a custom ignore file name.
func NewMatcherWithFile(root, fileName string) *Matcher {
	m := &Matcher{root: root}
	if fileName == "" {
		fileName = FileName
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || d.Name() != fileName {
			return nil
		}
		m.loadFile(path)
		return nil
	})
	if err != nil {
		slog.Warn("ignore rule discovery failed", "root", root, "error", err)
	}

	return m
}

// RuleCount returns the number of loaded rules.
func (m *Matcher) RuleCount() int {
	return len(m.rules)
}

// HasNegations reports whether any loaded rule is a negation rule.
// The walker uses this to decide whether ignored directories still
// need to be descended so negated paths can be re-admitted.
func (m *Matcher) HasNegations() bool {
	for _, r := range m.rules {
		if r.negated {
			return true
		}
	}
	return false
}

// loadFile parses one ignore file and appends its rules.
func (m *Matcher) loadFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		slog.Warn("could not read ignore file", "path", path, "error", err)
		return
	}
	defer f.Close()

	relDir, err := filepath.Rel(m.root, filepath.Dir(path))
	if err != nil {
		relDir = "."
	}
	relDir = filepath.ToSlash(relDir)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		negated := strings.HasPrefix(line, "!")
		if negated {
			line = line[1:]
		}

		dirOnly := strings.HasSuffix(line, "/")
		if dirOnly {
			line = strings.TrimSuffix(line, "/")
		}

		// Patterns in nested ignore files scope to that file's
		// directory unless they are root-anchored.
		if !strings.HasPrefix(line, "/") && relDir != "." {
			line = relDir + "/" + line
		}
		line = strings.TrimLeft(line, "/")
		if line == "" {
			continue
		}

		g, err := glob.Compile(line)
		if err != nil {
			slog.Warn("invalid ignore pattern", "path", path, "pattern", line, "error", err)
			continue
		}

		m.rules = append(m.rules, rule{
			pattern:  line,
			negated:  negated,
			dirOnly:  dirOnly,
			segments: strings.Split(line, "/"),
			matcher:  g,
		})
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("could not read ignore file", "path", path, "error", err)
	}
}

// ShouldIgnore decides whether the slash-separated project-relative
// path rel is excluded. Every rule is evaluated; a matching negation
// rule overrides any number of matching ignore rules.
func (m *Matcher) ShouldIgnore(rel string, isDir bool) bool {
	var ignored, negated bool
	for i := range m.rules {
		r := &m.rules[i]
		if r.dirOnly && !isDir {
			continue
		}
		if r.matches(rel, isDir) {
			if r.negated {
				negated = true
			} else {
				ignored = true
			}
		}
	}
	if negated {
		return false
	}
	return ignored
}

// NegationMatches reports whether any negation rule matches rel. Used
// by the walker when descending into an otherwise-ignored directory.
func (m *Matcher) NegationMatches(rel string, isDir bool) bool {
	for i := range m.rules {
		r := &m.rules[i]
		if !r.negated {
			continue
		}
		if r.dirOnly && !isDir {
			continue
		}
		if r.matches(rel, isDir) {
			return true
		}
	}
	return false
}

// matches applies one rule to a relative path.
func (r *rule) matches(rel string, isDir bool) bool {
	parts := strings.Split(rel, "/")

	// Directory rules match when any path segment is the pattern.
	// Re-rooted directory rules from nested ignore files carry a
	// slash and fall through to sliding-window matching instead.
	if r.dirOnly && len(r.segments) == 1 {
		for _, part := range parts {
			if r.matcher.Match(part) {
				return true
			}
		}
		return false
	}

	// Slashed patterns match as a contiguous run of path segments
	// anywhere in the path.
	if len(r.segments) > 1 {
		n := len(r.segments)
		for i := 0; i+n <= len(parts); i++ {
			if r.matcher.Match(strings.Join(parts[i:i+n], "/")) {
				return true
			}
		}
		return false
	}

	// Plain patterns match the final segment or any directory segment.
	if r.matcher.Match(parts[len(parts)-1]) {
		return true
	}
	for _, part := range parts[:len(parts)-1] {
		if r.matcher.Match(part) {
			return true
		}
	}
	return false
}
