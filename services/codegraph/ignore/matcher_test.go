// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

// writeIgnore writes an ignore file with the given content into dir.
func writeIgnore(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMatcher_NoIgnoreFiles(t *testing.T) {
	root := t.TempDir()
	m := NewMatcher(root)

	if m.RuleCount() != 0 {
		t.Errorf("expected 0 rules, got %d", m.RuleCount())
	}
	if m.ShouldIgnore("anything.py", false) {
		t.Error("matcher without rules should ignore nothing")
	}
}

func TestMatcher_SkipsBlankAndComments(t *testing.T) {
	root := t.TempDir()
	writeIgnore(t, root, "\n# comment\n\n*.log\n")

	m := NewMatcher(root)
	if m.RuleCount() != 1 {
		t.Fatalf("expected 1 rule, got %d", m.RuleCount())
	}
	if !m.ShouldIgnore("debug.log", false) {
		t.Error("*.log should match debug.log")
	}
	if m.ShouldIgnore("debug.txt", false) {
		t.Error("*.log should not match debug.txt")
	}
}

func TestMatcher_DirectoryRule(t *testing.T) {
	root := t.TempDir()
	writeIgnore(t, root, "build/\n")

	m := NewMatcher(root)
	if !m.ShouldIgnore("build", true) {
		t.Error("build directory should be ignored")
	}
	if !m.ShouldIgnore("nested/build", true) {
		t.Error("any segment named build should be ignored when it is a directory")
	}
	if m.ShouldIgnore("build", false) {
		t.Error("directory rule must not match a plain file named build")
	}
}

func TestMatcher_NegationWins(t *testing.T) {
	root := t.TempDir()
	writeIgnore(t, root, "build/\n!build/keep.py\n")

	m := NewMatcher(root)
	if !m.ShouldIgnore("build", true) {
		t.Error("build directory itself stays ignored")
	}
	if m.ShouldIgnore("build/keep.py", false) {
		t.Error("negation must re-admit build/keep.py")
	}
	if !m.NegationMatches("build/keep.py", false) {
		t.Error("NegationMatches should see build/keep.py")
	}
	if m.NegationMatches("build/other.py", false) {
		t.Error("NegationMatches should not see build/other.py")
	}
}

func TestMatcher_NegationOrderIndependent(t *testing.T) {
	root := t.TempDir()
	// Negation listed first; it must still override the later ignore.
	writeIgnore(t, root, "!data/keep.csv\ndata/*.csv\n")

	m := NewMatcher(root)
	if m.ShouldIgnore("data/keep.csv", false) {
		t.Error("negation overrides ignore regardless of rule order")
	}
	if !m.ShouldIgnore("data/raw.csv", false) {
		t.Error("data/raw.csv should stay ignored")
	}
}

func TestMatcher_SlashedPatternSlidingWindow(t *testing.T) {
	root := t.TempDir()
	writeIgnore(t, root, "fixtures/big.json\n")

	m := NewMatcher(root)
	if !m.ShouldIgnore("fixtures/big.json", false) {
		t.Error("pattern should match at path start")
	}
	if !m.ShouldIgnore("tests/fixtures/big.json", false) {
		t.Error("pattern should match anywhere in the path")
	}
	if m.ShouldIgnore("fixtures/small.json", false) {
		t.Error("unrelated file should not match")
	}
}

func TestMatcher_PlainPatternMatchesNameOrDir(t *testing.T) {
	root := t.TempDir()
	writeIgnore(t, root, "tmp\n")

	m := NewMatcher(root)
	if !m.ShouldIgnore("tmp", false) {
		t.Error("pattern should match the file name")
	}
	if !m.ShouldIgnore("a/tmp/b.py", false) {
		t.Error("pattern should match an intermediate directory segment")
	}
	if m.ShouldIgnore("a/temporary/b.py", false) {
		t.Error("pattern should not match a partial segment")
	}
}

func TestMatcher_GlobClasses(t *testing.T) {
	root := t.TempDir()
	writeIgnore(t, root, "cache?\ndata[0-9]\n")

	m := NewMatcher(root)
	if !m.ShouldIgnore("cache1", false) {
		t.Error("? should match a single character")
	}
	if m.ShouldIgnore("cache12", false) {
		t.Error("? should not match two characters")
	}
	if !m.ShouldIgnore("data7", false) {
		t.Error("character class should match")
	}
	if m.ShouldIgnore("dataX", false) {
		t.Error("character class should not match letters")
	}
}

func TestMatcher_NestedIgnoreFileScopes(t *testing.T) {
	root := t.TempDir()
	writeIgnore(t, filepath.Join(root, "sub"), "generated/\n*.tmp\n")

	m := NewMatcher(root)
	if !m.ShouldIgnore("sub/generated", true) {
		t.Error("nested rule should apply under its own directory")
	}
	if m.ShouldIgnore("generated", true) {
		t.Error("nested rule must not leak to the project root")
	}
	if !m.ShouldIgnore("sub/a.tmp", false) {
		t.Error("nested glob should apply under its own directory")
	}
	if m.ShouldIgnore("other/a.tmp", false) {
		t.Error("nested glob must not apply outside its directory")
	}
}

func TestMatcher_RootAnchoredPattern(t *testing.T) {
	root := t.TempDir()
	writeIgnore(t, root, "/dist\n")

	m := NewMatcher(root)
	if !m.ShouldIgnore("dist", true) {
		t.Error("leading slash is stripped before matching")
	}
}

func TestMatcher_UnreadableIgnoreFileIsNonFatal(t *testing.T) {
	root := t.TempDir()
	// A directory named like the ignore file cannot be opened as one.
	if err := os.MkdirAll(filepath.Join(root, "sub", FileName), 0o755); err != nil {
		t.Fatal(err)
	}
	writeIgnore(t, root, "*.log\n")

	m := NewMatcher(root)
	if !m.ShouldIgnore("x.log", false) {
		t.Error("rules from readable files must still load")
	}
}
