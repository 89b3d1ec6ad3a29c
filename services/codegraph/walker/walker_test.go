// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package walker

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/AleutianAI/codegraph/services/codegraph/ignore"
)

// writeTree creates files (value = content) under root, making parent
// directories as needed. Keys use slash separators.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func walk(t *testing.T, root string) *Result {
	t.Helper()
	m := ignore.NewMatcher(root)
	w := New(root, m, []string{".py"})
	res, err := w.Walk(context.Background())
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	return res
}

func TestWalk_ClassifiesSourceFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.py":         "",
		"README.md":       "",
		"pkg/mod.py":      "",
		"pkg/notes.txt":   "",
		"pkg/__init__.py": "",
	})

	res := walk(t, root)

	wantAll := []string{"README.md", "main.py", "pkg/__init__.py", "pkg/mod.py", "pkg/notes.txt"}
	if !slices.Equal(res.AllFiles, wantAll) {
		t.Errorf("AllFiles = %v, want %v", res.AllFiles, wantAll)
	}
	wantSrc := []string{"main.py", "pkg/__init__.py", "pkg/mod.py"}
	if !slices.Equal(res.SourceFiles, wantSrc) {
		t.Errorf("SourceFiles = %v, want %v", res.SourceFiles, wantSrc)
	}
}

func TestWalk_BuiltInExclusions(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.py":                          "",
		"__pycache__/main.cpython-312.pyc": "",
		".git/config":                      "",
		"node_modules/x/index.js":          "",
		".venv/lib/site.py":                "",
		".hidden_config":                   "",
	})

	res := walk(t, root)

	want := []string{"main.py"}
	if !slices.Equal(res.AllFiles, want) {
		t.Errorf("AllFiles = %v, want %v", res.AllFiles, want)
	}
}

func TestWalk_IgnoreRulesPruneDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":       "build/\n*.log\n",
		"main.py":          "",
		"build/out.py":     "",
		"logs/run.log":     "",
		"logs/summary.txt": "",
	})

	res := walk(t, root)

	want := []string{".gitignore", "logs/summary.txt", "main.py"}
	if !slices.Equal(res.AllFiles, want) {
		t.Errorf("AllFiles = %v, want %v", res.AllFiles, want)
	}
}

func TestWalk_NegationReAdmitsUnderIgnoredDir(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":     "build/\n!build/keep.py\n",
		"main.py":        "",
		"build/keep.py":  "",
		"build/other.py": "",
	})

	res := walk(t, root)

	want := []string{".gitignore", "build/keep.py", "main.py"}
	if !slices.Equal(res.AllFiles, want) {
		t.Errorf("AllFiles = %v, want %v", res.AllFiles, want)
	}
	wantSrc := []string{"build/keep.py", "main.py"}
	if !slices.Equal(res.SourceFiles, wantSrc) {
		t.Errorf("SourceFiles = %v, want %v", res.SourceFiles, wantSrc)
	}
}

func TestWalk_NestedIgnoreFileScopes(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"sub/.gitignore": "gen/\n",
		"sub/gen/a.py":   "",
		"sub/real.py":    "",
		"gen/b.py":       "",
	})

	res := walk(t, root)

	want := []string{"gen/b.py", "sub/.gitignore", "sub/real.py"}
	if !slices.Equal(res.AllFiles, want) {
		t.Errorf("AllFiles = %v, want %v", res.AllFiles, want)
	}
}

func TestWalk_ContextCancellation(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a/b.py": ""})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := New(root, ignore.NewMatcher(root), []string{".py"})
	if _, err := w.Walk(ctx); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestWalk_ExtraExcludeDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.py":          "",
		"generated/gen.py": "",
	})

	w := New(root, ignore.NewMatcher(root), []string{".py"},
		WithExcludeDirs([]string{"generated"}))
	res, err := w.Walk(context.Background())
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	want := []string{"main.py"}
	if !slices.Equal(res.AllFiles, want) {
		t.Errorf("AllFiles = %v, want %v", res.AllFiles, want)
	}
}

func TestWalk_CustomIgnoreFileName(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"ignore.conf":  "skipped/\n",
		"main.py":      "",
		"skipped/a.py": "",
	})

	m := ignore.NewMatcherWithFile(root, "ignore.conf")
	w := New(root, m, []string{".py"}, WithIgnoreFile("ignore.conf"))
	res, err := w.Walk(context.Background())
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	want := []string{"ignore.conf", "main.py"}
	if !slices.Equal(res.AllFiles, want) {
		t.Errorf("AllFiles = %v, want %v", res.AllFiles, want)
	}
}

func TestWalk_HiddenDirectoriesSkipped(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.py":                   "",
		".github/workflows/gen.py":  "",
		".eggs/pkg/setup.py":        "",
		".cache/entries/blob.py":    "",
		".circleci/scripts/util.py": "",
	})

	res := walk(t, root)

	want := []string{"main.py"}
	if !slices.Equal(res.AllFiles, want) {
		t.Errorf("AllFiles = %v, want %v", res.AllFiles, want)
	}
}

func TestWalk_IgnoreFileRemainsVisible(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore": "*.log\n",
		"main.py":    "",
	})

	res := walk(t, root)

	want := []string{".gitignore", "main.py"}
	if !slices.Equal(res.AllFiles, want) {
		t.Errorf("AllFiles = %v, want %v", res.AllFiles, want)
	}
	wantSrc := []string{"main.py"}
	if !slices.Equal(res.SourceFiles, wantSrc) {
		t.Errorf("SourceFiles = %v, want %v", res.SourceFiles, wantSrc)
	}
}

func TestWalk_ExtensionCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"Script.PY": ""})

	res := walk(t, root)
	if len(res.SourceFiles) != 1 {
		t.Errorf("SourceFiles = %v, want one entry", res.SourceFiles)
	}
}
