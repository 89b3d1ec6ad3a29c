// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func analyzeProject(t *testing.T, files map[string]string) *Project {
	t.Helper()
	root := writeProject(t, files)
	project, err := New().Run(context.Background(), root)
	require.NoError(t, err)
	return project
}

func TestRun_HierarchyRegistration(t *testing.T) {
	project := analyzeProject(t, map[string]string{
		"main.py":            "def main():\n    pass\n",
		"pkg/__init__.py":    "",
		"pkg/models.py":      "class User:\n    pass\n",
		"pkg/sub/helpers.py": "def helper():\n    pass\n",
		"README.md":          "readme\n",
	})

	// Root plus pkg and pkg/sub.
	require.Len(t, project.Folders, 3)
	assert.True(t, project.Folders[""].Subfolders["pkg"])
	assert.True(t, project.Folders["pkg"].Subfolders["pkg/sub"])

	require.Contains(t, project.Files, "README.md")
	assert.False(t, project.Files["README.md"].IsSource)
	assert.Empty(t, project.Files["README.md"].Module)

	assert.Equal(t, "pkg.models", project.Files["pkg/models.py"].Module)
	assert.Equal(t, "pkg", project.Files["pkg/__init__.py"].Module)
	assert.Equal(t, "pkg.sub.helpers", project.Files["pkg/sub/helpers.py"].Module)

	require.Contains(t, project.Modules, "pkg.sub.helpers")
	assert.Equal(t, "pkg/sub/helpers.py", project.Modules["pkg.sub.helpers"].File)
}

func TestRun_FunctionAndClassRecords(t *testing.T) {
	project := analyzeProject(t, map[string]string{
		"app.py": `class Service:
    def start(self):
        self.configure()

    def configure(self):
        pass

def run():
    svc = Service()
    svc.start()
`,
	})

	clsKey := ClassKey{File: "app.py", Name: "Service"}
	require.Contains(t, project.Classes, clsKey)
	assert.Len(t, project.Classes[clsKey].Methods, 2)

	startKey := FunctionKey{File: "app.py", Class: "Service", Name: "start"}
	runKey := FunctionKey{File: "app.py", Name: "run"}
	require.Contains(t, project.Functions, startKey)
	require.Contains(t, project.Functions, runKey)

	mod := project.Modules["app"]
	require.NotNil(t, mod)
	assert.Len(t, mod.Functions, 3)
	assert.Len(t, mod.Classes, 1)
}

func TestRun_RedefinitionLastWins(t *testing.T) {
	project := analyzeProject(t, map[string]string{
		"dup.py": `def ping():
    pass

def ping(host, retries):
    pass

class Job:
    pass

class Job:
    def run(self):
        pass
`,
	})

	key := FunctionKey{File: "dup.py", Name: "ping"}
	rec := project.Functions[key]
	require.NotNil(t, rec)
	require.Len(t, rec.Def.Params, 2)
	assert.Equal(t, "host", rec.Def.Params[0].Name)

	// The key registers once even though the name was defined twice.
	count := 0
	for _, k := range project.Files["dup.py"].Functions {
		if k == key {
			count++
		}
	}
	assert.Equal(t, 1, count)

	cls := project.Classes[ClassKey{File: "dup.py", Name: "Job"}]
	require.NotNil(t, cls)
	assert.Contains(t, cls.Def.Methods, "run")
}

func TestRun_CallResolutionSymmetry(t *testing.T) {
	project := analyzeProject(t, map[string]string{
		"app.py": `class Service:
    def start(self):
        self.configure()

    def configure(self):
        pass

def run():
    svc = Service()
    svc.start()
`,
	})

	startKey := FunctionKey{File: "app.py", Class: "Service", Name: "start"}
	configureKey := FunctionKey{File: "app.py", Class: "Service", Name: "configure"}
	runKey := FunctionKey{File: "app.py", Name: "run"}

	// self.configure() resolves within the class.
	assert.True(t, project.Functions[startKey].Resolved[configureKey])
	assert.True(t, project.Functions[configureKey].CalledBy[startKey])

	// svc.start() falls back to the bare name within the file.
	assert.True(t, project.Functions[runKey].Resolved[startKey])
	assert.True(t, project.Functions[startKey].CalledBy[runKey])

	// Symmetry holds for every recorded edge.
	for key, fn := range project.Functions {
		for target := range fn.Resolved {
			assert.True(t, project.Functions[target].CalledBy[key],
				"missing reverse edge %s -> %s", key, target)
		}
		for caller := range fn.CalledBy {
			assert.True(t, project.Functions[caller].Resolved[key],
				"missing forward edge %s -> %s", caller, key)
		}
	}
}

func TestRun_BareNameFallbackIgnoresClass(t *testing.T) {
	project := analyzeProject(t, map[string]string{
		"app.py": `class A:
    def work(self):
        pass

def trigger(a):
    a.work()
`,
	})

	triggerKey := FunctionKey{File: "app.py", Name: "trigger"}
	workKey := FunctionKey{File: "app.py", Class: "A", Name: "work"}
	assert.True(t, project.Functions[triggerKey].Resolved[workKey])
}

func TestRun_RelativeImports(t *testing.T) {
	project := analyzeProject(t, map[string]string{
		"pkg/__init__.py":  "",
		"pkg/mod.py":       "from . import sibling\nfrom .models import User\n",
		"pkg/sibling.py":   "",
		"pkg/models.py":    "class User:\n    pass\n",
		"pkg/sub/deep.py":  "from .. import models\nfrom ....outside import thing\n",
	})

	imports := project.Imports["pkg/mod.py"]
	require.Len(t, imports, 2)

	assert.Equal(t, "pkg", imports[0].Resolved)
	assert.True(t, imports[0].IsRelative)
	assert.Equal(t, []string{"pkg.sibling", "pkg"}, imports[0].Targets())

	assert.Equal(t, "pkg.models", imports[1].Resolved)
	assert.Equal(t, []string{"pkg.models"}, imports[1].Targets())

	deep := project.Imports["pkg/sub/deep.py"]
	require.Len(t, deep, 2)
	assert.Equal(t, "pkg", deep[0].Resolved)
	assert.Equal(t, []string{"pkg.models", "pkg"}, deep[0].Targets())

	// Four dots from pkg/sub climbs above the root.
	assert.Empty(t, deep[1].Resolved)
	assert.Empty(t, deep[1].Targets())
}

func TestRun_SyntaxErrorSkipsFile(t *testing.T) {
	project := analyzeProject(t, map[string]string{
		"good.py":   "def ok():\n    pass\n",
		"broken.py": "def broken(:\n",
	})

	assert.Equal(t, []string{"broken.py"}, project.Skipped)
	assert.Contains(t, project.Functions, FunctionKey{File: "good.py", Name: "ok"})

	// The broken file stays in the hierarchy but contributes no
	// structure.
	require.Contains(t, project.Files, "broken.py")
	assert.Empty(t, project.Files["broken.py"].Functions)
}

func TestRun_GitignoreRespected(t *testing.T) {
	project := analyzeProject(t, map[string]string{
		".gitignore":     "generated/\n",
		"main.py":        "",
		"generated/g.py": "",
	})

	assert.NotContains(t, project.Files, "generated/g.py")
	assert.Contains(t, project.Files, "main.py")
}

func TestModuleName(t *testing.T) {
	cases := map[string]string{
		"main.py":           "main",
		"pkg/models.py":     "pkg.models",
		"pkg/__init__.py":   "pkg",
		"a/b/c/__init__.py": "a.b.c",
	}
	for in, want := range cases {
		assert.Equal(t, want, ModuleName(in), in)
	}
}

func TestResolveRelativeImport(t *testing.T) {
	cases := []struct {
		file   string
		dots   int
		module string
		want   string
		ok     bool
	}{
		{"pkg/mod.py", 1, "models", "pkg.models", true},
		{"pkg/mod.py", 1, "", "pkg", true},
		{"pkg/sub/mod.py", 2, "other", "pkg.other", true},
		{"pkg/sub/mod.py", 2, "", "pkg", true},
		{"mod.py", 1, "sibling", "sibling", true},
		{"mod.py", 2, "x", "", false},
		{"pkg/mod.py", 0, "os", "os", true},
	}
	for _, tc := range cases {
		got, ok := ResolveRelativeImport(tc.file, tc.dots, tc.module)
		assert.Equal(t, tc.ok, ok, "%+v", tc)
		if tc.ok {
			assert.Equal(t, tc.want, got, "%+v", tc)
		}
	}
}
