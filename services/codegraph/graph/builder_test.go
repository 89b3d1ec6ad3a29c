// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/codegraph/services/codegraph/analyzer"
	"github.com/AleutianAI/codegraph/services/codegraph/ast"
)

// testProject builds a small two-package project by hand:
//
//	main.py          def main() -> calls run
//	pkg/__init__.py
//	pkg/tasks.py     class Runner { run }, imports resolved from main
//	README.md
func testProject(t *testing.T) *analyzer.Project {
	t.Helper()

	p := analyzer.NewProject("/tmp/demo")
	p.RegisterFile("main.py", true)
	p.RegisterFile("pkg/__init__.py", true)
	p.RegisterFile("pkg/tasks.py", true)
	p.RegisterFile("README.md", false)

	mainKey := analyzer.FunctionKey{File: "main.py", Name: "main"}
	runKey := analyzer.FunctionKey{File: "pkg/tasks.py", Class: "Runner", Name: "run"}

	p.Functions[mainKey] = &analyzer.FunctionRecord{
		Key: mainKey,
		Def: ast.FunctionDef{
			Name:      "main",
			Docstring: "Entry point.",
			Params:    []ast.Param{{Name: "argv", Type: "list"}},
			Calls:     []ast.CallRef{{Name: "run", Object: "runner", Line: 5}},
			Line:      3,
		},
		Resolved: map[analyzer.FunctionKey]bool{runKey: true},
	}
	p.Functions[runKey] = &analyzer.FunctionRecord{
		Key: runKey,
		Def: ast.FunctionDef{
			Name:   "run",
			Class:  "Runner",
			Params: []ast.Param{{Name: "self"}},
			Line:   10,
		},
		CalledBy: map[analyzer.FunctionKey]bool{mainKey: true},
	}
	p.Files["main.py"].Functions = []analyzer.FunctionKey{mainKey}
	p.Files["pkg/tasks.py"].Functions = []analyzer.FunctionKey{runKey}
	p.Modules["main"].Functions = []analyzer.FunctionKey{mainKey}
	p.Modules["pkg.tasks"].Functions = []analyzer.FunctionKey{runKey}

	clsKey := analyzer.ClassKey{File: "pkg/tasks.py", Name: "Runner"}
	p.Classes[clsKey] = &analyzer.ClassRecord{
		Key:     clsKey,
		Def:     ast.ClassDef{Name: "Runner"},
		Methods: []analyzer.FunctionKey{runKey},
	}
	p.Modules["pkg.tasks"].Classes = []analyzer.ClassKey{clsKey}

	p.Imports["main.py"] = []analyzer.ImportRecord{
		{From: "pkg.tasks", Resolved: "pkg.tasks", Names: []string{"Runner"}, Line: 1},
		{From: "os", Resolved: "os", Line: 2},
	}

	return p
}

func findNode(result *Result, id string) *Node {
	for i := range result.Nodes {
		if result.Nodes[i].ID == id {
			return &result.Nodes[i]
		}
	}
	return nil
}

func findEdges(result *Result, relationship string) []Edge {
	var edges []Edge
	for _, e := range result.Edges {
		if e.Relationship == relationship {
			edges = append(edges, e)
		}
	}
	return edges
}

func TestBuild_Nodes(t *testing.T) {
	result := Build(testProject(t))

	// No node for the project root folder.
	assert.Nil(t, findNode(result, "folder::"))

	folder := findNode(result, "folder::pkg")
	require.NotNil(t, folder)
	assert.Equal(t, "pkg", folder.Label)
	assert.Equal(t, NodeFolder, folder.Type)
	assert.Equal(t, 2, *folder.FileCount)

	file := findNode(result, "file::pkg/tasks.py")
	require.NotNil(t, file)
	assert.Equal(t, "tasks.py", file.Label)
	assert.Equal(t, ".py", file.Extension)
	assert.True(t, *file.IsPython)
	assert.Equal(t, "pkg.tasks", file.Module)

	readme := findNode(result, "file::README.md")
	require.NotNil(t, readme)
	assert.False(t, *readme.IsPython)
	assert.Empty(t, readme.Module)

	module := findNode(result, "module::pkg.tasks")
	require.NotNil(t, module)
	assert.Equal(t, "tasks", module.Label)
	assert.Equal(t, 1, *module.ClassCount)

	method := findNode(result, "pkg/tasks.py::Runner.run")
	require.NotNil(t, method)
	assert.Equal(t, NodeMethod, method.Type)
	assert.Equal(t, "Runner", method.Class)
	assert.Equal(t, []string{"self"}, method.Parameters)

	fn := findNode(result, "main.py::main")
	require.NotNil(t, fn)
	assert.Equal(t, NodeFunction, fn.Type)
	assert.Equal(t, []string{"argv: list"}, fn.Parameters)
	assert.True(t, *fn.HasDocstring)
	assert.Equal(t, 1, *fn.CallCount)
	assert.Equal(t, 0, *fn.CalledByCount)
}

func TestBuild_ContainmentEdges(t *testing.T) {
	result := Build(testProject(t))

	contains := findEdges(result, RelFolderContainsFile)
	require.Len(t, contains, 2)
	for _, e := range contains {
		assert.Equal(t, "folder::pkg", e.Source)
	}

	defines := findEdges(result, RelFileDefinesModule)
	// One per source file, none for README.md.
	assert.Len(t, defines, 3)

	moduleFns := findEdges(result, RelModuleContainsFunc)
	assert.Len(t, moduleFns, 2)
}

func TestBuild_CallEdgesSymmetric(t *testing.T) {
	result := Build(testProject(t))

	calls := findEdges(result, RelFunctionCall)
	require.Len(t, calls, 1)
	assert.Equal(t, "main.py::main", calls[0].Source)
	assert.Equal(t, "pkg/tasks.py::Runner.run", calls[0].Target)

	calledBy := findEdges(result, RelDependency)
	require.Len(t, calledBy, 1)
	assert.Equal(t, calls[0].Source, calledBy[0].Source)
	assert.Equal(t, calls[0].Target, calledBy[0].Target)
	assert.Equal(t, EdgeCalledBy, calledBy[0].Type)
}

func TestBuild_ImportEdges(t *testing.T) {
	result := Build(testProject(t))

	fileImports := findEdges(result, RelFileImportsFromFile)
	require.Len(t, fileImports, 1)
	assert.Equal(t, "file::main.py", fileImports[0].Source)
	assert.Equal(t, "file::pkg/tasks.py", fileImports[0].Target)
	assert.Equal(t, []string{"Runner"}, fileImports[0].Imports)
	require.NotNil(t, fileImports[0].IsRelative)
	assert.False(t, *fileImports[0].IsRelative)

	moduleImports := findEdges(result, RelModuleImportsFromMod)
	require.Len(t, moduleImports, 1)
	assert.Equal(t, "module::main", moduleImports[0].Source)
	assert.Equal(t, "module::pkg.tasks", moduleImports[0].Target)
}

func TestBuild_Summary(t *testing.T) {
	result := Build(testProject(t))

	s := result.Summary
	assert.Equal(t, 1, s.TotalFolders)
	assert.Equal(t, 4, s.TotalFiles)
	assert.Equal(t, 3, s.TotalModules)
	assert.Equal(t, 2, s.TotalFunctions)
	assert.Equal(t, 1, s.TotalClasses)
	assert.Equal(t, 2, s.TotalParameters)
	assert.Equal(t, 1, s.FunctionsWithDocstrings)
	assert.Equal(t, 1, s.FunctionsThatCallOthers)
	assert.Equal(t, 1, s.FunctionsThatAreCalled)
	assert.InDelta(t, 1.0, s.AverageParametersPerFunction, 1e-9)
}

func TestBuild_SummaryEmptyProject(t *testing.T) {
	result := Build(analyzer.NewProject("/tmp/empty"))

	assert.Zero(t, result.Summary.TotalFunctions)
	assert.Zero(t, result.Summary.AverageParametersPerFunction)
	assert.Empty(t, result.Nodes)
	assert.Empty(t, result.Edges)
}

func TestBuild_Hierarchy(t *testing.T) {
	result := Build(testProject(t))

	require.Contains(t, result.Hierarchy.Folders, "")
	assert.Equal(t, []string{"pkg"}, result.Hierarchy.Folders[""].Subfolders)

	file := result.Hierarchy.Files["pkg/tasks.py"]
	assert.Equal(t, []string{"pkg/tasks.py::Runner.run"}, file.Functions)
	assert.True(t, file.IsPython)

	module := result.Hierarchy.Modules["pkg.tasks"]
	assert.Equal(t, []string{"pkg/tasks.py::Runner"}, module.Classes)

	require.Contains(t, result.Imports, "main.py")
	assert.Len(t, result.Imports["main.py"], 2)
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build(testProject(t))
	b := Build(testProject(t))

	assert.Equal(t, a.Nodes, b.Nodes)
	assert.Equal(t, a.Edges, b.Edges)
}
