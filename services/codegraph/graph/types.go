// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph converts an analyzed project into the knowledge-graph
// document the renderers consume: typed nodes for folders, files,
// modules, and functions, plus containment, call, and import edges.
package graph

// Node types.
const (
	NodeFolder   = "folder"
	NodeFile     = "file"
	NodeModule   = "module"
	NodeFunction = "function"
	NodeMethod   = "method"
)

// Edge types and relationships.
const (
	EdgeContains = "contains"
	EdgeDefines  = "defines"
	EdgeCalls    = "calls"
	EdgeCalledBy = "called_by"
	EdgeImports  = "imports"

	RelFolderContainsFile    = "folder_contains_file"
	RelFolderContainsFolder  = "folder_contains_folder"
	RelFileDefinesModule     = "file_defines_module"
	RelModuleContainsFunc    = "module_contains_function"
	RelFunctionCall          = "function_call"
	RelDependency            = "dependency"
	RelFileImportsFromFile   = "file_imports_from_file"
	RelModuleImportsFromMod  = "module_imports_from_module"
)

// Node is one graph vertex. Only the fields relevant to the node's
// type are populated; pointer fields distinguish "absent" from a zero
// value so counts and flags serialize for exactly the node types that
// carry them.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`

	// Folder and file nodes.
	Path string `json:"path,omitempty"`

	// Folder nodes.
	FileCount      *int `json:"file_count,omitempty"`
	SubfolderCount *int `json:"subfolder_count,omitempty"`

	// File nodes.
	Extension string `json:"extension,omitempty"`
	IsPython  *bool  `json:"is_python,omitempty"`

	// Module nodes.
	Name       string `json:"name,omitempty"`
	ClassCount *int   `json:"class_count,omitempty"`

	// File, module, and function nodes.
	Module        string  `json:"module,omitempty"`
	Folder        *string `json:"folder,omitempty"`
	File          string  `json:"file,omitempty"`
	FunctionCount *int    `json:"function_count,omitempty"`

	// Function and method nodes.
	Line           int      `json:"line,omitempty"`
	Parameters     []string `json:"parameters,omitempty"`
	ParameterCount *int     `json:"parameter_count,omitempty"`
	HasDocstring   *bool    `json:"has_docstring,omitempty"`
	CallCount      *int     `json:"call_count,omitempty"`
	CalledByCount  *int     `json:"called_by_count,omitempty"`
	Class          string   `json:"class,omitempty"`
}

// Edge is one graph relationship.
type Edge struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	Type         string `json:"type"`
	Relationship string `json:"relationship"`

	// Import edges carry the imported names and relativity flag.
	Imports    []string `json:"imports,omitempty"`
	IsRelative *bool    `json:"is_relative,omitempty"`
}

// Summary holds the project-level statistics.
type Summary struct {
	TotalFolders                 int     `json:"total_folders"`
	TotalFiles                   int     `json:"total_files"`
	TotalModules                 int     `json:"total_modules"`
	TotalFunctions               int     `json:"total_functions"`
	TotalClasses                 int     `json:"total_classes"`
	TotalParameters              int     `json:"total_parameters"`
	FunctionsWithDocstrings      int     `json:"functions_with_docstrings"`
	FunctionsThatCallOthers      int     `json:"functions_that_call_others"`
	FunctionsThatAreCalled       int     `json:"functions_that_are_called"`
	AverageParametersPerFunction float64 `json:"average_parameters_per_function"`
}

// FolderInfo is the hierarchy entry for one folder.
type FolderInfo struct {
	Path       string   `json:"path"`
	Files      []string `json:"files"`
	Subfolders []string `json:"subfolders"`
}

// FileInfo is the hierarchy entry for one file.
type FileInfo struct {
	Path      string   `json:"path"`
	Name      string   `json:"name"`
	Extension string   `json:"extension"`
	Module    string   `json:"module,omitempty"`
	Folder    string   `json:"folder"`
	Functions []string `json:"functions"`
	IsPython  bool     `json:"is_python"`
}

// ModuleInfo is the hierarchy entry for one module.
type ModuleInfo struct {
	Name      string   `json:"name"`
	File      string   `json:"file"`
	Folder    string   `json:"folder"`
	Functions []string `json:"functions"`
	Classes   []string `json:"classes"`
}

// Hierarchy mirrors the analyzer's folder/file/module records in a
// serializable form.
type Hierarchy struct {
	Folders map[string]FolderInfo `json:"folders"`
	Files   map[string]FileInfo   `json:"files"`
	Modules map[string]ModuleInfo `json:"modules"`
}

// ImportInfo is one import statement in the result document.
type ImportInfo struct {
	From           string   `json:"from"`
	ResolvedModule string   `json:"resolved_module,omitempty"`
	Imports        []string `json:"imports"`
	IsRelative     bool     `json:"is_relative"`
	Line           int      `json:"line"`
}

// Result is the complete graph document.
type Result struct {
	Nodes     []Node                  `json:"nodes"`
	Edges     []Edge                  `json:"edges"`
	Summary   Summary                 `json:"summary"`
	Hierarchy Hierarchy               `json:"hierarchy"`
	Imports   map[string][]ImportInfo `json:"imports"`
}

func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }
