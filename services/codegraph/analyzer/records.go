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
	"path"
	"sort"
	"strings"

	"github.com/AleutianAI/codegraph/services/codegraph/ast"
)

// FunctionKey identifies one function in the project: the defining
// file, the enclosing class (empty for module-level functions), and
// the function name.
type FunctionKey struct {
	File  string
	Class string
	Name  string
}

// String renders the key as "file::name" or "file::Class.name".
func (k FunctionKey) String() string {
	if k.Class != "" {
		return k.File + "::" + k.Class + "." + k.Name
	}
	return k.File + "::" + k.Name
}

// ClassKey identifies one class in the project.
type ClassKey struct {
	File string
	Name string
}

// String renders the key as "file::Name".
func (k ClassKey) String() string {
	return k.File + "::" + k.Name
}

// FolderRecord is one directory in the project hierarchy. The root
// directory is recorded under the empty path.
type FolderRecord struct {
	Path       string
	Files      []string
	Subfolders map[string]bool
}

// FileRecord is one file in the project, source or not.
type FileRecord struct {
	Path      string
	Name      string
	Extension string
	Folder    string

	// Module is the dotted module name for source files, "" otherwise.
	Module string

	// IsSource marks files that were parsed for structure.
	IsSource bool

	// Docstring and LineCount are populated for parsed source files.
	Docstring string
	LineCount int

	Functions []FunctionKey
}

// ModuleRecord is one importable module backed by a source file.
type ModuleRecord struct {
	Name      string
	File      string
	Folder    string
	Functions []FunctionKey
	Classes   []ClassKey
}

// ClassRecord is one class definition with its resolved methods.
type ClassRecord struct {
	Key     ClassKey
	Def     ast.ClassDef
	Methods []FunctionKey
}

// FunctionRecord is one function definition with its resolved call
// relationships.
//
// Resolved and CalledBy are maintained symmetrically: a key appears
// in this function's Resolved exactly when this function's key
// appears in that target's CalledBy.
type FunctionRecord struct {
	Key FunctionKey
	Def ast.FunctionDef

	Resolved map[FunctionKey]bool
	CalledBy map[FunctionKey]bool
}

// ImportRecord is one import statement with its resolution outcome.
type ImportRecord struct {
	// From is the module text as written, including leading dots for
	// relative imports.
	From string

	// Resolved is the project-absolute module name, or "" when the
	// import could not be resolved (relative import above the root).
	Resolved string

	// Names are the imported symbols, empty for plain imports.
	Names []string

	IsRelative bool
	Line       int
}

// Targets returns the candidate module names an import edge may point
// at, most specific first. Dots-only imports like "from . import x"
// yield the package itself plus one candidate per imported name.
func (i ImportRecord) Targets() []string {
	if i.Resolved == "" {
		return nil
	}
	if !i.IsRelative || strings.Trim(i.From, ".") != "" {
		return []string{i.Resolved}
	}
	targets := make([]string, 0, len(i.Names)+1)
	for _, name := range i.Names {
		if name != "*" {
			targets = append(targets, i.Resolved+"."+name)
		}
	}
	return append(targets, i.Resolved)
}

// Project is the complete analysis result for one tree.
type Project struct {
	Root string

	Folders   map[string]*FolderRecord
	Files     map[string]*FileRecord
	Modules   map[string]*ModuleRecord
	Classes   map[ClassKey]*ClassRecord
	Functions map[FunctionKey]*FunctionRecord

	// Imports maps each source file to its import statements in
	// source order.
	Imports map[string][]ImportRecord

	// Skipped lists source files that could not be parsed.
	Skipped []string
}

// NewProject returns an empty project for the given root.
func NewProject(root string) *Project {
	return &Project{
		Root:      root,
		Folders:   make(map[string]*FolderRecord),
		Files:     make(map[string]*FileRecord),
		Modules:   make(map[string]*ModuleRecord),
		Classes:   make(map[ClassKey]*ClassRecord),
		Functions: make(map[FunctionKey]*FunctionRecord),
		Imports:   make(map[string][]ImportRecord),
	}
}

// RegisterFile places one file in the folder hierarchy and, for
// source files, registers its module. Every ancestor folder is
// created up to the root.
func (p *Project) RegisterFile(rel string, isSource bool) *FileRecord {
	if f, ok := p.Files[rel]; ok {
		return f
	}

	folder := FolderPath(rel)

	module := ""
	if isSource {
		module = ModuleName(rel)
	}

	f := &FileRecord{
		Path:      rel,
		Name:      path.Base(rel),
		Extension: path.Ext(rel),
		Folder:    folder,
		Module:    module,
		IsSource:  isSource,
	}
	p.Files[rel] = f

	p.folder(folder).Files = append(p.folder(folder).Files, rel)

	if module != "" {
		if _, ok := p.Modules[module]; !ok {
			p.Modules[module] = &ModuleRecord{
				Name:   module,
				File:   rel,
				Folder: folder,
			}
		}
	}

	// Link every ancestor folder to its parent.
	for cur := folder; cur != ""; {
		parent := FolderPath(cur)
		p.folder(parent).Subfolders[cur] = true
		cur = parent
	}

	return f
}

// folder returns the record for a folder path, creating it on first use.
func (p *Project) folder(folderPath string) *FolderRecord {
	f, ok := p.Folders[folderPath]
	if !ok {
		f = &FolderRecord{Path: folderPath, Subfolders: make(map[string]bool)}
		p.Folders[folderPath] = f
	}
	return f
}

// SortedFolderPaths returns the folder paths in lexical order.
func (p *Project) SortedFolderPaths() []string {
	paths := make([]string, 0, len(p.Folders))
	for fp := range p.Folders {
		paths = append(paths, fp)
	}
	sort.Strings(paths)
	return paths
}

// SortedFilePaths returns the file paths in lexical order.
func (p *Project) SortedFilePaths() []string {
	paths := make([]string, 0, len(p.Files))
	for fp := range p.Files {
		paths = append(paths, fp)
	}
	sort.Strings(paths)
	return paths
}

// SortedModuleNames returns the module names in lexical order.
func (p *Project) SortedModuleNames() []string {
	names := make([]string, 0, len(p.Modules))
	for n := range p.Modules {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SortedFunctionKeys returns the function keys ordered by their
// string form.
func (p *Project) SortedFunctionKeys() []FunctionKey {
	keys := make([]FunctionKey, 0, len(p.Functions))
	for k := range p.Functions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

// SortedClassKeys returns the class keys ordered by their string form.
func (p *Project) SortedClassKeys() []ClassKey {
	keys := make([]ClassKey, 0, len(p.Classes))
	for k := range p.Classes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}
