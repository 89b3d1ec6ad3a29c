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
	"path"
	"sort"
	"strings"

	"github.com/AleutianAI/codegraph/services/codegraph/analyzer"
)

// Build converts an analyzed project into the graph document.
//
// Output order is deterministic: nodes and edges are emitted in
// sorted key order, so the same project always produces the same
// document.
func Build(project *analyzer.Project) *Result {
	b := &builder{project: project}
	return b.build()
}

type builder struct {
	project *analyzer.Project
	result  *Result
}

func (b *builder) build() *Result {
	b.result = &Result{
		Nodes:   make([]Node, 0),
		Edges:   make([]Edge, 0),
		Imports: make(map[string][]ImportInfo),
	}

	b.addFolderNodes()
	b.addFileNodes()
	b.addModuleNodes()
	b.addFunctionNodes()

	b.addContainmentEdges()
	b.addCallEdges()
	b.addImportEdges()

	b.result.Summary = b.summary()
	b.result.Hierarchy = b.hierarchy()
	b.addImportInfo()

	return b.result
}

// addFolderNodes emits one node per folder. The project root itself
// is not a node; its children hang directly in the graph.
func (b *builder) addFolderNodes() {
	for _, folderPath := range b.project.SortedFolderPaths() {
		if folderPath == "" {
			continue
		}
		folder := b.project.Folders[folderPath]
		b.result.Nodes = append(b.result.Nodes, Node{
			ID:             "folder::" + folderPath,
			Label:          path.Base(folderPath),
			Type:           NodeFolder,
			Path:           folderPath,
			FileCount:      intPtr(len(folder.Files)),
			SubfolderCount: intPtr(len(folder.Subfolders)),
		})
	}
}

func (b *builder) addFileNodes() {
	for _, filePath := range b.project.SortedFilePaths() {
		file := b.project.Files[filePath]
		b.result.Nodes = append(b.result.Nodes, Node{
			ID:            "file::" + filePath,
			Label:         file.Name,
			Type:          NodeFile,
			Path:          filePath,
			Extension:     file.Extension,
			Module:        file.Module,
			Folder:        strPtr(file.Folder),
			FunctionCount: intPtr(len(file.Functions)),
			IsPython:      boolPtr(file.IsSource),
		})
	}
}

func (b *builder) addModuleNodes() {
	for _, name := range b.project.SortedModuleNames() {
		module := b.project.Modules[name]
		label := name
		if i := strings.LastIndex(name, "."); i >= 0 {
			label = name[i+1:]
		}
		b.result.Nodes = append(b.result.Nodes, Node{
			ID:            "module::" + name,
			Label:         label,
			Type:          NodeModule,
			Name:          name,
			File:          module.File,
			Folder:        strPtr(module.Folder),
			FunctionCount: intPtr(len(module.Functions)),
			ClassCount:    intPtr(len(module.Classes)),
		})
	}
}

func (b *builder) addFunctionNodes() {
	for _, key := range b.project.SortedFunctionKeys() {
		fn := b.project.Functions[key]

		nodeType := NodeFunction
		if key.Class != "" {
			nodeType = NodeMethod
		}

		params := make([]string, 0, len(fn.Def.Params))
		for _, p := range fn.Def.Params {
			if p.Type != "" {
				params = append(params, p.Name+": "+p.Type)
			} else {
				params = append(params, p.Name)
			}
		}

		b.result.Nodes = append(b.result.Nodes, Node{
			ID:             key.String(),
			Label:          key.Name,
			Type:           nodeType,
			File:           key.File,
			Module:         analyzer.ModuleName(key.File),
			Folder:         strPtr(analyzer.FolderPath(key.File)),
			Line:           fn.Def.Line,
			Parameters:     params,
			ParameterCount: intPtr(len(params)),
			HasDocstring:   boolPtr(fn.Def.Docstring != ""),
			CallCount:      intPtr(len(fn.Def.Calls)),
			CalledByCount:  intPtr(len(fn.CalledBy)),
			Class:          key.Class,
		})
	}
}

// addContainmentEdges emits the hierarchy edges:
// folder -> folder, folder -> file, file -> module, module -> function.
func (b *builder) addContainmentEdges() {
	for _, folderPath := range b.project.SortedFolderPaths() {
		if folderPath == "" {
			continue
		}
		parent := analyzer.FolderPath(folderPath)
		if parent == "" {
			// Children of the root have no folder parent node.
			continue
		}
		if _, ok := b.project.Folders[parent]; ok {
			b.result.Edges = append(b.result.Edges, Edge{
				Source:       "folder::" + parent,
				Target:       "folder::" + folderPath,
				Type:         EdgeContains,
				Relationship: RelFolderContainsFolder,
			})
		}
	}

	for _, filePath := range b.project.SortedFilePaths() {
		file := b.project.Files[filePath]
		if file.Folder != "" {
			b.result.Edges = append(b.result.Edges, Edge{
				Source:       "folder::" + file.Folder,
				Target:       "file::" + filePath,
				Type:         EdgeContains,
				Relationship: RelFolderContainsFile,
			})
		}
		if file.Module != "" {
			b.result.Edges = append(b.result.Edges, Edge{
				Source:       "file::" + filePath,
				Target:       "module::" + file.Module,
				Type:         EdgeDefines,
				Relationship: RelFileDefinesModule,
			})
		}
	}

	for _, name := range b.project.SortedModuleNames() {
		for _, fnKey := range b.project.Modules[name].Functions {
			b.result.Edges = append(b.result.Edges, Edge{
				Source:       "module::" + name,
				Target:       fnKey.String(),
				Type:         EdgeContains,
				Relationship: RelModuleContainsFunc,
			})
		}
	}
}

// addCallEdges emits a calls edge for every resolved call and a
// called_by edge in the reverse direction.
func (b *builder) addCallEdges() {
	keys := b.project.SortedFunctionKeys()

	for _, key := range keys {
		fn := b.project.Functions[key]
		for _, target := range sortedKeySet(fn.Resolved) {
			b.result.Edges = append(b.result.Edges, Edge{
				Source:       key.String(),
				Target:       target.String(),
				Type:         EdgeCalls,
				Relationship: RelFunctionCall,
			})
		}
	}

	for _, key := range keys {
		fn := b.project.Functions[key]
		for _, caller := range sortedKeySet(fn.CalledBy) {
			b.result.Edges = append(b.result.Edges, Edge{
				Source:       caller.String(),
				Target:       key.String(),
				Type:         EdgeCalledBy,
				Relationship: RelDependency,
			})
		}
	}
}

// addImportEdges emits file -> file and module -> module edges for
// every import that resolves to a module inside the project.
func (b *builder) addImportEdges() {
	moduleNames := b.project.SortedModuleNames()

	for _, filePath := range b.project.SortedFilePaths() {
		imports, ok := b.project.Imports[filePath]
		if !ok {
			continue
		}
		importingModule := b.project.Files[filePath].Module

		for _, imp := range imports {
			targetModule, found := b.lookupModule(imp, moduleNames)
			if !found {
				continue
			}

			b.result.Edges = append(b.result.Edges, Edge{
				Source:       "file::" + filePath,
				Target:       "file::" + b.project.Modules[targetModule].File,
				Type:         EdgeImports,
				Relationship: RelFileImportsFromFile,
				Imports:      imp.Names,
				IsRelative:   boolPtr(imp.IsRelative),
			})
			if importingModule != "" {
				b.result.Edges = append(b.result.Edges, Edge{
					Source:       "module::" + importingModule,
					Target:       "module::" + targetModule,
					Type:         EdgeImports,
					Relationship: RelModuleImportsFromMod,
					Imports:      imp.Names,
					IsRelative:   boolPtr(imp.IsRelative),
				})
			}
		}
	}
}

// lookupModule finds the project module an import points at. Each
// candidate is tried exactly first, then as a dotted suffix of a
// known module, so "models" still matches "sample_project.models".
func (b *builder) lookupModule(imp analyzer.ImportRecord, moduleNames []string) (string, bool) {
	for _, candidate := range imp.Targets() {
		if _, ok := b.project.Modules[candidate]; ok {
			return candidate, true
		}
		for _, known := range moduleNames {
			if strings.HasSuffix(known, "."+candidate) {
				return known, true
			}
		}
	}
	return "", false
}

func (b *builder) summary() Summary {
	s := Summary{
		TotalFiles:     len(b.project.Files),
		TotalModules:   len(b.project.Modules),
		TotalFunctions: len(b.project.Functions),
		TotalClasses:   len(b.project.Classes),
	}

	for folderPath := range b.project.Folders {
		if folderPath != "" {
			s.TotalFolders++
		}
	}

	for _, fn := range b.project.Functions {
		s.TotalParameters += len(fn.Def.Params)
		if fn.Def.Docstring != "" {
			s.FunctionsWithDocstrings++
		}
		if len(fn.Def.Calls) > 0 {
			s.FunctionsThatCallOthers++
		}
		if len(fn.CalledBy) > 0 {
			s.FunctionsThatAreCalled++
		}
	}

	if s.TotalFunctions > 0 {
		s.AverageParametersPerFunction = float64(s.TotalParameters) / float64(s.TotalFunctions)
	}

	return s
}

func (b *builder) hierarchy() Hierarchy {
	h := Hierarchy{
		Folders: make(map[string]FolderInfo, len(b.project.Folders)),
		Files:   make(map[string]FileInfo, len(b.project.Files)),
		Modules: make(map[string]ModuleInfo, len(b.project.Modules)),
	}

	for folderPath, folder := range b.project.Folders {
		subfolders := make([]string, 0, len(folder.Subfolders))
		for sub := range folder.Subfolders {
			subfolders = append(subfolders, sub)
		}
		sort.Strings(subfolders)

		files := append([]string(nil), folder.Files...)
		sort.Strings(files)

		h.Folders[folderPath] = FolderInfo{
			Path:       folderPath,
			Files:      files,
			Subfolders: subfolders,
		}
	}

	for filePath, file := range b.project.Files {
		h.Files[filePath] = FileInfo{
			Path:      filePath,
			Name:      file.Name,
			Extension: file.Extension,
			Module:    file.Module,
			Folder:    file.Folder,
			Functions: keyStrings(file.Functions),
			IsPython:  file.IsSource,
		}
	}

	for name, module := range b.project.Modules {
		classes := make([]string, 0, len(module.Classes))
		for _, cls := range module.Classes {
			classes = append(classes, cls.String())
		}
		h.Modules[name] = ModuleInfo{
			Name:      name,
			File:      module.File,
			Folder:    module.Folder,
			Functions: keyStrings(module.Functions),
			Classes:   classes,
		}
	}

	return h
}

func (b *builder) addImportInfo() {
	for filePath, imports := range b.project.Imports {
		infos := make([]ImportInfo, 0, len(imports))
		for _, imp := range imports {
			names := imp.Names
			if names == nil {
				names = []string{}
			}
			infos = append(infos, ImportInfo{
				From:           imp.From,
				ResolvedModule: imp.Resolved,
				Imports:        names,
				IsRelative:     imp.IsRelative,
				Line:           imp.Line,
			})
		}
		b.result.Imports[filePath] = infos
	}
}

func keyStrings(keys []analyzer.FunctionKey) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.String())
	}
	return out
}

func sortedKeySet(set map[analyzer.FunctionKey]bool) []analyzer.FunctionKey {
	keys := make([]analyzer.FunctionKey, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}
