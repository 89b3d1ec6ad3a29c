// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package render

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/AleutianAI/codegraph/services/codegraph/graph"
)

// Text writes the plain-text architecture report: summary statistics,
// the project hierarchy, coupling and complexity rankings, a
// per-folder function listing, import relationships, and the top call
// chains.
func Text(w io.Writer, result *graph.Result) error {
	r := &textReport{w: bufio.NewWriter(w), result: result}
	r.write()
	return r.w.Flush()
}

type textReport struct {
	w      *bufio.Writer
	result *graph.Result
}

const textRule = 80

func (r *textReport) line(format string, args ...any) {
	fmt.Fprintf(r.w, format+"\n", args...)
}

func (r *textReport) rule(ch string) {
	r.line("%s", strings.Repeat(ch, textRule))
}

func (r *textReport) write() {
	r.rule("=")
	r.line("PYTHON CODE ANALYSIS REPORT")
	r.rule("=")
	r.line("")

	r.writeSummary()
	r.writeHierarchy()
	r.writeMostCalled()
	r.writeMostCalling()
	r.writeFunctionsByFolder()
	r.writeImports()
	r.writeCallChains()

	r.line("")
	r.rule("=")
}

func (r *textReport) writeSummary() {
	s := r.result.Summary
	r.line("SUMMARY STATISTICS")
	r.rule("-")
	r.line("Total Folders:               %d", s.TotalFolders)
	r.line("Total Files Analyzed:        %d", s.TotalFiles)
	r.line("Total Modules:               %d", s.TotalModules)
	r.line("Total Functions:             %d", s.TotalFunctions)
	r.line("Total Classes:               %d", s.TotalClasses)
	r.line("Total Parameters:            %d", s.TotalParameters)
	r.line("Functions with Docstrings:   %d", s.FunctionsWithDocstrings)
	r.line("Functions Calling Others:    %d", s.FunctionsThatCallOthers)
	r.line("Functions Being Called:      %d", s.FunctionsThatAreCalled)
	r.line("Avg Parameters per Function: %.2f", s.AverageParametersPerFunction)
	r.line("")
}

func (r *textReport) writeHierarchy() {
	r.line("PROJECT HIERARCHY")
	r.rule("-")
	r.walkFolder("", 0, false)
	r.line("")
}

// walkFolder prints one folder and recurses into its subfolders.
// When withFunctions is set, each module's functions are listed too.
func (r *textReport) walkFolder(folderPath string, indent int, withFunctions bool) {
	folder, ok := r.result.Hierarchy.Folders[folderPath]
	if !ok {
		return
	}

	name := "ROOT"
	if folderPath != "" {
		name = path.Base(folderPath)
	}

	pad := strings.Repeat("  ", indent)
	if withFunctions {
		r.line("")
		r.line("%s\U0001F4C1 %s/", pad, name)
	} else {
		r.line("%s\U0001F4C1 %s/ (%d files, %d subfolders)",
			pad, name, len(folder.Files), len(folder.Subfolders))
	}

	files := append([]string(nil), folder.Files...)
	sort.Strings(files)
	for _, filePath := range files {
		file, ok := r.result.Hierarchy.Files[filePath]
		if !ok {
			continue
		}
		if file.IsPython {
			if withFunctions {
				r.writePythonFileFunctions(file, indent)
			} else {
				r.writePythonFileSummary(file, indent)
			}
			continue
		}
		ext := file.Extension
		if ext == "" {
			ext = "no extension"
		}
		r.line("%s\U0001F4C4 %s (%s)", strings.Repeat("  ", indent+1), file.Name, ext)
	}

	subfolders := append([]string(nil), folder.Subfolders...)
	sort.Strings(subfolders)
	for _, sub := range subfolders {
		r.walkFolder(sub, indent+1, withFunctions)
	}
}

func (r *textReport) writePythonFileSummary(file graph.FileInfo, indent int) {
	r.line("%s\U0001F40D %s (Python - module: %s, %d functions)",
		strings.Repeat("  ", indent+1), file.Name, file.Module, len(file.Functions))

	if module, ok := r.result.Hierarchy.Modules[file.Module]; ok && len(module.Classes) > 0 {
		r.line("%s   └─ Module: %s (%d classes)",
			strings.Repeat("  ", indent+2), file.Module, len(module.Classes))
	}
}

func (r *textReport) writePythonFileFunctions(file graph.FileInfo, indent int) {
	r.line("%s\U0001F40D %s (Python)", strings.Repeat("  ", indent+1), file.Name)

	module, ok := r.result.Hierarchy.Modules[file.Module]
	if !ok {
		return
	}
	r.line("%s   Module: %s", strings.Repeat("  ", indent+2), file.Module)

	funcs := r.functionNodes(module.Functions)
	sort.SliceStable(funcs, func(i, j int) bool { return funcs[i].Line < funcs[j].Line })

	for _, fn := range funcs {
		label := fn.Label
		if fn.Class != "" {
			label = fn.Class + "." + label
		}
		r.line("%s  • %s (%s)", strings.Repeat("  ", indent+3), label, fn.Type)

		if len(fn.Parameters) > 0 {
			params := strings.Join(truncList(fn.Parameters, 2), ", ")
			r.line("%s    Params: %s", strings.Repeat("  ", indent+4), params)
		}
		if fn.CalledByCount != nil && *fn.CalledByCount > 0 {
			r.line("%s    Called by: %d functions", strings.Repeat("  ", indent+4), *fn.CalledByCount)
		}
		if fn.CallCount != nil && *fn.CallCount > 0 {
			r.line("%s    Calls: %d functions", strings.Repeat("  ", indent+4), *fn.CallCount)
		}
	}
}

// functionNodes resolves function node IDs to their nodes.
func (r *textReport) functionNodes(ids []string) []graph.Node {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var nodes []graph.Node
	for _, n := range r.result.Nodes {
		if wanted[n.ID] && (n.Type == graph.NodeFunction || n.Type == graph.NodeMethod) {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func (r *textReport) allFunctionNodes() []graph.Node {
	var nodes []graph.Node
	for _, n := range r.result.Nodes {
		if n.Type == graph.NodeFunction || n.Type == graph.NodeMethod {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func (r *textReport) writeMostCalled() {
	r.line("MOST DEPENDED-UPON FUNCTIONS (High Coupling)")
	r.rule("-")

	nodes := r.allFunctionNodes()
	sort.SliceStable(nodes, func(i, j int) bool {
		return derefInt(nodes[i].CalledByCount) > derefInt(nodes[j].CalledByCount)
	})

	rank := 1
	for _, n := range nodes {
		if rank > 10 || derefInt(n.CalledByCount) == 0 {
			break
		}
		r.line("%d. %s (in %s)", rank, n.Label, n.File)
		r.line("   Module: %s", n.Module)
		r.line("   Called by %d functions", derefInt(n.CalledByCount))
		if n.Class != "" {
			r.line("   Class: %s", n.Class)
		}
		r.line("")
		rank++
	}
}

func (r *textReport) writeMostCalling() {
	r.line("FUNCTIONS WITH MOST CALLS (Complexity Indicators)")
	r.rule("-")

	nodes := r.allFunctionNodes()
	sort.SliceStable(nodes, func(i, j int) bool {
		return derefInt(nodes[i].CallCount) > derefInt(nodes[j].CallCount)
	})

	rank := 1
	for _, n := range nodes {
		if rank > 10 || derefInt(n.CallCount) == 0 {
			break
		}
		r.line("%d. %s (in %s)", rank, n.Label, n.File)
		r.line("   Module: %s", n.Module)
		r.line("   Calls %d other functions", derefInt(n.CallCount))
		if n.Class != "" {
			r.line("   Class: %s", n.Class)
		}
		r.line("")
		rank++
	}
}

func (r *textReport) writeFunctionsByFolder() {
	r.line("FUNCTIONS BY FOLDER / FILE / MODULE")
	r.rule("-")
	r.walkFolder("", 0, true)
}

func (r *textReport) writeImports() {
	if len(r.result.Imports) == 0 {
		return
	}

	r.line("")
	r.line("IMPORT RELATIONSHIPS")
	r.rule("-")

	files := make([]string, 0, len(r.result.Imports))
	for f := range r.result.Imports {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, filePath := range files {
		imports := r.result.Imports[filePath]
		if len(imports) == 0 {
			continue
		}
		r.line("")
		r.line("%s imports:", filePath)
		for _, imp := range imports {
			importType := "absolute"
			if imp.IsRelative {
				importType = "relative"
			}
			items := strings.Join(truncList(imp.Imports, 5), ", ")
			r.line("  from %s import %s", imp.From, items)
			if imp.ResolvedModule != "" && imp.ResolvedModule != imp.From {
				r.line("    → Resolved to: %s", imp.ResolvedModule)
			}
			r.line("    Type: %s", importType)
		}
	}
}

func (r *textReport) writeCallChains() {
	r.line("")
	r.line("FUNCTION CALL CHAINS (Top 10)")
	r.rule("-")

	byID := make(map[string]graph.Node, len(r.result.Nodes))
	for _, n := range r.result.Nodes {
		byID[n.ID] = n
	}

	count := 0
	for _, edge := range r.result.Edges {
		if edge.Type != graph.EdgeCalls || count >= 10 {
			continue
		}
		source, okS := byID[edge.Source]
		target, okT := byID[edge.Target]
		if !okS || !okT {
			continue
		}
		count++
		r.line("%d. %s -> %s", count, source.Label, target.Label)
		if source.File != target.File {
			r.line("   Cross-file: %s -> %s", source.File, target.File)
		}
	}
}

// truncList caps a list at n entries, appending a "+k more" marker.
func truncList(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	out := append([]string(nil), items[:n]...)
	return append(out, fmt.Sprintf("... (+%d more)", len(items)-n))
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
