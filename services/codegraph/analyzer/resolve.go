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
	"strings"

	"github.com/AleutianAI/codegraph/services/codegraph/ast"
)

// ModuleName converts a project-relative source path to a dotted
// module name: "pkg/models.py" becomes "pkg.models" and
// "pkg/__init__.py" becomes "pkg".
func ModuleName(rel string) string {
	name := strings.TrimSuffix(rel, path.Ext(rel))
	name = strings.ReplaceAll(name, "/", ".")
	name = strings.TrimSuffix(name, ".__init__")
	return name
}

// FolderPath returns the containing directory of a relative path,
// with "" for the project root.
func FolderPath(rel string) string {
	dir := path.Dir(rel)
	if dir == "." {
		return ""
	}
	return dir
}

// ResolveRelativeImport converts a relative import into a
// project-absolute module name.
//
// For a file whose module is "pkg.sub.mod", one dot refers to
// "pkg.sub", two dots to "pkg", and so on. Imports that climb above
// the project root are unresolvable and return ok=false.
func ResolveRelativeImport(currentFile string, dots int, module string) (string, bool) {
	if dots == 0 {
		return module, true
	}

	parts := strings.Split(ModuleName(currentFile), ".")
	if dots > len(parts) {
		return "", false
	}

	base := strings.Join(parts[:len(parts)-dots], ".")
	switch {
	case module == "":
		return base, true
	case base == "":
		return module, true
	default:
		return base + "." + module, true
	}
}

// resolveImport converts one parsed import into an ImportRecord.
func resolveImport(currentFile string, imp ast.ImportDef) ImportRecord {
	rec := ImportRecord{
		From:       strings.Repeat(".", imp.Dots) + imp.Module,
		Names:      imp.Names,
		IsRelative: imp.IsRelative(),
		Line:       imp.Line,
	}
	if resolved, ok := ResolveRelativeImport(currentFile, imp.Dots, imp.Module); ok {
		rec.Resolved = resolved
	}
	return rec
}

// resolveCalls links every recorded call expression to the function
// records it can refer to, maintaining the Resolved/CalledBy sets
// symmetrically.
//
// Resolution is file-local: a call first tries the exact key (same
// class for self/cls/super receivers, module level otherwise), then
// falls back to every same-file function with a matching bare name.
// The fallback deliberately ignores class qualification; a call to
// x() links every function named x in the file.
func (p *Project) resolveCalls() {
	// Bare-name index per file for the fallback pass.
	byFileName := make(map[string]map[string][]FunctionKey)
	for key := range p.Functions {
		names := byFileName[key.File]
		if names == nil {
			names = make(map[string][]FunctionKey)
			byFileName[key.File] = names
		}
		names[key.Name] = append(names[key.Name], key)
	}

	for key, fn := range p.Functions {
		for _, call := range fn.Def.Calls {
			target := FunctionKey{File: key.File, Name: call.Name}
			if key.Class != "" && isSelfReceiver(call.Object) {
				target.Class = key.Class
			}

			if _, ok := p.Functions[target]; ok {
				p.link(key, target)
				continue
			}

			for _, candidate := range byFileName[key.File][call.Name] {
				p.link(key, candidate)
			}
		}
	}
}

// link records a resolved call edge in both directions. Recursive
// calls produce a self edge.
func (p *Project) link(caller, callee FunctionKey) {
	from := p.Functions[caller]
	to := p.Functions[callee]
	if from.Resolved == nil {
		from.Resolved = make(map[FunctionKey]bool)
	}
	if to.CalledBy == nil {
		to.CalledBy = make(map[FunctionKey]bool)
	}
	from.Resolved[callee] = true
	to.CalledBy[caller] = true
}

// isSelfReceiver reports whether a call receiver refers to the
// enclosing class instance.
func isSelfReceiver(object string) bool {
	return object == "self" || object == "cls" || object == "super"
}
