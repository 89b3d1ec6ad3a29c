// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

// Param is one formal parameter of a function definition.
type Param struct {
	// Name is the parameter identifier, without * or ** markers.
	Name string

	// Type is the annotation text, or "" when unannotated.
	Type string

	// Default is the default-value expression text, or "" when the
	// parameter has no default.
	Default string
}

// CallRef is one call expression observed inside a function body.
//
// The parser records calls syntactically; resolution to a concrete
// target happens later, with knowledge of the whole project.
type CallRef struct {
	// Name is the called identifier: "foo" for foo(), "bar" for
	// self.bar() or obj.bar().
	Name string

	// Object is the receiver expression for attribute calls: "self"
	// for self.bar(), "obj" for obj.bar(), the innermost object for
	// chained attributes. Empty for plain identifier calls.
	Object string

	// Line is the 1-based line of the call expression.
	Line int
}

// FunctionDef describes one function or method definition.
type FunctionDef struct {
	// Name is the function identifier.
	Name string

	// Class is the enclosing class name, or "" for module-level
	// functions. Functions nested inside a method keep the method's
	// class.
	Class string

	// Params are the formal parameters in declaration order. For
	// methods this includes self/cls.
	Params []Param

	// ReturnType is the return annotation text, or "".
	ReturnType string

	// Docstring is the leading string literal of the body with its
	// quotes stripped, or "".
	Docstring string

	// Decorators are the decorator names applied to the definition,
	// outermost first. Attribute decorators keep their dotted form;
	// call decorators record the callee.
	Decorators []string

	// Line and EndLine are the 1-based line span of the definition.
	Line    int
	EndLine int

	// Calls are the call expressions found anywhere in the body,
	// including nested functions.
	Calls []CallRef
}

// ClassDef describes one class definition.
type ClassDef struct {
	// Name is the class identifier.
	Name string

	// Bases are the base-class expressions from the argument list,
	// in order. Keyword arguments (metaclass=...) are excluded.
	Bases []string

	// Docstring is the leading string literal of the body with its
	// quotes stripped, or "".
	Docstring string

	// Decorators are the decorator names applied to the definition.
	Decorators []string

	// Methods are the names of functions defined directly in the
	// class body, in source order.
	Methods []string

	// Line and EndLine are the 1-based line span of the definition.
	Line    int
	EndLine int
}

// ImportDef describes one import statement.
//
// For "import a.b as c" the statement yields one ImportDef per
// imported module with Module set and Names empty. For
// "from x import a, b" it yields one ImportDef with Module "x" and
// Names listing the imported symbols. A wildcard import records the
// single name "*".
type ImportDef struct {
	// Module is the dotted module path after any leading dots.
	// Empty for dots-only imports like "from . import x".
	Module string

	// Names are the symbols imported from Module, without aliases.
	// Empty for plain "import x" statements.
	Names []string

	// Alias is the binding name for plain imports with "as", or "".
	Alias string

	// Dots is the number of leading dots for relative imports;
	// zero for absolute imports.
	Dots int

	// Line is the 1-based line of the statement.
	Line int
}

// IsRelative reports whether the import is package-relative.
func (i ImportDef) IsRelative() bool {
	return i.Dots > 0
}

// FileStructure is everything the parser extracts from one file.
type FileStructure struct {
	// Path is the project-relative slash path the content came from.
	Path string

	// Docstring is the module docstring with quotes stripped, or "".
	Docstring string

	// Functions lists every function and method in the file,
	// including nested definitions.
	Functions []FunctionDef

	// Classes lists every class in the file, including nested ones.
	Classes []ClassDef

	// Imports lists every import statement in the file.
	Imports []ImportDef

	// LineCount is the number of lines in the file.
	LineCount int
}
