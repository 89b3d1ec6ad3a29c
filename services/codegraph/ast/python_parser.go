// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ast extracts the structure of Python source files using
// tree-sitter: function and class definitions, imports, and the call
// expressions inside each function body.
package ast

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

const (
	// DefaultMaxFileSize is the largest file the parser accepts.
	DefaultMaxFileSize = 10 * 1024 * 1024

	// WarnFileSize triggers a log warning for unusually large files.
	WarnFileSize = 1 * 1024 * 1024
)

// PythonParser extracts structure from Python source using
// tree-sitter-python.
//
// A new tree-sitter parser instance is created per Parse call, so a
// single PythonParser is safe for concurrent use.
type PythonParser struct {
	maxFileSize int64
}

// PythonParserOption configures a PythonParser.
type PythonParserOption func(*PythonParser)

// WithMaxFileSize overrides the default file size limit.
func WithMaxFileSize(size int64) PythonParserOption {
	return func(p *PythonParser) {
		if size > 0 {
			p.maxFileSize = size
		}
	}
}

// NewPythonParser creates a Python parser with the given options.
func NewPythonParser(opts ...PythonParserOption) *PythonParser {
	p := &PythonParser{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Language returns "python".
func (p *PythonParser) Language() string {
	return "python"
}

// Extensions returns the file extensions this parser handles.
func (p *PythonParser) Extensions() []string {
	return []string{".py"}
}

// Parse extracts the structure of one Python file.
//
// Files with syntax errors return ErrSyntax so the caller can log and
// skip them; there is no partial extraction from broken trees.
func (p *PythonParser) Parse(ctx context.Context, content []byte, filePath string) (*FileStructure, error) {
	ctx, span := startParseSpan(ctx, filePath, len(content))
	defer span.End()

	start := time.Now()

	if err := ctx.Err(); err != nil {
		recordParseMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}

	if int64(len(content)) > p.maxFileSize {
		recordParseMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), p.maxFileSize)
	}

	if len(content) > WarnFileSize {
		slog.Warn("parsing large file",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)))
	}

	if !utf8.Valid(content) {
		recordParseMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}

	// New tree-sitter parser per call for thread safety.
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		recordParseMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		recordParseMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("%w: tree-sitter returned nil root node", ErrInvalidContent)
	}
	if root.HasError() {
		recordParseMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("%s: %w", filePath, ErrSyntax)
	}

	result := &FileStructure{
		Path:      filePath,
		LineCount: bytes.Count(content, []byte("\n")) + 1,
		Functions: make([]FunctionDef, 0),
		Classes:   make([]ClassDef, 0),
		Imports:   make([]ImportDef, 0),
	}

	result.Docstring = p.extractDocstring(root, content)
	p.extractImports(root, content, result)
	p.extractDefinitions(root, content, "", result)

	if err := ctx.Err(); err != nil {
		recordParseMetrics(ctx, time.Since(start), len(result.Functions), false)
		return nil, fmt.Errorf("parse canceled after extraction: %w", err)
	}

	setParseSpanResult(span, len(result.Functions), len(result.Classes), len(result.Imports))
	recordParseMetrics(ctx, time.Since(start), len(result.Functions), true)

	return result, nil
}

// extractImports walks the whole tree and records every import
// statement, including imports nested in functions or conditionals.
func (p *PythonParser) extractImports(node *sitter.Node, content []byte, result *FileStructure) {
	if node == nil {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case pyNodeImportStatement:
			p.processImport(child, content, result)
		case pyNodeImportFromStatement:
			p.processImportFrom(child, content, result)
		default:
			p.extractImports(child, content, result)
		}
	}
}

// processImport handles "import foo" and "import foo as bar".
func (p *PythonParser) processImport(node *sitter.Node, content []byte, result *FileStructure) {
	line := int(node.StartPoint().Row) + 1
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case pyNodeDottedName:
			result.Imports = append(result.Imports, ImportDef{
				Module: nodeText(child, content),
				Line:   line,
			})
		case pyNodeAliasedImport:
			var module, alias string
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case pyNodeDottedName:
					module = nodeText(gc, content)
				case pyNodeIdentifier:
					alias = nodeText(gc, content)
				}
			}
			if module != "" {
				result.Imports = append(result.Imports, ImportDef{
					Module: module,
					Alias:  alias,
					Line:   line,
				})
			}
		}
	}
}

// processImportFrom handles "from x import a, b", relative forms like
// "from ..pkg import c", and wildcard imports.
func (p *PythonParser) processImportFrom(node *sitter.Node, content []byte, result *FileStructure) {
	imp := ImportDef{Line: int(node.StartPoint().Row) + 1}
	sawImport := false

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import":
			sawImport = true
		case pyNodeRelativeImport:
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case pyNodeImportPrefix:
					imp.Dots = strings.Count(nodeText(gc, content), ".")
				case pyNodeDottedName:
					imp.Module = nodeText(gc, content)
				}
			}
		case pyNodeDottedName:
			name := nodeText(child, content)
			if sawImport {
				imp.Names = append(imp.Names, name)
			} else {
				imp.Module = name
			}
		case pyNodeAliasedImport:
			// from x import y as z: record the source name y.
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if gc.Type() == pyNodeDottedName || gc.Type() == pyNodeIdentifier {
					imp.Names = append(imp.Names, nodeText(gc, content))
					break
				}
			}
		case pyNodeWildcardImport:
			imp.Names = append(imp.Names, "*")
		case pyNodeIdentifier:
			if sawImport {
				imp.Names = append(imp.Names, nodeText(child, content))
			}
		}
	}

	if imp.Module != "" || imp.Dots > 0 {
		result.Imports = append(result.Imports, imp)
	}
}

// extractDefinitions walks a block and records every class and
// function definition. currentClass carries the enclosing class name
// into method bodies; functions nested inside a method keep it.
func (p *PythonParser) extractDefinitions(node *sitter.Node, content []byte, currentClass string, result *FileStructure) {
	if node == nil {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case pyNodeFunctionDefinition:
			p.processFunction(child, content, currentClass, nil, result)
		case pyNodeClassDefinition:
			p.processClass(child, content, nil, result)
		case pyNodeDecoratedDefinition:
			p.processDecorated(child, content, currentClass, result)
		case pyNodeImportStatement, pyNodeImportFromStatement:
			// Handled by extractImports.
		default:
			p.extractDefinitions(child, content, currentClass, result)
		}
	}
}

// processDecorated unwraps a decorated_definition and forwards the
// decorator names to the inner definition.
func (p *PythonParser) processDecorated(node *sitter.Node, content []byte, currentClass string, result *FileStructure) {
	decorators := p.extractDecorators(node, content)
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case pyNodeFunctionDefinition:
			p.processFunction(child, content, currentClass, decorators, result)
		case pyNodeClassDefinition:
			p.processClass(child, content, decorators, result)
		}
	}
}

// extractDecorators collects the decorator names on a
// decorated_definition, outermost first. Call decorators record the
// callee; attribute decorators keep their dotted form.
func (p *PythonParser) extractDecorators(node *sitter.Node, content []byte) []string {
	var decorators []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != pyNodeDecorator {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			gc := child.Child(j)
			switch gc.Type() {
			case pyNodeIdentifier, pyNodeAttribute:
				decorators = append(decorators, nodeText(gc, content))
			case pyNodeCall:
				if fn := gc.ChildByFieldName("function"); fn != nil {
					decorators = append(decorators, nodeText(fn, content))
				}
			}
		}
	}
	return decorators
}

// processFunction records one function or method definition, then
// recurses into its body so nested definitions are captured too.
func (p *PythonParser) processFunction(node *sitter.Node, content []byte, currentClass string, decorators []string, result *FileStructure) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	fn := FunctionDef{
		Name:       nodeText(nameNode, content),
		Class:      currentClass,
		Decorators: decorators,
		Line:       int(node.StartPoint().Row) + 1,
		EndLine:    int(node.EndPoint().Row) + 1,
	}

	fn.Params = p.extractParams(node.ChildByFieldName("parameters"), content)

	if ret := node.ChildByFieldName("return_type"); ret != nil {
		fn.ReturnType = nodeText(ret, content)
	}

	body := node.ChildByFieldName("body")
	if body != nil {
		fn.Docstring = p.extractDocstring(body, content)
		fn.Calls = p.extractCalls(body, content)
	}

	result.Functions = append(result.Functions, fn)

	if body != nil {
		p.extractDefinitions(body, content, currentClass, result)
	}
}

// processClass records one class definition and recurses into its
// body with the class name as context.
func (p *PythonParser) processClass(node *sitter.Node, content []byte, decorators []string, result *FileStructure) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	cls := ClassDef{
		Name:       nodeText(nameNode, content),
		Decorators: decorators,
		Line:       int(node.StartPoint().Row) + 1,
		EndLine:    int(node.EndPoint().Row) + 1,
	}

	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := 0; i < int(supers.ChildCount()); i++ {
			child := supers.Child(i)
			switch child.Type() {
			case pyNodeIdentifier, pyNodeAttribute, "subscript":
				cls.Bases = append(cls.Bases, nodeText(child, content))
			case pyNodeKeywordArgument:
				// metaclass=... is not a base class.
			}
		}
	}

	body := node.ChildByFieldName("body")
	if body != nil {
		cls.Docstring = p.extractDocstring(body, content)
		cls.Methods = p.collectMethodNames(body, content)
	}

	result.Classes = append(result.Classes, cls)

	if body != nil {
		p.extractDefinitions(body, content, cls.Name, result)
	}
}

// collectMethodNames lists the functions defined directly in a class
// body, in source order.
func (p *PythonParser) collectMethodNames(body *sitter.Node, content []byte) []string {
	var methods []string
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case pyNodeFunctionDefinition:
			if name := child.ChildByFieldName("name"); name != nil {
				methods = append(methods, nodeText(name, content))
			}
		case pyNodeDecoratedDefinition:
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if gc.Type() == pyNodeFunctionDefinition {
					if name := gc.ChildByFieldName("name"); name != nil {
						methods = append(methods, nodeText(name, content))
					}
				}
			}
		}
	}
	return methods
}

// extractParams converts a parameters node into Param values. Splat
// parameters (*args, **kwargs) and bare separators (*, /) are skipped.
func (p *PythonParser) extractParams(paramsNode *sitter.Node, content []byte) []Param {
	if paramsNode == nil {
		return nil
	}

	var params []Param
	for i := 0; i < int(paramsNode.ChildCount()); i++ {
		child := paramsNode.Child(i)
		switch child.Type() {
		case pyNodeIdentifier:
			params = append(params, Param{Name: nodeText(child, content)})

		case pyNodeTypedParameter:
			param := Param{}
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case pyNodeIdentifier:
					param.Name = nodeText(gc, content)
				case pyNodeType:
					param.Type = nodeText(gc, content)
				case pyNodeListSplatPattern, pyNodeDictSplatPattern:
					param.Name = ""
				}
			}
			if param.Name != "" {
				params = append(params, param)
			}

		case pyNodeDefaultParameter, pyNodeTypedDefaultParameter:
			param := Param{}
			if name := child.ChildByFieldName("name"); name != nil && name.Type() == pyNodeIdentifier {
				param.Name = nodeText(name, content)
			}
			if typ := child.ChildByFieldName("type"); typ != nil {
				param.Type = nodeText(typ, content)
			}
			if val := child.ChildByFieldName("value"); val != nil {
				param.Default = nodeText(val, content)
			}
			if param.Name != "" {
				params = append(params, param)
			}

		case pyNodeListSplatPattern, pyNodeDictSplatPattern:
			// *args / **kwargs are not counted as parameters.
		}
	}
	return params
}

// extractDocstring returns the leading string literal of a block with
// its quotes stripped, or "".
func (p *PythonParser) extractDocstring(block *sitter.Node, content []byte) string {
	for i := 0; i < int(block.ChildCount()); i++ {
		child := block.Child(i)
		if child.Type() == "comment" {
			continue
		}
		if child.Type() != pyNodeExpressionStatement {
			return ""
		}
		if child.ChildCount() == 0 {
			return ""
		}
		str := child.Child(0)
		if str.Type() != pyNodeString {
			return ""
		}
		return stripQuotes(nodeText(str, content))
	}
	return ""
}

// extractCalls walks an entire function body, nested definitions
// included, and records every call expression.
func (p *PythonParser) extractCalls(body *sitter.Node, content []byte) []CallRef {
	var calls []CallRef

	stack := []*sitter.Node{body}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil {
			continue
		}

		if node.Type() == pyNodeCall {
			if ref, ok := p.extractCallRef(node, content); ok {
				calls = append(calls, ref)
			}
		}

		// Children pushed in reverse for left-to-right order.
		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			if child := node.Child(i); child != nil {
				stack = append(stack, child)
			}
		}
	}
	return calls
}

// extractCallRef converts one call node into a CallRef.
//
// The function child of a call node can be:
//   - identifier: simple call like func()
//   - attribute:  method call like self.method() or obj.func()
//   - call:       chained call like factory()()
func (p *PythonParser) extractCallRef(node *sitter.Node, content []byte) (CallRef, bool) {
	funcNode := node.ChildByFieldName("function")
	if funcNode == nil && node.ChildCount() > 0 {
		funcNode = node.Child(0)
	}
	if funcNode == nil {
		return CallRef{}, false
	}

	ref := CallRef{Line: int(node.StartPoint().Row) + 1}

	switch funcNode.Type() {
	case pyNodeIdentifier:
		ref.Name = nodeText(funcNode, content)

	case pyNodeAttribute:
		objectNode := funcNode.ChildByFieldName("object")
		attrNode := funcNode.ChildByFieldName("attribute")
		if attrNode != nil {
			ref.Name = nodeText(attrNode, content)
		}
		if objectNode != nil {
			receiver := nodeText(objectNode, content)
			// super() calls normalize to the bare receiver name.
			if objectNode.Type() == pyNodeCall && strings.HasPrefix(receiver, "super") {
				receiver = "super"
			}
			ref.Object = receiver
		}

	default:
		return CallRef{}, false
	}

	if ref.Name == "" {
		return CallRef{}, false
	}
	return ref, true
}

// nodeText returns the source text covered by a node.
func nodeText(node *sitter.Node, content []byte) string {
	return string(content[node.StartByte():node.EndByte()])
}

// stripQuotes removes Python string quoting from a literal, trying
// the triple-quoted forms first. String prefixes (r, b, f, u) are
// dropped before the quotes are examined.
func stripQuotes(s string) string {
	s = strings.TrimLeft(s, "rRbBfFuU")
	for _, q := range []string{`"""`, "'''", `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return strings.TrimSpace(s[len(q) : len(s)-len(q)])
		}
	}
	return strings.TrimSpace(s)
}
