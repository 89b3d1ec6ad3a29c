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

import "context"

// Parser defines the contract for language-specific structure parsing.
//
// Description:
//
//	Parser implementations extract the structural facts the graph needs
//	from a single source file: function and class definitions, imports,
//	and the call expressions inside each function body. Each
//	implementation handles one language and produces the common
//	FileStructure defined in types.go.
//
// Inputs:
//
//	ctx      - Context for cancellation. Implementations check ctx.Err()
//	           around long-running work.
//	content  - Raw source bytes. Must be valid UTF-8.
//	filePath - Project-relative slash path of the file, used for error
//	           reporting and recorded in the result.
//
// Outputs:
//
//	*FileStructure - The extracted structure. Nil on error.
//	error          - Non-nil when parsing failed. Syntax errors are
//	                 reported as ErrSyntax so callers can skip the file
//	                 and continue.
//
// Assumptions:
//
//   - Content is valid UTF-8 encoded text
//   - FilePath uses forward slashes as path separator
//   - Caller handles concurrent access if sharing parser instances
type Parser interface {
	// Parse extracts structure from source code.
	Parse(ctx context.Context, content []byte, filePath string) (*FileStructure, error)

	// Language returns the canonical lowercase name of the language
	// this parser handles, e.g. "python".
	Language() string

	// Extensions returns the file extensions this parser can handle,
	// including the leading dot.
	Extensions() []string
}

// Compile-time interface check.
var _ Parser = (*PythonParser)(nil)
