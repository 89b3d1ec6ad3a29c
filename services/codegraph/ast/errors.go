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

import "errors"

// Sentinel errors for parse failure conditions.
//
// These errors can be checked with errors.Is() to determine the
// category of failure without inspecting error messages.
var (
	// ErrSyntax indicates the source contains syntax errors and no
	// reliable structure could be extracted. Callers typically log
	// the file and continue with the rest of the project.
	ErrSyntax = errors.New("syntax error in source")

	// ErrInvalidContent indicates the provided content cannot be
	// processed at all.
	//
	// Common causes:
	//   - Nil content slice
	//   - Non-UTF-8 encoding
	//   - Binary file content
	ErrInvalidContent = errors.New("invalid content")

	// ErrFileTooLarge indicates the content exceeds the parser's
	// configured size limit.
	ErrFileTooLarge = errors.New("file exceeds size limit")
)
