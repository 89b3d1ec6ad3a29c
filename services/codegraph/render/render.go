// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package render writes a graph document in the supported output
// formats: machine-readable JSON, an interactive HTML page, Graphviz
// DOT, and a plain-text architecture report.
package render

import (
	"fmt"
	"io"

	"github.com/AleutianAI/codegraph/services/codegraph/graph"
)

// Format identifies one output format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatHTML Format = "html"
	FormatDOT  Format = "dot"
	FormatText Format = "text"
)

// AllFormats lists every supported format in output order.
var AllFormats = []Format{FormatJSON, FormatHTML, FormatDOT, FormatText}

// Valid reports whether the format is supported.
func (f Format) Valid() bool {
	switch f {
	case FormatJSON, FormatHTML, FormatDOT, FormatText:
		return true
	}
	return false
}

// FileName returns the conventional output file name for a format.
func (f Format) FileName() string {
	switch f {
	case FormatJSON:
		return "code_graph.json"
	case FormatHTML:
		return "code_graph.html"
	case FormatDOT:
		return "code_graph.dot"
	case FormatText:
		return "code_analysis_report.txt"
	}
	return string(f) + ".out"
}

// Render writes the result in the requested format.
func Render(w io.Writer, f Format, result *graph.Result) error {
	switch f {
	case FormatJSON:
		return JSON(w, result)
	case FormatHTML:
		return HTML(w, result)
	case FormatDOT:
		return DOT(w, result)
	case FormatText:
		return Text(w, result)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
