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
	"strings"

	"github.com/AleutianAI/codegraph/services/codegraph/graph"
)

// dotIDSanitizer maps graph node IDs to valid DOT identifiers.
var dotIDSanitizer = strings.NewReplacer("::", "_", ".", "_", "\\", "_", "/", "_")

// DOT writes the graph in Graphviz DOT format. Node shape and fill
// follow the node type; edge color and style follow the relationship.
func DOT(w io.Writer, result *graph.Result) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "digraph CodeGraph {")
	fmt.Fprintln(bw, "  rankdir=LR;")
	fmt.Fprintln(bw, "  node [shape=box, style=rounded];")
	fmt.Fprintln(bw)

	for _, node := range result.Nodes {
		shape, style, color := dotNodeStyle(node)
		label := strings.ReplaceAll(node.Label, `"`, `\"`)
		label = strings.ReplaceAll(label, "\n", " ")

		styleAttr := style
		if strings.Contains(style, ",") {
			styleAttr = `"` + style + `"`
		}

		fmt.Fprintf(bw, "  %q [label=\"%s\", shape=%s, style=%s, fillcolor=%q];\n",
			dotIDSanitizer.Replace(node.ID), label, shape, styleAttr, color)
	}

	fmt.Fprintln(bw)

	for _, edge := range result.Edges {
		color, style := dotEdgeStyle(edge)
		fmt.Fprintf(bw, "  %q -> %q [color=%q, style=%s];\n",
			dotIDSanitizer.Replace(edge.Source),
			dotIDSanitizer.Replace(edge.Target),
			color, style)
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func dotNodeStyle(node graph.Node) (shape, style, color string) {
	switch node.Type {
	case graph.NodeFolder:
		return "box", "rounded,filled", "#D4E6F1"
	case graph.NodeFile:
		color = "#D5DBDB"
		if node.IsPython != nil && *node.IsPython {
			color = "#A9DFBF"
		}
		return "box", "rounded,filled", color
	case graph.NodeModule:
		return "ellipse", "filled", "#F9E79F"
	case graph.NodeMethod:
		return "ellipse", "filled", "#E1F5FF"
	default:
		return "ellipse", "filled", "#FFF4E1"
	}
}

func dotEdgeStyle(edge graph.Edge) (color, style string) {
	switch edge.Relationship {
	case graph.RelFolderContainsFile, graph.RelFolderContainsFolder:
		return "#3498DB", "solid"
	case graph.RelFileDefinesModule:
		return "#2ECC71", "solid"
	case graph.RelModuleContainsFunc:
		return "#F39C12", "solid"
	case graph.RelFileImportsFromFile, graph.RelModuleImportsFromMod:
		return "#9B59B6", "dashed"
	}
	if edge.Type == graph.EdgeCalls {
		return "#848484", "solid"
	}
	return "#95A5A6", "dashed"
}
