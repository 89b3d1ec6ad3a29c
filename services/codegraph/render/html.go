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
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"github.com/AleutianAI/codegraph/services/codegraph/graph"
)

// visNode is the vis.js node shape.
type visNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Title string `json:"title"`
	Color string `json:"color"`
	Shape string `json:"shape"`
	Value int    `json:"value"`
	Type  string `json:"type"`
}

// visEdge is the vis.js edge shape.
type visEdge struct {
	From   string            `json:"from"`
	To     string            `json:"to"`
	Arrows string            `json:"arrows"`
	Color  map[string]string `json:"color"`
	Dashes bool              `json:"dashes"`
	Width  int               `json:"width"`
	Title  string            `json:"title"`
}

// HTML writes an interactive vis.js network page with the graph
// embedded as JSON.
func HTML(w io.Writer, result *graph.Result) error {
	nodes := make([]visNode, 0, len(result.Nodes))
	for _, n := range result.Nodes {
		nodes = append(nodes, htmlNode(n))
	}

	edges := make([]visEdge, 0, len(result.Edges))
	for _, e := range result.Edges {
		edges = append(edges, htmlEdge(e))
	}

	nodesJSON, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("marshaling nodes: %w", err)
	}
	edgesJSON, err := json.Marshal(edges)
	if err != nil {
		return fmt.Errorf("marshaling edges: %w", err)
	}

	return htmlTemplate.Execute(w, map[string]any{
		"Summary": result.Summary,
		"Nodes":   string(nodesJSON),
		"Edges":   string(edgesJSON),
	})
}

func htmlNode(n graph.Node) visNode {
	node := visNode{ID: n.ID, Label: n.Label, Type: n.Type, Value: 1}

	switch n.Type {
	case graph.NodeFolder:
		node.Color = "#D4E6F1"
		node.Shape = "box"
		node.Title = fmt.Sprintf("Folder: %s\nFiles: %d\nSubfolders: %d",
			n.Path, derefInt(n.FileCount), derefInt(n.SubfolderCount))
		node.Value = max(derefInt(n.FileCount), 1)

	case graph.NodeFile:
		node.Color = "#D5DBDB"
		node.Shape = "box"
		title := fmt.Sprintf("File: %s\nType: %s", n.Path, orDefault(n.Extension, "no extension"))
		if n.IsPython != nil && *n.IsPython {
			node.Color = "#A9DFBF"
			title += fmt.Sprintf("\nModule: %s\nFunctions: %d", n.Module, derefInt(n.FunctionCount))
			node.Value = max(derefInt(n.FunctionCount), 1)
		}
		node.Title = title

	case graph.NodeModule:
		node.Color = "#F9E79F"
		node.Shape = "ellipse"
		node.Title = fmt.Sprintf("Module: %s\nFile: %s\nFunctions: %d\nClasses: %d",
			n.Name, n.File, derefInt(n.FunctionCount), derefInt(n.ClassCount))
		node.Value = max(derefInt(n.FunctionCount), 1)

	default: // function or method
		if n.Class != "" {
			node.Label = n.Class + "." + n.Label
		}
		node.Color = "#FFF4E1"
		if n.Type == graph.NodeMethod {
			node.Color = "#E1F5FF"
		}
		if derefInt(n.CalledByCount) > 5 {
			// High coupling stands out in red.
			node.Color = "#FFE1E1"
		}
		node.Shape = "dot"
		node.Title = fmt.Sprintf(
			"Function: %s\nFile: %s\nModule: %s\nLine: %d\nParameters: %d\nCalled by: %d functions\nCalls: %d functions",
			node.Label, n.File, n.Module, n.Line,
			derefInt(n.ParameterCount), derefInt(n.CalledByCount), derefInt(n.CallCount))
		node.Value = max(derefInt(n.ParameterCount), derefInt(n.CalledByCount), 1)
	}

	return node
}

func htmlEdge(e graph.Edge) visEdge {
	edge := visEdge{
		From:   e.Source,
		To:     e.Target,
		Arrows: "to",
		Width:  1,
	}

	color := "#95A5A6"
	dashes := true
	title := ""

	switch e.Relationship {
	case graph.RelFolderContainsFile, graph.RelFolderContainsFolder:
		color, dashes, edge.Width = "#3498DB", false, 2
	case graph.RelFileDefinesModule:
		color, dashes, edge.Width = "#2ECC71", false, 2
	case graph.RelModuleContainsFunc:
		color, dashes, edge.Width = "#F39C12", false, 2
	case graph.RelFileImportsFromFile, graph.RelModuleImportsFromMod:
		color, dashes, edge.Width = "#9B59B6", true, 3
		importType := "absolute"
		if e.IsRelative != nil && *e.IsRelative {
			importType = "relative"
		}
		names := truncList(e.Imports, 3)
		title = "Imports: "
		for i, name := range names {
			if i > 0 {
				title += ", "
			}
			title += name
		}
		title += " (" + importType + ")"
	default:
		if e.Type == graph.EdgeCalls {
			color, dashes = "#848484", false
			title = "Function Call"
		}
	}

	edge.Color = map[string]string{"color": color}
	edge.Dashes = dashes
	edge.Title = title
	return edge
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

var htmlTemplate = template.Must(template.New("graph").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Code Function Interaction Graph</title>
    <script type="text/javascript" src="https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"></script>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; }
        #mynetwork { width: 100%; height: 800px; border: 1px solid #ddd; background: white; border-radius: 8px; }
        .header { background: white; padding: 20px; margin-bottom: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .stats { display: flex; gap: 20px; flex-wrap: wrap; margin-bottom: 15px; }
        .stat-item { padding: 10px 15px; border-radius: 4px; border: 2px solid; font-weight: 500; }
        .stat-folder { background: #D4E6F1; border-color: #3498DB; }
        .stat-file { background: #A9DFBF; border-color: #2ECC71; }
        .stat-module { background: #F9E79F; border-color: #F39C12; }
        .stat-function { background: #FFF4E1; border-color: #E67E22; }
        .stat-class { background: #E1F5FF; border-color: #3498DB; }
        .legend { margin-top: 10px; font-size: 13px; color: #555; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Code Function Interaction Graph</h1>
        <div class="stats">
            <div class="stat-item stat-folder">Folders: {{.Summary.TotalFolders}}</div>
            <div class="stat-item stat-file">Files: {{.Summary.TotalFiles}}</div>
            <div class="stat-item stat-module">Modules: {{.Summary.TotalModules}}</div>
            <div class="stat-item stat-function">Functions: {{.Summary.TotalFunctions}}</div>
            <div class="stat-item stat-class">Classes: {{.Summary.TotalClasses}}</div>
        </div>
        <div class="legend">
            Blue edges: containment &middot; Green: file defines module &middot;
            Orange: module contains function &middot; Purple dashed: imports &middot;
            Gray: function calls &middot; Red nodes: high coupling
        </div>
    </div>
    <div id="mynetwork"></div>
    <script type="text/javascript">
        var nodes = new vis.DataSet({{.Nodes}});
        var edges = new vis.DataSet({{.Edges}});
        var container = document.getElementById('mynetwork');
        var data = { nodes: nodes, edges: edges };
        var options = {
            nodes: { font: { size: 14 }, scaling: { min: 10, max: 40 } },
            edges: { smooth: { type: 'continuous' } },
            physics: {
                stabilization: { iterations: 200 },
                barnesHut: { gravitationalConstant: -8000, springLength: 150 }
            },
            interaction: { hover: true, tooltipDelay: 200 }
        };
        new vis.Network(container, data, options);
    </script>
</body>
</html>
`))
