package codec

import (
	"fmt"
	"strings"

	"github.com/planograph/planograph/graph"
)

// DOT-style textual graph description. Export only: the adapter emits a
// directed graph with per-node fill colors by kind and per-edge dash
// styles by kind.

var nodeFillColors = map[graph.NodeKind]string{
	graph.KindRequirement: "#c0d6e4",
	graph.KindDeliverable: "#b5e7a0",
	graph.KindTask:        "#fff2ae",
	graph.KindSubtask:     "#fdf6d8",
	graph.KindMilestone:   "#f4b6c2",
	graph.KindDependency:  "#d9d9d9",
	graph.KindAgent:       "#d5c6e0",
}

var edgeStyles = map[graph.EdgeKind]string{
	graph.EdgeDependsOn:  "dashed",
	graph.EdgeReferences: "dotted",
	graph.EdgeEvolvesTo:  "dotted",
}

// ExportDOT serializes a snapshot as a directed-graph description.
func ExportDOT(doc graph.Document) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", dotID(doc.Name))
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=filled];\n\n")

	for _, n := range doc.Nodes {
		fill, ok := nodeFillColors[n.Kind]
		if !ok {
			fill = "#ffffff"
		}
		fmt.Fprintf(&b, "  %s [label=%q, fillcolor=%q];\n", dotID(n.ID), n.Label, fill)
	}
	b.WriteString("\n")
	for _, e := range doc.Edges {
		var attrs []string
		if e.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
		}
		if style, ok := edgeStyles[e.Kind]; ok {
			attrs = append(attrs, fmt.Sprintf("style=%q", style))
		}
		fmt.Fprintf(&b, "  %s -> %s", dotID(e.Source), dotID(e.Target))
		if len(attrs) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(attrs, ", "))
		}
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
	return []byte(b.String()), nil
}

// dotID makes an identifier safe for the graph-description syntax by
// replacing anything outside [A-Za-z0-9_] with an underscore.
func dotID(id string) string {
	if id == "" {
		return "_"
	}
	mapped := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, id)
	if mapped[0] >= '0' && mapped[0] <= '9' {
		mapped = "_" + mapped
	}
	return mapped
}
