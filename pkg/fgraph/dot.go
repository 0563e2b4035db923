package fgraph

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// categoryColors fills nodes by primary category in DOT output.
var categoryColors = map[string]string{
	"image":    "lightblue",
	"video":    "plum",
	"audio":    "palegreen",
	"text":     "lightyellow",
	"document": "wheat",
}

// ToDOT converts the graph to Graphviz DOT. Nodes are labeled with their
// MIME type and edges with handler and cost.
func (g *Graph) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph formats {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("  edge [fontsize=9];\n")
	buf.WriteString("\n")

	for _, n := range g.nodes {
		fill := "white"
		if c, ok := categoryColors[n.Format.PrimaryCategory()]; ok {
			fill = c
		}
		fmt.Fprintf(&buf, "  %q [fillcolor=%s];\n", n.MIME, fill)
	}

	buf.WriteString("\n")
	for _, e := range g.edges {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From.MIME, e.To.MIME, fmt.Sprintf("%s %.2f", e.Handler, e.Cost))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
