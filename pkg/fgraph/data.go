package fgraph

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Data is a serializable, fully independent snapshot of a graph and its
// rule tables. Modifying it never affects the graph it was taken from.
type Data struct {
	Nodes                 []Node                 `json:"nodes"`
	Edges                 []Edge                 `json:"edges"`
	CategoryChangeCosts   []CategoryChangeRule   `json:"categoryChangeCosts"`
	CategoryAdaptiveCosts []CategoryAdaptiveRule `json:"categoryAdaptiveCosts"`
}

// Data returns a snapshot of the graph together with the rules it was
// built with.
func (g *Graph) Data() Data {
	return Data{
		Nodes:                 g.Nodes(),
		Edges:                 g.Edges(),
		CategoryChangeCosts:   g.rules.CategoryChangeRules(),
		CategoryAdaptiveCosts: g.rules.CategoryAdaptiveRules(),
	}
}

// WriteJSON writes the snapshot as indented JSON.
func (d Data) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Print writes a human-readable dump of the graph: every node with its
// categories followed by its outgoing conversions.
func (g *Graph) Print(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "nodes: %d, edges: %d", len(g.nodes), len(g.edges))
	if g.strict {
		b.WriteString(" (strict categories)")
	}
	b.WriteString("\n")
	for i, n := range g.nodes {
		fmt.Fprintf(&b, "[%d] %s (%s)\n", i, n.MIME, strings.Join(n.Format.Category, ", "))
		for _, ei := range n.Edges {
			e := g.edges[ei]
			fmt.Fprintf(&b, "    -> %s via %s  cost=%.3f\n", e.To.MIME, e.Handler, e.Cost)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
