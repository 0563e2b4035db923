package fgraph

import (
	"maps"
	"slices"

	"github.com/matzehuels/convroute/pkg/format"
)

// Node is a distinct format in the graph. Its MIME type is unique.
type Node struct {
	MIME   string            `json:"mime"`
	Format format.Descriptor `json:"format"` // First descriptor seen for MIME
	Edges  []int             `json:"edges"`  // Indices into the graph's edge list
}

// Edge is a conversion from one format to another by a single handler.
// FromIndex and ToIndex always differ.
type Edge struct {
	From      format.Descriptor  `json:"from"`
	FromIndex int                `json:"fromIndex"`
	To        format.Descriptor  `json:"to"`
	ToIndex   int                `json:"toIndex"`
	Handler   format.HandlerName `json:"handler"`
	Cost      float64            `json:"cost"`
}

// Graph is the weighted directed conversion graph. A Graph is immutable
// once built and safe for concurrent reads.
type Graph struct {
	nodes    []Node
	edges    []Edge
	index    map[string]int
	handlers map[format.HandlerName]format.Handler
	rules    *Rules
	adaptive []CategoryAdaptiveRule
	strict   bool
}

// Build constructs a graph from the formats advertised by each handler.
//
// handlers fixes the registration order: a handler's position is its
// ordinal in the cost model. Keys of formats are matched case-insensitively. Handlers absent from formats, or mapped to an
// empty list, contribute nothing; formats of handlers missing from
// handlers are ignored.
//
// For every handler, each format with From set is paired with each format
// with To set and a different MIME type, producing one edge priced by
// [EdgeCost]. rules is copied, so later mutations do not affect the graph.
func Build(formats map[format.HandlerName][]format.Descriptor, handlers []format.Handler, strict bool, rules *Rules) *Graph {
	if rules == nil {
		rules = NewRules()
	}
	rules = rules.Clone()
	formats = normalizeFormats(formats)
	g := &Graph{
		index:    make(map[string]int),
		handlers: make(map[format.HandlerName]format.Handler, len(handlers)),
		rules:    rules,
		adaptive: rules.CategoryAdaptiveRules(),
		strict:   strict,
	}

	for ordinal, h := range handlers {
		name := format.NewHandlerName(h.Name())
		g.handlers[name] = h
		list := formats[name]

		for _, d := range list {
			g.addNode(d)
		}
		for _, from := range list {
			if !from.From {
				continue
			}
			for pos, to := range list {
				if !to.To || to.MIME == from.MIME {
					continue
				}
				g.addEdge(Edge{
					From:      from,
					FromIndex: g.index[from.MIME],
					To:        to,
					ToIndex:   g.index[to.MIME],
					Handler:   name,
					Cost:      EdgeCost(rules, from, to, name, ordinal, pos, strict),
				})
			}
		}
	}
	return g
}

// normalizeFormats rekeys formats by normalized handler name. Keys that
// collide after normalization are merged in sorted key order.
func normalizeFormats(formats map[format.HandlerName][]format.Descriptor) map[format.HandlerName][]format.Descriptor {
	out := make(map[format.HandlerName][]format.Descriptor, len(formats))
	for _, k := range slices.Sorted(maps.Keys(formats)) {
		name := format.NewHandlerName(string(k))
		out[name] = append(out[name], formats[k]...)
	}
	return out
}

func (g *Graph) addNode(d format.Descriptor) {
	if _, ok := g.index[d.MIME]; ok {
		return
	}
	g.index[d.MIME] = len(g.nodes)
	g.nodes = append(g.nodes, Node{MIME: d.MIME, Format: d.Clone()})
}

func (g *Graph) addEdge(e Edge) {
	e.From = e.From.Clone()
	e.To = e.To.Clone()
	g.nodes[e.FromIndex].Edges = append(g.nodes[e.FromIndex].Edges, len(g.edges))
	g.edges = append(g.edges, e)
}

// NodeCount returns the number of distinct formats.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of conversions.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Index returns the node index of mime.
func (g *Graph) Index(mime string) (int, bool) {
	i, ok := g.index[mime]
	return i, ok
}

// Node returns the node at index i. The returned value shares memory with
// the graph and must not be modified.
func (g *Graph) Node(i int) Node { return g.nodes[i] }

// NodeByMIME returns the node for mime.
func (g *Graph) NodeByMIME(mime string) (Node, bool) {
	i, ok := g.index[mime]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Edge returns the edge at index i.
func (g *Graph) Edge(i int) Edge { return g.edges[i] }

// Outgoing returns the edge indices leaving node i. The slice must not be
// modified.
func (g *Graph) Outgoing(i int) []int { return g.nodes[i].Edges }

// Nodes returns a deep copy of all nodes in index order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = Node{MIME: n.MIME, Format: n.Format.Clone(), Edges: slices.Clone(n.Edges)}
	}
	return out
}

// Edges returns a deep copy of all edges.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	for i, e := range g.edges {
		e.From = e.From.Clone()
		e.To = e.To.Clone()
		out[i] = e
	}
	return out
}

// Handler returns the handler registered under name.
func (g *Graph) Handler(name format.HandlerName) (format.Handler, bool) {
	h, ok := g.handlers[format.NewHandlerName(string(name))]
	return h, ok
}

// AdaptiveRules returns the adaptive rules captured when the graph was
// built. The slice must not be modified.
func (g *Graph) AdaptiveRules() []CategoryAdaptiveRule { return g.adaptive }

// Strict reports whether the graph was built with strict categories.
func (g *Graph) Strict() bool { return g.strict }

// EdgeBetween returns the cheapest edge from fromMIME to toMIME by handler.
// A zero handler matches any handler.
func (g *Graph) EdgeBetween(fromMIME, toMIME string, handler format.HandlerName) (Edge, bool) {
	from, ok := g.index[fromMIME]
	if !ok {
		return Edge{}, false
	}
	var best Edge
	found := false
	for _, ei := range g.nodes[from].Edges {
		e := g.edges[ei]
		if e.To.MIME != toMIME || (!handler.IsZero() && e.Handler != handler) {
			continue
		}
		if !found || e.Cost < best.Cost {
			best, found = e, true
		}
	}
	return best, found
}
