package fgraph

import (
	"math"
	"testing"

	"github.com/matzehuels/convroute/pkg/format"
)

func desc(mime, category string, lossless, from, to bool) format.Descriptor {
	return format.Descriptor{MIME: mime, Category: []string{category}, Lossless: lossless, From: from, To: to}
}

func build(t *testing.T, strict bool, rules *Rules, handlers ...*format.StaticHandler) *Graph {
	t.Helper()
	formats := make(map[format.HandlerName][]format.Descriptor)
	list := make([]format.Handler, 0, len(handlers))
	for _, h := range handlers {
		formats[format.NewHandlerName(h.Name())] = h.Formats()
		list = append(list, h)
	}
	return Build(formats, list, strict, rules)
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBuildEdgeCost(t *testing.T) {
	tests := []struct {
		name     string
		to       format.Descriptor
		wantCost float64
	}{
		{"Lossless", desc("image/b", "image", true, false, true), 1.0},
		{"Lossy", desc("image/b", "image", false, false, true), 1.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, false, NewRules(), format.NewStaticHandler("H",
				tt.to,
				desc("image/a", "image", true, true, false),
			))
			if g.EdgeCount() != 1 {
				t.Fatalf("EdgeCount() = %d, want 1", g.EdgeCount())
			}
			e := g.Edge(0)
			if e.From.MIME != "image/a" || e.To.MIME != "image/b" {
				t.Errorf("edge = %s -> %s, want image/a -> image/b", e.From.MIME, e.To.MIME)
			}
			if !almostEqual(e.Cost, tt.wantCost) {
				t.Errorf("cost = %v, want %v", e.Cost, tt.wantCost)
			}
		})
	}
}

func TestBuildNoReverseEdge(t *testing.T) {
	g := build(t, false, nil, format.NewStaticHandler("H",
		desc("image/a", "image", true, true, false),
		desc("image/b", "image", true, false, true),
	))
	if _, ok := g.EdgeBetween("image/b", "image/a", ""); ok {
		t.Error("unexpected reverse edge b -> a")
	}
	if _, ok := g.EdgeBetween("image/a", "image/b", ""); !ok {
		t.Error("missing edge a -> b")
	}
}

func TestBuildNoSelfEdges(t *testing.T) {
	g := build(t, false, nil, format.NewStaticHandler("H",
		desc("image/a", "image", true, true, true),
		desc("image/b", "image", true, true, true),
	))
	if g.EdgeCount() != 2 {
		t.Fatalf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
	for _, e := range g.Edges() {
		if e.FromIndex == e.ToIndex {
			t.Errorf("self edge on %s", e.From.MIME)
		}
	}
}

func TestBuildCostTerms(t *testing.T) {
	png := desc("image/png", "image", true, true, true)
	jpg := desc("image/jpeg", "image", false, true, true)
	wav := desc("audio/wav", "audio", true, true, true)

	g := build(t, false, NewEmptyRules(),
		format.NewStaticHandler("first", png, jpg),
		format.NewStaticHandler("second", png, wav),
	)

	tests := []struct {
		from, to string
		handler  format.HandlerName
		want     float64
	}{
		// position 1, lossy: (1 + 0.05) * 1.4
		{"image/png", "image/jpeg", "first", (1 + 0.05) * 1.4},
		// position 0, lossless
		{"image/jpeg", "image/png", "first", 1.0},
		// ordinal 1, position 1, category change with no rules
		{"image/png", "audio/wav", "second", 1 + 0.6 + 0.2 + 0.05},
		// ordinal 1, position 0, category change
		{"audio/wav", "image/png", "second", 1 + 0.6 + 0.2},
	}
	for _, tt := range tests {
		e, ok := g.EdgeBetween(tt.from, tt.to, tt.handler)
		if !ok {
			t.Errorf("missing edge %s -> %s via %s", tt.from, tt.to, tt.handler)
			continue
		}
		if !almostEqual(e.Cost, tt.want) {
			t.Errorf("%s -> %s via %s: cost = %v, want %v", tt.from, tt.to, tt.handler, e.Cost, tt.want)
		}
		if e.Cost <= 0 {
			t.Errorf("edge cost %v is not positive", e.Cost)
		}
	}
}

func TestBuildUniqueNodes(t *testing.T) {
	png := desc("image/png", "image", true, true, true)
	g := build(t, false, nil,
		format.NewStaticHandler("a", png, desc("image/gif", "image", true, true, true)),
		format.NewStaticHandler("b", png, desc("image/bmp", "image", true, true, true)),
	)
	if g.NodeCount() != 3 {
		t.Fatalf("NodeCount() = %d, want 3", g.NodeCount())
	}
	for i, n := range g.Nodes() {
		idx, ok := g.Index(n.MIME)
		if !ok || idx != i {
			t.Errorf("Index(%q) = %d,%v want %d", n.MIME, idx, ok, i)
		}
	}
	// Parallel edges from both handlers leave png.
	png0, _ := g.Index("image/png")
	if got := len(g.Outgoing(png0)); got != 2 {
		t.Errorf("png out-degree = %d, want 2", got)
	}
}

func TestBuildIgnoresUnknownAndEmptyHandlers(t *testing.T) {
	formats := map[format.HandlerName][]format.Descriptor{
		"ghost": {desc("image/a", "image", true, true, true), desc("image/b", "image", true, true, true)},
	}
	handlers := []format.Handler{format.NewStaticHandler("empty")}
	g := Build(formats, handlers, false, nil)
	if g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("graph = %d nodes, %d edges; want empty", g.NodeCount(), g.EdgeCount())
	}
	if _, ok := g.Handler("EMPTY"); !ok {
		t.Error("Handler lookup should be case-insensitive")
	}
}

func TestBuildStrictCategories(t *testing.T) {
	a := desc("image/a", "image", true, true, true)
	b := desc("image/b", "image", true, true, true)

	loose := build(t, false, NewEmptyRules(), format.NewStaticHandler("h", a, b))
	strict := build(t, true, NewEmptyRules(), format.NewStaticHandler("h", a, b))

	le, _ := loose.EdgeBetween("image/a", "image/b", "")
	se, _ := strict.EdgeBetween("image/a", "image/b", "")
	if !almostEqual(le.Cost, 1.05) {
		t.Errorf("loose cost = %v, want 1.05", le.Cost)
	}
	if !almostEqual(se.Cost, 1.65) {
		t.Errorf("strict cost = %v, want 1.65", se.Cost)
	}
	if !strict.Strict() || loose.Strict() {
		t.Error("Strict() does not reflect build flag")
	}
}

func TestBuildCopiesRules(t *testing.T) {
	rules := NewEmptyRules()
	g := build(t, false, rules, format.NewStaticHandler("h",
		desc("image/png", "image", true, true, true),
		desc("audio/wav", "audio", true, true, true),
	))
	before, _ := g.EdgeBetween("image/png", "audio/wav", "")

	rules.AddCategoryChangeCost("image", "audio", "", 5)
	rules.AddCategoryAdaptiveCost([]string{"image", "audio"}, 7)

	after, _ := g.EdgeBetween("image/png", "audio/wav", "")
	if before.Cost != after.Cost {
		t.Errorf("rule mutation changed built edge cost: %v -> %v", before.Cost, after.Cost)
	}
	if len(g.AdaptiveRules()) != 0 {
		t.Errorf("rule mutation leaked into built graph: %v", g.AdaptiveRules())
	}

	rebuilt := build(t, false, rules, format.NewStaticHandler("h",
		desc("image/png", "image", true, true, true),
		desc("audio/wav", "audio", true, true, true),
	))
	e, _ := rebuilt.EdgeBetween("image/png", "audio/wav", "")
	if !almostEqual(e.Cost, 1+5+0.05) {
		t.Errorf("rebuilt cost = %v, want %v", e.Cost, 1+5+0.05)
	}
}

func TestBuildMatchesHandlerNamesCaseInsensitively(t *testing.T) {
	h := format.NewStaticHandler("FFmpeg")
	formats := map[format.HandlerName][]format.Descriptor{
		"FFmpeg": {
			desc("video/a", "video", true, true, false),
			desc("video/b", "video", true, false, true),
		},
	}

	g := Build(formats, []format.Handler{h}, false, nil)
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Fatalf("nodes = %d, edges = %d, want 2 and 1", g.NodeCount(), g.EdgeCount())
	}
	if e := g.Edge(0); e.Handler != "ffmpeg" {
		t.Errorf("edge handler = %q, want ffmpeg", e.Handler)
	}
}

func TestBuildMergesCollidingHandlerKeys(t *testing.T) {
	h := format.NewStaticHandler("pandoc")
	formats := map[format.HandlerName][]format.Descriptor{
		"Pandoc": {desc("text/a", "text", true, true, false)},
		"pandoc": {desc("text/b", "text", true, false, true)},
	}

	g := Build(formats, []format.Handler{h}, false, nil)
	if _, ok := g.EdgeBetween("text/a", "text/b", "pandoc"); !ok {
		t.Error("expected text/a -> text/b from merged format lists")
	}
}
