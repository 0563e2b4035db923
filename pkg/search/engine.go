package search

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/convroute/pkg/fgraph"
	"github.com/matzehuels/convroute/pkg/format"
	"github.com/matzehuels/convroute/pkg/observability"
	"github.com/matzehuels/convroute/pkg/pathcache"
)

// Engine resolves conversion routes over a format graph.
//
// An Engine owns its graph, cost rules, route cache and listeners. [Engine.Init]
// builds a new graph and swaps it in; searches already running keep the
// graph they started with, but their routes are no longer cached. Concurrent searches are safe: the graph is
// read-only and the cache serializes its writes.
type Engine struct {
	mu            sync.RWMutex
	graph         *fgraph.Graph
	rules         *fgraph.Rules
	cache         *pathcache.Cache
	listeners     []listenerEntry
	nextListener  int
	timeout       time.Duration
	cacheSize     int
	safety        bool
	safetyPattern []string
	logger        *log.Logger
	now           func() time.Time
}

// CacheStats summarizes the route cache.
type CacheStats struct {
	Size    int               `json:"size"`
	MaxSize int               `json:"maxSize"`
	HitRate float64           `json:"hitRate"`
	Metrics pathcache.Metrics `json:"metrics"`
}

// New creates an engine with an empty graph and the default rule tables.
func New(opts ...Option) *Engine {
	e := &Engine{
		rules:         fgraph.NewRules(),
		timeout:       DefaultTimeout,
		cacheSize:     pathcache.DefaultMaxSize,
		safety:        true,
		safetyPattern: slices.Clone(DefaultSafetyPattern),
		logger:        log.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cache = pathcache.New(e.cacheSize)
	e.graph = fgraph.Build(nil, nil, false, e.rules)
	return e
}

// Init rebuilds the graph from the formats advertised by handlers and
// clears the route cache. handlers fixes registration order. Rule changes
// made since the last Init take effect now.
func (e *Engine) Init(formats map[format.HandlerName][]format.Descriptor, handlers []format.Handler, strict bool) {
	start := e.now()
	g := fgraph.Build(formats, handlers, strict, e.rules)
	elapsed := e.now().Sub(start)

	// Swap and clear under one lock; search.store checks the graph under it.
	e.mu.Lock()
	e.graph = g
	e.cache.Clear()
	e.mu.Unlock()

	e.logger.Debug("built format graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"strict", strict,
		"duration", elapsed)
	observability.Search().OnGraphBuilt(context.Background(), g.NodeCount(), g.EdgeCount(), elapsed)
}

// InitRegistry initializes every handler in r and rebuilds the graph from
// the formats they advertise. Handlers that fail to initialize contribute
// nothing.
func (e *Engine) InitRegistry(ctx context.Context, r *format.Registry, strict bool) error {
	formats, handlers, err := r.Collect(ctx, e.logger)
	if err != nil {
		return fmt.Errorf("collect handlers: %w", err)
	}
	e.Init(formats, handlers, strict)
	return nil
}

// Graph returns the current graph.
func (e *Engine) Graph() *fgraph.Graph {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph
}

// Rules returns the mutable cost rule tables. Changes apply on the next
// Init.
func (e *Engine) Rules() *fgraph.Rules { return e.rules }

// SetSearchTimeout sets the per-search budget. A value <= 0 disables it.
func (e *Engine) SetSearchTimeout(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timeout = d
}

// SearchTimeout returns the per-search budget.
func (e *Engine) SearchTimeout() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.timeout
}

// ClearPathCache drops all cached routes.
func (e *Engine) ClearPathCache() { e.cache.Clear() }

// PerformanceMetrics returns the aggregated search metrics.
func (e *Engine) PerformanceMetrics() pathcache.Metrics { return e.cache.Metrics() }

// CacheStats returns the route cache summary.
func (e *Engine) CacheStats() CacheStats {
	return CacheStats{
		Size:    e.cache.Size(),
		MaxSize: e.cache.MaxSize(),
		HitRate: e.cache.HitRate(),
		Metrics: e.cache.Metrics(),
	}
}

// AddPathEventListener registers fn and returns a function that removes it.
func (e *Engine) AddPathEventListener(fn Listener) (remove func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextListener
	e.nextListener++
	e.listeners = append(e.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.listeners = slices.DeleteFunc(e.listeners, func(l listenerEntry) bool { return l.id == id })
	}
}

// Data returns an independent snapshot of the current graph and the live
// rule tables.
func (e *Engine) Data() fgraph.Data {
	d := e.Graph().Data()
	d.CategoryChangeCosts = e.rules.CategoryChangeRules()
	d.CategoryAdaptiveCosts = e.rules.CategoryAdaptiveRules()
	return d
}

// Print writes a human-readable dump of the current graph.
func (e *Engine) Print(w io.Writer) error { return e.Graph().Print(w) }

// PathCost recomputes the cumulative cost of path on the current graph:
// the cheapest matching edge for every hop plus the adaptive cost of every
// prefix. It reports false if some hop has no edge.
func (e *Engine) PathCost(path []format.PathStep) (float64, bool) {
	g := e.Graph()
	var total float64
	for i := 1; i < len(path); i++ {
		edge, ok := g.EdgeBetween(path[i-1].Format.MIME, path[i].Format.MIME, path[i].Handler)
		if !ok {
			return 0, false
		}
		total += edge.Cost + fgraph.AdaptiveCost(g.AdaptiveRules(), fgraph.CategoryTrace(path[:i+1]))
	}
	return total, true
}
