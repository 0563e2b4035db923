package search

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/convroute/pkg/fgraph"
	"github.com/matzehuels/convroute/pkg/format"
	"github.com/matzehuels/convroute/pkg/observability"
	"github.com/matzehuels/convroute/pkg/pathcache"
	"github.com/matzehuels/convroute/pkg/pqueue"
)

// initialFrontier is the starting capacity of the search queue.
const initialFrontier = 64

// candidate is a route on the search frontier.
type candidate struct {
	node int
	cost float64
	path []format.PathStep
	seq  uint64 // insertion order, breaks cost ties deterministically
}

func compareCandidates(a, b candidate) int {
	if c := cmp.Compare(a.cost, b.cost); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

// SearchPath returns a lazy sequence of routes from src to dst, cheapest
// first.
//
// Work happens only while the caller iterates. Breaking out of the loop
// or cancelling ctx stops the search; cleanup, caching of the best route
// and metrics recording run in either case.
//
// In simple mode a direct (single hop) route is tried first and, when one
// is accepted, it is the only route returned. Simple mode also ignores the
// handler named by dst. Otherwise, when dst names a
// handler, only routes whose last hop uses it are returned.
//
// Unknown formats, unreachable destinations and timeouts all produce an
// empty sequence. Use [Engine.PerformanceMetrics] to tell a timeout apart.
func (e *Engine) SearchPath(ctx context.Context, src, dst format.PathStep, simple bool) iter.Seq[[]format.PathStep] {
	return func(yield func([]format.PathStep) bool) {
		s := e.newSearch(ctx, src, dst, simple)
		defer s.finish()
		s.run(yield)
	}
}

// FindPath returns the first route SearchPath yields.
func (e *Engine) FindPath(ctx context.Context, src, dst format.PathStep, simple bool) ([]format.PathStep, bool) {
	for path := range e.SearchPath(ctx, src, dst, simple) {
		return path, true
	}
	return nil, false
}

// search is the state of one SearchPath iteration.
type search struct {
	ctx       context.Context
	id        uuid.UUID
	engine    *Engine
	graph     *fgraph.Graph
	cache     *pathcache.Cache
	logger    *log.Logger
	listeners []Listener
	now       func() time.Time

	src, dst      format.PathStep
	simple        bool
	timeout       time.Duration
	safety        bool
	safetyPattern []string

	start    time.Time
	queue    *pqueue.Queue[candidate]
	seq      uint64
	timedOut bool
	record   bool // false for trivial and cached answers
	yielded  int
	best     []format.PathStep
	bestCost float64
	direct   []format.PathStep
}

func (e *Engine) newSearch(ctx context.Context, src, dst format.PathStep, simple bool) *search {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s := &search{
		ctx:           ctx,
		id:            uuid.New(),
		engine:        e,
		graph:         e.graph,
		cache:         e.cache,
		logger:        e.logger,
		now:           e.now,
		src:           src,
		dst:           dst,
		simple:        simple,
		timeout:       e.timeout,
		safety:        e.safety,
		safetyPattern: e.safetyPattern,
	}
	s.src.Handler = format.NewHandlerName(string(src.Handler))
	s.dst.Handler = format.NewHandlerName(string(dst.Handler))
	s.listeners = make([]Listener, len(e.listeners))
	for i, l := range e.listeners {
		s.listeners[i] = l.fn
	}
	return s
}

func (s *search) run(yield func([]format.PathStep) bool) {
	s.start = s.now()
	fromMIME, toMIME := s.src.Format.MIME, s.dst.Format.MIME
	logger := s.logger.With("search_id", s.id, "from", fromMIME, "to", toMIME)

	if fromMIME == toMIME {
		path := []format.PathStep{s.dst}
		s.emit(StateFound, path)
		s.yielded++
		yield(format.ClonePath(path))
		return
	}

	key := pathcache.NewKey(fromMIME, toMIME, s.simple)
	if cached, ok := s.cache.Get(s.ctx, key); ok {
		logger.Debug("route cache hit", "steps", len(cached))
		s.emit(StateFound, cached)
		s.yielded++
		yield(format.ClonePath(cached))
		return
	}

	s.record = true
	observability.Search().OnSearchStart(s.ctx, fromMIME, toMIME, s.simple)
	logger.Debug("searching", "simple", s.simple, "handler", s.dst.Handler)

	from, ok := s.graph.Index(fromMIME)
	if !ok {
		logger.Debug("unknown source format")
		return
	}
	to, ok := s.graph.Index(toMIME)
	if !ok {
		logger.Debug("unknown destination format")
		return
	}
	s.src.Format = s.complete(s.src.Format, from)
	s.dst.Format = s.complete(s.dst.Format, to)

	q, err := pqueue.New(initialFrontier, compareCandidates)
	if err != nil {
		logger.Error("create frontier", "err", err)
		return
	}
	s.queue = q
	if !s.push(candidate{node: from, path: []format.PathStep{s.src}}) {
		return
	}
	if s.simple && s.probeDirect(from, to, yield) {
		return
	}

	closed := make([]bool, s.graph.NodeCount())
	for !q.Empty() {
		if s.expired() {
			s.timedOut = true
			logger.Warn("search timed out", "timeout", s.timeout, "found", s.yielded)
			return
		}
		if s.ctx.Err() != nil {
			return
		}

		cur, _ := q.Poll()
		if closed[cur.node] {
			continue
		}

		if cur.node == to {
			if !s.accept(cur.path) {
				s.emit(StateSkipped, cur.path)
				continue
			}
			s.track(cur)
			s.emit(StateFound, cur.path)
			s.yielded++
			if !yield(format.ClonePath(cur.path)) {
				return
			}
			continue
		}

		closed[cur.node] = true
		s.emit(StateSearching, cur.path)
		if !s.expand(cur, from, to, closed) {
			return
		}
	}
}

// probeDirect handles simple mode's preference for single-hop routes: it
// tries the direct edges from source to destination, cheapest first, and
// yields the first one the filters accept. It reports whether one was
// yielded, in which case the search is over.
func (s *search) probeDirect(from, to int, yield func([]format.PathStep) bool) bool {
	var direct []candidate
	for _, ei := range s.graph.Outgoing(from) {
		if edge := s.graph.Edge(ei); edge.ToIndex == to {
			direct = append(direct, s.extend(candidate{node: from, path: []format.PathStep{s.src}}, edge, to))
		}
	}
	slices.SortStableFunc(direct, compareCandidates)
	for _, c := range direct {
		if !s.accept(c.path) {
			s.emit(StateSkipped, c.path)
			continue
		}
		s.track(c)
		s.emit(StateFound, c.path)
		s.yielded++
		yield(format.ClonePath(c.path))
		return true
	}
	return false
}

// expand queues a candidate for every edge leaving cur whose target is not
// closed. In simple mode, direct edges from the source were already tried
// by probeDirect and are skipped. It returns false if the frontier could
// not grow.
func (s *search) expand(cur candidate, from, to int, closed []bool) bool {
	for _, ei := range s.graph.Outgoing(cur.node) {
		edge := s.graph.Edge(ei)
		if closed[edge.ToIndex] {
			continue
		}
		if s.simple && cur.node == from && edge.ToIndex == to {
			continue
		}
		if !s.push(s.extend(cur, edge, to)) {
			return false
		}
	}
	return true
}

// extend builds the candidate reached from cur over edge. A hop into the
// destination by the requested handler ends in the caller's exact
// destination step.
func (s *search) extend(cur candidate, edge fgraph.Edge, to int) candidate {
	step := format.PathStep{Handler: edge.Handler, Format: edge.To}
	if edge.ToIndex == to && !s.dst.Handler.IsZero() && edge.Handler == s.dst.Handler {
		step = s.dst
	}
	path := make([]format.PathStep, len(cur.path)+1)
	copy(path, cur.path)
	path[len(cur.path)] = step

	cost := cur.cost + edge.Cost + fgraph.AdaptiveCost(s.graph.AdaptiveRules(), fgraph.CategoryTrace(path))
	return candidate{node: edge.ToIndex, cost: cost, path: path}
}

func (s *search) push(c candidate) bool {
	c.seq = s.seq
	s.seq++
	if err := s.queue.Add(c); err != nil {
		s.logger.Error("search frontier overflow", "search_id", s.id, "err", err)
		return false
	}
	return true
}

// accept applies the safety and handler-affinity filters to a route that
// reached the destination.
func (s *search) accept(path []format.PathStep) bool {
	if s.safety && containsChain(fgraph.CategoryTrace(path), s.safetyPattern) {
		return false
	}
	if !s.simple && !s.dst.Handler.IsZero() && path[len(path)-1].Handler != s.dst.Handler {
		return false
	}
	return true
}

func (s *search) track(c candidate) {
	if s.best == nil || c.cost < s.bestCost {
		s.best, s.bestCost = c.path, c.cost
	}
	if s.direct == nil && len(c.path) == 2 {
		s.direct = c.path
	}
}

func (s *search) expired() bool {
	return s.timeout > 0 && s.now().Sub(s.start) >= s.timeout
}

// complete fills in categories for an endpoint given only by MIME type.
func (s *search) complete(d format.Descriptor, node int) format.Descriptor {
	if len(d.Category) > 0 {
		return d
	}
	n := s.graph.Node(node).Format.Clone()
	if d.Name != "" {
		n.Name = d.Name
	}
	return n
}

func (s *search) emit(state State, path []format.PathStep) {
	if len(s.listeners) == 0 {
		return
	}
	for _, l := range s.listeners {
		l(PathEvent{SearchID: s.id, State: state, Path: format.ClonePath(path)})
	}
}

// finish runs once however the iteration ended: it releases the frontier,
// caches the preferred route and records metrics.
func (s *search) finish() {
	if s.queue != nil {
		s.queue.Clear()
		s.queue = nil
	}
	if !s.record {
		return
	}
	duration := s.now().Sub(s.start)
	if keep := s.preferred(); keep != nil {
		s.store(keep)
	}
	s.cache.RecordSearch(duration, s.timedOut)
	observability.Search().OnSearchComplete(s.ctx, s.src.Format.MIME, s.dst.Format.MIME, s.yielded, duration, s.timedOut)
	s.logger.Debug("search finished",
		"search_id", s.id,
		"paths", s.yielded,
		"timed_out", s.timedOut,
		"duration", duration)
}

// store caches path unless Init replaced the graph the search ran on.
func (s *search) store(path []format.PathStep) {
	s.engine.mu.RLock()
	defer s.engine.mu.RUnlock()
	if s.engine.graph != s.graph {
		s.logger.Debug("graph rebuilt during search, route not cached", "search_id", s.id)
		return
	}
	s.cache.Set(s.ctx, pathcache.NewKey(s.src.Format.MIME, s.dst.Format.MIME, s.simple), path)
}

// preferred picks the route to cache: a direct route if one was accepted,
// otherwise the cheapest.
func (s *search) preferred() []format.PathStep {
	if s.direct != nil {
		return s.direct
	}
	return s.best
}

// containsChain reports whether pattern occurs as consecutive elements of
// trace.
func containsChain(trace, pattern []string) bool {
	if len(pattern) == 0 {
		return false
	}
	for i := 0; i+len(pattern) <= len(trace); i++ {
		match := true
		for j, c := range pattern {
			if trace[i+j] != c {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
