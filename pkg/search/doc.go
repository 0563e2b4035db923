// Package search finds conversion routes between formats.
//
// An [Engine] owns a [fgraph.Graph] built from the formats its handlers
// advertise, the cost rules used to build it, and an LRU cache of the
// best route found per (source, destination, mode).
//
// # Searching
//
// [Engine.SearchPath] runs a uniform-cost search and yields routes lazily,
// cheapest first:
//
//	for path := range engine.SearchPath(ctx, src, dst, false) {
//	    fmt.Println(format.PathString(path))
//	    break // stop after the first route
//	}
//
// The cost of a route is the sum of its static edge costs plus the
// adaptive cost of every prefix of its category trace. Routes whose trace
// contains the safety chain (image, video, audio by default) are skipped,
// and when the destination names a handler only routes ending with that
// handler are returned.
//
// Searches are bounded by a wall-clock timeout checked before every
// dequeue. A timed-out search ends the sequence silently and is counted
// in [Engine.PerformanceMetrics].
//
// # Events
//
// Listeners registered with [Engine.AddPathEventListener] observe every
// expansion, accepted route and rejected route, tagged with a per-search
// UUID.
package search
