// Package fgraph builds the weighted conversion graph that route search
// runs on, and holds the cost model that weights it.
//
// # Graph
//
// Nodes are distinct formats keyed by MIME type. Edges are conversions
// offered by a single handler: for each handler, every format it can read
// is connected to every format it can write (excluding the format itself).
// Several handlers offering the same conversion produce parallel edges.
//
// # Cost Model
//
// Static edge costs come from [EdgeCost]: a fixed depth cost, a category
// change penalty looked up in [Rules], small handler and format preference
// terms, and a multiplier for lossy targets. Adaptive costs from
// [AdaptiveCost] are not part of the graph; the search adds them to each
// candidate route as it grows, so multi-hop category chains are priced no
// matter which edges carry each hop.
//
// # Rule Tables
//
// [Rules] exposes add/remove/update/has operations for both tables. A
// [Graph] copies the rules it was built with, so mutations only take effect
// on the next [Build].
//
// # Introspection
//
// [Graph.Data] returns an independent JSON-serializable snapshot,
// [Graph.Print] a human-readable dump, and [Graph.ToDOT] Graphviz source
// that [RenderSVG] turns into an image.
//
// # Concurrency
//
// A built Graph is read-only and safe for concurrent use. Rules is guarded
// by its own lock.
package fgraph
