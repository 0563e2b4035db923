// Package pkg provides the core libraries for convroute format conversion
// routing.
//
// # Overview
//
// convroute models a set of conversion tools ("handlers") as a weighted
// directed graph of file formats and finds the cheapest chains of tools
// that turn one format into another. The pkg directory is organized into:
//
//  1. [format] - Format descriptors, route steps and the handler registry
//  2. [fgraph] - The format graph and its cost model
//  3. [pqueue] - The generic priority queue behind the search frontier
//  4. [pathcache] - LRU route cache and search metrics
//  5. [search] - The route search engine
//  6. [config] - TOML configuration and the built-in handler registry
//
// # Architecture
//
//	Handler registry (config file or built-in)
//	         ↓
//	    [format] package (collect advertised formats)
//	         ↓
//	    [fgraph] package (nodes, edges, costs)
//	         ↓
//	    [search] package (cheapest-first route sequence, cached)
//
// # Quick Start
//
//	cfg, _ := config.Builtin()
//	opts, _ := cfg.EngineOptions(logger)
//	reg, _ := cfg.Registry()
//
//	engine := search.New(opts...)
//	_ = engine.InitRegistry(ctx, reg, cfg.Graph.StrictCategories)
//
//	src := format.PathStep{Format: format.Descriptor{MIME: "image/jpeg"}}
//	dst := format.PathStep{Format: format.Descriptor{MIME: "text/plain"}}
//	for path := range engine.SearchPath(ctx, src, dst, false) {
//	    fmt.Println(format.PathString(path))
//	}
//
// # Supporting Packages
//
//   - [errors] - Coded errors and input validation
//   - [observability] - Hooks for search and cache instrumentation
//   - [buildinfo] - Version information set at build time
//
// [format]: https://pkg.go.dev/github.com/matzehuels/convroute/pkg/format
// [fgraph]: https://pkg.go.dev/github.com/matzehuels/convroute/pkg/fgraph
// [pqueue]: https://pkg.go.dev/github.com/matzehuels/convroute/pkg/pqueue
// [pathcache]: https://pkg.go.dev/github.com/matzehuels/convroute/pkg/pathcache
// [search]: https://pkg.go.dev/github.com/matzehuels/convroute/pkg/search
// [config]: https://pkg.go.dev/github.com/matzehuels/convroute/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/convroute/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/convroute/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/convroute/pkg/buildinfo
package pkg
