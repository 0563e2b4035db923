// Package pathcache stores the best known route per (source, destination,
// mode) and aggregates search performance metrics.
//
// The store is a bounded LRU backed by hashicorp/golang-lru: reads move an
// entry to most-recently-used, and inserting into a full cache evicts the
// least recently used entry. The default capacity is [DefaultMaxSize].
//
// Cache is safe for concurrent use; all writes are serialized by a single
// lock so concurrent searches can share one cache.
package pathcache
