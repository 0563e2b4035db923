package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/convroute/pkg/observability"
)

// cacheLogHooks reports route cache activity at debug level.
type cacheLogHooks struct {
	logger *log.Logger
}

var _ observability.CacheHooks = cacheLogHooks{}

func (h cacheLogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h cacheLogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h cacheLogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "steps", size)
}

func (h cacheLogHooks) OnCacheEvict(_ context.Context, keyType string) {
	h.logger.Debug("cache evict", "type", keyType)
}

// searchLogHooks reports graph builds and route searches at debug level.
type searchLogHooks struct {
	logger *log.Logger
}

var _ observability.SearchHooks = searchLogHooks{}

func (h searchLogHooks) OnGraphBuilt(_ context.Context, nodes, edges int, d time.Duration) {
	h.logger.Debug("graph built", "formats", nodes, "conversions", edges, "duration", d)
}

func (h searchLogHooks) OnSearchStart(_ context.Context, from, to string, simple bool) {
	h.logger.Debug("route search started", "from", from, "to", to, "simple", simple)
}

func (h searchLogHooks) OnSearchComplete(_ context.Context, from, to string, paths int, d time.Duration, timedOut bool) {
	h.logger.Debug("route search complete", "from", from, "to", to, "routes", paths, "duration", d, "timed_out", timedOut)
}
