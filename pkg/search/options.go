package search

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/convroute/pkg/fgraph"
)

// DefaultTimeout is the wall-clock budget of a single search.
const DefaultTimeout = 5 * time.Second

// DefaultSafetyPattern is the category chain the safety filter rejects:
// converting an image to video and then to audio keeps nothing of the
// original content.
var DefaultSafetyPattern = []string{"image", "video", "audio"}

// Option configures an [Engine].
type Option func(*Engine)

// WithLogger sets the logger. A nil logger selects log.Default().
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTimeout sets the per-search budget. A value <= 0 disables the
// timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithCacheSize sets the route cache capacity.
func WithCacheSize(n int) Option {
	return func(e *Engine) { e.cacheSize = n }
}

// WithSafetyFilter enables or disables rejection of catastrophic routes.
// It is enabled by default.
func WithSafetyFilter(enabled bool) Option {
	return func(e *Engine) { e.safety = enabled }
}

// WithSafetyPattern replaces the rejected category chain.
func WithSafetyPattern(categories ...string) Option {
	return func(e *Engine) { e.safetyPattern = slices.Clone(categories) }
}

// WithClock sets the time source used for timeouts and metrics.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRules sets the cost rule tables used by Init. A nil table keeps the
// defaults.
func WithRules(r *fgraph.Rules) Option {
	return func(e *Engine) {
		if r != nil {
			e.rules = r
		}
	}
}
