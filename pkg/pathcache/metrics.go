package pathcache

import "time"

// Metrics aggregates route search performance.
type Metrics struct {
	CacheHits           int64   `json:"cacheHits"`
	CacheMisses         int64   `json:"cacheMisses"`
	TotalSearches       int64   `json:"totalSearches"`
	AverageSearchTimeMs float64 `json:"averageSearchTimeMs"`
	TimeoutCount        int64   `json:"timeoutCount"`
	LongestSearchMs     float64 `json:"longestSearchMs"`
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (m Metrics) HitRate() float64 {
	total := m.CacheHits + m.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(m.CacheHits) / float64(total)
}

type metricsAggregator struct {
	cacheHits     int64
	cacheMisses   int64
	totalSearches int64
	avgMs         float64
	timeouts      int64
	longestMs     float64
}

func (a *metricsAggregator) record(d time.Duration, timedOut bool) {
	ms := float64(d) / float64(time.Millisecond)
	a.totalSearches++
	a.avgMs += (ms - a.avgMs) / float64(a.totalSearches)
	if ms > a.longestMs {
		a.longestMs = ms
	}
	if timedOut {
		a.timeouts++
	}
}

func (a *metricsAggregator) hitRate() float64 { return a.snapshot().HitRate() }

func (a *metricsAggregator) snapshot() Metrics {
	return Metrics{
		CacheHits:           a.cacheHits,
		CacheMisses:         a.cacheMisses,
		TotalSearches:       a.totalSearches,
		AverageSearchTimeMs: a.avgMs,
		TimeoutCount:        a.timeouts,
		LongestSearchMs:     a.longestMs,
	}
}
