package features

import (
	"github.com/discochess/pgn2data/internal/stats"
)

// PositionCache memoizes RankTable by placement for the duration of one
// export. Entries are never evicted or replaced.
//
// A PositionCache is not safe for concurrent use. The export pipeline only
// touches it from its single consumer goroutine.
type PositionCache struct {
	entries   map[Placement]RankTable
	collector stats.Collector

	// compute is swapped in tests to count recomputations.
	compute func(Placement) RankTable

	hits   int64
	misses int64
}

// NewPositionCache creates an empty cache computing misses with engine.
// Both arguments are optional.
func NewPositionCache(engine *Engine, collector stats.Collector) *PositionCache {
	if engine == nil {
		engine = NewEngine(nil)
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &PositionCache{
		entries:   make(map[Placement]RankTable),
		collector: collector,
		compute:   engine.RankTable,
	}
}

// GetOrCompute returns the rank table for p, computing and storing it on the
// first request.
func (c *PositionCache) GetOrCompute(p Placement) RankTable {
	if table, ok := c.entries[p]; ok {
		c.hits++
		c.collector.IncCounter(stats.MetricPositionCacheHits, 1)
		return table
	}

	c.misses++
	c.collector.IncCounter(stats.MetricPositionCacheMisses, 1)

	table := c.compute(p)
	c.entries[p] = table
	c.collector.SetGauge(stats.MetricPositionCacheSize, int64(len(c.entries)))
	return table
}

// Len returns the number of distinct placements seen.
func (c *PositionCache) Len() int {
	return len(c.entries)
}

// Hits returns how many lookups were served from the cache.
func (c *PositionCache) Hits() int64 {
	return c.hits
}

// Misses returns how many lookups required a computation.
func (c *PositionCache) Misses() int64 {
	return c.misses
}
