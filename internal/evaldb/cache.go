package evaldb

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/pgn2data/internal/stats"
)

// shardCache keeps recently read shards decompressed. A nil cache (size 0)
// misses every lookup.
type shardCache struct {
	lru       *lru.Cache[int, []byte]
	collector stats.Collector
}

func newShardCache(size int, collector stats.Collector) (*shardCache, error) {
	c := &shardCache{collector: collector}
	if size <= 0 {
		return c, nil
	}
	l, err := lru.New[int, []byte](size)
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

func (c *shardCache) get(shardID int) ([]byte, bool) {
	if c.lru == nil {
		return nil, false
	}
	data, ok := c.lru.Get(shardID)
	if ok {
		c.collector.IncCounter(stats.MetricCacheHits, 1)
	} else {
		c.collector.IncCounter(stats.MetricCacheMisses, 1)
	}
	return data, ok
}

func (c *shardCache) add(shardID int, data []byte) {
	if c.lru == nil {
		return
	}
	c.lru.Add(shardID, data)
	c.collector.SetGauge(stats.MetricCacheSize, int64(c.lru.Len()))
}

func (c *shardCache) size() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
