package evaluator

import (
	"context"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/pgn2data/internal/features"
	"github.com/discochess/pgn2data/internal/stats"
)

// Cached memoizes another evaluator's scores by normalized FEN and depth.
// Failures are not cached.
type Cached struct {
	next      Evaluator
	cache     *lru.Cache[string, Score]
	collector stats.Collector
}

var _ Evaluator = (*Cached)(nil)

// NewCache returns an LRU holding size scores, for sharing between Cached
// evaluators.
func NewCache(size int) (*lru.Cache[string, Score], error) {
	return lru.New[string, Score](size)
}

// NewCached wraps next with cache. The collector is optional.
func NewCached(next Evaluator, cache *lru.Cache[string, Score], collector stats.Collector) *Cached {
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Cached{next: next, cache: cache, collector: collector}
}

// CachedFactory wraps every evaluator opened by f with one shared cache, so
// positions repeated across input files are scored once.
func CachedFactory(f Factory, size int, collector stats.Collector) (Factory, error) {
	cache, err := NewCache(size)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) (Evaluator, error) {
		next, err := f(ctx)
		if err != nil {
			return nil, err
		}
		return NewCached(next, cache, collector), nil
	}, nil
}

// Evaluate returns the cached score or asks the wrapped evaluator.
func (c *Cached) Evaluate(ctx context.Context, fen string, depth int) (Score, error) {
	key := fen
	if normalized, err := features.NormalizeFEN(fen); err == nil {
		key = normalized
	}
	key += "@" + strconv.Itoa(depth)

	if s, ok := c.cache.Get(key); ok {
		c.collector.IncCounter(stats.MetricEvalCacheHits, 1)
		return s, nil
	}
	c.collector.IncCounter(stats.MetricEvalCacheMisses, 1)

	s, err := c.next.Evaluate(ctx, fen, depth)
	if err != nil {
		return Score{}, err
	}
	c.cache.Add(key, s)
	return s, nil
}

// Close closes the wrapped evaluator. The cache outlives it.
func (c *Cached) Close() error {
	return c.next.Close()
}
