package evaldb

import (
	"go.uber.org/zap"

	"github.com/discochess/pgn2data/internal/blob"
	"github.com/discochess/pgn2data/internal/codec"
	"github.com/discochess/pgn2data/internal/stats"
)

// DefaultTotalShards is 2^15, the layout of the published database.
const DefaultTotalShards = 32768

// DefaultCacheSize is the number of decompressed shards kept in memory.
// Positions of one game share material, and so shards.
const DefaultCacheSize = 64

// Option configures a DB.
type Option interface {
	apply(*options)
}

type options struct {
	bucket      blob.Bucket
	codec       codec.Codec
	strategy    Strategy
	totalShards int
	cacheSize   int
	stats       stats.Collector
	logger      *zap.Logger
}

func defaultOptions() options {
	return options{
		codec:       codec.Zstd(),
		strategy:    MaterialStrategy(),
		totalShards: DefaultTotalShards,
		cacheSize:   DefaultCacheSize,
		stats:       stats.NewNoop(),
		logger:      zap.NewNop(),
	}
}

type optionFunc func(*options)

var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithBucket sets where shards are read from.
func WithBucket(b blob.Bucket) Option {
	return optionFunc(func(o *options) {
		o.bucket = b
	})
}

// WithCodec sets the shard compression. Default is zstd.
func WithCodec(c codec.Codec) Option {
	return optionFunc(func(o *options) {
		o.codec = c
	})
}

// WithStrategy sets the sharding strategy. Default is material.
func WithStrategy(s Strategy) Option {
	return optionFunc(func(o *options) {
		o.strategy = s
	})
}

// WithTotalShards sets the shard count. Default is DefaultTotalShards.
func WithTotalShards(n int) Option {
	return optionFunc(func(o *options) {
		o.totalShards = n
	})
}

// WithCacheSize sets how many decompressed shards are cached. Zero
// disables the cache.
func WithCacheSize(n int) Option {
	return optionFunc(func(o *options) {
		o.cacheSize = n
	})
}

// WithStats sets the stats collector.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}
