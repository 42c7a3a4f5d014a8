// Package evaldb looks positions up in a precomputed evaluation database
// laid out as the Lichess evaluation export: sorted JSONL records split
// into compressed shards, with a manifest describing the sharding.
package evaldb

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/discochess/pgn2data/internal/blob"
	"github.com/discochess/pgn2data/internal/codec"
	"github.com/discochess/pgn2data/internal/features"
	"github.com/discochess/pgn2data/internal/stats"
)

var (
	// ErrNotFound indicates the position is not in the database.
	ErrNotFound = errors.New("evaldb: position not found")

	// ErrClosed indicates the database has been closed.
	ErrClosed = errors.New("evaldb: closed")

	// ErrNoBucket indicates no bucket was configured.
	ErrNoBucket = errors.New("evaldb: no bucket provided")
)

// Eval is the best line stored for a position, White-relative.
type Eval struct {
	FEN   string
	Depth int
	// Centipawns is nil when the position is a forced mate.
	Centipawns *int
	// Mate is moves to mate, positive when White mates. Nil otherwise.
	Mate *int
}

// DB reads evaluations from a sharded database. It is safe for concurrent
// use.
type DB struct {
	bucket      blob.Bucket
	codec       codec.Codec
	strategy    Strategy
	totalShards int
	shards      *shardCache
	stats       stats.Collector
	logger      *zap.Logger
	closed      atomic.Bool
}

// New opens a database over a bucket configured through options. Open is
// the usual entry point; New is for callers that already know the layout.
func New(opts ...Option) (*DB, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if cfg.bucket == nil {
		return nil, ErrNoBucket
	}
	if cfg.totalShards <= 0 {
		return nil, fmt.Errorf("evaldb: invalid shard count %d", cfg.totalShards)
	}

	shards, err := newShardCache(cfg.cacheSize, cfg.stats)
	if err != nil {
		return nil, err
	}

	db := &DB{
		bucket:      cfg.bucket,
		codec:       cfg.codec,
		strategy:    cfg.strategy,
		totalShards: cfg.totalShards,
		shards:      shards,
		stats:       cfg.stats,
		logger:      cfg.logger,
	}
	db.logger.Debug("evaluation database opened",
		zap.String("bucket", db.bucket.URL()),
		zap.Int("totalShards", db.totalShards),
		zap.String("strategy", db.strategy.Name()),
		zap.String("codec", db.codec.Name()),
	)
	return db, nil
}

// Open opens the database stored at location (a directory, gs:// or s3://
// URL), configuring sharding and compression from its manifest. Options
// given after the location override the manifest.
func Open(ctx context.Context, location string, opts ...Option) (*DB, error) {
	bucket, err := blob.OpenBucket(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", location, err)
	}
	m, err := ReadManifest(ctx, bucket)
	if err != nil {
		bucket.Close()
		return nil, err
	}
	fromManifest, err := m.options()
	if err != nil {
		bucket.Close()
		return nil, err
	}
	all := append([]Option{WithBucket(bucket), fromManifest}, opts...)
	db, err := New(all...)
	if err != nil {
		bucket.Close()
		return nil, err
	}
	return db, nil
}

// Lookup returns the evaluation of fen. Clocks are ignored.
func (db *DB) Lookup(ctx context.Context, fen string) (*Eval, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	key, err := features.NormalizeFEN(fen)
	if err != nil {
		return nil, fmt.Errorf("looking up %q: %w", fen, err)
	}
	db.stats.IncCounter(stats.MetricLookups, 1)

	shardID := db.strategy.ShardID(key, db.totalShards)
	data, err := db.readShard(ctx, shardID)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			db.stats.IncCounter(stats.MetricMisses, 1)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading shard %d: %w", shardID, err)
	}

	rec, err := search(data, key)
	if err != nil {
		if errors.Is(err, errNoRecord) {
			db.stats.IncCounter(stats.MetricMisses, 1)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("searching shard %d: %w", shardID, err)
	}
	db.stats.IncCounter(stats.MetricHits, 1)
	return rec.best(), nil
}

// Close releases the bucket. Closing twice returns ErrClosed.
func (db *DB) Close() error {
	if !db.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if err := db.bucket.Close(); err != nil {
		return fmt.Errorf("closing bucket: %w", err)
	}
	return nil
}

func (db *DB) readShard(ctx context.Context, shardID int) ([]byte, error) {
	if data, ok := db.shards.get(shardID); ok {
		return data, nil
	}

	db.stats.IncCounter(stats.MetricShardFetches, 1)
	r, err := db.bucket.Open(ctx, ShardKey(shardID, db.codec))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := decompress(r, db.codec)
	if err != nil {
		return nil, err
	}
	db.shards.add(shardID, data)
	return data, nil
}

// ShardKey is the object key of a shard: "shards/00042.zst".
func ShardKey(shardID int, c codec.Codec) string {
	return codec.AppendExtension(fmt.Sprintf("shards/%05d", shardID), c)
}
