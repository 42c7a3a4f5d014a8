package evaldb

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/discochess/pgn2data/internal/blob"
	"github.com/discochess/pgn2data/internal/codec"
	"github.com/discochess/pgn2data/internal/features"
)

// maxRecordLine bounds one JSONL record.
const maxRecordLine = 10 * 1024 * 1024

// BuildStats reports a finished build.
type BuildStats struct {
	RecordsRead    int64
	RecordsSkipped int64
	ShardsWritten  int
	Elapsed        time.Duration
}

// Builder writes a database from Lichess evaluation JSONL into a bucket.
// Records are held in memory until every shard is written, which suits
// extracts of the full export rather than the export itself.
type Builder struct {
	bucket      blob.Bucket
	codec       codec.Codec
	strategy    Strategy
	totalShards int
	workers     int
	logger      *zap.Logger
}

// BuildOption configures a Builder.
type BuildOption func(*Builder)

// BuildWithCodec sets the shard compression. Default is zstd.
func BuildWithCodec(c codec.Codec) BuildOption {
	return func(b *Builder) { b.codec = c }
}

// BuildWithStrategy sets the sharding strategy. Default is material.
func BuildWithStrategy(s Strategy) BuildOption {
	return func(b *Builder) { b.strategy = s }
}

// BuildWithTotalShards sets the number of shards.
func BuildWithTotalShards(n int) BuildOption {
	return func(b *Builder) { b.totalShards = n }
}

// BuildWithWorkers sets how many shards are compressed and written at once.
func BuildWithWorkers(n int) BuildOption {
	return func(b *Builder) { b.workers = n }
}

// BuildWithLogger sets the logger.
func BuildWithLogger(l *zap.Logger) BuildOption {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder returns a builder writing into bucket.
func NewBuilder(bucket blob.Bucket, opts ...BuildOption) *Builder {
	b := &Builder{
		bucket:      bucket,
		codec:       codec.Zstd(),
		strategy:    MaterialStrategy(),
		totalShards: DefaultTotalShards,
		workers:     4,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.workers < 1 {
		b.workers = 1
	}
	return b
}

// BuildFile builds from a local JSONL file, decompressing ".zst" and ".gz"
// sources.
func (b *Builder) BuildFile(ctx context.Context, path string) (*Manifest, BuildStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, BuildStats{}, fmt.Errorf("opening source file: %w", err)
	}
	defer f.Close()

	c, _ := codec.ForPath(path)
	r, err := c.Reader(f)
	if err != nil {
		return nil, BuildStats{}, fmt.Errorf("opening %s source: %w", c.Name(), err)
	}
	defer r.Close()
	return b.Build(ctx, r, path)
}

// Build reads JSONL records from r, distributes them to shards, sorts each
// shard by FEN and writes the shards and the manifest. source is recorded
// in the manifest.
func (b *Builder) Build(ctx context.Context, r io.Reader, source string) (*Manifest, BuildStats, error) {
	if b.totalShards <= 0 {
		return nil, BuildStats{}, fmt.Errorf("evaldb: invalid shard count %d", b.totalShards)
	}
	start := time.Now()
	var st BuildStats

	shards := map[int][][]byte{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), maxRecordLine)
	for scanner.Scan() {
		if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
			continue
		}
		if st.RecordsRead%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, st, err
			}
		}
		st.RecordsRead++

		line, fen, err := canonical(scanner.Bytes())
		if err != nil {
			st.RecordsSkipped++
			b.logger.Debug("skipping record", zap.Int64("line", st.RecordsRead), zap.Error(err))
			continue
		}
		id := b.strategy.ShardID(fen, b.totalShards)
		shards[id] = append(shards[id], line)
	}
	if err := scanner.Err(); err != nil {
		return nil, st, fmt.Errorf("reading records: %w", err)
	}

	var written atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for id, lines := range shards {
		g.Go(func() error {
			if err := b.writeShard(gctx, id, lines); err != nil {
				return fmt.Errorf("writing shard %d: %w", id, err)
			}
			written.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, st, err
	}
	st.ShardsWritten = int(written.Load())

	m := &Manifest{
		Version:     1,
		TotalShards: b.totalShards,
		Strategy:    b.strategy.Name(),
		RecordCount: st.RecordsRead - st.RecordsSkipped,
		ShardCount:  st.ShardsWritten,
		BuiltAt:     time.Now().UTC(),
		SourceURL:   source,
		Compression: b.codec.Name(),
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, st, err
	}
	if _, err := blob.Upload(ctx, b.bucket, ManifestKey, bytes.NewReader(data)); err != nil {
		return nil, st, err
	}

	st.Elapsed = time.Since(start)
	b.logger.Info("evaluation database built",
		zap.String("bucket", b.bucket.URL()),
		zap.Int64("records", m.RecordCount),
		zap.Int64("skipped", st.RecordsSkipped),
		zap.Int("shards", st.ShardsWritten),
		zap.Duration("elapsed", st.Elapsed),
	)
	return m, st, nil
}

func (b *Builder) writeShard(ctx context.Context, id int, lines [][]byte) error {
	sort.Slice(lines, func(i, j int) bool {
		return fenOf(lines[i]) < fenOf(lines[j])
	})

	var buf bytes.Buffer
	w, err := b.codec.Writer(&buf)
	if err != nil {
		return err
	}
	for _, line := range lines {
		w.Write(line)
		w.Write([]byte{'\n'})
	}
	if err := w.Close(); err != nil {
		return err
	}
	_, err = blob.Upload(ctx, b.bucket, ShardKey(id, b.codec), &buf)
	return err
}

// canonical returns a copy of line whose "fen" field is normalized, and
// that FEN.
func canonical(line []byte) ([]byte, string, error) {
	line = bytes.TrimSpace(line)
	fen := fenOf(line)
	normalized, err := features.NormalizeFEN(fen)
	if err != nil {
		return nil, "", err
	}
	if normalized == fen {
		return bytes.Clone(line), fen, nil
	}

	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, "", err
	}
	rec.FEN = normalized
	out, err := json.Marshal(rec)
	if err != nil {
		return nil, "", err
	}
	return out, normalized, nil
}
