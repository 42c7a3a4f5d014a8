package evaldb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/discochess/pgn2data/internal/blob"
	"github.com/discochess/pgn2data/internal/chessgame"
	"github.com/discochess/pgn2data/internal/codec"
)

const (
	startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -"
	e4FEN    = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq -"
	mateFEN  = "6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - -"
)

var fixture = map[string]string{
	startFEN: `{"fen":"%s","evals":[{"pvs":[{"cp":18,"line":"e2e4 e7e5"}],"knodes":1000,"depth":30},{"pvs":[{"cp":20,"line":"d2d4"}],"knodes":5000,"depth":42}]}`,
	e4FEN:    `{"fen":"%s","evals":[{"pvs":[{"cp":35,"line":"c7c5"},{"cp":40,"line":"e7e5"}],"knodes":900,"depth":28}]}`,
	mateFEN:  `{"fen":"%s","evals":[{"pvs":[{"mate":1,"line":"d1d8"}],"knodes":10,"depth":99}]}`,
}

// buildDB writes fixture into a bucket laid out with strategy and codec c.
func buildDB(t testing.TB, strategy Strategy, c codec.Codec, totalShards int) *blob.Mem {
	t.Helper()
	bucket := blob.NewMem()

	shards := map[int][]string{}
	for fen, tmpl := range fixture {
		id := strategy.ShardID(fen, totalShards)
		shards[id] = append(shards[id], fmt.Sprintf(tmpl, fen))
	}
	for id, lines := range shards {
		sort.Slice(lines, func(i, j int) bool { return fenOf([]byte(lines[i])) < fenOf([]byte(lines[j])) })
		var buf bytes.Buffer
		w, err := c.Writer(&buf)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(strings.Join(lines, "\n") + "\n")); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
		bucket.Put(ShardKey(id, c), buf.Bytes())
	}

	manifest, err := json.Marshal(Manifest{
		Version:     1,
		TotalShards: totalShards,
		Strategy:    strategy.Name(),
		RecordCount: int64(len(fixture)),
		ShardCount:  len(shards),
		Compression: c.Name(),
	})
	if err != nil {
		t.Fatal(err)
	}
	bucket.Put(ManifestKey, manifest)
	return bucket
}

type countingCollector struct {
	counters map[string]int64
}

func (c *countingCollector) IncCounter(name string, delta int64) { c.counters[name] += delta }
func (c *countingCollector) SetGauge(string, int64)              {}
func (c *countingCollector) ObserveHistogram(string, float64)    {}

func TestDB_Lookup(t *testing.T) {
	for _, strategy := range []Strategy{MaterialStrategy(), FNVStrategy()} {
		t.Run(strategy.Name(), func(t *testing.T) {
			bucket := buildDB(t, strategy, codec.Zstd(), 64)
			db, err := New(WithBucket(bucket), WithStrategy(strategy), WithTotalShards(64))
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer db.Close()
			ctx := context.Background()

			ev, err := db.Lookup(ctx, startFEN+" 0 1")
			if err != nil {
				t.Fatalf("Lookup(start) error = %v", err)
			}
			if ev.Depth != 42 || ev.Centipawns == nil || *ev.Centipawns != 20 {
				t.Errorf("start eval = depth %d cp %v, want deepest (42, 20)", ev.Depth, ev.Centipawns)
			}

			ev, err = db.Lookup(ctx, e4FEN+" 0 1")
			if err != nil {
				t.Fatalf("Lookup(e4) error = %v", err)
			}
			if ev.Centipawns == nil || *ev.Centipawns != 35 {
				t.Errorf("e4 eval cp = %v, want first PV 35", ev.Centipawns)
			}

			ev, err = db.Lookup(ctx, mateFEN+" 3 40")
			if err != nil {
				t.Fatalf("Lookup(mate) error = %v", err)
			}
			if ev.Mate == nil || *ev.Mate != 1 || ev.Centipawns != nil {
				t.Errorf("mate eval = cp %v mate %v", ev.Centipawns, ev.Mate)
			}
		})
	}
}

func TestDB_LookupAfterDoublePush(t *testing.T) {
	bucket := buildDB(t, MaterialStrategy(), codec.Zstd(), 64)
	db, err := New(WithBucket(bucket), WithTotalShards(64))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	g, err := chessgame.Parse("[Result \"*\"]\n\n1. e4 *\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	var fens []string
	if err := g.Replay(func(ply chessgame.Ply) error {
		fens = append(fens, ply.FEN)
		return nil
	}); err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if len(fens) != 1 {
		t.Fatalf("got %d plies, want 1", len(fens))
	}

	// The record is stored as "... b KQkq -"; the replayed position names e3.
	ev, err := db.Lookup(context.Background(), fens[0])
	if err != nil {
		t.Fatalf("Lookup(%q) error = %v", fens[0], err)
	}
	if ev.Centipawns == nil || *ev.Centipawns != 35 {
		t.Errorf("e4 eval cp = %v, want 35", ev.Centipawns)
	}
}

func TestDB_LookupMisses(t *testing.T) {
	collector := &countingCollector{counters: map[string]int64{}}
	bucket := buildDB(t, MaterialStrategy(), codec.Zstd(), 64)
	db, err := New(WithBucket(bucket), WithTotalShards(64), WithStats(collector))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	// Same shard as the start position, different castling rights.
	if _, err := db.Lookup(ctx, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(in-shard miss) error = %v, want ErrNotFound", err)
	}
	// Bare kings have no record.
	if _, err := db.Lookup(ctx, "8/8/8/4k3/8/8/4K3/8 w - - 0 1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(missing shard) error = %v, want ErrNotFound", err)
	}
	if _, err := db.Lookup(ctx, "not a fen"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(invalid) error = %v, want a parse error", err)
	}

	if got := collector.counters["pgn2data_evaldb_misses_total"]; got != 2 {
		t.Errorf("misses = %d, want 2", got)
	}
	if got := collector.counters["pgn2data_evaldb_lookups_total"]; got != 2 {
		t.Errorf("lookups = %d, want 2", got)
	}
}

func TestDB_ShardCache(t *testing.T) {
	collector := &countingCollector{counters: map[string]int64{}}
	bucket := buildDB(t, MaterialStrategy(), codec.Zstd(), 64)
	db, err := New(WithBucket(bucket), WithTotalShards(64), WithStats(collector), WithCacheSize(4))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		if _, err := db.Lookup(context.Background(), startFEN+" 0 1"); err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
	}
	if got := collector.counters["pgn2data_evaldb_shard_fetches_total"]; got != 1 {
		t.Errorf("shard fetches = %d, want 1", got)
	}
	if got := collector.counters["pgn2data_shard_cache_hits_total"]; got != 2 {
		t.Errorf("cache hits = %d, want 2", got)
	}
	if db.shards.size() != 1 {
		t.Errorf("cached shards = %d, want 1", db.shards.size())
	}
}

func TestDB_Close(t *testing.T) {
	db, err := New(WithBucket(blob.NewMem()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := db.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close() error = %v, want ErrClosed", err)
	}
	if _, err := db.Lookup(context.Background(), startFEN+" 0 1"); !errors.Is(err, ErrClosed) {
		t.Errorf("Lookup after Close error = %v, want ErrClosed", err)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(); !errors.Is(err, ErrNoBucket) {
		t.Errorf("New() error = %v, want ErrNoBucket", err)
	}
	if _, err := New(WithBucket(blob.NewMem()), WithTotalShards(0)); err == nil {
		t.Error("New(totalShards=0) expected error")
	}
}

func TestOpen_Directory(t *testing.T) {
	ctx := context.Background()
	mem := buildDB(t, FNVStrategy(), codec.Gzip(), 16)

	dir := t.TempDir()
	disk, err := blob.NewDisk(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range mem.Keys() {
		data, err := blob.ReadAll(ctx, mem, key)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := blob.Upload(ctx, disk, key, bytes.NewReader(data)); err != nil {
			t.Fatal(err)
		}
	}

	db, err := Open(ctx, dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if db.strategy.Name() != "fnv32" || db.totalShards != 16 || db.codec.Name() != "gzip" {
		t.Errorf("manifest not applied: %s %d %s", db.strategy.Name(), db.totalShards, db.codec.Name())
	}
	if _, err := db.Lookup(ctx, e4FEN+" 0 1"); err != nil {
		t.Errorf("Lookup() error = %v", err)
	}
}

func TestOpen_MissingManifest(t *testing.T) {
	if _, err := Open(context.Background(), t.TempDir()); !errors.Is(err, blob.ErrNotFound) {
		t.Errorf("Open() error = %v, want blob.ErrNotFound", err)
	}
}

func BenchmarkDB_Lookup(b *testing.B) {
	bucket := buildDB(b, MaterialStrategy(), codec.Zstd(), 64)
	db, err := New(WithBucket(bucket), WithTotalShards(64))
	if err != nil {
		b.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := db.Lookup(ctx, e4FEN); err != nil {
			b.Fatal(err)
		}
	}
}
