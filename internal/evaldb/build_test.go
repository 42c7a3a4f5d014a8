package evaldb

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/discochess/pgn2data/internal/blob"
	"github.com/discochess/pgn2data/internal/codec"
)

const jsonl = `{"fen":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -","evals":[{"pvs":[{"cp":18,"line":"e2e4"}],"knodes":1000,"depth":30}]}
{"fen":"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1","evals":[{"pvs":[{"cp":35,"line":"c7c5"}],"knodes":900,"depth":28}]}
not json at all
{"fen":"6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - -","evals":[{"pvs":[{"mate":1,"line":"d1d8"}],"knodes":10,"depth":99}]}

`

func TestBuilder_BuildAndOpen(t *testing.T) {
	for _, strategy := range []Strategy{MaterialStrategy(), FNVStrategy()} {
		t.Run(strategy.Name(), func(t *testing.T) {
			dir := t.TempDir()
			bucket, err := blob.NewDisk(dir)
			if err != nil {
				t.Fatal(err)
			}
			b := NewBuilder(bucket,
				BuildWithStrategy(strategy),
				BuildWithTotalShards(16),
				BuildWithWorkers(2),
			)
			m, st, err := b.Build(context.Background(), strings.NewReader(jsonl), "inline")
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if st.RecordsRead != 4 || st.RecordsSkipped != 1 {
				t.Errorf("stats = %+v, want 4 read, 1 skipped", st)
			}
			if m.RecordCount != 3 || m.Strategy != strategy.Name() || m.Compression != "zstd" || m.SourceURL != "inline" {
				t.Errorf("manifest = %+v", m)
			}

			db, err := Open(context.Background(), dir)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer db.Close()

			// The record stored with clocks is found by its normalized FEN.
			ev, err := db.Lookup(context.Background(), "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 3 7")
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if ev.Centipawns == nil || *ev.Centipawns != 35 {
				t.Errorf("Lookup() cp = %v, want 35", ev.Centipawns)
			}
			ev, err = db.Lookup(context.Background(), "6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - -")
			if err != nil || ev.Mate == nil || *ev.Mate != 1 {
				t.Errorf("Lookup(mate) = %+v, %v", ev, err)
			}
		})
	}
}

func TestBuilder_BuildFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "evals.jsonl.gz")
	f, err := os.Create(src)
	if err != nil {
		t.Fatal(err)
	}
	w, _ := codec.Gzip().Writer(f)
	w.Write([]byte(jsonl))
	w.Close()
	f.Close()

	bucket := blob.NewMem()
	m, _, err := NewBuilder(bucket, BuildWithTotalShards(1), BuildWithCodec(codec.None())).BuildFile(context.Background(), src)
	if err != nil {
		t.Fatalf("BuildFile() error = %v", err)
	}
	if m.ShardCount != 1 {
		t.Errorf("ShardCount = %d, want 1", m.ShardCount)
	}
	data, err := blob.ReadAll(context.Background(), bucket, ShardKey(0, codec.None()))
	if err != nil {
		t.Fatal(err)
	}
	lines := splitLines(data)
	if len(lines) != 3 {
		t.Fatalf("shard has %d lines, want 3", len(lines))
	}
	for i := 1; i < len(lines); i++ {
		if fenOf(lines[i-1]) >= fenOf(lines[i]) {
			t.Errorf("shard not sorted at line %d", i)
		}
	}
}

func TestBuilder_InvalidShardCount(t *testing.T) {
	if _, _, err := NewBuilder(blob.NewMem(), BuildWithTotalShards(0)).Build(context.Background(), strings.NewReader(""), ""); err == nil {
		t.Error("Build() error = nil for zero shards")
	}
}
