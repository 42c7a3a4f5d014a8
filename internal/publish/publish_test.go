package publish

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/discochess/pgn2data/internal/blob"
)

func TestPublish(t *testing.T) {
	dir := t.TempDir()
	games := filepath.Join(dir, "lichess_game_info.csv")
	movesFile := filepath.Join(dir, "lichess_moves.csv")
	os.WriteFile(games, []byte("game_id\n1\n"), 0o644)
	os.WriteFile(movesFile, []byte("game_id,move_no\n1,1\n"), 0o644)

	bucket := blob.NewMem()
	p := New(bucket, nil)
	defer p.Close()

	objects, err := p.Publish(context.Background(), games, movesFile)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("Publish() returned %d objects", len(objects))
	}
	if objects[0].Key != "lichess_game_info.csv" || objects[0].Size != 10 {
		t.Errorf("objects[0] = %+v", objects[0])
	}
	if objects[1].URL != "mem://lichess_moves.csv" {
		t.Errorf("objects[1].URL = %q", objects[1].URL)
	}
	if got := bucket.Keys(); !reflect.DeepEqual(got, []string{"lichess_game_info.csv", "lichess_moves.csv"}) {
		t.Errorf("bucket keys = %v", got)
	}
	data, err := blob.ReadAll(context.Background(), bucket, "lichess_moves.csv")
	if err != nil || string(data) != "game_id,move_no\n1,1\n" {
		t.Errorf("uploaded = %q, %v", data, err)
	}
}

func TestPublish_ToDirectory(t *testing.T) {
	src := filepath.Join(t.TempDir(), "out_game_info.csv")
	os.WriteFile(src, []byte("x\n"), 0o644)
	target := t.TempDir()

	p, err := Open(context.Background(), target, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	objects, err := p.Publish(context.Background(), src)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if objects[0].URL != filepath.Join(target, "out_game_info.csv") {
		t.Errorf("URL = %q", objects[0].URL)
	}
	if _, err := os.Stat(filepath.Join(target, "out_game_info.csv")); err != nil {
		t.Errorf("published file missing: %v", err)
	}
}

func TestPublish_MissingFile(t *testing.T) {
	p := New(blob.NewMem(), nil)
	if _, err := p.Publish(context.Background(), filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("Publish(missing) error = nil")
	}
}

func TestObjectURL(t *testing.T) {
	tests := []struct{ root, want string }{
		{"gs://b/exports/", "gs://b/exports/k.csv"},
		{"gs://b/", "gs://b/k.csv"},
		{"/data/out", "/data/out/k.csv"},
	}
	for _, tt := range tests {
		if got := objectURL(tt.root, "k.csv"); got != tt.want {
			t.Errorf("objectURL(%q) = %q, want %q", tt.root, got, tt.want)
		}
	}
}
