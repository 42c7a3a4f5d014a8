//go:build e2e

package pgn2data

import (
	"context"
	"os"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/discochess/pgn2data/internal/table"
)

// TestE2E_Engine exports with a real UCI engine. Set PGN2DATA_ENGINE to the
// engine binary, e.g. /usr/games/stockfish.
func TestE2E_Engine(t *testing.T) {
	engine := os.Getenv("PGN2DATA_ENGINE")
	if engine == "" {
		t.Skip("Skipping: PGN2DATA_ENGINE not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	result := New(
		WithOutputDir(t.TempDir()),
		WithEngine(engine),
		WithEngineResources(64, 1),
		WithDepth(8),
		WithEvalCache(1024),
		WithLogger(zaptest.NewLogger(t)),
	).Export(ctx, opera)
	t.Logf("exported in %v", time.Since(start))

	if !result.Complete {
		t.Fatalf("Export() incomplete: %+v", result)
	}
	header, rows, err := table.Read(result.MovesFile.Name, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 33 {
		t.Fatalf("moves rows = %d, want 33", len(rows))
	}

	scored := 0
	for _, v := range col(t, header, rows, "evaluation") {
		if v != "0.0" {
			scored++
		}
	}
	if scored < len(rows)/2 {
		t.Errorf("only %d of %d plies have a non-zero evaluation", scored, len(rows))
	}
	for i, d := range col(t, header, rows, "evaluation_depth") {
		if d != "8" {
			t.Errorf("row %d evaluation_depth = %s", i, d)
		}
	}
}
