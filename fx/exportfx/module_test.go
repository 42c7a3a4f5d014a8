package exportfx

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zaptest"

	"github.com/discochess/pgn2data"
	"github.com/discochess/pgn2data/internal/stats"
	"github.com/discochess/pgn2data/internal/stats/logger"
)

func TestModule(t *testing.T) {
	dir := t.TempDir()

	var (
		exporter  *pgn2data.Exporter
		collector stats.Collector
	)
	app := fxtest.New(t,
		fx.Supply(Config{OutputDir: dir}),
		fx.Supply(zaptest.NewLogger(t)),
		Module,
		fx.Populate(&exporter, &collector),
	)
	app.RequireStart()
	defer app.RequireStop()

	result := exporter.Export(context.Background(), filepath.Join("..", "..", "testdata", "two_games.pgn"))
	if !result.Complete {
		t.Fatal("export incomplete")
	}
	if result.Games != 2 {
		t.Errorf("Games = %d, want 2", result.Games)
	}
	if result.MovesFile.Size == 0 {
		t.Error("moves table is empty")
	}

	c, ok := collector.(*logger.Collector)
	if !ok {
		t.Fatalf("collector is %T, want *logger.Collector", collector)
	}
	if got := c.Total(stats.MetricGamesExported); got != 2 {
		t.Errorf("games exported = %d, want 2", got)
	}
}

func TestModule_GamesOnly(t *testing.T) {
	dir := t.TempDir()

	var exporter *pgn2data.Exporter
	app := fxtest.New(t,
		fx.Supply(Config{OutputDir: dir, GamesOnly: true, Compression: "gzip"}),
		fx.Supply(zaptest.NewLogger(t)),
		Module,
		fx.Populate(&exporter),
	)
	app.RequireStart()
	defer app.RequireStop()

	result := exporter.Export(context.Background(), filepath.Join("..", "..", "testdata", "two_games.pgn"))
	if !result.Complete {
		t.Fatal("export incomplete")
	}
	if filepath.Ext(result.GamesFile.Name) != ".gz" {
		t.Errorf("games file %q, want .gz", result.GamesFile.Name)
	}
	if result.MovesFile != nil {
		t.Errorf("moves file %q, want none", result.MovesFile.Name)
	}
}
