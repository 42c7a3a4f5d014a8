// Package exportfx provides an fx module for a configured pgn2data exporter.
package exportfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/pgn2data"
	"github.com/discochess/pgn2data/internal/stats"
	"github.com/discochess/pgn2data/internal/stats/logger"
)

// Config holds configuration for the exporter.
type Config struct {
	// OutputDir is where tables are written. Default is the working
	// directory.
	OutputDir string

	// GamesOnly skips the moves table.
	GamesOnly bool

	// QueueSize bounds the games waiting for move processing. Zero means
	// unbounded.
	QueueSize int

	// Depth is the evaluation search depth. Default is 20.
	Depth int

	// EnginePath is a UCI engine binary used to evaluate moves.
	EnginePath string

	// EvalDB is an evaluation database location, used when EnginePath is
	// empty.
	EvalDB string

	// Evaluator overrides EnginePath and EvalDB.
	Evaluator pgn2data.EvaluatorFactory

	// EvalCache is how many evaluations are memoized across inputs.
	EvalCache int

	Compression string
	Collapse    bool

	// PublishTo uploads finished tables, e.g. "gs://bucket/exports".
	PublishTo string
}

// Module provides a *pgn2data.Exporter.
// Requires a Config and a *zap.Logger to be provided.
var Module = fx.Module("export",
	fx.Provide(
		newStatsCollector,
		newExporter,
	),
)

func newStatsCollector(log *zap.Logger) *logger.Collector {
	return logger.New(log.Named("pgn2data.stats"))
}

// Params holds dependencies for creating the exporter.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector *logger.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided exporter and its collector.
type Result struct {
	fx.Out

	Exporter  *pgn2data.Exporter
	Collector stats.Collector
}

func newExporter(p Params) Result {
	opts := []pgn2data.Option{
		pgn2data.WithMoves(!p.Config.GamesOnly),
		pgn2data.WithQueueSize(p.Config.QueueSize),
		pgn2data.WithCollapse(p.Config.Collapse),
		pgn2data.WithEvalCache(p.Config.EvalCache),
		pgn2data.WithPublish(p.Config.PublishTo),
		pgn2data.WithStats(p.Collector),
		pgn2data.WithLogger(p.Logger.Named("pgn2data")),
	}
	if p.Config.OutputDir != "" {
		opts = append(opts, pgn2data.WithOutputDir(p.Config.OutputDir))
	}
	if p.Config.Depth > 0 {
		opts = append(opts, pgn2data.WithDepth(p.Config.Depth))
	}
	if p.Config.Compression != "" {
		opts = append(opts, pgn2data.WithCompression(p.Config.Compression))
	}
	switch {
	case p.Config.Evaluator != nil:
		opts = append(opts, pgn2data.WithEvaluator(p.Config.Evaluator))
	case p.Config.EnginePath != "":
		opts = append(opts, pgn2data.WithEngine(p.Config.EnginePath))
	case p.Config.EvalDB != "":
		opts = append(opts, pgn2data.WithEvalDB(p.Config.EvalDB))
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			p.Collector.Summarize("export metrics")
			return nil
		},
	})

	return Result{
		Exporter:  pgn2data.New(opts...),
		Collector: p.Collector,
	}
}
