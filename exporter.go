// Package pgn2data converts PGN chess game files into two CSV tables: one
// row per game with its metadata, and one row per half-move with material
// features of the resulting position and an optional engine evaluation.
//
// Example usage:
//
//	exp := pgn2data.New(
//	    pgn2data.WithOutputDir("out"),
//	    pgn2data.WithEngine("/usr/bin/stockfish"),
//	)
//	result := exp.Export(ctx, "lichess_2024-01.pgn.zst")
//	result.Summary(os.Stdout)
package pgn2data

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/pgn2data/internal/chessgame"
	"github.com/discochess/pgn2data/internal/codec"
	"github.com/discochess/pgn2data/internal/evaldb"
	"github.com/discochess/pgn2data/internal/evaluator"
	"github.com/discochess/pgn2data/internal/features"
	"github.com/discochess/pgn2data/internal/moves"
	"github.com/discochess/pgn2data/internal/pipeline"
	"github.com/discochess/pgn2data/internal/publish"
	"github.com/discochess/pgn2data/internal/stats"
	"github.com/discochess/pgn2data/internal/table"
)

// Sentinel errors for well-defined error conditions. Export logs them and
// reports an incomplete Result.
var (
	// ErrSourceNotFound indicates an empty input list or a missing input.
	ErrSourceNotFound = errors.New("pgn2data: source not found")

	// ErrOutputUnwritable indicates an output table could not be created.
	ErrOutputUnwritable = errors.New("pgn2data: output not writable")

	// ErrInvalidOption indicates an option value outside its range.
	ErrInvalidOption = errors.New("pgn2data: invalid option")
)

// Table name suffixes.
const (
	GamesSuffix = "_game_info.csv"
	MovesSuffix = "_moves.csv"
)

// Exporter converts PGN files into the games and moves tables. An Exporter
// may be reused; concurrent Export calls must write to different outputs.
type Exporter struct {
	opts options
}

// New returns an Exporter configured by opts.
func New(opts ...Option) *Exporter {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	return &Exporter{opts: cfg}
}

// Export converts sources, in order, into one pair of tables. It never
// fails outright: problems are logged and reflected in Result.Complete.
func (e *Exporter) Export(ctx context.Context, sources ...string) *Result {
	start := time.Now()
	logger := e.opts.logger
	logger.Info("export started",
		zap.Strings("sources", sources),
		zap.Time("started", start.UTC()),
	)

	result, err := e.export(ctx, sources)
	if err != nil {
		logger.Error("export failed", zap.Error(err))
	}
	result.Elapsed = time.Since(start)
	e.opts.stats.ObserveHistogram(stats.MetricExportSeconds, result.Elapsed.Seconds())

	logger.Info("export finished",
		zap.Bool("complete", result.Complete),
		zap.Int("games", result.Games),
		zap.Int("plies", result.Plies),
		zap.Duration("elapsed", result.Elapsed),
		zap.Time("ended", time.Now().UTC()),
	)
	return result
}

func (e *Exporter) export(ctx context.Context, sources []string) (*Result, error) {
	o := e.opts
	if err := validateSources(sources); err != nil {
		return emptyResult(), err
	}
	if o.queueSize < 0 {
		return emptyResult(), fmt.Errorf("%w: queue size %d", ErrInvalidOption, o.queueSize)
	}
	c, err := codec.ForName(o.compression)
	if err != nil {
		return emptyResult(), fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}

	factory, closeEval, err := e.evaluatorFactory(ctx)
	if err != nil {
		return emptyResult(), err
	}
	defer closeEval()

	schema := table.NewSchema(o.moves && factory != nil)
	name := o.outputName
	if name == "" {
		name = OutputName(sources[0])
	}
	gamesPath := filepath.Join(o.outputDir, codec.AppendExtension(name+GamesSuffix, c))
	movesPath := ""
	if o.moves {
		movesPath = filepath.Join(o.outputDir, codec.AppendExtension(name+MovesSuffix, c))
	}

	games, movesOut, err := openTables(gamesPath, movesPath, schema, c)
	if err != nil {
		return emptyResult(), err
	}

	engine := features.NewEngine(o.logger.Named("features"))
	cache := features.NewPositionCache(engine, o.stats)
	coordinator := pipeline.New(pipeline.Config{
		Processor: moves.New(moves.Config{
			Engine: engine,
			Cache:  cache,
			Schema: schema,
			Logger: o.logger.Named("moves"),
			Stats:  o.stats,
		}),
		QueueSize: o.queueSize,
		Depth:     o.depth,
		Logger:    o.logger.Named("pipeline"),
		Stats:     o.stats,
	})

	result := &Result{Complete: true}
	for _, source := range sources {
		sum, err := e.exportFile(ctx, coordinator, source, games, movesOut, factory)
		result.Games += sum.Games
		result.Plies += sum.Plies
		result.Skipped += sum.Skipped
		if err != nil {
			result.Complete = false
			o.stats.IncCounter(stats.MetricFilesFailed, 1)
			o.logger.Error("file failed", zap.String("file", source), zap.Error(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		o.stats.IncCounter(stats.MetricFilesProcessed, 1)
	}
	o.logger.Debug("position cache",
		zap.Int("positions", cache.Len()),
		zap.Int64("hits", cache.Hits()),
		zap.Int64("misses", cache.Misses()),
	)

	if err := closeTables(games, movesOut); err != nil {
		result.Complete = false
		o.logger.Error("closing tables", zap.Error(err))
	}

	if o.collapse {
		for _, path := range []string{gamesPath, movesPath} {
			if path == "" {
				continue
			}
			dropped, err := table.Collapse(path, c)
			if err != nil {
				result.Complete = false
				o.logger.Error("collapsing table", zap.String("file", path), zap.Error(err))
				continue
			}
			if len(dropped) > 0 {
				o.logger.Info("dropped empty columns", zap.String("file", path), zap.Strings("columns", dropped))
			}
		}
	}

	var exists bool
	result.GamesFile, exists = statFile(gamesPath)
	result.Complete = result.Complete && exists
	if movesPath != "" {
		f, ok := statFile(movesPath)
		result.MovesFile = &f
		result.Complete = result.Complete && ok
	}

	if o.publishTo != "" {
		urls, err := e.publish(ctx, gamesPath, movesPath)
		if err != nil {
			result.Complete = false
			return result, fmt.Errorf("publishing to %s: %w", o.publishTo, err)
		}
		result.Published = urls
	}
	return result, nil
}

// exportFile runs one input through the pipeline with its own evaluator.
func (e *Exporter) exportFile(ctx context.Context, coordinator *pipeline.Coordinator, path string, games, movesOut *table.Writer, factory evaluator.Factory) (pipeline.Summary, error) {
	logger := e.opts.logger.With(zap.String("file", path))
	start := time.Now()

	src, err := chessgame.Open(path, e.opts.logger.Named("pgn"))
	if err != nil {
		return pipeline.Summary{}, err
	}
	defer src.Close()

	var ev evaluator.Evaluator
	if movesOut != nil && factory != nil {
		ev, err = factory(ctx)
		if err != nil {
			return pipeline.Summary{}, fmt.Errorf("starting evaluator: %w", err)
		}
		defer func() {
			if err := ev.Close(); err != nil {
				logger.Warn("closing evaluator", zap.Error(err))
			}
		}()
	}

	// A nil *table.Writer must reach the coordinator as a nil interface.
	var movesRows table.RowWriter
	if movesOut != nil {
		movesRows = movesOut
	}
	sum, err := coordinator.Run(ctx, src, games, movesRows, ev)
	logger.Info("file processed",
		zap.Int("games", sum.Games),
		zap.Int("plies", sum.Plies),
		zap.Int("skipped", sum.Skipped),
		zap.Duration("elapsed", time.Since(start)),
	)
	return sum, err
}

// evaluatorFactory resolves the configured evaluator. The returned func
// releases anything shared across inputs.
func (e *Exporter) evaluatorFactory(ctx context.Context) (evaluator.Factory, func(), error) {
	o := e.opts
	noop := func() {}
	if !o.moves {
		return nil, noop, nil
	}

	var (
		factory evaluator.Factory
		release = noop
	)
	switch {
	case o.evaluator != nil:
		factory = o.evaluator
	case o.engine.Path != "":
		cfg := o.engine
		cfg.Logger = o.logger.Named("engine")
		factory = evaluator.EngineFactory(cfg)
	case o.evalDB != "":
		db, err := evaldb.Open(ctx, o.evalDB,
			evaldb.WithStats(o.stats),
			evaldb.WithLogger(o.logger.Named("evaldb")),
		)
		if err != nil {
			return nil, noop, fmt.Errorf("opening evaluation database: %w", err)
		}
		factory = evaluator.LookupFactory(db)
		release = func() {
			if err := db.Close(); err != nil {
				o.logger.Warn("closing evaluation database", zap.Error(err))
			}
		}
	default:
		return nil, noop, nil
	}

	if o.depth <= 0 {
		release()
		return nil, noop, fmt.Errorf("%w: %v", ErrInvalidOption, evaluator.ErrInvalidDepth)
	}
	if o.evalCacheSize > 0 {
		cached, err := evaluator.CachedFactory(factory, o.evalCacheSize, o.stats)
		if err != nil {
			release()
			return nil, noop, fmt.Errorf("%w: eval cache: %v", ErrInvalidOption, err)
		}
		factory = cached
	}
	return factory, release, nil
}

func (e *Exporter) publish(ctx context.Context, paths ...string) ([]string, error) {
	p, err := publish.Open(ctx, e.opts.publishTo, e.opts.logger.Named("publish"))
	if err != nil {
		return nil, err
	}
	defer p.Close()

	var files []string
	for _, path := range paths {
		if path != "" {
			files = append(files, path)
		}
	}
	objects, err := p.Publish(ctx, files...)
	if err != nil {
		return nil, err
	}
	urls := make([]string, len(objects))
	for i, obj := range objects {
		urls[i] = obj.URL
	}
	return urls, nil
}

// OutputName derives the table base name from an input path:
// "data/tal_1982.pgn.zst" gives "tal_1982".
func OutputName(source string) string {
	_, stripped := codec.ForPath(filepath.Base(source))
	return strings.TrimSuffix(stripped, ".pgn")
}

// validateSources requires a non-empty list of existing files.
func validateSources(sources []string) error {
	if len(sources) == 0 {
		return fmt.Errorf("%w: no input files", ErrSourceNotFound)
	}
	for _, s := range sources {
		info, err := os.Stat(s)
		if err != nil || info.IsDir() {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, s)
		}
	}
	return nil
}

// openTables creates both tables, or neither.
func openTables(gamesPath, movesPath string, schema table.Schema, c codec.Codec) (*table.Writer, *table.Writer, error) {
	games, err := table.Create(gamesPath, schema.Games, c)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrOutputUnwritable, err)
	}
	if movesPath == "" {
		return games, nil, nil
	}
	movesOut, err := table.Create(movesPath, schema.Moves, c)
	if err != nil {
		games.Close()
		return nil, nil, fmt.Errorf("%w: %v", ErrOutputUnwritable, err)
	}
	return games, movesOut, nil
}

func closeTables(games, movesOut *table.Writer) error {
	err := games.Close()
	if movesOut != nil {
		if cerr := movesOut.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
