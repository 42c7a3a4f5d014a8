package pgn2data

import (
	"go.uber.org/zap"

	"github.com/discochess/pgn2data/internal/evaluator"
	"github.com/discochess/pgn2data/internal/stats"
)

// Option configures an Exporter.
type Option interface {
	apply(*options)
}

// options holds the exporter configuration.
type options struct {
	outputDir   string
	outputName  string
	moves       bool
	queueSize   int
	depth       int
	collapse    bool
	compression string

	engine        evaluator.EngineConfig
	evalDB        string
	evaluator     evaluator.Factory
	evalCacheSize int

	publishTo string

	stats  stats.Collector
	logger *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		outputDir: ".",
		moves:     true,
		depth:     evaluator.DefaultDepth,
		stats:     stats.NewNoop(),
		logger:    zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithOutputDir sets the directory the tables are written to.
// Default is the working directory.
func WithOutputDir(dir string) Option {
	return optionFunc(func(o *options) {
		o.outputDir = dir
	})
}

// WithOutputName sets the base name of the tables: <name>_game_info.csv
// and <name>_moves.csv. If not set, the first input's name without ".pgn"
// is used.
func WithOutputName(name string) Option {
	return optionFunc(func(o *options) {
		o.outputName = name
	})
}

// WithMoves sets whether the moves table is produced. Default is true.
func WithMoves(required bool) Option {
	return optionFunc(func(o *options) {
		o.moves = required
	})
}

// WithQueueSize bounds the number of games waiting for move processing.
// Default is 0, an unbounded queue.
func WithQueueSize(n int) Option {
	return optionFunc(func(o *options) {
		o.queueSize = n
	})
}

// WithDepth sets the evaluation search depth. Default is 20.
func WithDepth(depth int) Option {
	return optionFunc(func(o *options) {
		o.depth = depth
	})
}

// WithCollapse removes columns that are empty in every row once the
// tables are written.
func WithCollapse(collapse bool) Option {
	return optionFunc(func(o *options) {
		o.collapse = collapse
	})
}

// WithCompression compresses the tables with a codec: "none", "gzip" or
// "zstd". The codec extension is appended to the file names.
func WithCompression(name string) Option {
	return optionFunc(func(o *options) {
		o.compression = name
	})
}

// WithEngine evaluates positions with the UCI engine at path, e.g.
// /usr/bin/stockfish. A fresh engine process is started for each input.
func WithEngine(path string) Option {
	return optionFunc(func(o *options) {
		o.engine.Path = path
	})
}

// WithEngineResources sets the engine hash size and thread count. Zero
// keeps the engine's defaults.
func WithEngineResources(hashMB, threads int) Option {
	return optionFunc(func(o *options) {
		o.engine.HashMB = hashMB
		o.engine.Threads = threads
	})
}

// WithEvalDB evaluates positions from a precomputed evaluation database at
// location: a directory, gs:// or s3:// URL.
func WithEvalDB(location string) Option {
	return optionFunc(func(o *options) {
		o.evalDB = location
	})
}

// WithEvaluator sets a custom evaluator factory. It takes precedence over
// WithEngine and WithEvalDB.
func WithEvaluator(f EvaluatorFactory) Option {
	return optionFunc(func(o *options) {
		o.evaluator = f
	})
}

// WithEvalCache memoizes up to n evaluations across all inputs.
// Default is 0, no cache.
func WithEvalCache(n int) Option {
	return optionFunc(func(o *options) {
		o.evalCacheSize = n
	})
}

// WithPublish uploads the finished tables to location, e.g.
// "gs://bucket/exports" or "s3://bucket/exports".
func WithPublish(location string) Option {
	return optionFunc(func(o *options) {
		o.publishTo = location
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}
