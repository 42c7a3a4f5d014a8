// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the exporter.
const (
	// Export metrics.
	MetricGamesExported  = "pgn2data_games_exported_total"
	MetricPliesExported  = "pgn2data_plies_exported_total"
	MetricFilesProcessed = "pgn2data_files_processed_total"
	MetricFilesFailed    = "pgn2data_files_failed_total"
	MetricQueueDepth     = "pgn2data_queue_depth"
	MetricGameSeconds    = "pgn2data_game_processing_seconds"
	MetricExportSeconds  = "pgn2data_export_seconds"
	MetricInvalidGames   = "pgn2data_invalid_games_total"

	// Position cache metrics.
	MetricPositionCacheHits   = "pgn2data_position_cache_hits_total"
	MetricPositionCacheMisses = "pgn2data_position_cache_misses_total"
	MetricPositionCacheSize   = "pgn2data_position_cache_size"

	// Evaluator metrics.
	MetricEvaluations        = "pgn2data_evaluations_total"
	MetricEvaluationFailures = "pgn2data_evaluation_failures_total"
	MetricEvaluationSeconds  = "pgn2data_evaluation_seconds"
	MetricEvalCacheHits      = "pgn2data_eval_cache_hits_total"
	MetricEvalCacheMisses    = "pgn2data_eval_cache_misses_total"

	// Evaluation database metrics.
	MetricLookups      = "pgn2data_evaldb_lookups_total"
	MetricHits         = "pgn2data_evaldb_hits_total"
	MetricMisses       = "pgn2data_evaldb_misses_total"
	MetricShardFetches = "pgn2data_evaldb_shard_fetches_total"

	// Shard cache metrics.
	MetricCacheHits   = "pgn2data_shard_cache_hits_total"
	MetricCacheMisses = "pgn2data_shard_cache_misses_total"
	MetricCacheSize   = "pgn2data_shard_cache_size"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
