// Package prometheus provides a Prometheus-backed stats collector for the
// exporter's metrics endpoint.
package prometheus

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/discochess/pgn2data/internal/stats"
)

// help describes the metrics the exporter emits. Unknown names fall back to
// their own name.
var help = map[string]string{
	stats.MetricGamesExported:       "Games written to the games table.",
	stats.MetricPliesExported:       "Plies written to the moves table.",
	stats.MetricFilesProcessed:      "Input files exported.",
	stats.MetricFilesFailed:         "Input files that could not be exported.",
	stats.MetricQueueDepth:          "Games waiting between producer and consumer.",
	stats.MetricGameSeconds:         "Time spent turning one game into move rows.",
	stats.MetricExportSeconds:       "Wall time of one input file export.",
	stats.MetricInvalidGames:        "Games skipped because their moves could not be replayed.",
	stats.MetricPositionCacheHits:   "Placement rank tables served from cache.",
	stats.MetricPositionCacheMisses: "Placement rank tables computed.",
	stats.MetricPositionCacheSize:   "Distinct placements in the position cache.",
	stats.MetricEvaluations:         "Position evaluations requested.",
	stats.MetricEvaluationFailures:  "Position evaluations that failed and were zero-filled.",
	stats.MetricEvaluationSeconds:   "Latency of one position evaluation.",
	stats.MetricEvalCacheHits:       "Evaluations served from the evaluation cache.",
	stats.MetricEvalCacheMisses:     "Evaluations forwarded past the evaluation cache.",
	stats.MetricLookups:             "Evaluation database lookups.",
	stats.MetricHits:                "Evaluation database lookups that found the position.",
	stats.MetricMisses:              "Evaluation database lookups that missed.",
	stats.MetricShardFetches:        "Evaluation database shards read from the backend.",
	stats.MetricCacheHits:           "Evaluation database shards served from cache.",
	stats.MetricCacheMisses:         "Evaluation database shards not in cache.",
	stats.MetricCacheSize:           "Evaluation database shards held in cache.",
}

// buckets overrides prometheus.DefBuckets for latency metrics whose range is
// known up front.
var buckets = map[string][]float64{
	// Engine searches run from sub-millisecond cache hits to multi-second
	// deep searches.
	stats.MetricEvaluationSeconds: prometheus.ExponentialBuckets(0.0005, 4, 10),
	stats.MetricGameSeconds:       prometheus.ExponentialBuckets(0.0001, 4, 12),
	stats.MetricExportSeconds:     prometheus.ExponentialBuckets(0.1, 4, 10),
}

// Collector implements stats.Collector with lazily registered Prometheus
// metrics.
type Collector struct {
	registry prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a collector registering into registry, or into
// prometheus.DefaultRegisterer when registry is nil.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	return &Collector{
		registry:   registry,
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// IncCounter adds delta to the counter called name.
func (c *Collector) IncCounter(name string, delta int64) {
	c.mu.Lock()
	m := lookup(c, c.counters, name, func() prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: helpFor(name)})
	})
	c.mu.Unlock()
	m.Add(float64(delta))
}

// SetGauge sets the gauge called name.
func (c *Collector) SetGauge(name string, value int64) {
	c.mu.Lock()
	m := lookup(c, c.gauges, name, func() prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: helpFor(name)})
	})
	c.mu.Unlock()
	m.Set(float64(value))
}

// ObserveHistogram records value in the histogram called name.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.mu.Lock()
	m := lookup(c, c.histograms, name, func() prometheus.Histogram {
		b, ok := buckets[name]
		if !ok {
			b = prometheus.DefBuckets
		}
		return prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: helpFor(name), Buckets: b})
	})
	c.mu.Unlock()
	m.Observe(value)
}

// lookup returns the cached metric for name, creating and registering it on
// first use. A metric already registered elsewhere under the same name is
// adopted. c.mu must be held.
func lookup[M prometheus.Collector](c *Collector, cache map[string]M, name string, create func() M) M {
	if m, ok := cache[name]; ok {
		return m
	}
	m := create()
	if err := c.registry.Register(m); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(M); ok {
				m = existing
			}
		}
	}
	cache[name] = m
	return m
}

func helpFor(name string) string {
	if h, ok := help[name]; ok {
		return h
	}
	return name
}
