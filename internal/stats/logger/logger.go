// Package logger provides a zap-backed stats collector. Every update is
// logged at debug level and counters are totalled so a run can end with a
// single summary line.
package logger

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/discochess/pgn2data/internal/stats"
)

// Collector implements stats.Collector by logging metrics via zap.
type Collector struct {
	logger *zap.Logger

	mu     sync.Mutex
	totals map[string]int64
	gauges map[string]int64
}

var _ stats.Collector = (*Collector)(nil)

// New creates a logging collector. A nil logger logs nothing but still
// keeps totals.
func New(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		logger: logger,
		totals: make(map[string]int64),
		gauges: make(map[string]int64),
	}
}

// IncCounter logs a counter increment and adds it to the running total.
func (c *Collector) IncCounter(name string, delta int64) {
	c.mu.Lock()
	c.totals[name] += delta
	c.mu.Unlock()
	c.logger.Debug("counter", zap.String("metric", name), zap.Int64("delta", delta))
}

// SetGauge logs a gauge value and remembers the latest one.
func (c *Collector) SetGauge(name string, value int64) {
	c.mu.Lock()
	c.gauges[name] = value
	c.mu.Unlock()
	c.logger.Debug("gauge", zap.String("metric", name), zap.Int64("value", value))
}

// ObserveHistogram logs a histogram observation.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.logger.Debug("histogram", zap.String("metric", name), zap.Float64("value", value))
}

// Total returns the accumulated value of a counter.
func (c *Collector) Total(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals[name]
}

// Gauge returns the last value set for a gauge.
func (c *Collector) Gauge(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gauges[name]
}

// Summarize logs every counter total and gauge value at info level in
// name order.
func (c *Collector) Summarize(msg string) {
	c.mu.Lock()
	fields := make([]zap.Field, 0, len(c.totals)+len(c.gauges))
	for _, name := range sortedKeys(c.totals) {
		fields = append(fields, zap.Int64(name, c.totals[name]))
	}
	for _, name := range sortedKeys(c.gauges) {
		fields = append(fields, zap.Int64(name, c.gauges[name]))
	}
	c.mu.Unlock()
	c.logger.Info(msg, fields...)
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
