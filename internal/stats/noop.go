package stats

// Noop discards every metric. Components fall back to it when no collector
// is configured.
type Noop struct{}

var _ Collector = (*Noop)(nil)

// NewNoop returns a collector that records nothing.
func NewNoop() *Noop {
	return &Noop{}
}

func (*Noop) IncCounter(string, int64)         {}
func (*Noop) SetGauge(string, int64)           {}
func (*Noop) ObserveHistogram(string, float64) {}
