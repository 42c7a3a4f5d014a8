package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCollector_Totals(t *testing.T) {
	c := New(nil)

	c.IncCounter("games", 2)
	c.IncCounter("games", 3)
	c.SetGauge("depth", 7)
	c.SetGauge("depth", 4)
	c.ObserveHistogram("latency", 0.25)

	if got := c.Total("games"); got != 5 {
		t.Errorf("Total(games) = %d, want 5", got)
	}
	if got := c.Gauge("depth"); got != 4 {
		t.Errorf("Gauge(depth) = %d, want 4", got)
	}
	if got := c.Total("missing"); got != 0 {
		t.Errorf("Total(missing) = %d, want 0", got)
	}
}

func TestCollector_LogsUpdates(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c := New(zap.New(core))

	c.IncCounter("games", 1)
	c.SetGauge("depth", 2)
	c.ObserveHistogram("latency", 0.5)

	if got := logs.Len(); got != 3 {
		t.Fatalf("logged %d entries, want 3", got)
	}
	entries := logs.All()
	for i, want := range []string{"counter", "gauge", "histogram"} {
		if entries[i].Message != want {
			t.Errorf("entry %d message = %q, want %q", i, entries[i].Message, want)
		}
	}
}

func TestCollector_Summarize(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := New(zap.New(core))

	c.IncCounter("b_total", 2)
	c.IncCounter("a_total", 1)
	c.SetGauge("size", 9)
	c.Summarize("export finished")

	entries := logs.FilterMessage("export finished").All()
	if len(entries) != 1 {
		t.Fatalf("summary entries = %d, want 1", len(entries))
	}
	fields := entries[0].Context
	if len(fields) != 3 {
		t.Fatalf("summary fields = %d, want 3", len(fields))
	}
	if fields[0].Key != "a_total" || fields[1].Key != "b_total" || fields[2].Key != "size" {
		t.Errorf("summary order = %s, %s, %s", fields[0].Key, fields[1].Key, fields[2].Key)
	}
	if fields[2].Integer != 9 {
		t.Errorf("size = %d, want 9", fields[2].Integer)
	}
}
