package factormethods

import (
	"sync/atomic"
	"time"

	"github.com/TyrionQu/FactorMethods/internal/engine"
)

type (
	// PassStats describes one merge pass.
	PassStats = engine.PassStats
	// GCStats describes one full garbage collection of the row arena.
	GCStats = engine.GCStats
	// Phases holds wall time per phase of the pass loop.
	Phases = engine.Phases
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    passes  prometheus.Counter
//	    density prometheus.Gauge
//	}
//
//	func (p *PrometheusCollector) RecordPass(st factormethods.PassStats) {
//	    p.passes.Inc()
//	    p.density.Set(st.Density)
//	}
type MetricsCollector interface {
	// RecordPass is called after each merge pass.
	RecordPass(st PassStats)

	// RecordGC is called after each full garbage collection.
	RecordGC(st GCStats)

	// RecordRenumber is called after columns are renumbered.
	// liveColumns is the column count after renumbering.
	RecordRenumber(duration time.Duration, liveColumns int)
}

var _ engine.Observer = MetricsCollector(nil)

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPass(PassStats)              {}
func (NoopMetricsCollector) RecordGC(GCStats)                  {}
func (NoopMetricsCollector) RecordRenumber(time.Duration, int) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	PassCount        atomic.Int64
	PassTotalNanos   atomic.Int64
	Merges           atomic.Int64
	FillIn           atomic.Int64
	Candidates       atomic.Int64
	DiscardedEarly   atomic.Int64
	DiscardedLate    atomic.Int64
	LastRows         atomic.Int64
	LastWeight       atomic.Int64
	GCCount          atomic.Int64
	GCTotalNanos     atomic.Int64
	GCGarbageWords   atomic.Int64
	RenumberCount    atomic.Int64
	RenumberNanos    atomic.Int64
	LastLiveColumns  atomic.Int64
	ApplyTotalNanos  atomic.Int64
	SelectTotalNanos atomic.Int64
}

// RecordPass implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPass(st PassStats) {
	b.PassCount.Add(1)
	b.PassTotalNanos.Add(st.Elapsed.Nanoseconds())
	b.Merges.Add(int64(st.Merges))
	b.FillIn.Add(st.FillIn)
	b.Candidates.Add(int64(st.Candidates))
	b.DiscardedEarly.Add(int64(st.DiscardedEarly))
	b.DiscardedLate.Add(int64(st.DiscardedLate))
	b.LastRows.Store(st.Rows)
	b.LastWeight.Store(st.Weight)
	b.ApplyTotalNanos.Add(st.Phases.Apply.Nanoseconds())
	b.SelectTotalNanos.Add(st.Phases.Select.Nanoseconds())
}

// RecordGC implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGC(st GCStats) {
	b.GCCount.Add(1)
	b.GCTotalNanos.Add(st.Elapsed.Nanoseconds())
	b.GCGarbageWords.Add(st.GarbageWords)
}

// RecordRenumber implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRenumber(duration time.Duration, liveColumns int) {
	b.RenumberCount.Add(1)
	b.RenumberNanos.Add(duration.Nanoseconds())
	b.LastLiveColumns.Store(int64(liveColumns))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PassCount:       b.PassCount.Load(),
		PassAvgNanos:    b.getAvgPassNanos(),
		Merges:          b.Merges.Load(),
		FillIn:          b.FillIn.Load(),
		Candidates:      b.Candidates.Load(),
		DiscardedEarly:  b.DiscardedEarly.Load(),
		DiscardedLate:   b.DiscardedLate.Load(),
		Rows:            b.LastRows.Load(),
		Weight:          b.LastWeight.Load(),
		GCCount:         b.GCCount.Load(),
		GCGarbageWords:  b.GCGarbageWords.Load(),
		RenumberCount:   b.RenumberCount.Load(),
		LiveColumns:     b.LastLiveColumns.Load(),
		ApplyTotalNanos: b.ApplyTotalNanos.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgPassNanos() int64 {
	count := b.PassCount.Load()
	if count == 0 {
		return 0
	}
	return b.PassTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PassCount       int64
	PassAvgNanos    int64
	Merges          int64
	FillIn          int64
	Candidates      int64
	DiscardedEarly  int64
	DiscardedLate   int64
	Rows            int64
	Weight          int64
	GCCount         int64
	GCGarbageWords  int64
	RenumberCount   int64
	LiveColumns     int64
	ApplyTotalNanos int64
}

// Discarded returns the number of candidates dropped because of conflicts.
func (s BasicMetricsStats) Discarded() int64 {
	return s.DiscardedEarly + s.DiscardedLate
}
