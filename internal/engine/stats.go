package engine

import "time"

// Phases accumulates wall time per phase.
type Phases struct {
	GC        time.Duration
	Weights   time.Duration
	Transpose time.Duration
	Select    time.Duration
	Apply     time.Duration
	Flush     time.Duration
	Renumber  time.Duration
}

func (p *Phases) add(o Phases) {
	p.GC += o.GC
	p.Weights += o.Weights
	p.Transpose += o.Transpose
	p.Select += o.Select
	p.Apply += o.Apply
	p.Flush += o.Flush
	p.Renumber += o.Renumber
}

// PassStats describes one merge pass.
type PassStats struct {
	Pass   int
	CWMax  int // weight ceiling the pass ran with
	CBound int

	Rows    int64 // live rows after the pass
	Cols    int64
	Weight  int64
	Density float64
	FillIn  int64

	Indexed        int // columns in the transpose
	Candidates     int // columns within the cost bound
	Merges         int
	DiscardedEarly int
	DiscardedLate  int

	Elapsed time.Duration
	Phases  Phases
}

// AverageFillIn returns the weight gained per removed row.
func (s PassStats) AverageFillIn() float64 {
	if s.Merges == 0 {
		return 0
	}
	return float64(s.FillIn) / float64(s.Merges)
}

// GCStats describes one full garbage collection.
type GCStats struct {
	Pass          int
	WasteBefore   float64
	WasteAfter    float64
	FullPages     int
	Examined      int
	GarbageWords  int64
	ExaminedWords int64
	Elapsed       time.Duration
}

// Recycled returns the fraction of examined words that were garbage.
func (s GCStats) Recycled() float64 {
	if s.ExaminedWords == 0 {
		return 0
	}
	return float64(s.GarbageWords) / float64(s.ExaminedWords)
}

// Result is the outcome of a full reduction.
type Result struct {
	Rows    int64
	Cols    int64
	Weight  int64
	Density float64
	Passes  int
	Merges  int64

	// EstimatedRows is the row count at which the density would have hit
	// the target, extrapolated from the last pass. Zero unless the target
	// was overshot.
	EstimatedRows int64

	Elapsed time.Duration
	Phases  Phases
}

// Excess returns the number of rows beyond the number of columns.
func (r Result) Excess() int64 {
	return r.Rows - r.Cols
}

// Observer receives statistics as the reduction progresses.
type Observer interface {
	RecordPass(PassStats)
	RecordGC(GCStats)
	RecordRenumber(elapsed time.Duration, liveColumns int)
}

type nopObserver struct{}

func (nopObserver) RecordPass(PassStats)              {}
func (nopObserver) RecordGC(GCStats)                  {}
func (nopObserver) RecordRenumber(time.Duration, int) {}
