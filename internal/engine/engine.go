package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TyrionQu/FactorMethods/internal/matrix"
)

const (
	// DefaultTargetDensity is the average row weight at which reduction
	// stops.
	DefaultTargetDensity = 170.0
	// PlainCostIncrement is the per-pass growth of the cost bound for
	// boolean rows.
	PlainCostIncrement = 13
	// ExpCostIncrement is the per-pass growth of the cost bound for rows
	// with exponents.
	ExpCostIncrement = 31

	// renumberRatio triggers a renumbering once fewer than this share of
	// the column range is live.
	renumberRatio = 0.66
)

// Config tunes the pass loop. The zero value uses the defaults.
type Config struct {
	TargetDensity float64
	// CostIncrement is added to the cost bound on every pass once the
	// weight ceiling exceeds 2.
	CostIncrement int
	// Verify checks the whole matrix after every pass.
	Verify bool

	Logger   *slog.Logger
	Observer Observer
	Recorder Recorder
}

// Engine reduces a matrix in place.
type Engine[E matrix.Element[E]] struct {
	m       *matrix.Matrix[E]
	target  float64
	incr    int
	verify  bool
	logger  *slog.Logger
	obs     Observer
	rec     Recorder
	scratch []scratch

	prepared bool
	pass     int
	cwmax    int
	cbound   int
	merges   int64
	phases   Phases

	// rows and weight at the start of the latest pass
	lastRows   int64
	lastWeight int64
}

// New creates an engine for m. The matrix must be fully built.
func New[E matrix.Element[E]](m *matrix.Matrix[E], cfg Config) (*Engine[E], error) {
	if cfg.TargetDensity < 0 {
		return nil, fmt.Errorf("%w: target density %v", ErrInvalidArgument, cfg.TargetDensity)
	}
	if cfg.CostIncrement < 0 {
		return nil, fmt.Errorf("%w: cost increment %d", ErrInvalidArgument, cfg.CostIncrement)
	}

	e := &Engine[E]{
		m:       m,
		target:  cfg.TargetDensity,
		incr:    cfg.CostIncrement,
		verify:  cfg.Verify,
		logger:  cfg.Logger,
		obs:     cfg.Observer,
		rec:     cfg.Recorder,
		scratch: make([]scratch, m.Pool().Workers()),
		cwmax:   min(2, m.MaxWeight()),
		cbound:  bias,
	}
	if e.target == 0 {
		e.target = DefaultTargetDensity
	}
	if e.incr == 0 {
		e.incr = PlainCostIncrement
		if m.Exponents() {
			e.incr = ExpCostIncrement
		}
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.obs == nil {
		e.obs = nopObserver{}
	}
	if e.rec == nil {
		e.rec = nopRecorder{}
	}
	return e, nil
}

// Pass returns the number of passes run.
func (e *Engine[E]) Pass() int { return e.pass }

// CWMax returns the weight ceiling of the next pass.
func (e *Engine[E]) CWMax() int { return e.cwmax }

// CBound returns the current cost bound.
func (e *Engine[E]) CBound() int { return e.cbound }

// Run merges until the target density is reached or no merge is left.
func (e *Engine[E]) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		st, err := e.Step(ctx)
		if err != nil {
			return Result{}, err
		}
		if e.done(st) {
			break
		}
	}
	res := e.result(time.Since(start))

	e.logger.Info("merge finished",
		"rows", res.Rows,
		"cols", res.Cols,
		"excess", res.Excess(),
		"weight", res.Weight,
		"density", res.Density,
		"passes", res.Passes,
		"merges", res.Merges,
		"elapsed", res.Elapsed,
	)
	if res.EstimatedRows > 0 {
		e.logger.Info("target density overshot",
			"estimated_rows", res.EstimatedRows,
			"target_density", e.target,
		)
	}
	e.logger.Debug("phase totals",
		"gc", res.Phases.GC,
		"weights", res.Phases.Weights,
		"transpose", res.Phases.Transpose,
		"select", res.Phases.Select,
		"apply", res.Phases.Apply,
		"flush", res.Phases.Flush,
		"renumber", res.Phases.Renumber,
	)
	return res, nil
}

// prepare drops the empty columns left by ingestion.
func (e *Engine[E]) prepare(ctx context.Context) error {
	if e.prepared {
		return nil
	}
	e.prepared = true

	var ph Phases
	if err := e.renumber(ctx, &ph); err != nil {
		return err
	}
	e.phases.add(ph)

	e.logger.Info("matrix ready",
		"rows", e.m.RemainingRows(),
		"cols", e.m.RemainingCols(),
		"weight", e.m.TotalWeight(),
		"density", e.m.Density(),
		"max_weight", e.m.MaxWeight(),
		"cost_increment", e.incr,
		"page_words", e.m.Arena().PageWords(),
		"workers", e.m.Pool().Workers(),
	)
	return nil
}

// Step runs one merge pass.
func (e *Engine[E]) Step(ctx context.Context) (PassStats, error) {
	if err := e.prepare(ctx); err != nil {
		return PassStats{}, err
	}

	m := e.m
	start := time.Now()
	e.pass++
	m.Arena().SetPass(e.pass)
	st := PassStats{Pass: e.pass}

	// Pages written since ingestion hold many dead rows by pass 2. Past
	// ceiling 2 merges rewrite rows fast enough to collect every pass.
	if e.pass == 2 || e.cwmax > 2 {
		if err := e.collect(ctx, &st.Phases); err != nil {
			return PassStats{}, err
		}
	}
	if e.cwmax > 2 {
		e.cbound += e.incr
	}
	st.CWMax, st.CBound = e.cwmax, e.cbound

	e.lastRows = m.RemainingRows()
	e.lastWeight = m.TotalWeight()

	// later passes keep weights up to date through the merges
	if e.pass == 1 {
		t := time.Now()
		if err := m.ComputeWeights(ctx, e.cwmax); err != nil {
			return PassStats{}, fmt.Errorf("engine: computing weights: %w", err)
		}
		st.Phases.Weights = time.Since(t)
		e.logger.Debug("weights computed", "pass", e.pass, "elapsed", st.Phases.Weights)
	}

	t := time.Now()
	tr, err := m.BuildTranspose(ctx, m.JMin(e.cwmax), e.cwmax)
	if err != nil {
		return PassStats{}, fmt.Errorf("engine: building transpose: %w", err)
	}
	st.Phases.Transpose = time.Since(t)
	st.Indexed = tr.Rn
	e.logger.Debug("transpose built",
		"pass", e.pass,
		"columns", tr.Rn,
		"entries", tr.Nnz(),
		"elapsed", st.Phases.Transpose,
	)

	t = time.Now()
	L, err := selectMerges(ctx, m, tr, e.cwmax, e.cbound)
	if err != nil {
		return PassStats{}, fmt.Errorf("engine: selecting merges: %w", err)
	}
	st.Phases.Select = time.Since(t)
	st.Candidates = len(L)
	e.logger.Debug("merges selected", "pass", e.pass, "candidates", len(L), "elapsed", st.Phases.Select)

	t = time.Now()
	as, err := e.applyMerges(ctx, tr, L)
	if err != nil {
		return PassStats{}, fmt.Errorf("engine: applying merges: %w", err)
	}
	st.Phases.Apply = time.Since(t)
	st.Merges = as.merges
	st.FillIn = as.fillIn
	st.DiscardedEarly = as.early
	st.DiscardedLate = as.late
	e.merges += int64(as.merges)
	e.logger.Debug("merges applied",
		"pass", e.pass,
		"merges", as.merges,
		"discarded_early", as.early,
		"discarded_late", as.late,
		"elapsed", st.Phases.Apply,
	)

	t = time.Now()
	if err := e.rec.Flush(ctx); err != nil {
		return PassStats{}, fmt.Errorf("engine: flushing history: %w", err)
	}
	st.Phases.Flush = time.Since(t)

	// every 2-merge goes first; after that the ceiling rises each pass
	if e.cwmax < m.MaxWeight() && (e.cwmax != 2 || as.merges == len(L)) {
		e.cwmax++
	}

	if float64(m.RemainingCols()) < renumberRatio*float64(m.Cols()) {
		if err := e.renumber(ctx, &st.Phases); err != nil {
			return PassStats{}, err
		}
	}

	if e.verify {
		if err := m.Check(); err != nil {
			return PassStats{}, fmt.Errorf("engine: after pass %d: %w", e.pass, err)
		}
	}

	st.Rows = m.RemainingRows()
	st.Cols = m.RemainingCols()
	st.Weight = m.TotalWeight()
	st.Density = m.Density()
	st.Elapsed = time.Since(start)
	e.phases.add(st.Phases)

	e.logger.Info("merge pass",
		"pass", st.Pass,
		"cwmax", st.CWMax,
		"cbound", st.CBound,
		"rows", st.Rows,
		"weight", st.Weight,
		"density", st.Density,
		"fill_in", st.AverageFillIn(),
		"merges", st.Merges,
		"candidates", st.Candidates,
		"discarded_early", st.DiscardedEarly,
		"discarded_late", st.DiscardedLate,
		"elapsed", st.Elapsed,
	)
	e.obs.RecordPass(st)
	return st, nil
}

// done reports whether the pass that produced st was the last one.
func (e *Engine[E]) done(st PassStats) bool {
	if st.Density >= e.target {
		return true
	}
	return st.Merges == 0 && e.cwmax == e.m.MaxWeight()
}

func (e *Engine[E]) collect(ctx context.Context, ph *Phases) error {
	t := time.Now()
	gs, err := e.m.CollectGarbage(ctx)
	if err != nil {
		return fmt.Errorf("engine: collecting garbage: %w", err)
	}
	ph.GC = time.Since(t)

	stats := GCStats{
		Pass:          e.pass,
		WasteBefore:   gs.WasteBefore,
		WasteAfter:    gs.WasteAfter,
		FullPages:     gs.FullPages,
		Examined:      gs.Examined,
		GarbageWords:  gs.GarbageWords,
		ExaminedWords: gs.ExaminedWords,
		Elapsed:       ph.GC,
	}
	e.logger.Debug("garbage collected",
		"pass", e.pass,
		"waste_before", stats.WasteBefore,
		"waste_after", stats.WasteAfter,
		"full_pages", stats.FullPages,
		"examined", stats.Examined,
		"recycled", stats.Recycled(),
		"elapsed", stats.Elapsed,
	)
	e.obs.RecordGC(stats)
	return nil
}

func (e *Engine[E]) renumber(ctx context.Context, ph *Phases) error {
	t := time.Now()
	live, err := e.m.Renumber(ctx)
	if err != nil {
		return fmt.Errorf("engine: renumbering columns: %w", err)
	}
	d := time.Since(t)
	ph.Renumber += d

	e.logger.Debug("columns renumbered", "pass", e.pass, "cols", live, "elapsed", d)
	e.obs.RecordRenumber(d, live)
	return nil
}

func (e *Engine[E]) result(elapsed time.Duration) Result {
	m := e.m
	res := Result{
		Rows:    m.RemainingRows(),
		Cols:    m.RemainingCols(),
		Weight:  m.TotalWeight(),
		Density: m.Density(),
		Passes:  e.pass,
		Merges:  e.merges,
		Elapsed: elapsed,
		Phases:  e.phases,
	}
	res.EstimatedRows = e.estimate()
	return res
}

// estimate extrapolates, from the density change over the last pass, the
// row count at which the density equals the target. Density is assumed
// linear in the row count.
func (e *Engine[E]) estimate() int64 {
	m := e.m
	n := m.RemainingRows()
	if n == 0 || e.lastRows == n || m.Density() <= e.target {
		return 0
	}
	density := m.Density()
	lastDensity := float64(e.lastWeight) / float64(e.lastRows)

	a := (lastDensity - density) / float64(e.lastRows-n)
	if a == 0 {
		return 0
	}
	b := density - a*float64(n)
	return int64((e.target - b) / a)
}
