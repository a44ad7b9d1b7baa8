package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TyrionQu/FactorMethods/internal/arena"
	"github.com/TyrionQu/FactorMethods/internal/matrix"
	"github.com/TyrionQu/FactorMethods/internal/parallel"
	"github.com/TyrionQu/FactorMethods/testutil"
)

type record struct {
	remove bool
	from   int64
	to     uint32
	col    uint32
}

// memRecorder keeps per-worker records and publishes them on Flush.
type memRecorder struct {
	mu      sync.Mutex
	pending [][]record
	flushed []record
	flushes int
}

func newMemRecorder(workers int) *memRecorder {
	return &memRecorder{pending: make([][]record, workers)}
}

func (r *memRecorder) Remove(t int, i uint32, col uint32) {
	r.pending[t] = append(r.pending[t], record{remove: true, to: i, col: col})
}

func (r *memRecorder) Add(t int, from int64, to uint32, col uint32) {
	r.pending[t] = append(r.pending[t], record{from: from, to: to, col: col})
}

func (r *memRecorder) Flush(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for t := range r.pending {
		r.flushed = append(r.flushed, r.pending[t]...)
		r.pending[t] = r.pending[t][:0]
	}
	r.flushes++
	return nil
}

func build[E matrix.Element[E]](t *testing.T, workers, pageWords int, cfg matrix.Config, rows [][]E) *matrix.Matrix[E] {
	t.Helper()
	a, err := arena.New(workers, arena.WithPageWords(pageWords), arena.WithElemWords(matrix.ElemWords[E]()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	cfg.Rows = len(rows)
	m, err := matrix.New[E](a, parallel.New(workers), cfg)
	require.NoError(t, err)

	b := matrix.NewBuilder(m)
	for i, r := range rows {
		require.NoError(t, b.Add(uint32(i), r))
	}
	require.NoError(t, b.Finish())
	return m
}

func plain(rows ...[]uint32) [][]matrix.Plain {
	out := make([][]matrix.Plain, len(rows))
	for i, r := range rows {
		out[i] = make([]matrix.Plain, len(r))
		for k, j := range r {
			out[i][k] = matrix.Plain(j)
		}
	}
	return out
}

func TestNew_Validation(t *testing.T) {
	m := build(t, 1, 256, matrix.Config{Cols: 4}, plain([]uint32{1, 2}))

	_, err := New(m, Config{TargetDensity: -1})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(m, Config{CostIncrement: -1})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	e, err := New(m, Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultTargetDensity, e.target)
	assert.Equal(t, PlainCostIncrement, e.incr)
	assert.Equal(t, 2, e.CWMax())
	assert.Equal(t, bias, e.CBound())

	me := build(t, 1, 256, matrix.Config{Cols: 4}, [][]matrix.Exp{{{Col: 1, E: 1}}})
	ee, err := New(me, Config{})
	require.NoError(t, err)
	assert.Equal(t, ExpCostIncrement, ee.incr)
}

func TestStep_Triangle(t *testing.T) {
	m := build(t, 1, 256, matrix.Config{Cols: 4},
		plain([]uint32{1, 2}, []uint32{2, 3}, []uint32{1, 3}))
	rec := newMemRecorder(1)
	e, err := New(m, Config{Recorder: rec, Verify: true})
	require.NoError(t, err)

	st, err := e.Step(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, st.Pass)
	assert.Equal(t, 2, st.CWMax)
	assert.Equal(t, 3, st.Indexed)
	assert.Equal(t, 3, st.Candidates, "every column is a width-2 candidate")
	assert.Equal(t, 1, st.Merges)
	assert.Equal(t, 2, st.DiscardedEarly+st.DiscardedLate)
	assert.Equal(t, int64(2), st.Rows)
	assert.Equal(t, int64(2), st.Cols)
	assert.Equal(t, int64(-2), st.FillIn)
	assert.Equal(t, int64(4), st.Weight)

	// not every offered 2-merge went through
	assert.Equal(t, 2, e.CWMax())

	require.Len(t, rec.flushed, 1)
	r := rec.flushed[0]
	assert.False(t, r.remove)
	assert.GreaterOrEqual(t, r.from, int64(0), "the single edge removes the root")
	assert.False(t, m.Live(uint32(r.from)))
	assert.True(t, m.Live(r.to))
}

func TestStep_WidthOneColumn(t *testing.T) {
	m := build(t, 1, 256, matrix.Config{Cols: 6},
		plain([]uint32{5}, []uint32{1, 2}, []uint32{1, 2}, []uint32{1, 2}))
	rec := newMemRecorder(1)
	e, err := New(m, Config{Recorder: rec, Verify: true})
	require.NoError(t, err)

	st, err := e.Step(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, st.Candidates)
	assert.Equal(t, 1, st.Merges)
	assert.Equal(t, int64(-1), st.FillIn)
	assert.Equal(t, int64(3), st.Rows)
	assert.Equal(t, int64(6), st.Weight)
	assert.False(t, m.Live(0))

	require.Len(t, rec.flushed, 1)
	assert.Equal(t, record{remove: true, to: 0, col: rec.flushed[0].col}, rec.flushed[0])

	// the only candidate was applied, so the ceiling moves on
	assert.Equal(t, 3, e.CWMax())
}

func TestRun_Triangle(t *testing.T) {
	m := build(t, 1, 256, matrix.Config{Cols: 4},
		plain([]uint32{1, 2}, []uint32{2, 3}, []uint32{1, 3}))
	rec := newMemRecorder(1)
	obs := &countingObserver{}
	e, err := New(m, Config{Recorder: rec, Observer: obs, Verify: true})
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.Rows)
	assert.Equal(t, int64(2), res.Merges)
	assert.Equal(t, int64(0), res.Weight, "the three rows are dependent")
	assert.Equal(t, matrix.MaxMergeWidth, e.CWMax())
	assert.Equal(t, res.Passes, obs.passes)
	assert.Equal(t, res.Passes, rec.flushes)
	assert.Positive(t, obs.gcs)
	assert.Zero(t, res.EstimatedRows)
}

type countingObserver struct {
	passes    int
	gcs       int
	renumbers int
}

func (o *countingObserver) RecordPass(PassStats) { o.passes++ }
func (o *countingObserver) RecordGC(GCStats)     { o.gcs++ }
func (o *countingObserver) RecordRenumber(_ time.Duration, _ int) {
	o.renumbers++
}

func TestRun_StopsAtTargetDensity(t *testing.T) {
	rng := testutil.NewRNG(7)
	rows := rng.SparseRows(400, 300, 3, 12)
	m := build(t, 4, 1024, matrix.Config{Cols: 300}, toPlain(rows))
	e, err := New(m, Config{TargetDensity: 12, Verify: true})
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)

	if res.Density >= 12 {
		assert.GreaterOrEqual(t, res.Density, 12.0)
	} else {
		assert.Equal(t, matrix.MaxMergeWidth, e.CWMax())
	}
	assert.Equal(t, int64(400)-res.Merges, res.Rows, "each merge removes one row")
	require.NoError(t, m.Check())
}

func toPlain(rows [][]uint32) [][]matrix.Plain {
	return plain(rows...)
}
