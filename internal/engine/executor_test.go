package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TyrionQu/FactorMethods/internal/matrix"
	"github.com/TyrionQu/FactorMethods/testutil"
)

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// replay applies a merge history to the input rows, keyed by input column.
func replay(rows []map[uint32]int64, history []record) {
	for _, r := range history {
		if r.remove {
			rows[r.to] = nil
			continue
		}
		f := r.from
		if f < 0 {
			f = -f - 1
		}
		father, son := rows[f], rows[r.to]

		es, ef := son[r.col], father[r.col]
		d := gcd(es, ef)
		c1, c2 := ef/d, -es/d

		sum := make(map[uint32]int64, len(son)+len(father))
		for j, e := range son {
			sum[j] += c1 * e
		}
		for j, e := range father {
			sum[j] += c2 * e
		}
		for j, e := range sum {
			if e == 0 {
				delete(sum, j)
			}
		}
		rows[r.to] = sum

		if r.from >= 0 {
			rows[f] = nil
		}
	}
}

func TestMergeDo_ExponentTree(t *testing.T) {
	m := build(t, 1, 256, matrix.Config{Cols: 10}, [][]matrix.Exp{
		{{Col: 1, E: 1}, {Col: 7, E: 2}},
		{{Col: 2, E: 1}, {Col: 7, E: -3}},
		{{Col: 1, E: 1}, {Col: 3, E: 5}, {Col: 7, E: 1}},
	})
	rec := newMemRecorder(1)
	e, err := New(m, Config{Recorder: rec, Verify: true})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, e.prepare(ctx))
	require.NoError(t, m.ComputeWeights(ctx, 3))
	tr, err := m.BuildTranspose(ctx, 0, 3)
	require.NoError(t, err)

	c := -1
	for k := 0; k < tr.Rn; k++ {
		if m.OriginalColumn(tr.Column(k)) == 7 {
			c = k
		}
	}
	require.GreaterOrEqual(t, c, 0)
	require.Equal(t, 3, tr.Width(c))

	before := make([]map[uint32]int64, 3)
	for i := range before {
		before[i] = map[uint32]int64{}
		for _, x := range m.Row(uint32(i)) {
			before[i][m.OriginalColumn(x.Col)] = int64(x.E)
		}
	}

	fill, err := e.mergeDo(0, tr, c)
	require.NoError(t, err)
	m.Account(1, fill)
	require.NoError(t, rec.Flush(ctx))
	require.Len(t, rec.flushed, 2)

	replay(before, rec.flushed)
	live := 0
	for i, want := range before {
		if want == nil {
			assert.False(t, m.Live(uint32(i)))
			continue
		}
		live++
		got := map[uint32]int64{}
		for _, x := range m.Row(uint32(i)) {
			got[m.OriginalColumn(x.Col)] = int64(x.E)
		}
		assert.Equal(t, want, got, "row %d", i)
		assert.NotContains(t, got, uint32(7))
	}
	assert.Equal(t, 2, live)
	assert.Equal(t, int64(2), m.RemainingRows())
	require.NoError(t, m.Check())
}

func TestRun_PlainHistoryReplays(t *testing.T) {
	rng := testutil.NewRNG(3)
	rows := rng.SparseRows(300, 150, 2, 8)
	m := build(t, 4, 512, matrix.Config{Cols: 150}, toPlain(rows))
	rec := newMemRecorder(4)
	e, err := New(m, Config{Recorder: rec, Verify: true, TargetDensity: 1e9})
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(300)-res.Merges, res.Rows)

	sets := make([]map[uint32]bool, len(rows))
	for i, r := range rows {
		sets[i] = map[uint32]bool{}
		for _, j := range r {
			sets[i][j] = true
		}
	}
	replayGF2(sets, rec.flushed)
	for i, s := range sets {
		if s == nil {
			assert.False(t, m.Live(uint32(i)), "row %d", i)
			continue
		}
		require.True(t, m.Live(uint32(i)), "row %d", i)
		assert.Equal(t, len(s), m.Len(uint32(i)), "row %d", i)
	}
}

// replayGF2 applies a merge history to boolean rows.
func replayGF2(rows []map[uint32]bool, history []record) {
	for _, r := range history {
		if r.remove {
			rows[r.to] = nil
			continue
		}
		f := r.from
		if f < 0 {
			f = -f - 1
		}
		son := rows[r.to]
		for j := range rows[f] {
			if son[j] {
				delete(son, j)
			} else {
				son[j] = true
			}
		}
		if r.from >= 0 {
			rows[f] = nil
		}
	}
}

func TestRun_ExponentHistoryReplays(t *testing.T) {
	rng := testutil.NewRNG(5)
	cols := rng.SparseRows(300, 150, 2, 8)
	rows := make([][]matrix.Exp, len(cols))
	input := make([]map[uint32]int64, len(cols))
	for i, r := range cols {
		input[i] = map[uint32]int64{}
		for _, j := range r {
			e := int32(1)
			if rng.Intn(2) == 0 {
				e = -1
			}
			rows[i] = append(rows[i], matrix.Exp{Col: j, E: e})
			input[i][j] = int64(e)
		}
	}

	m := build(t, 4, 2048, matrix.Config{Cols: 150, MaxWeight: 4}, rows)
	rec := newMemRecorder(4)
	e, err := New(m, Config{Recorder: rec, Verify: true, TargetDensity: 20})
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(300)-res.Merges, res.Rows)

	replay(input, rec.flushed)
	for i, want := range input {
		if want == nil {
			assert.False(t, m.Live(uint32(i)), "row %d", i)
			continue
		}
		require.True(t, m.Live(uint32(i)), "row %d", i)
		got := map[uint32]int64{}
		for _, x := range m.Row(uint32(i)) {
			got[m.OriginalColumn(x.Col)] = int64(x.E)
		}
		assert.Equal(t, want, got, "row %d", i)
	}
}
