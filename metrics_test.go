package factormethods

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TyrionQu/FactorMethods/testutil"
)

func TestBasicMetricsCollector_Reduce(t *testing.T) {
	rng := testutil.NewRNG(17)
	input := testutil.FormatPurged(rng.SparseRows(250, 180, 2, 7), nil, 180)

	mc := &BasicMetricsCollector{}
	var out bytes.Buffer
	rep, err := ReduceStream(context.Background(), strings.NewReader(input), &out,
		testOpts(WithMetricsCollector(mc), WithTargetDensity(25))...)
	require.NoError(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(rep.Passes), stats.PassCount)
	assert.Equal(t, rep.Merges, stats.Merges)
	assert.Equal(t, rep.Rows, stats.Rows)
	assert.Equal(t, rep.Weight, stats.Weight)
	assert.GreaterOrEqual(t, stats.Candidates, stats.Merges)
	assert.Equal(t, stats.DiscardedEarly+stats.DiscardedLate, stats.Discarded())
	assert.Positive(t, stats.RenumberCount)
	assert.Positive(t, stats.GCCount)
}

func TestBasicMetricsCollector_Snapshot(t *testing.T) {
	mc := &BasicMetricsCollector{}
	assert.Zero(t, mc.GetStats().PassAvgNanos)

	mc.RecordPass(PassStats{Merges: 3, FillIn: 5, Rows: 10, Weight: 40, Elapsed: 2 * time.Millisecond})
	mc.RecordPass(PassStats{Merges: 1, FillIn: -2, Rows: 9, Weight: 38, Elapsed: 4 * time.Millisecond})
	mc.RecordGC(GCStats{GarbageWords: 100, Elapsed: time.Millisecond})
	mc.RecordRenumber(time.Millisecond, 7)

	stats := mc.GetStats()
	assert.Equal(t, int64(2), stats.PassCount)
	assert.Equal(t, (3 * time.Millisecond).Nanoseconds(), stats.PassAvgNanos)
	assert.Equal(t, int64(4), stats.Merges)
	assert.Equal(t, int64(3), stats.FillIn)
	assert.Equal(t, int64(9), stats.Rows)
	assert.Equal(t, int64(38), stats.Weight)
	assert.Equal(t, int64(1), stats.GCCount)
	assert.Equal(t, int64(100), stats.GCGarbageWords)
	assert.Equal(t, int64(1), stats.RenumberCount)
	assert.Equal(t, int64(7), stats.LiveColumns)
}

func TestWithMetricsCollector_NilKeepsNoop(t *testing.T) {
	o := defaultOptions()
	WithMetricsCollector(nil)(&o)
	assert.Equal(t, NoopMetricsCollector{}, o.metricsCollector)
}
