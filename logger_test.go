package factormethods

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var recs []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		recs = append(recs, rec)
	}
	return recs
}

func TestLogger_Reduce(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rep, err := ReduceStream(context.Background(), strings.NewReader(triangle), io.Discard,
		testOpts(WithLogger(logger))...)
	require.NoError(t, err)

	msgs := map[string]map[string]any{}
	passes := 0
	for _, rec := range decodeRecords(t, &buf) {
		msg, _ := rec["msg"].(string)
		msgs[msg] = rec
		if msg == "merge pass" {
			passes++
			assert.InDelta(t, 2, rec["workers"], 0)
		}
	}
	assert.Equal(t, rep.Passes, passes)

	require.Contains(t, msgs, "relations read")
	assert.InDelta(t, 3, msgs["relations read"]["rows"], 0)
	assert.InDelta(t, 6, msgs["relations read"]["weight"], 0)

	require.Contains(t, msgs, "reduction completed")
	done := msgs["reduction completed"]
	assert.InDelta(t, 1, done["N"], 0)
	assert.InDelta(t, 1, done["excess"], 0)
	assert.InDelta(t, 0, done["W"], 0)

	assert.Contains(t, msgs, "columns renumbered")
}

func TestLogger_ReduceFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, nil))

	_, err := ReduceStream(context.Background(), strings.NewReader("# 1 4\n1,1:9\n"), io.Discard,
		testOpts(WithLogger(logger))...)
	require.Error(t, err)

	recs := decodeRecords(t, &buf)
	require.NotEmpty(t, recs)
	last := recs[len(recs)-1]
	assert.Equal(t, "reduction failed", last["msg"])
	assert.Equal(t, "ERROR", last["level"])
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, nil)).WithInput("c.purged").WithWorkers(8)

	logger.LogRead(context.Background(), 10, 20, 55, nil)
	logger.LogRead(context.Background(), 10, 20, 0, errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "input=c.purged")
	assert.Contains(t, out, "workers=8")
	assert.Contains(t, out, "weight=55")
	assert.Contains(t, out, "error=boom")
}

func TestNoopLogger(t *testing.T) {
	logger := NoopLogger()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
	logger.LogReduce(context.Background(), &Report{}, nil)
}
