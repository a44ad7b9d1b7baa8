package relation

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "# 4 300\n" +
	"-3,5:a,1f,a,3\n" +
	"# a comment\n" +
	"7,2:12b,2,2,2\n" +
	"\n" +
	"1,1:\n" +
	"4,9:ff\n"

func readAll(t *testing.T, in string, mode Mode) (Header, []Relation) {
	t.Helper()
	r, err := NewReader(strings.NewReader(in), mode)
	require.NoError(t, err)

	var rels []Relation
	for {
		rel, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		rel.Ideals = append([]Ideal(nil), rel.Ideals...)
		rels = append(rels, rel)
	}
	return r.Header(), rels
}

func TestReader_Parity(t *testing.T) {
	h, rels := readAll(t, sample, Parity)
	assert.Equal(t, Header{Rows: 4, Cols: 300}, h)
	require.Len(t, rels, 4)

	assert.Equal(t, 0, rels[0].Index)
	assert.Equal(t, "-3,5", rels[0].AB)
	assert.Equal(t, []Ideal{{Column: 3, Exponent: 1}, {Column: 0x1f, Exponent: 1}}, rels[0].Ideals)

	assert.Equal(t, 1, rels[1].Index)
	assert.Equal(t, []Ideal{{Column: 2, Exponent: 1}, {Column: 0x12b, Exponent: 1}}, rels[1].Ideals)

	assert.Empty(t, rels[2].Ideals)
	assert.Equal(t, []Ideal{{Column: 0xff, Exponent: 1}}, rels[3].Ideals)
}

func TestReader_Multiplicity(t *testing.T) {
	_, rels := readAll(t, sample, Multiplicity)
	require.Len(t, rels, 4)

	assert.Equal(t, []Ideal{{Column: 3, Exponent: 1}, {Column: 0xa, Exponent: 2}, {Column: 0x1f, Exponent: 1}}, rels[0].Ideals)
	assert.Equal(t, []Ideal{{Column: 2, Exponent: 3}, {Column: 0x12b, Exponent: 1}}, rels[1].Ideals)
}

func TestReader_MalformedHeader(t *testing.T) {
	for _, in := range []string{
		"",
		"4 300\n",
		"# 4\n",
		"# four 300\n",
		"# -4 300\n",
	} {
		_, err := NewReader(strings.NewReader(in), Parity)
		assert.ErrorIs(t, err, ErrMalformedHeader, in)
	}
}

func TestReader_MalformedRelation(t *testing.T) {
	for _, line := range []string{
		"1,2\n",
		":3\n",
		"1,2:3,,4\n",
		"1,2:xyz\n",
		"1,2:100000000\n",
	} {
		r, err := NewReader(strings.NewReader("# 1 10\n"+line), Parity)
		require.NoError(t, err)
		_, err = r.Next()
		assert.ErrorIs(t, err, ErrMalformedRelation, line)
		assert.ErrorContains(t, err, "line 2", line)
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Header{Rows: 2, Cols: 64})
	require.NoError(t, err)
	require.NoError(t, w.Write("-1,3", []Ideal{{Column: 5, Exponent: 1}, {Column: 40, Exponent: 2}}))
	require.NoError(t, w.Write("2,7", nil))
	require.NoError(t, w.Flush())

	assert.Equal(t, "# 2 64\n-1,3:5,28,28\n2,7:\n", buf.String())

	h, rels := readAll(t, buf.String(), Multiplicity)
	assert.Equal(t, Header{Rows: 2, Cols: 64}, h)
	require.Len(t, rels, 2)
	assert.Equal(t, []Ideal{{Column: 5, Exponent: 1}, {Column: 40, Exponent: 2}}, rels[0].Ideals)
	assert.Empty(t, rels[1].Ideals)
}
