package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Open(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	w, err := store.Create(ctx, "history")
	require.NoError(t, err)
	_, err = w.Write([]byte("3 -5\n"))
	require.NoError(t, err)

	_, ok := store.Get("history")
	assert.False(t, ok, "visible only after Close")
	require.NoError(t, w.Close())

	data, ok := store.Get("history")
	require.True(t, ok)
	assert.Equal(t, "3 -5\n", string(data))

	blob, err := store.Open(ctx, "history")
	require.NoError(t, err)
	r, err := NewReader(ctx, blob)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "3 -5\n", string(got))

	buf := make([]byte, 8)
	n, err := blob.ReadAt(ctx, buf, 2)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "-5\n", string(buf[:n]))

	require.NoError(t, store.Delete(ctx, "history"))
	_, err = store.Open(ctx, "history")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_PutCopies(t *testing.T) {
	store := NewMemoryStore()
	src := []byte("# 2 4\n")
	store.Put("rels", src)
	src[0] = 'X'

	got, ok := store.Get("rels")
	require.True(t, ok)
	assert.Equal(t, "# 2 4\n", string(got))
}

func TestMemoryStore_Abort(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	w, err := store.Create(ctx, "history")
	require.NoError(t, err)
	_, err = w.Write([]byte("1\n"))
	require.NoError(t, err)
	require.NoError(t, Abort(w))

	_, ok := store.Get("history")
	assert.False(t, ok)
}
