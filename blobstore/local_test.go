package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBlobStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)

	ctx := context.Background()

	// 1. Create a blob
	blobName := "c60.history"
	data := []byte("# Every line starting with # is ignored.\n12 7\n")

	w, err := store.Create(ctx, blobName)
	require.NoError(t, err)

	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	// not visible before Close
	_, err = os.Stat(filepath.Join(tmpDir, blobName))
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, w.Close())

	_, err = os.Stat(filepath.Join(tmpDir, blobName))
	require.NoError(t, err)

	// 2. Open and ReadAt
	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err = blob.ReadAt(ctx, buf, 2)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "Every", string(buf))

	// 3. ReadRange
	rangeReader, err := blob.ReadRange(ctx, int64(len(data))-5, 4)
	require.NoError(t, err)
	rangeContent, err := io.ReadAll(rangeReader)
	require.NoError(t, err)
	require.NoError(t, rangeReader.Close())
	require.Equal(t, "12 7", string(rangeContent))
	require.NoError(t, blob.Close())

	// 4. Delete
	require.NoError(t, store.Delete(ctx, blobName))
	require.NoError(t, store.Delete(ctx, blobName), "deleting twice is fine")

	_, err = store.Open(ctx, blobName)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalBlobStore_CreateNested(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	w, err := store.Create(ctx, "c120/run1/history")
	require.NoError(t, err)
	_, err = w.Write([]byte("1\n"))
	require.NoError(t, err)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	blob, err := store.Open(ctx, "c120/run1/history")
	require.NoError(t, err)
	r, err := NewReader(ctx, blob)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "1\n", string(got))
}

func TestLocalBlobStore_EmptyBlob(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	w, err := store.Create(ctx, "empty")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	blob, err := store.Open(ctx, "empty")
	require.NoError(t, err)
	assert.Zero(t, blob.Size())

	r, err := NewReader(ctx, blob)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, r.Close())
}

func TestLocalBlobStore_ReadRange_Boundaries(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	blobName := "boundary.bin"
	data := []byte("0123456789")
	w, err := store.Create(ctx, blobName)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	// Case 1: Read full range
	r, err := blob.ReadRange(ctx, 0, 10)
	require.NoError(t, err)
	content, _ := io.ReadAll(r)
	r.Close()
	require.True(t, bytes.Equal(data, content))

	// Case 2: Read past end
	r, err = blob.ReadRange(ctx, 8, 5)
	require.NoError(t, err)
	content, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "89", string(content))
	r.Close()

	// Case 3: Offset past EOF
	_, err = blob.ReadRange(ctx, 20, 5)
	require.ErrorIs(t, err, io.EOF)
}

func TestLocalBlobStore_Abort(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewLocalStore(dir)

	w, err := store.Create(ctx, "c120.history")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial\n"))
	require.NoError(t, err)
	require.NoError(t, Abort(w))

	_, err = store.Open(ctx, "c120.history")
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary file removed")
}
