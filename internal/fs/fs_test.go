package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	f, err := lfs.CreateTemp(dir, ".test.tmp-*")
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	target := filepath.Join(dir, "test.txt")
	require.NoError(t, lfs.Rename(f.Name(), target))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, lfs.Remove(target))
	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS_FailAfterBytes(t *testing.T) {
	ffs := NewFaultyFS(nil)
	ffs.AddRule("faulty", Fault{FailAfterBytes: 5})

	f, err := ffs.CreateTemp(t.TempDir(), ".faulty.tmp-*")
	require.NoError(t, err)
	defer f.Close()

	n, err := f.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = f.Write([]byte("!"))
	require.ErrorIs(t, err, ErrInjected)
	assert.Zero(t, n)
}

func TestFaultyFS_SyncAndRename(t *testing.T) {
	boom := errors.New("boom")
	ffs := NewFaultyFS(LocalFS{})
	ffs.AddRule("out", Fault{FailAfterBytes: -1, FailOnSync: true, FailOnRename: true, Err: boom})

	dir := t.TempDir()
	f, err := ffs.CreateTemp(dir, ".out.tmp-*")
	require.NoError(t, err)
	_, err = f.Write([]byte("data"))
	require.NoError(t, err)
	require.ErrorIs(t, f.Sync(), boom)
	require.NoError(t, f.Close())

	require.ErrorIs(t, ffs.Rename(f.Name(), filepath.Join(dir, "out")), boom)
	require.NoError(t, ffs.Rename(f.Name(), filepath.Join(dir, "other")))
}

func TestFaultyFS_Passthrough(t *testing.T) {
	ffs := NewFaultyFS(nil)
	ffs.AddRule("never", Fault{FailAfterBytes: 0})

	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, ffs.MkdirAll(dir, 0o755))

	f, err := ffs.CreateTemp(dir, ".plain.tmp-*")
	require.NoError(t, err)
	_, err = f.Write([]byte("fine"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())
	require.NoError(t, ffs.Remove(f.Name()))
}
