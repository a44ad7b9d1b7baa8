package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ErrUnsupportedScheme is returned for a location whose scheme has no store.
var ErrUnsupportedScheme = errors.New("blobstore: unsupported scheme")

// BlobStore is an abstraction for accessing data blobs.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create creates a new writable blob. The blob replaces any previous
	// blob of that name when the writer is closed.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
	// ReadAt reads len(p) bytes starting at offset off.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// ReadRange returns a reader for length bytes starting at off.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
}

// WritableBlob is a blob being written.
type WritableBlob interface {
	io.WriteCloser
	// Sync flushes buffered data to stable storage where supported.
	Sync() error
}

// Aborter is an optional interface for WritableBlobs that can discard a
// partial write. An aborted blob never becomes visible.
type Aborter interface {
	Abort() error
}

// Abort discards w if it supports Abort, else closes it.
func Abort(w WritableBlob) error {
	if a, ok := w.(Aborter); ok {
		return a.Abort()
	}
	return w.Close()
}

// Mappable is an optional interface for Blobs that support memory mapping.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	// This is a zero-copy operation if supported.
	Bytes() ([]byte, error)
}

// NewReader returns a sequential reader over the whole blob. Closing the
// reader closes the blob.
func NewReader(ctx context.Context, b Blob) (io.ReadCloser, error) {
	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		return &blobReader{Reader: bytes.NewReader(data), blob: b}, nil
	}
	if b.Size() == 0 {
		return &blobReader{Reader: bytes.NewReader(nil), blob: b}, nil
	}
	rc, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return nil, err
	}
	return &blobReader{Reader: rc, body: rc, blob: b}, nil
}

type blobReader struct {
	io.Reader
	body io.Closer
	blob Blob
}

func (r *blobReader) Close() error {
	var err error
	if r.body != nil {
		err = r.body.Close()
	}
	return errors.Join(err, r.blob.Close())
}
