// Package codec centralizes stream compression for merge histories and
// relation files.
//
// A codec is selected by the file extension of the blob it wraps, so a
// history written to "c120.history.zst" is zstd-compressed and a relation
// file named "c120.purged.gz" is read through gzip.
package codec

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrUnknownCodec is returned when a codec name is not recognized.
var ErrUnknownCodec = errors.New("codec: unknown codec")

// Codec wraps byte streams with a compression format.
// Implementations must be safe for concurrent use.
type Codec interface {
	NewWriter(w io.Writer) (io.WriteCloser, error)
	NewReader(r io.Reader) (io.ReadCloser, error)
	Name() string
	Extension() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, error) {
	switch name {
	case "none", "":
		return None{}, nil
	case "gzip":
		return Gzip{}, nil
	case "zstd":
		return Zstd{}, nil
	case "lz4":
		return LZ4{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// ForPath selects a codec from the extension of name. Names without a
// recognized extension are passed through uncompressed.
func ForPath(name string) Codec {
	switch strings.ToLower(path.Ext(name)) {
	case ".gz":
		return Gzip{}
	case ".zst", ".zstd":
		return Zstd{}
	case ".lz4":
		return LZ4{}
	default:
		return None{}
	}
}

// None passes bytes through unchanged.
type None struct{}

func (None) NewWriter(w io.Writer) (io.WriteCloser, error) { return nopWriteCloser{w}, nil }
func (None) NewReader(r io.Reader) (io.ReadCloser, error)  { return io.NopCloser(r), nil }
func (None) Name() string                                  { return "none" }
func (None) Extension() string                             { return "" }

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// Default is the codec used when neither a name nor an extension selects one.
var Default Codec = None{}
