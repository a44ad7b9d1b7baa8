package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// Zstd is the zstandard format. Level 0 selects zstd.SpeedDefault.
type Zstd struct {
	Level zstd.EncoderLevel
}

func (z Zstd) NewWriter(w io.Writer) (io.WriteCloser, error) {
	level := z.Level
	if level == 0 {
		level = zstd.SpeedDefault
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(level))
}

func (Zstd) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}

func (Zstd) Name() string      { return "zstd" }
func (Zstd) Extension() string { return ".zst" }
