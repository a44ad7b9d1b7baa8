package codec

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4 is the lz4 frame format, favoring speed over ratio.
type LZ4 struct {
	Level lz4.CompressionLevel
}

func (l LZ4) NewWriter(w io.Writer) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)
	if l.Level != 0 {
		if err := zw.Apply(lz4.CompressionLevelOption(l.Level)); err != nil {
			return nil, err
		}
	}
	return zw, nil
}

func (LZ4) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

func (LZ4) Name() string      { return "lz4" }
func (LZ4) Extension() string { return ".lz4" }
