package codec

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// Gzip is the gzip format, as written by the relation filtering tools.
// Level 0 selects gzip.DefaultCompression.
type Gzip struct {
	Level int
}

// NewWriter returns a gzip writer at the configured level.
func (g Gzip) NewWriter(w io.Writer) (io.WriteCloser, error) {
	level := g.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	return gzip.NewWriterLevel(w, level)
}

// NewReader returns a gzip reader. Concatenated members are read as one stream.
func (Gzip) NewReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func (Gzip) Name() string      { return "gzip" }
func (Gzip) Extension() string { return ".gz" }
