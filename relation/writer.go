package relation

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Writer emits relations in the purged file format. Exponents are written
// as repeated ideals.
type Writer struct {
	w   *bufio.Writer
	buf []byte
}

// NewWriter writes the header line and returns a writer for the relations.
func NewWriter(w io.Writer, h Header) (*Writer, error) {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "# %d %d\n", h.Rows, h.Cols); err != nil {
		return nil, err
	}
	return &Writer{w: bw}, nil
}

// Write appends one relation. Ideals with a non-positive exponent are
// written once.
func (w *Writer) Write(ab string, ideals []Ideal) error {
	b := append(w.buf[:0], ab...)
	b = append(b, ':')
	first := true
	for _, id := range ideals {
		for range max(id.Exponent, 1) {
			if !first {
				b = append(b, ',')
			}
			b = strconv.AppendUint(b, uint64(id.Column), 16)
			first = false
		}
	}
	b = append(b, '\n')
	w.buf = b
	_, err := w.w.Write(b)
	return err
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
