package history

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/TyrionQu/FactorMethods/internal/resource"
)

const (
	plainHeader = "# Every line starting with # is ignored.\n" +
		"# A line i1 i2 ... ik means that row i1 is added to i2, ..., ik, and row i1\n" +
		"# is removed afterwards (where row 0 is the first line in *.purged.gz).\n"
	exponentHeader = "# A line ending with #j means that ideal of index j should be merged.\n"

	checksumPrefix = "# checksum xxhash64 "
)

// Options configures a Writer.
type Options struct {
	// Exponents appends the eliminated column to every line.
	Exponents bool

	// Resources throttles flushes. Nil means unthrottled.
	Resources *resource.Controller
}

// buffer is padded to keep per-worker appends on separate cache lines.
type buffer struct {
	b []byte
	_ [40]byte
}

// Writer accumulates history lines per worker and appends them to a sink.
// Remove and Add may be called concurrently for distinct workers. Flush,
// WriteHeader and Close must not run concurrently with them.
type Writer struct {
	dst    io.Writer
	opts   Options
	bufs   []buffer
	digest *xxhash.Digest

	lines   int64
	written int64
	sum     uint64
	closed  bool
}

// NewWriter returns a writer for the given number of workers.
func NewWriter(dst io.Writer, workers int, opts Options) *Writer {
	if workers < 1 {
		workers = 1
	}
	return &Writer{
		dst:    dst,
		opts:   opts,
		bufs:   make([]buffer, workers),
		digest: xxhash.New(),
	}
}

// WriteHeader writes the comment block describing the line format.
func (w *Writer) WriteHeader(ctx context.Context) error {
	header := plainHeader
	if w.opts.Exponents {
		header += exponentHeader
	}
	return w.write(ctx, []byte(header))
}

func (w *Writer) appendColumn(b []byte, col uint32) []byte {
	if w.opts.Exponents {
		b = append(b, " #"...)
		b = strconv.AppendUint(b, uint64(col), 10)
	}
	return append(b, '\n')
}

// Remove records the deletion of row i by worker t.
func (w *Writer) Remove(t int, i uint32, col uint32) {
	b := w.bufs[t].b
	b = strconv.AppendUint(b, uint64(i), 10)
	w.bufs[t].b = w.appendColumn(b, col)
}

// Add records that row from is added to row to by worker t. A negative
// from encodes -(row+1): the row is kept.
func (w *Writer) Add(t int, from int64, to uint32, col uint32) {
	b := w.bufs[t].b
	b = strconv.AppendInt(b, from, 10)
	b = append(b, ' ')
	b = strconv.AppendUint(b, uint64(to), 10)
	w.bufs[t].b = w.appendColumn(b, col)
}

// Flush appends every worker buffer to the sink in worker order.
func (w *Writer) Flush(ctx context.Context) error {
	for t := range w.bufs {
		b := w.bufs[t].b
		if len(b) == 0 {
			continue
		}
		if err := w.write(ctx, b); err != nil {
			return fmt.Errorf("history: flush worker %d: %w", t, err)
		}
		w.bufs[t].b = b[:0]
	}
	return nil
}

func (w *Writer) write(ctx context.Context, p []byte) error {
	if w.closed {
		return ErrClosed
	}
	var dst io.Writer = w.dst
	if w.opts.Resources != nil {
		dst = resource.NewRateLimitedWriter(ctx, w.dst, w.opts.Resources)
	}
	n, err := dst.Write(p)
	_, _ = w.digest.Write(p[:n])
	w.written += int64(n)
	for _, c := range p[:n] {
		if c == '\n' {
			w.lines++
		}
	}
	return err
}

// Close flushes pending lines and appends the checksum trailer. It does not
// close the sink.
func (w *Writer) Close(ctx context.Context) error {
	if w.closed {
		return ErrClosed
	}
	if err := w.Flush(ctx); err != nil {
		return err
	}
	w.sum = w.digest.Sum64()
	trailer := checksumPrefix + fmt.Sprintf("%016x", w.sum) + "\n"
	if err := w.write(ctx, []byte(trailer)); err != nil {
		return err
	}
	w.closed = true
	return nil
}

// Checksum returns the xxhash64 of everything written before the trailer.
// It is final once Close has returned.
func (w *Writer) Checksum() uint64 {
	if w.closed {
		return w.sum
	}
	return w.digest.Sum64()
}

// Lines returns the number of lines written to the sink.
func (w *Writer) Lines() int64 {
	return w.lines
}

// Bytes returns the number of bytes written to the sink.
func (w *Writer) Bytes() int64 {
	return w.written
}
