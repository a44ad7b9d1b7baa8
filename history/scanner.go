package history

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Record is one history line.
type Record struct {
	// Rows holds the indices as written: a single row for a removal, else
	// the source row followed by its destinations.
	Rows []int64
	// Column is the eliminated column, or -1 when the line has none.
	Column int64
}

// IsRemoval reports whether the record deletes a row without additions.
func (r Record) IsRemoval() bool {
	return len(r.Rows) == 1
}

// Source returns the row added to the destinations and whether it
// survives the record.
func (r Record) Source() (row int64, kept bool) {
	if len(r.Rows) > 1 && r.Rows[0] < 0 {
		return -r.Rows[0] - 1, true
	}
	return r.Rows[0], false
}

// Destinations returns the rows receiving the source row.
func (r Record) Destinations() []int64 {
	return r.Rows[1:]
}

// Scanner reads history records, skipping comments.
type Scanner struct {
	s    *bufio.Scanner
	rec  Record
	line int
	err  error
}

// NewScanner returns a scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &Scanner{s: s}
}

// Scan advances to the next record.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for s.s.Scan() {
		s.line++
		line := bytes.TrimSpace(s.s.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			s.err = fmt.Errorf("line %d: %w", s.line, err)
			return false
		}
		s.rec = rec
		return true
	}
	s.err = s.s.Err()
	return false
}

// Record returns the record read by the last successful Scan.
func (s *Scanner) Record() Record {
	return s.rec
}

// Err returns the first error met by Scan.
func (s *Scanner) Err() error {
	return s.err
}

func parseLine(line []byte) (Record, error) {
	rec := Record{Column: -1}
	body := line
	if i := bytes.IndexByte(line, '#'); i >= 0 {
		col, err := strconv.ParseInt(string(bytes.TrimSpace(line[i+1:])), 10, 64)
		if err != nil || col < 0 {
			return rec, fmt.Errorf("%w: column %q", ErrMalformedLine, line[i+1:])
		}
		rec.Column = col
		body = line[:i]
	}

	for _, f := range bytes.Fields(body) {
		v, err := strconv.ParseInt(string(f), 10, 64)
		if err != nil {
			return rec, fmt.Errorf("%w: %q", ErrMalformedLine, f)
		}
		rec.Rows = append(rec.Rows, v)
	}
	switch {
	case len(rec.Rows) == 0:
		return rec, fmt.Errorf("%w: no rows", ErrMalformedLine)
	case len(rec.Rows) == 1 && rec.Rows[0] < 0:
		return rec, fmt.Errorf("%w: negative removal", ErrMalformedLine)
	}
	for _, v := range rec.Rows[1:] {
		if v < 0 {
			return rec, fmt.Errorf("%w: negative destination", ErrMalformedLine)
		}
	}
	return rec, nil
}

// Verify checks the checksum trailer written by Writer.Close and returns
// the checksum.
func Verify(r io.Reader) (uint64, error) {
	br := bufio.NewReader(r)
	digest := xxhash.New()
	var (
		want  uint64
		found bool
	)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if found {
				return 0, fmt.Errorf("%w: content after trailer", ErrChecksumMismatch)
			}
			if rest, ok := bytes.CutPrefix(line, []byte(checksumPrefix)); ok {
				v, perr := strconv.ParseUint(string(bytes.TrimSpace(rest)), 16, 64)
				if perr != nil {
					return 0, fmt.Errorf("%w: trailer %q", ErrChecksumMismatch, rest)
				}
				want, found = v, true
			} else {
				_, _ = digest.Write(line)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if !found {
		return 0, ErrMissingChecksum
	}
	if got := digest.Sum64(); got != want {
		return got, fmt.Errorf("%w: got %016x, trailer %016x", ErrChecksumMismatch, got, want)
	}
	return want, nil
}
