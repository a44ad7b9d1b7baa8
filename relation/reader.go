package relation

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/TyrionQu/FactorMethods/internal/conv"
)

// Header is the first line of a purged file.
type Header struct {
	Rows int
	Cols int
}

// Ideal is one column of a relation with its multiplicity.
type Ideal struct {
	Column   uint32
	Exponent int32
}

// Relation is one parsed line. Ideals are sorted by column, each column
// appearing once.
type Relation struct {
	// Index is the position of the relation in the file, starting at 0.
	Index int
	// AB is the text before the colon, kept verbatim.
	AB     string
	Ideals []Ideal
}

// Mode selects how repeated ideals are folded.
type Mode int

const (
	// Parity keeps ideals occurring an odd number of times, with exponent 1.
	Parity Mode = iota
	// Multiplicity keeps every ideal with its occurrence count.
	Multiplicity
)

// Reader parses relations from a purged file.
type Reader struct {
	s      *bufio.Scanner
	mode   Mode
	header Header
	line   int
	next   int
	cols   []uint32
	ideals []Ideal
}

const maxLine = 1 << 20

// NewReader reads the header from r.
func NewReader(r io.Reader, mode Mode) (*Reader, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLine)

	rd := &Reader{s: s, mode: mode}
	if !s.Scan() {
		if err := s.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: empty input", ErrMalformedHeader)
	}
	rd.line++

	h, err := parseHeader(s.Bytes())
	if err != nil {
		return nil, err
	}
	rd.header = h
	return rd, nil
}

func parseHeader(line []byte) (Header, error) {
	rest, ok := bytes.CutPrefix(bytes.TrimSpace(line), []byte("#"))
	if !ok {
		return Header{}, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
	}
	f := bytes.Fields(rest)
	if len(f) != 2 {
		return Header{}, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
	}
	var dims [2]int
	for i := range dims {
		v, err := strconv.ParseUint(string(f[i]), 10, 64)
		if err != nil {
			return Header{}, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
		}
		if dims[i], err = conv.Uint64ToInt(v); err != nil {
			return Header{}, fmt.Errorf("%w: %w", ErrMalformedHeader, err)
		}
	}
	return Header{Rows: dims[0], Cols: dims[1]}, nil
}

// Header returns the parsed header.
func (r *Reader) Header() Header {
	return r.header
}

// Next returns the next relation, or io.EOF after the last one. The
// returned Ideals are overwritten by the following call.
func (r *Reader) Next() (Relation, error) {
	for r.s.Scan() {
		r.line++
		line := bytes.TrimSpace(r.s.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		rel, err := r.parse(line)
		if err != nil {
			return Relation{}, fmt.Errorf("line %d: %w", r.line, err)
		}
		r.next++
		return rel, nil
	}
	if err := r.s.Err(); err != nil {
		return Relation{}, err
	}
	return Relation{}, io.EOF
}

func (r *Reader) parse(line []byte) (Relation, error) {
	ab, list, ok := bytes.Cut(line, []byte(":"))
	if !ok || len(ab) == 0 {
		return Relation{}, fmt.Errorf("%w: missing a,b prefix", ErrMalformedRelation)
	}

	r.cols = r.cols[:0]
	if len(list) > 0 {
		for h := range bytes.SplitSeq(list, []byte(",")) {
			v, err := strconv.ParseUint(string(h), 16, 64)
			if err != nil {
				return Relation{}, fmt.Errorf("%w: ideal %q", ErrMalformedRelation, h)
			}
			j, err := conv.Uint64ToUint32(v)
			if err != nil {
				return Relation{}, fmt.Errorf("%w: ideal %q: %w", ErrMalformedRelation, h, err)
			}
			r.cols = append(r.cols, j)
		}
	}
	slices.Sort(r.cols)

	r.ideals = r.ideals[:0]
	for i := 0; i < len(r.cols); {
		k := i + 1
		for k < len(r.cols) && r.cols[k] == r.cols[i] {
			k++
		}
		n := int32(k - i)
		switch r.mode {
		case Parity:
			if n%2 == 1 {
				r.ideals = append(r.ideals, Ideal{Column: r.cols[i], Exponent: 1})
			}
		default:
			r.ideals = append(r.ideals, Ideal{Column: r.cols[i], Exponent: n})
		}
		i = k
	}

	return Relation{Index: r.next, AB: string(ab), Ideals: r.ideals}, nil
}
