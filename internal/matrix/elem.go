package matrix

import (
	"unsafe"
)

// Plain is a column reference of a row over GF(2).
type Plain uint32

// Column returns the column index.
func (p Plain) Column() uint32 { return uint32(p) }

// WithColumn returns the element moved to column j.
func (p Plain) WithColumn(j uint32) Plain { return Plain(j) }

// Exp is a column reference with a signed exponent.
type Exp struct {
	Col uint32
	E   int32
}

// Column returns the column index.
func (e Exp) Column() uint32 { return e.Col }

// WithColumn returns the element moved to column j.
func (e Exp) WithColumn(j uint32) Exp { return Exp{Col: j, E: e.E} }

// Element is the set of row element kinds.
type Element[E any] interface {
	Plain | Exp
	Column() uint32
	WithColumn(j uint32) E
}

// ElemWords returns the number of arena words per element of kind E.
func ElemWords[E Element[E]]() int {
	var zero E
	return int(unsafe.Sizeof(zero)) / 4
}

// view reinterprets arena payload words as n elements.
func view[E Element[E]](words []uint32) []E {
	n := len(words) / ElemWords[E]()
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*E)(unsafe.Pointer(unsafe.SliceData(words))), n) //nolint:gosec // payload is sized for n elements
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
