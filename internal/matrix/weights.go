package matrix

import "sync/atomic"

// Weights holds one saturating 8-bit counter per column, packed four to a
// word so that every update can be atomic.
type Weights struct {
	words []uint32
	n     int
}

// NewWeights creates n zero counters.
func NewWeights(n int) *Weights {
	return &Weights{words: make([]uint32, (n+3)/4), n: n}
}

// Len returns the number of counters.
func (w *Weights) Len() int {
	return w.n
}

func locate(j uint32) (int, uint) {
	return int(j >> 2), uint(j&3) * 8
}

// Get returns the counter of column j.
func (w *Weights) Get(j uint32) uint8 {
	i, s := locate(j)
	return uint8(atomic.LoadUint32(&w.words[i]) >> s) //nolint:gosec // byte extraction
}

// Set stores v as the counter of column j.
func (w *Weights) Set(j uint32, v uint8) {
	i, s := locate(j)
	mask := uint32(0xff) << s
	for {
		old := atomic.LoadUint32(&w.words[i])
		nw := old&^mask | uint32(v)<<s
		if atomic.CompareAndSwapUint32(&w.words[i], old, nw) {
			return
		}
	}
}

// IncrementBelow adds one to the counter of column j if it is at most limit.
// limit must be below 255.
func (w *Weights) IncrementBelow(j uint32, limit uint8) {
	if w.Get(j) <= limit {
		i, s := locate(j)
		atomic.AddUint32(&w.words[i], uint32(1)<<s)
	}
}

// DecrementBelow subtracts one from the counter of column j if it is
// positive and at most limit.
func (w *Weights) DecrementBelow(j uint32, limit uint8) {
	if v := w.Get(j); v > 0 && v <= limit {
		i, s := locate(j)
		atomic.AddUint32(&w.words[i], ^(uint32(1)<<s - 1))
	}
}

// saturatingInc adds one unless the counter is 255. Not safe for concurrent
// use on the same word.
func (w *Weights) saturatingInc(j uint32) (first bool) {
	i, s := locate(j)
	v := uint8(w.words[i] >> s) //nolint:gosec // byte extraction
	if v != 0xff {
		w.words[i] += 1 << s
	}
	return v == 0
}

// storeWord replaces the four counters of word i.
func (w *Weights) storeWord(i int, v uint32) {
	atomic.StoreUint32(&w.words[i], v)
}

func (w *Weights) loadWord(i int) uint32 {
	return atomic.LoadUint32(&w.words[i])
}
