package bitset

import (
	"math/bits"
	"sync/atomic"
)

// BitSet is a thread-safe, lock-free bitset of fixed length.
// Bits are only ever set concurrently; ClearAll must not race with writers.
type BitSet struct {
	words []atomic.Uint64
	size  uint64
}

// New creates a new BitSet with the given size (in bits).
func New(size uint64) *BitSet {
	return &BitSet{
		words: make([]atomic.Uint64, (size+63)/64),
		size:  size,
	}
}

// Set sets the bit at the given index. Out of range indices are ignored.
func (b *BitSet) Set(i uint64) {
	if i >= b.size {
		return
	}
	b.words[i>>6].Or(1 << (i & 63))
}

// TestAndSet sets the bit at the given index and returns true if it was ALREADY set.
func (b *BitSet) TestAndSet(i uint64) bool {
	if i >= b.size {
		return false
	}
	mask := uint64(1) << (i & 63)
	w := &b.words[i>>6]

	// Optimistic check avoids a contended RMW on bits that are already taken.
	if w.Load()&mask != 0 {
		return true
	}
	return w.Or(mask)&mask != 0
}

// TryClaim atomically claims bit i. It reports true only to the single caller
// that flipped the bit from clear to set.
func (b *BitSet) TryClaim(i uint64) bool {
	if i >= b.size {
		return false
	}
	return !b.TestAndSet(i)
}

// Test returns true if the bit at the given index is set.
func (b *BitSet) Test(i uint64) bool {
	if i >= b.size {
		return false
	}
	return b.words[i>>6].Load()&(1<<(i&63)) != 0
}

// Count returns the number of set bits.
func (b *BitSet) Count() int {
	n := 0
	for i := range b.words {
		n += bits.OnesCount64(b.words[i].Load())
	}
	return n
}

// ClearAll clears every bit.
func (b *BitSet) ClearAll() {
	for i := range b.words {
		b.words[i].Store(0)
	}
}

// Len returns the size of the bitset in bits.
func (b *BitSet) Len() uint64 {
	return b.size
}
