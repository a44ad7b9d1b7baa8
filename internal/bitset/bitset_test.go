package bitset

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitSet(t *testing.T) {
	b := New(100)
	assert.Equal(t, uint64(100), b.Len())

	b.Set(10)
	assert.True(t, b.Test(10))
	assert.Equal(t, 1, b.Count())

	b.Set(64)
	b.Set(99)
	b.Set(100) // out of range, ignored
	assert.Equal(t, 3, b.Count())
	assert.False(t, b.Test(100))

	b.ClearAll()
	assert.Equal(t, 0, b.Count())
}

func TestBitSet_TestAndSet(t *testing.T) {
	b := New(130)
	assert.False(t, b.TestAndSet(129))
	assert.True(t, b.TestAndSet(129))
	assert.True(t, b.Test(129))
	assert.False(t, b.TestAndSet(1000))
}

func TestBitSet_TryClaimSingleWinner(t *testing.T) {
	const n = 257
	b := New(n)

	var wins [n]atomic.Int32
	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := uint64(0); i < n; i++ {
				if b.TryClaim(i) {
					wins[i].Add(1)
				}
			}
		}()
	}
	wg.Wait()

	for i := range wins {
		require.Equal(t, int32(1), wins[i].Load(), "bit %d", i)
	}
	assert.Equal(t, n, b.Count())
	assert.False(t, b.TryClaim(n))
}
