package arena

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/TyrionQu/FactorMethods/internal/parallel"
)

// Relocator is told about every live row moved by a collection. It must
// repoint the owner of row id from `from` to `to`.
type Relocator func(id uint32, from, to Ref) error

// GCStats describes one full collection.
type GCStats struct {
	WasteBefore   float64 // waste ratio before collecting
	WasteAfter    float64
	FullPages     int // full pages at start
	Examined      int // pages drained
	GarbageWords  int64
	ExaminedWords int64
}

// CollectGarbage drains every full page taken before the current pass.
// Pages filled while collecting belong to the current pass and are left
// alone. pool must not have more workers than the arena.
func (a *Arena) CollectGarbage(ctx context.Context, pool *parallel.Pool, relocate Relocator) (GCStats, error) {
	if pool.Workers() > len(a.workers) {
		return GCStats{}, fmt.Errorf("arena: pool has %d workers, arena %d", pool.Workers(), len(a.workers))
	}

	stats := GCStats{WasteBefore: a.WasteRatio()}
	a.mu.Lock()
	stats.FullPages = a.nFull
	a.mu.Unlock()

	maxGen := a.Pass()
	var examined, garbage atomic.Int64

	err := pool.Run(ctx, func(ctx context.Context, t int) error {
		w := a.workers[t]
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := a.claimFull(maxGen)
			if p == nil {
				return nil
			}
			g, err := w.collect(p, relocate)
			if err != nil {
				return err
			}
			examined.Add(1)
			garbage.Add(g)
		}
	})

	stats.Examined = int(examined.Load())
	stats.GarbageWords = garbage.Load()
	stats.ExaminedWords = int64(stats.Examined) * int64(a.pageWords)
	stats.WasteAfter = a.WasteRatio()
	return stats, err
}

// collect copies the live rows of p into the active page of w and recycles p.
func (w *Worker) collect(p *page, relocate Relocator) (int64, error) {
	var garbage int64
	ew := w.a.elemWords

	for bot, top := 0, p.ptr; bot < top; {
		id := p.data[bot]
		n := int(p.data[bot+1])
		size := headerWords + n*ew

		if id == DeadRow {
			garbage += int64(size)
		} else {
			to, dst, err := w.Alloc(id, n)
			if err != nil {
				return garbage, err
			}
			copy(dst, p.data[bot+headerWords:bot+size])
			if err := relocate(id, makeRef(p.index, bot), to); err != nil {
				return garbage, err
			}
		}
		bot += size
	}

	w.waste -= garbage
	w.a.recycle(p)
	return garbage, nil
}
