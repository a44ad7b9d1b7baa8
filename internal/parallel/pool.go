package parallel

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// DefaultGrain is the block size used by Dynamic when none is given.
const DefaultGrain = 128

// Pool runs fork-join regions with a fixed number of workers.
type Pool struct {
	workers int
}

// New creates a pool. A non-positive worker count means GOMAXPROCS.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers}
}

// Workers returns the parallel degree.
func (p *Pool) Workers() int {
	return p.workers
}

// Run calls fn once per worker and waits for all of them.
func (p *Pool) Run(ctx context.Context, fn func(ctx context.Context, t int) error) error {
	if p.workers == 1 {
		return fn(ctx, 0)
	}

	g, gctx := errgroup.WithContext(ctx)
	for t := 0; t < p.workers; t++ {
		g.Go(func() error {
			return fn(gctx, t)
		})
	}
	return g.Wait()
}

// Chunk returns the half-open range of [lo, hi) assigned to worker t by the
// static schedule.
func Chunk(t, workers, lo, hi int) (int, int) {
	n := hi - lo
	if n <= 0 {
		return lo, lo
	}
	q, r := n/workers, n%workers
	start := lo + t*q + min(t, r)
	end := start + q
	if t < r {
		end++
	}
	return start, end
}

// Static splits [lo, hi) into one contiguous chunk per worker.
func (p *Pool) Static(ctx context.Context, lo, hi int, fn func(t, lo, hi int) error) error {
	return p.Run(ctx, func(ctx context.Context, t int) error {
		s, e := Chunk(t, p.workers, lo, hi)
		if s == e {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(t, s, e)
	})
}

// Dynamic hands out blocks of grain indices from [lo, hi) to whichever
// worker asks first and calls fn for every index.
func (p *Pool) Dynamic(ctx context.Context, lo, hi, grain int, fn func(t, i int) error) error {
	if grain <= 0 {
		grain = DefaultGrain
	}
	var next atomic.Int64
	next.Store(int64(lo))

	return p.Run(ctx, func(ctx context.Context, t int) error {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := int(next.Add(int64(grain))) - grain
			if start >= hi {
				return nil
			}
			end := min(start+grain, hi)
			for i := start; i < end; i++ {
				if err := fn(t, i); err != nil {
					return err
				}
			}
		}
	})
}

// Guided is Dynamic with a block size proportional to the remaining work,
// never below minGrain.
func (p *Pool) Guided(ctx context.Context, lo, hi, minGrain int, fn func(t, i int) error) error {
	if minGrain <= 0 {
		minGrain = 1
	}
	var next atomic.Int64
	next.Store(int64(lo))
	div := 2 * p.workers

	return p.Run(ctx, func(ctx context.Context, t int) error {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			cur := int(next.Load())
			if cur >= hi {
				return nil
			}
			size := max((hi-cur)/div, minGrain)
			if !next.CompareAndSwap(int64(cur), int64(cur+size)) {
				continue
			}
			end := min(cur+size, hi)
			for i := cur; i < end; i++ {
				if err := fn(t, i); err != nil {
					return err
				}
			}
		}
	})
}

// ExclusiveScan replaces every count by the sum of the counts before it and
// returns the total.
func ExclusiveScan[T ~int | ~int64 | ~uint32 | ~uint64](counts []T) T {
	var s T
	for i, c := range counts {
		counts[i] = s
		s += c
	}
	return s
}
