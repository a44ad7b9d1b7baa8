package arena

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/TyrionQu/FactorMethods/internal/mmap"
)

// MemoryAcquirer is charged for every page the arena maps.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

var (
	// ErrRowTooLarge is returned when a row block does not fit in one page.
	ErrRowTooLarge = errors.New("arena: row does not fit in a page")
	// ErrMaxPagesExceeded is returned when the page table is exhausted.
	ErrMaxPagesExceeded = errors.New("arena: max pages exceeded")
	// ErrNotLastRow is returned when shrinking a row that is not the last
	// allocation of the worker.
	ErrNotLastRow = errors.New("arena: row is not the last allocation")
	// ErrClosed is returned when allocating from a closed arena.
	ErrClosed = errors.New("arena: closed")
)

const (
	// DefaultPageWords is the default page capacity in words.
	DefaultPageWords = 1<<18 - 4
	// MaxPages bounds the page table.
	MaxPages = 1 << 16
	// DeadRow marks the id word of a deleted row.
	DeadRow = ^uint32(0)

	headerWords = 2
	wordBytes   = 4
)

// Ref addresses a row block: page index in the high half, word offset in the
// low half. The zero Ref addresses nothing.
type Ref uint64

// Nil is the absent row.
const Nil Ref = 0

func makeRef(page uint32, off int) Ref {
	return Ref(uint64(page)<<32 | uint64(uint32(off)))
}

func (r Ref) page() uint32 { return uint32(r >> 32) }
func (r Ref) offset() int  { return int(uint32(r)) }

type page struct {
	data       []uint32
	mapping    *mmap.Mapping
	index      uint32
	generation int
	ptr        int

	// list links; prev is only meaningful on the full list
	prev, next *page
}

// Stats is a snapshot of page usage.
type Stats struct {
	Pages         int   // pages ever mapped
	FullPages     int   // pages queued for collection
	EmptyPages    int   // recycled pages waiting for reuse
	BytesReserved int64 // mapped bytes
	WasteWords    int64 // words held by dead rows
	Allocs        uint64
}

// Arena is a paged bump allocator with generational collection.
type Arena struct {
	pageWords int
	elemWords int
	acquirer  MemoryAcquirer

	pages [MaxPages]atomic.Pointer[page] // slot 0 stays empty so Nil never resolves

	mu     sync.Mutex
	full   page // sentinel of the full list, sorted by ascending generation
	empty  *page
	nPages int
	nFull  int
	nEmpty int
	closed bool

	pass    atomic.Int64
	workers []*Worker
}

// Option configures an Arena.
type Option func(*Arena)

// WithPageWords sets the page capacity in words.
func WithPageWords(words int) Option {
	return func(a *Arena) {
		if words > 0 {
			a.pageWords = words
		}
	}
}

// WithElemWords sets the number of words per row element.
func WithElemWords(words int) Option {
	return func(a *Arena) {
		if words > 0 {
			a.elemWords = words
		}
	}
}

// WithMemoryAcquirer sets the budget charged for mapped pages.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// New creates an arena with one handle and one active page per worker.
func New(workers int, opts ...Option) (*Arena, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("arena: invalid worker count %d", workers)
	}

	a := &Arena{
		pageWords: DefaultPageWords,
		elemWords: 1,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.pageWords < headerWords+a.elemWords {
		return nil, fmt.Errorf("%w: page of %d words", ErrRowTooLarge, a.pageWords)
	}

	a.full.prev = &a.full
	a.full.next = &a.full

	a.workers = make([]*Worker, workers)
	for t := range a.workers {
		p, err := a.freePage()
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.workers[t] = &Worker{a: a, t: t, active: p}
	}
	return a, nil
}

// Worker returns the allocation handle of worker t.
func (a *Arena) Worker(t int) *Worker {
	return a.workers[t]
}

// Workers returns the number of worker handles.
func (a *Arena) Workers() int {
	return len(a.workers)
}

// PageWords returns the page capacity in words.
func (a *Arena) PageWords() int {
	return a.pageWords
}

// ElemWords returns the number of words per row element.
func (a *Arena) ElemWords() int {
	return a.elemWords
}

// SetPass sets the generation stamped on pages taken from now on.
func (a *Arena) SetPass(pass int) {
	a.pass.Store(int64(pass))
}

// Pass returns the current generation.
func (a *Arena) Pass() int {
	return int(a.pass.Load())
}

func (a *Arena) resolve(ref Ref) (*page, int) {
	p := a.pages[ref.page()].Load()
	if p == nil {
		panic(fmt.Sprintf("arena: stale reference %#x", uint64(ref)))
	}
	return p, ref.offset()
}

// ID returns the row identity stored in the block header.
func (a *Arena) ID(ref Ref) uint32 {
	p, off := a.resolve(ref)
	return p.data[off]
}

// Len returns the number of elements of the row.
func (a *Arena) Len(ref Ref) int {
	p, off := a.resolve(ref)
	return int(p.data[off+1])
}

// Payload returns the element words of the row.
func (a *Arena) Payload(ref Ref) []uint32 {
	p, off := a.resolve(ref)
	end := off + headerWords + int(p.data[off+1])*a.elemWords
	return p.data[off+headerWords : end : end]
}

// freePage hands out a recycled page, or maps a new one.
func (a *Arena) freePage() (*page, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrClosed
	}

	p := a.empty
	if p != nil {
		a.empty = p.next
		a.nEmpty--
	} else {
		var err error
		if p, err = a.mapPageLocked(); err != nil {
			return nil, err
		}
	}

	p.ptr = 0
	p.generation = a.Pass()
	p.prev, p.next = nil, nil
	return p, nil
}

func (a *Arena) mapPageLocked() (*page, error) {
	idx := a.nPages + 1
	if idx >= MaxPages {
		return nil, ErrMaxPagesExceeded
	}

	bytes := int64(a.pageWords) * wordBytes
	if a.acquirer != nil {
		if err := a.acquirer.AcquireMemory(bytes); err != nil {
			return nil, fmt.Errorf("arena: page %d: %w", idx, err)
		}
	}

	mapping, err := mmap.MapAnon(a.pageWords * wordBytes)
	if err != nil {
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(bytes)
		}
		return nil, fmt.Errorf("arena: map page %d: %w", idx, err)
	}

	p := &page{
		data:    mapping.Uint32s()[:a.pageWords:a.pageWords],
		mapping: mapping,
		index:   uint32(idx), //nolint:gosec // idx < MaxPages
	}
	a.pages[idx].Store(p)
	a.nPages = idx
	return p, nil
}

// releaseFull queues p on the full list, scanning back from the tail to keep
// the list sorted by generation.
func (a *Arena) releaseFull(p *page) {
	a.mu.Lock()
	defer a.mu.Unlock()

	target := a.full.prev
	for target != &a.full && p.generation < target.generation {
		target = target.prev
	}
	p.prev = target
	p.next = target.next
	target.next.prev = p
	target.next = p
	a.nFull++
}

// claimFull unlinks the oldest full page if its generation is below maxGen.
func (a *Arena) claimFull(maxGen int) *page {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := a.full.next
	if p == &a.full || p.generation >= maxGen {
		return nil
	}
	p.prev.next = p.next
	p.next.prev = p.prev
	p.prev, p.next = nil, nil
	a.nFull--
	return p
}

// recycle pushes a drained page on the empty list.
func (a *Arena) recycle(p *page) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p.ptr = 0
	p.next = a.empty
	a.empty = p
	a.nEmpty++
}

// WasteRatio returns dead words over the capacity of pages in use.
// Only meaningful between parallel regions.
func (a *Arena) WasteRatio() float64 {
	var waste int64
	for _, w := range a.workers {
		waste += w.waste
	}

	a.mu.Lock()
	inUse := a.nPages - a.nEmpty
	a.mu.Unlock()

	if inUse <= 0 {
		return 0
	}
	return float64(waste) / float64(inUse) / float64(a.pageWords)
}

// Stats returns a snapshot of page usage.
// Only meaningful between parallel regions.
func (a *Arena) Stats() Stats {
	var s Stats
	for _, w := range a.workers {
		s.WasteWords += w.waste
		s.Allocs += w.allocs
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	s.Pages = a.nPages
	s.FullPages = a.nFull
	s.EmptyPages = a.nEmpty
	s.BytesReserved = int64(a.nPages) * int64(a.pageWords) * wordBytes
	return s
}

// Close unmaps every page and returns their memory to the budget.
// All references become invalid.
func (a *Arena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	var errs []error
	for i := 1; i <= a.nPages; i++ {
		p := a.pages[i].Load()
		if p == nil {
			continue
		}
		if err := p.mapping.Close(); err != nil {
			errs = append(errs, err)
		}
		a.pages[i].Store(nil)
	}

	if a.acquirer != nil && a.nPages > 0 {
		a.acquirer.ReleaseMemory(int64(a.nPages) * int64(a.pageWords) * wordBytes)
	}

	a.full.prev = &a.full
	a.full.next = &a.full
	a.empty = nil
	a.nFull, a.nEmpty, a.nPages = 0, 0, 0
	return errors.Join(errs...)
}

func (a *Arena) String() string {
	s := a.Stats()
	return fmt.Sprintf(
		"Arena{pages: %d, full: %d, empty: %d, reserved: %.2f MB, waste: %.1f%%, allocs: %d}",
		s.Pages, s.FullPages, s.EmptyPages,
		float64(s.BytesReserved)/(1024*1024),
		100*a.WasteRatio(),
		s.Allocs,
	)
}
