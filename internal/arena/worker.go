package arena

import "fmt"

// Worker is the allocation handle of one worker.
type Worker struct {
	a      *Arena
	t      int
	active *page
	waste  int64 // may go negative: rows die on one worker and are reclaimed on another
	allocs uint64
}

// ID returns the worker index.
func (w *Worker) ID() int {
	return w.t
}

// Alloc reserves a block for row id with n elements and returns its
// reference and payload. The payload content is unspecified.
func (w *Worker) Alloc(id uint32, n int) (Ref, []uint32, error) {
	size := headerWords + n*w.a.elemWords
	if n < 0 || size > w.a.pageWords {
		return Nil, nil, fmt.Errorf("%w: row %d with %d elements", ErrRowTooLarge, id, n)
	}

	p := w.active
	if p.ptr+size > len(p.data) {
		np, err := w.a.freePage()
		if err != nil {
			return Nil, nil, err
		}
		w.a.releaseFull(p)
		w.active = np
		p = np
	}

	off := p.ptr
	p.data[off] = id
	p.data[off+1] = uint32(n) //nolint:gosec // n*elemWords fits a page
	p.ptr += size
	w.allocs++

	end := off + size
	return makeRef(p.index, off), p.data[off+headerWords : end : end], nil
}

// Shrink reduces the last row allocated by this worker to n elements.
func (w *Worker) Shrink(ref Ref, n int) error {
	p := w.active
	if ref.page() != p.index {
		return ErrNotLastRow
	}
	off := ref.offset()
	old := int(p.data[off+1])
	if off+headerWords+old*w.a.elemWords != p.ptr || n > old || n < 0 {
		return ErrNotLastRow
	}
	p.data[off+1] = uint32(n) //nolint:gosec // n <= old
	p.ptr = off + headerWords + n*w.a.elemWords
	return nil
}

// Destroy marks the row dead. Its words are reclaimed by the next
// collection of its page.
func (w *Worker) Destroy(ref Ref) {
	p, off := w.a.resolve(ref)
	p.data[off] = DeadRow
	w.waste += int64(headerWords + int(p.data[off+1])*w.a.elemWords)
}
