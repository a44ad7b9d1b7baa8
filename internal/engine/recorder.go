package engine

import "context"

// Recorder receives the merge history. Remove and Add are called
// concurrently with distinct worker indices; records of one worker arrive
// in order. col is the input index of the eliminated column.
type Recorder interface {
	// Remove records the deletion of row i.
	Remove(t int, i uint32, col uint32)
	// Add records that row from is added to row to. A negative from
	// encodes -(row+1) and keeps the row; a non-negative from is removed
	// after the addition.
	Add(t int, from int64, to uint32, col uint32)
	// Flush writes everything recorded so far. It runs between passes.
	Flush(ctx context.Context) error
}

type nopRecorder struct{}

func (nopRecorder) Remove(int, uint32, uint32)     {}
func (nopRecorder) Add(int, int64, uint32, uint32) {}
func (nopRecorder) Flush(context.Context) error    { return nil }
