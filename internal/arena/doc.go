// Package arena provides the paged row allocator of the merge engine.
//
// Rows are stored in fixed-size pages of uint32 words backed by anonymous
// mappings, so row storage puts no pressure on the Go garbage collector.
// Each row occupies one contiguous block:
//
//	[id, n, payload...]
//
// where payload holds n elements of the configured element width. A deleted
// row keeps its block; only its id word is overwritten with DeadRow.
//
// # Workers
//
// Every worker owns one active page and bump-allocates from it without
// locking. When the active page cannot hold a request it is queued on the
// shared list of full pages, ordered by generation, and the worker takes a
// recycled empty page or maps a new one. The page lists are the only state
// guarded by a mutex.
//
// A Worker must only be used by one goroutine at a time.
//
// # Generations and Collection
//
// A page's generation is the pass in which it was taken. CollectGarbage lets
// every worker repeatedly claim the oldest full page from an earlier pass,
// copy its live rows into the worker's active page, report each move through
// a Relocator, and recycle the drained page.
//
// # Memory Budget
//
// An optional MemoryAcquirer is charged for every mapped page. Exceeding the
// budget is reported as an error from Alloc.
package arena
