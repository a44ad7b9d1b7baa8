// Package parallel provides the fork-join regions used by the merge engine.
//
// A Pool owns a fixed parallel degree. Every region starts one goroutine per
// worker through an errgroup and returns the first error. Workers are
// identified by their index t in [0, Workers()), which callers use to pick
// per-worker state such as arena handles or scratch buffers.
//
// Three schedules are available:
//
//   - Static: contiguous, deterministic chunks. Two static regions over the
//     same range give each worker the same chunk, which is what prefix sums
//     over per-worker counts rely on.
//   - Dynamic: fixed-size blocks pulled from a shared atomic cursor.
//   - Guided: like Dynamic, with block sizes shrinking as work runs out.
//
// Barriers are expressed as consecutive regions: the join of one region is
// the barrier before the next.
package parallel
