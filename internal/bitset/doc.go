// Package bitset provides a fixed-size lock-free bitset for concurrent claims.
//
// Architecture:
//   - Flat array of atomic.Uint64 words, sized once at construction
//   - TestAndSet is a single atomic OR; no locks on any path
//
// Used internally for:
//   - Busy-row flags while merges are applied concurrently (TryClaim)
package bitset
