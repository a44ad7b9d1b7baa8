// Package mmap provides anonymous and file-backed memory mappings.
//
// # Overview
//
// The merge engine keeps every matrix row inside fixed-size arena pages. Pages
// are obtained with MapAnon so that hundreds of millions of coefficients live
// outside the Go heap and never have to be scanned by the garbage collector.
// Open maps relation files read-only for zero-copy parsing.
//
// # Usage
//
//	m, err := mmap.MapAnon(pageBytes)
//	if err != nil { ... }
//	defer m.Close()
//	words := m.Uint32s()
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile and VirtualAlloc (madvise is a no-op)
//
// # Thread Safety
//
// Close is idempotent and protected by atomic operations. Callers must ensure
// no goroutine touches Bytes or Uint32s after Close returns.
package mmap
