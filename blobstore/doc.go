// Package blobstore provides storage abstraction for relation inputs and
// merge histories.
//
// BlobStore is the interface for reading and writing data blobs. Inputs are
// read sequentially through ReadRange; histories are streamed through
// Create and become visible when the writer is closed.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with mmap reads and atomic renames
//   - MemoryStore: In-memory store for tests
//   - minio.Store: MinIO and S3-compatible storage
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//
// # Locations
//
// Blobs are addressed by URL:
//
//	relations.purged.gz                  local file
//	file:///data/c120/history.gz         local file
//	mem://history                        memory store
//	minio://bucket/c120/history.zst      MinIO
//	s3://bucket/c120/relations.purged.gz Amazon S3
//
// ParseLocation splits such a URL into a Location.
package blobstore
