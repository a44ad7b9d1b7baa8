// Package minio provides a BlobStore implementation using the MinIO client.
//
// MinIO is a high-performance, S3-compatible object storage system. This package
// uses the official MinIO Go client library for optimal compatibility with MinIO
// and other S3-compatible storage systems like Ceph, SeaweedFS, and Garage.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "factor", "c120/")
//	blob, err := store.Open(ctx, "c120.purged.gz")
//
// NewFromEnv builds the client from MINIO_ENDPOINT, MINIO_ACCESS_KEY,
// MINIO_SECRET_KEY and MINIO_SECURE.
//
// # Features
//
//   - Streaming uploads of merge histories of unknown length
//   - Ranged reads of relation files
//   - Air-gap friendly (no AWS dependencies required)
package minio
