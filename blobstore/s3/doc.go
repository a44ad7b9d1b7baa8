// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "factor-runs",
//	    s3.WithPrefix("c120/"),
//	    s3.WithRegion("eu-west-1"),
//	)
//
//	rep, err := factormethods.Reduce(ctx, "s3://factor-runs/c120/c120.purged.gz",
//	    "s3://factor-runs/c120/c120.history.gz")
//
// # Features
//
//   - Range reads for partial fetches of relation files
//   - Multipart streaming uploads for merge histories
//   - Configurable prefix per factorization
package s3
