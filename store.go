package factormethods

import (
	"context"
	"fmt"

	"github.com/TyrionQu/FactorMethods/blobstore"
	"github.com/TyrionQu/FactorMethods/blobstore/minio"
	"github.com/TyrionQu/FactorMethods/blobstore/s3"
)

// storeFor returns the store serving loc.
func (o *options) storeFor(ctx context.Context, loc blobstore.Location) (blobstore.BlobStore, error) {
	if s, ok := o.stores[loc.Scheme]; ok {
		return s, nil
	}

	switch loc.Scheme {
	case blobstore.SchemeFile:
		return blobstore.NewLocalStore(loc.Root), nil
	case blobstore.SchemeMinio:
		return minio.NewFromEnv(loc.Root, "")
	case blobstore.SchemeS3:
		return s3.New(ctx, loc.Root)
	default:
		return nil, fmt.Errorf("%w: %s has no store configured", blobstore.ErrUnsupportedScheme, loc)
	}
}
