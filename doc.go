// Package factormethods reduces the sparse relation matrices of integer
// factorization and discrete logarithm computations before linear algebra.
//
// Reduce reads a purged relation file, performs structured Gaussian
// elimination by merging low-weight columns into the rows that reference
// them, and writes the merge history consumed by the replay step. Merges run
// in parallel passes until the average row weight reaches a target density.
//
// # Quick Start
//
//	ctx := context.Background()
//	rep, err := factormethods.Reduce(ctx, "c120.purged.gz", "c120.history.gz",
//	    factormethods.WithWorkers(8),
//	    factormethods.WithTargetDensity(170),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(rep.Rows, rep.Cols, rep.Weight)
//
// # Locations
//
// Inputs and outputs are local paths or URLs:
//
//	/data/c120.purged.gz            local file
//	file:///data/c120.purged.gz     local file
//	mem://c120.history              store registered with WithStore
//	minio://bucket/c120.history.zst MinIO, configured from MINIO_* variables
//	s3://bucket/c120.history.zst    Amazon S3, default credential chain
//
// The extension selects the compression: .gz, .zst and .lz4 are
// compressed, anything else is plain text.
//
// # Variants
//
// By default rows are sets of columns over GF(2) and relation multiplicities
// are reduced modulo 2. WithExponents keeps signed exponents for discrete
// logarithm matrices; merges then combine rows with gcd cofactors and every
// history line names the eliminated column.
//
// # Observability
//
// Each pass logs one record through the configured Logger and reports
// PassStats to the MetricsCollector. The returned Report holds the final
// dimensions, the surviving rows and the checksum of the written history.
package factormethods
