// Command merge reduces a purged relation file to a target density and
// writes the merge history.
//
//	merge -mat c.purged.gz -out c.history.gz -t 8 -target_density 170
//
// Locations may be local paths or file://, minio:// and s3:// URLs. The
// compression of both files follows their extension.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	factormethods "github.com/TyrionQu/FactorMethods"
)

func main() {
	var (
		mat           = flag.String("mat", "", "input purged relation file")
		out           = flag.String("out", "", "output history file")
		threads       = flag.Int("t", runtime.GOMAXPROCS(0), "number of worker threads")
		skip          = flag.Int("skip", factormethods.DefaultSkip, "number of buried columns")
		targetDensity = flag.Float64("target_density", factormethods.DefaultTargetDensity, "stop when the average row weight reaches this value")
		memMB         = flag.Int64("mem", 0, "memory limit for row storage in MiB (0 = unlimited)")
		pageWords     = flag.Int("page_words", factormethods.DefaultPageWords, "row storage page size in 32-bit words")
		maxWeight     = flag.Int("max_weight", factormethods.MaxMergeWidth, "widest column to merge")
		costIncrement = flag.Int("cost_increment", 0, "cost bound increment per pass (0 = variant default)")
		dl            = flag.Bool("dl", false, "keep exponents for the discrete logarithm variant")
		verify        = flag.Bool("verify", false, "check matrix consistency after every pass")
		jsonLogs      = flag.Bool("json", false, "log in JSON")
		verbose       = flag.Bool("v", false, "verbose output")
	)
	flag.Parse()

	if *mat == "" || *out == "" {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := factormethods.NewTextLogger(level)
	if *jsonLogs {
		logger = factormethods.NewJSONLogger(level)
	}

	opts := []factormethods.Option{
		factormethods.WithWorkers(*threads),
		factormethods.WithSkip(*skip),
		factormethods.WithTargetDensity(*targetDensity),
		factormethods.WithMemoryLimit(*memMB << 20),
		factormethods.WithPageSize(*pageWords),
		factormethods.WithMaxWeight(*maxWeight),
		factormethods.WithLogger(logger),
	}
	if *costIncrement > 0 {
		opts = append(opts, factormethods.WithCostIncrement(*costIncrement))
	}
	if *dl {
		opts = append(opts, factormethods.WithExponents())
	}
	if *verify {
		opts = append(opts, factormethods.WithVerify())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := factormethods.Reduce(ctx, *mat, *out, opts...)
	if err != nil {
		log.Fatalf("merge: %v", err)
	}

	fmt.Printf("Final matrix has N=%d nc=%d (%d) W=%d\n", rep.Rows, rep.Cols, rep.Excess(), rep.Weight)
	if rep.EstimatedRows > 0 {
		fmt.Printf("Estimated N=%d for target density %.2f\n", rep.EstimatedRows, *targetDensity)
	}
	fmt.Printf("Total merge time: %.2fs, %d passes, %d merges\n", rep.Elapsed.Seconds(), rep.Passes, rep.Merges)
	fmt.Printf("History: %d lines, checksum %016x\n", rep.HistoryLines, rep.HistoryChecksum)
}
