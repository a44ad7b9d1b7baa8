package factormethods

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/TyrionQu/FactorMethods/blobstore"
	"github.com/TyrionQu/FactorMethods/codec"
	"github.com/TyrionQu/FactorMethods/history"
	"github.com/TyrionQu/FactorMethods/internal/arena"
	"github.com/TyrionQu/FactorMethods/internal/conv"
	"github.com/TyrionQu/FactorMethods/internal/engine"
	"github.com/TyrionQu/FactorMethods/internal/matrix"
	"github.com/TyrionQu/FactorMethods/internal/parallel"
	"github.com/TyrionQu/FactorMethods/internal/resource"
	"github.com/TyrionQu/FactorMethods/relation"
)

// Report is the outcome of a reduction.
type Report struct {
	// InputRows and InputCols are the dimensions declared by the input.
	InputRows int
	InputCols int

	// Rows, Cols and Weight describe the reduced matrix: live rows, live
	// columns and stored coefficients.
	Rows    int64
	Cols    int64
	Weight  int64
	Density float64

	Passes int
	Merges int64

	// EstimatedRows is the extrapolated row count at which the density
	// would equal the target. Zero unless the last pass overshot it.
	EstimatedRows int64

	// Surviving holds the indices of the input rows left in the matrix.
	Surviving *roaring.Bitmap

	HistoryLines    int64
	HistoryBytes    int64
	HistoryChecksum uint64

	// PeakMemory is the largest number of bytes held by arena pages.
	PeakMemory int64

	Elapsed time.Duration
	Phases  Phases
}

// Excess returns the number of rows beyond the number of columns.
func (r *Report) Excess() int64 {
	return r.Rows - r.Cols
}

func (o *options) validate() error {
	switch {
	case o.skip < 0:
		return fmt.Errorf("%w: skip %d", ErrInvalidOption, o.skip)
	case o.targetDensity <= 0:
		return fmt.Errorf("%w: target density %v", ErrInvalidOption, o.targetDensity)
	case o.pageWords <= 0:
		return fmt.Errorf("%w: page size %d", ErrInvalidOption, o.pageWords)
	case o.memoryLimit < 0:
		return fmt.Errorf("%w: memory limit %d", ErrInvalidOption, o.memoryLimit)
	case o.historyRateLimit < 0:
		return fmt.Errorf("%w: history rate limit %d", ErrInvalidOption, o.historyRateLimit)
	case o.costIncrement < 0:
		return fmt.Errorf("%w: cost increment %d", ErrInvalidOption, o.costIncrement)
	case o.maxWeight < 1 || o.maxWeight > MaxMergeWidth:
		return fmt.Errorf("%w: max weight %d, want 1..%d", ErrInvalidOption, o.maxWeight, MaxMergeWidth)
	}
	return nil
}

// Reduce reads the purged relation file at input, merges it down to the
// target density and writes the merge history to output. Both are local
// paths or URLs; see the package documentation. The output only appears
// once the reduction succeeded.
func Reduce(ctx context.Context, input, output string, optFns ...Option) (*Report, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	inLoc, err := blobstore.ParseLocation(input)
	if err != nil {
		return nil, err
	}
	outLoc, err := blobstore.ParseLocation(output)
	if err != nil {
		return nil, err
	}
	inStore, err := o.storeFor(ctx, inLoc)
	if err != nil {
		return nil, err
	}
	outStore, err := o.storeFor(ctx, outLoc)
	if err != nil {
		return nil, err
	}

	blob, err := inStore.Open(ctx, inLoc.Name)
	if err != nil {
		return nil, fmt.Errorf("factormethods: open %s: %w", inLoc, err)
	}
	raw, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		_ = blob.Close()
		return nil, err
	}
	defer raw.Close()
	in, err := codec.ForPath(inLoc.Name).NewReader(raw)
	if err != nil {
		return nil, fmt.Errorf("factormethods: decompress %s: %w", inLoc, err)
	}
	defer in.Close()

	wb, err := outStore.Create(ctx, outLoc.Name)
	if err != nil {
		return nil, fmt.Errorf("factormethods: create %s: %w", outLoc, err)
	}
	out, err := codec.ForPath(outLoc.Name).NewWriter(wb)
	if err != nil {
		_ = blobstore.Abort(wb)
		return nil, err
	}

	o.logger = o.logger.WithInput(inLoc.String())
	rep, err := reduceStream(ctx, in, out, &o)
	if err == nil {
		err = out.Close()
	}
	if err != nil {
		_ = blobstore.Abort(wb)
		return nil, err
	}
	if err := wb.Close(); err != nil {
		return nil, fmt.Errorf("factormethods: commit %s: %w", outLoc, err)
	}
	return rep, nil
}

// ReduceStream is Reduce on streams: in holds an uncompressed purged file
// and the history is written to out.
func ReduceStream(ctx context.Context, in io.Reader, out io.Writer, optFns ...Option) (*Report, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	return reduceStream(ctx, in, out, &o)
}

func reduceStream(ctx context.Context, in io.Reader, out io.Writer, o *options) (*Report, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	mode := relation.Parity
	if o.exponents {
		mode = relation.Multiplicity
	}
	rd, err := relation.NewReader(in, mode)
	if err != nil {
		return nil, err
	}

	var rep *Report
	if o.exponents {
		rep, err = reduce[matrix.Exp](ctx, rd, out, o)
	} else {
		rep, err = reduce[matrix.Plain](ctx, rd, out, o)
	}
	o.logger.LogReduce(ctx, rep, err)
	return rep, err
}

func reduce[E matrix.Element[E]](ctx context.Context, rd *relation.Reader, out io.Writer, o *options) (*Report, error) {
	start := time.Now()
	h := rd.Header()
	logger := o.logger.WithWorkers(o.workers)

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memoryLimit,
		IOLimitBytesPerSec: o.historyRateLimit,
	})

	hw := history.NewWriter(out, o.workers, history.Options{
		Exponents: o.exponents,
		Resources: rc,
	})
	if err := hw.WriteHeader(ctx); err != nil {
		return nil, fmt.Errorf("factormethods: writing history: %w", err)
	}

	a, err := arena.New(o.workers,
		arena.WithPageWords(o.pageWords),
		arena.WithElemWords(matrix.ElemWords[E]()),
		arena.WithMemoryAcquirer(rc),
	)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	skip, err := conv.IntToUint32(o.skip)
	if err != nil {
		return nil, fmt.Errorf("%w: skip: %w", ErrInvalidOption, err)
	}
	m, err := matrix.New[E](a, parallel.New(o.workers), matrix.Config{
		Rows:      h.Rows,
		Cols:      h.Cols,
		Skip:      skip,
		MaxWeight: o.maxWeight,
	})
	if err != nil {
		return nil, err
	}

	err = load(rd, m)
	logger.LogRead(ctx, h.Rows, h.Cols, m.TotalWeight(), err)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(m, engine.Config{
		TargetDensity: o.targetDensity,
		CostIncrement: o.costIncrement,
		Verify:        o.verify,
		Logger:        logger.Logger,
		Observer:      o.metricsCollector,
		Recorder:      hw,
	})
	if err != nil {
		return nil, err
	}
	res, err := eng.Run(ctx)
	if err != nil {
		return nil, err
	}
	if err := hw.Close(ctx); err != nil {
		return nil, fmt.Errorf("factormethods: writing history: %w", err)
	}

	return &Report{
		InputRows:       h.Rows,
		InputCols:       h.Cols,
		Rows:            res.Rows,
		Cols:            res.Cols,
		Weight:          res.Weight,
		Density:         res.Density,
		Passes:          res.Passes,
		Merges:          res.Merges,
		EstimatedRows:   res.EstimatedRows,
		Surviving:       m.LiveRows(),
		HistoryLines:    hw.Lines(),
		HistoryBytes:    hw.Bytes(),
		HistoryChecksum: hw.Checksum(),
		PeakMemory:      rc.PeakMemoryUsage(),
		Elapsed:         time.Since(start),
		Phases:          res.Phases,
	}, nil
}

// load feeds every relation of rd into m.
func load[E matrix.Element[E]](rd *relation.Reader, m *matrix.Matrix[E]) error {
	b := matrix.NewBuilder(m)
	var row []E
	for {
		rel, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		i, err := conv.IntToUint32(rel.Index)
		if err != nil {
			return fmt.Errorf("%w: relation %d: %w", ErrRowOutOfRange, rel.Index, err)
		}
		row = appendEntries(row[:0], rel.Ideals)
		if err := b.Add(i, row); err != nil {
			return fmt.Errorf("factormethods: relation %d: %w", rel.Index, err)
		}
	}
	return b.Finish()
}

func appendEntries[E matrix.Element[E]](dst []E, ideals []relation.Ideal) []E {
	for _, id := range ideals {
		var e E
		switch p := any(&e).(type) {
		case *matrix.Plain:
			*p = matrix.Plain(id.Column)
		case *matrix.Exp:
			*p = matrix.Exp{Col: id.Column, E: id.Exponent}
		}
		dst = append(dst, e)
	}
	return dst
}

// VerifyHistory checks the checksum trailer of a history written by Reduce
// and returns the checksum.
func VerifyHistory(ctx context.Context, location string, optFns ...Option) (uint64, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	loc, err := blobstore.ParseLocation(location)
	if err != nil {
		return 0, err
	}
	store, err := o.storeFor(ctx, loc)
	if err != nil {
		return 0, err
	}
	blob, err := store.Open(ctx, loc.Name)
	if err != nil {
		return 0, fmt.Errorf("factormethods: open %s: %w", loc, err)
	}
	raw, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		_ = blob.Close()
		return 0, err
	}
	defer raw.Close()
	r, err := codec.ForPath(loc.Name).NewReader(raw)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	return history.Verify(r)
}

var _ engine.Recorder = (*history.Writer)(nil)
