package factormethods

import (
	"runtime"

	"github.com/TyrionQu/FactorMethods/blobstore"
	"github.com/TyrionQu/FactorMethods/internal/arena"
	"github.com/TyrionQu/FactorMethods/internal/engine"
	"github.com/TyrionQu/FactorMethods/internal/matrix"
)

const (
	// DefaultSkip is the number of buried columns.
	DefaultSkip = matrix.DefaultSkip
	// DefaultTargetDensity is the average row weight at which merging stops.
	DefaultTargetDensity = engine.DefaultTargetDensity
	// DefaultPageWords is the arena page capacity in 32-bit words.
	DefaultPageWords = arena.DefaultPageWords
	// MaxMergeWidth is the widest column a merge can eliminate.
	MaxMergeWidth = matrix.MaxMergeWidth
)

type options struct {
	workers          int
	skip             int
	targetDensity    float64
	pageWords        int
	memoryLimit      int64
	historyRateLimit int64
	costIncrement    int
	maxWeight        int
	exponents        bool
	verify           bool
	logger           *Logger
	metricsCollector MetricsCollector
	stores           map[blobstore.Scheme]blobstore.BlobStore
}

func defaultOptions() options {
	return options{
		workers:          runtime.GOMAXPROCS(0),
		skip:             DefaultSkip,
		targetDensity:    DefaultTargetDensity,
		pageWords:        DefaultPageWords,
		maxWeight:        MaxMergeWidth,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}

// Option configures Reduce.
type Option func(*options)

// WithWorkers sets the number of merge workers.
// Values below 1 keep the default of GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithSkip buries the first k columns: they are never merged, but still
// count toward the column weights.
func WithSkip(k int) Option {
	return func(o *options) {
		o.skip = k
	}
}

// WithTargetDensity sets the average row weight at which merging stops.
func WithTargetDensity(d float64) Option {
	return func(o *options) {
		o.targetDensity = d
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example:
//
//	logger := factormethods.NewTextLogger(slog.LevelDebug)
//	rep, err := factormethods.Reduce(ctx, in, out, factormethods.WithLogger(logger))
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring passes.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &factormethods.BasicMetricsCollector{}
//	rep, err := factormethods.Reduce(ctx, in, out, factormethods.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("passes: %d, merges: %d\n", stats.PassCount, stats.Merges)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithPageSize sets the arena page capacity in 32-bit words. A row must fit
// in one page.
func WithPageSize(words int) Option {
	return func(o *options) {
		o.pageWords = words
	}
}

// WithMemoryLimit caps the bytes of arena pages. Zero means unlimited.
// Reduce fails with ErrMemoryLimitExceeded when the budget runs out.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithHistoryRateLimit throttles history writes to bytesPerSec.
// Zero means unlimited.
func WithHistoryRateLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.historyRateLimit = bytesPerSec
	}
}

// WithCostIncrement sets the per-pass growth of the cost bound once the
// weight ceiling exceeds 2. Zero selects 13, or 31 with WithExponents.
func WithCostIncrement(n int) Option {
	return func(o *options) {
		o.costIncrement = n
	}
}

// WithMaxWeight caps the weight ceiling, and with it the widest merge.
func WithMaxWeight(n int) Option {
	return func(o *options) {
		o.maxWeight = n
	}
}

// WithExponents selects rows with signed exponents, as used for discrete
// logarithms.
func WithExponents() Option {
	return func(o *options) {
		o.exponents = true
	}
}

// WithVerify checks the whole matrix after every pass. Slow; meant for
// debugging.
func WithVerify() Option {
	return func(o *options) {
		o.verify = true
	}
}

// WithStore serves locations of the given scheme from store, overriding
// the default store for that scheme. It is the only way to use mem://
// locations.
func WithStore(scheme blobstore.Scheme, store blobstore.BlobStore) Option {
	return func(o *options) {
		if o.stores == nil {
			o.stores = make(map[blobstore.Scheme]blobstore.BlobStore)
		}
		o.stores[scheme] = store
	}
}
