package starscan

import (
	"log/slog"

	"github.com/hupe1980/starscan/blobstore"
	"github.com/hupe1980/starscan/internal/engine"
)

type options struct {
	workers          int
	batchSize        int
	resultBuffer     int
	strict           bool
	resume           bool
	prefix           string
	grid             Grid
	ioLimit          int64
	memoryLimit      int64
	catalogStore     blobstore.BlobStore
	metricsCollector MetricsCollector
	logger           *Logger
}

func defaultOptions() options {
	return options{
		resultBuffer:     engine.DefaultResultBuffer,
		grid:             DefaultGrid(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
}

// Option configures Open and Build.
type Option func(*options)

// WithWorkers sets the number of shards searched or indexed concurrently.
// Zero or negative selects GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithBatchSize sets the number of shards per build checkpoint.
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithResultBuffer sets the capacity of the channel between search tasks
// and the coordinator. Tasks block when it is full.
func WithResultBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.resultBuffer = n
		}
	}
}

// WithStrictDecoding makes a malformed line fail its shard instead of
// being skipped and counted.
func WithStrictDecoding() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithResume lets Build continue from the checkpoint of an interrupted run.
func WithResume() Option {
	return func(o *options) {
		o.resume = true
	}
}

// WithPrefix restricts shard discovery to blob names under prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithGrid sets the spatial grid used to select shards for corridor
// searches. The default grid has its origin at (0,0,0), 1000 ly cells and
// names cells like "sector_+000_-001_+002".
func WithGrid(g Grid) Option {
	return func(o *options) {
		o.grid = g
	}
}

// WithIOLimit caps compressed shard reads at bytesPerSec across all tasks.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithMemoryLimit bounds the memory held by catalog fragments during Build.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithCatalogStore keeps the catalog in a separate store instead of next
// to the shards.
func WithCatalogStore(s blobstore.BlobStore) Option {
	return func(o *options) {
		o.catalogStore = s
	}
}

// WithMetricsCollector configures a metrics collector. Pass nil to disable
// metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &starscan.BasicMetricsCollector{}
//	db, _ := starscan.Open(ctx, starscan.Local("./galaxy"), starscan.WithMetricsCollector(metrics))
//	// ... search ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging. Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger on stderr with the specified level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(nil, level)
	}
}
