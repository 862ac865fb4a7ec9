package dcbgo

import (
	"log/slog"
	"runtime"
)

type options struct {
	logger          *Logger
	metrics         MetricsCollector
	maxDepth        int
	lenientTypes    bool
	loadConcurrency int

	blockCacheCapacity  int64
	blockCacheBlockSize int64
}

func defaultOptions() *options {
	return &options{
		logger:          NoopLogger(),
		metrics:         NoopMetricsCollector{},
		loadConcurrency: runtime.NumCPU(),
	}
}

// Option configures an Open call.
type Option func(*options)

// WithLogger sets a custom logger. The default discards all output.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel enables text logging to stderr at the given level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector MetricsCollector) Option {
	return func(o *options) {
		o.metrics = collector
	}
}

// WithMaxDepth bounds nested struct/array recursion while decoding record
// values. Zero keeps the default.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithLenientTypes decodes unrecognized property type tags into Unknown
// placeholder values instead of failing the record.
func WithLenientTypes() Option {
	return func(o *options) {
		o.lenientTypes = true
	}
}

// WithLoadConcurrency bounds the number of parallel record loads during
// eager materialization. Defaults to the number of CPUs.
func WithLoadConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.loadConcurrency = n
		}
	}
}

// WithBlockCache routes value-region reads through a private LRU block cache
// of the given byte capacity. Useful over remote byte sources where every
// read is a round trip. blockSize <= 0 picks the default of 64KB.
func WithBlockCache(capacityBytes, blockSize int64) Option {
	return func(o *options) {
		o.blockCacheCapacity = capacityBytes
		o.blockCacheBlockSize = blockSize
	}
}
