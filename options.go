package campus

import (
	"log/slog"
	"runtime"
	"time"
)

type options struct {
	metricsCollector  MetricsCollector
	logger            *Logger
	sweepInterval     time.Duration
	insertConcurrency int
	insertRate        float64
	insertBurst       int
	batchMemoryLimit  int64
	maxReclusterRound int
}

// Option configures Index construction.
//
// Breaking changes are expected while campus is pre-release.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &campus.BasicMetricsCollector{}
//	idx, _ := campus.New(campus.DefaultConfig(128), campus.WithMetricsCollector(metrics))
//	// ... use idx ...
//	stats := metrics.GetStats()
//	fmt.Printf("Inserts: %d, Conflicts: %d\n", stats.InsertCount, stats.ConflictCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := campus.NewJSONLogger(slog.LevelInfo)
//	idx, _ := campus.New(cfg, campus.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithSweepInterval starts a background worker that drops archived nodes
// from the registry at the given interval. Zero (the default) disables it;
// Sweep can still be called explicitly.
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) {
		o.sweepInterval = d
	}
}

// WithInsertConcurrency bounds the number of concurrent insert transactions
// started by InsertBatch. Values <= 0 use GOMAXPROCS.
func WithInsertConcurrency(n int) Option {
	return func(o *options) {
		o.insertConcurrency = n
	}
}

// WithInsertRateLimit throttles InsertBatch to perSecond inserts with the
// given burst. A non-positive rate disables throttling.
func WithInsertRateLimit(perSecond float64, burst int) Option {
	return func(o *options) {
		o.insertRate = perSecond
		o.insertBurst = burst
	}
}

// WithBatchMemoryLimit caps the vector bytes held by concurrently running
// InsertBatch calls. A batch that does not fit fails with
// ErrMemoryLimitExceeded before any of its items is inserted.
// Zero (the default) disables the cap.
func WithBatchMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.batchMemoryLimit = bytes
	}
}

// WithMaxReclusterRounds bounds the 2-means refinement performed on every
// split. Values <= 0 use the engine default.
func WithMaxReclusterRounds(n int) Option {
	return func(o *options) {
		o.maxReclusterRound = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.insertConcurrency <= 0 {
		o.insertConcurrency = runtime.GOMAXPROCS(0)
	}
	return o
}
