package campus

import (
	"log/slog"
	"time"
)

// Builder is an immutable fluent builder for creating an Index.
// Each method returns a new builder with the updated configuration.
type Builder struct {
	cfg  Config
	opts []Option
}

// NewBuilder creates a builder for the given dimension, starting from
// DefaultConfig.
//
// The builder is immutable, so a partially configured builder can be shared
// and specialised without accidental state sharing.
//
// Example:
//
//	idx, err := campus.NewBuilder(128).
//	    Angular().
//	    PostingLimit(100).
//	    ConnectionLimit(8).
//	    Half().
//	    Build()
func NewBuilder(dimension int) Builder {
	return Builder{cfg: DefaultConfig(dimension)}
}

// FromConfig creates a builder seeded with cfg, e.g. the result of
// LoadConfig.
func FromConfig(cfg Config) Builder {
	return Builder{cfg: cfg}
}

// SquaredL2 sets the distance metric to squared Euclidean distance.
func (b Builder) SquaredL2() Builder {
	b.cfg.Metric = "l2"
	return b
}

// Angular sets the distance metric to 1 - cosine similarity.
func (b Builder) Angular() Builder {
	b.cfg.Metric = "angular"
	return b
}

// PostingLimit sets the maximum number of vectors per cluster.
// Default: 64.
func (b Builder) PostingLimit(n int) Builder {
	b.cfg.PostingLimit = n
	return b
}

// ConnectionLimit sets the maximum in- and out-degree of a cluster.
// Default: 16.
func (b Builder) ConnectionLimit(n int) Builder {
	b.cfg.ConnectionLimit = n
	return b
}

// Half stores vector components at float16 precision (element size 2).
func (b Builder) Half() Builder {
	b.cfg.ElementSize = 2
	return b
}

// SearchDefaults sets the cluster count and frontier used by Find.
func (b Builder) SearchDefaults(nodeNum, ef int) Builder {
	b.cfg.DefaultNodeNum = nodeNum
	b.cfg.DefaultEF = ef
	return b
}

// Logger sets the structured logger for operation tracing.
func (b Builder) Logger(l *Logger) Builder {
	return b.with(WithLogger(l))
}

// LogLevel sets a text logger with the given level.
func (b Builder) LogLevel(level slog.Level) Builder {
	return b.with(WithLogLevel(level))
}

// Metrics sets the metrics collector for monitoring.
func (b Builder) Metrics(mc MetricsCollector) Builder {
	return b.with(WithMetricsCollector(mc))
}

// SweepEvery runs the archived-cluster sweeper at the given interval.
func (b Builder) SweepEvery(d time.Duration) Builder {
	return b.with(WithSweepInterval(d))
}

// InsertConcurrency bounds the concurrency of InsertBatch.
func (b Builder) InsertConcurrency(n int) Builder {
	return b.with(WithInsertConcurrency(n))
}

// InsertRateLimit throttles InsertBatch.
func (b Builder) InsertRateLimit(perSecond float64, burst int) Builder {
	return b.with(WithInsertRateLimit(perSecond, burst))
}

// Config returns the configuration the builder would build with.
func (b Builder) Config() Config {
	return b.cfg
}

// Build validates the configuration and creates the index.
func (b Builder) Build() (*Index, error) {
	return New(b.cfg, b.opts...)
}

// MustBuild is like Build but panics on error.
func (b Builder) MustBuild() *Index {
	idx, err := b.Build()
	if err != nil {
		panic(err)
	}
	return idx
}

func (b Builder) with(opt Option) Builder {
	opts := make([]Option, len(b.opts), len(b.opts)+1)
	copy(opts, b.opts)
	b.opts = append(opts, opt)
	return b
}
