package campus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/campus/distance"
	"github.com/hupe1980/campus/internal/engine"
	"github.com/hupe1980/campus/internal/precision"
	"github.com/hupe1980/campus/internal/resource"
)

// Result is a single search hit.
type Result struct {
	ID       int64
	Distance float32
}

// Stats is a point-in-time summary of the index.
type Stats = engine.Stats

// Index is a concurrent clustered-graph ANN index.
//
// Inserts run as optimistic transactions and may proceed from any number of
// goroutines. Queries take no lock and see a relaxed, possibly slightly
// stale view of the graph.
type Index struct {
	core   *engine.Index
	cfg    Config
	metric distance.Metric
	width  precision.Width

	metrics   MetricsCollector
	logger    *Logger
	admission *resource.Controller

	closed    atomic.Bool
	closeOnce sync.Once
	sweeper   *sweeper
}

// New creates an empty index.
func New(cfg Config, optFns ...Option) (*Index, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	metric, _ := distance.ParseMetric(cfg.Metric)
	dist, err := distance.Provider(metric)
	if err != nil {
		return nil, &ErrInvalidDistanceType{DistanceType: cfg.Metric, cause: err}
	}
	width, _ := precision.Parse(cfg.ElementSize)

	opts := applyOptions(optFns)

	core, err := engine.New(engine.Config{
		Dimension:          cfg.Dimension,
		PostingLimit:       cfg.PostingLimit,
		ConnectionLimit:    cfg.ConnectionLimit,
		Distance:           dist,
		Width:              width,
		MaxReclusterRounds: opts.maxReclusterRound,
		Logger:             opts.logger.Logger,
		Observer:           collectorObserver{mc: opts.metricsCollector},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	x := &Index{
		core:    core,
		cfg:     cfg,
		metric:  metric,
		width:   width,
		metrics: opts.metricsCollector,
		logger:  opts.logger,
		admission: resource.NewController(resource.Config{
			MaxInFlight:      int64(opts.insertConcurrency),
			InsertsPerSecond: opts.insertRate,
			Burst:            opts.insertBurst,
			MemoryLimitBytes: opts.batchMemoryLimit,
		}),
	}

	if opts.sweepInterval > 0 {
		x.sweeper = startSweeper(x, opts.sweepInterval)
	}

	x.logger.Info("index created",
		"dimension", cfg.Dimension,
		"posting_limit", cfg.PostingLimit,
		"connection_limit", cfg.ConnectionLimit,
		"metric", metric.String(),
		"element_size", cfg.ElementSize,
	)

	return x, nil
}

// Config returns the configuration the index was created with.
func (x *Index) Config() Config { return x.cfg }

// Dimension returns the vector dimension.
func (x *Index) Dimension() int { return x.cfg.Dimension }

// Metric returns the distance metric.
func (x *Index) Metric() distance.Metric { return x.metric }

// Insert adds vector under id. Once the vector passes the dimension check
// the insert always succeeds; conflicting transactions are retried
// internally. Duplicate ids are stored as separate entities.
func (x *Index) Insert(ctx context.Context, vector []float32, id int64) error {
	start := time.Now()
	err := x.insert(ctx, vector, id)
	x.metrics.RecordInsert(time.Since(start), err)
	x.logger.LogInsert(ctx, id, len(vector), err)
	return err
}

func (x *Index) insert(ctx context.Context, vector []float32, id int64) error {
	if err := x.checkVector(ctx, vector); err != nil {
		return err
	}
	x.core.Insert(id, vector)
	return nil
}

func (x *Index) checkVector(ctx context.Context, vector []float32) error {
	if x.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(vector) != x.cfg.Dimension {
		return &ErrDimensionMismatch{Expected: x.cfg.Dimension, Actual: len(vector)}
	}
	return nil
}

// Query returns the ids of the approximate topK nearest vectors, nearest
// first. nodeNum bounds the number of clusters scanned (<= 0 scans all) and
// ef is the beam search frontier size.
func (x *Index) Query(ctx context.Context, vector []float32, topK, nodeNum, ef int) ([]int64, error) {
	res, err := x.Search(ctx, vector, topK, nodeNum, ef)
	if err != nil {
		return nil, err
	}
	return resultIDs(res), nil
}

// Search is Query with distances.
func (x *Index) Search(ctx context.Context, vector []float32, topK, nodeNum, ef int) ([]Result, error) {
	start := time.Now()
	res, err := x.search(ctx, vector, topK, func(q []float32) []engine.Result {
		return x.core.Search(q, topK, nodeNum, ef)
	})
	x.metrics.RecordSearch(topK, time.Since(start), err)
	x.logger.LogSearch(ctx, topK, nodeNum, ef, len(res), err)
	return res, err
}

// QueryExact returns the ids of the topK nearest vectors within the nodeNum
// clusters whose centroids are nearest to vector. With nodeNum <= 0 every
// live cluster is scanned and the answer is exact.
func (x *Index) QueryExact(ctx context.Context, vector []float32, topK, nodeNum int) ([]int64, error) {
	res, err := x.SearchExact(ctx, vector, topK, nodeNum)
	if err != nil {
		return nil, err
	}
	return resultIDs(res), nil
}

// SearchExact is QueryExact with distances.
func (x *Index) SearchExact(ctx context.Context, vector []float32, topK, nodeNum int) ([]Result, error) {
	start := time.Now()
	res, err := x.search(ctx, vector, topK, func(q []float32) []engine.Result {
		return x.core.SearchExact(q, topK, nodeNum)
	})
	x.metrics.RecordSearch(topK, time.Since(start), err)
	x.logger.LogSearch(ctx, topK, nodeNum, 0, len(res), err)
	return res, err
}

func (x *Index) search(ctx context.Context, vector []float32, topK int, run func([]float32) []engine.Result) ([]Result, error) {
	if topK <= 0 {
		return nil, ErrInvalidK
	}
	if err := x.checkVector(ctx, vector); err != nil {
		return nil, err
	}

	hits := run(x.width.Quantize(vector))
	out := make([]Result, len(hits))
	for i, h := range hits {
		out[i] = Result{ID: h.ID, Distance: h.Distance}
	}
	return out, nil
}

func resultIDs(res []Result) []int64 {
	ids := make([]int64, len(res))
	for i, r := range res {
		ids[i] = r.ID
	}
	return ids
}

// VectorCount returns the number of vectors stored in live clusters.
func (x *Index) VectorCount() int { return x.core.VectorCount() }

// NodeCount returns the number of live clusters.
func (x *Index) NodeCount() int { return x.core.NodeCount() }

// IDs returns the distinct ids stored in live clusters.
func (x *Index) IDs() *roaring64.Bitmap { return x.core.IDs() }

// DistinctIDs returns the number of distinct ids stored in live clusters.
func (x *Index) DistinctIDs() uint64 { return x.core.DistinctIDs() }

// MissingIDs returns the ids from expected that no live cluster holds.
func (x *Index) MissingIDs(expected []int64) []int64 { return x.core.MissingIDs(expected) }

// AssignmentViolations counts vectors whose cluster centroid is not the
// nearest live centroid.
func (x *Index) AssignmentViolations() int { return x.core.AssignmentViolations() }

// Stats returns a summary of the index state.
func (x *Index) Stats() Stats { return x.core.Stats() }

// CheckInvariants verifies the structural invariants of the live graph.
// Violations are joined and each wraps ErrStructural.
func (x *Index) CheckInvariants() error {
	err := x.core.CheckInvariants()
	if err != nil {
		x.logger.LogStructural(context.Background(), err)
	}
	return err
}

// Sweep drops archived clusters from the live registry and returns how many
// were removed. Queries already holding a reference keep working.
func (x *Index) Sweep() int {
	start := time.Now()
	removed := x.core.Sweep()
	duration := time.Since(start)
	x.metrics.RecordSweep(removed, duration)
	x.logger.LogSweep(context.Background(), removed, duration)
	return removed
}
