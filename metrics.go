package campus

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/campus/internal/engine"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus;
// see the metric/prometheus package for a ready-made implementation.
//
// Commit, conflict and split events are reported from inside the insert
// path, so implementations must be cheap and safe for concurrent use.
type MetricsCollector interface {
	// RecordInsert is called after each insert operation.
	// duration is the total time taken, err is nil if successful.
	RecordInsert(duration time.Duration, err error)

	// RecordBatchInsert is called after each batch insert operation.
	// count is the number of items attempted, failed is the number that failed,
	// duration is the total time taken.
	RecordBatchInsert(count, failed int, duration time.Duration)

	// RecordSearch is called after each search operation.
	// k is the number of neighbors requested, duration is the time taken,
	// err is nil if successful.
	RecordSearch(k int, duration time.Duration, err error)

	// RecordConflict is called each time an insert transaction fails
	// validation and is retried. attempt counts from 1.
	RecordConflict(attempt int)

	// RecordSplit is called for every node split staged by a committed
	// transaction.
	RecordSplit()

	// RecordCommit is called after each successful commit. staged is the
	// number of versions published and held is the time the commit lock
	// was held.
	RecordCommit(staged int, held time.Duration)

	// RecordSweep is called after each sweep of archived nodes.
	RecordSweep(removed int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error)         {}
func (NoopMetricsCollector) RecordBatchInsert(int, int, time.Duration) {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordConflict(int)                        {}
func (NoopMetricsCollector) RecordSplit()                              {}
func (NoopMetricsCollector) RecordCommit(int, time.Duration)           {}
func (NoopMetricsCollector) RecordSweep(int, time.Duration)            {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount       atomic.Int64
	InsertErrors      atomic.Int64
	InsertTotalNanos  atomic.Int64
	BatchInsertCount  atomic.Int64
	BatchInsertItems  atomic.Int64
	BatchInsertFailed atomic.Int64
	SearchCount       atomic.Int64
	SearchErrors      atomic.Int64
	SearchTotalNanos  atomic.Int64
	ConflictCount     atomic.Int64
	SplitCount        atomic.Int64
	CommitCount       atomic.Int64
	CommitStaged      atomic.Int64
	CommitHeldNanos   atomic.Int64
	SweepCount        atomic.Int64
	SweepRemoved      atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordBatchInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchInsert(count, failed int, duration time.Duration) {
	b.BatchInsertCount.Add(1)
	b.BatchInsertItems.Add(int64(count))
	b.BatchInsertFailed.Add(int64(failed))
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(k int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordConflict implements MetricsCollector.
func (b *BasicMetricsCollector) RecordConflict(int) {
	b.ConflictCount.Add(1)
}

// RecordSplit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSplit() {
	b.SplitCount.Add(1)
}

// RecordCommit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCommit(staged int, held time.Duration) {
	b.CommitCount.Add(1)
	b.CommitStaged.Add(int64(staged))
	b.CommitHeldNanos.Add(held.Nanoseconds())
}

// RecordSweep implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSweep(removed int, duration time.Duration) {
	b.SweepCount.Add(1)
	b.SweepRemoved.Add(int64(removed))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:       b.InsertCount.Load(),
		InsertErrors:      b.InsertErrors.Load(),
		InsertAvgNanos:    avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		BatchInsertCount:  b.BatchInsertCount.Load(),
		BatchInsertItems:  b.BatchInsertItems.Load(),
		BatchInsertFailed: b.BatchInsertFailed.Load(),
		SearchCount:       b.SearchCount.Load(),
		SearchErrors:      b.SearchErrors.Load(),
		SearchAvgNanos:    avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		ConflictCount:     b.ConflictCount.Load(),
		SplitCount:        b.SplitCount.Load(),
		CommitCount:       b.CommitCount.Load(),
		CommitAvgHeld:     avg(b.CommitHeldNanos.Load(), b.CommitCount.Load()),
		CommitAvgStaged:   avg(b.CommitStaged.Load(), b.CommitCount.Load()),
		SweepCount:        b.SweepCount.Load(),
		SweepRemoved:      b.SweepRemoved.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount       int64
	InsertErrors      int64
	InsertAvgNanos    int64
	BatchInsertCount  int64
	BatchInsertItems  int64
	BatchInsertFailed int64
	SearchCount       int64
	SearchErrors      int64
	SearchAvgNanos    int64
	ConflictCount     int64
	SplitCount        int64
	CommitCount       int64
	CommitAvgHeld     int64
	CommitAvgStaged   int64
	SweepCount        int64
	SweepRemoved      int64
}

// collectorObserver forwards engine events to a MetricsCollector.
type collectorObserver struct {
	mc MetricsCollector
}

var _ engine.Observer = collectorObserver{}

func (o collectorObserver) OnConflict(attempt int) { o.mc.RecordConflict(attempt) }

func (o collectorObserver) OnSplit(engine.NodeID) { o.mc.RecordSplit() }

func (o collectorObserver) OnCommit(staged int, held time.Duration) {
	o.mc.RecordCommit(staged, held)
}
