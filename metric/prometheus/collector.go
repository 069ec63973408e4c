// Package prometheus exports campus metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	mc, _ := campusprom.NewCollector(reg, "myapp")
//	idx, _ := campus.New(cfg, campus.WithMetricsCollector(mc))
package prometheus

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/campus"
)

var _ campus.MetricsCollector = (*Collector)(nil)

// Collector implements campus.MetricsCollector on top of Prometheus
// counters and histograms.
type Collector struct {
	opLatency  *prom.HistogramVec
	ops        *prom.CounterVec
	batchItems *prom.CounterVec
	conflicts  prom.Counter
	retries    prom.Histogram
	splits     prom.Counter
	commitHeld prom.Histogram
	staged     prom.Histogram
	swept      prom.Counter
}

// NewCollector creates a collector and registers its metrics with reg.
// namespace prefixes every metric name; it defaults to "campus".
func NewCollector(reg prom.Registerer, namespace string) (*Collector, error) {
	if namespace == "" {
		namespace = "campus"
	}

	c := &Collector{
		opLatency: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of index operations",
			Buckets:   prom.DefBuckets,
		}, []string{"op", "status"}),
		ops: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total index operations",
		}, []string{"op", "status"}),
		batchItems: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Items submitted through batch inserts",
		}, []string{"status"}),
		conflicts: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "insert_conflicts_total",
			Help:      "Insert transactions discarded by validation",
		}),
		retries: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "insert_conflict_attempt",
			Help:      "Attempt number at which an insert conflict happened",
			Buckets:   prom.ExponentialBuckets(1, 2, 8),
		}),
		splits: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "node_splits_total",
			Help:      "Cluster splits committed",
		}),
		commitHeld: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "commit_lock_held_seconds",
			Help:      "Time the commit lock was held per commit",
			Buckets:   prom.ExponentialBuckets(1e-6, 4, 10),
		}),
		staged: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "commit_staged_versions",
			Help:      "Versions published per commit",
			Buckets:   prom.ExponentialBuckets(1, 2, 10),
		}),
		swept: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "swept_nodes_total",
			Help:      "Archived clusters dropped from the registry",
		}),
	}

	for _, col := range []prom.Collector{
		c.opLatency, c.ops, c.batchItems, c.conflicts, c.retries,
		c.splits, c.commitHeld, c.staged, c.swept,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNewCollector is like NewCollector but panics if registration fails.
func MustNewCollector(reg prom.Registerer, namespace string) *Collector {
	c, err := NewCollector(reg, namespace)
	if err != nil {
		panic(err)
	}
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *Collector) observe(op, status string, d time.Duration) {
	c.opLatency.WithLabelValues(op, status).Observe(d.Seconds())
	c.ops.WithLabelValues(op, status).Inc()
}

// RecordInsert implements campus.MetricsCollector.
func (c *Collector) RecordInsert(d time.Duration, err error) {
	c.observe("insert", status(err), d)
}

// RecordBatchInsert implements campus.MetricsCollector.
func (c *Collector) RecordBatchInsert(count, failed int, d time.Duration) {
	s := "success"
	if failed > 0 {
		s = "partial"
	}
	c.observe("batch_insert", s, d)
	c.batchItems.WithLabelValues("success").Add(float64(count - failed))
	c.batchItems.WithLabelValues("error").Add(float64(failed))
}

// RecordSearch implements campus.MetricsCollector.
func (c *Collector) RecordSearch(_ int, d time.Duration, err error) {
	c.observe("search", status(err), d)
}

// RecordConflict implements campus.MetricsCollector.
func (c *Collector) RecordConflict(attempt int) {
	c.conflicts.Inc()
	c.retries.Observe(float64(attempt))
}

// RecordSplit implements campus.MetricsCollector.
func (c *Collector) RecordSplit() {
	c.splits.Inc()
}

// RecordCommit implements campus.MetricsCollector.
func (c *Collector) RecordCommit(staged int, held time.Duration) {
	c.staged.Observe(float64(staged))
	c.commitHeld.Observe(held.Seconds())
}

// RecordSweep implements campus.MetricsCollector.
func (c *Collector) RecordSweep(removed int, d time.Duration) {
	c.observe("sweep", "success", d)
	c.swept.Add(float64(removed))
}
