// Package campus provides a concurrent, in-memory approximate nearest
// neighbor index for Go.
//
// Vectors are partitioned into bounded-size clusters ("nodes"). Each cluster
// keeps the mean of its vectors as centroid and is linked to nearby clusters
// in a bounded-degree proximity graph. A full cluster is split in two by
// 2-means and the graph is rewired around the pair; vectors then spill to
// neighboring clusters whose centroids are closer.
//
// # Quick Start
//
//	idx, _ := campus.New(campus.DefaultConfig(128))
//	defer idx.Close()
//
//	_ = idx.Insert(ctx, vector, 42)
//	ids, _ := idx.Query(ctx, query, 10, 8, 32) // top 10, 8 clusters, frontier 32
//
// Or with the fluent APIs:
//
//	idx := campus.NewBuilder(128).Angular().PostingLimit(100).MustBuild()
//	results, _ := idx.Find(query).KNN(10).EF(64).Execute(ctx)
//
// # Concurrency
//
// Inserts are optimistic transactions: each one reads the current versions
// of the clusters it needs, stages successor versions privately and
// validates its reads under a single commit lock. A transaction whose reads
// went stale is discarded and retried; callers never see a conflict.
//
// Queries take no lock. They read the latest committed version of each
// cluster and may observe one writer's commit partially, so results are
// approximate in time as well as in space.
//
// # Configuration
//
// Config can be built in code, through Builder, or loaded with LoadConfig
// from a YAML file plus CAMPUS_* environment overrides:
//
//	dimension: 128
//	posting_limit: 64
//	connection_limit: 16
//	metric: angular
//	element_size: 2
//
// # Observability
//
// Structured logging uses log/slog through Logger; metrics go to a
// MetricsCollector. The metric/prometheus package exports them to
// Prometheus.
package campus
