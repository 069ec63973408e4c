package benchmark_test

import (
	"context"
	"testing"

	"github.com/hupe1980/campus"
	"github.com/hupe1980/campus/testutil"
)

// ============================================================================
// Benchmark Configuration
// ============================================================================

const (
	dimSmall  = 32  // Below the BLAS threshold
	dimMedium = 128 // SIFT, small sentence encoders
	dimLarge  = 768 // OpenAI text-embedding-3-small, Cohere v3
)

const (
	postingLimit    = 64
	connectionLimit = 16
)

const benchSeed = 42

// ============================================================================
// Helpers
// ============================================================================

// OpenBenchIndex creates an index with the benchmark defaults.
func OpenBenchIndex(b *testing.B, dim int, opts ...campus.Option) *campus.Index {
	b.Helper()

	cfg := campus.DefaultConfig(dim)
	cfg.PostingLimit = postingLimit
	cfg.ConnectionLimit = connectionLimit

	idx, err := campus.New(cfg, opts...)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = idx.Close() })
	return idx
}

// LoadBenchIndex creates an index holding n clustered vectors and returns
// them.
func LoadBenchIndex(b *testing.B, dim, n int) (*campus.Index, [][]float32) {
	b.Helper()

	idx := OpenBenchIndex(b, dim)
	data := testutil.NewRNG(benchSeed).ClusteredVectors(n, dim, max(1, n/postingLimit), 0.1)

	items := make([]campus.Item, n)
	for i, v := range data {
		items[i] = campus.Item{ID: int64(i), Vector: v}
	}
	if err := idx.InsertBatch(context.Background(), items).Err(); err != nil {
		b.Fatal(err)
	}
	return idx, data
}

// GenerateQueries returns n queries drawn near the data distribution.
func GenerateQueries(data [][]float32, n int) [][]float32 {
	rng := testutil.NewRNG(benchSeed + 1) // Different seed from data
	queries := make([][]float32, n)
	for i := range queries {
		base := data[rng.Intn(len(data))]
		q := make([]float32, len(base))
		for j := range q {
			q[j] = base[j] + (rng.Float32()-0.5)*0.05
		}
		queries[i] = q
	}
	return queries
}
