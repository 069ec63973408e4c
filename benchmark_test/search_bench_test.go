package benchmark_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/hupe1980/campus/distance"
	"github.com/hupe1980/campus/testutil"
)

// ============================================================================
// Search Benchmarks
// ============================================================================

// BenchmarkSearch measures query latency and recall@10 over the cluster
// count and frontier knobs.
func BenchmarkSearch(b *testing.B) {
	const n, k = 20000, 10

	idx, data := LoadBenchIndex(b, dimMedium, n)
	queries := GenerateQueries(data, 100)

	truth := make([][]testutil.SearchResult, len(queries))
	for i, q := range queries {
		truth[i] = testutil.ExactTopK(data, q, k, distance.SquaredL2)
	}

	ctx := context.Background()

	for _, knobs := range []struct{ nodeNum, ef int }{{4, 16}, {8, 32}, {16, 64}, {32, 128}} {
		b.Run(fmt.Sprintf("nodes=%d/ef=%d", knobs.nodeNum, knobs.ef), func(b *testing.B) {
			var recall float64
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				qi := i % len(queries)
				res, err := idx.Search(ctx, queries[qi], k, knobs.nodeNum, knobs.ef)
				if err != nil {
					b.Fatal(err)
				}

				b.StopTimer()
				approx := make([]testutil.SearchResult, len(res))
				for j, r := range res {
					approx[j] = testutil.SearchResult{ID: r.ID, Distance: r.Distance}
				}
				recall += testutil.ComputeRecall(truth[qi], approx)
				b.StartTimer()
			}

			b.ReportMetric(recall/float64(b.N), "recall@10")
		})
	}
}

// BenchmarkSearchExact measures the exhaustive centroid scan.
func BenchmarkSearchExact(b *testing.B) {
	idx, data := LoadBenchIndex(b, dimMedium, 20000)
	queries := GenerateQueries(data, 100)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := idx.SearchExact(ctx, queries[i%len(queries)], 10, 8); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSearchParallel measures lock-free query throughput.
func BenchmarkSearchParallel(b *testing.B) {
	idx, data := LoadBenchIndex(b, dimMedium, 20000)
	queries := GenerateQueries(data, 100)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if _, err := idx.Query(ctx, queries[i%len(queries)], 10, 8, 32); err != nil {
				b.Error(err)
				return
			}
			i++
		}
	})
}
