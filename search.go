package campus

import (
	"context"
	"iter"
)

// defaultK is the neighbor count of a SearchBuilder until KNN is called.
const defaultK = 10

// Find creates a fluent search builder for the given query vector. The
// cluster count and frontier default to Config.DefaultNodeNum and
// Config.DefaultEF.
//
// Example:
//
//	results, err := idx.Find(query).
//	    KNN(10).
//	    EF(64).
//	    Execute(ctx)
//
//	// Or with streaming:
//	for result, err := range idx.Find(query).KNN(100).Stream(ctx) {
//	    if err != nil { break }
//	    if result.Distance > threshold { break }
//	    process(result)
//	}
func (x *Index) Find(query []float32) *SearchBuilder {
	return &SearchBuilder{
		x:       x,
		query:   query,
		k:       defaultK,
		nodeNum: x.cfg.DefaultNodeNum,
		ef:      x.cfg.DefaultEF,
	}
}

// SearchBuilder is a fluent builder for constructing search queries.
type SearchBuilder struct {
	x       *Index
	query   []float32
	k       int
	nodeNum int
	ef      int
	exact   bool
	filter  func(id int64) bool
}

// KNN sets the number of nearest neighbors to return.
func (sb *SearchBuilder) KNN(k int) *SearchBuilder {
	sb.k = k
	return sb
}

// EF sets the candidate frontier of the graph walk.
// Higher values improve recall but slow down search.
func (sb *SearchBuilder) EF(ef int) *SearchBuilder {
	sb.ef = ef
	return sb
}

// Nodes sets the number of clusters whose vectors are re-ranked.
// Zero or less scans every cluster the walk (or exact scan) reaches.
func (sb *SearchBuilder) Nodes(n int) *SearchBuilder {
	sb.nodeNum = n
	return sb
}

// Exact selects clusters by an exhaustive centroid scan instead of the
// graph walk.
func (sb *SearchBuilder) Exact() *SearchBuilder {
	sb.exact = true
	return sb
}

// Filter drops results for which fn returns false. Filtering happens after
// re-ranking, so fewer than k results may be returned.
func (sb *SearchBuilder) Filter(fn func(id int64) bool) *SearchBuilder {
	sb.filter = fn
	return sb
}

// Execute runs the search and returns the results, nearest first.
func (sb *SearchBuilder) Execute(ctx context.Context) ([]Result, error) {
	var (
		res []Result
		err error
	)
	if sb.exact {
		res, err = sb.x.SearchExact(ctx, sb.query, sb.k, sb.nodeNum)
	} else {
		res, err = sb.x.Search(ctx, sb.query, sb.k, sb.nodeNum, sb.ef)
	}
	if err != nil || sb.filter == nil {
		return res, err
	}

	kept := res[:0]
	for _, r := range res {
		if sb.filter(r.ID) {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

// MustExecute runs the search, panicking on error.
// Use this only in tests or when you're certain the query is valid.
func (sb *SearchBuilder) MustExecute(ctx context.Context) []Result {
	results, err := sb.Execute(ctx)
	if err != nil {
		panic(err)
	}
	return results
}

// Stream returns an iterator over search results.
// Results are yielded in order from nearest to farthest.
// The iterator supports early termination by breaking from the loop.
func (sb *SearchBuilder) Stream(ctx context.Context) iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		results, err := sb.Execute(ctx)
		if err != nil {
			yield(Result{}, err)
			return
		}
		for _, r := range results {
			if ctx.Err() != nil {
				yield(Result{}, ctx.Err())
				return
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}

// First returns only the nearest result, or ErrNotFound if the index is
// empty.
func (sb *SearchBuilder) First(ctx context.Context) (Result, error) {
	sb.k = 1
	results, err := sb.Execute(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(results) == 0 {
		return Result{}, ErrNotFound
	}
	return results[0], nil
}

// Count executes the search and returns the number of results.
func (sb *SearchBuilder) Count(ctx context.Context) (int, error) {
	results, err := sb.Execute(ctx)
	if err != nil {
		return 0, err
	}
	return len(results), nil
}

// Exists checks if at least one result matches the search.
func (sb *SearchBuilder) Exists(ctx context.Context) (bool, error) {
	results, err := sb.Execute(ctx)
	if err != nil {
		return false, err
	}
	return len(results) > 0, nil
}
