// Package pool provides object pools for low-allocation search operations.
// Uses sync.Pool for automatic memory reuse and bitsets for efficient visited tracking.
package pool

import (
	"sync"

	"github.com/hupe1980/campus/internal/searcher"
)

const (
	// DefaultMaxNodes is the initial visited capacity of a new context.
	DefaultMaxNodes = 4096

	// maxRetainedNodes bounds the visited capacity of a context returned to
	// the pool; larger sets are replaced so one huge walk does not pin memory.
	maxRetainedNodes = DefaultMaxNodes * 256

	// maxRetainedScores bounds the score map of a pooled context.
	maxRetainedScores = 1 << 16
)

// SearchContext contains reusable buffers for one query: the visited set
// and both heaps of the graph walk, plus the per-id score map of
// re-ranking.
type SearchContext[T any] struct {
	Visited    *searcher.VisitedSet
	Candidates *searcher.PriorityQueue[T] // min-heap
	Results    *searcher.PriorityQueue[T] // max-heap
	Scores     map[int64]float32
}

func newSearchContext[T any]() *SearchContext[T] {
	return &SearchContext[T]{
		Visited:    searcher.NewVisitedSet(DefaultMaxNodes),
		Candidates: searcher.NewPriorityQueue[T](false),
		Results:    searcher.NewPriorityQueue[T](true),
		Scores:     make(map[int64]float32),
	}
}

// Reset clears the SearchContext for reuse.
func (sc *SearchContext[T]) Reset() {
	sc.Visited.Reset()
	sc.Candidates.Reset()
	sc.Results.Reset()
	clear(sc.Scores)
}

// Stats returns current statistics about this SearchContext.
func (sc *SearchContext[T]) Stats() SearchContextStats {
	return SearchContextStats{
		VisitedCapacity: sc.Visited.Capacity(),
		VisitedCount:    sc.Visited.Count(),
		CandidatesCount: sc.Candidates.Len(),
		ResultCount:     sc.Results.Len(),
		ScoreCount:      len(sc.Scores),
	}
}

// SearchContextStats returns statistics about the SearchContext.
type SearchContextStats struct {
	VisitedCapacity uint
	VisitedCount    int
	CandidatesCount int
	ResultCount     int
	ScoreCount      int
}

// Pool is a typed sync.Pool of search contexts.
type Pool[T any] struct {
	p sync.Pool
}

// New creates an empty pool.
func New[T any]() *Pool[T] {
	return &Pool[T]{
		p: sync.Pool{New: func() any { return newSearchContext[T]() }},
	}
}

// Get retrieves a cleared SearchContext from the pool.
func (p *Pool[T]) Get() *SearchContext[T] {
	return p.p.Get().(*SearchContext[T])
}

// Put resets sc and returns it to the pool for reuse.
func (p *Pool[T]) Put(sc *SearchContext[T]) {
	if sc == nil {
		return
	}
	if len(sc.Scores) > maxRetainedScores {
		sc.Scores = make(map[int64]float32)
	}
	sc.Reset()
	if sc.Visited.Capacity() > maxRetainedNodes {
		sc.Visited = searcher.NewVisitedSet(DefaultMaxNodes)
	}
	p.p.Put(sc)
}
