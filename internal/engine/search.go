package engine

import (
	"github.com/hupe1980/campus/internal/pool"
	"github.com/hupe1980/campus/internal/searcher"
)

// Result is one re-ranked search hit.
type Result struct {
	ID       int64
	Distance float32
}

// Search returns up to topK entities nearest to q, ascending by distance,
// taken from the nodeNum clusters found by beam search over the graph with
// a candidate frontier of ef. It never blocks writers.
func (idx *Index) Search(q []float32, topK, nodeNum, ef int) []Result {
	if topK <= 0 {
		return nil
	}
	sc := idx.searchPool.Get()
	defer idx.searchPool.Put(sc)

	return idx.rerank(q, topK, idx.approxClusters(sc, q, nodeNum, ef), sc.Scores)
}

// SearchExact is Search with exact cluster selection. nodeNum <= 0 scans
// every live cluster.
func (idx *Index) SearchExact(q []float32, topK, nodeNum int) []Result {
	if topK <= 0 {
		return nil
	}
	sc := idx.searchPool.Get()
	defer idx.searchPool.Put(sc)

	return idx.rerank(q, topK, idx.exactClusters(q, nodeNum), sc.Scores)
}

// approxClusters runs the beam search and falls back to exact selection when
// the frontier covers every live node or the walk found too few clusters.
func (idx *Index) approxClusters(sc *pool.SearchContext[*Version], q []float32, nodeNum, ef int) []*Version {
	if nodeNum <= 0 {
		return idx.exactClusters(q, 0)
	}
	ef = max(ef, nodeNum)
	if int64(ef) >= idx.liveNodes.Load() {
		return idx.exactClusters(q, nodeNum)
	}

	entry := idx.entry.Load()
	if entry == nil {
		return nil
	}

	visited, candidates, results := sc.Visited, sc.Candidates, sc.Results

	ev := entry.Latest()
	item := searcher.PriorityQueueItem[*Version]{Value: ev, Distance: idx.dist(q, ev.centroid)}
	visited.Visit(uint32(entry.id))
	candidates.PushItem(item)
	if !entry.Archived() {
		results.PushItem(item)
	}

	for candidates.Len() > 0 {
		c, _ := candidates.PopItem()
		if worst, ok := results.TopItem(); ok && results.Len() >= ef && c.Distance > worst.Distance {
			break
		}

		for _, nb := range c.Value.out {
			if !visited.Visit(uint32(nb.id)) {
				continue
			}
			nv := nb.Latest()
			if nv == nil {
				continue
			}
			d := idx.dist(q, nv.centroid)

			worst, ok := results.TopItem()
			if results.Len() < ef || !ok || d < worst.Distance {
				next := searcher.PriorityQueueItem[*Version]{Value: nv, Distance: d}
				candidates.PushItem(next)
				if !nb.Archived() {
					results.PushItemBounded(next, ef)
				}
			}
		}
	}

	found := make([]*Version, 0, nodeNum)
	for _, it := range results.Drain() {
		if len(found) == nodeNum {
			break
		}
		if !it.Value.node.Archived() {
			found = append(found, it.Value)
		}
	}

	if len(found) < nodeNum {
		return idx.exactClusters(q, nodeNum)
	}
	return found
}

// exactClusters returns the nodeNum live clusters with the nearest
// centroids, ascending. nodeNum <= 0 returns every live cluster.
func (idx *Index) exactClusters(q []float32, nodeNum int) []*Version {
	if nodeNum <= 0 {
		return idx.liveVersions()
	}

	pq := searcher.NewPriorityQueue[*Version](true)
	idx.nodes.scan(func(n *Node) bool {
		if n.Archived() {
			return true
		}
		v := n.Latest()
		pq.PushItemBounded(searcher.PriorityQueueItem[*Version]{Value: v, Distance: idx.dist(q, v.centroid)}, nodeNum)
		return true
	})

	items := pq.Drain()
	out := make([]*Version, len(items))
	for i, it := range items {
		out[i] = it.Value
	}
	return out
}

// rerank scores every entity of the given clusters and keeps the topK
// nearest. An id seen in more than one cluster counts once, at its best
// distance. best must be empty.
func (idx *Index) rerank(q []float32, topK int, clusters []*Version, best map[int64]float32) []Result {
	for _, v := range clusters {
		for _, e := range v.posting {
			d := idx.dist(q, e.Vector)
			if old, ok := best[e.ID]; !ok || d < old {
				best[e.ID] = d
			}
		}
	}

	pq := searcher.NewPriorityQueue[int64](true)
	for id, d := range best {
		pq.PushItemBounded(searcher.PriorityQueueItem[int64]{Value: id, Distance: d}, topK)
	}

	items := pq.Drain()
	out := make([]Result, len(items))
	for i, it := range items {
		out[i] = Result{ID: it.Value, Distance: it.Distance}
	}
	return out
}

// liveVersions returns the latest version of every unarchived node in a
// registry snapshot.
func (idx *Index) liveVersions() []*Version {
	out := make([]*Version, 0, idx.liveNodes.Load())
	idx.nodes.scan(func(n *Node) bool {
		if !n.Archived() {
			out = append(out, n.Latest())
		}
		return true
	})
	return out
}
