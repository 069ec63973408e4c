package engine

import (
	"errors"
	"math"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/campus/internal/kmeans"
)

// centroidTolerance bounds the per-component drift between a stored centroid
// and the recomputed mean, scaled by the component magnitude when above 1.
const centroidTolerance = 1e-3

// Stats is a point-in-time summary of the index.
type Stats struct {
	LiveNodes     int
	ArchivedNodes int // archived nodes still held by the registry
	Vectors       int
	Inserts       int64
	Commits       uint64
	Conflicts     int64
	Splits        int64
}

// Stats returns counters and a registry census. It does not lock.
func (idx *Index) Stats() Stats {
	s := Stats{
		Inserts:   idx.inserts.Load(),
		Commits:   idx.commitCounter.Load(),
		Conflicts: idx.conflicts.Load(),
		Splits:    idx.splits.Load(),
	}
	idx.nodes.scan(func(n *Node) bool {
		if n.Archived() {
			s.ArchivedNodes++
			return true
		}
		s.LiveNodes++
		s.Vectors += n.Latest().Len()
		return true
	})
	return s
}

// VectorCount returns the number of entities held by live clusters.
func (idx *Index) VectorCount() int {
	count := 0
	for _, v := range idx.liveVersions() {
		count += len(v.posting)
	}
	return count
}

// IDs returns the set of ids reachable through live clusters.
func (idx *Index) IDs() *roaring64.Bitmap {
	bm := roaring64.New()
	for _, v := range idx.liveVersions() {
		for _, e := range v.posting {
			bm.Add(uint64(e.ID))
		}
	}
	return bm
}

// DistinctIDs returns the number of distinct ids reachable through live
// clusters. After quiescence it equals the number of completed inserts of
// distinct ids.
func (idx *Index) DistinctIDs() uint64 {
	return idx.IDs().GetCardinality()
}

// MissingIDs returns the members of expected that no live cluster holds.
func (idx *Index) MissingIDs(expected []int64) []int64 {
	bm := idx.IDs()
	var missing []int64
	for _, id := range expected {
		if !bm.Contains(uint64(id)) {
			missing = append(missing, id)
		}
	}
	return missing
}

// AssignmentViolations counts entities whose own cluster centroid is not the
// nearest live centroid.
func (idx *Index) AssignmentViolations() int {
	versions := idx.liveVersions()
	centroids := make([][]float32, len(versions))
	for i, v := range versions {
		centroids[i] = v.centroid
	}

	violations := 0
	for i, v := range versions {
		for _, e := range v.posting {
			own := idx.dist(e.Vector, centroids[i])
			if _, nearest := kmeans.Nearest(e.Vector, centroids, idx.dist); nearest < own {
				violations++
			}
		}
	}
	return violations
}

// Sweep drops archived nodes from the registry and returns how many were
// removed. Nothing else in the index refers to an archived node, so once
// readers holding an older snapshot finish it is garbage.
func (idx *Index) Sweep() int {
	idx.commitMu.Lock()
	defer idx.commitMu.Unlock()

	var gone []*Node
	idx.nodes.scan(func(n *Node) bool {
		if n.Archived() {
			gone = append(gone, n)
		}
		return true
	})
	idx.nodes.publish(nil, gone)

	if len(gone) > 0 {
		idx.logger.Debug("swept archived nodes", "removed", len(gone), "remaining", idx.nodes.Len())
	}
	return len(gone)
}

// CheckInvariants verifies the structural invariants of the committed graph
// under the commit lock. Every violation wraps ErrStructural.
func (idx *Index) CheckInvariants() error {
	idx.commitMu.Lock()
	defer idx.commitMu.Unlock()

	var errs []error
	live := 0
	mean := make([]float32, idx.dim)

	idx.nodes.scan(func(n *Node) bool {
		if n.Archived() {
			return true
		}
		live++
		v := n.Latest()

		if len(v.posting) == 0 || len(v.posting) > idx.postingLimit {
			errs = append(errs, structuralf("node %d holds %d entities (limit %d)", n.id, len(v.posting), idx.postingLimit))
		}

		vecs := make([][]float32, len(v.posting))
		for i := range v.posting {
			vecs[i] = v.posting[i].Vector
		}
		kmeans.Mean(mean, vecs)
		for d := range mean {
			tol := centroidTolerance * math.Max(1, math.Abs(float64(mean[d])))
			if math.Abs(float64(v.centroid[d]-mean[d])) > tol {
				errs = append(errs, structuralf("node %d centroid[%d]=%g, mean %g", n.id, d, v.centroid[d], mean[d]))
				break
			}
		}

		if len(v.out) > idx.connectionLimit || len(v.in) > idx.connectionLimit {
			errs = append(errs, structuralf("node %d degree out=%d in=%d (limit %d)", n.id, len(v.out), len(v.in), idx.connectionLimit))
		}

		errs = append(errs, checkEdges(n, v.out, true)...)
		errs = append(errs, checkEdges(n, v.in, false)...)
		return true
	})

	if int64(live) != idx.liveNodes.Load() {
		errs = append(errs, structuralf("live node counter %d, registry holds %d", idx.liveNodes.Load(), live))
	}
	if live > 0 {
		if e := idx.entry.Load(); e == nil || e.Archived() {
			errs = append(errs, structuralf("entry point is not a live node"))
		}
	}

	return errors.Join(errs...)
}

func checkEdges(n *Node, set []*Node, outgoing bool) []error {
	var errs []error
	seen := make(map[*Node]struct{}, len(set))
	for _, m := range set {
		if m == n {
			errs = append(errs, structuralf("node %d has a self edge", n.id))
			continue
		}
		if _, dup := seen[m]; dup {
			errs = append(errs, structuralf("node %d lists neighbor %d twice", n.id, m.id))
			continue
		}
		seen[m] = struct{}{}

		if m.Archived() {
			errs = append(errs, structuralf("node %d has an edge to archived node %d", n.id, m.id))
			continue
		}
		mv := m.Latest()
		if mv == nil {
			errs = append(errs, structuralf("node %d has an edge to unpublished node %d", n.id, m.id))
			continue
		}
		if outgoing && !mv.hasIn(n) {
			errs = append(errs, structuralf("edge %d->%d missing reverse entry", n.id, m.id))
		}
		if !outgoing && !mv.hasOut(n) {
			errs = append(errs, structuralf("edge %d->%d missing forward entry", m.id, n.id))
		}
	}
	return errs
}
