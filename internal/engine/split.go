package engine

import (
	"slices"

	"github.com/hupe1980/campus/internal/kmeans"
)

// split divides the full node n into two children, placing extra as well.
// Jobs aimed at a node already split in this transaction are redirected to
// its nearer child, and a node that regained room simply takes the entity.
func (tx *insertTx) split(n *Node, extra Entity) {
	if tx.isSplit(n) {
		tx.addEntity(n, extra)
		return
	}
	v := tx.mutable(n)
	if len(v.posting) < tx.idx.postingLimit {
		v.appendEntity(extra)
		return
	}

	// The triggering entity leads so that bisection puts it in the first child.
	members := make([]Entity, 0, len(v.posting)+1)
	members = append(members, extra)
	members = append(members, v.posting...)

	vecs := make([][]float32, len(members))
	assign := make([]int, len(members))
	half := len(members) / 2
	for i, e := range members {
		vecs[i] = e.Vector
		if i >= half {
			assign[i] = 1
		}
	}
	kmeans.TwoMeans(vecs, assign, tx.idx.dist, tx.idx.maxRounds)

	kids := [2]*Node{tx.createNode(n), tx.createNode(n)}
	for i, e := range members {
		kv := tx.staged[kids[assign[i]]]
		kv.posting = append(kv.posting, e.clone())
	}
	for _, k := range kids {
		tx.staged[k].recomputeCentroid()
	}

	tx.children[n] = kids
	tx.splitLog = append(tx.splitLog, n.id)

	tx.idx.logger.Debug("split node",
		"node", n.id,
		"left", kids[0].id,
		"right", kids[1].id,
		"left_size", tx.staged[kids[0]].Len(),
		"right_size", tx.staged[kids[1]].Len())

	neighbors := tx.rewire(n, kids)

	affected := make([]*Node, 0, len(neighbors)+2)
	affected = append(affected, kids[0], kids[1])
	affected = append(affected, neighbors...)
	tx.spill(affected)
}

// rewire moves the edges of the split node n onto its children and returns
// the former neighbors in either direction.
func (tx *insertTx) rewire(n *Node, kids [2]*Node) []*Node {
	v := tx.view(n)
	outs := slices.Clone(v.out)
	ins := slices.Clone(v.in)

	for _, x := range outs {
		tx.unlink(n, x)
	}
	for _, y := range ins {
		tx.unlink(y, n)
	}

	tx.link(kids[0], kids[1])
	tx.link(kids[1], kids[0])

	for _, x := range outs {
		tx.link(kids[0], x)
		tx.link(kids[1], x)
	}
	for _, y := range ins {
		tx.link(y, kids[0])
		tx.link(y, kids[1])
	}

	neighbors := outs
	for _, y := range ins {
		if !slices.Contains(neighbors, y) {
			neighbors = append(neighbors, y)
		}
	}
	return neighbors
}

// link adds the edge a->b and enforces the connection limit on a's out-set
// and b's in-set by dropping the single farthest neighbor.
func (tx *insertTx) link(a, b *Node) {
	if a == b {
		return
	}
	va := tx.mutable(a)
	vb := tx.mutable(b)
	if !va.hasOut(b) {
		va.out = append(va.out, b)
	}
	if !vb.hasIn(a) {
		vb.in = append(vb.in, a)
	}

	limit := tx.idx.connectionLimit
	if len(va.out) > limit {
		tx.unlink(a, tx.farthest(va.centroid, va.out))
	}
	if len(vb.in) > limit {
		tx.unlink(tx.farthest(vb.centroid, vb.in), b)
	}
}

// unlink removes the edge a->b from both endpoints.
func (tx *insertTx) unlink(a, b *Node) {
	va := tx.mutable(a)
	va.out = removeNode(va.out, b)
	vb := tx.mutable(b)
	vb.in = removeNode(vb.in, a)
}

// farthest returns the member of set whose centroid is farthest from c.
// Ties keep the first candidate.
func (tx *insertTx) farthest(c []float32, set []*Node) *Node {
	var (
		worst   *Node
		maxDist float32
	)
	for _, s := range set {
		d := tx.idx.dist(c, tx.view(s).centroid)
		if worst == nil || d > maxDist {
			worst, maxDist = s, d
		}
	}
	return worst
}

// spill moves entities of the affected clusters into a neighboring affected
// cluster whose centroid is strictly closer than their own. A move never
// empties its source; a full target queues a nested split.
func (tx *insertTx) spill(affected []*Node) {
	for _, c := range affected {
		if tx.isSplit(c) {
			continue
		}

		v := tx.view(c)
		targets := make([]*Node, 0, len(v.out))
		for _, t := range v.out {
			if slices.Contains(affected, t) && !tx.isSplit(t) {
				targets = append(targets, t)
			}
		}
		if len(targets) == 0 {
			continue
		}

		for i := 0; i < len(v.posting) && len(v.posting) > 1; {
			e := v.posting[i]
			own := tx.idx.dist(e.Vector, v.centroid)

			var (
				best     *Node
				bestDist = own
			)
			for _, t := range targets {
				if d := tx.idx.dist(e.Vector, tx.view(t).centroid); d < bestDist {
					best, bestDist = t, d
				}
			}
			if best == nil {
				i++
				continue
			}

			v = tx.mutable(c)
			v.posting = slices.Delete(v.posting, i, i+1)
			v.recomputeCentroid()
			tx.addEntity(best, e.clone())
		}
	}
}
