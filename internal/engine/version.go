package engine

import (
	"slices"

	"github.com/hupe1980/campus/internal/kmeans"
)

// Version is an immutable snapshot of one cluster: its members, their
// centroid and its graph edges. A version is mutable only while staged by
// the transaction that created it.
//
// Versions do not link to their predecessor. A superseded version stays
// alive only while a reader or an open transaction holds it.
type Version struct {
	seq    uint64 // per-node sequence, the predecessor is seq-1
	commit uint64 // commit counter stamp, diagnostic only
	node   *Node

	centroid []float32
	posting  []Entity
	out      []*Node
	in       []*Node
}

func newVersion(node *Node, dim int) *Version {
	return &Version{
		seq:      1,
		node:     node,
		centroid: make([]float32, dim),
	}
}

// successor returns a private copy of v with the next sequence number.
func (v *Version) successor() *Version {
	return &Version{
		seq:      v.seq + 1,
		node:     v.node,
		centroid: slices.Clone(v.centroid),
		posting:  slices.Clone(v.posting),
		out:      slices.Clone(v.out),
		in:       slices.Clone(v.in),
	}
}

// Seq returns the per-node sequence number.
func (v *Version) Seq() uint64 { return v.seq }

// CommitStamp returns the commit counter value the version was published with.
func (v *Version) CommitStamp() uint64 { return v.commit }

// Node returns the owning node.
func (v *Version) Node() *Node { return v.node }

// Centroid returns the mean of the posting vectors. Callers must not modify it.
func (v *Version) Centroid() []float32 { return v.centroid }

// Posting returns the cluster members. Callers must not modify it.
func (v *Version) Posting() []Entity { return v.posting }

// Out returns the out-neighbors. Callers must not modify it.
func (v *Version) Out() []*Node { return v.out }

// In returns the in-neighbors. Callers must not modify it.
func (v *Version) In() []*Node { return v.in }

// Len returns the number of members.
func (v *Version) Len() int { return len(v.posting) }

func (v *Version) recomputeCentroid() {
	vecs := make([][]float32, len(v.posting))
	for i := range v.posting {
		vecs[i] = v.posting[i].Vector
	}
	kmeans.Mean(v.centroid, vecs)
}

func (v *Version) appendEntity(e Entity) {
	v.posting = append(v.posting, e)
	v.recomputeCentroid()
}

func (v *Version) hasOut(n *Node) bool { return slices.Contains(v.out, n) }

func (v *Version) hasIn(n *Node) bool { return slices.Contains(v.in, n) }

func removeNode(s []*Node, n *Node) []*Node {
	if i := slices.Index(s, n); i >= 0 {
		return slices.Delete(s, i, i+1)
	}
	return s
}
