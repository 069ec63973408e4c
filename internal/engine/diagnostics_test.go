package engine

import (
	"errors"
	"runtime"
	"testing"
	"time"
	"weak"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/campus/testutil"
)

func TestSweep(t *testing.T) {
	vecs := testutil.NewRNG(31).UniformVectors(150, 4)
	idx := buildIndex(t, vecs, 4, 3)

	before := idx.Stats()
	require.Positive(t, before.ArchivedNodes)
	assert.Equal(t, idx.NodeCount(), before.LiveNodes)
	assert.Equal(t, len(vecs), before.Vectors)

	removed := idx.Sweep()
	assert.Equal(t, before.ArchivedNodes, removed)

	after := idx.Stats()
	assert.Zero(t, after.ArchivedNodes)
	assert.Equal(t, before.LiveNodes, after.LiveNodes)
	assert.Equal(t, idx.nodes.Len(), after.LiveNodes)
	assert.Zero(t, idx.Sweep(), "a second sweep finds nothing")

	require.NoError(t, idx.CheckInvariants())
	assert.Equal(t, uint64(len(vecs)), idx.DistinctIDs())

	// Inserts keep working on a swept registry.
	idx.Insert(1000, []float32{0.5, 0.5, 0.5, 0.5})
	assert.Equal(t, len(vecs)+1, idx.VectorCount())
	require.NoError(t, idx.CheckInvariants())
}

func TestSweep_SnapshotReadersKeepArchivedNodes(t *testing.T) {
	vecs := testutil.NewRNG(32).UniformVectors(40, 2)
	idx := buildIndex(t, vecs, 2, 2)

	snap := idx.nodes.snapshot()
	held := snap.Len()
	removed := idx.Sweep()
	require.Positive(t, removed)

	assert.Equal(t, held, snap.Len(), "published snapshots are immutable")
	assert.Equal(t, held-removed, idx.nodes.Len())
}

func TestSweep_ReleasesSupersededState(t *testing.T) {
	idx := newTestIndex(t, 4, 4, 3)
	first, firstVersion := insertFirst(idx)

	for i, v := range testutil.NewRNG(33).UniformVectors(300, 4) {
		idx.Insert(int64(i+1), v)
	}
	require.Positive(t, idx.Sweep())

	// Only live nodes are reachable from the registry and the entry point.
	reached := make(map[*Node]struct{})
	stack := []*Node{idx.Entry()}
	idx.nodes.scan(func(n *Node) bool {
		stack = append(stack, n)
		return true
	})
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := reached[n]; ok {
			continue
		}
		reached[n] = struct{}{}
		assert.False(t, n.Archived(), "node %d", n.ID())
		v := n.Latest()
		stack = append(stack, v.Out()...)
		stack = append(stack, v.In()...)
	}
	assert.Len(t, reached, idx.NodeCount())

	require.Eventually(t, func() bool {
		runtime.GC()
		return first.Value() == nil && firstVersion.Value() == nil
	}, 5*time.Second, 10*time.Millisecond, "swept node and superseded version must be collectable")
}

// insertFirst bootstraps idx and returns weak references to the first node
// and its first version.
func insertFirst(idx *Index) (weak.Pointer[Node], weak.Pointer[Version]) {
	idx.Insert(0, []float32{0.5, 0.5, 0.5, 0.5})
	n := idx.Entry()
	return weak.Make(n), weak.Make(n.Latest())
}

func TestCheckInvariants_DetectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(idx *Index, v *Version)
	}{
		{"Centroid", func(_ *Index, v *Version) { v.centroid[0] += 5 }},
		{"PostingLimit", func(idx *Index, v *Version) {
			for range idx.postingLimit {
				v.posting = append(v.posting, v.posting[0])
			}
		}},
		{"DanglingEdge", func(idx *Index, v *Version) {
			v.out = append(v.out, newNode(9999, nil))
		}},
		{"AsymmetricEdge", func(_ *Index, v *Version) {
			if len(v.out) > 0 {
				v.out = v.out[:len(v.out)-1]
				return
			}
			v.in = v.in[:len(v.in)-1]
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vecs := testutil.NewRNG(33).UniformVectors(30, 3)
			idx := buildIndex(t, vecs, 4, 3)
			require.NoError(t, idx.CheckInvariants())

			// Swap in a corrupted copy of a live node's version.
			var target *Node
			idx.nodes.scan(func(n *Node) bool {
				if !n.Archived() && len(n.Latest().out)+len(n.Latest().in) > 0 {
					target = n
					return false
				}
				return true
			})
			require.NotNil(t, target)

			bad := target.Latest().successor()
			tt.corrupt(idx, bad)
			target.latest.Store(bad)

			err := idx.CheckInvariants()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrStructural))
		})
	}
}

func TestAssignmentViolations(t *testing.T) {
	idx := newTestIndex(t, 1, 4, 4)
	assert.Zero(t, idx.AssignmentViolations())

	a := newNode(0, nil)
	av := newVersion(a, 1)
	av.posting = []Entity{{ID: 1, Vector: []float32{0}}, {ID: 2, Vector: []float32{9}}}
	av.recomputeCentroid() // 4.5
	a.latest.Store(av)

	b := newNode(1, nil)
	bv := newVersion(b, 1)
	bv.posting = []Entity{{ID: 3, Vector: []float32{10}}}
	bv.recomputeCentroid()
	b.latest.Store(bv)

	idx.nodes.publish([]*Node{a, b}, nil)
	idx.liveNodes.Add(2)

	// id 2 sits at 9, nearer to b's centroid (10) than to its own (4.5).
	assert.Equal(t, 1, idx.AssignmentViolations())
}
