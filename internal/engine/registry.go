package engine

import (
	"sync/atomic"

	"github.com/tidwall/btree"
)

// registry is the copy-on-write set of nodes ordered by id.
//
// Readers load the current snapshot and iterate it without synchronization.
// Writers clone the tree, apply their changes and publish the clone; they
// must be serialized by the caller (the commit lock).
type registry struct {
	tree atomic.Pointer[btree.BTreeG[*Node]]
}

func newRegistry() *registry {
	r := &registry{}
	r.tree.Store(btree.NewBTreeGOptions(nodeLess, btree.Options{NoLocks: true}))
	return r
}

// snapshot returns an immutable view. It must not be modified.
func (r *registry) snapshot() *btree.BTreeG[*Node] {
	return r.tree.Load()
}

// Len returns the number of nodes, archived ones included.
func (r *registry) Len() int {
	return r.snapshot().Len()
}

// scan iterates the nodes of a snapshot in id order until fn returns false.
func (r *registry) scan(fn func(n *Node) bool) {
	r.snapshot().Scan(fn)
}

// publish applies add and remove to a copy of the current tree and stores it.
// Callers hold the commit lock.
func (r *registry) publish(add []*Node, remove []*Node) {
	if len(add) == 0 && len(remove) == 0 {
		return
	}
	next := r.snapshot().Copy()
	for _, n := range add {
		next.Set(n)
	}
	for _, n := range remove {
		next.Delete(n)
	}
	r.tree.Store(next)
}
