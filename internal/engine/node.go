package engine

import "sync/atomic"

// NodeID identifies a cluster for the lifetime of the index.
type NodeID uint32

// Node is the identity slot of one cluster.
//
// latest only advances to a version with a strictly greater sequence number
// and only under the commit lock. Once archived, a node is never a routing
// target or a search result; it stays reachable while transactions that
// read it are in flight so that they fail validation.
//
// The split parent is kept by id only so that a swept parent can be
// collected.
type Node struct {
	id        NodeID
	latest    atomic.Pointer[Version]
	archived  atomic.Bool
	parent    NodeID
	hasParent bool
}

func newNode(id NodeID, parent *Node) *Node {
	n := &Node{id: id}
	if parent != nil {
		n.parent, n.hasParent = parent.id, true
	}
	return n
}

// ID returns the node identifier.
func (n *Node) ID() NodeID { return n.id }

// Latest returns the most recently committed version.
func (n *Node) Latest() *Version { return n.latest.Load() }

// Archived reports whether the node has been superseded by a split.
func (n *Node) Archived() bool { return n.archived.Load() }

// Parent returns the id of the node this one was split from. ok is false
// for the first node.
func (n *Node) Parent() (id NodeID, ok bool) { return n.parent, n.hasParent }

func nodeLess(a, b *Node) bool { return a.id < b.id }
