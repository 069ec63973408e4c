// Package engine implements the clustered-graph index core.
//
// The index partitions vectors into bounded clusters (nodes) linked by a
// bounded-degree proximity graph. Every cluster state is an immutable
// Version; a Node is the identity slot pointing at its latest Version.
//
// Inserts run as optimistic transactions:
//   - route to the nearest live node by exact scan of a registry snapshot
//   - stage successor versions privately, splitting full clusters through a
//     worklist that also rewires edges and spills entities to neighbors
//   - validate the read set under the commit lock and publish, or discard
//     everything and retry from scratch
//
// Queries never take the commit lock. They traverse a copy-on-write registry
// snapshot and atomically loaded latest pointers, so a single query may
// observe a mix of pre- and post-split state.
package engine
