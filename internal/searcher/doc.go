// Package searcher provides the bounded heaps and visited sets used by
// cluster graph traversal and top-k re-ranking.
//
// The queues are value based and generic over the payload so the same heap
// can carry graph nodes during beam search and entity ids during re-ranking.
// None of the types here are safe for concurrent use; each query owns its
// own instances.
package searcher
