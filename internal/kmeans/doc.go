// Package kmeans implements the small clustering kernels used when a full
// cluster is split: centroid computation, nearest-centroid assignment and a
// local 2-means refinement with strict-improvement moves.
package kmeans
