// Package distance provides the dissimilarity functions used by the index.
//
// Two interchangeable strategies are provided and selected once at
// construction time through Provider:
//
//   - MetricL2: sum of squared differences (no square root)
//   - MetricAngular: arccosine of the cosine similarity, in radians
//
// Both functions are deterministic and never return a negative value.
// Dense float32 kernels are dispatched to gonum's BLAS implementation when
// the CPU exposes vector units and the vectors are long enough to amortize
// the call overhead.
//
// # Usage
//
//	fn, err := distance.Provider(distance.MetricL2)
//	d := fn(a, b)
package distance
