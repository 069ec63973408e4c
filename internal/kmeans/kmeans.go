package kmeans

import (
	"math"

	"github.com/hupe1980/campus/distance"
)

// DefaultMaxRounds bounds TwoMeans when the caller passes a non-positive limit.
// Strict-improvement moves terminate on their own for squared L2; the bound
// only guards metrics where that argument does not hold.
const DefaultMaxRounds = 64

// Mean writes the component-wise mean of vectors into dst.
// dst is zeroed when vectors is empty. Accumulation is done in float64.
func Mean(dst []float32, vectors [][]float32) {
	if len(vectors) == 0 {
		clear(dst)
		return
	}

	sums := make([]float64, len(dst))
	for _, v := range vectors {
		for d := range sums {
			sums[d] += float64(v[d])
		}
	}

	scale := 1.0 / float64(len(vectors))
	for d := range dst {
		dst[d] = float32(sums[d] * scale)
	}
}

// Nearest returns the index of the closest centroid and its distance.
// It returns -1 when centroids is empty.
func Nearest(vec []float32, centroids [][]float32, dist distance.Func) (int, float32) {
	best := -1
	minDist := float32(math.MaxFloat32)

	for j, c := range centroids {
		d := dist(vec, c)
		if d < minDist {
			minDist = d
			best = j
		}
	}

	return best, minDist
}

// TwoMeans refines a two-way assignment of vectors in place.
//
// assign[i] is 0 or 1 and both sides must be non-empty on entry. Each round
// recomputes both centroids, then moves every vector that is strictly nearer
// to the other centroid. A side is never emptied. It returns the number of
// rounds in which at least one vector moved.
func TwoMeans(vectors [][]float32, assign []int, dist distance.Func, maxRounds int) int {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	if len(vectors) < 2 {
		return 0
	}

	dim := len(vectors[0])
	centroids := [2][]float32{make([]float32, dim), make([]float32, dim)}
	members := [2][][]float32{}

	rounds := 0
	for rounds < maxRounds {
		members[0] = members[0][:0]
		members[1] = members[1][:0]
		for i, v := range vectors {
			members[assign[i]] = append(members[assign[i]], v)
		}
		Mean(centroids[0], members[0])
		Mean(centroids[1], members[1])

		counts := [2]int{len(members[0]), len(members[1])}
		changed := false

		for i, v := range vectors {
			own := assign[i]
			other := 1 - own
			if counts[own] <= 1 {
				continue
			}
			if dist(v, centroids[other]) < dist(v, centroids[own]) {
				assign[i] = other
				counts[own]--
				counts[other]++
				changed = true
			}
		}

		if !changed {
			break
		}
		rounds++
	}

	return rounds
}
