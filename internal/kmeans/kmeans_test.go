package kmeans

import (
	"testing"

	"github.com/hupe1980/campus/distance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	dst := make([]float32, 2)
	Mean(dst, [][]float32{{0, 0}, {2, 4}, {4, 8}})
	assert.Equal(t, []float32{2, 4}, dst)

	Mean(dst, nil)
	assert.Equal(t, []float32{0, 0}, dst)
}

func TestNearest(t *testing.T) {
	centroids := [][]float32{{0, 0}, {10, 10}, {5, 5}}

	idx, d := Nearest([]float32{9, 9}, centroids, distance.SquaredL2)
	assert.Equal(t, 1, idx)
	assert.Equal(t, float32(2), d)

	idx, _ = Nearest([]float32{1, 1}, nil, distance.SquaredL2)
	assert.Equal(t, -1, idx)
}

func TestTwoMeans(t *testing.T) {
	// Bisection interleaves the two true clusters.
	vecs := [][]float32{
		{0, 0}, {10, 10}, {0, 1},
		{10, 11}, {1, 0}, {11, 10},
	}
	assign := []int{0, 0, 0, 1, 1, 1}

	rounds := TwoMeans(vecs, assign, distance.SquaredL2, 0)
	require.Positive(t, rounds)

	assert.Equal(t, assign[0], assign[2])
	assert.Equal(t, assign[0], assign[4])
	assert.Equal(t, assign[1], assign[3])
	assert.Equal(t, assign[1], assign[5])
	assert.NotEqual(t, assign[0], assign[1])
}

func TestTwoMeans_IdenticalVectorsDoNotMove(t *testing.T) {
	vecs := [][]float32{{1, 1}, {1, 1}, {1, 1}}
	assign := []int{0, 1, 1}

	rounds := TwoMeans(vecs, assign, distance.SquaredL2, 10)
	assert.Equal(t, 0, rounds)
	assert.Equal(t, []int{0, 1, 1}, assign)
}

func TestTwoMeans_NeverEmptiesASide(t *testing.T) {
	// Side 1 holds a single far outlier that would otherwise be pulled over.
	vecs := [][]float32{{0, 0}, {0, 1}, {1, 0}, {0.5, 0.5}}
	assign := []int{0, 0, 0, 1}

	TwoMeans(vecs, assign, distance.Angular, 3)

	var counts [2]int
	for _, a := range assign {
		counts[a]++
	}
	assert.Positive(t, counts[0])
	assert.Positive(t, counts[1])
}
