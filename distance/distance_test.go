package distance

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 32},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Mixed", []float32{1, -1, 2}, []float32{1, 1, -2}, -4},
		{"Empty", []float32{}, []float32{}, 0},
		// Long enough to take the BLAS path when available
		{"Large", make([]float32, 1024), make([]float32, 1024), 1024},
	}

	for i := range tests[4].a {
		tests[4].a[i] = 1
		tests[4].b[i] = 1
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Dot(tt.a, tt.b), 1e-4)
		})
	}
}

func TestSquaredL2(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 27},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"Mixed", []float32{1, -1}, []float32{-1, 1}, 8},
		{"Empty", []float32{}, []float32{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SquaredL2(tt.a, tt.b), 1e-5)
		})
	}
}

func TestSquaredL2_KernelsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, dim := range []int{1, 31, 32, 128, 1000} {
		a := make([]float32, dim)
		b := make([]float32, dim)
		for i := range a {
			a[i] = rng.Float32()
			b[i] = rng.Float32()
		}
		want := squaredL2Go(a, b)
		assert.InEpsilon(t, want, squaredL2BLAS(a, b), 1e-4, "dim=%d", dim)
		assert.Equal(t, float32(0), squaredL2BLAS(a, a), "identical vectors, dim=%d", dim)
		assert.InEpsilon(t, dotGo(a, b), blasEngine.Sdot(dim, a, 1, b, 1), 1e-4)
	}
}

func TestAngular(t *testing.T) {
	assert.InDelta(t, 0, Angular([]float32{1, 0}, []float32{2, 0}), 1e-6)
	assert.InDelta(t, math.Pi/2, Angular([]float32{1, 0}, []float32{0, 3}), 1e-6)
	assert.InDelta(t, math.Pi, Angular([]float32{1, 0}, []float32{-1, 0}), 1e-6)

	t.Run("ZeroNorm", func(t *testing.T) {
		d := Angular([]float32{0, 0}, []float32{1, 1})
		assert.False(t, math.IsNaN(float64(d)))
		assert.InDelta(t, math.Pi/2, d, 1e-6)
	})

	t.Run("NeverNaN", func(t *testing.T) {
		v := []float32{0.1, 0.2, 0.3, 0.4}
		d := Angular(v, v)
		assert.False(t, math.IsNaN(float64(d)))
		assert.GreaterOrEqual(t, d, float32(0))
	})
}

func TestProvider(t *testing.T) {
	fn, err := Provider(MetricL2)
	require.NoError(t, err)
	assert.Equal(t, float32(8), fn([]float32{1, 2}, []float32{3, 4}))

	fn, err = Provider(MetricAngular)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, fn([]float32{1, 0}, []float32{0, 1}), 1e-6)

	_, err = Provider(Metric(99))
	require.Error(t, err)
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("L2")
	require.NoError(t, err)
	assert.Equal(t, MetricL2, m)

	m, err = ParseMetric(" angular ")
	require.NoError(t, err)
	assert.Equal(t, MetricAngular, m)
	assert.Equal(t, "Angular", m.String())

	_, err = ParseMetric("hamming")
	require.Error(t, err)
}

func BenchmarkSquaredL2(b *testing.B) {
	a := make([]float32, 128)
	c := make([]float32, 128)
	for i := range a {
		a[i] = float32(i)
		c[i] = float32(128 - i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SquaredL2(a, c)
	}
}
