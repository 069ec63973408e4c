package distance

import (
	"fmt"
	"math"
	"strings"
)

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	// MetricL2 is the squared Euclidean distance.
	MetricL2 Metric = iota
	// MetricAngular is the angle between two vectors in radians.
	MetricAngular
)

func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "L2"
	case MetricAngular:
		return "Angular"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// ParseMetric converts a metric name ("l2", "angular") into a Metric.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l2", "euclidean", "squared_l2":
		return MetricL2, nil
	case "angular", "cosine", "arccos":
		return MetricAngular, nil
	default:
		return 0, fmt.Errorf("unknown metric %q", s)
	}
}

// Func is a function type for distance calculation.
// Implementations assume len(a) == len(b).
type Func func(a, b []float32) float32

// Dot calculates the dot product of two vectors.
func Dot(a, b []float32) float32 {
	return dot(a, b)
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
func SquaredL2(a, b []float32) float32 {
	return squaredL2(a, b)
}

// Angular returns arccos(a·b / (|a||b|)) in radians.
//
// The cosine is clamped to [-1, 1] so rounding noise never produces NaN.
// If either vector has zero norm the vectors are treated as orthogonal.
func Angular(a, b []float32) float32 {
	ab := dot(a, b)
	aa := dot(a, a)
	bb := dot(b, b)
	if aa == 0 || bb == 0 {
		return math.Pi / 2
	}
	cos := float64(ab) / (math.Sqrt(float64(aa)) * math.Sqrt(float64(bb)))
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return float32(math.Acos(cos))
}

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricL2:
		return SquaredL2, nil
	case MetricAngular:
		return Angular, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}
