package distance

import (
	"sync"

	"golang.org/x/sys/cpu"
	"gonum.org/v1/gonum/blas/gonum"
)

// blasMinDim is the shortest vector handed to BLAS. Below it the plain loops
// win because the call and bounds checks dominate.
const blasMinDim = 32

var (
	blasEngine  = gonum.Implementation{}
	blasEnabled = cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD
)

// diffWorkspace holds scratch buffers for the BLAS squared L2 kernel.
var diffWorkspace = sync.Pool{
	New: func() any {
		s := make([]float32, 256)
		return &s
	},
}

func dot(a, b []float32) float32 {
	if blasEnabled && len(a) >= blasMinDim {
		return blasEngine.Sdot(len(a), a, 1, b, 1)
	}
	return dotGo(a, b)
}

func squaredL2(a, b []float32) float32 {
	if blasEnabled && len(a) >= blasMinDim {
		return squaredL2BLAS(a, b)
	}
	return squaredL2Go(a, b)
}

func dotGo(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func squaredL2Go(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// squaredL2BLAS computes (a-b)·(a-b) with Saxpy + Sdot on a pooled buffer.
func squaredL2BLAS(a, b []float32) float32 {
	n := len(a)
	bufPtr := diffWorkspace.Get().(*[]float32)
	defer diffWorkspace.Put(bufPtr)

	if cap(*bufPtr) < n {
		*bufPtr = make([]float32, n)
	}
	diff := (*bufPtr)[:n]

	copy(diff, a)
	blasEngine.Saxpy(n, -1, b, 1, diff, 1)
	return blasEngine.Sdot(n, diff, 1, diff, 1)
}
