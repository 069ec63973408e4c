// Package precision handles the element byte width of stored vectors.
//
// Width 4 keeps float32 values untouched. Width 2 stores values at IEEE-754
// binary16 precision: every component is rounded through float16 on ingest
// while all arithmetic stays in float32.
package precision

import (
	"fmt"

	"github.com/x448/float16"
)

// Width is the byte width of one vector element.
type Width int

const (
	// Float32 stores elements as 4-byte floats.
	Float32 Width = 4
	// Float16 stores elements as 2-byte half floats.
	Float16 Width = 2
)

// Parse validates a configured element size.
func Parse(size int) (Width, error) {
	switch Width(size) {
	case Float32, Float16:
		return Width(size), nil
	default:
		return 0, fmt.Errorf("element size must be 2 or 4 bytes, got %d", size)
	}
}

func (w Width) String() string {
	switch w {
	case Float32:
		return "float32"
	case Float16:
		return "float16"
	default:
		return fmt.Sprintf("Width(%d)", int(w))
	}
}

// Quantize returns a copy of v at the width's precision. The input is never
// aliased.
func (w Width) Quantize(v []float32) []float32 {
	out := make([]float32, len(v))
	if w != Float16 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = float16.Fromfloat32(x).Float32()
	}
	return out
}

// Bytes returns the resident footprint of n elements. Values of every
// width are held as float32 after rounding, so this is 4 bytes each.
func (w Width) Bytes(n int) int {
	return int(Float32) * n
}
