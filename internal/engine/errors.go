package engine

import (
	"errors"
	"fmt"
)

// ErrStructural reports a broken structural invariant of the cluster graph.
// It indicates a defect in split or rewiring logic, never a transient race.
var ErrStructural = errors.New("structural invariant violated")

func structuralf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStructural, fmt.Sprintf(format, args...))
}
