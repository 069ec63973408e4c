package campus

import (
	"errors"
	"fmt"

	"github.com/hupe1980/campus/internal/engine"
	"github.com/hupe1980/campus/internal/resource"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrNotFound is returned when a search yields no result.
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned when an operation is attempted on a closed index.
	ErrClosed = errors.New("index closed")

	// ErrStructural reports a broken graph invariant found by CheckInvariants.
	// It indicates a defect, never a transient condition.
	ErrStructural = engine.ErrStructural

	// ErrMemoryLimitExceeded is returned by InsertBatch when the batch does
	// not fit into the configured batch memory limit.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrInvalidDimension indicates an invalid configured dimension.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidDimension struct {
	Dimension int
	cause     error
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

func (e *ErrInvalidDimension) Unwrap() error { return e.cause }

// ErrInvalidDistanceType indicates an unsupported distance metric name.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidDistanceType struct {
	DistanceType string
	cause        error
}

func (e *ErrInvalidDistanceType) Error() string {
	return fmt.Sprintf("invalid distance type: %q", e.DistanceType)
}

func (e *ErrInvalidDistanceType) Unwrap() error { return e.cause }
