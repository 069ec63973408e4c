// Package resource implements admission control for bulk inserts.
//
// The Controller gates write traffic on three axes:
//
//   - Concurrency: a weighted semaphore caps the inserts executing at once,
//     which bounds optimistic-commit contention
//   - Rate: a token bucket limits the sustained insert rate
//   - Memory: vector bytes held by admitted batches (non-blocking, fail-fast)
//
// # Usage
//
//	rc := resource.NewController(resource.Config{
//	    MaxInFlight:      8,
//	    InsertsPerSecond: 50_000,
//	})
//
//	if err := rc.Acquire(ctx); err != nil {
//	    return err
//	}
//	defer rc.Release()
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
// This allows optional limiting without nil checks everywhere.
package resource
