package campus

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Item is a vector to insert together with its id.
type Item struct {
	ID     int64
	Vector []float32
}

// BatchInsertResult reports the outcome of InsertBatch.
type BatchInsertResult struct {
	Inserted int
	Errors   []error // per item, nil for successful insertions
}

// Failed returns the number of items that were not inserted.
func (r BatchInsertResult) Failed() int {
	n := 0
	for _, err := range r.Errors {
		if err != nil {
			n++
		}
	}
	return n
}

// Err returns the first item error, or nil.
func (r BatchInsertResult) Err() error {
	for _, err := range r.Errors {
		if err != nil {
			return err
		}
	}
	return nil
}

// InsertBatch inserts items concurrently. Admission is bounded by
// WithInsertConcurrency and throttled by WithInsertRateLimit. Items with a
// wrong dimension fail individually; when ctx is cancelled the items not
// yet admitted fail with the context error.
func (x *Index) InsertBatch(ctx context.Context, items []Item) BatchInsertResult {
	start := time.Now()
	result := BatchInsertResult{Errors: make([]error, len(items))}

	if x.closed.Load() {
		fill(result.Errors, ErrClosed)
		x.finishBatch(ctx, result, start)
		return result
	}

	reserved := int64(len(items)) * int64(x.width.Bytes(x.cfg.Dimension))
	if err := x.admission.AcquireMemory(reserved); err != nil {
		fill(result.Errors, err)
		x.finishBatch(ctx, result, start)
		return result
	}
	defer x.admission.ReleaseMemory(reserved)

	// Item failures are recorded per slot, so the group itself never fails.
	var g errgroup.Group
	for i := range items {
		if err := x.admission.Acquire(ctx); err != nil {
			fill(result.Errors[i:], err)
			break
		}
		g.Go(func() error {
			defer x.admission.Release()
			result.Errors[i] = x.Insert(ctx, items[i].Vector, items[i].ID)
			return nil
		})
	}
	_ = g.Wait()

	result.Inserted = len(items) - result.Failed()
	x.finishBatch(ctx, result, start)
	return result
}

func (x *Index) finishBatch(ctx context.Context, result BatchInsertResult, start time.Time) {
	failed := result.Failed()
	x.metrics.RecordBatchInsert(len(result.Errors), failed, time.Since(start))
	x.logger.LogBatchInsert(ctx, len(result.Errors), failed)
}

func fill(errs []error, err error) {
	for i := range errs {
		errs[i] = err
	}
}
