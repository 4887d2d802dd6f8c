// Package sources holds the upstream source adapters and the batch
// processing helper they share.
package sources

import (
	"context"
	"sync"
	"time"
)

// DefaultBatchSize is the number of records processed concurrently
// within one page.
const DefaultBatchSize = 10

// ProcessBatches runs fn over items in fixed-size concurrent batches.
// All tasks in a batch start together and the batch joins when every
// task has settled; a failure in one task never cancels its siblings.
// Each task's error is recorded independently and the full list is
// returned in item order (nil entries for successes).
//
// Callers scan the result for a rate-limit outcome after each page and
// unwind to their checkpoint-save logic themselves; that signal must
// stop the outer pagination, not just the one task.
func ProcessBatches[T any](ctx context.Context, items []T, size int, pause time.Duration, fn func(context.Context, T) error) []error {
	if size <= 0 {
		size = DefaultBatchSize
	}

	errs := make([]error, len(items))
	for start := 0; start < len(items); start += size {
		if ctx.Err() != nil {
			for i := start; i < len(items); i++ {
				errs[i] = ctx.Err()
			}
			return errs
		}

		end := start + size
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = fn(ctx, items[i])
			}(i)
		}
		wg.Wait()

		if pause > 0 && end < len(items) {
			select {
			case <-ctx.Done():
			case <-time.After(pause):
			}
		}
	}
	return errs
}

// FirstError returns the first non-nil error in errs, or nil.
func FirstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// CountErrors returns the number of non-nil errors in errs.
func CountErrors(errs []error) int {
	n := 0
	for _, err := range errs {
		if err != nil {
			n++
		}
	}
	return n
}
