package queryfarmer

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency is used when TranslateBatch gets a non-positive limit.
const DefaultBatchConcurrency = 4

// BatchResult is the outcome of one request of a batch.
type BatchResult struct {
	Result *TranslationResult
	Err    error
}

// TranslateBatch translates reqs with at most concurrency requests in flight.
// Results are returned in input order; a failed item does not stop the others.
// The returned error is non-nil only if ctx ended before all items started.
func (t *Translator) TranslateBatch(ctx context.Context, reqs []Request, concurrency int) ([]BatchResult, error) {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	results := make([]BatchResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, req := range reqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			result, err := t.Translate(gctx, req)
			results[i] = BatchResult{Result: result, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		for i := range results {
			if results[i].Result == nil && results[i].Err == nil {
				results[i].Err = err
			}
		}
		return results, err
	}
	return results, nil
}
