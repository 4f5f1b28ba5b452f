// Package batch runs independent jobs over a bounded worker pool.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Func processes one input.
type Func[In, Out any] func(ctx context.Context, in In) (Out, error)

// Run applies fn to every input and returns the outputs in input order.
// The first failing job cancels the others and its error is returned.
func Run[In, Out any](ctx context.Context, inputs []In, fn Func[In, Out], opts ...Option) ([]Out, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]Out, len(inputs))
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	workers := cfg.workers
	if workers > len(inputs) {
		workers = len(inputs)
	}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					fail(fmt.Errorf("panic in batch job: %v", r))
				}
			}()
			for i := range jobs {
				out, err := execute(ctx, cfg, fn, inputs[i])
				if err != nil {
					fail(fmt.Errorf("job %d: %w", i, err))
					continue
				}
				results[i] = out
			}
		}()
	}

feed:
	for i := range inputs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil && len(inputs) > 0 {
		return nil, err
	}
	return results, nil
}

// Do runs a single call with the retry policy of opts. Worker options are
// ignored.
func Do[Out any](ctx context.Context, fn func(ctx context.Context) (Out, error), opts ...Option) (Out, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return execute(ctx, cfg, func(ctx context.Context, _ struct{}) (Out, error) {
		return fn(ctx)
	}, struct{}{})
}

// execute runs fn with the configured retry policy.
func execute[In, Out any](ctx context.Context, cfg *config, fn Func[In, Out], in In) (Out, error) {
	var (
		out     Out
		lastErr error
	)
	for attempt := 0; attempt <= cfg.maxRetries; attempt++ {
		if attempt > 0 && cfg.backoff != nil {
			select {
			case <-time.After(cfg.backoff(attempt)):
			case <-ctx.Done():
				return out, ctx.Err()
			}
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := fn(ctx, in)
		if err == nil {
			return res, nil
		}
		lastErr = err
	}
	return out, lastErr
}
