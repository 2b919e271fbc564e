package engine

import (
	"context"
	"errors"

	"github.com/archwright/enginepool/internal/workerpool"
)

// errSlicePool recycles the error-accumulation scratch slice RunAll would
// otherwise allocate fresh on every call; under sustained RunAll/Map/
// ForEach throughput this keeps one steady-state slice per concurrent
// caller instead of one per call.
var errSlicePool = workerpool.NewDynamic(func() *[]error {
	s := make([]error, 0, 8)
	return &s
})

// RunAll submits every fn to p and waits for all of them to resolve,
// returning results in input order (unlike the engine's own no-ordering
// guarantee for raw Submit) alongside errors.Join of every non-nil
// per-task error. A ctx cancellation while waiting stops collection early;
// already-submitted tasks keep running against the pool regardless.
func RunAll[R any](ctx context.Context, p *Pool, fns []func(context.Context) (R, error)) ([]R, error) {
	futures := make([]*Future[R], len(fns))
	for i, fn := range fns {
		fut, err := Submit2(ctx, p, fn)
		futures[i] = fut
		if err != nil && !errors.Is(err, ErrTaskPanic) {
			// Submission itself failed (not running / queue full): the
			// future already resolved to the zero value and this error,
			// so it still participates in the aggregated Join below.
			continue
		}
	}

	results := make([]R, len(fns))

	errsPtr := errSlicePool.Get()
	errs := (*errsPtr)[:0]
	defer func() {
		*errsPtr = errs[:0]
		errSlicePool.Put(errsPtr)
	}()

	for i, fut := range futures {
		select {
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
			continue
		case <-fut.Done():
		}
		v, err := fut.Get()
		results[i] = v
		if err != nil {
			errs = append(errs, err)
		}
	}

	return results, errors.Join(errs...)
}

// ForEach applies fn to every item concurrently via p, returning
// errors.Join of every non-nil per-item error.
func ForEach[T any](ctx context.Context, p *Pool, items []T, fn func(context.Context, T) error) error {
	if len(items) == 0 {
		return nil
	}

	fns := make([]func(context.Context) (struct{}, error), len(items))
	for i, item := range items {
		item := item
		fns[i] = func(c context.Context) (struct{}, error) { return struct{}{}, fn(c, item) }
	}

	_, err := RunAll(ctx, p, fns)
	return err
}

// Map applies fn to every item concurrently via p and returns the results
// in input order alongside errors.Join of every non-nil per-item error.
func Map[T, R any](ctx context.Context, p *Pool, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	fns := make([]func(context.Context) (R, error), len(items))
	for i, item := range items {
		item := item
		fns[i] = func(c context.Context) (R, error) { return fn(c, item) }
	}

	return RunAll(ctx, p, fns)
}
