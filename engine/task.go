package engine

import (
	"context"
	"fmt"
)

// Task is the opaque, zero-argument-from-the-engine's-perspective work
// item the pool dispatches. The engine never inspects what a Task does;
// it only calls it and moves on. Use Submit2/SubmitErr to adapt a typed
// callable plus its result-fulfilment glue into a Task, the way the
// teacher's TaskFunc/TaskValue/TaskError adapt common function shapes.
type Task func(ctx context.Context)

// Future is a future-like result handle: it eventually yields the work
// item's outcome, a value or a failure. A Future is safe for any number
// of concurrent readers; exactly one writer (the worker executing the
// task) completes it, ever.
type Future[R any] struct {
	done chan struct{}
	val  R
	err  error
}

func newFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

// complete fulfils the future. It must be called exactly once.
func (f *Future[R]) complete(val R, err error) {
	f.val = val
	f.err = err
	close(f.done)
}

// Get blocks until the future resolves and returns its outcome.
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.val, f.err
}

// GetContext blocks until the future resolves or ctx is done, whichever
// comes first. A ctx-cancellation return does not affect the underlying
// task, which keeps running (and, if it later completes, the result is
// simply never observed through this call).
func (f *Future[R]) GetContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Done returns a channel closed once the future has resolved.
func (f *Future[R]) Done() <-chan struct{} { return f.done }

// Submit2 adapts fn into a Task and submits it to p, returning a Future
// that resolves to fn's result. A TaskPanic during execution is recovered
// and surfaces as the Future's error; it never propagates to the caller
// or to sibling tasks, per the engine's error propagation policy.
func Submit2[R any](ctx context.Context, p *Pool, fn func(context.Context) (R, error)) (*Future[R], error) {
	fut := newFuture[R]()

	task := func(taskCtx context.Context) {
		val, err := runRecovering(taskCtx, fn)
		fut.complete(val, err)
	}

	if err := p.Submit(ctx, task); err != nil {
		// NotRunning/QueueFull: the future resolves immediately to the
		// default outcome, matching the submit-side fallback contract.
		var zero R
		fut.complete(zero, err)
		return fut, err
	}
	return fut, nil
}

// SubmitErr adapts an error-only callable into a Task and submits it to
// p, returning a Future[struct{}] whose error is the callable's outcome.
func SubmitErr(ctx context.Context, p *Pool, fn func(context.Context) error) (*Future[struct{}], error) {
	return Submit2[struct{}](ctx, p, func(c context.Context) (struct{}, error) {
		return struct{}{}, fn(c)
	})
}

// runRecovering executes fn, converting a panic into a TaskPanic error
// instead of letting it escape the worker goroutine. A failing task never
// affects sibling tasks: the worker that recovers here keeps serving its
// queue afterward.
func runRecovering[R any](ctx context.Context, fn func(context.Context) (R, error)) (result R, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, rec)
		}
	}()
	return fn(ctx)
}
