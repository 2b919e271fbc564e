package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, mode Mode, opts ...Option) *Pool {
	t.Helper()
	opts = append([]Option{WithDiagnostics(NoopDiagnostics())}, opts...)
	p, err := New(mode, opts...)
	require.NoError(t, err)
	require.NoError(t, p.Start())
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestPool_FixedRunsSubmittedTasks(t *testing.T) {
	p := newTestPool(t, Fixed, WithInitWorkers(3))

	var n atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		err := p.Submit(context.Background(), func(context.Context) {
			defer wg.Done()
			n.Add(1)
		})
		require.NoError(t, err)
	}
	wg.Wait()

	require.Equal(t, int64(50), n.Load())
	require.Equal(t, int64(3), p.CurrentWorkers())
}

func TestPool_SubmitRejectedBeforeStart(t *testing.T) {
	p, err := New(Fixed, WithDiagnostics(NoopDiagnostics()))
	require.NoError(t, err)

	err = p.Submit(context.Background(), func(context.Context) {})
	require.ErrorIs(t, err, ErrNotRunning)
}

func TestPool_SubmitRejectedAfterClose(t *testing.T) {
	p, err := New(Fixed, WithDiagnostics(NoopDiagnostics()))
	require.NoError(t, err)
	require.NoError(t, p.Start())
	require.NoError(t, p.Close())

	err = p.Submit(context.Background(), func(context.Context) {})
	require.ErrorIs(t, err, ErrNotRunning)
}

func TestPool_SettersIgnoredAfterStart(t *testing.T) {
	p, err := New(Cached, WithDiagnostics(NoopDiagnostics()))
	require.NoError(t, err)
	require.NoError(t, p.Start())
	t.Cleanup(func() { _ = p.Close() })

	p.SetMaxWorkers(1000)
	require.NotEqual(t, 1000, p.cfg.MaxWorkers, "setter after Start must be ignored")
}

func TestSubmit2_ResolvesFutureWithResult(t *testing.T) {
	p := newTestPool(t, Fixed)

	fut, err := Submit2(context.Background(), p, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)

	v, err := fut.Get()
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestSubmit2_RecoversPanic(t *testing.T) {
	p := newTestPool(t, Fixed)

	fut, err := Submit2(context.Background(), p, func(context.Context) (int, error) {
		panic("boom")
	})
	require.NoError(t, err)

	_, err = fut.Get()
	require.ErrorIs(t, err, ErrTaskPanic)
}

func TestFuture_GetContext_CancelsIndependentlyOfTask(t *testing.T) {
	p := newTestPool(t, Fixed, WithInitWorkers(1))

	block := make(chan struct{})
	_, err := Submit2(context.Background(), p, func(context.Context) (int, error) {
		<-block
		return 1, nil
	})
	require.NoError(t, err)

	fut, err := Submit2(context.Background(), p, func(context.Context) (int, error) {
		return 2, nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = fut.GetContext(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(block)
}

func TestPool_CachedGrowsUnderPressureAndReportsIdle(t *testing.T) {
	p := newTestPool(t, Cached, WithInitWorkers(1), WithMaxWorkers(4), WithIdleTimeout(time.Second))

	block := make(chan struct{})
	for i := 0; i < 4; i++ {
		err := p.Submit(context.Background(), func(context.Context) { <-block })
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return p.CurrentWorkers() > 1
	}, time.Second, 10*time.Millisecond, "CACHED must spawn beyond InitWorkers under pressure")

	close(block)
}

func TestPool_ActiveDistributesAcrossWorkers(t *testing.T) {
	p := newTestPool(t, Active, WithInitWorkers(4))

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		err := p.Submit(context.Background(), func(context.Context) {
			defer wg.Done()
			time.Sleep(time.Millisecond)
		})
		require.NoError(t, err)
	}
	wg.Wait()

	require.Equal(t, int64(4), p.CurrentWorkers())
	for id, n := range p.eng.(*activeEngine).executedByWorker() {
		require.Greater(t, n, int64(0), "worker %d executed no tasks", id)
	}
}
