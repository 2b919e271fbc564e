package engine

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newFixedTestEngine(t *testing.T, mutate func(*config)) *fixedEngine {
	t.Helper()
	cfg := defaultConfig(Fixed)
	cfg.Diagnostics = NoopDiagnostics()
	if mutate != nil {
		mutate(&cfg)
	}
	e := newFixedEngine(&cfg)
	e.start()
	t.Cleanup(e.close)
	return e
}

func TestFixedEngine_ExecutesAllSubmittedWork(t *testing.T) {
	e := newFixedTestEngine(t, func(c *config) { c.InitWorkers = 3 })

	var n atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		require.NoError(t, e.submit(func() {
			defer wg.Done()
			n.Add(1)
		}))
	}
	wg.Wait()

	require.Equal(t, int64(100), n.Load())
	require.Equal(t, int64(3), e.currentWorkerCount())
}

func TestFixedEngine_PopulationNeverChanges(t *testing.T) {
	e := newFixedTestEngine(t, func(c *config) { c.InitWorkers = 5 })

	block := make(chan struct{})
	for i := 0; i < 5; i++ {
		require.NoError(t, e.submit(func() { <-block }))
	}

	require.Equal(t, int64(5), e.currentWorkerCount())
	close(block)
}

func TestFixedEngine_SubmitFailsWhenNotRunning(t *testing.T) {
	cfg := defaultConfig(Fixed)
	cfg.Diagnostics = NoopDiagnostics()
	e := newFixedEngine(&cfg)
	// never started: state stays Init

	err := e.submit(func() {})
	require.ErrorIs(t, err, ErrNotRunning)
}

func TestFixedEngine_SubmitFailsWhenQueueFull(t *testing.T) {
	e := newFixedTestEngine(t, func(c *config) {
		c.InitWorkers = 1
		c.TaskCapacity = 1
	})

	block := make(chan struct{})
	require.NoError(t, e.submit(func() { <-block })) // occupies the worker
	require.NoError(t, e.submit(func() {}))           // fills the one queue slot

	errCh := make(chan error, 1)
	go func() { errCh <- e.submit(func() {}) }()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrQueueFull)
	case <-time.After(3 * time.Second):
		t.Fatal("submit did not return within the bounded wait")
	}

	close(block)
}

func TestFixedEngine_CloseDrainsThenStops(t *testing.T) {
	cfg := defaultConfig(Fixed)
	cfg.Diagnostics = NoopDiagnostics()
	cfg.InitWorkers = 2
	e := newFixedEngine(&cfg)
	e.start()

	var n atomic.Int64
	for i := 0; i < 10; i++ {
		require.NoError(t, e.submit(func() { n.Add(1) }))
	}

	e.close()
	require.Equal(t, int64(10), n.Load())
	require.Equal(t, int64(0), e.currentWorkerCount())
}
