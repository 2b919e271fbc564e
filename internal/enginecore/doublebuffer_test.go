package enginecore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDoubleBufferedWorkerQueue_GiveThenSwapThenConsume(t *testing.T) {
	q := NewDoubleBufferedWorkerQueue()

	require.Equal(t, EmptyBoth, q.TrySwap())

	var ran []int
	for i := 0; i < 3; i++ {
		i := i
		q.Give(func() { ran = append(ran, i) })
	}
	require.Equal(t, int64(3), q.PublicLoad())

	require.Equal(t, Swapped, q.TrySwap())
	require.Equal(t, 3, q.ConsumePrivate())
	require.Equal(t, []int{0, 1, 2}, ran)
	require.Equal(t, int64(0), q.Load())
}

func TestDoubleBufferedWorkerQueue_HasWorkWhenPrivateNotDrained(t *testing.T) {
	q := NewDoubleBufferedWorkerQueue()
	q.Give(func() {})
	require.Equal(t, Swapped, q.TrySwap())

	// Private now holds one undrained item; TrySwap must not swap again.
	require.Equal(t, HasWork, q.TrySwap())
}

func TestDoubleBufferedWorkerQueue_RoundTripsReuseBothBuffers(t *testing.T) {
	q := NewDoubleBufferedWorkerQueue()

	for round := 0; round < 5; round++ {
		q.Give(func() {})
		require.Equal(t, Swapped, q.TrySwap())
		require.Equal(t, 1, q.ConsumePrivate())
	}
	require.Equal(t, int64(0), q.Load())
}

func TestDoubleBufferedWorkerQueue_ConcurrentGiveIsSafe(t *testing.T) {
	q := NewDoubleBufferedWorkerQueue()

	var wg sync.WaitGroup
	const givers = 20
	const perGiver = 50

	wg.Add(givers)
	for i := 0; i < givers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGiver; j++ {
				q.Give(func() {})
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(givers*perGiver), q.Load())

	var executed int
	for q.Load() > 0 {
		q.TrySwap()
		executed += q.ConsumePrivate()
	}
	require.Equal(t, givers*perGiver, executed)
}
