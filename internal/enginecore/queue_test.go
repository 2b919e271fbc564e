package enginecore

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBoundedTaskQueue_PushPopFIFO(t *testing.T) {
	q := NewBoundedTaskQueue(4)
	var state AtomicState
	state.Store(Running)

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		require.True(t, q.Push(func() { order = append(order, i) }, time.Second))
	}

	for i := 0; i < 3; i++ {
		task, ok := q.Pop(&state)
		require.True(t, ok)
		task()
	}
	require.Equal(t, []int{0, 1, 2}, order)
}

func TestBoundedTaskQueue_PushBlocksUntilCapacity(t *testing.T) {
	q := NewBoundedTaskQueue(1)
	require.True(t, q.Push(func() {}, time.Second))

	full := make(chan bool, 1)
	go func() {
		full <- q.Push(func() {}, 50*time.Millisecond)
	}()
	require.False(t, <-full, "Push must time out while the queue stays full")
}

func TestBoundedTaskQueue_PushSucceedsOnceSlotOpens(t *testing.T) {
	q := NewBoundedTaskQueue(1)
	require.True(t, q.Push(func() {}, time.Second))

	done := make(chan bool, 1)
	go func() {
		done <- q.Push(func() {}, time.Second)
	}()

	time.Sleep(20 * time.Millisecond)
	var state AtomicState
	state.Store(Running)
	_, ok := q.Pop(&state)
	require.True(t, ok)

	require.True(t, <-done)
}

func TestBoundedTaskQueue_PopReturnsFalseOnExiting(t *testing.T) {
	q := NewBoundedTaskQueue(4)
	var state AtomicState
	state.Store(Running)

	var wg sync.WaitGroup
	wg.Add(1)
	var ok bool
	go func() {
		defer wg.Done()
		_, ok = q.Pop(&state)
	}()

	time.Sleep(20 * time.Millisecond)
	state.Store(Exiting)
	q.BroadcastShutdown()
	wg.Wait()

	require.False(t, ok)
}

func TestBoundedTaskQueue_PopWithTimeout(t *testing.T) {
	q := NewBoundedTaskQueue(4)
	var state AtomicState
	state.Store(Running)

	_, outcome := q.PopWithTimeout(30*time.Millisecond, &state)
	require.Equal(t, TimedOut, outcome)

	require.True(t, q.Push(func() {}, time.Second))
	_, outcome = q.PopWithTimeout(time.Second, &state)
	require.Equal(t, Got, outcome)
}

func TestBoundedTaskQueue_Len(t *testing.T) {
	q := NewBoundedTaskQueue(4)
	require.Equal(t, 0, q.Len())
	require.True(t, q.Push(func() {}, time.Second))
	require.True(t, q.Push(func() {}, time.Second))
	require.Equal(t, 2, q.Len())
}
