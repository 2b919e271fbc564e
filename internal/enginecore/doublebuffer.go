package enginecore

import (
	"sync/atomic"

	"github.com/archwright/enginepool/internal/spin"
)

// SwapOutcome reports what TrySwap did.
type SwapOutcome int

const (
	// HasWork means the private side still has unconsumed items; no swap.
	HasWork SwapOutcome = iota
	// EmptyBoth means both sides were empty; no swap.
	EmptyBoth
	// Swapped means the roles were exchanged and private now holds what
	// was public.
	Swapped
)

// DoubleBufferedWorkerQueue is a per-worker pair of queues used by the
// ACTIVE engine. Producers (any submitter) append only to the public
// side; the owning worker consumes only from the private side. A swap
// exchanges the roles of the two sides along with their counters.
//
// The two spin.Mutexes are always acquired public-then-private, on every
// code path (Give and TrySwap), to preclude deadlock.
type DoubleBufferedWorkerQueue struct {
	publicLock  spin.Mutex
	privateLock spin.Mutex

	publicCount  atomic.Int64
	privateCount atomic.Int64

	bufA, bufB   []Task
	public       *[]Task // points at bufA or bufB
	private      *[]Task // points at the other
}

// NewDoubleBufferedWorkerQueue constructs an empty queue.
func NewDoubleBufferedWorkerQueue() *DoubleBufferedWorkerQueue {
	q := &DoubleBufferedWorkerQueue{}
	q.public = &q.bufA
	q.private = &q.bufB
	return q
}

// Give appends work to the public side. It is the only operation any
// goroutine other than the owner may perform on this queue.
func (q *DoubleBufferedWorkerQueue) Give(task Task) {
	q.publicLock.Lock()
	*q.public = append(*q.public, task)
	q.publicLock.Unlock()
	q.publicCount.Add(1)
}

// PublicLoad returns the public side's length without locking — a
// conservative (may lag) load estimate used by the dispatcher to pick
// the least-loaded worker.
func (q *DoubleBufferedWorkerQueue) PublicLoad() int64 {
	return q.publicCount.Load()
}

// TrySwap is invoked by the owning worker only.
func (q *DoubleBufferedWorkerQueue) TrySwap() SwapOutcome {
	if q.privateCount.Load() > 0 {
		return HasWork
	}
	if q.publicCount.Load() == 0 {
		return EmptyBoth
	}

	q.publicLock.Lock()
	defer q.publicLock.Unlock()
	q.privateLock.Lock()
	defer q.privateLock.Unlock()

	q.public, q.private = q.private, q.public

	pubLen := int64(len(*q.public))
	privLen := int64(len(*q.private))
	q.publicCount.Store(pubLen)
	q.privateCount.Store(privLen)

	return Swapped
}

// ConsumePrivate drains and executes every item on the private side in
// FIFO order, then resets the private count to zero. Because a producer
// never touches the private side, this lock is uncontended except
// during the momentary swap. It returns the number of items executed.
func (q *DoubleBufferedWorkerQueue) ConsumePrivate() int {
	q.privateLock.Lock()
	items := *q.private
	*q.private = (*q.private)[:0]
	q.privateLock.Unlock()

	for _, t := range items {
		t()
	}

	q.privateCount.Store(0)
	return len(items)
}

// Load reports the sum of public and private counts: the number of work
// items given to this worker and not yet executed.
func (q *DoubleBufferedWorkerQueue) Load() int64 {
	return q.publicCount.Load() + q.privateCount.Load()
}
