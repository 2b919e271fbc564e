package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/archwright/enginepool/internal/enginecore"
)

// activeWorkerCapacity is the per-worker public-queue ceiling used by
// submit's "already full" check in spec.md section 4.7. ACTIVE has no
// shared bounded queue, so this plays the role the original C++
// ThreadWithDQ::DEFAULT_TASK_MAX_COUNT constant plays there: a large
// safety valve, not a tuning knob most callers ever hit.
const activeWorkerCapacity = 1_000_000

type activeWorkerSlot struct {
	worker *enginecore.Worker
	dq     *enginecore.DoubleBufferedWorkerQueue
}

// activeEngine gives each worker its own DoubleBufferedWorkerQueue. There
// is no shared central queue; a single engine-level mutex/condvar exists
// solely for parking workers that found their own queue empty.
type activeEngine struct {
	cfg *config

	state enginecore.AtomicState

	initWorkers    int
	currentWorkers atomic.Int64

	workers []*activeWorkerSlot

	// executed counts tasks run by each worker, keyed by its process-wide
	// id, purely for observability (the load-balance test reads this via
	// executedByWorker); dispatch never consults it, per the engine's
	// worker identification rule. Populated once in start() before any
	// worker goroutine runs, so later concurrent access only touches the
	// *atomic.Int64 values, never the map itself.
	executed map[uint64]*atomic.Int64

	mu       sync.Mutex
	notEmpty *sync.Cond

	wg sync.WaitGroup
}

func newActiveEngine(cfg *config) *activeEngine {
	e := &activeEngine{cfg: cfg}
	e.notEmpty = sync.NewCond(&e.mu)
	return e
}

func (e *activeEngine) start() {
	e.initWorkers = e.cfg.InitWorkers

	e.workers = make([]*activeWorkerSlot, 0, e.initWorkers)
	e.executed = make(map[uint64]*atomic.Int64, e.initWorkers)
	for i := 0; i < e.initWorkers; i++ {
		slot := &activeWorkerSlot{dq: enginecore.NewDoubleBufferedWorkerQueue()}
		slot.worker = enginecore.NewWorker(func(id uint64) { e.loop(slot, id) })
		e.executed[slot.worker.ID()] = new(atomic.Int64)
		e.workers = append(e.workers, slot)
	}

	e.currentWorkers.Store(int64(len(e.workers)))
	e.cfg.Metrics.Gauge(metricCurrentWorkers).Set(int64(len(e.workers)))

	e.wg.Add(len(e.workers))
	e.state.Store(enginecore.Running)
	for _, slot := range e.workers {
		slot.worker.Start()
	}
}

func (e *activeEngine) loop(slot *activeWorkerSlot, id uint64) {
	defer e.wg.Done()

	for {
		switch slot.dq.TrySwap() {
		case enginecore.HasWork, enginecore.Swapped:
			e.consume(slot, id)

		case enginecore.EmptyBoth:
			e.mu.Lock()
			for slot.dq.PublicLoad() == 0 && e.state.Load() != enginecore.Exiting {
				e.notEmpty.Wait()
			}
			exiting := e.state.Load() == enginecore.Exiting && slot.dq.PublicLoad() == 0
			e.mu.Unlock()

			if exiting {
				e.retire()
				return
			}
		}
	}
}

func (e *activeEngine) consume(slot *activeWorkerSlot, id uint64) {
	start := time.Now()
	n := slot.dq.ConsumePrivate()
	if n == 0 {
		return
	}
	// Batch timing is recorded as a per-task average; ACTIVE's
	// double-buffer trades per-task timestamps for lock-free throughput,
	// so this is an approximation, not an exact per-task measurement.
	perTask := time.Since(start).Seconds() / float64(n)
	e.cfg.Metrics.Histogram(metricTaskDuration).Record(perTask)
	e.cfg.Metrics.Counter(metricTasksExecuted).Add(int64(n))

	// id identifies the worker for the per-worker breakdown exposed by
	// executedByWorker; it plays no part in the count itself.
	e.executed[id].Add(int64(n))
}

// executedByWorker snapshots the per-worker execution counts recorded
// since start(), keyed by worker id. For observability and testing only.
func (e *activeEngine) executedByWorker() map[uint64]int64 {
	out := make(map[uint64]int64, len(e.executed))
	for id, c := range e.executed {
		out[id] = c.Load()
	}
	return out
}

func (e *activeEngine) retire() {
	e.currentWorkers.Add(-1)
	e.cfg.Metrics.Gauge(metricCurrentWorkers).Add(-1)
	e.cfg.Metrics.Counter(metricWorkersRetired).Add(1)
}

func (e *activeEngine) submit(work enginecore.Task) error {
	if e.state.Load() != enginecore.Running {
		e.cfg.Diagnostics.Printf("engine: submit rejected, pool is not running")
		return ErrNotRunning
	}

	if e.tryGiveToLeastLoaded(work) {
		e.wakeAll()
		return nil
	}

	time.Sleep(submitWait)
	e.cfg.Diagnostics.Printf("engine: active pool busy, retrying after 1s backoff")

	if e.tryGiveToLeastLoaded(work) {
		e.wakeAll()
		return nil
	}

	e.cfg.Diagnostics.Printf("engine: task queue is full, submission failed")
	return ErrQueueFull
}

// tryGiveToLeastLoaded scans every worker's PublicLoad (atomic reads, no
// locking), picks the minimum (ties broken by lowest index, which tracks
// creation order and thus lowest worker id), and gives it the task unless
// that worker is already at the per-worker cap.
func (e *activeEngine) tryGiveToLeastLoaded(work enginecore.Task) bool {
	least := e.workers[0]
	minLoad := least.dq.PublicLoad()

	for _, slot := range e.workers[1:] {
		if l := slot.dq.PublicLoad(); l < minLoad {
			least, minLoad = slot, l
		}
	}

	if minLoad >= activeWorkerCapacity {
		return false
	}

	least.dq.Give(work)
	e.cfg.Metrics.Counter(metricTasksSubmitted).Add(1)
	return true
}

func (e *activeEngine) wakeAll() {
	e.mu.Lock()
	e.notEmpty.Broadcast()
	e.mu.Unlock()
}

func (e *activeEngine) close() {
	e.state.Store(enginecore.Exiting)
	e.wakeAll()
	e.wg.Wait()
}

func (e *activeEngine) currentWorkerCount() int64 { return e.currentWorkers.Load() }

func (e *activeEngine) idleWorkerCount() int64 {
	var idle int64
	for _, s := range e.workers {
		if s.dq.Load() == 0 {
			idle++
		}
	}
	return idle
}

func (e *activeEngine) pendingTaskCount() int64 {
	var sum int64
	for _, s := range e.workers {
		sum += s.dq.Load()
	}
	return sum
}
