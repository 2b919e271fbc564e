package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/archwright/enginepool/internal/enginecore"
)

// idlePollInterval amortizes the idle-timeout check across idle waits
// without a dedicated timer goroutine, per spec.md section 4.6 rationale.
const idlePollInterval = time.Second

// cachedEngine extends the FIXED behaviour with elastic sizing: beyond
// initWorkers, extra workers are spawned under submission pressure and
// self-terminate after sitting idle past idleTimeout. cfg is read once,
// at start(), same as fixedEngine.
type cachedEngine struct {
	cfg *config

	queue *enginecore.BoundedTaskQueue
	state enginecore.AtomicState

	initWorkers int
	maxWorkers  int
	idleTimeout time.Duration

	currentWorkers atomic.Int64
	idleWorkers    atomic.Int64

	// spawnMu serializes the submit-side spawn predicate so currentWorkers
	// never overshoots maxWorkers, per spec.md section 9's tightened
	// resolution of the non-atomic three-counter race.
	spawnMu sync.Mutex

	wg sync.WaitGroup
}

func newCachedEngine(cfg *config) *cachedEngine {
	return &cachedEngine{cfg: cfg}
}

func (e *cachedEngine) start() {
	e.initWorkers = e.cfg.InitWorkers
	e.maxWorkers = e.cfg.MaxWorkers
	e.idleTimeout = e.cfg.IdleTimeout
	e.queue = enginecore.NewBoundedTaskQueue(e.cfg.TaskCapacity)

	e.currentWorkers.Store(int64(e.initWorkers))
	e.idleWorkers.Store(int64(e.initWorkers))
	e.cfg.Metrics.Gauge(metricCurrentWorkers).Set(int64(e.initWorkers))
	e.cfg.Metrics.Gauge(metricIdleWorkers).Set(int64(e.initWorkers))

	e.wg.Add(e.initWorkers)
	e.state.Store(enginecore.Running)
	for i := 0; i < e.initWorkers; i++ {
		w := enginecore.NewWorker(func(id uint64) { e.loop(id, true) })
		w.Start()
	}
}

// loop runs a worker's service loop. core workers (the first initWorkers)
// never self-terminate on idle; extra workers may.
func (e *cachedEngine) loop(_ uint64, core bool) {
	defer e.wg.Done()

	lastActive := time.Now()

	for {
		task, outcome := e.queue.PopWithTimeout(idlePollInterval, &e.state)

		switch outcome {
		case enginecore.Got:
			e.beginTask()
			runTask(task, e.cfg.Metrics)
			e.endTask()
			lastActive = time.Now()

		case enginecore.Empty:
			// Exiting observed with nothing left to drain.
			e.retire()
			return

		case enginecore.TimedOut:
			if !core && e.currentWorkers.Load() > int64(e.initWorkers) && time.Since(lastActive) > e.idleTimeout {
				e.retire()
				return
			}
		}
	}
}

func (e *cachedEngine) beginTask() {
	e.idleWorkers.Add(-1)
	e.cfg.Metrics.Gauge(metricIdleWorkers).Add(-1)
}

func (e *cachedEngine) endTask() {
	e.idleWorkers.Add(1)
	e.cfg.Metrics.Gauge(metricIdleWorkers).Add(1)
}

// retire removes this worker from the population. loop calls it right
// before each of its two returns (shutdown drained, idle timeout), and a
// worker goroutine returns only once, so current_workers is decremented
// exactly once per worker regardless of which branch triggered the exit.
func (e *cachedEngine) retire() {
	e.currentWorkers.Add(-1)
	e.idleWorkers.Add(-1)
	e.cfg.Metrics.Gauge(metricCurrentWorkers).Add(-1)
	e.cfg.Metrics.Gauge(metricIdleWorkers).Add(-1)
	e.cfg.Metrics.Counter(metricWorkersRetired).Add(1)
}

func (e *cachedEngine) submit(work enginecore.Task) error {
	if e.state.Load() != enginecore.Running {
		e.cfg.Diagnostics.Printf("engine: submit rejected, pool is not running")
		return ErrNotRunning
	}

	if !e.queue.Push(work, submitWait) {
		e.cfg.Diagnostics.Printf("engine: task queue is full, submission failed")
		return ErrQueueFull
	}
	e.cfg.Metrics.Counter(metricTasksSubmitted).Add(1)

	e.maybeSpawn()
	return nil
}

// maybeSpawn implements the CACHED elasticity predicate: if pending work
// exceeds idle capacity and there is room under maxWorkers, spawn one
// worker. The whole read-predicate-create sequence runs under spawnMu so
// concurrent submitters cannot jointly overshoot maxWorkers.
func (e *cachedEngine) maybeSpawn() {
	e.spawnMu.Lock()
	defer e.spawnMu.Unlock()

	pending := int64(e.queue.Len())
	idle := e.idleWorkers.Load()
	current := e.currentWorkers.Load()

	if pending > idle && current < int64(e.maxWorkers) {
		e.currentWorkers.Add(1)
		e.idleWorkers.Add(1)
		e.cfg.Metrics.Gauge(metricCurrentWorkers).Add(1)
		e.cfg.Metrics.Gauge(metricIdleWorkers).Add(1)
		e.cfg.Metrics.Counter(metricWorkersSpawned).Add(1)

		e.wg.Add(1)
		w := enginecore.NewWorker(func(id uint64) { e.loop(id, false) })
		w.Start()
	}
}

func (e *cachedEngine) close() {
	e.state.Store(enginecore.Exiting)
	e.queue.BroadcastShutdown()
	e.wg.Wait()
}

func (e *cachedEngine) currentWorkerCount() int64 { return e.currentWorkers.Load() }
func (e *cachedEngine) idleWorkerCount() int64    { return e.idleWorkers.Load() }
func (e *cachedEngine) pendingTaskCount() int64    { return int64(e.queue.Len()) }
