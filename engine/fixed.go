package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/archwright/enginepool/engine/metrics"
	"github.com/archwright/enginepool/internal/enginecore"
)

// submitWait is the bounded wait submit() performs against a full queue
// before surfacing ErrQueueFull, per spec.md section 4.5/4.7.
const submitWait = time.Second

// fixedEngine is a constant worker population sharing one
// BoundedTaskQueue. Workers loop: pop (blocking until work or Exiting),
// execute outside any lock, repeat.
//
// cfg is read once, at start(), so setters called before Start take
// effect and setters called afterward have none — satisfying the
// setter-permission law without needing a separate frozen snapshot type.
type fixedEngine struct {
	cfg *config

	queue *enginecore.BoundedTaskQueue
	state enginecore.AtomicState

	initWorkers    int
	currentWorkers atomic.Int64
	idleWorkers    atomic.Int64

	wg sync.WaitGroup
}

func newFixedEngine(cfg *config) *fixedEngine {
	return &fixedEngine{cfg: cfg}
}

func (e *fixedEngine) start() {
	e.initWorkers = e.cfg.InitWorkers
	e.queue = enginecore.NewBoundedTaskQueue(e.cfg.TaskCapacity)

	e.currentWorkers.Store(int64(e.initWorkers))
	e.idleWorkers.Store(int64(e.initWorkers))
	e.cfg.Metrics.Gauge(metricCurrentWorkers).Set(int64(e.initWorkers))
	e.cfg.Metrics.Gauge(metricIdleWorkers).Set(int64(e.initWorkers))

	e.wg.Add(e.initWorkers)
	e.state.Store(enginecore.Running)
	for i := 0; i < e.initWorkers; i++ {
		w := enginecore.NewWorker(e.loop)
		w.Start()
	}
}

func (e *fixedEngine) loop(_ uint64) {
	defer e.wg.Done()

	for {
		task, ok := e.queue.Pop(&e.state)
		if !ok {
			break
		}
		e.beginTask()
		runTask(task, e.cfg.Metrics)
		e.endTask()
	}

	e.currentWorkers.Add(-1)
	e.idleWorkers.Add(-1)
	e.cfg.Metrics.Gauge(metricCurrentWorkers).Add(-1)
	e.cfg.Metrics.Gauge(metricIdleWorkers).Add(-1)
}

func (e *fixedEngine) beginTask() {
	e.idleWorkers.Add(-1)
	e.cfg.Metrics.Gauge(metricIdleWorkers).Add(-1)
}

func (e *fixedEngine) endTask() {
	e.idleWorkers.Add(1)
	e.cfg.Metrics.Gauge(metricIdleWorkers).Add(1)
}

func (e *fixedEngine) submit(work enginecore.Task) error {
	if e.state.Load() != enginecore.Running {
		e.cfg.Diagnostics.Printf("engine: submit rejected, pool is not running")
		return ErrNotRunning
	}

	if !e.queue.Push(work, submitWait) {
		e.cfg.Diagnostics.Printf("engine: task queue is full, submission failed")
		return ErrQueueFull
	}
	e.cfg.Metrics.Counter(metricTasksSubmitted).Add(1)
	return nil
}

func (e *fixedEngine) close() {
	e.state.Store(enginecore.Exiting)
	e.queue.BroadcastShutdown()
	e.wg.Wait()
}

func (e *fixedEngine) currentWorkerCount() int64 { return e.currentWorkers.Load() }
func (e *fixedEngine) idleWorkerCount() int64    { return e.idleWorkers.Load() }
func (e *fixedEngine) pendingTaskCount() int64    { return int64(e.queue.Len()) }

// runTask executes task and records its latency, outside any engine lock.
func runTask(task enginecore.Task, m metrics.Provider) {
	start := time.Now()
	task()
	m.Histogram(metricTaskDuration).Record(time.Since(start).Seconds())
	m.Counter(metricTasksExecuted).Add(1)
}
