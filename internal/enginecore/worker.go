package enginecore

// Worker is a single goroutine bound to an engine-supplied loop function
// and identified by a monotonically assigned id. Workers are detached:
// the engine does not join them, it tracks liveness via counters and
// waits on an exit signal instead.
type Worker struct {
	id   uint64
	loop func(id uint64)
}

// NewWorker constructs a Worker with the next process-wide id.
func NewWorker(loop func(id uint64)) *Worker {
	return &Worker{id: NextWorkerID(), loop: loop}
}

// ID returns the worker's monotonic id.
func (w *Worker) ID() uint64 { return w.id }

// Start spawns the worker's goroutine and returns immediately; the
// engine relinquishes ownership of it from this point on.
func (w *Worker) Start() {
	go w.loop(w.id)
}
