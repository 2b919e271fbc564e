package engine

import (
	"context"
	"sync"
	"time"

	"github.com/archwright/enginepool/internal/enginecore"
)

// Pool is the public façade over one of the three scheduling engines.
// Its lifecycle has three states: Init (accepting Option-equivalent
// setters), Running (accepting Submit), and Exiting (terminal, after
// Close). A setter called outside Init is diagnosed and ignored rather
// than returning an error, matching spec.md's setter-permission law.
type Pool struct {
	mu    sync.Mutex
	cfg   config
	state enginecore.AtomicState

	eng poolEngine
}

// New constructs a Pool in the Init state for the given mode. Options run
// in order against the default configuration for mode and may abort
// construction by returning an error (distinct from the post-construction
// setters, which never fail outright).
func New(mode Mode, opts ...Option) (*Pool, error) {
	cfg := defaultConfig(mode)

	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &Pool{cfg: cfg}, nil
}

// Start transitions the Pool from Init to Running, constructing and
// launching the selected engine. Start is not idempotent; calling it
// more than once has no additional effect beyond the first call, since
// the state guard below rejects the second attempt.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.Load() != enginecore.Init {
		p.cfg.Diagnostics.Printf("engine: Start called outside Init state, ignored")
		return ErrNotRunning
	}

	switch p.cfg.Mode {
	case Cached:
		p.eng = newCachedEngine(&p.cfg)
	case Active:
		p.eng = newActiveEngine(&p.cfg)
	default:
		p.eng = newFixedEngine(&p.cfg)
	}

	p.eng.start()
	p.state.Store(enginecore.Running)
	return nil
}

// Submit adapts work into an enginecore.Task bound to ctx and hands it to
// the active engine. It returns ErrNotRunning if the pool has not been
// started or has been closed, and ErrQueueFull if backpressure exceeded
// its bounded wait (FIXED/CACHED) or single retry (ACTIVE).
func (p *Pool) Submit(ctx context.Context, work Task) error {
	if p.state.Load() != enginecore.Running {
		p.cfg.Diagnostics.Printf("engine: submit rejected, pool is not running")
		return ErrNotRunning
	}

	return p.eng.submit(func() { work(ctx) })
}

// Close transitions the Pool to Exiting, signals every worker to drain
// and stop, and blocks until the last one has exited. A second call, or a
// call before Start, returns nil without touching the engine, since the
// state guard only lets a Running pool through.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.Load() != enginecore.Running {
		return nil
	}

	p.state.Store(enginecore.Exiting)
	p.eng.close()
	return nil
}

// CurrentWorkers reports the live worker population.
func (p *Pool) CurrentWorkers() int64 {
	if p.eng == nil {
		return 0
	}
	return p.eng.currentWorkerCount()
}

// IdleWorkers reports how many live workers are not currently executing
// a task.
func (p *Pool) IdleWorkers() int64 {
	if p.eng == nil {
		return 0
	}
	return p.eng.idleWorkerCount()
}

// PendingTasks reports work submitted but not yet picked up by a worker.
// For ACTIVE it is the sum of every worker's public and private counts,
// so it also includes the items of a private batch that has not finished
// executing.
func (p *Pool) PendingTasks() int64 {
	if p.eng == nil {
		return 0
	}
	return p.eng.pendingTaskCount()
}

// Mode reports the scheduling strategy selected at New.
func (p *Pool) Mode() Mode { return p.cfg.Mode }

// SetTaskCapacity adjusts the shared bounded queue's capacity. Valid only
// during Init and only for FIXED/CACHED; otherwise diagnosed and ignored.
func (p *Pool) SetTaskCapacity(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.Load() != enginecore.Init {
		p.cfg.Diagnostics.Printf("engine: SetTaskCapacity called outside Init state, ignored")
		return
	}
	_ = WithTaskCapacity(n)(&p.cfg)
}

// SetMaxWorkers adjusts the worker population ceiling. Valid only during
// Init and only for CACHED/ACTIVE; otherwise diagnosed and ignored.
func (p *Pool) SetMaxWorkers(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.Load() != enginecore.Init {
		p.cfg.Diagnostics.Printf("engine: SetMaxWorkers called outside Init state, ignored")
		return
	}
	_ = WithMaxWorkers(n)(&p.cfg)
}

// SetIdleTimeout adjusts the CACHED idle-retirement threshold. Valid only
// during Init and only for CACHED; otherwise diagnosed and ignored.
func (p *Pool) SetIdleTimeout(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.Load() != enginecore.Init {
		p.cfg.Diagnostics.Printf("engine: SetIdleTimeout called outside Init state, ignored")
		return
	}
	_ = WithIdleTimeout(d)(&p.cfg)
}
