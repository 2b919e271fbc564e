// Package enginecore holds the concurrency primitives shared by the
// engine package's three scheduling strategies: worker lifecycle, the
// bounded shared task queue used by FIXED and CACHED, and the
// double-buffered per-worker queue used by ACTIVE.
package enginecore

import "sync/atomic"

// State is an engine's lifecycle stage. Transitions are one-way:
// Init -> Running on Start, Running -> Exiting on shutdown.
type State int32

const (
	Init State = iota
	Running
	Exiting
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case Running:
		return "running"
	case Exiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// AtomicState is a State stored for lock-free cross-goroutine reads.
// The zero value is Init.
type AtomicState struct {
	v atomic.Int32
}

func (a *AtomicState) Load() State { return State(a.v.Load()) }

func (a *AtomicState) Store(s State) { a.v.Store(int32(s)) }

// nextWorkerID is the process-wide monotonic id generator. It is used
// only as a map/slice key, never for scheduling decisions, per the
// engine's identification rule.
var nextWorkerID atomic.Uint64

// NextWorkerID returns the next id in the process-wide monotonic sequence.
func NextWorkerID() uint64 { return nextWorkerID.Add(1) - 1 }
