package engine

import "errors"

// Namespace prefixes every sentinel error this package defines, mirroring
// the teacher's convention of a single namespaced error set.
const Namespace = "engine"

var (
	// ErrNotRunning is returned by Submit when the pool is not in the
	// Running state (called during Init or after Close).
	ErrNotRunning = errors.New(Namespace + ": pool is not running")

	// ErrQueueFull is returned by Submit when backpressure exceeded its
	// bounded wait.
	ErrQueueFull = errors.New(Namespace + ": task queue is full")

	// ErrTaskPanic wraps the recovered value of a task that terminated
	// abnormally. It is never returned by Submit; it surfaces only
	// through a Future's error.
	ErrTaskPanic = errors.New(Namespace + ": task execution panicked")

	// ErrInvalidConfig is returned by an Option when it rejects its
	// argument outright (e.g. n == 0 for WithMaxWorkers).
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
)
