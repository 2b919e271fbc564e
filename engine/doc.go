// Package engine provides an in-process worker pool with three
// interchangeable scheduling strategies.
//
// Constructor
//   - New(mode, opts ...Option): the only constructor. mode picks a
//     strategy once, at construction; it never changes afterward.
//
// Modes
//   - Fixed: a constant worker population sharing one bounded queue.
//   - Cached: an elastic worker population, spawning beyond InitWorkers
//     under pressure and retiring idle workers above InitWorkers.
//   - Active: a fixed worker population, each with its own
//     double-buffered queue, dispatched by least-loaded selection.
//
// Defaults
// Unless overridden via an Option, a new Pool has:
//   - InitWorkers: 4
//   - MaxWorkers: 20 (Cached/Active only)
//   - TaskCapacity: 1024 (Fixed/Cached only)
//   - IdleTimeout: 60s (Cached only)
//   - Diagnostics: a log.Printf-backed sink
//   - Metrics: a no-op provider
//
// Lifecycle
// A Pool moves one-way through Init, Running, Exiting. Configuration
// setters (the With* options and the Set* methods) take effect only
// during Init; called later, they are diagnosed and ignored rather than
// returning an error.
//
// Submission
// Submit takes a raw Task; Submit2 and SubmitErr adapt a typed callable
// and return a Future that resolves to its outcome, recovering a panic
// into ErrTaskPanic rather than letting it escape the worker goroutine.
package engine
