package engine

import "log"

// Diagnostics receives human-readable lines describing configuration
// refusals, queue overflow, and worker lifecycle events. The format is
// not contractual; callers needing structured observability should reach
// for the engine/metrics package instead, the way the teacher keeps
// metrics.Provider as the stable, typed surface and leaves free-text
// diagnostics as exactly that — diagnostics.
type Diagnostics interface {
	Printf(format string, args ...any)
}

// logDiagnostics is the default Diagnostics, writing to the standard
// library logger. It is installed automatically when no Option supplies
// one, so construction never requires wiring an observability backend.
type logDiagnostics struct{}

func (logDiagnostics) Printf(format string, args ...any) { log.Printf(format, args...) }

// noopDiagnostics discards every line. Useful in tests that assert on
// behavior, not log output.
type noopDiagnostics struct{}

func (noopDiagnostics) Printf(string, ...any) {}

// NoopDiagnostics returns a Diagnostics that discards everything.
func NoopDiagnostics() Diagnostics { return noopDiagnostics{} }
