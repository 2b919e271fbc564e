package engine

import (
	"time"

	"github.com/ygrebnov/errorc"

	"github.com/archwright/enginepool/engine/metrics"
)

// Mode selects one of the three scheduling strategies at construction.
// An engine's mode never changes after New.
type Mode int

const (
	// Fixed runs a constant worker population sharing one bounded queue.
	Fixed Mode = iota
	// Cached runs an elastic worker population sharing one bounded queue.
	Cached
	// Active runs a fixed worker population, each with its own
	// double-buffered queue, dispatched by least-loaded selection.
	Active
)

func (m Mode) String() string {
	switch m {
	case Fixed:
		return "fixed"
	case Cached:
		return "cached"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// config holds Pool configuration. Defaults mirror spec.md section 3.
type config struct {
	Mode         Mode
	InitWorkers  int
	MaxWorkers   int // Cached/Active only; Fixed ignores
	TaskCapacity int
	IdleTimeout  time.Duration // Cached only

	Diagnostics Diagnostics
	Metrics     metrics.Provider
}

// defaultConfig centralizes default values for config, applied by New
// before Options run.
func defaultConfig(mode Mode) config {
	return config{
		Mode:         mode,
		InitWorkers:  4,
		MaxWorkers:   20,
		TaskCapacity: 1024,
		IdleTimeout:  60 * time.Second,
		Diagnostics:  logDiagnostics{},
		Metrics:      metrics.NewNoopProvider(),
	}
}

// validateConfig performs lightweight invariant checks before Start.
func validateConfig(cfg *config) error {
	if cfg.TaskCapacity < 1 {
		return errorc.With(ErrInvalidConfig, errorc.String("field", "TaskCapacity must be >= 1"))
	}
	if cfg.InitWorkers < 1 {
		return errorc.With(ErrInvalidConfig, errorc.String("field", "InitWorkers must be >= 1"))
	}
	if cfg.Mode != Fixed && cfg.MaxWorkers < cfg.InitWorkers {
		return errorc.With(ErrInvalidConfig, errorc.String("field", "MaxWorkers must be >= InitWorkers"))
	}
	return nil
}

// Option configures a Pool at construction. Options run in order and may
// return an error to abort New outright (e.g. an out-of-range argument);
// this is distinct from the post-construction setters on Pool, which fail
// silently with a diagnostic instead, per the engine's setter-permission
// law.
type Option func(*config) error

// WithInitWorkers sets the number of workers started by Start. Valid for
// all modes; default 4.
func WithInitWorkers(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return errorc.With(ErrInvalidConfig, errorc.String("option", "WithInitWorkers requires n >= 1"))
		}
		cfg.InitWorkers = n
		return nil
	}
}

// WithMaxWorkers sets the worker population ceiling for CACHED and
// ACTIVE. FIXED ignores this option (a diagnostic is emitted instead of
// failing New, matching the setter-permission semantics documented for
// the runtime setter of the same name).
func WithMaxWorkers(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return errorc.With(ErrInvalidConfig, errorc.String("option", "WithMaxWorkers requires n >= 1"))
		}
		if cfg.Mode == Fixed {
			cfg.Diagnostics.Printf("engine: WithMaxWorkers ignored for FIXED mode")
			return nil
		}
		cfg.MaxWorkers = n
		return nil
	}
}

// WithTaskCapacity sets the shared bounded queue's capacity. Valid for
// FIXED and CACHED; ACTIVE has no shared queue and ignores this option.
func WithTaskCapacity(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return errorc.With(ErrInvalidConfig, errorc.String("option", "WithTaskCapacity requires n >= 1"))
		}
		if cfg.Mode == Active {
			cfg.Diagnostics.Printf("engine: WithTaskCapacity ignored for ACTIVE mode")
			return nil
		}
		cfg.TaskCapacity = n
		return nil
	}
}

// WithIdleTimeout sets how long a CACHED worker above InitWorkers may sit
// idle before self-terminating. FIXED and ACTIVE ignore this option.
func WithIdleTimeout(d time.Duration) Option {
	return func(cfg *config) error {
		if d < time.Second {
			return errorc.With(ErrInvalidConfig, errorc.String("option", "WithIdleTimeout requires d >= 1s"))
		}
		if cfg.Mode != Cached {
			cfg.Diagnostics.Printf("engine: WithIdleTimeout ignored outside CACHED mode")
			return nil
		}
		cfg.IdleTimeout = d
		return nil
	}
}

// WithDiagnostics installs a custom diagnostic sink in place of the
// default log.Printf-based one.
func WithDiagnostics(d Diagnostics) Option {
	return func(cfg *config) error {
		if d != nil {
			cfg.Diagnostics = d
		}
		return nil
	}
}

// WithMetrics installs a metrics.Provider. The default is a no-op
// provider, so metrics wiring never changes behavior, only observability.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p != nil {
			cfg.Metrics = p
		}
		return nil
	}
}
