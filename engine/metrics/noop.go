package metrics

// NoopProvider discards every recorded value. It is the default Provider
// so constructing a Pool never requires choosing a metrics backend.
type NoopProvider struct{}

// NewNoopProvider constructs a Provider that discards all metrics.
func NewNoopProvider() NoopProvider { return NoopProvider{} }

func (NoopProvider) Counter(string) Counter     { return noopInstrument{} }
func (NoopProvider) Gauge(string) Gauge         { return noopInstrument{} }
func (NoopProvider) Histogram(string) Histogram { return noopInstrument{} }

type noopInstrument struct{}

func (noopInstrument) Add(int64)      {}
func (noopInstrument) Set(int64)      {}
func (noopInstrument) Record(float64) {}
