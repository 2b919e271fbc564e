package metrics

import (
	"math"
	"sync"
	"sync/atomic"
)

// BasicProvider is a simple in-memory Provider, concurrency-safe and
// suitable for tests and lightweight applications that want numbers
// without standing up a real metrics backend. Instruments are created on
// first use and reused for the same name thereafter.
type BasicProvider struct {
	counters   sync.Map // string -> *basicCounter
	gauges     sync.Map // string -> *basicGauge
	histograms sync.Map // string -> *basicHistogram
}

// NewBasicProvider constructs an empty BasicProvider.
func NewBasicProvider() *BasicProvider { return &BasicProvider{} }

func (p *BasicProvider) Counter(name string) Counter {
	v, _ := p.counters.LoadOrStore(name, &basicCounter{})
	return v.(*basicCounter)
}

func (p *BasicProvider) Gauge(name string) Gauge {
	v, _ := p.gauges.LoadOrStore(name, &basicGauge{})
	return v.(*basicGauge)
}

func (p *BasicProvider) Histogram(name string) Histogram {
	v, _ := p.histograms.LoadOrStore(name, &basicHistogram{min: math.Inf(1), max: math.Inf(-1)})
	return v.(*basicHistogram)
}

// CounterValue returns the current value of a named counter, or 0 if it
// was never created.
func (p *BasicProvider) CounterValue(name string) int64 {
	if v, ok := p.counters.Load(name); ok {
		return v.(*basicCounter).val.Load()
	}
	return 0
}

// GaugeValue returns the current value of a named gauge, or 0 if it was
// never created.
func (p *BasicProvider) GaugeValue(name string) int64 {
	if v, ok := p.gauges.Load(name); ok {
		return v.(*basicGauge).val.Load()
	}
	return 0
}

// HistogramSnapshot returns a snapshot of a named histogram, or the zero
// HistSnapshot if it was never created.
func (p *BasicProvider) HistogramSnapshot(name string) HistSnapshot {
	if v, ok := p.histograms.Load(name); ok {
		return v.(*basicHistogram).Snapshot()
	}
	return HistSnapshot{}
}

type basicCounter struct{ val atomic.Int64 }

func (c *basicCounter) Add(n int64) { c.val.Add(n) }

type basicGauge struct{ val atomic.Int64 }

func (g *basicGauge) Add(delta int64) { g.val.Add(delta) }
func (g *basicGauge) Set(v int64)     { g.val.Store(v) }

// basicHistogram tracks count, sum, min, and max without bucketing.
type basicHistogram struct {
	mu    sync.Mutex
	count int64
	sum   float64
	min   float64
	max   float64
}

func (h *basicHistogram) Record(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 {
		h.min, h.max = v, v
	} else if v < h.min {
		h.min = v
	} else if v > h.max {
		h.max = v
	}
	h.count++
	h.sum += v
}

// HistSnapshot is an immutable view of a histogram's state.
type HistSnapshot struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Mean  float64
}

func (h *basicHistogram) Snapshot() HistSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := HistSnapshot{Count: h.count, Sum: h.sum, Min: h.min, Max: h.max}
	if s.Count > 0 {
		s.Mean = s.Sum / float64(s.Count)
	}
	return s
}
