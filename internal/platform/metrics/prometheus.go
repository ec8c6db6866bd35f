package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace      = "pricing_engine"
	operationLabel = "operation"
)

// PrometheusSink lazily registers one vector per metric name, labelled by
// operation. Names ending in "_seconds" become histograms, the rest counters.
type PrometheusSink struct {
	registerer prometheus.Registerer

	mu         sync.RWMutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusSink registers metrics on reg. Pass prometheus.DefaultRegisterer
// to expose them on the default /metrics handler.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	return &PrometheusSink{
		registerer: reg,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func (p *PrometheusSink) Inc(name, operation string) {
	p.counter(name).WithLabelValues(operation).Inc()
}

func (p *PrometheusSink) Observe(name, operation string, d time.Duration) {
	p.histogram(name).WithLabelValues(operation).Observe(d.Seconds())
}

func (p *PrometheusSink) counter(name string) *prometheus.CounterVec {
	p.mu.RLock()
	c, ok := p.counters[name]
	p.mu.RUnlock()
	if ok {
		return c
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok = p.counters[name]; ok {
		return c
	}
	c = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      helpFor(name),
	}, []string{operationLabel})
	c = register(p.registerer, c)
	p.counters[name] = c
	return c
}

func (p *PrometheusSink) histogram(name string) *prometheus.HistogramVec {
	p.mu.RLock()
	h, ok := p.histograms[name]
	p.mu.RUnlock()
	if ok {
		return h
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok = p.histograms[name]; ok {
		return h
	}
	h = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Help:      helpFor(name),
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{operationLabel})
	h = register(p.registerer, h)
	p.histograms[name] = h
	return h
}

// register returns the already-registered collector when an identical one
// exists, so two sinks on the same registry share series.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func helpFor(name string) string {
	return "Pricing engine " + strings.ReplaceAll(name, "_", " ") + "."
}
