// Package prometheus holds the collectors exposed on /metrics.
package prometheus

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics interface {
	// Register adds a collector. It can be removed again with UnregisterAll.
	Register(cs prometheus.Collector) error

	// UnregisterAll removes all collectors added with Register. The runtime
	// collectors stay.
	UnregisterAll()

	Reader
}

type Reader interface {
	HTTPHandler() http.Handler
}

type metrics struct {
	registry   *prometheus.Registry
	collectors []prometheus.Collector
	lock       sync.Mutex
}

// New returns a registry with the Go runtime and process collectors of
// this daemon already registered.
func New() Metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *metrics) Register(cs prometheus.Collector) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if err := m.registry.Register(cs); err != nil {
		return err
	}

	m.collectors = append(m.collectors, cs)

	return nil
}

func (m *metrics) UnregisterAll() {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, cs := range m.collectors {
		m.registry.Unregister(cs)
	}

	m.collectors = nil
}

func (m *metrics) HTTPHandler() http.Handler {
	handler := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})

	return promhttp.InstrumentMetricHandler(m.registry, handler)
}
