// Package metrics exposes Prometheus collectors for the registry and its API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/conduit-lang/podreg/runtime/pod"
)

const namespace = "podreg"

// DefaultPath is where the scrape endpoint is mounted
const DefaultPath = "/metrics"

// Collector holds all Prometheus metrics for podreg.
type Collector struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Registry metrics
	Registrations *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates a collector backed by its own Prometheus registry so that
// several servers in one process (and tests) do not collide.
func New(reg *pod.Registry) *Collector {
	promReg := prometheus.NewRegistry()
	return NewWithRegistry(promReg, promReg, reg)
}

// NewWithRegistry registers the collectors with r and serves them from g.
// The pod and type gauges read reg at scrape time.
func NewWithRegistry(r prometheus.Registerer, g prometheus.Gatherer, reg *pod.Registry) *Collector {
	factory := promauto.With(r)

	c := &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of API requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "route"},
		),
		Registrations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Pods and types registered since the collector was attached",
			},
			[]string{"kind"},
		),
		gatherer: g,
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pods",
			Help:      "Number of registered pods",
		},
		func() float64 { return float64(reg.Len()) },
	)
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "types",
			Help:      "Number of registered types across all pods",
		},
		func() float64 { return float64(reg.Snapshot().TypeCount()) },
	)

	return c
}

// OnRegister counts registrations. Attach with Registry.Subscribe.
func (c *Collector) OnRegister(e pod.Event) {
	c.Registrations.WithLabelValues(e.Kind.String()).Inc()
}

// Handler serves the scrape endpoint
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// StatusClass buckets an HTTP status into 2xx, 4xx and so on
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
