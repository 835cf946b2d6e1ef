// Package metrics exposes Prometheus collectors for resolutions, model
// calls, history writes and HTTP requests.
//
// Collectors live on a private registry so tests and multiple servers in
// one process never collide on the global default registry. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HendryAvila/triz-master/internal/matrix"
)

const namespace = "triz"

// Metrics holds all collectors.
type Metrics struct {
	registry *prometheus.Registry

	Resolutions    *prometheus.CounterVec
	AICalls        *prometheus.CounterVec
	AICallDuration *prometheus.HistogramVec
	HistorySaves   prometheus.Counter
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

// New creates a Metrics instance on a fresh registry that also carries the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Resolutions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolutions_total",
				Help:      "Contradictions resolved, by source and whether any principle was found",
			},
			[]string{"source", "empty"},
		),
		AICalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ai",
				Name:      "calls_total",
				Help:      "Model calls by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		AICallDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "ai",
				Name:      "call_duration_seconds",
				Help:      "Duration of model calls including retries",
				Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 40, 80, 160},
			},
			[]string{"op"},
		),
		HistorySaves: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "saves_total",
			Help:      "Sessions written to history",
		}),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"route", "method", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveResolution counts one resolver call.
func (m *Metrics) ObserveResolution(res matrix.Resolution) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(string(res.Source), strconv.FormatBool(res.Empty())).Inc()
}

// ObserveAI records a model call. Its signature matches ai.Observer.
func (m *Metrics) ObserveAI(op string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.AICalls.WithLabelValues(op, outcome).Inc()
	m.AICallDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveHistorySave counts one history write.
func (m *Metrics) ObserveHistorySave() {
	if m == nil {
		return
	}
	m.HistorySaves.Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
