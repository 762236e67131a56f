package proxy

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the proxy.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	upstreamDuration *prometheus.HistogramVec
	imagesGenerated  prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates a metrics instance backed by a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aiproxy_requests_total",
				Help: "Total number of proxied requests by handler, feature and status",
			},
			[]string{"handler", "feature", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aiproxy_request_duration_seconds",
				Help:    "End-to-end request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"handler"},
		),

		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aiproxy_upstream_duration_seconds",
				Help:    "Upstream call duration in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 60},
			},
			[]string{"handler"},
		),

		imagesGenerated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "aiproxy_images_generated_total",
				Help: "Total number of images returned to clients",
			},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.upstreamDuration,
		m.imagesGenerated,
	)

	return m
}

// RecordRequest records the outcome of a proxied request.
func (m *Metrics) RecordRequest(handler, feature string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(handler, feature, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(handler).Observe(duration.Seconds())
}

// RecordUpstream records the duration of an upstream call.
func (m *Metrics) RecordUpstream(handler string, duration time.Duration) {
	m.upstreamDuration.WithLabelValues(handler).Observe(duration.Seconds())
}

// RecordImages records how many images were returned to a client.
func (m *Metrics) RecordImages(count int) {
	m.imagesGenerated.Add(float64(count))
}

// Handler returns the Prometheus metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
