package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	TransfersCreated   prometheus.Counter
	TransfersCancelled prometheus.Counter
	TransferAmount     prometheus.Histogram

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInFlight        prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		TransfersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "famledger_transfers_created_total",
			Help: "Total number of transfers created.",
		}),
		TransfersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "famledger_transfers_cancelled_total",
			Help: "Total number of transfers cancelled.",
		}),
		TransferAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "famledger_transfer_amount",
			Help:    "Distribution of transfer amounts.",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000, 10000, 100000},
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "famledger_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "famledger_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "famledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.TransfersCreated,
		m.TransfersCancelled,
		m.TransferAmount,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPInFlight,
	)

	return m
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
