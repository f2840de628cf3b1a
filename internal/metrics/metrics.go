// Package metrics exposes process-wide Prometheus collectors for the
// scanner and the API server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	scansTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "posture_scans_total",
		Help: "Completed scans.",
	})
	scanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "posture_scan_duration_seconds",
		Help:    "Wall-clock duration of full scans.",
		Buckets: prometheus.DefBuckets,
	})
	probesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "posture_discovery_probes_total",
		Help: "Individual HTTP probes issued by discovery checks.",
	})
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "posture_http_requests_total",
		Help: "API requests served, by method and status class.",
	}, []string{"method", "status"})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		scansTotal,
		scanDuration,
		probesTotal,
		requestsTotal,
	)
}

// ObserveScan records one completed scan and its duration.
func ObserveScan(seconds float64) {
	scansTotal.Inc()
	scanDuration.Observe(seconds)
}

// IncProbe counts one discovery probe request.
func IncProbe() {
	probesTotal.Inc()
}

// IncRequest counts one served API request.
func IncRequest(method, statusClass string) {
	requestsTotal.WithLabelValues(method, statusClass).Inc()
}

// Handler serves the Prometheus exposition format for this registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
