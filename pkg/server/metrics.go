package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bascanada/proposalviewer/pkg/proposal"
)

// metrics holds the filter collectors on a registry owned by the server, so
// several servers can live in one process.
type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	matched  *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "proposalviewer",
			Name:      "filter_requests_total",
			Help:      "Number of filter requests by record kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "proposalviewer",
			Name:      "filter_duration_seconds",
			Help:      "Time spent filtering records by record kind.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"kind"}),
		matched: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "proposalviewer",
			Name:      "filter_matched_records",
			Help:      "Number of records matched per filter request.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		m.requests, m.duration, m.matched,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	for _, kind := range []proposal.RecordKind{proposal.KindProjects, proposal.KindTeam} {
		m.requests.WithLabelValues(string(kind))
	}
	return m
}

func (m *metrics) observe(kind proposal.RecordKind, took time.Duration, matched int) {
	m.requests.WithLabelValues(string(kind)).Inc()
	m.duration.WithLabelValues(string(kind)).Observe(took.Seconds())
	m.matched.WithLabelValues(string(kind)).Observe(float64(matched))
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
