// Package metrics exposes provider and search outcomes to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bobby-s-dev/weather-app/internal/services"
)

type Metrics struct {
	registry      *prometheus.Registry
	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	searchTotal   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_provider_requests_total",
			Help: "Provider calls by endpoint, tier and outcome",
		}, []string{"endpoint", "tier", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weather_provider_request_duration_seconds",
			Help:    "Time taken by provider calls",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		searchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_searches_total",
			Help: "Session searches by outcome",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.fetchTotal,
		m.fetchDuration,
		m.searchTotal,
		collectors.NewGoCollector(),
	)
	return m
}

var _ services.FetchObserver = (*Metrics)(nil)

func (m *Metrics) ObserveFetch(endpoint string, tier services.Tier, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.fetchTotal.WithLabelValues(endpoint, string(tier), outcome).Inc()
	m.fetchDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// ObserveSearch records a session search outcome: committed, superseded or failed.
func (m *Metrics) ObserveSearch(outcome string) {
	m.searchTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
