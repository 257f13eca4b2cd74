// Package metrics exposes the Prometheus collectors for the dashboard core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for upstream fetches, geocode lookups, and
// served dashboard queries.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec // labels: op={states,districts,dashboard,refresh,health}, outcome={success,error}
	GeocodeLookups   *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache     *prometheus.CounterVec // labels: result={hit,miss}
	QueriesServed    prometheus.Counter
	QueryDuration    prometheus.Histogram
	DetectionRuns    *prometheus.CounterVec // labels: outcome={resolved,partial,declined,failed}
}

// New creates the collectors and registers them with the given registerer.
// Pass prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dash_core",
			Name:      "upstream_requests_total",
			Help:      "Upstream data-service requests by operation and outcome.",
		}, []string{"op", "outcome"}),
		GeocodeLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dash_core",
			Name:      "geocode_lookups_total",
			Help:      "Reverse-geocode lookups by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dash_core",
			Name:      "geocode_cache_total",
			Help:      "Reverse-geocode cache lookups by result.",
		}, []string{"result"}),
		QueriesServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dash_core",
			Name:      "dashboard_queries_total",
			Help:      "Dashboard snapshot queries issued.",
		}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dash_core",
			Name:      "dashboard_query_duration_seconds",
			Help:      "Duration of a dashboard query including upstream fetch and normalization.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		DetectionRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dash_core",
			Name:      "location_detections_total",
			Help:      "Location detection runs by terminal outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.UpstreamRequests,
		m.GeocodeLookups,
		m.GeocodeCache,
		m.QueriesServed,
		m.QueryDuration,
		m.DetectionRuns,
	)
	return m
}

// NewForTesting creates unregistered collectors for use in tests, avoiding
// duplicate-registration panics on the default registry.
func NewForTesting() *Metrics {
	return New(prometheus.NewRegistry())
}
