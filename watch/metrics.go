package watch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aluiziolira/go-watch-listings/models"
)

// Metrics bundles Prometheus collectors for the watcher.
type Metrics struct {
	Registry           *prometheus.Registry
	FetchDuration      prometheus.Histogram
	ListingsFound      prometheus.Gauge
	NewListings        prometheus.Gauge
	NewMatches         prometheus.Gauge
	ParseFailuresTotal prometheus.Counter
	NotificationsTotal *prometheus.CounterVec
	RunsTotal          *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "watcher_fetch_duration_seconds",
			Help:    "Time spent fetching the search-results page.",
			Buckets: prometheus.DefBuckets,
		},
	)
	listingsFound := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "watcher_listings_found",
			Help: "Listings extracted in the last run.",
		},
	)
	newListings := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "watcher_listings_new",
			Help: "Listings in the last run not present in the seen-set.",
		},
	)
	newMatches := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "watcher_listings_new_matches",
			Help: "New listings in the last run that satisfied the match rules.",
		},
	)
	parseFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "watcher_parse_failures_total",
			Help: "Candidate cards that could not be turned into listings.",
		},
	)
	notifications := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watcher_notifications_total",
			Help: "Notification deliveries by status.",
		},
		[]string{"status"},
	)
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watcher_runs_total",
			Help: "Watcher runs by outcome.",
		},
		[]string{"outcome"},
	)

	registry.MustRegister(fetchDuration, listingsFound, newListings, newMatches, parseFailures, notifications, runs)

	return &Metrics{
		Registry:           registry,
		FetchDuration:      fetchDuration,
		ListingsFound:      listingsFound,
		NewListings:        newListings,
		NewMatches:         newMatches,
		ParseFailuresTotal: parseFailures,
		NotificationsTotal: notifications,
		RunsTotal:          runs,
	}
}

// ObserveFetch records how long the page fetch took.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// RecordSummary publishes the run's counts.
func (m *Metrics) RecordSummary(s *models.RunSummary) {
	if m == nil {
		return
	}
	m.ListingsFound.Set(float64(s.Found))
	m.NewListings.Set(float64(s.New))
	m.NewMatches.Set(float64(s.NewMatches))
	m.ParseFailuresTotal.Add(float64(s.ParseFailures))
}

// IncNotification counts a delivery attempt by status.
func (m *Metrics) IncNotification(status string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(status).Inc()
}

// IncRun counts a run by outcome.
func (m *Metrics) IncRun(outcome string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
}
