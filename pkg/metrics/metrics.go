package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	CacheLookupsTotal   *prometheus.CounterVec
	FetchesTotal        *prometheus.CounterVec
	FetchDuration       prometheus.Histogram
	VerdictsTotal       *prometheus.CounterVec
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer to
// expose them on the promhttp handler.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doctype_cache_lookups_total",
				Help: "Total number of cache lookups by result.",
			},
			[]string{"result"}, // hit, miss, stale
		),
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doctype_fetches_total",
				Help: "Total number of document fetches by outcome.",
			},
			[]string{"outcome"}, // success, failure
		),
		FetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "doctype_fetch_duration_seconds",
				Help:    "Duration of document fetches.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		VerdictsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doctype_verdicts_total",
				Help: "Total number of freshly computed verdicts.",
			},
			[]string{"html5"},
		),
	}
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	m.HTTPRequestDuration.WithLabelValues(method, path, code).Observe(d.Seconds())
	m.HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
}

func (m *Metrics) IncCacheLookup(result string) {
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveFetch(d time.Duration, err error) {
	m.FetchDuration.Observe(d.Seconds())
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.FetchesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncVerdict(isHTML5 bool) {
	m.VerdictsTotal.WithLabelValues(strconv.FormatBool(isHTML5)).Inc()
}
