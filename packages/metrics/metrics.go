// Package metrics
package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PagesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_pages_fetched_total",
			Help: "Total number of page fetch attempts, labeled by outcome.",
		},
		[]string{"outcome"},
	)
	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insights_fetch_duration_seconds",
			Help:    "Duration of page fetches in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
	PageLanguage = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_page_language_total",
			Help: "Detected language of fetched pages.",
		},
		[]string{"language"},
	)
	Extractions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_extractions_total",
			Help: "Section extraction results, labeled by section and outcome (hit or default).",
		},
		[]string{"section", "outcome"},
	)
	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insights_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_name"},
	)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_cache_lookups_total",
			Help: "Aggregate cache lookups, labeled by result (hit or miss).",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(PagesFetched)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(PageLanguage)
	prometheus.MustRegister(Extractions)
	prometheus.MustRegister(DBQueryDuration)
	prometheus.MustRegister(CacheLookups)
}

func ExposeMetrics(addr string) {
	slog.Info("Exposing Prometheus metrics", "address", addr)
	http.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("Failed to start Prometheus metrics server", "error", err)
	}
}
