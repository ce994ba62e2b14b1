// Package metrics owns the prometheus registry exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_http_requests_total",
			Help: "HTTP requests by method and status class",
		},
		[]string{"method", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// ImagesIngested counts upload outcomes: stored, unsupported, failed.
	ImagesIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_images_ingested_total",
			Help: "Image uploads by outcome",
		},
		[]string{"outcome"},
	)

	LikesToggled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_likes_toggled_total",
			Help: "Like toggles by resulting state",
		},
		[]string{"state"},
	)

	NotificationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_notifications_created_total",
			Help: "Notifications staged for the owner",
		},
	)

	OrphansRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_orphan_files_removed_total",
			Help: "Stored files removed because no record referenced them",
		},
	)
)

//nolint:gochecknoinits // collectors must exist before the first scrape
func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequests,
		HTTPDuration,
		ImagesIngested,
		LikesToggled,
		NotificationsCreated,
		OrphansRemoved,
	)
}

// Handler serves the registry in the prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// StatusClass buckets a status code as "2xx", "4xx", etc.
func StatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
