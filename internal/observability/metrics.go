package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TMDBRequestsTotal counts API and CDN calls by operation and outcome
	TMDBRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "postarr",
			Subsystem: "tmdb",
			Name:      "requests_total",
			Help:      "Total TMDB requests",
		},
		[]string{"operation", "status"},
	)

	TMDBRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "postarr",
			Subsystem: "tmdb",
			Name:      "request_duration_seconds",
			Help:      "TMDB request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation"},
	)

	PreviewCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "postarr",
			Subsystem: "tmdb",
			Name:      "preview_cache_hits_total",
			Help:      "Thumbnail loads served from the preview cache",
		},
	)

	// DownloadsTotal counts download attempts by final status
	DownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "postarr",
			Subsystem: "downloads",
			Name:      "total",
			Help:      "Total artwork downloads",
		},
		[]string{"status"},
	)

	DownloadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "postarr",
			Subsystem: "downloads",
			Name:      "bytes_total",
			Help:      "Bytes written to the primary destination",
		},
	)

	DownloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "postarr",
			Subsystem: "downloads",
			Name:      "duration_seconds",
			Help:      "Download pipeline duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	// HTTPRequestsTotal counts requests served by the API server
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "postarr",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)
