package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "commute",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "commute",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
	}, []string{"method", "path"})

	DirectionsRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "commute",
		Subsystem: "directions",
		Name:      "requests_total",
		Help:      "Directions API calls by provider and outcome",
	}, []string{"provider", "outcome"})

	DirectionsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "commute",
		Subsystem: "directions",
		Name:      "request_duration_seconds",
		Help:      "Directions API latency in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"provider"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "commute",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"cache"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "commute",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"cache"})

	DecodedPoints = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "commute",
		Subsystem: "polyline",
		Name:      "decoded_points",
		Help:      "Number of points decoded per route",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	RoutesPlotted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "commute",
		Subsystem: "plot",
		Name:      "routes_total",
		Help:      "Survey rows processed by outcome",
	}, []string{"outcome"})
)
