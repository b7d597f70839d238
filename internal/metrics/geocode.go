package metrics

import "github.com/prometheus/client_golang/prometheus"

// Geocoder Prometheus metrics.
var (
	GeocodeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "geocode_requests_total",
			Help:      "Total number of upstream geocoder requests",
		},
		[]string{"status"}, // "ok" / "not_found" / "error" / "rate_limited"
	)

	GeocodeRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "geocode_request_duration_seconds",
			Help:      "Upstream geocoder request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	GeocodeCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocode cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var geocodeMetricsRegistered bool

// RegisterGeocodeMetrics registers the geocoder metrics. Must be called once from main.
func RegisterGeocodeMetrics() {
	if geocodeMetricsRegistered {
		return
	}
	prometheus.MustRegister(GeocodeRequestsTotal, GeocodeRequestDuration, GeocodeCacheTotal)
	geocodeMetricsRegistered = true
}
