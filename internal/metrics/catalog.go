package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	CatalogRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moodset",
			Name:      "catalog_requests_total",
			Help:      "Catalog API requests by endpoint and response status",
		},
		[]string{"endpoint", "status"},
	)

	CatalogRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "moodset",
			Name:      "catalog_request_duration_seconds",
			Help:      "Catalog API request latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)
)

// ObserveCatalogRequest records one catalog call. A status of 0 means the request never got a response.
func ObserveCatalogRequest(endpoint string, status int, elapsed time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	CatalogRequestsTotal.WithLabelValues(endpoint, code).Inc()
	CatalogRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
