// Package metrics holds the storefront's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of gateway requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of gateway requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	catalogFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "catalog",
			Name:      "fetches_total",
			Help:      "Catalog fetches by outcome (applied, failed, stale).",
		},
		[]string{"outcome"},
	)

	catalogFetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "catalog",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of catalog list calls.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)

	cartOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "remote_operations_total",
			Help:      "Cart save/retrieve calls by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: "session",
			Name:      "active",
			Help:      "Live storefront sessions.",
		},
	)
)

func init() {
	Registry.MustRegister(httpRequests, httpDuration, catalogFetches, catalogFetchDuration, cartOperations, activeSessions)
}

// Handler exposes Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordCatalogFetch counts one catalog fetch outcome.
func RecordCatalogFetch(outcome string, elapsed time.Duration) {
	catalogFetches.WithLabelValues(outcome).Inc()
	catalogFetchDuration.Observe(elapsed.Seconds())
}

// RecordCartOperation counts one remote cart call.
func RecordCartOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	cartOperations.WithLabelValues(operation, outcome).Inc()
}

// SetActiveSessions reports the registry size.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
