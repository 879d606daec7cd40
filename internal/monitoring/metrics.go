// Package monitoring exposes Prometheus instrumentation for the HTTP
// surface and the reservation workflow.
package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors used across the application.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	RSVPOutcomes    *prometheus.CounterVec
	registry        *prometheus.Registry
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "evently",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, path and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		RSVPOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evently",
			Name:      "rsvp_outcomes_total",
			Help:      "Reservation attempts by outcome code.",
		}, []string{"outcome"}),
		registry: registry,
	}
}

// ObserveRSVP increments the outcome counter for one reservation attempt.
func (m *Metrics) ObserveRSVP(outcome string) {
	m.RSVPOutcomes.WithLabelValues(outcome).Inc()
}

// Handler returns the /metrics scrape endpoint.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware records request latency. The route template is used as the
// path label so that parameterized routes do not explode cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
