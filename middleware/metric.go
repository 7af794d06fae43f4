package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	AuthLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"},
	)

	DocumentsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_created_total",
			Help: "Documents created per entity",
		},
		[]string{"entity"},
	)
)

// InitMetrics registers every collector. Collectors already registered with
// reg are left in place.
func InitMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{HttpRequestsTotal, HttpRequestDuration, AuthLoginsTotal, DocumentsCreatedTotal} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = "undefined"
		}

		HttpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HttpRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
	}
}

// MetricsHandler serves the default gatherer to the listed client IPs only.
// An empty list admits everyone.
func MetricsHandler(allow []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allow))
	for _, ip := range allow {
		allowed[ip] = struct{}{}
	}
	h := promhttp.Handler()

	return func(c *gin.Context) {
		if len(allowed) > 0 {
			if _, ok := allowed[c.ClientIP()]; !ok {
				c.AbortWithStatus(403)
				return
			}
		}
		h.ServeHTTP(c.Writer, c.Request)
	}
}
