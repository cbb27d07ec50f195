package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const unmatchedRoute = "unmatched"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "runsapi_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "runsapi_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	httpRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "runsapi_http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: []float64{64, 128, 256, 512, 1024, 4096},
		},
		[]string{"method", "route"},
	)

	httpActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "runsapi_http_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"method"},
	)
)

// MetricsConfig configures the metrics middleware
type MetricsConfig struct {
	// Skip function
	Skip func(*fiber.Ctx) bool
}

// DefaultMetricsConfig returns default metrics config. Health endpoints
// and the scrape endpoint at scrapePath are not recorded.
func DefaultMetricsConfig(scrapePath string) MetricsConfig {
	return MetricsConfig{
		Skip: SkipPaths("/health", "/livez", "/readyz", scrapePath),
	}
}

// MetricsMiddleware creates a Prometheus metrics middleware
type MetricsMiddleware struct {
	config MetricsConfig
}

// NewMetricsMiddleware creates a new metrics middleware
func NewMetricsMiddleware(config MetricsConfig) *MetricsMiddleware {
	return &MetricsMiddleware{
		config: config,
	}
}

// Metrics returns the metrics handler with the default config
func Metrics(scrapePath string) fiber.Handler {
	return NewMetricsMiddleware(DefaultMetricsConfig(scrapePath)).Handler()
}

// Handler returns the metrics handler. Requests are labelled by matched
// route pattern rather than raw path so that scopes do not become label
// values.
func (m *MetricsMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Skip if configured
		if m.config.Skip != nil && m.config.Skip(c) {
			return c.Next()
		}

		start := time.Now()
		method := c.Method()

		// Track active requests
		httpActiveRequests.WithLabelValues(method).Inc()
		defer httpActiveRequests.WithLabelValues(method).Dec()

		// Process request
		err := c.Next()

		status := c.Response().StatusCode()
		route := routeLabel(c, status)

		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		httpRequestSize.WithLabelValues(method, route).Observe(float64(len(c.Request().Body())))

		return err
	}
}

func routeLabel(c *fiber.Ctx, status int) string {
	if status == fiber.StatusNotFound {
		return unmatchedRoute
	}
	return c.Route().Path
}

// SkipPaths returns a skipper matching any of paths exactly
func SkipPaths(paths ...string) func(*fiber.Ctx) bool {
	skip := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		skip[p] = struct{}{}
	}
	return func(c *fiber.Ctx) bool {
		_, ok := skip[c.Path()]
		return ok
	}
}
