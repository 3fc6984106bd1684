package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPMetrics holds the collectors for one service instance
type HTTPMetrics struct {
	ServiceName string

	requestCounter           *prometheus.CounterVec
	requestDurationHistogram *prometheus.HistogramVec
	statusCodeCategory       *prometheus.CounterVec
	loginCounter             *prometheus.CounterVec
	stageTransitionCounter   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewHTTPMetrics creates and registers the collectors on reg. Passing a fresh
// prometheus.NewRegistry() keeps tests independent of the default registry.
func NewHTTPMetrics(serviceName string, reg *prometheus.Registry) *HTTPMetrics {
	m := &HTTPMetrics{
		ServiceName: serviceName,
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"service", "method", "path", "status"},
		),
		requestDurationHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method", "path", "status"},
		),
		statusCodeCategory: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_status_category_total",
				Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
			},
			[]string{"service", "category", "method", "path"},
		),
		loginCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_login_attempts_total",
				Help: "Total number of login attempts by outcome",
			},
			[]string{"service", "outcome"}, // success, invalid_request, invalid_credentials, error
		),
		stageTransitionCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_deal_stage_transitions_total",
				Help: "Total number of deal stage writes by source and target stage",
			},
			[]string{"service", "from", "to"},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.requestCounter,
		m.requestDurationHistogram,
		m.statusCodeCategory,
		m.loginCounter,
		m.stageTransitionCounter,
	)
	return m
}

// incrementStatusCounter increments the status category counter for the HTTP status code
func (m *HTTPMetrics) incrementStatusCounter(status int, method, path string) {
	category := ""
	switch {
	case status >= 200 && status < 300:
		category = "2xx"
	case status >= 400 && status < 500:
		category = "4xx"
	case status >= 500 && status < 600:
		category = "5xx"
	}

	if category != "" {
		m.statusCodeCategory.WithLabelValues(m.ServiceName, category, method, path).Inc()
	}
}

// Middleware creates an Echo middleware function that records HTTP request metrics
func (m *HTTPMetrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			method := c.Request().Method
			path := c.Path()
			statusStr := strconv.Itoa(status)

			m.requestCounter.WithLabelValues(m.ServiceName, method, path, statusStr).Inc()
			m.incrementStatusCounter(status, method, path)
			m.requestDurationHistogram.WithLabelValues(m.ServiceName, method, path, statusStr).
				Observe(time.Since(start).Seconds())

			return nil
		}
	}
}

// RecordLogin records a login attempt outcome
func (m *HTTPMetrics) RecordLogin(outcome string) {
	m.loginCounter.WithLabelValues(m.ServiceName, outcome).Inc()
}

// RecordStageTransition records a deal stage write
func (m *HTTPMetrics) RecordStageTransition(from, to string) {
	m.stageTransitionCounter.WithLabelValues(m.ServiceName, from, to).Inc()
}

// Handler returns an HTTP handler exposing the registered metrics
func (m *HTTPMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
