package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	m := NewHTTPMetrics("minicrm", prometheus.NewRegistry())

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/fail", func(c echo.Context) error { return echo.NewHTTPError(http.StatusBadRequest) })

	for _, path := range []string{"/ok", "/ok", "/fail"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCounter.WithLabelValues("minicrm", "GET", "/ok", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCounter.WithLabelValues("minicrm", "GET", "/fail", "400")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusCodeCategory.WithLabelValues("minicrm", "4xx", "GET", "/fail")))
}

func TestDomainCounters(t *testing.T) {
	m := NewHTTPMetrics("minicrm", prometheus.NewRegistry())

	m.RecordLogin("success")
	m.RecordLogin("invalid_credentials")
	m.RecordLogin("invalid_credentials")
	m.RecordStageTransition("PROSPECTING", "PROPOSAL")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.loginCounter.WithLabelValues("minicrm", "invalid_credentials")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageTransitionCounter.WithLabelValues("minicrm", "PROSPECTING", "PROPOSAL")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewHTTPMetrics("minicrm", prometheus.NewRegistry())
	m.RecordLogin("success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "crm_login_attempts_total")
}
