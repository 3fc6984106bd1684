package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/minicrm/internal/apperror"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// HealthCheck handles the health check endpoint. It fails when the database
// does not answer.
func (h *Handler) HealthCheck(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		return apperror.Wrap(apperror.KindInternal, "Database unavailable", err)
	}
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Metrics exposes the Prometheus collectors.
func (h *Handler) Metrics(c echo.Context) error {
	h.metrics.Handler().ServeHTTP(c.Response(), c.Request())
	return nil
}
