// Package handler implements the HTTP endpoints of the CRM API.
package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/suteetoe/minicrm/internal/apperror"
	"github.com/suteetoe/minicrm/internal/middleware"
	"github.com/suteetoe/minicrm/internal/repository"
	"github.com/suteetoe/minicrm/internal/validation"
	"github.com/suteetoe/minicrm/pkg/jwtutil"
	"github.com/suteetoe/minicrm/pkg/metrics"
)

// Default page sizes of the list endpoints.
const (
	DefaultPageSize     = 20
	DefaultDealPageSize = 50
)

// Handler serves every endpoint. It holds no request state and is safe for
// concurrent use.
type Handler struct {
	store     *repository.Store
	tokens    *jwtutil.JWTUtil
	validator *validation.Validator
	metrics   *metrics.HTTPMetrics
	cookie    middleware.CookieConfig
}

// Deps are the collaborators of a Handler.
type Deps struct {
	Store     *repository.Store
	Tokens    *jwtutil.JWTUtil
	Validator *validation.Validator
	// Metrics defaults to collectors on a private registry.
	Metrics *metrics.HTTPMetrics
	// SecureCookie marks the session cookie Secure. Set in production.
	SecureCookie bool
}

// New creates a Handler.
func New(deps Deps) *Handler {
	v := deps.Validator
	if v == nil {
		v = validation.New()
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.NewHTTPMetrics("minicrm", prometheus.NewRegistry())
	}
	return &Handler{
		store:     deps.Store,
		tokens:    deps.Tokens,
		validator: v,
		metrics:   m,
		cookie: middleware.CookieConfig{
			Secure: deps.SecureCookie,
			MaxAge: deps.Tokens.Expiration(),
		},
	}
}

// ListResponse is the envelope of every list endpoint.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

func newList[T any](items []T, total int64, page validation.Page) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{
		Items:      items,
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages(total),
	}
}

// MessageResponse is returned by endpoints without a resource to return.
type MessageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) decode(c echo.Context, dst interface{}) (validation.Fields, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidRequest, "Invalid request body", err)
	}
	return h.validator.Decode(body, dst)
}

func toRepoPage(p validation.Page) repository.Page {
	return repository.Page{Limit: p.PageSize, Offset: p.Offset()}
}

func deleted(c echo.Context, entity string) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: entity + " deleted successfully"})
}
