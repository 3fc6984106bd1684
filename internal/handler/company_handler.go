package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/minicrm/internal/model"
	"github.com/suteetoe/minicrm/internal/validation"
	"github.com/suteetoe/minicrm/pkg/logger"
	"go.uber.org/zap"
)

// ListCompanies handles GET /companies.
func (h *Handler) ListCompanies(c echo.Context) error {
	q := validation.NewQuery(c.QueryParams())
	page := q.Page(DefaultPageSize)
	if err := q.Err(); err != nil {
		return err
	}

	items, total, err := h.store.Companies.List(c.Request().Context(), toRepoPage(page))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(items, total, page))
}

// GetCompany handles GET /companies/:id.
func (h *Handler) GetCompany(c echo.Context) error {
	company, err := h.store.Companies.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, company)
}

// CreateCompany handles POST /companies.
func (h *Handler) CreateCompany(c echo.Context) error {
	var req CreateCompanyRequest
	if _, err := h.decode(c, &req); err != nil {
		return err
	}

	company := model.Company{Name: req.Name, Domain: req.Domain, Notes: req.Notes}
	if err := h.store.Companies.Create(c.Request().Context(), &company); err != nil {
		return err
	}

	logger.FromEcho(c).Info("Company created", zap.String("company_id", company.ID))
	return c.JSON(http.StatusCreated, company)
}

// UpdateCompany handles PATCH /companies/:id.
func (h *Handler) UpdateCompany(c echo.Context) error {
	var req UpdateCompanyRequest
	present, err := h.decode(c, &req)
	if err != nil {
		return err
	}

	company, err := h.store.Companies.Update(c.Request().Context(), c.Param("id"), req.updates(present))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, company)
}

// DeleteCompany handles DELETE /companies/:id.
func (h *Handler) DeleteCompany(c echo.Context) error {
	if err := h.store.Companies.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	logger.FromEcho(c).Info("Company deleted", zap.String("company_id", c.Param("id")))
	return deleted(c, "Company")
}
