package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/minicrm/internal/model"
	"github.com/suteetoe/minicrm/internal/repository"
	"github.com/suteetoe/minicrm/internal/validation"
	"github.com/suteetoe/minicrm/pkg/logger"
	"go.uber.org/zap"
)

// ListLeads handles GET /leads with the q, status and companyId filters.
func (h *Handler) ListLeads(c echo.Context) error {
	q := validation.NewQuery(c.QueryParams())
	page := q.Page(DefaultPageSize)
	filter := repository.LeadFilter{
		Q:         q.String("q"),
		Status:    validation.Enum(q, "status", model.ParseLeadStatus),
		CompanyID: q.UUID("companyId"),
	}
	if err := q.Err(); err != nil {
		return err
	}

	items, total, err := h.store.Leads.List(c.Request().Context(), filter, toRepoPage(page))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(items, total, page))
}

// GetLead handles GET /leads/:id and includes the lead's deals and activities.
func (h *Handler) GetLead(c echo.Context) error {
	lead, err := h.store.Leads.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lead)
}

// CreateLead handles POST /leads.
func (h *Handler) CreateLead(c echo.Context) error {
	var req CreateLeadRequest
	if _, err := h.decode(c, &req); err != nil {
		return err
	}

	lead := model.Lead{
		CompanyID:   req.CompanyID,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Source:      model.LeadSource(req.Source),
		Status:      model.StatusNew,
	}
	if req.Status != "" {
		lead.Status = model.LeadStatus(req.Status)
	}
	if req.Score != nil {
		lead.Score = *req.Score
	}

	if err := h.store.Leads.Create(c.Request().Context(), &lead); err != nil {
		return err
	}

	logger.FromEcho(c).Info("Lead created",
		zap.String("lead_id", lead.ID),
		zap.String("company_id", lead.CompanyID))
	return c.JSON(http.StatusCreated, lead)
}

// UpdateLead handles PATCH /leads/:id.
func (h *Handler) UpdateLead(c echo.Context) error {
	var req UpdateLeadRequest
	present, err := h.decode(c, &req)
	if err != nil {
		return err
	}

	lead, err := h.store.Leads.Update(c.Request().Context(), c.Param("id"), req.updates(present))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lead)
}

// DeleteLead handles DELETE /leads/:id.
func (h *Handler) DeleteLead(c echo.Context) error {
	if err := h.store.Leads.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	logger.FromEcho(c).Info("Lead deleted", zap.String("lead_id", c.Param("id")))
	return deleted(c, "Lead")
}
