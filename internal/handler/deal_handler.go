package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/minicrm/internal/model"
	"github.com/suteetoe/minicrm/internal/pipeline"
	"github.com/suteetoe/minicrm/internal/repository"
	"github.com/suteetoe/minicrm/internal/validation"
	"github.com/suteetoe/minicrm/pkg/logger"
	"go.uber.org/zap"
)

// DealListResponse adds the kanban grouping of the returned page.
type DealListResponse struct {
	ListResponse[model.Deal]
	DealsByStage pipeline.Board `json:"dealsByStage"`
}

// ListDeals handles GET /deals with the stage and leadId filters.
func (h *Handler) ListDeals(c echo.Context) error {
	q := validation.NewQuery(c.QueryParams())
	page := q.Page(DefaultDealPageSize)
	filter := repository.DealFilter{
		Stage:  validation.Enum(q, "stage", model.ParseStage),
		LeadID: q.UUID("leadId"),
	}
	if err := q.Err(); err != nil {
		return err
	}

	items, total, err := h.store.Deals.List(c.Request().Context(), filter, toRepoPage(page))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DealListResponse{
		ListResponse: newList(items, total, page),
		DealsByStage: pipeline.GroupByStage(items),
	})
}

// GetDeal handles GET /deals/:id.
func (h *Handler) GetDeal(c echo.Context) error {
	deal, err := h.store.Deals.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deal)
}

// CreateDeal handles POST /deals.
func (h *Handler) CreateDeal(c echo.Context) error {
	var req CreateDealRequest
	if _, err := h.decode(c, &req); err != nil {
		return err
	}

	deal := model.Deal{
		LeadID:            req.LeadID,
		Title:             req.Title,
		Amount:            *req.Amount,
		Stage:             model.StageProspecting,
		ExpectedCloseDate: parseTime(req.ExpectedCloseDate),
	}
	if req.Stage != "" {
		deal.Stage = model.Stage(req.Stage)
	}

	if err := h.store.Deals.Create(c.Request().Context(), &deal); err != nil {
		return err
	}

	logger.FromEcho(c).Info("Deal created",
		zap.String("deal_id", deal.ID),
		zap.String("stage", string(deal.Stage)))
	return c.JSON(http.StatusCreated, deal)
}

// UpdateDeal handles PATCH /deals/:id. This is also the pipeline move: the
// stage is written over whatever is persisted, and the response is the
// authoritative record the client reconciles its optimistic view with.
func (h *Handler) UpdateDeal(c echo.Context) error {
	var req UpdateDealRequest
	present, err := h.decode(c, &req)
	if err != nil {
		return err
	}

	updates := repository.Updates{}
	if req.LeadID != nil {
		updates["lead_id"] = *req.LeadID
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.Stage != nil {
		updates["stage"] = model.Stage(*req.Stage)
	}
	setNullableTime(updates, present, "expectedCloseDate", "expected_close_date", req.ExpectedCloseDate)

	deal, transition, err := h.store.Deals.Update(c.Request().Context(), c.Param("id"), updates)
	if err != nil {
		return err
	}

	if transition != nil {
		log := logger.FromEcho(c)
		if transition.NoOp() {
			log.Debug("Deal stage unchanged", zap.String("deal_id", deal.ID), zap.String("stage", string(transition.To)))
		} else {
			h.metrics.RecordStageTransition(string(transition.From), string(transition.To))
			log.Info("Deal stage changed",
				zap.String("deal_id", deal.ID),
				zap.String("from", string(transition.From)),
				zap.String("to", string(transition.To)))
		}
	}
	return c.JSON(http.StatusOK, deal)
}

// DeleteDeal handles DELETE /deals/:id.
func (h *Handler) DeleteDeal(c echo.Context) error {
	if err := h.store.Deals.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	logger.FromEcho(c).Info("Deal deleted", zap.String("deal_id", c.Param("id")))
	return deleted(c, "Deal")
}
