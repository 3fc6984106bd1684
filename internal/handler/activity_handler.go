package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/minicrm/internal/model"
	"github.com/suteetoe/minicrm/internal/repository"
	"github.com/suteetoe/minicrm/internal/validation"
)

// ListActivities handles GET /activities with the leadId, completed and
// type filters.
func (h *Handler) ListActivities(c echo.Context) error {
	q := validation.NewQuery(c.QueryParams())
	page := q.Page(DefaultPageSize)
	filter := repository.ActivityFilter{
		LeadID:    q.UUID("leadId"),
		Completed: q.Bool("completed"),
		Type:      validation.Enum(q, "type", model.ParseActivityType),
	}
	if err := q.Err(); err != nil {
		return err
	}

	items, total, err := h.store.Activities.List(c.Request().Context(), filter, toRepoPage(page))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(items, total, page))
}

// GetActivity handles GET /activities/:id.
func (h *Handler) GetActivity(c echo.Context) error {
	activity, err := h.store.Activities.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activity)
}

// CreateActivity handles POST /activities.
func (h *Handler) CreateActivity(c echo.Context) error {
	var req CreateActivityRequest
	if _, err := h.decode(c, &req); err != nil {
		return err
	}

	activity := model.Activity{
		LeadID:  req.LeadID,
		Type:    model.ActivityType(req.Type),
		Content: req.Content,
		DueDate: parseTime(req.DueDate),
	}
	if req.Completed != nil {
		activity.Completed = *req.Completed
	}

	if err := h.store.Activities.Create(c.Request().Context(), &activity); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, activity)
}

// UpdateActivity handles PATCH /activities/:id.
func (h *Handler) UpdateActivity(c echo.Context) error {
	var req UpdateActivityRequest
	present, err := h.decode(c, &req)
	if err != nil {
		return err
	}

	activity, err := h.store.Activities.Update(c.Request().Context(), c.Param("id"), req.updates(present))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activity)
}

// DeleteActivity handles DELETE /activities/:id.
func (h *Handler) DeleteActivity(c echo.Context) error {
	if err := h.store.Activities.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return deleted(c, "Activity")
}
