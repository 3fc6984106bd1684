// Package server assembles the echo instance: global middleware in order,
// public routes and the authenticated resource groups.
package server

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/suteetoe/minicrm/internal/apperror"
	"github.com/suteetoe/minicrm/internal/handler"
	"github.com/suteetoe/minicrm/internal/middleware"
	"github.com/suteetoe/minicrm/internal/validation"
	"github.com/suteetoe/minicrm/pkg/jwtutil"
	"github.com/suteetoe/minicrm/pkg/logger"
	"github.com/suteetoe/minicrm/pkg/metrics"
)

// Config holds what the routes need beyond the handler.
type Config struct {
	Tokens         *jwtutil.JWTUtil
	Metrics        *metrics.HTTPMetrics
	Validator      *validation.Validator
	AllowedOrigins []string
}

// New builds the HTTP server around h.
func New(cfg Config, h *handler.Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperror.HTTPErrorHandler
	if cfg.Validator != nil {
		e.Validator = cfg.Validator
	}

	// Order matters: ids before logging, logging before anything that fails,
	// the origin guard before authentication.
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(logger.Middleware())
	if cfg.Metrics != nil {
		e.Use(cfg.Metrics.Middleware())
	}
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))
	e.Use(middleware.OriginGuard(cfg.AllowedOrigins))

	e.GET("/health", h.HealthCheck)
	e.GET("/metrics", h.Metrics)

	auth := e.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)
	auth.GET("/me", h.Me, middleware.Auth(cfg.Tokens))

	requireSession := middleware.Auth(cfg.Tokens)

	companies := e.Group("/companies", requireSession)
	companies.GET("", h.ListCompanies)
	companies.POST("", h.CreateCompany)
	companies.GET("/:id", h.GetCompany)
	companies.PATCH("/:id", h.UpdateCompany)
	companies.DELETE("/:id", h.DeleteCompany)

	leads := e.Group("/leads", requireSession)
	leads.GET("", h.ListLeads)
	leads.POST("", h.CreateLead)
	leads.GET("/:id", h.GetLead)
	leads.PATCH("/:id", h.UpdateLead)
	leads.DELETE("/:id", h.DeleteLead)

	deals := e.Group("/deals", requireSession)
	deals.GET("", h.ListDeals)
	deals.POST("", h.CreateDeal)
	deals.GET("/:id", h.GetDeal)
	deals.PATCH("/:id", h.UpdateDeal)
	deals.DELETE("/:id", h.DeleteDeal)

	activities := e.Group("/activities", requireSession)
	activities.GET("", h.ListActivities)
	activities.POST("", h.CreateActivity)
	activities.GET("/:id", h.GetActivity)
	activities.PATCH("/:id", h.UpdateActivity)
	activities.DELETE("/:id", h.DeleteActivity)

	return e
}
