package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/minicrm/internal/apperror"
	"github.com/suteetoe/minicrm/pkg/logger"
	"go.uber.org/zap"
)

// OriginGuard rejects cross-site state-changing requests. When a POST, PUT,
// PATCH or DELETE carries both Origin and Host, the origin must be exactly
// http://<host>, https://<host> or one of allowed. Other requests pass.
func OriginGuard(allowed []string) echo.MiddlewareFunc {
	extra := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		extra[o] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !isStateChanging(req.Method) {
				return next(c)
			}

			origin := req.Header.Get(echo.HeaderOrigin)
			host := req.Host
			if origin == "" || host == "" {
				return next(c)
			}

			if origin == "http://"+host || origin == "https://"+host {
				return next(c)
			}
			if _, ok := extra[origin]; ok {
				return next(c)
			}

			logger.FromEcho(c).Warn("Rejected cross-origin request",
				zap.String("origin", origin),
				zap.String("host", host),
				zap.String("method", req.Method))
			return apperror.New(apperror.KindOriginRejected, "Invalid origin")
		}
	}
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
