// Package middleware holds the request boundary: request ids, the session
// check and the origin guard.
package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/minicrm/internal/apperror"
	"github.com/suteetoe/minicrm/pkg/jwtutil"
	"github.com/suteetoe/minicrm/pkg/logger"
	"go.uber.org/zap"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "auth-token"

const userKey = "user"

// CookieConfig sets the attributes of the session cookie.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

// SessionCookieFor builds the cookie that carries token.
func SessionCookieFor(token string, cfg CookieConfig) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredSessionCookie builds the cookie that clears the session.
func ExpiredSessionCookie(cfg CookieConfig) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionToken returns the raw session token of the request, or "".
func SessionToken(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Auth rejects requests without a valid session token and stores the
// verified claims for handlers. Token verification never touches the
// database.
func Auth(tokens *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			token := SessionToken(c)
			if token == "" {
				log.Debug("Missing session cookie")
				return apperror.New(apperror.KindUnauthenticated, "Authentication required")
			}

			claims, err := tokens.Verify(c.Request().Context(), token)
			if err != nil {
				if !errors.Is(err, jwtutil.ErrInvalidToken) {
					return apperror.Wrap(apperror.KindInternal, "Failed to verify session", err)
				}
				log.Warn("Invalid or expired token", zap.Error(err))
				return apperror.Wrap(apperror.KindInvalidToken, "Invalid or expired token", err)
			}

			c.Set(userKey, claims)
			log.Debug("Session verified",
				zap.String("user_id", claims.UserID),
				zap.String("role", claims.Role))

			return next(c)
		}
	}
}

// CurrentUser returns the claims stored by Auth, or nil outside it.
func CurrentUser(c echo.Context) *jwtutil.UserClaims {
	claims, _ := c.Get(userKey).(*jwtutil.UserClaims)
	return claims
}
