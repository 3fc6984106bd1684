package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/minicrm/internal/apperror"
	"github.com/suteetoe/minicrm/internal/middleware"
	"github.com/suteetoe/minicrm/internal/model"
	"github.com/suteetoe/minicrm/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserResponse wraps the public user of the auth endpoints.
type UserResponse struct {
	User model.PublicUser `json:"user"`
}

var errInvalidCredentials = apperror.New(apperror.KindInvalidCredentials, "Invalid email or password")

// Login checks the credentials and starts a session cookie. Unknown email and
// wrong password are indistinguishable to the client.
func (h *Handler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()

	var req LoginRequest
	if _, err := h.decode(c, &req); err != nil {
		h.metrics.RecordLogin("invalid_request")
		return err
	}

	user, err := h.store.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			log.Info("Login with unknown email")
			h.metrics.RecordLogin("invalid_credentials")
			return errInvalidCredentials
		}
		h.metrics.RecordLogin("error")
		return err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	if err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.Error("Stored password hash is unusable", zap.String("user_id", user.ID), zap.Error(err))
		} else {
			log.Info("Login with wrong password", zap.String("user_id", user.ID))
		}
		h.metrics.RecordLogin("invalid_credentials")
		return errInvalidCredentials
	}

	token, err := h.tokens.Issue(user.ID, user.Email, string(user.Role))
	if err != nil {
		h.metrics.RecordLogin("error")
		return apperror.Wrap(apperror.KindInternal, "Failed to issue token", err)
	}

	c.SetCookie(middleware.SessionCookieFor(token, h.cookie))
	h.metrics.RecordLogin("success")
	log.Info("User logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	return c.JSON(http.StatusOK, UserResponse{User: user.Public()})
}

// Logout clears the session cookie. It always succeeds; when a denylist is
// configured the presented token is also revoked until it expires.
func (h *Handler) Logout(c echo.Context) error {
	if token := middleware.SessionToken(c); token != "" {
		if err := h.tokens.Revoke(c.Request().Context(), token); err != nil {
			logger.FromEcho(c).Warn("Failed to revoke token", zap.Error(err))
		}
	}
	c.SetCookie(middleware.ExpiredSessionCookie(h.cookie))
	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// Me returns the signed in user. The user row is read so a deleted account
// answers NOT_FOUND even while its token is still valid.
func (h *Handler) Me(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		return apperror.New(apperror.KindUnauthenticated, "Authentication required")
	}

	user, err := h.store.Users.FindByID(c.Request().Context(), claims.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserResponse{User: user.Public()})
}
