package apperror

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/minicrm/pkg/logger"
	"go.uber.org/zap"
)

// Body is the error payload nested under "error".
type Body struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Response is the wire shape of every error.
type Response struct {
	Error Body `json:"error"`
}

// HTTPErrorHandler is installed as echo's error handler so every failure,
// including router misses and panics recovered by middleware, leaves the
// server in the same shape.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	appErr := toAppError(err)
	log := logger.FromEcho(c)
	if appErr.Kind == KindInternal {
		log.Error("Request failed", zap.Error(err))
	} else {
		log.Debug("Request rejected",
			zap.String("code", appErr.Kind.Code()),
			zap.String("message", appErr.Message),
			zap.NamedError("cause", appErr.Err))
	}

	status := appErr.Kind.Status()
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, Response{Error: Body{
			Code:    appErr.Kind.Code(),
			Message: appErr.Message,
			Fields:  appErr.Fields,
		}})
	}
	if err != nil {
		log.Error("Failed to write error response", zap.Error(err))
	}
}

func toAppError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Kind == KindInternal {
			// Never leak the message of an internal failure.
			return &Error{Kind: KindInternal, Message: "An unexpected error occurred", Err: appErr.Err}
		}
		return appErr
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.Code == http.StatusNotFound || httpErr.Code == http.StatusMethodNotAllowed:
			return Wrap(KindNotFound, "Endpoint not found", err)
		case httpErr.Code == http.StatusUnauthorized:
			return Wrap(KindUnauthenticated, "Authentication required", err)
		case httpErr.Code == http.StatusForbidden:
			return Wrap(KindOriginRejected, "Forbidden", err)
		case httpErr.Code >= 400 && httpErr.Code < 500:
			return Wrap(KindInvalidRequest, "Invalid request", err)
		}
	}

	return Wrap(KindInternal, "An unexpected error occurred", err)
}
