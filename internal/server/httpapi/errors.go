package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/milktracker/internal/common"
	"github.com/dmitrijs2005/milktracker/internal/models"
	"github.com/labstack/echo/v4"
)

// statusFor maps an error to an HTTP status and the detail shown to
// clients. Unknown errors are internal and keep their text private.
func statusFor(err error) (int, string) {
	var be *echo.BindingError
	if errors.As(err, &be) {
		return http.StatusBadRequest, fmt.Sprintf("Invalid value for %s", be.Field)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, http.StatusText(he.Code)
	}

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrorNotFound):
		code = http.StatusNotFound
	case errors.Is(err, common.ErrorAlreadyExists), errors.Is(err, common.ErrorValidation):
		code = http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized):
		code = http.StatusUnauthorized
	}
	if code == http.StatusInternalServerError {
		return code, "Internal server error"
	}

	var ce *common.Error
	if errors.As(err, &ce) {
		return code, ce.Detail
	}
	return code, http.StatusText(code)
}

// errorHandler renders every failure as {"detail": "..."}.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, detail := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "request failed", "path", c.Request().URL.Path, "error", err)
	}
	if code == http.StatusUnauthorized {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, models.Detail{Detail: detail})
	}
	if werr != nil {
		s.logger.Error(c.Request().Context(), "write error response", "error", werr)
	}
}
