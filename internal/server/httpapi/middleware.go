package httpapi

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/milktracker/internal/common"
	"github.com/dmitrijs2005/milktracker/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const userKey = "user"

// requireUser resolves the bearer token to a user and stores it in the
// echo context. Missing or invalid tokens yield 401.
func (s *Server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(common.AuthorizationHeaderName)
		prefix := strings.ToLower(common.BearerScheme) + " "
		if len(header) <= len(prefix) || strings.ToLower(header[:len(prefix)]) != prefix {
			return common.NewError(common.ErrorUnauthorized, "Could not validate credentials")
		}

		u, err := s.users.Authenticate(c.Request().Context(), strings.TrimSpace(header[len(prefix):]))
		if err != nil {
			return err
		}
		c.Set(userKey, u)
		return next(c)
	}
}

func currentUser(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}

// logRequests writes one line per request through the application logger.
func (s *Server) logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		begin := time.Now()

		err := next(c)
		if err != nil {
			// let the error handler set the final status before logging
			c.Error(err)
		}

		s.logger.Info(req.Context(), "request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", c.Response().Status,
			"duration", time.Since(begin),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		)
		return nil
	}
}

// SetLogLevel maps a config level name onto echo's own logger.
func SetLogLevel(e *echo.Echo, level string) {
	switch strings.ToLower(level) {
	case "debug":
		e.Logger.SetLevel(log.DEBUG)
	case "info":
		e.Logger.SetLevel(log.INFO)
	case "warn", "":
		e.Logger.SetLevel(log.WARN)
	case "error":
		e.Logger.SetLevel(log.ERROR)
	case "off":
		e.Logger.SetLevel(log.OFF)
	default:
		e.Logger.SetLevel(log.WARN)
		e.Logger.Warnf("unknown loglevel: %s, falling back to warn", level)
	}
}
