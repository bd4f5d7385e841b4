// Package httpapi exposes the milk tracker REST API over echo.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/milktracker/internal/logging"
	"github.com/dmitrijs2005/milktracker/internal/server/config"
	"github.com/dmitrijs2005/milktracker/internal/server/services"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address string
	users   *services.UserService
	herds   *services.HerdService
	milk    *services.MilkService
	logger  logging.Logger
	echo    *echo.Echo
}

func NewServer(cfg *config.Config, l logging.Logger, us *services.UserService, hs *services.HerdService, ms *services.MilkService) *Server {
	s := &Server{
		address: cfg.EndpointAddr,
		users:   us,
		herds:   hs,
		milk:    ms,
		logger:  l.With("module", "http_server"),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	SetLogLevel(e, cfg.LogLevel)
	e.HTTPErrorHandler = s.errorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(s.logRequests)
	e.Use(observeRequests)
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))

	s.echo = e
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo

	e.GET("/", s.welcome)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	a := api.Group("/auth")
	a.POST("/register", s.register)
	a.POST("/token", s.token)

	u := api.Group("/users", s.requireUser)
	u.GET("/me", s.me)
	u.PUT("/profile", s.updateProfile)
	u.PUT("/membership", s.updateMembership)
	u.DELETE("", s.deleteAccount)

	h := api.Group("/herds", s.requireUser)
	h.GET("", s.listHerds)
	h.POST("", s.createHerd)
	h.GET("/:id", s.getHerd)
	h.PUT("/:id", s.updateHerd)
	h.DELETE("/:id", s.deleteHerd)

	m := api.Group("/milk-production", s.requireUser)
	m.GET("", s.listRecords)
	m.POST("", s.createRecord)
	m.GET("/stats", s.stats)
	m.GET("/export", s.export)
	m.GET("/:id", s.getRecord)
	m.PUT("/:id", s.updateRecord)
	m.DELETE("/:id", s.deleteRecord)
}

// Handler returns the configured echo instance as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) welcome(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Welcome to the Dairy Milk Tracker API"})
}
