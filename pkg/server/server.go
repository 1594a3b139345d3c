// Package server assembles the HTTP surface: middleware chain, tracing, and
// route registration.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/pkg/middleware"
	deduperoutes "github.com/Ramsey-B/clover/pkg/routes/dedupe"
	"github.com/Ramsey-B/clover/pkg/routes/health"
	rulesetroutes "github.com/Ramsey-B/clover/pkg/routes/ruleset"
)

// Server wraps the echo instance with its lifecycle.
type Server struct {
	echo   *echo.Echo
	cfg    config.Config
	logger ectologger.Logger
}

// New builds the echo instance with the standard middleware chain and all
// routes registered. The health checker is registered separately so startup
// can flip readiness once dependencies are up.
func New(cfg config.Config, logger ectologger.Logger, checker *health.Checker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.HTTPErrorHandler = middleware.Error(logger)

	checker.RegisterRoutes(e)

	api := e.Group("/api/v1")
	rulesetroutes.Register(api.Group("/rulesets"))
	deduperoutes.Register(api.Group("/dedupe"))

	return &Server{
		echo:   e,
		cfg:    cfg,
		logger: logger,
	}
}

// Echo exposes the underlying echo instance for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// GetName implements the startup dependency interface
func (s *Server) GetName() string {
	return "http-server"
}

// DependsOn implements the startup dependency interface
func (s *Server) DependsOn() []string {
	return []string{"database"}
}

// Start begins serving in the background. Listen errors surface through the
// logger since the caller has already moved on.
func (s *Server) Start(ctx context.Context) error {
	s.echo.Server.ReadTimeout = time.Duration(s.cfg.HttpServerReadTimeoutSeconds) * time.Second
	s.echo.Server.WriteTimeout = time.Duration(s.cfg.HttpServerWriteTimeoutSeconds) * time.Second
	s.echo.Server.IdleTimeout = time.Duration(s.cfg.HttpServerIdleTimeoutSeconds) * time.Second
	s.echo.Server.ReadHeaderTimeout = time.Duration(s.cfg.ReadHeaderTimeoutSeconds) * time.Second
	s.echo.Server.MaxHeaderBytes = s.cfg.MaxHeaderBytes

	go func() {
		addr := fmt.Sprintf(":%d", s.cfg.Port)
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			s.logger.WithContext(ctx).WithError(err).Error("HTTP server stopped")
		}
	}()

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"port": s.cfg.Port,
	}).Info("HTTP server started")
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
