// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api assembles the router, the middleware chain and every domain
handler into a runnable [http.Server].
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taibuivan/yomira-cms/internal/platform/config"
	"github.com/taibuivan/yomira-cms/internal/platform/constants"
	"github.com/taibuivan/yomira-cms/internal/platform/middleware"
)

// Router is implemented by every domain handler.
type Router interface {
	Routes() chi.Router
}

// Handlers groups the probes and the domain handlers mounted under /api/v1.
type Handlers struct {
	Liveness  http.HandlerFunc
	Readiness http.HandlerFunc

	Posts      Router
	Pages      Router
	Categories Router
	Tags       Router
	Comments   Router
	Menus      Router
	Access     Router
}

// Server owns the HTTP listener.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds the router. limiter may be nil to disable rate limiting.
func NewServer(cfg *config.Config, logger *slog.Logger, verifier middleware.TokenVerifier, limiter *middleware.RateLimiter, handlers Handlers) *Server {
	return &Server{
		logger: logger,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           NewRouter(cfg, logger, verifier, limiter, handlers),
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// NewRouter returns the full handler tree.
func NewRouter(cfg middleware.AppConfig, logger *slog.Logger, verifier middleware.TokenVerifier, limiter *middleware.RateLimiter, handlers Handlers) chi.Router {
	router := chi.NewRouter()

	// # Middleware Chain
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.Metrics)
	router.Use(middleware.PanicRecovery(logger))
	router.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	if limiter != nil {
		router.Use(limiter.Middleware)
	}
	router.Use(middleware.CORS(cfg))
	router.Use(chimw.CleanPath)

	// # Infrastructure
	router.Get("/health", handlers.Liveness)
	router.Get("/ready", handlers.Readiness)
	router.Handle("/metrics", promhttp.Handler())

	// # Application API
	router.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Authenticate(verifier))

		mount(api, "/posts", handlers.Posts)
		mount(api, "/pages", handlers.Pages)
		mount(api, "/categories", handlers.Categories)
		mount(api, "/tags", handlers.Tags)
		mount(api, "/comments", handlers.Comments)
		mount(api, "/menus", handlers.Menus)
		mount(api, "/access", handlers.Access)
	})

	return router
}

func mount(router chi.Router, pattern string, handler Router) {
	if handler != nil {
		router.Mount(pattern, handler.Routes())
	}
}

// ListenAndServe blocks until the server stops.
func (server *Server) ListenAndServe() error {
	server.logger.Info("server_starting", slog.String("addr", server.httpServer.Addr))
	return server.httpServer.ListenAndServe()
}

// Shutdown waits up to timeout for in-flight requests.
func (server *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return server.httpServer.Shutdown(ctx)
}
