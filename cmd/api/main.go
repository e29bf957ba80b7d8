// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Command api serves the Yomira CMS HTTP API and runs its background sweeps.

Startup order: logger, configuration, PostgreSQL, Redis, migrations, domain
wiring, then the HTTP server and job runner. SIGINT or SIGTERM drains both.
*/
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/yomira-cms/internal/api"
	"github.com/taibuivan/yomira-cms/internal/core/access"
	"github.com/taibuivan/yomira-cms/internal/core/category"
	"github.com/taibuivan/yomira-cms/internal/core/comment"
	"github.com/taibuivan/yomira-cms/internal/core/menu"
	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/core/page"
	"github.com/taibuivan/yomira-cms/internal/core/post"
	"github.com/taibuivan/yomira-cms/internal/core/tag"
	"github.com/taibuivan/yomira-cms/internal/jobs"
	"github.com/taibuivan/yomira-cms/internal/platform/clock"
	"github.com/taibuivan/yomira-cms/internal/platform/config"
	"github.com/taibuivan/yomira-cms/internal/platform/constants"
	"github.com/taibuivan/yomira-cms/internal/platform/middleware"
	"github.com/taibuivan/yomira-cms/internal/platform/migration"
	pgstore "github.com/taibuivan/yomira-cms/internal/platform/postgres"
	redisstore "github.com/taibuivan/yomira-cms/internal/platform/redis"
	"github.com/taibuivan/yomira-cms/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, cfg.PoolOptions(), log)
	must(log, err, "connect to postgres")
	defer pool.Close()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error("redis_close_failed", slog.Any("error", err))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.Up(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Authentication & Authorization ─────────────────────────────────
	verifier, err := sec.NewTokenVerifier(cfg.JWTPubKeyPath, cfg.JWTIssuer)
	must(log, err, "load jwt public key")

	systemClock := clock.System{}

	accessService, err := access.NewService(access.NewPostgresRepository(pool), cfg.PermissionCacheSize, cfg.PermissionCacheTTL, systemClock, log)
	must(log, err, "initialize access service")
	guard := middleware.NewGuard(accessService)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	owners := owner.NewRegistry()

	categoryService := category.NewService(category.NewPostgresRepository(pool), systemClock, log)
	tagService := tag.NewService(tag.NewPostgresRepository(pool, log), systemClock, log)
	postService := post.NewService(post.NewPostgresRepository(pool), tagService, categoryService, systemClock, log)
	pageService := page.NewService(page.NewPostgresRepository(pool), systemClock, log)

	owners.Register(owner.TypePost, postService)
	owners.Register(owner.TypePage, pageService)

	commentService := comment.NewService(comment.NewPostgresRepository(pool, log), owners, systemClock, log)
	menuService := menu.NewService(menu.NewPostgresRepository(pool), owners, systemClock, log)

	// ── 8. Background Jobs ────────────────────────────────────────────────
	runner := jobs.NewRunner(redisstore.NewLocker(rdb, constants.RedisPrefixLock), log,
		jobs.PublishSweep(cfg.PublishSweepInterval, map[owner.Type]jobs.Promoter{
			owner.TypePost: postService,
			owner.TypePage: pageService,
		}, log),
		jobs.TagReconcile(cfg.TagReconcileInterval, tagService),
	)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(log,
		api.Check{Name: "postgres", Probe: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
		api.Check{Name: "redis", Probe: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	server := api.NewServer(cfg, log, verifier, limiter, api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Posts:      post.NewHandler(postService, guard),
		Pages:      page.NewHandler(pageService, guard),
		Categories: category.NewHandler(categoryService, guard),
		Tags:       tag.NewHandler(tagService, guard),
		Comments:   comment.NewHandler(commentService, guard),
		Menus:      menu.NewHandler(menuService, accessService, guard),
		Access:     access.NewHandler(accessService, guard),
	})

	// ── 10. Run & Graceful Shutdown ───────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go limiter.Sweep(ctx, constants.RateLimitCleanupInterval)
	runner.Start(ctx)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		log.Error("server_failed", slog.Any("error", err))
	}
	stop()

	log.Info("shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
	}
	runner.Wait()

	log.Info("server_stopped")
}

func newLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String(constants.FieldApp, constants.AppName))
	slog.SetDefault(logger)
	return logger
}

// must aborts startup on err. Only used before the server starts.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failed", slog.String("step", step), slog.Any("error", err))
		os.Exit(1)
	}
}
