// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-cms/internal/core/category"
	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/core/page"
	"github.com/taibuivan/yomira-cms/internal/core/post"
	"github.com/taibuivan/yomira-cms/internal/core/tag"
	"github.com/taibuivan/yomira-cms/internal/jobs"
	"github.com/taibuivan/yomira-cms/internal/platform/clock"
	"github.com/taibuivan/yomira-cms/internal/platform/config"
	"github.com/taibuivan/yomira-cms/internal/platform/constants"
	"github.com/taibuivan/yomira-cms/internal/platform/migration"
	pgstore "github.com/taibuivan/yomira-cms/internal/platform/postgres"
	redisstore "github.com/taibuivan/yomira-cms/internal/platform/redis"
)

// commandTimeout bounds a single sweep run.
const commandTimeout = 5 * time.Minute

// # Migrations

func newMigrateCmd(logger *slog.Logger) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return migration.Up(cfg.DatabaseURL, cfg.MigrationPath, logger)
		},
	})

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return migration.Down(cfg.DatabaseURL, cfg.MigrationPath, steps, logger)
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")
	migrateCmd.AddCommand(downCmd)

	return migrateCmd
}

// # Sweeps

func newSweepCmd(logger *slog.Logger) *cobra.Command {
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a background sweep once, under its distributed lock",
	}

	sweepCmd.AddCommand(&cobra.Command{
		Use:   "publish",
		Short: "Publish scheduled posts and pages that have come due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweep(cmd, logger, func(env *environment) jobs.Job {
				return jobs.PublishSweep(commandTimeout, map[owner.Type]jobs.Promoter{
					owner.TypePost: env.posts,
					owner.TypePage: env.pages,
				}, logger)
			})
		},
	})

	sweepCmd.AddCommand(&cobra.Command{
		Use:   "tags",
		Short: "Recompute tag usage counts from live posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweep(cmd, logger, func(env *environment) jobs.Job {
				return jobs.TagReconcile(commandTimeout, env.tags)
			})
		},
	})

	return sweepCmd
}

// environment is the subset of the server wiring the sweeps need.
type environment struct {
	runner *jobs.Runner
	posts  *post.Service
	pages  *page.Service
	tags   *tag.Service
	close  func()
}

func connect(ctx context.Context, logger *slog.Logger) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, cfg.PoolOptions(), logger)
	if err != nil {
		return nil, err
	}
	rdb, err := redisstore.NewClient(ctx, cfg.RedisURL, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	systemClock := clock.System{}
	tags := tag.NewService(tag.NewPostgresRepository(pool, logger), systemClock, logger)
	categories := category.NewService(category.NewPostgresRepository(pool), systemClock, logger)

	return &environment{
		runner: jobs.NewRunner(redisstore.NewLocker(rdb, constants.RedisPrefixLock), logger),
		posts:  post.NewService(post.NewPostgresRepository(pool), tags, categories, systemClock, logger),
		pages:  page.NewService(page.NewPostgresRepository(pool), systemClock, logger),
		tags:   tags,
		close: func() {
			_ = rdb.Close()
			pool.Close()
		},
	}, nil
}

func runSweep(cmd *cobra.Command, logger *slog.Logger, build func(*environment) jobs.Job) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	env, err := connect(ctx, logger)
	if err != nil {
		return err
	}
	defer env.close()

	job := build(env)
	ran, err := env.runner.RunOnce(ctx, job)
	if err != nil {
		return err
	}
	if !ran {
		return fmt.Errorf("%s is already running elsewhere", job.Name)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s completed\n", job.Name)
	return nil
}
