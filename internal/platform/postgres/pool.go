// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package postgres opens the pgx pool every repository shares and runs
multi-statement writes in a transaction.
*/
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	minConns          = 2
	maxConnLifetime   = time.Hour
	maxConnIdleTime   = 10 * time.Minute
	healthCheckPeriod = time.Minute
	connectTimeout    = 5 * time.Second
	pingTimeout       = 2 * time.Second
)

// Options tunes the pool. Zero fields keep the pgx defaults.
type Options struct {
	MaxConns         int32
	StatementTimeout time.Duration
}

// NewPool connects and pings before returning, so a bad DSN fails startup.
func NewPool(ctx context.Context, dsn string, options Options, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid DSN: %w", err)
	}

	if options.MaxConns > 0 {
		poolConfig.MaxConns = options.MaxConns
	}
	poolConfig.MinConns = min(minConns, poolConfig.MaxConns)
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout

	if options.StatementTimeout > 0 {
		statement := fmt.Sprintf("SET statement_timeout = %d", options.StatementTimeout.Milliseconds())
		poolConfig.AfterConnect = func(ctx context.Context, connection *pgx.Conn) error {
			_, err := connection.Exec(ctx, statement)
			return err
		}
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := Ping(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	if err := prometheus.Register(newStatsCollector(pool)); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			logger.Warn("postgres_metrics_unavailable", slog.Any("error", err))
		}
	}

	logger.Info("postgres_connected",
		slog.Int("max_conns", int(poolConfig.MaxConns)),
		slog.Duration("statement_timeout", options.StatementTimeout),
	)
	return pool, nil
}

// Ping is used by the readiness probe.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}
