// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WithTx runs fn inside a transaction.
//
// The transaction commits when fn returns nil and rolls back otherwise. Errors
// returned by fn are passed through unchanged so domain errors keep their code.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	transaction, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}

	// Rollback after Commit is a no-op.
	defer transaction.Rollback(ctx)

	if err := fn(transaction); err != nil {
		return err
	}

	if err := transaction.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: failed to commit transaction: %w", err)
	}
	return nil
}

// WithLockedTx runs fn inside a transaction holding the advisory lock named
// key. The lock is released at commit or rollback.
func WithLockedTx(ctx context.Context, pool *pgxpool.Pool, key string, fn func(tx pgx.Tx) error) error {
	return WithTx(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text))`, key); err != nil {
			return fmt.Errorf("postgres: failed to take lock %q: %w", key, err)
		}
		return fn(tx)
	})
}
