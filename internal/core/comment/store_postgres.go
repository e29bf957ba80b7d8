// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package comment provides the PostgreSQL implementation of comment storage.

Counter maintenance relies on row locks rather than blind increments: each
mutation locks the comment rows it touches (and, through [applyDeltas], the
counter rows it adjusts) with SELECT ... FOR UPDATE inside one transaction.
Floors are computed in Go by [ApplyCounter] so that a clamp can be logged.
*/
package comment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/database/schema"
	"github.com/taibuivan/yomira-cms/internal/platform/dberr"
	"github.com/taibuivan/yomira-cms/internal/platform/metrics"
	"github.com/taibuivan/yomira-cms/internal/platform/postgres"
	"github.com/taibuivan/yomira-cms/pkg/pointer"
)

// counterColumn locates one cached counter.
type counterColumn struct {
	table  string
	id     string
	column string
}

// ownerCounters maps each owner type to its approved-comments column.
var ownerCounters = map[owner.Type]counterColumn{
	owner.TypePost: {schema.CorePost.Table, schema.CorePost.ID, schema.CorePost.CommentCount},
	owner.TypePage: {schema.CorePage.Table, schema.CorePage.ID, schema.CorePage.CommentCount},
}

var commentCounters = map[Counter]counterColumn{
	CounterReplies: {schema.SocialComment.Table, schema.SocialComment.ID, schema.SocialComment.ReplyCount},
	CounterLikes:   {schema.SocialComment.Table, schema.SocialComment.ID, schema.SocialComment.LikeCount},
}

var selectColumns = strings.Join(schema.SocialComment.Columns(), ", ")

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresRepository constructs a PostgreSQL backed comment store.
func NewPostgresRepository(pool *pgxpool.Pool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{pool: pool, logger: logger}
}

// # Reads

// FindByID returns a single comment.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Comment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns, schema.SocialComment.Table, schema.SocialComment.ID)

	comment, err := scanComment(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapNotFound(err, "find_comment")
	}
	return comment, nil
}

// ListThread returns every comment of an owner, oldest first.
func (repository *PostgresRepository) ListThread(ctx context.Context, ref owner.Ref) ([]Comment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 ORDER BY %s ASC, %s ASC`,
		selectColumns, schema.SocialComment.Table,
		schema.SocialComment.OwnerType, schema.SocialComment.OwnerID,
		schema.SocialComment.CreatedAt, schema.SocialComment.ID,
	)

	rows, err := repository.pool.Query(ctx, query, string(ref.Type), ref.ID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_comment_thread")
	}
	return collectThread(rows)
}

// List returns the moderation queue with the total row count.
func (repository *PostgresRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*Comment, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total_count FROM %s WHERE TRUE`,
		selectColumns, schema.SocialComment.Table))

	if filter.Status != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", schema.SocialComment.Status, argID))
		args = append(args, string(*filter.Status))
		argID++
	}

	if filter.Owner != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d AND %s = $%d",
			schema.SocialComment.OwnerType, argID, schema.SocialComment.OwnerID, argID+1))
		args = append(args, string(filter.Owner.Type), filter.Owner.ID)
		argID += 2
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s DESC LIMIT $%d OFFSET $%d",
		schema.SocialComment.CreatedAt, argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_comments")
	}
	defer rows.Close()

	comments := make([]*Comment, 0)
	total := 0
	for rows.Next() {
		comment, err := scanComment(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_comment")
		}
		comments = append(comments, comment)
	}

	return comments, total, dberr.Wrap(rows.Err(), "list_comments")
}

// # Writes

// Create inserts a comment and applies its creation deltas in one transaction.
func (repository *PostgresRepository) Create(ctx context.Context, comment *Comment, deltas []Delta) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		schema.SocialComment.Table, selectColumns)

	return postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			comment.ID,
			string(comment.Owner.Type),
			comment.Owner.ID,
			comment.ParentID,
			comment.Author.UserID,
			nullable(comment.Author.GuestName),
			nullable(comment.Author.GuestEmail),
			nullable(comment.Author.GuestWebsite),
			nullable(comment.Author.IPAddress),
			nullable(comment.Author.UserAgent),
			comment.Content,
			string(comment.Status),
			comment.ApprovedAt,
			comment.ApprovedBy,
			comment.LikesCount,
			comment.RepliesCount,
			comment.CreatedAt,
			comment.UpdatedAt,
		)
		if err != nil {
			return dberr.Wrap(err, "create_comment")
		}

		return repository.applyDeltas(ctx, tx, deltas)
	})
}

// Transition locks the comment, applies the state change and its deltas.
func (repository *PostgresRepository) Transition(ctx context.Context, id string, apply TransitionFunc) (*Comment, error) {
	lockQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		selectColumns, schema.SocialComment.Table, schema.SocialComment.ID)
	updateQuery := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5 WHERE %s = $1`,
		schema.SocialComment.Table,
		schema.SocialComment.Status, schema.SocialComment.ApprovedAt,
		schema.SocialComment.ApprovedBy, schema.SocialComment.UpdatedAt,
		schema.SocialComment.ID,
	)

	var result *Comment
	err := postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		current, err := scanComment(tx.QueryRow(ctx, lockQuery, id))
		if err != nil {
			return wrapNotFound(err, "lock_comment")
		}

		next, deltas, err := apply(*current)
		if err != nil {
			return err
		}

		// Same-status moves produce no write at all.
		if next.Status == current.Status && len(deltas) == 0 {
			result = current
			return nil
		}

		if _, err := tx.Exec(ctx, updateQuery, id, string(next.Status), next.ApprovedAt, next.ApprovedBy, next.UpdatedAt); err != nil {
			return dberr.Wrap(err, "update_comment_status")
		}

		if err := repository.applyDeltas(ctx, tx, deltas); err != nil {
			return err
		}

		result = &next
		return nil
	})

	return result, err
}

// Delete locks the whole thread, removes the planned subtree and applies the
// planned deltas.
func (repository *PostgresRepository) Delete(ctx context.Context, id string, plan PlanFunc) (DeletionPlan, error) {
	ownerQuery := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1`,
		schema.SocialComment.OwnerType, schema.SocialComment.OwnerID,
		schema.SocialComment.Table, schema.SocialComment.ID)
	threadQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 ORDER BY %s ASC, %s ASC FOR UPDATE`,
		selectColumns, schema.SocialComment.Table,
		schema.SocialComment.OwnerType, schema.SocialComment.OwnerID,
		schema.SocialComment.CreatedAt, schema.SocialComment.ID,
	)
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = ANY($1::uuid[])`,
		schema.SocialComment.Table, schema.SocialComment.ID)

	var result DeletionPlan
	err := postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		var ownerType, ownerID string
		if err := tx.QueryRow(ctx, ownerQuery, id).Scan(&ownerType, &ownerID); err != nil {
			return wrapNotFound(err, "find_comment_owner")
		}

		rows, err := tx.Query(ctx, threadQuery, ownerType, ownerID)
		if err != nil {
			return dberr.Wrap(err, "lock_comment_thread")
		}
		thread, err := collectThread(rows)
		if err != nil {
			return err
		}

		planned, err := plan(thread)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, deleteQuery, planned.Removed); err != nil {
			return dberr.Wrap(err, "delete_comments")
		}

		if err := repository.applyDeltas(ctx, tx, planned.Deltas); err != nil {
			return err
		}

		result = planned
		return nil
	})

	return result, err
}

// ApplyDeltas applies standalone counter deltas in one transaction.
func (repository *PostgresRepository) ApplyDeltas(ctx context.Context, deltas []Delta) error {
	return postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		return repository.applyDeltas(ctx, tx, deltas)
	})
}

// # Internal Helpers

// applyDeltas locks each counter row and writes the floored value.
func (repository *PostgresRepository) applyDeltas(ctx context.Context, tx pgx.Tx, deltas []Delta) error {
	for _, delta := range deltas {
		target, key, err := locate(delta)
		if err != nil {
			return err
		}

		var current int
		lockQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`, target.column, target.table, target.id)
		if err := tx.QueryRow(ctx, lockQuery, key).Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				repository.logger.WarnContext(ctx, "counter_target_missing",
					slog.String("counter", string(delta.Counter)),
					slog.String("target_id", key),
				)
				continue
			}
			return dberr.Wrap(err, "lock_counter")
		}

		next, clamped := ApplyCounter(current, delta.Amount)
		if clamped {
			metrics.InvariantViolations.WithLabelValues(string(delta.Counter)).Inc()
			repository.logger.WarnContext(ctx, "invariant_violation",
				slog.String("counter", string(delta.Counter)),
				slog.String("target_id", key),
				slog.Int("stored", current),
				slog.Int("amount", delta.Amount),
			)
		}

		updateQuery := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`, target.table, target.column, target.id)
		if _, err := tx.Exec(ctx, updateQuery, key, next); err != nil {
			return dberr.Wrap(err, "update_counter")
		}
	}
	return nil
}

func locate(delta Delta) (counterColumn, string, error) {
	if delta.Counter == CounterOwnerComments {
		target, ok := ownerCounters[delta.Owner.Type]
		if !ok {
			return counterColumn{}, "", apperr.Internal(fmt.Errorf("comment: no counter for owner type %q", delta.Owner.Type))
		}
		return target, delta.Owner.ID, nil
	}

	target, ok := commentCounters[delta.Counter]
	if !ok {
		return counterColumn{}, "", apperr.Internal(fmt.Errorf("comment: unknown counter %q", delta.Counter))
	}
	return target, delta.CommentID, nil
}

func collectThread(rows pgx.Rows) ([]Comment, error) {
	defer rows.Close()

	thread := make([]Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_comment")
		}
		thread = append(thread, *comment)
	}
	return thread, dberr.Wrap(rows.Err(), "list_comment_thread")
}

// scanComment reads one row in [schema.SocialCommentTable.Columns] order,
// followed by any extra destinations (window counts).
func scanComment(row pgx.Row, extra ...any) (*Comment, error) {
	comment := &Comment{}
	var ownerType, status string
	var guestName, guestEmail, guestWebsite, ipAddress, userAgent *string

	destinations := []any{
		&comment.ID,
		&ownerType,
		&comment.Owner.ID,
		&comment.ParentID,
		&comment.Author.UserID,
		&guestName,
		&guestEmail,
		&guestWebsite,
		&ipAddress,
		&userAgent,
		&comment.Content,
		&status,
		&comment.ApprovedAt,
		&comment.ApprovedBy,
		&comment.LikesCount,
		&comment.RepliesCount,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	}

	if err := row.Scan(append(destinations, extra...)...); err != nil {
		return nil, err
	}

	comment.Owner.Type = owner.Type(ownerType)
	comment.Status = Status(status)
	comment.Author.GuestName = pointer.Val(guestName)
	comment.Author.GuestEmail = pointer.Val(guestEmail)
	comment.Author.GuestWebsite = pointer.Val(guestWebsite)
	comment.Author.IPAddress = pointer.Val(ipAddress)
	comment.Author.UserAgent = pointer.Val(userAgent)

	return comment, nil
}

func wrapNotFound(err error, action string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Comment")
	}
	return dberr.Wrap(err, action)
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
