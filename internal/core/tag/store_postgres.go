// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/core/publication"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/database/schema"
	"github.com/taibuivan/yomira-cms/internal/platform/dberr"
	"github.com/taibuivan/yomira-cms/internal/platform/metrics"
	"github.com/taibuivan/yomira-cms/internal/platform/postgres"
)

var selectColumns = strings.Join(schema.CoreTag.Columns(), ", ")

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresRepository constructs a PostgreSQL backed tag store.
func NewPostgresRepository(pool *pgxpool.Pool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{pool: pool, logger: logger}
}

// # Reads

// FindByID returns a single tag.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns, schema.CoreTag.Table, schema.CoreTag.ID)

	tag, err := scanTag(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapNotFound(err, "find_tag")
	}
	return tag, nil
}

// FindBySlug returns the tag owning slug, ignoring case.
func (repository *PostgresRepository) FindBySlug(ctx context.Context, slug string) (*Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(%s) = lower($1)`, selectColumns, schema.CoreTag.Table, schema.CoreTag.Slug)

	tag, err := scanTag(repository.pool.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, wrapNotFound(err, "find_tag_by_slug")
	}
	return tag, nil
}

// List returns a filtered page of tags ordered by name.
func (repository *PostgresRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*Tag, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total_count FROM %s WHERE TRUE`,
		selectColumns, schema.CoreTag.Table))

	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s ILIKE $%d", schema.CoreTag.Name, argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	if filter.Active != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", schema.CoreTag.IsActive, argID))
		args = append(args, *filter.Active)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s ASC LIMIT $%d OFFSET $%d", schema.CoreTag.Name, argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_tags")
	}
	defer rows.Close()

	tags := make([]*Tag, 0)
	total := 0
	for rows.Next() {
		tag, err := scanTag(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_tag")
		}
		tags = append(tags, tag)
	}

	return tags, total, dberr.Wrap(rows.Err(), "list_tags")
}

// Popular returns the most used active tags.
func (repository *PostgresRepository) Popular(ctx context.Context, limit int) ([]*Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = TRUE AND %s > 0 ORDER BY %s DESC, %s ASC LIMIT $1`,
		selectColumns, schema.CoreTag.Table,
		schema.CoreTag.IsActive, schema.CoreTag.UsageCount,
		schema.CoreTag.UsageCount, schema.CoreTag.Name,
	)

	rows, err := repository.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list_popular_tags")
	}
	defer rows.Close()

	tags := make([]*Tag, 0)
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_tag")
		}
		tags = append(tags, tag)
	}
	return tags, dberr.Wrap(rows.Err(), "list_popular_tags")
}

// All returns every tag ordered by id.
func (repository *PostgresRepository) All(ctx context.Context) ([]Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s`, selectColumns, schema.CoreTag.Table, schema.CoreTag.ID)

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_all_tags")
	}
	defer rows.Close()

	tags := make([]Tag, 0)
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_tag")
		}
		tags = append(tags, *tag)
	}
	return tags, dberr.Wrap(rows.Err(), "list_all_tags")
}

// SlugExists checks slug ownership, ignoring excludeID.
func (repository *PostgresRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE lower(%s) = lower($1) AND %s::text <> $2)`,
		schema.CoreTag.Table, schema.CoreTag.Slug, schema.CoreTag.ID)

	var exists bool
	if err := repository.pool.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "check_tag_slug")
	}
	return exists, nil
}

/*
Associations reads the post associations of the given tags together with the
publication state of each post.
*/
func (repository *PostgresRepository) Associations(ctx context.Context, ids []string) ([]Association, error) {
	var queryBuilder strings.Builder
	var args []any

	queryBuilder.WriteString(fmt.Sprintf(`SELECT pt.%s, p.%s, p.%s, p.%s FROM %s pt JOIN %s p ON p.%s = pt.%s`,
		schema.CorePostTag.TagID, schema.CorePost.ID, schema.CorePost.Status, schema.CorePost.PublishedAt,
		schema.CorePostTag.Table, schema.CorePost.Table, schema.CorePost.ID, schema.CorePostTag.PostID,
	))

	if len(ids) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" WHERE pt.%s = ANY($1::uuid[])", schema.CorePostTag.TagID))
		args = append(args, ids)
	}

	rows, err := repository.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_tag_associations")
	}
	defer rows.Close()

	associations := make([]Association, 0)
	for rows.Next() {
		var association Association
		var status string
		if err := rows.Scan(&association.TagID, &association.Content.ID, &status, &association.State.PublishAt); err != nil {
			return nil, dberr.Wrap(err, "scan_tag_association")
		}
		association.Content.Type = owner.TypePost
		association.State.Status = publication.Status(status)
		associations = append(associations, association)
	}
	return associations, dberr.Wrap(rows.Err(), "list_tag_associations")
}

// # Writes

// Create inserts t unless its slug is already taken.
func (repository *PostgresRepository) Create(ctx context.Context, tag *Tag) (bool, error) {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) ON CONFLICT DO NOTHING`,
		schema.CoreTag.Table, selectColumns)

	tagResult, err := repository.pool.Exec(ctx, query,
		tag.ID,
		tag.Name,
		tag.Slug,
		tag.SlugCustom,
		tag.Description,
		tag.Color,
		tag.IsActive,
		tag.UsageCount,
		tag.CreatedAt,
		tag.UpdatedAt,
	)
	if err != nil {
		return false, dberr.Wrap(err, "create_tag")
	}
	return tagResult.RowsAffected() == 1, nil
}

// Update persists the editable fields of t.
func (repository *PostgresRepository) Update(ctx context.Context, tag *Tag) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8 WHERE %s = $1`,
		schema.CoreTag.Table,
		schema.CoreTag.Name, schema.CoreTag.Slug, schema.CoreTag.SlugCustom,
		schema.CoreTag.Description, schema.CoreTag.Color, schema.CoreTag.IsActive,
		schema.CoreTag.UpdatedAt, schema.CoreTag.ID,
	)

	tagResult, err := repository.pool.Exec(ctx, query,
		tag.ID, tag.Name, tag.Slug, tag.SlugCustom, tag.Description, tag.Color, tag.IsActive, tag.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "update_tag")
	}
	if tagResult.RowsAffected() == 0 {
		return apperr.NotFound("Tag")
	}
	return nil
}

// Delete removes a tag; its post associations go with it.
func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreTag.Table, schema.CoreTag.ID)

	tagResult, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_tag")
	}
	if tagResult.RowsAffected() == 0 {
		return apperr.NotFound("Tag")
	}
	return nil
}

/*
AdjustUsage applies the attach/detach fast path.

Rows are locked in id order so two concurrent syncs touching overlapping tag
sets cannot deadlock.
*/
func (repository *PostgresRepository) AdjustUsage(ctx context.Context, ids []string, delta int) error {
	if len(ids) == 0 || delta == 0 {
		return nil
	}

	ordered := append([]string(nil), ids...)
	sort.Strings(ordered)

	lockQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		schema.CoreTag.UsageCount, schema.CoreTag.Table, schema.CoreTag.ID)
	updateQuery := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.CoreTag.Table, schema.CoreTag.UsageCount, schema.CoreTag.ID)

	return postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		for _, id := range ordered {
			var current int
			if err := tx.QueryRow(ctx, lockQuery, id).Scan(&current); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					continue
				}
				return dberr.Wrap(err, "lock_tag_usage")
			}

			next := current
			for step := 0; step < abs(delta); step++ {
				if delta > 0 {
					next = IncrementOnAttach(next)
					continue
				}

				var clamped bool
				if next, clamped = DecrementOnDetach(next); clamped {
					metrics.InvariantViolations.WithLabelValues("tag_usage").Inc()
					repository.logger.WarnContext(ctx, "invariant_violation",
						slog.String("counter", "tag_usage"),
						slog.String("target_id", id),
						slog.Int("stored", current),
						slog.Int("amount", delta),
					)
					break
				}
			}

			if _, err := tx.Exec(ctx, updateQuery, id, next); err != nil {
				return dberr.Wrap(err, "update_tag_usage")
			}
		}
		return nil
	})
}

// ApplyCorrections writes reconciled counts. Each write is conditional on
// the count Reconcile read, so a concurrent attach or detach is never
// overwritten; that tag is left for the next run.
func (repository *PostgresRepository) ApplyCorrections(ctx context.Context, corrections []Correction) ([]Correction, error) {
	if len(corrections) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1 AND %s = $3`,
		schema.CoreTag.Table, schema.CoreTag.UsageCount, schema.CoreTag.ID, schema.CoreTag.UsageCount)

	var applied []Correction
	err := postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, correction := range corrections {
			batch.Queue(query, correction.TagID, correction.To, correction.From)
		}

		results := tx.SendBatch(ctx, batch)
		for _, correction := range corrections {
			tag, err := results.Exec()
			if err != nil {
				results.Close()
				return dberr.Wrap(err, "apply_tag_corrections")
			}
			if tag.RowsAffected() == 1 {
				applied = append(applied, correction)
			}
		}
		return dberr.Wrap(results.Close(), "apply_tag_corrections")
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

// # Internal Helpers

// scanTag reads one row in [schema.CoreTagTable.Columns] order.
func scanTag(row pgx.Row, extra ...any) (*Tag, error) {
	tag := &Tag{}
	destinations := []any{
		&tag.ID,
		&tag.Name,
		&tag.Slug,
		&tag.SlugCustom,
		&tag.Description,
		&tag.Color,
		&tag.IsActive,
		&tag.UsageCount,
		&tag.CreatedAt,
		&tag.UpdatedAt,
	}

	if err := row.Scan(append(destinations, extra...)...); err != nil {
		return nil, err
	}
	return tag, nil
}

func wrapNotFound(err error, action string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Tag")
	}
	return dberr.Wrap(err, action)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
