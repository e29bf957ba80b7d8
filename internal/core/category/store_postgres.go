// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/database/schema"
	"github.com/taibuivan/yomira-cms/internal/platform/dberr"
	"github.com/taibuivan/yomira-cms/internal/platform/postgres"
)

var selectColumns = strings.Join(schema.CoreCategory.Columns(), ", ")

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed category store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// All returns every category.
func (repository *PostgresRepository) All(ctx context.Context) ([]Category, error) {
	return listAll(ctx, repository.pool)
}

// FindByID returns a single category.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns, schema.CoreCategory.Table, schema.CoreCategory.ID)

	category, err := scanCategory(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapNotFound(err, "find_category")
	}
	return category, nil
}

// FindBySlug returns the category owning slug.
func (repository *PostgresRepository) FindBySlug(ctx context.Context, slug string) (*Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns, schema.CoreCategory.Table, schema.CoreCategory.Slug)

	category, err := scanCategory(repository.pool.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, wrapNotFound(err, "find_category_by_slug")
	}
	return category, nil
}

// Create inserts a category.
func (repository *PostgresRepository) Create(ctx context.Context, category *Category) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		schema.CoreCategory.Table, selectColumns)

	_, err := repository.pool.Exec(ctx, query,
		category.ID, category.ParentID, category.Name, category.Slug, category.SlugCustom,
		category.Description, category.Color, category.IsActive, category.SortOrder,
		category.CreatedAt, category.UpdatedAt,
	)
	return dberr.Wrap(err, "create_category")
}

// Update writes every mutable column except the parent.
func (repository *PostgresRepository) Update(ctx context.Context, category *Category) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9
		WHERE %s = $1`,
		schema.CoreCategory.Table,
		schema.CoreCategory.Name, schema.CoreCategory.Slug,
		schema.CoreCategory.SlugCustom, schema.CoreCategory.Description, schema.CoreCategory.Color,
		schema.CoreCategory.IsActive, schema.CoreCategory.SortOrder, schema.CoreCategory.UpdatedAt,
		schema.CoreCategory.ID,
	)

	tag, err := repository.pool.Exec(ctx, query,
		category.ID, category.Name, category.Slug, category.SlugCustom,
		category.Description, category.Color, category.IsActive, category.SortOrder, category.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "update_category")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Category")
	}
	return nil
}

// Move loads the tree and writes the planned node under one advisory lock.
func (repository *PostgresRepository) Move(ctx context.Context, plan MovePlan) (*Category, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4 WHERE %s = $1`,
		schema.CoreCategory.Table, schema.CoreCategory.ParentID, schema.CoreCategory.SortOrder,
		schema.CoreCategory.UpdatedAt, schema.CoreCategory.ID)

	var moved *Category
	err := postgres.WithLockedTx(ctx, repository.pool, schema.CoreCategory.Table, func(tx pgx.Tx) error {
		categories, err := listAll(ctx, tx)
		if err != nil {
			return err
		}

		category, err := plan(categories)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, query, category.ID, category.ParentID, category.SortOrder, category.UpdatedAt)
		if err != nil {
			return dberr.Wrap(err, "move_category")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Category")
		}

		moved = category
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// DeleteMany detaches posts from the categories and removes them.
func (repository *PostgresRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	detach := fmt.Sprintf(`UPDATE %s SET %s = NULL WHERE %s = ANY($1::uuid[])`,
		schema.CorePost.Table, schema.CorePost.CategoryID, schema.CorePost.CategoryID)

	remove := fmt.Sprintf(`DELETE FROM %s WHERE %s = ANY($1::uuid[])`, schema.CoreCategory.Table, schema.CoreCategory.ID)

	return postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, detach, ids); err != nil {
			return dberr.Wrap(err, "detach_category_posts")
		}
		if _, err := tx.Exec(ctx, remove, ids); err != nil {
			return dberr.Wrap(err, "delete_categories")
		}
		return nil
	})
}

// SlugExists checks slug ownership, ignoring excludeID.
func (repository *PostgresRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s::text <> $2)`,
		schema.CoreCategory.Table, schema.CoreCategory.Slug, schema.CoreCategory.ID)

	var exists bool
	if err := repository.pool.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "check_category_slug")
	}
	return exists, nil
}

// # Internal Helpers

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listAll(ctx context.Context, db querier) ([]Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s, %s`,
		selectColumns, schema.CoreCategory.Table, schema.CoreCategory.SortOrder, schema.CoreCategory.CreatedAt)

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_categories")
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_category")
		}
		categories = append(categories, *category)
	}
	return categories, dberr.Wrap(rows.Err(), "list_categories")
}

func scanCategory(row pgx.Row) (*Category, error) {
	category := &Category{}
	err := row.Scan(
		&category.ID,
		&category.ParentID,
		&category.Name,
		&category.Slug,
		&category.SlugCustom,
		&category.Description,
		&category.Color,
		&category.IsActive,
		&category.SortOrder,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return category, nil
}

func wrapNotFound(err error, action string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Category")
	}
	return dberr.Wrap(err, action)
}
