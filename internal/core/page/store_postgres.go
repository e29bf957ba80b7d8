// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package page

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/core/publication"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/database/schema"
	"github.com/taibuivan/yomira-cms/internal/platform/dberr"
	"github.com/taibuivan/yomira-cms/internal/platform/postgres"
)

var selectColumns = strings.Join(schema.CorePage.Columns(), ", ")

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed page store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// # Reads

// All returns every page in sibling order.
func (repository *PostgresRepository) All(ctx context.Context) ([]Page, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s, %s`,
		selectColumns, schema.CorePage.Table, schema.CorePage.SortOrder, schema.CorePage.CreatedAt)

	return list(ctx, repository.pool, "list_pages", query)
}

// FindByID returns a single page.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Page, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns, schema.CorePage.Table, schema.CorePage.ID)

	page, err := scanPage(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapNotFound(err, "find_page")
	}
	return page, nil
}

// FindBySlug returns the page owning slug.
func (repository *PostgresRepository) FindBySlug(ctx context.Context, slug string) (*Page, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns, schema.CorePage.Table, schema.CorePage.Slug)

	page, err := scanPage(repository.pool.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, wrapNotFound(err, "find_page_by_slug")
	}
	return page, nil
}

// SlugExists checks slug ownership, ignoring excludeID.
func (repository *PostgresRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s::text <> $2)`,
		schema.CorePage.Table, schema.CorePage.Slug, schema.CorePage.ID)

	var exists bool
	if err := repository.pool.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "check_page_slug")
	}
	return exists, nil
}

// ListDue returns scheduled pages whose publish time has passed.
func (repository *PostgresRepository) ListDue(ctx context.Context, now time.Time) ([]Page, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s <= $2 ORDER BY %s`,
		selectColumns, schema.CorePage.Table, schema.CorePage.Status, schema.CorePage.PublishedAt,
		schema.CorePage.PublishedAt)

	return list(ctx, repository.pool, "list_due_pages", query, publication.StatusScheduled, now)
}

// # Writes

// Create inserts a page.
func (repository *PostgresRepository) Create(ctx context.Context, page *Page) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		schema.CorePage.Table, selectColumns)

	_, err := repository.pool.Exec(ctx, query,
		page.ID, page.ParentID, page.Title, page.Slug, page.SlugCustom, page.Excerpt, page.Content,
		page.SortOrder, page.Status, page.PublishAt, page.ShowInMenu, page.MenuTitle, page.Template,
		page.AuthorID, page.AllowComments, page.CommentCount, page.ViewCount, page.CreatedAt, page.UpdatedAt,
	)
	return dberr.Wrap(err, "create_page")
}

// Update writes the editable columns. Counters are owned by their domains,
// the parent by Move and the publication state by SwapState.
func (repository *PostgresRepository) Update(ctx context.Context, page *Page) error {
	t := schema.CorePage
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7,
			%s = $8, %s = $9, %s = $10, %s = $11, %s = $12
		WHERE %s = $1`,
		t.Table,
		t.Title, t.Slug, t.SlugCustom, t.Excerpt, t.Content, t.SortOrder,
		t.ShowInMenu, t.MenuTitle, t.Template, t.AllowComments, t.UpdatedAt,
		t.ID,
	)

	tag, err := repository.pool.Exec(ctx, query,
		page.ID, page.Title, page.Slug, page.SlugCustom, page.Excerpt, page.Content,
		page.SortOrder, page.ShowInMenu, page.MenuTitle, page.Template,
		page.AllowComments, page.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "update_page")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Page")
	}
	return nil
}

// SwapState is a compare-and-set on the status and publish time columns.
func (repository *PostgresRepository) SwapState(ctx context.Context, id string, expected, next publication.State, now time.Time) (bool, error) {
	t := schema.CorePage
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $4, %s = $5, %s = $6
		WHERE %s = $1 AND %s = $2 AND %s IS NOT DISTINCT FROM $3::timestamptz`,
		t.Table, t.Status, t.PublishedAt, t.UpdatedAt,
		t.ID, t.Status, t.PublishedAt)

	tag, err := repository.pool.Exec(ctx, query, id, expected.Status, expected.PublishAt, next.Status, next.PublishAt, now)
	if err != nil {
		return false, dberr.Wrap(err, "swap_page_state")
	}
	return tag.RowsAffected() == 1, nil
}

// Move loads the tree and writes the planned page under one advisory lock.
func (repository *PostgresRepository) Move(ctx context.Context, plan MovePlan) (*Page, error) {
	t := schema.CorePage
	all := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s, %s`, selectColumns, t.Table, t.SortOrder, t.CreatedAt)
	move := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4 WHERE %s = $1`,
		t.Table, t.ParentID, t.SortOrder, t.UpdatedAt, t.ID)

	var moved *Page
	err := postgres.WithLockedTx(ctx, repository.pool, t.Table, func(tx pgx.Tx) error {
		pages, err := list(ctx, tx, "list_pages", all)
		if err != nil {
			return err
		}

		page, err := plan(pages)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, move, page.ID, page.ParentID, page.SortOrder, page.UpdatedAt)
		if err != nil {
			return dberr.Wrap(err, "move_page")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Page")
		}

		moved = page
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// DeleteMany removes pages together with the comments they own.
func (repository *PostgresRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	comments := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = ANY($2::uuid[])`,
		schema.SocialComment.Table, schema.SocialComment.OwnerType, schema.SocialComment.OwnerID)

	pages := fmt.Sprintf(`DELETE FROM %s WHERE %s = ANY($1::uuid[])`, schema.CorePage.Table, schema.CorePage.ID)

	return postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, comments, owner.TypePage, ids); err != nil {
			return dberr.Wrap(err, "delete_page_comments")
		}
		if _, err := tx.Exec(ctx, pages, ids); err != nil {
			return dberr.Wrap(err, "delete_pages")
		}
		return nil
	})
}

// # Internal Helpers

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func list(ctx context.Context, db querier, action, query string, args ...any) ([]Page, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	defer rows.Close()

	pages := make([]Page, 0)
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_page")
		}
		pages = append(pages, *page)
	}
	return pages, dberr.Wrap(rows.Err(), action)
}

func scanPage(row pgx.Row) (*Page, error) {
	page := &Page{}
	var status string
	err := row.Scan(
		&page.ID,
		&page.ParentID,
		&page.Title,
		&page.Slug,
		&page.SlugCustom,
		&page.Excerpt,
		&page.Content,
		&page.SortOrder,
		&status,
		&page.PublishAt,
		&page.ShowInMenu,
		&page.MenuTitle,
		&page.Template,
		&page.AuthorID,
		&page.AllowComments,
		&page.CommentCount,
		&page.ViewCount,
		&page.CreatedAt,
		&page.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	page.Status = publication.Status(status)
	return page, nil
}

func wrapNotFound(err error, action string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Page")
	}
	return dberr.Wrap(err, action)
}
