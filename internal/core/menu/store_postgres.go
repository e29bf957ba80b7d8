// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/database/schema"
	"github.com/taibuivan/yomira-cms/internal/platform/dberr"
	"github.com/taibuivan/yomira-cms/internal/platform/postgres"
)

var (
	menuColumns = strings.Join(schema.NavMenu.Columns(), ", ")
	itemColumns = strings.Join(schema.NavMenuItem.Columns(), ", ")
)

// PostgresRepository implements [Repository] using pgx. Visibility rules are
// stored as a jsonb array.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed menu store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// # Menus

// FindByID returns a single menu.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Menu, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, menuColumns, schema.NavMenu.Table, schema.NavMenu.ID)

	menu, err := scanMenu(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapNotFound(err, "Menu", "find_menu")
	}
	return menu, nil
}

// FindBySlug returns the menu owning slug.
func (repository *PostgresRepository) FindBySlug(ctx context.Context, slug string) (*Menu, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, menuColumns, schema.NavMenu.Table, schema.NavMenu.Slug)

	menu, err := scanMenu(repository.pool.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, wrapNotFound(err, "Menu", "find_menu_by_slug")
	}
	return menu, nil
}

// List returns menus ordered by name, optionally narrowed by location.
func (repository *PostgresRepository) List(ctx context.Context, location *string, activeOnly bool) ([]*Menu, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s FROM %s WHERE TRUE`, menuColumns, schema.NavMenu.Table))

	if location != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", schema.NavMenu.Location, argID))
		args = append(args, *location)
		argID++
	}

	if activeOnly {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = TRUE", schema.NavMenu.IsActive))
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s ASC", schema.NavMenu.Name))

	rows, err := repository.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_menus")
	}
	defer rows.Close()

	menus := make([]*Menu, 0)
	for rows.Next() {
		menu, err := scanMenu(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_menu")
		}
		menus = append(menus, menu)
	}
	return menus, dberr.Wrap(rows.Err(), "list_menus")
}

// Create inserts a menu.
func (repository *PostgresRepository) Create(ctx context.Context, menu *Menu) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		schema.NavMenu.Table, menuColumns)

	_, err := repository.pool.Exec(ctx, query,
		menu.ID, menu.Name, menu.Slug, menu.SlugCustom, menu.Description,
		menu.Location, menu.IsActive, menu.CreatedAt, menu.UpdatedAt,
	)
	return dberr.Wrap(err, "create_menu")
}

// Update writes every mutable menu column.
func (repository *PostgresRepository) Update(ctx context.Context, menu *Menu) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8 WHERE %s = $1`,
		schema.NavMenu.Table,
		schema.NavMenu.Name, schema.NavMenu.Slug, schema.NavMenu.SlugCustom, schema.NavMenu.Description,
		schema.NavMenu.Location, schema.NavMenu.IsActive, schema.NavMenu.UpdatedAt,
		schema.NavMenu.ID,
	)

	tag, err := repository.pool.Exec(ctx, query,
		menu.ID, menu.Name, menu.Slug, menu.SlugCustom, menu.Description,
		menu.Location, menu.IsActive, menu.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "update_menu")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Menu")
	}
	return nil
}

// Delete removes a menu. Items go with it through the foreign key cascade.
func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.NavMenu.Table, schema.NavMenu.ID)

	tag, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_menu")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Menu")
	}
	return nil
}

// SlugExists checks slug ownership, ignoring excludeID.
func (repository *PostgresRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s::text <> $2)`,
		schema.NavMenu.Table, schema.NavMenu.Slug, schema.NavMenu.ID)

	var exists bool
	if err := repository.pool.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "check_menu_slug")
	}
	return exists, nil
}

// # Items

// Items returns every item of a menu ordered for stable tie-breaking.
func (repository *PostgresRepository) Items(ctx context.Context, menuID string) ([]Item, error) {
	return listItems(ctx, repository.pool, menuID)
}

// FindItem returns a single item.
func (repository *PostgresRepository) FindItem(ctx context.Context, id string) (*Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, itemColumns, schema.NavMenuItem.Table, schema.NavMenuItem.ID)

	item, err := scanItem(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapNotFound(err, "Menu item", "find_menu_item")
	}
	return item, nil
}

// CreateItem inserts an item.
func (repository *PostgresRepository) CreateItem(ctx context.Context, item *Item) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		schema.NavMenuItem.Table, itemColumns)

	linkType, linkID := splitLink(item.Link)
	_, err := repository.pool.Exec(ctx, query,
		item.ID, item.MenuID, item.ParentID, item.Title, item.URL, linkType, linkID, item.SortOrder,
		item.Target, item.CSSClass, item.Icon, item.IsActive, rulesOrEmpty(item.Rules), item.CreatedAt, item.UpdatedAt,
	)
	return dberr.Wrap(err, "create_menu_item")
}

// UpdateItem writes every mutable item column except the parent.
func (repository *PostgresRepository) UpdateItem(ctx context.Context, item *Item) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6,
			%s = $7, %s = $8, %s = $9, %s = $10, %s = $11, %s = $12
		WHERE %s = $1`,
		schema.NavMenuItem.Table,
		schema.NavMenuItem.Title, schema.NavMenuItem.URL,
		schema.NavMenuItem.LinkType, schema.NavMenuItem.LinkID, schema.NavMenuItem.SortOrder,
		schema.NavMenuItem.Target, schema.NavMenuItem.CSSClass, schema.NavMenuItem.Icon,
		schema.NavMenuItem.IsActive, schema.NavMenuItem.VisibilityRules, schema.NavMenuItem.UpdatedAt,
		schema.NavMenuItem.ID,
	)

	linkType, linkID := splitLink(item.Link)
	tag, err := repository.pool.Exec(ctx, query,
		item.ID, item.Title, item.URL, linkType, linkID, item.SortOrder,
		item.Target, item.CSSClass, item.Icon, item.IsActive, rulesOrEmpty(item.Rules), item.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "update_menu_item")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Menu item")
	}
	return nil
}

// MoveItem loads the menu's items and writes the planned item under an
// advisory lock scoped to that menu.
func (repository *PostgresRepository) MoveItem(ctx context.Context, menuID string, plan MovePlan) (*Item, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $3, %s = $4, %s = $5 WHERE %s = $1 AND %s = $2`,
		schema.NavMenuItem.Table, schema.NavMenuItem.ParentID, schema.NavMenuItem.SortOrder,
		schema.NavMenuItem.UpdatedAt, schema.NavMenuItem.ID, schema.NavMenuItem.MenuID)

	var moved *Item
	err := postgres.WithLockedTx(ctx, repository.pool, schema.NavMenuItem.Table+":"+menuID, func(tx pgx.Tx) error {
		items, err := listItems(ctx, tx, menuID)
		if err != nil {
			return err
		}

		item, err := plan(items)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, query, item.ID, menuID, item.ParentID, item.SortOrder, item.UpdatedAt)
		if err != nil {
			return dberr.Wrap(err, "move_menu_item")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Menu item")
		}

		moved = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// DeleteItems removes the given items in one statement.
func (repository *PostgresRepository) DeleteItems(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ANY($1::uuid[])`, schema.NavMenuItem.Table, schema.NavMenuItem.ID)

	_, err := repository.pool.Exec(ctx, query, ids)
	return dberr.Wrap(err, "delete_menu_items")
}

// # Internal Helpers

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listItems(ctx context.Context, db querier, menuID string) ([]Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s, %s`,
		itemColumns, schema.NavMenuItem.Table, schema.NavMenuItem.MenuID,
		schema.NavMenuItem.SortOrder, schema.NavMenuItem.CreatedAt,
	)

	rows, err := db.Query(ctx, query, menuID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_menu_items")
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_menu_item")
		}
		items = append(items, *item)
	}
	return items, dberr.Wrap(rows.Err(), "list_menu_items")
}

func scanMenu(row pgx.Row) (*Menu, error) {
	menu := &Menu{}
	err := row.Scan(
		&menu.ID,
		&menu.Name,
		&menu.Slug,
		&menu.SlugCustom,
		&menu.Description,
		&menu.Location,
		&menu.IsActive,
		&menu.CreatedAt,
		&menu.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return menu, nil
}

func scanItem(row pgx.Row) (*Item, error) {
	item := &Item{}
	var linkType, linkID *string

	err := row.Scan(
		&item.ID,
		&item.MenuID,
		&item.ParentID,
		&item.Title,
		&item.URL,
		&linkType,
		&linkID,
		&item.SortOrder,
		&item.Target,
		&item.CSSClass,
		&item.Icon,
		&item.IsActive,
		&item.Rules,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if linkType != nil && linkID != nil {
		item.Link = &owner.Ref{Type: owner.Type(*linkType), ID: *linkID}
	}
	if item.Rules == nil {
		item.Rules = []Rule{}
	}
	return item, nil
}

func splitLink(link *owner.Ref) (*string, *string) {
	if link == nil {
		return nil, nil
	}
	kind := string(link.Type)
	return &kind, &link.ID
}

// rulesOrEmpty keeps the jsonb column an array rather than SQL NULL.
func rulesOrEmpty(rules []Rule) []Rule {
	if rules == nil {
		return []Rule{}
	}
	return rules
}

func wrapNotFound(err error, resource, action string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}
	return dberr.Wrap(err, action)
}
