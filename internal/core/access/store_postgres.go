// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/database/schema"
	"github.com/taibuivan/yomira-cms/internal/platform/dberr"
	"github.com/taibuivan/yomira-cms/internal/platform/postgres"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed access store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// # Snapshots

/*
LoadUser reads an active account's direct permissions and roles in one
transaction so the snapshot is consistent.
*/
func (repository *PostgresRepository) LoadUser(ctx context.Context, userID string) (*User, error) {
	accountQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = TRUE`,
		schema.UserAccount.ID, schema.UserAccount.Table, schema.UserAccount.ID, schema.UserAccount.IsActive)

	directQuery := fmt.Sprintf(`SELECT p.%s FROM %s ap JOIN %s p ON p.%s = ap.%s WHERE ap.%s = $1 ORDER BY p.%s`,
		schema.UserPermission.Name,
		schema.UserAccountPermission.Table, schema.UserPermission.Table,
		schema.UserPermission.ID, schema.UserAccountPermission.PermissionID,
		schema.UserAccountPermission.AccountID, schema.UserPermission.Name,
	)

	roleQuery := fmt.Sprintf(`
		SELECT r.%s, r.%s, r.%s, r.%s, r.%s, p.%s
		FROM %s ar
		JOIN %s r ON r.%s = ar.%s
		LEFT JOIN %s rp ON rp.%s = r.%s
		LEFT JOIN %s p ON p.%s = rp.%s
		WHERE ar.%s = $1
		ORDER BY r.%s, p.%s`,
		schema.UserRole.ID, schema.UserRole.Name, schema.UserRole.DisplayName, schema.UserRole.Description, schema.UserRole.CreatedAt,
		schema.UserPermission.Name,
		schema.UserAccountRole.Table,
		schema.UserRole.Table, schema.UserRole.ID, schema.UserAccountRole.RoleID,
		schema.UserRolePermission.Table, schema.UserRolePermission.RoleID, schema.UserRole.ID,
		schema.UserPermission.Table, schema.UserPermission.ID, schema.UserRolePermission.PermissionID,
		schema.UserAccountRole.AccountID,
		schema.UserRole.Name, schema.UserPermission.Name,
	)

	user := &User{ID: userID, Permissions: []string{}, Roles: []Role{}}

	err := postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		var id string
		if err := tx.QueryRow(ctx, accountQuery, userID).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("Account")
			}
			return dberr.Wrap(err, "find_account")
		}

		rows, err := tx.Query(ctx, directQuery, userID)
		if err != nil {
			return dberr.Wrap(err, "list_account_permissions")
		}
		names, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return dberr.Wrap(err, "scan_account_permissions")
		}
		user.Permissions = append(user.Permissions, names...)

		rows, err = tx.Query(ctx, roleQuery, userID)
		if err != nil {
			return dberr.Wrap(err, "list_account_roles")
		}
		user.Roles, err = collectRoles(rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// # Catalogue

// ListRoles returns every role with its permissions, ordered by name.
func (repository *PostgresRepository) ListRoles(ctx context.Context) ([]Role, error) {
	query := fmt.Sprintf(`
		SELECT r.%s, r.%s, r.%s, r.%s, r.%s, p.%s
		FROM %s r
		LEFT JOIN %s rp ON rp.%s = r.%s
		LEFT JOIN %s p ON p.%s = rp.%s
		ORDER BY r.%s, p.%s`,
		schema.UserRole.ID, schema.UserRole.Name, schema.UserRole.DisplayName, schema.UserRole.Description, schema.UserRole.CreatedAt,
		schema.UserPermission.Name,
		schema.UserRole.Table,
		schema.UserRolePermission.Table, schema.UserRolePermission.RoleID, schema.UserRole.ID,
		schema.UserPermission.Table, schema.UserPermission.ID, schema.UserRolePermission.PermissionID,
		schema.UserRole.Name, schema.UserPermission.Name,
	)

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_roles")
	}
	return collectRoles(rows)
}

// ListPermissions returns every permission ordered by category and name.
func (repository *PostgresRepository) ListPermissions(ctx context.Context) ([]Permission, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s FROM %s ORDER BY %s, %s`,
		schema.UserPermission.ID, schema.UserPermission.Name, schema.UserPermission.DisplayName,
		schema.UserPermission.Description, schema.UserPermission.Category, schema.UserPermission.CreatedAt,
		schema.UserPermission.Table, schema.UserPermission.Category, schema.UserPermission.Name,
	)

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_permissions")
	}
	defer rows.Close()

	permissions := make([]Permission, 0)
	for rows.Next() {
		var permission Permission
		if err := rows.Scan(&permission.ID, &permission.Name, &permission.DisplayName,
			&permission.Description, &permission.Category, &permission.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_permission")
		}
		permissions = append(permissions, permission)
	}
	return permissions, dberr.Wrap(rows.Err(), "list_permissions")
}

// CreateRole inserts a role.
func (repository *PostgresRepository) CreateRole(ctx context.Context, role *Role) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5)`,
		schema.UserRole.Table,
		schema.UserRole.ID, schema.UserRole.Name, schema.UserRole.DisplayName, schema.UserRole.Description, schema.UserRole.CreatedAt,
	)

	_, err := repository.pool.Exec(ctx, query, role.ID, role.Name, role.DisplayName, role.Description, role.CreatedAt)
	return dberr.Wrap(err, "create_role")
}

// CreatePermission inserts a permission.
func (repository *PostgresRepository) CreatePermission(ctx context.Context, permission *Permission) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5, $6)`,
		schema.UserPermission.Table,
		schema.UserPermission.ID, schema.UserPermission.Name, schema.UserPermission.DisplayName,
		schema.UserPermission.Description, schema.UserPermission.Category, schema.UserPermission.CreatedAt,
	)

	_, err := repository.pool.Exec(ctx, query, permission.ID, permission.Name, permission.DisplayName,
		permission.Description, permission.Category, permission.CreatedAt)
	return dberr.Wrap(err, "create_permission")
}

// # Grants

// GrantPermission links an account to a permission.
func (repository *PostgresRepository) GrantPermission(ctx context.Context, userID, permission string) error {
	return repository.link(ctx, "grant_permission", accountPermissions, userID, permissionLookup, permission)
}

// RevokePermission unlinks an account from a permission.
func (repository *PostgresRepository) RevokePermission(ctx context.Context, userID, permission string) error {
	return repository.unlink(ctx, "revoke_permission", accountPermissions, userID, permissionLookup, permission)
}

// AssignRole links an account to a role.
func (repository *PostgresRepository) AssignRole(ctx context.Context, userID, role string) error {
	return repository.link(ctx, "assign_role", accountRoles, userID, roleLookup, role)
}

// RevokeRole unlinks an account from a role.
func (repository *PostgresRepository) RevokeRole(ctx context.Context, userID, role string) error {
	return repository.unlink(ctx, "revoke_role", accountRoles, userID, roleLookup, role)
}

// GiveRolePermission links a role to a permission.
func (repository *PostgresRepository) GiveRolePermission(ctx context.Context, role, permission string) error {
	roleID, err := repository.lookup(ctx, roleLookup, role)
	if err != nil {
		return err
	}
	return repository.link(ctx, "give_role_permission", rolePermissions, roleID, permissionLookup, permission)
}

// RevokeRolePermission unlinks a role from a permission.
func (repository *PostgresRepository) RevokeRolePermission(ctx context.Context, role, permission string) error {
	roleID, err := repository.lookup(ctx, roleLookup, role)
	if err != nil {
		return err
	}
	return repository.unlink(ctx, "revoke_role_permission", rolePermissions, roleID, permissionLookup, permission)
}

// # Internal Helpers

// nameLookup resolves a role or permission name to its id.
type nameLookup struct {
	resource string
	table    string
	id       string
	name     string
}

var (
	roleLookup       = nameLookup{"Role", schema.UserRole.Table, schema.UserRole.ID, schema.UserRole.Name}
	permissionLookup = nameLookup{"Permission", schema.UserPermission.Table, schema.UserPermission.ID, schema.UserPermission.Name}
)

// junction describes one of the many-to-many link tables.
type junction struct {
	table     string
	owner     string
	target    string
	createdAt string
}

var (
	accountPermissions = junction{
		schema.UserAccountPermission.Table, schema.UserAccountPermission.AccountID,
		schema.UserAccountPermission.PermissionID, schema.UserAccountPermission.CreatedAt,
	}
	accountRoles = junction{
		schema.UserAccountRole.Table, schema.UserAccountRole.AccountID,
		schema.UserAccountRole.RoleID, schema.UserAccountRole.CreatedAt,
	}
	rolePermissions = junction{
		schema.UserRolePermission.Table, schema.UserRolePermission.RoleID,
		schema.UserRolePermission.PermissionID, schema.UserRolePermission.CreatedAt,
	}
)

func (repository *PostgresRepository) lookup(ctx context.Context, target nameLookup, name string) (string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, target.id, target.table, target.name)

	var id string
	if err := repository.pool.QueryRow(ctx, query, name).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound(target.resource)
		}
		return "", dberr.Wrap(err, "lookup_"+target.table)
	}
	return id, nil
}

func (repository *PostgresRepository) link(ctx context.Context, action string, link junction, ownerID string, target nameLookup, name string) error {
	targetID, err := repository.lookup(ctx, target, name)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, now()) ON CONFLICT DO NOTHING`,
		link.table, link.owner, link.target, link.createdAt)

	_, err = repository.pool.Exec(ctx, query, ownerID, targetID)
	return dberr.Wrap(err, action)
}

func (repository *PostgresRepository) unlink(ctx context.Context, action string, link junction, ownerID string, target nameLookup, name string) error {
	targetID, err := repository.lookup(ctx, target, name)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, link.table, link.owner, link.target)

	_, err = repository.pool.Exec(ctx, query, ownerID, targetID)
	return dberr.Wrap(err, action)
}

// collectRoles folds one row per (role, permission) pair into roles.
func collectRoles(rows pgx.Rows) ([]Role, error) {
	defer rows.Close()

	roles := make([]Role, 0)
	for rows.Next() {
		var role Role
		var permission *string
		if err := rows.Scan(&role.ID, &role.Name, &role.DisplayName, &role.Description, &role.CreatedAt, &permission); err != nil {
			return nil, dberr.Wrap(err, "scan_role")
		}

		if n := len(roles); n == 0 || roles[n-1].ID != role.ID {
			role.Permissions = []string{}
			roles = append(roles, role)
		}

		last := &roles[len(roles)-1]
		if permission != nil && !slices.Contains(last.Permissions, *permission) {
			last.Permissions = append(last.Permissions, *permission)
		}
	}
	return roles, dberr.Wrap(rows.Err(), "list_roles")
}
