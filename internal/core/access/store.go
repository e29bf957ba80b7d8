// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import "context"

// Repository persists roles, permissions and their assignments.
//
// Grants are idempotent: granting twice or revoking something not held is not
// an error. Unknown role or permission names yield NOT_FOUND.
type Repository interface {
	// LoadUser returns the authorization snapshot of an account.
	LoadUser(ctx context.Context, userID string) (*User, error)

	ListRoles(ctx context.Context) ([]Role, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	CreateRole(ctx context.Context, role *Role) error
	CreatePermission(ctx context.Context, permission *Permission) error

	GrantPermission(ctx context.Context, userID, permission string) error
	RevokePermission(ctx context.Context, userID, permission string) error
	AssignRole(ctx context.Context, userID, role string) error
	RevokeRole(ctx context.Context, userID, role string) error
	GiveRolePermission(ctx context.Context, role, permission string) error
	RevokeRolePermission(ctx context.Context, role, permission string) error
}
