// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/clock"
	"github.com/taibuivan/yomira-cms/internal/platform/validate"
	"github.com/taibuivan/yomira-cms/pkg/uuid"
)

// # Service Layer

/*
Service loads authorization snapshots and manages grants.

Snapshots are cached per user for at most the cache TTL. Changing a user's
own grants evicts that user; changing a role's permissions purges the cache,
since any user may hold the role. Both evictions are local to this process,
so other instances see a change once their entries expire. A generation
counter keeps a load that raced with an invalidation from re-populating the
cache with stale data.
*/
type Service struct {
	repo       Repository
	cache      *expirable.LRU[string, *User]
	generation atomic.Uint64
	clock      clock.Clock
	logger     *slog.Logger
}

// NewService constructs a new access [Service] caching up to cacheSize users,
// each for at most ttl.
func NewService(repo Repository, cacheSize int, ttl time.Duration, clock clock.Clock, logger *slog.Logger) (*Service, error) {
	if cacheSize <= 0 || ttl <= 0 {
		return nil, fmt.Errorf("access: permission cache needs a positive size and ttl, got %d and %s", cacheSize, ttl)
	}

	cache := expirable.NewLRU[string, *User](cacheSize, nil, ttl)
	return &Service{repo: repo, cache: cache, clock: clock, logger: logger}, nil
}

// # Resolution

// Resolve returns the authorization snapshot of userID.
func (service *Service) Resolve(ctx context.Context, userID string) (*User, error) {
	if cached, ok := service.cache.Get(userID); ok {
		return cached, nil
	}

	generation := service.generation.Load()
	user, err := service.repo.LoadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if service.generation.Load() != generation {
		return user, nil
	}

	service.cache.Add(userID, user)

	// An invalidation may have run its eviction between the check and the Add.
	if service.generation.Load() != generation {
		service.cache.Remove(userID)
	}
	return user, nil
}

/*
Viewer returns the snapshot of the caller, or nil for an anonymous caller.

A signed-in user without an account row is treated as anonymous.
*/
func (service *Service) Viewer(ctx context.Context, userID *string) (*User, error) {
	if userID == nil {
		return nil, nil
	}

	user, err := service.Resolve(ctx, *userID)
	if apperr.Is(err, apperr.CodeNotFound) {
		return nil, nil
	}
	return user, err
}

// HasPermission implements the middleware permission check.
func (service *Service) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	user, err := service.Viewer(ctx, &userID)
	if err != nil {
		return false, err
	}
	return user.HasPermission(permission), nil
}

// EffectivePermissions returns the sorted permission names of userID.
func (service *Service) EffectivePermissions(ctx context.Context, userID string) ([]string, error) {
	user, err := service.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.EffectivePermissions(), nil
}

// # Catalogue

// ListRoles returns every role with its permissions.
func (service *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return service.repo.ListRoles(ctx)
}

// ListPermissions returns every permission.
func (service *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return service.repo.ListPermissions(ctx)
}

// CreateRole validates and stores a role.
func (service *Service) CreateRole(ctx context.Context, role *Role) error {
	role.Name = strings.TrimSpace(role.Name)

	validator := &validate.Validator{}
	validator.Required(FieldName, role.Name).MaxLen(FieldName, role.Name, 50).Slug(FieldName, role.Name)
	validator.Required(FieldDisplayName, role.DisplayName).MaxLen(FieldDisplayName, role.DisplayName, 100)
	if err := validator.Err(); err != nil {
		return err
	}

	role.ID = uuid.New()
	role.CreatedAt = service.clock.Now()
	role.Permissions = []string{}

	if err := service.repo.CreateRole(ctx, role); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "role_created", slog.String("role", role.Name))
	return nil
}

// CreatePermission validates and stores a permission.
func (service *Service) CreatePermission(ctx context.Context, permission *Permission) error {
	permission.Name = strings.TrimSpace(permission.Name)

	validator := &validate.Validator{}
	validator.Required(FieldName, permission.Name).MaxLen(FieldName, permission.Name, 100)
	validator.Custom(FieldName, strings.ContainsAny(permission.Name, " \t"), "Must not contain whitespace")
	validator.Required(FieldDisplayName, permission.DisplayName).MaxLen(FieldDisplayName, permission.DisplayName, 100)
	validator.Required(FieldCategory, permission.Category).MaxLen(FieldCategory, permission.Category, 50)
	if err := validator.Err(); err != nil {
		return err
	}

	permission.ID = uuid.New()
	permission.CreatedAt = service.clock.Now()

	if err := service.repo.CreatePermission(ctx, permission); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "permission_created", slog.String("permission", permission.Name))
	return nil
}

// # Grants

// GrantPermission gives userID a direct permission.
func (service *Service) GrantPermission(ctx context.Context, userID, permission string) error {
	return service.changeUser(ctx, "permission_granted", userID, permission, service.repo.GrantPermission)
}

// RevokePermission removes a direct permission from userID.
func (service *Service) RevokePermission(ctx context.Context, userID, permission string) error {
	return service.changeUser(ctx, "permission_revoked", userID, permission, service.repo.RevokePermission)
}

// AssignRole gives userID a role.
func (service *Service) AssignRole(ctx context.Context, userID, role string) error {
	return service.changeUser(ctx, "role_assigned", userID, role, service.repo.AssignRole)
}

// RevokeRole removes a role from userID.
func (service *Service) RevokeRole(ctx context.Context, userID, role string) error {
	return service.changeUser(ctx, "role_revoked", userID, role, service.repo.RevokeRole)
}

// GiveRolePermission adds a permission to every holder of role.
func (service *Service) GiveRolePermission(ctx context.Context, role, permission string) error {
	return service.changeRole(ctx, "role_permission_given", role, permission, service.repo.GiveRolePermission)
}

// RevokeRolePermission removes a permission from role.
func (service *Service) RevokeRolePermission(ctx context.Context, role, permission string) error {
	return service.changeRole(ctx, "role_permission_revoked", role, permission, service.repo.RevokeRolePermission)
}

// # Internal Helpers

type grantFunc func(ctx context.Context, subject, name string) error

func (service *Service) changeUser(ctx context.Context, event, userID, name string, apply grantFunc) error {
	if err := requireName(name); err != nil {
		return err
	}

	service.generation.Add(1)
	err := apply(ctx, userID, name)
	service.cache.Remove(userID)
	if err != nil {
		return err
	}

	service.logger.InfoContext(ctx, event,
		slog.String("user_id", userID),
		slog.String("name", name),
	)
	return nil
}

func (service *Service) changeRole(ctx context.Context, event, role, permission string, apply grantFunc) error {
	if err := requireName(role); err != nil {
		return err
	}
	if err := requireName(permission); err != nil {
		return err
	}

	service.generation.Add(1)
	err := apply(ctx, role, permission)
	service.cache.Purge()
	if err != nil {
		return err
	}

	service.logger.InfoContext(ctx, event,
		slog.String("role", role),
		slog.String("permission", permission),
	)
	return nil
}

func requireName(name string) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, name)
	return validator.Err()
}
