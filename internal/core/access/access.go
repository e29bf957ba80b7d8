// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package access resolves what a user may do.

A user's effective permission set is the union of the permissions granted to
them directly and the permissions of every role they hold. Resolution over a
loaded [User] snapshot is pure; the [Service] loads snapshots from storage and
keeps recently used ones in an LRU cache that is invalidated on every grant or
revocation.
*/
package access

import (
	"slices"
	"time"
)

// # Permission Names

const (
	PermPostsCreate  = "posts.create"
	PermPostsEdit    = "posts.edit"
	PermPostsPublish = "posts.publish"
	PermPostsDelete  = "posts.delete"

	PermPagesCreate  = "pages.create"
	PermPagesEdit    = "pages.edit"
	PermPagesPublish = "pages.publish"
	PermPagesDelete  = "pages.delete"

	PermCategoriesManage = "categories.manage"
	PermTagsManage       = "tags.manage"
	PermMenusManage      = "menus.manage"

	PermCommentsModerate = "comments.moderate"
	PermCommentsDelete   = "comments.delete"

	PermAccessManage = "access.manage"
)

// # Field Names

const (
	FieldName        = "name"
	FieldDisplayName = "display_name"
	FieldCategory    = "category"
	FieldPermission  = "permission"
	FieldRole        = "role"
)

// # Entities

// Permission is a named capability.
type Permission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Description *string   `json:"description,omitempty"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// Role is a named bundle of permissions.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Description *string   `json:"description,omitempty"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

/*
User is the authorization snapshot of one account.

A nil *User stands for an anonymous viewer: it holds no role and no
permission. Snapshots handed out by the [Service] are shared and must not be
modified.
*/
type User struct {
	ID          string   `json:"id"`
	Permissions []string `json:"permissions"`
	Roles       []Role   `json:"roles"`
}

// # Resolution

// HasPermission reports whether name is granted directly or through a role.
func (u *User) HasPermission(name string) bool {
	if u == nil {
		return false
	}

	if slices.Contains(u.Permissions, name) {
		return true
	}

	for _, role := range u.Roles {
		if slices.Contains(role.Permissions, name) {
			return true
		}
	}
	return false
}

// EffectivePermissions returns the sorted union of direct and role-derived
// permission names, without duplicates.
func (u *User) EffectivePermissions() []string {
	if u == nil {
		return []string{}
	}

	set := make(map[string]struct{}, len(u.Permissions))
	for _, name := range u.Permissions {
		set[name] = struct{}{}
	}
	for _, role := range u.Roles {
		for _, name := range role.Permissions {
			set[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(name string) bool {
	if u == nil {
		return false
	}
	return slices.ContainsFunc(u.Roles, func(role Role) bool { return role.Name == name })
}

// IsAuthenticated reports whether the snapshot belongs to a signed-in user.
func (u *User) IsAuthenticated() bool {
	return u != nil
}

// RoleNames returns the names of the roles held, in storage order.
func (u *User) RoleNames() []string {
	if u == nil {
		return []string{}
	}
	names := make([]string, len(u.Roles))
	for i, role := range u.Roles {
		names[i] = role.Name
	}
	return names
}
