// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-cms/internal/core/access"
)

func editor() *access.User {
	return &access.User{
		ID:          "u1",
		Permissions: []string{access.PermPostsPublish},
		Roles: []access.Role{
			{Name: "editor", Permissions: []string{access.PermPostsEdit, access.PermPostsPublish}},
			{Name: "reviewer", Permissions: []string{access.PermCommentsModerate}},
		},
	}
}

/*
TestUser_EffectivePermissions verifies the union of direct and role grants.
*/
func TestUser_EffectivePermissions(t *testing.T) {
	assert.Equal(t, []string{
		access.PermCommentsModerate,
		access.PermPostsEdit,
		access.PermPostsPublish,
	}, editor().EffectivePermissions())

	only := &access.User{Roles: []access.Role{{Name: "writer", Permissions: []string{"edit", "publish"}}}}
	assert.Equal(t, []string{"edit", "publish"}, only.EffectivePermissions())
}

/*
TestUser_HasPermission verifies direct and role-derived grants.
*/
func TestUser_HasPermission(t *testing.T) {
	user := editor()

	assert.True(t, user.HasPermission(access.PermPostsPublish))
	assert.True(t, user.HasPermission(access.PermCommentsModerate))
	assert.False(t, user.HasPermission(access.PermAccessManage))
	assert.False(t, (&access.User{}).HasPermission(access.PermPostsEdit))
}

/*
TestUser_Anonymous verifies a nil snapshot holds nothing.
*/
func TestUser_Anonymous(t *testing.T) {
	var anonymous *access.User

	assert.False(t, anonymous.IsAuthenticated())
	assert.False(t, anonymous.HasPermission(access.PermPostsEdit))
	assert.False(t, anonymous.HasRole("editor"))
	assert.Empty(t, anonymous.EffectivePermissions())
	assert.NotNil(t, anonymous.EffectivePermissions())
	assert.Empty(t, anonymous.RoleNames())
}

/*
TestUser_HasRole verifies role membership by name.
*/
func TestUser_HasRole(t *testing.T) {
	user := editor()

	assert.True(t, user.IsAuthenticated())
	assert.True(t, user.HasRole("editor"))
	assert.False(t, user.HasRole("Editor"))
	assert.Equal(t, []string{"editor", "reviewer"}, user.RoleNames())
}
