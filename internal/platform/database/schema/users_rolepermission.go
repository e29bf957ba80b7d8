// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserRolePermissionTable represents the 'users.rolepermission' table
type UserRolePermissionTable struct {
	Table        string
	RoleID       string
	PermissionID string
	CreatedAt    string
}

// UserRolePermission is the schema definition for users.rolepermission
var UserRolePermission = UserRolePermissionTable{
	Table:        "users.rolepermission",
	RoleID:       "roleid",
	PermissionID: "permissionid",
	CreatedAt:    "createdat",
}
