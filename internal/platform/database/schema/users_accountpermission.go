// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserAccountPermissionTable represents the 'users.accountpermission' table
type UserAccountPermissionTable struct {
	Table        string
	AccountID    string
	PermissionID string
	CreatedAt    string
}

// UserAccountPermission is the schema definition for users.accountpermission
var UserAccountPermission = UserAccountPermissionTable{
	Table:        "users.accountpermission",
	AccountID:    "accountid",
	PermissionID: "permissionid",
	CreatedAt:    "createdat",
}
