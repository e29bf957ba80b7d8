// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserAccountRoleTable represents the 'users.accountrole' table
type UserAccountRoleTable struct {
	Table     string
	AccountID string
	RoleID    string
	CreatedAt string
}

// UserAccountRole is the schema definition for users.accountrole
var UserAccountRole = UserAccountRoleTable{
	Table:     "users.accountrole",
	AccountID: "accountid",
	RoleID:    "roleid",
	CreatedAt: "createdat",
}
