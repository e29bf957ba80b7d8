// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserPermissionTable represents the 'users.permission' table
type UserPermissionTable struct {
	Table       string
	ID          string
	Name        string
	DisplayName string
	Description string
	Category    string
	CreatedAt   string
}

// UserPermission is the schema definition for users.permission
var UserPermission = UserPermissionTable{
	Table:       "users.permission",
	ID:          "id",
	Name:        "name",
	DisplayName: "displayname",
	Description: "description",
	Category:    "category",
	CreatedAt:   "createdat",
}

func (t UserPermissionTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.DisplayName, t.Description, t.Category, t.CreatedAt,
	}
}
