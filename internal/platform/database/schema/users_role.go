// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserRoleTable represents the 'users.role' table
type UserRoleTable struct {
	Table       string
	ID          string
	Name        string
	DisplayName string
	Description string
	CreatedAt   string
}

// UserRole is the schema definition for users.role
var UserRole = UserRoleTable{
	Table:       "users.role",
	ID:          "id",
	Name:        "name",
	DisplayName: "displayname",
	Description: "description",
	CreatedAt:   "createdat",
}

func (t UserRoleTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.DisplayName, t.Description, t.CreatedAt,
	}
}
