// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// NavMenuTable represents the 'nav.menu' table
type NavMenuTable struct {
	Table       string
	ID          string
	Name        string
	Slug        string
	SlugCustom  string
	Description string
	Location    string
	IsActive    string
	CreatedAt   string
	UpdatedAt   string
}

// NavMenu is the schema definition for nav.menu
var NavMenu = NavMenuTable{
	Table:       "nav.menu",
	ID:          "id",
	Name:        "name",
	Slug:        "slug",
	SlugCustom:  "slugcustom",
	Description: "description",
	Location:    "location",
	IsActive:    "isactive",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t NavMenuTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Slug, t.SlugCustom, t.Description, t.Location, t.IsActive, t.CreatedAt,
		t.UpdatedAt,
	}
}
