// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CoreCategoryTable represents the 'core.category' table
type CoreCategoryTable struct {
	Table       string
	ID          string
	ParentID    string
	Name        string
	Slug        string
	SlugCustom  string
	Description string
	Color       string
	IsActive    string
	SortOrder   string
	CreatedAt   string
	UpdatedAt   string
}

// CoreCategory is the schema definition for core.category
var CoreCategory = CoreCategoryTable{
	Table:       "core.category",
	ID:          "id",
	ParentID:    "parentid",
	Name:        "name",
	Slug:        "slug",
	SlugCustom:  "slugcustom",
	Description: "description",
	Color:       "color",
	IsActive:    "isactive",
	SortOrder:   "sortorder",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t CoreCategoryTable) Columns() []string {
	return []string{
		t.ID, t.ParentID, t.Name, t.Slug, t.SlugCustom, t.Description, t.Color, t.IsActive,
		t.SortOrder, t.CreatedAt, t.UpdatedAt,
	}
}
