// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CoreTagTable represents the 'core.tag' table
type CoreTagTable struct {
	Table       string
	ID          string
	Name        string
	Slug        string
	SlugCustom  string
	Description string
	Color       string
	IsActive    string
	UsageCount  string
	CreatedAt   string
	UpdatedAt   string
}

// CoreTag is the schema definition for core.tag
var CoreTag = CoreTagTable{
	Table:       "core.tag",
	ID:          "id",
	Name:        "name",
	Slug:        "slug",
	SlugCustom:  "slugcustom",
	Description: "description",
	Color:       "color",
	IsActive:    "isactive",
	UsageCount:  "usagecount",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t CoreTagTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Slug, t.SlugCustom, t.Description, t.Color, t.IsActive, t.UsageCount,
		t.CreatedAt, t.UpdatedAt,
	}
}
