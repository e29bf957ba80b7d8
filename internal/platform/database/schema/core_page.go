// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CorePageTable represents the 'core.page' table
type CorePageTable struct {
	Table         string
	ID            string
	ParentID      string
	Title         string
	Slug          string
	SlugCustom    string
	Excerpt       string
	Content       string
	SortOrder     string
	Status        string
	PublishedAt   string
	ShowInMenu    string
	MenuTitle     string
	Template      string
	AuthorID      string
	AllowComments string
	CommentCount  string
	ViewCount     string
	CreatedAt     string
	UpdatedAt     string
}

// CorePage is the schema definition for core.page
var CorePage = CorePageTable{
	Table:         "core.page",
	ID:            "id",
	ParentID:      "parentid",
	Title:         "title",
	Slug:          "slug",
	SlugCustom:    "slugcustom",
	Excerpt:       "excerpt",
	Content:       "content",
	SortOrder:     "sortorder",
	Status:        "status",
	PublishedAt:   "publishedat",
	ShowInMenu:    "showinmenu",
	MenuTitle:     "menutitle",
	Template:      "template",
	AuthorID:      "authorid",
	AllowComments: "allowcomments",
	CommentCount:  "commentcount",
	ViewCount:     "viewcount",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

func (t CorePageTable) Columns() []string {
	return []string{
		t.ID, t.ParentID, t.Title, t.Slug, t.SlugCustom, t.Excerpt, t.Content, t.SortOrder,
		t.Status, t.PublishedAt, t.ShowInMenu, t.MenuTitle, t.Template, t.AuthorID,
		t.AllowComments, t.CommentCount, t.ViewCount, t.CreatedAt, t.UpdatedAt,
	}
}
