// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CorePostTable represents the 'core.post' table
type CorePostTable struct {
	Table         string
	ID            string
	Title         string
	Slug          string
	SlugCustom    string
	Excerpt       string
	Content       string
	FeaturedImage string
	Status        string
	PublishedAt   string
	AuthorID      string
	CategoryID    string
	ViewCount     string
	LikeCount     string
	CommentCount  string
	IsFeatured    string
	AllowComments string
	IsSticky      string
	CreatedAt     string
	UpdatedAt     string
}

// CorePost is the schema definition for core.post
var CorePost = CorePostTable{
	Table:         "core.post",
	ID:            "id",
	Title:         "title",
	Slug:          "slug",
	SlugCustom:    "slugcustom",
	Excerpt:       "excerpt",
	Content:       "content",
	FeaturedImage: "featuredimage",
	Status:        "status",
	PublishedAt:   "publishedat",
	AuthorID:      "authorid",
	CategoryID:    "categoryid",
	ViewCount:     "viewcount",
	LikeCount:     "likecount",
	CommentCount:  "commentcount",
	IsFeatured:    "isfeatured",
	AllowComments: "allowcomments",
	IsSticky:      "issticky",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

func (t CorePostTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.SlugCustom, t.Excerpt, t.Content, t.FeaturedImage, t.Status,
		t.PublishedAt, t.AuthorID, t.CategoryID, t.ViewCount, t.LikeCount, t.CommentCount,
		t.IsFeatured, t.AllowComments, t.IsSticky, t.CreatedAt, t.UpdatedAt,
	}
}
