// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package post manages blog posts.

A post follows the publication lifecycle, belongs to at most one category and
carries any number of tags. Tag usage counts only live posts, so every
lifecycle change that crosses the live boundary is reported to the tag domain.
*/
package post

import (
	"time"

	"github.com/taibuivan/yomira-cms/internal/core/publication"
	"github.com/taibuivan/yomira-cms/internal/core/sluggable"
)

// # Field Names

const (
	FieldTitle       = "title"
	FieldSlug        = "slug"
	FieldContent     = "content"
	FieldExcerpt     = "excerpt"
	FieldTags        = "tags"
	FieldCategoryID  = "category_id"
	FieldStatus      = "status"
	FieldPublishedAt = "published_at"
)

// PathPrefix is prepended to the slug of every post.
const PathPrefix = "/posts/"

// TagRef is the tag summary embedded in a post.
type TagRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Post is a dated article.
type Post struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Slug          string  `json:"slug"`
	SlugCustom    bool    `json:"-"`
	Excerpt       *string `json:"excerpt,omitempty"`
	Content       string  `json:"content"`
	FeaturedImage *string `json:"featured_image,omitempty"`

	publication.State

	AuthorID      *string   `json:"author_id,omitempty"`
	CategoryID    *string   `json:"category_id,omitempty"`
	ViewCount     int       `json:"view_count"`
	LikeCount     int       `json:"like_count"`
	CommentCount  int       `json:"comment_count"`
	IsFeatured    bool      `json:"is_featured"`
	AllowComments bool      `json:"allow_comments"`
	IsSticky      bool      `json:"is_sticky"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Tags []TagRef `json:"tags"`
}

// Sluggable returns the title and slug part of the post.
func (p Post) Sluggable() sluggable.Fields {
	return sluggable.Fields{Name: p.Title, Slug: p.Slug, SlugCustom: p.SlugCustom}
}

func (p *Post) applySluggable(fields sluggable.Fields) {
	p.Title = fields.Name
	p.Slug = fields.Slug
	p.SlugCustom = fields.SlugCustom
}

// Path is the public location of the post.
func (p Post) Path() string {
	return PathPrefix + p.Slug
}

// TagIDs returns the ids of the attached tags.
func (p Post) TagIDs() []string {
	ids := make([]string, len(p.Tags))
	for i, tag := range p.Tags {
		ids[i] = tag.ID
	}
	return ids
}

// ReadingMinutes estimates reading time at 200 words per minute, never less
// than one minute.
func (p Post) ReadingMinutes() int {
	words := WordCount(StripTags(p.Content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	return max(1, minutes)
}

// Filter narrows post listings.
type Filter struct {
	Query  string
	Status *publication.Status

	// CategoryID matches the category and all of its descendants. The
	// service expands it into CategoryIDs before the repository runs.
	CategoryID  *string
	CategoryIDs []string

	TagID    *string
	AuthorID *string
	Featured *bool
	Sticky   *bool

	// LiveAt restricts the listing to posts live at the given time.
	LiveAt *time.Time
}

// Update is a partial post update. Nil fields are left unchanged.
type Update struct {
	Title         *string `json:"title"`
	Slug          *string `json:"slug"`
	Excerpt       *string `json:"excerpt"`
	Content       *string `json:"content"`
	FeaturedImage *string `json:"featured_image"`
	CategoryID    *string `json:"category_id"`
	ClearCategory bool    `json:"clear_category"`
	AllowComments *bool   `json:"allow_comments"`
	IsFeatured    *bool   `json:"is_featured"`
	IsSticky      *bool   `json:"is_sticky"`
}
