// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package page manages static pages.

Pages nest like categories and follow the publication lifecycle like posts.
A page's public path is the slug trail from its root, so moving a page moves
its whole subtree to a new URL.
*/
package page

import (
	"strings"
	"time"

	"github.com/taibuivan/yomira-cms/internal/core/publication"
	"github.com/taibuivan/yomira-cms/internal/core/sluggable"
	"github.com/taibuivan/yomira-cms/internal/core/tree"
)

// # Field Names

const (
	FieldTitle       = "title"
	FieldSlug        = "slug"
	FieldContent     = "content"
	FieldTemplate    = "template"
	FieldMenuTitle   = "menu_title"
	FieldPublishedAt = "published_at"
)

// PathPrefix is prepended to the slug trail of every page.
const PathPrefix = "/pages/"

// DefaultTemplate is used when a page names none.
const DefaultTemplate = "default"

var _ tree.Item = Page{}

// Page is a static, hierarchical piece of content.
type Page struct {
	ID         string  `json:"id"`
	ParentID   *string `json:"parent_id,omitempty"`
	Title      string  `json:"title"`
	Slug       string  `json:"slug"`
	SlugCustom bool    `json:"-"`
	Excerpt    *string `json:"excerpt,omitempty"`
	Content    string  `json:"content"`
	SortOrder  int     `json:"sort_order"`

	publication.State

	ShowInMenu    bool      `json:"show_in_menu"`
	MenuTitle     *string   `json:"menu_title,omitempty"`
	Template      string    `json:"template"`
	AuthorID      *string   `json:"author_id,omitempty"`
	AllowComments bool      `json:"allow_comments"`
	CommentCount  int       `json:"comment_count"`
	ViewCount     int       `json:"view_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TreeKey implements [tree.Item].
func (p Page) TreeKey() string { return p.ID }

// TreeParent implements [tree.Item].
func (p Page) TreeParent() *string { return p.ParentID }

// TreeOrder implements [tree.Item].
func (p Page) TreeOrder() int { return p.SortOrder }

// TreeLabel implements [tree.Item].
func (p Page) TreeLabel() (name, slug string) { return p.Title, p.Slug }

// Sluggable returns the title and slug part of the page.
func (p Page) Sluggable() sluggable.Fields {
	return sluggable.Fields{Name: p.Title, Slug: p.Slug, SlugCustom: p.SlugCustom}
}

func (p *Page) applySluggable(fields sluggable.Fields) {
	p.Title = fields.Name
	p.Slug = fields.Slug
	p.SlugCustom = fields.SlugCustom
}

// NavigationTitle is the label used in menus.
func (p Page) NavigationTitle() string {
	if p.MenuTitle != nil && *p.MenuTitle != "" {
		return *p.MenuTitle
	}
	return p.Title
}

// Path builds the public path from a breadcrumb ending at the page.
func Path(breadcrumb []tree.Crumb) string {
	slugs := make([]string, len(breadcrumb))
	for i, crumb := range breadcrumb {
		slugs[i] = crumb.Slug
	}
	return PathPrefix + strings.Join(slugs, "/")
}

// Detail is a page with its position in the hierarchy.
type Detail struct {
	Page
	Path       string       `json:"path"`
	Breadcrumb []tree.Crumb `json:"breadcrumb"`
	Children   []Page       `json:"children"`
}

// Update is a partial page update. Nil fields are left unchanged.
type Update struct {
	Title         *string `json:"title"`
	Slug          *string `json:"slug"`
	Excerpt       *string `json:"excerpt"`
	Content       *string `json:"content"`
	SortOrder     *int    `json:"sort_order"`
	ShowInMenu    *bool   `json:"show_in_menu"`
	MenuTitle     *string `json:"menu_title"`
	Template      *string `json:"template"`
	AllowComments *bool   `json:"allow_comments"`
}
