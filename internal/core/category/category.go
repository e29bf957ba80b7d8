// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package category manages the hierarchical post taxonomy.

Categories nest without depth limit. Structural questions (breadcrumbs,
descendants, moves) are answered over a [tree.Forest] built from the whole
category set, which is small enough to load per operation.
*/
package category

import (
	"time"

	"github.com/taibuivan/yomira-cms/internal/core/sluggable"
	"github.com/taibuivan/yomira-cms/internal/core/tree"
)

// # Field Names

const (
	FieldName      = "name"
	FieldSlug      = "slug"
	FieldColor     = "color"
	FieldParentID  = "parent_id"
	FieldSortOrder = "sort_order"
)

var _ tree.Item = Category{}

// Category is one node of the post taxonomy.
type Category struct {
	ID          string    `json:"id"`
	ParentID    *string   `json:"parent_id,omitempty"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	SlugCustom  bool      `json:"-"`
	Description *string   `json:"description,omitempty"`
	Color       *string   `json:"color,omitempty"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TreeKey implements [tree.Item].
func (c Category) TreeKey() string { return c.ID }

// TreeParent implements [tree.Item].
func (c Category) TreeParent() *string { return c.ParentID }

// TreeOrder implements [tree.Item].
func (c Category) TreeOrder() int { return c.SortOrder }

// TreeLabel implements [tree.Item].
func (c Category) TreeLabel() (name, slug string) { return c.Name, c.Slug }

// Sluggable returns the name and slug part of the category.
func (c Category) Sluggable() sluggable.Fields {
	return sluggable.Fields{Name: c.Name, Slug: c.Slug, SlugCustom: c.SlugCustom}
}

func (c *Category) applySluggable(fields sluggable.Fields) {
	c.Name = fields.Name
	c.Slug = fields.Slug
	c.SlugCustom = fields.SlugCustom
}

// Detail is a category with its position in the hierarchy.
type Detail struct {
	Category
	Breadcrumb []tree.Crumb `json:"breadcrumb"`
	Children   []Category   `json:"children"`
}

// Update is a partial category update. Nil fields are left unchanged; the
// parent is changed with a move.
type Update struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	IsActive    *bool   `json:"is_active"`
	SortOrder   *int    `json:"sort_order"`
}
