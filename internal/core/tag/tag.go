// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package tag manages free-form labels attached to posts and keeps their cached
usage counts consistent with the association set.

The usage count is a projection, not a source of truth. Attaching or
detaching a tag moves it by one through the fast path, and [Reconcile]
recomputes it from the associations whenever drift needs repairing.
*/
package tag

import (
	"time"

	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/core/publication"
	"github.com/taibuivan/yomira-cms/internal/core/sluggable"
)

// # Field Names

const (
	FieldName        = "name"
	FieldSlug        = "slug"
	FieldColor       = "color"
	FieldDescription = "description"
)

// # Entities

// Tag is a label with a cached count of the live content carrying it.
type Tag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	SlugCustom  bool      `json:"-"`
	Description *string   `json:"description,omitempty"`
	Color       *string   `json:"color,omitempty"`
	IsActive    bool      `json:"is_active"`
	UsageCount  int       `json:"usage_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Sluggable returns the name and slug part of the tag.
func (t Tag) Sluggable() sluggable.Fields {
	return sluggable.Fields{Name: t.Name, Slug: t.Slug, SlugCustom: t.SlugCustom}
}

// applySluggable copies fields back onto the tag.
func (t *Tag) applySluggable(fields sluggable.Fields) {
	t.Name = fields.Name
	t.Slug = fields.Slug
	t.SlugCustom = fields.SlugCustom
}

// Association links a tag to a piece of content. Only associations whose
// content is live count toward the tag's usage.
type Association struct {
	TagID   string
	Content owner.Ref
	State   publication.State
}

// Correction is the repair [Reconcile] proposes for one drifted tag.
type Correction struct {
	TagID string `json:"tag_id"`
	From  int    `json:"from"`
	To    int    `json:"to"`
}

// Filter narrows tag listings.
type Filter struct {
	Query  string
	Active *bool
}

// Update is a partial tag update. Nil fields are left unchanged.
type Update struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	IsActive    *bool   `json:"is_active"`
}
