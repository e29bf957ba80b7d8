// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package menu manages navigation menus and decides which items a viewer sees.

Menus are grouped by location (header, footer, sidebar). Items form a tree per
menu and carry an ordered list of visibility rules; an item is shown only when
it is active and every rule holds for the viewer.
*/
package menu

import (
	"time"

	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/core/sluggable"
	"github.com/taibuivan/yomira-cms/internal/core/tree"
)

var _ tree.Item = Item{}

// # Field Names

const (
	FieldName     = "name"
	FieldSlug     = "slug"
	FieldLocation = "location"
	FieldTitle    = "title"
	FieldURL      = "url"
	FieldTarget   = "target"
	FieldRules    = "visibility_rules"
	FieldParentID = "parent_id"
	FieldLink     = "link"
)

// # Rules

// RuleKind names what a visibility rule checks.
type RuleKind string

const (
	RuleAuth       RuleKind = "auth"
	RuleRole       RuleKind = "role"
	RulePermission RuleKind = "permission"
)

// AuthLoggedIn is the auth rule value that requires a signed-in viewer. Any
// other value requires a guest.
const AuthLoggedIn = "logged_in"

// Rule is one declarative visibility condition.
type Rule struct {
	Kind  RuleKind `json:"type"`
	Value string   `json:"value"`
}

// Known reports whether the evaluator understands the rule kind.
func (r Rule) Known() bool {
	switch r.Kind {
	case RuleAuth, RuleRole, RulePermission:
		return true
	}
	return false
}

// # Link Targets

const (
	TargetSelf  = "_self"
	TargetBlank = "_blank"
)

// # Entities

// Menu is a named set of items shown at one location.
type Menu struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	SlugCustom  bool      `json:"-"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Sluggable returns the name and slug part of the menu.
func (m Menu) Sluggable() sluggable.Fields {
	return sluggable.Fields{Name: m.Name, Slug: m.Slug, SlugCustom: m.SlugCustom}
}

func (m *Menu) applySluggable(fields sluggable.Fields) {
	m.Name = fields.Name
	m.Slug = fields.Slug
	m.SlugCustom = fields.SlugCustom
}

// Item is one entry of a menu. It either carries a literal URL or links to a
// post or page through Link.
type Item struct {
	ID        string     `json:"id"`
	MenuID    string     `json:"menu_id"`
	ParentID  *string    `json:"parent_id,omitempty"`
	Title     string     `json:"title"`
	URL       *string    `json:"url,omitempty"`
	Link      *owner.Ref `json:"link,omitempty"`
	SortOrder int        `json:"sort_order"`
	Target    string     `json:"target"`
	CSSClass  *string    `json:"css_class,omitempty"`
	Icon      *string    `json:"icon,omitempty"`
	IsActive  bool       `json:"is_active"`
	Rules     []Rule     `json:"visibility_rules"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TreeKey implements [tree.Item].
func (i Item) TreeKey() string { return i.ID }

// TreeParent implements [tree.Item].
func (i Item) TreeParent() *string { return i.ParentID }

// TreeOrder implements [tree.Item].
func (i Item) TreeOrder() int { return i.SortOrder }

// TreeLabel implements [tree.Item]. Items have no slug; the id stands in.
func (i Item) TreeLabel() (name, slug string) { return i.Title, i.ID }

// Rendered is an item as shown to one viewer, with its link resolved.
type Rendered struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	Target     string     `json:"target"`
	CSSClass   *string    `json:"css_class,omitempty"`
	Icon       *string    `json:"icon,omitempty"`
	IsExternal bool       `json:"is_external"`
	Children   []Rendered `json:"children"`
}

// View is a menu together with the items visible to a viewer.
type View struct {
	Menu
	Items []Rendered `json:"items"`
}

// # Inputs

// ItemInput is the writable part of an item. On update nil fields are left
// unchanged; ClearURL and ClearLink drop the current value.
type ItemInput struct {
	Title     *string    `json:"title"`
	URL       *string    `json:"url"`
	Link      *owner.Ref `json:"link"`
	ClearURL  bool       `json:"clear_url"`
	ClearLink bool       `json:"clear_link"`
	SortOrder *int       `json:"sort_order"`
	Target    *string    `json:"target"`
	CSSClass  *string    `json:"css_class"`
	Icon      *string    `json:"icon"`
	IsActive  *bool      `json:"is_active"`
	Rules     *[]Rule    `json:"visibility_rules"`
}

// Update is a partial menu update.
type Update struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	IsActive    *bool   `json:"is_active"`
}
