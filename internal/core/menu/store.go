// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package menu

import "context"

// MovePlan decides a move against a consistent snapshot of one menu's items
// and returns the item to persist.
type MovePlan func(items []Item) (*Item, error)

// Repository persists menus and their items.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Menu, error)
	FindBySlug(ctx context.Context, slug string) (*Menu, error)
	// List returns menus ordered by name. A nil location matches all.
	List(ctx context.Context, location *string, activeOnly bool) ([]*Menu, error)
	Create(ctx context.Context, menu *Menu) error
	Update(ctx context.Context, menu *Menu) error
	// Delete removes a menu together with all of its items.
	Delete(ctx context.Context, id string) error
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)

	// Items returns every item of a menu in storage order.
	Items(ctx context.Context, menuID string) ([]Item, error)
	FindItem(ctx context.Context, id string) (*Item, error)
	CreateItem(ctx context.Context, item *Item) error
	// UpdateItem writes every mutable item column except the parent.
	UpdateItem(ctx context.Context, item *Item) error
	// MoveItem runs plan against the items of menuID while holding that
	// menu's lock, then writes the parent and sort order of the returned item.
	MoveItem(ctx context.Context, menuID string, plan MovePlan) (*Item, error)
	DeleteItems(ctx context.Context, ids []string) error
}
