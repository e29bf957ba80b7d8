// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import "context"

// MovePlan decides a move against a consistent snapshot of every category and
// returns the node to persist.
type MovePlan func(all []Category) (*Category, error)

// Repository persists categories.
type Repository interface {
	// All returns every category ordered by sort order, then creation time.
	All(ctx context.Context) ([]Category, error)
	FindByID(ctx context.Context, id string) (*Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	Create(ctx context.Context, category *Category) error
	// Update writes every mutable column except the parent.
	Update(ctx context.Context, category *Category) error
	// Move runs plan against every category while holding the tree lock,
	// then writes the parent and sort order of the node plan returns.
	// Concurrent moves are serialized so none of them checks a stale tree.
	Move(ctx context.Context, plan MovePlan) (*Category, error)
	// DeleteMany removes the given categories in one transaction. Posts that
	// referenced them become uncategorized.
	DeleteMany(ctx context.Context, ids []string) error
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}
