// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package page

import (
	"context"
	"time"

	"github.com/taibuivan/yomira-cms/internal/core/publication"
)

// MovePlan decides a move against a consistent snapshot of every page and
// returns the page to persist.
type MovePlan func(all []Page) (*Page, error)

// Repository defines persistence operations for pages.
type Repository interface {
	All(ctx context.Context) ([]Page, error)
	FindByID(ctx context.Context, id string) (*Page, error)
	FindBySlug(ctx context.Context, slug string) (*Page, error)
	Create(ctx context.Context, page *Page) error
	// Update writes the editable columns. The parent and the publication
	// state are left alone; Move and SwapState own them.
	Update(ctx context.Context, page *Page) error
	// Move runs plan against every page while holding the tree lock, then
	// writes the parent and sort order of the page plan returns.
	Move(ctx context.Context, plan MovePlan) (*Page, error)
	DeleteMany(ctx context.Context, ids []string) error
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)

	// ListDue returns scheduled pages whose publish time is not after now.
	ListDue(ctx context.Context, now time.Time) ([]Page, error)

	// SwapState writes next only while the stored status and publish time
	// still equal expected. It reports whether the row was written.
	SwapState(ctx context.Context, id string, expected, next publication.State, now time.Time) (bool, error)
}
