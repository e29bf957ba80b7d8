// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"context"
	"time"

	"github.com/taibuivan/yomira-cms/internal/core/publication"
)

// Repository defines persistence operations for posts.
//
// Reads return posts with their tags attached.
type Repository interface {
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Post, int, error)
	FindByID(ctx context.Context, id string) (*Post, error)
	FindBySlug(ctx context.Context, slug string) (*Post, error)
	Related(ctx context.Context, post *Post, now time.Time, limit int) ([]*Post, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)

	Create(ctx context.Context, post *Post) error
	// Update writes the editable columns and leaves the publication state
	// to SwapState.
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error

	// SetTags replaces the tag links of a post.
	SetTags(ctx context.Context, postID string, tagIDs []string, now time.Time) error

	// ListDue returns scheduled posts whose publish time is not after now.
	ListDue(ctx context.Context, now time.Time) ([]*Post, error)

	// SwapState writes next only while the stored status and publish time
	// still equal expected. It reports whether the row was written.
	SwapState(ctx context.Context, id string, expected, next publication.State, now time.Time) (bool, error)
}
