// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import "context"

// Repository persists tags and exposes the association set used for
// reconciliation.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Tag, error)

	// FindBySlug matches case-insensitively.
	FindBySlug(ctx context.Context, slug string) (*Tag, error)

	List(ctx context.Context, filter Filter, limit, offset int) ([]*Tag, int, error)

	// Popular returns active tags with at least one use, most used first.
	Popular(ctx context.Context, limit int) ([]*Tag, error)

	// All returns every tag, for reconciliation.
	All(ctx context.Context) ([]Tag, error)

	// Create inserts t. When another tag already owns the slug it returns
	// inserted=false and leaves the table untouched.
	Create(ctx context.Context, t *Tag) (inserted bool, err error)

	Update(ctx context.Context, t *Tag) error
	Delete(ctx context.Context, id string) error

	// SlugExists reports whether slug is taken by a tag other than excludeID.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)

	// AdjustUsage moves the usage count of every tag in ids by delta under a
	// row lock, flooring at zero.
	AdjustUsage(ctx context.Context, ids []string, delta int) error

	// Associations returns the associations of the given tags, or of every
	// tag when ids is empty.
	Associations(ctx context.Context, ids []string) ([]Association, error)

	// ApplyCorrections writes reconciled counts in one transaction. A
	// correction is written only while the stored count still equals its
	// From value; the ones that landed are returned.
	ApplyCorrections(ctx context.Context, corrections []Correction) ([]Correction, error)
}
