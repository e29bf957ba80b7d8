// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/yomira-cms/internal/core/sluggable"
	"github.com/taibuivan/yomira-cms/internal/core/tree"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/clock"
	"github.com/taibuivan/yomira-cms/internal/platform/validate"
	"github.com/taibuivan/yomira-cms/pkg/slug"
	"github.com/taibuivan/yomira-cms/pkg/uuid"
)

const maxNameLength = 100

// # Service Layer

// Service manages the category hierarchy.
type Service struct {
	repo   Repository
	clock  clock.Clock
	logger *slog.Logger
}

// NewService constructs a new category [Service].
func NewService(repo Repository, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{repo: repo, clock: clock, logger: logger}
}

// # Reads

// Tree returns the nested category hierarchy. With activeOnly, inactive
// categories are left out together with their subtrees.
func (service *Service) Tree(ctx context.Context, activeOnly bool) ([]tree.Branch[Category], error) {
	forest, err := service.forest(ctx)
	if err != nil {
		return nil, err
	}

	branches, err := forest.Branches(nil)
	if err != nil {
		return nil, err
	}
	if activeOnly {
		branches = activeBranches(branches)
	}
	return branches, nil
}

// Get returns a category with its breadcrumb and direct children.
func (service *Service) Get(ctx context.Context, id string) (*Detail, error) {
	forest, err := service.forest(ctx)
	if err != nil {
		return nil, err
	}
	return detail(forest, id)
}

// GetBySlug is [Service.Get] keyed by slug.
func (service *Service) GetBySlug(ctx context.Context, categorySlug string) (*Detail, error) {
	found, err := service.repo.FindBySlug(ctx, categorySlug)
	if err != nil {
		return nil, err
	}
	return service.Get(ctx, found.ID)
}

// SubtreeIDs returns id followed by the ids of all its descendants.
func (service *Service) SubtreeIDs(ctx context.Context, id string) ([]string, error) {
	forest, err := service.forest(ctx)
	if err != nil {
		return nil, err
	}

	descendants, err := forest.Descendants(id)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(descendants)+1)
	ids = append(ids, id)
	for _, descendant := range descendants {
		ids = append(ids, descendant.ID)
	}
	return ids, nil
}

// # Management

/*
Create validates and stores a new category below an optional parent.

Returns:
  - error: VALIDATION_ERROR, CONFLICT, NOT_FOUND (parent)
*/
func (service *Service) Create(ctx context.Context, category *Category, explicitSlug string) error {
	category.Name = strings.TrimSpace(category.Name)

	validator := &validate.Validator{}
	validator.Required(FieldName, category.Name).MaxLen(FieldName, category.Name, maxNameLength)
	if explicitSlug != "" {
		validator.Slug(FieldSlug, explicitSlug)
	}
	validator.Custom(FieldName, explicitSlug == "" && category.Name != "" && slug.From(category.Name) == "",
		"Name must contain at least one letter or digit")
	if category.Color != nil {
		validator.HexColor(FieldColor, *category.Color)
	}
	if err := validator.Err(); err != nil {
		return err
	}

	if category.ParentID != nil {
		if _, err := service.repo.FindByID(ctx, *category.ParentID); err != nil {
			if apperr.Is(err, apperr.CodeNotFound) {
				return apperr.NotFound("Parent category")
			}
			return err
		}
	}

	category.applySluggable(sluggable.OnCreate(category.Name, explicitSlug))
	if err := service.claimSlug(ctx, category); err != nil {
		return err
	}

	now := service.clock.Now()
	category.ID = uuid.New()
	category.IsActive = true
	category.CreatedAt = now
	category.UpdatedAt = now

	if err := service.repo.Create(ctx, category); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "category_created",
		slog.String("category_id", category.ID),
		slog.String("slug", category.Slug),
	)
	return nil
}

// Update applies a partial update.
func (service *Service) Update(ctx context.Context, id string, update Update) (*Category, error) {
	category, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		update.Name = &trimmed
		validator.Required(FieldName, trimmed).MaxLen(FieldName, trimmed, maxNameLength)
	}
	if update.Slug != nil && *update.Slug != "" {
		validator.Slug(FieldSlug, *update.Slug)
	}
	if update.Color != nil {
		validator.HexColor(FieldColor, *update.Color)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	previous := category.Slug
	category.applySluggable(sluggable.OnUpdate(category.Sluggable(), update.Name, update.Slug))
	if category.Slug != previous {
		if err := service.claimSlug(ctx, category); err != nil {
			return nil, err
		}
	}

	if update.Description != nil {
		category.Description = update.Description
	}
	if update.Color != nil {
		category.Color = update.Color
	}
	if update.IsActive != nil {
		category.IsActive = *update.IsActive
	}
	if update.SortOrder != nil {
		category.SortOrder = *update.SortOrder
	}
	category.UpdatedAt = service.clock.Now()

	if err := service.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

/*
Move reparents a category (nil parent makes it a root) and optionally changes
its sort order.

Returns:
  - error: INVALID_PARENT when the target is the category itself or one of
    its descendants, NOT_FOUND, CYCLE_DETECTED
*/
func (service *Service) Move(ctx context.Context, id string, parentID *string, sortOrder *int) (*Category, error) {
	category, err := service.repo.Move(ctx, func(all []Category) (*Category, error) {
		forest := tree.New(all)

		category, ok := forest.Get(id)
		if !ok {
			return nil, apperr.NotFound("Category")
		}

		if err := forest.Reparent(id, parentID); err != nil {
			return nil, err
		}

		category.ParentID = parentID
		if sortOrder != nil {
			category.SortOrder = *sortOrder
		}
		category.UpdatedAt = service.clock.Now()
		return &category, nil
	})
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "category_moved",
		slog.String("category_id", id),
		slog.Any("parent_id", parentID),
	)
	return category, nil
}

// Delete removes a category with its whole subtree and returns the removed ids.
func (service *Service) Delete(ctx context.Context, id string) ([]string, error) {
	forest, err := service.forest(ctx)
	if err != nil {
		return nil, err
	}

	removed, err := forest.Remove(id)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return nil, apperr.NotFound("Category")
		}
		return nil, err
	}

	if err := service.repo.DeleteMany(ctx, removed); err != nil {
		return nil, err
	}

	service.logger.WarnContext(ctx, "category_deleted",
		slog.String("category_id", id),
		slog.Int("removed", len(removed)),
	)
	return removed, nil
}

// # Internal Helpers

func (service *Service) forest(ctx context.Context) (*tree.Forest[Category], error) {
	categories, err := service.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	return tree.New(categories), nil
}

func detail(forest *tree.Forest[Category], id string) (*Detail, error) {
	category, ok := forest.Get(id)
	if !ok {
		return nil, apperr.NotFound("Category")
	}

	breadcrumb, err := forest.Breadcrumb(id)
	if err != nil {
		return nil, err
	}

	children, err := forest.Children(id)
	if err != nil {
		return nil, err
	}

	return &Detail{Category: category, Breadcrumb: breadcrumb, Children: children}, nil
}

func activeBranches(branches []tree.Branch[Category]) []tree.Branch[Category] {
	active := make([]tree.Branch[Category], 0, len(branches))
	for _, branch := range branches {
		if !branch.Value.IsActive {
			continue
		}
		branch.Children = activeBranches(branch.Children)
		active = append(active, branch)
	}
	return active
}

// claimSlug makes a derived slug unique and rejects a taken explicit one.
func (service *Service) claimSlug(ctx context.Context, category *Category) error {
	exists := func(ctx context.Context, candidate string) (bool, error) {
		return service.repo.SlugExists(ctx, candidate, category.ID)
	}

	if category.SlugCustom {
		taken, err := exists(ctx, category.Slug)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("Category slug is already in use")
		}
		return nil
	}

	unique, err := sluggable.Unique(ctx, category.Slug, exists)
	if err != nil {
		return err
	}
	category.Slug = unique
	return nil
}
