// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/yomira-cms/internal/core/sluggable"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/clock"
	"github.com/taibuivan/yomira-cms/internal/platform/validate"
	"github.com/taibuivan/yomira-cms/pkg/slug"
	"github.com/taibuivan/yomira-cms/pkg/uuid"
)

const (
	maxNameLength = 100

	// DefaultPopularLimit is used when callers do not ask for a size.
	DefaultPopularLimit = 20
)

// # Service Layer

// Service manages tags and their usage counts.
type Service struct {
	repo   Repository
	clock  clock.Clock
	logger *slog.Logger
}

// NewService constructs a new tag [Service].
func NewService(repo Repository, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{repo: repo, clock: clock, logger: logger}
}

// # Lookups

// Get returns a tag by id.
func (service *Service) Get(ctx context.Context, id string) (*Tag, error) {
	return service.repo.FindByID(ctx, id)
}

// GetBySlug returns a tag by slug, ignoring case.
func (service *Service) GetBySlug(ctx context.Context, slug string) (*Tag, error) {
	return service.repo.FindBySlug(ctx, slug)
}

// List returns a filtered page of tags.
func (service *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]*Tag, int, error) {
	return service.repo.List(ctx, filter, limit, offset)
}

// Popular returns the most used tags.
func (service *Service) Popular(ctx context.Context, limit int) ([]*Tag, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	return service.repo.Popular(ctx, limit)
}

// # Management

/*
Create validates and stores a new tag.

Description: The slug is derived from the name unless explicitSlug is given.
A derived slug that is taken receives a numeric suffix; an explicit slug that
is taken is rejected.

Returns:
  - error: VALIDATION_ERROR, CONFLICT
*/
func (service *Service) Create(ctx context.Context, tag *Tag, explicitSlug string) error {
	tag.Name = strings.TrimSpace(tag.Name)

	validator := &validate.Validator{}
	validator.Required(FieldName, tag.Name).MaxLen(FieldName, tag.Name, maxNameLength)
	if explicitSlug != "" {
		validator.Slug(FieldSlug, explicitSlug)
	}
	validator.Custom(FieldName, explicitSlug == "" && tag.Name != "" && slug.From(tag.Name) == "",
		"Name must contain at least one letter or digit")
	if tag.Color != nil {
		validator.HexColor(FieldColor, *tag.Color)
	}
	if err := validator.Err(); err != nil {
		return err
	}

	tag.applySluggable(sluggable.OnCreate(tag.Name, explicitSlug))
	if err := service.claimSlug(ctx, tag); err != nil {
		return err
	}

	now := service.clock.Now()
	tag.ID = uuid.New()
	tag.IsActive = true
	tag.UsageCount = 0
	tag.CreatedAt = now
	tag.UpdatedAt = now

	inserted, err := service.repo.Create(ctx, tag)
	if err != nil {
		return err
	}
	if !inserted {
		return apperr.Conflict("Tag slug is already in use")
	}

	service.logger.InfoContext(ctx, "tag_created",
		slog.String("tag_id", tag.ID),
		slog.String("slug", tag.Slug),
	)
	return nil
}

// Update applies a partial update. A name change re-derives a slug that was
// never chosen explicitly.
func (service *Service) Update(ctx context.Context, id string, update Update) (*Tag, error) {
	tag, err := service.repo.FindByID(ctx, id)
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

	previous := tag.Slug
	tag.applySluggable(sluggable.OnUpdate(tag.Sluggable(), update.Name, update.Slug))
	if tag.Slug != previous {
		if err := service.claimSlug(ctx, tag); err != nil {
			return nil, err
		}
	}

	if update.Description != nil {
		tag.Description = update.Description
	}
	if update.Color != nil {
		tag.Color = update.Color
	}
	if update.IsActive != nil {
		tag.IsActive = *update.IsActive
	}
	tag.UpdatedAt = service.clock.Now()

	if err := service.repo.Update(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Delete removes a tag and its associations.
func (service *Service) Delete(ctx context.Context, id string) error {
	if err := service.repo.Delete(ctx, id); err != nil {
		return err
	}
	service.logger.WarnContext(ctx, "tag_deleted", slog.String("tag_id", id))
	return nil
}

/*
FindOrCreateByName returns the tag whose slug matches the normalized name,
creating it with a zero usage count when none exists.

Concurrent callers racing on the same name converge on one row: the loser's
insert is a no-op and it reads the winner's tag.
*/
func (service *Service) FindOrCreateByName(ctx context.Context, name string) (*Tag, error) {
	name = strings.TrimSpace(name)
	derived := slug.From(name)

	validator := &validate.Validator{}
	validator.Required(FieldName, name).MaxLen(FieldName, name, maxNameLength)
	validator.Custom(FieldName, name != "" && derived == "", "Name must contain at least one letter or digit")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	existing, err := service.repo.FindBySlug(ctx, derived)
	if err == nil {
		return existing, nil
	}
	if !apperr.Is(err, apperr.CodeNotFound) {
		return nil, err
	}

	now := service.clock.Now()
	tag := &Tag{
		ID:        uuid.New(),
		Name:      name,
		Slug:      derived,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	inserted, err := service.repo.Create(ctx, tag)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return service.repo.FindBySlug(ctx, derived)
	}

	service.logger.InfoContext(ctx, "tag_created",
		slog.String("tag_id", tag.ID),
		slog.String("slug", tag.Slug),
	)
	return tag, nil
}

// ResolveNames maps names to tags, creating missing ones. Names that
// normalize to the same slug collapse into one tag.
func (service *Service) ResolveNames(ctx context.Context, names []string) ([]*Tag, error) {
	seen := make(map[string]struct{}, len(names))
	tags := make([]*Tag, 0, len(names))

	for _, name := range names {
		key := slug.From(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		tag, err := service.FindOrCreateByName(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// # Usage Tracking

// Attached records that live content gained the given tags.
func (service *Service) Attached(ctx context.Context, ids []string) error {
	return service.repo.AdjustUsage(ctx, ids, 1)
}

// Detached records that live content lost the given tags.
func (service *Service) Detached(ctx context.Context, ids []string) error {
	return service.repo.AdjustUsage(ctx, ids, -1)
}

// Recompute repairs the usage count of a single tag.
func (service *Service) Recompute(ctx context.Context, id string) (*Tag, error) {
	tag, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	associations, err := service.repo.Associations(ctx, []string{id})
	if err != nil {
		return nil, err
	}

	corrections := Reconcile([]Tag{*tag}, associations, service.clock.Now())
	applied, err := service.apply(ctx, corrections)
	if err != nil {
		return nil, err
	}

	switch {
	case len(applied) > 0:
		tag.UsageCount = applied[0].To
	case len(corrections) > 0:
		// The count moved while it was being recomputed.
		return service.repo.FindByID(ctx, id)
	}
	return tag, nil
}

/*
ReconcileAll recomputes every tag's usage count from the association set and
writes the corrections. It returns the corrections that were written; a tag
whose count moved since it was read is skipped until the next run.

It is idempotent: a second run without intervening writes returns no
corrections.
*/
func (service *Service) ReconcileAll(ctx context.Context) ([]Correction, error) {
	tags, err := service.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	associations, err := service.repo.Associations(ctx, nil)
	if err != nil {
		return nil, err
	}

	corrections := Reconcile(tags, associations, service.clock.Now())
	applied, err := service.apply(ctx, corrections)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "tag_usage_reconciled",
		slog.Int("tags", len(tags)),
		slog.Int("corrected", len(applied)),
		slog.Int("skipped", len(corrections)-len(applied)),
	)
	return applied, nil
}

// # Internal Helpers

func (service *Service) apply(ctx context.Context, corrections []Correction) ([]Correction, error) {
	if len(corrections) == 0 {
		return nil, nil
	}

	applied, err := service.repo.ApplyCorrections(ctx, corrections)
	if err != nil {
		return nil, err
	}
	for _, correction := range applied {
		service.logger.WarnContext(ctx, "tag_usage_drift",
			slog.String("tag_id", correction.TagID),
			slog.Int("from", correction.From),
			slog.Int("to", correction.To),
		)
	}
	return applied, nil
}

// claimSlug makes a derived slug unique and rejects a taken explicit one.
func (service *Service) claimSlug(ctx context.Context, tag *Tag) error {
	exists := func(ctx context.Context, candidate string) (bool, error) {
		return service.repo.SlugExists(ctx, candidate, tag.ID)
	}

	if tag.SlugCustom {
		taken, err := exists(ctx, tag.Slug)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("Tag slug is already in use")
		}
		return nil
	}

	unique, err := sluggable.Unique(ctx, tag.Slug, exists)
	if err != nil {
		return err
	}
	tag.Slug = unique
	return nil
}
