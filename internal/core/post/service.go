// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/core/publication"
	"github.com/taibuivan/yomira-cms/internal/core/sluggable"
	"github.com/taibuivan/yomira-cms/internal/core/tag"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/clock"
	"github.com/taibuivan/yomira-cms/internal/platform/validate"
	"github.com/taibuivan/yomira-cms/pkg/slug"
	"github.com/taibuivan/yomira-cms/pkg/uuid"
)

const (
	maxTitleLength = 255
	maxTagsPerPost = 20
	copySuffix     = " (Copy)"

	// DefaultRelatedLimit bounds [Service.Related] when no limit is given.
	DefaultRelatedLimit = 5
)

// TagIndex is the part of the tag domain posts depend on.
type TagIndex interface {
	ResolveNames(ctx context.Context, names []string) ([]*tag.Tag, error)
	Attached(ctx context.Context, ids []string) error
	Detached(ctx context.Context, ids []string) error
}

// CategoryIndex is the part of the category domain posts depend on.
type CategoryIndex interface {
	SubtreeIDs(ctx context.Context, id string) ([]string, error)
}

// # Service Layer

// Service manages posts, their tags and their publication.
type Service struct {
	repo       Repository
	tags       TagIndex
	categories CategoryIndex
	clock      clock.Clock
	logger     *slog.Logger
}

// NewService constructs a new post [Service].
func NewService(repo Repository, tags TagIndex, categories CategoryIndex, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{repo: repo, tags: tags, categories: categories, clock: clock, logger: logger}
}

// # Reads

// List returns a filtered page of posts in any state.
func (service *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]*Post, int, error) {
	if filter.CategoryID != nil {
		ids, err := service.categories.SubtreeIDs(ctx, *filter.CategoryID)
		if err != nil {
			return nil, 0, err
		}
		filter.CategoryIDs = ids
	}
	return service.repo.List(ctx, filter, limit, offset)
}

// Published is [Service.List] restricted to live posts.
func (service *Service) Published(ctx context.Context, filter Filter, limit, offset int) ([]*Post, int, error) {
	now := service.clock.Now()
	filter.LiveAt = &now
	filter.Status = nil
	return service.List(ctx, filter, limit, offset)
}

// Get returns a post in any state.
func (service *Service) Get(ctx context.Context, id string) (*Post, error) {
	return service.repo.FindByID(ctx, id)
}

/*
View returns a live post by slug and counts the view. A failed view count is
logged and does not fail the read.

Returns:
  - error: NOT_FOUND when the post is missing or not live
*/
func (service *Service) View(ctx context.Context, postSlug string) (*Post, error) {
	post, err := service.repo.FindBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	if !post.IsLive(service.clock.Now()) {
		return nil, apperr.NotFound("Post")
	}

	if err := service.repo.IncrementViews(ctx, post.ID); err != nil {
		service.logger.WarnContext(ctx, "post_view_not_counted",
			slog.String("post_id", post.ID),
			slog.Any("error", err),
		)
	} else {
		post.ViewCount++
	}
	return post, nil
}

// Related returns live posts sharing the category or a tag with the post.
func (service *Service) Related(ctx context.Context, id string, limit int) ([]*Post, error) {
	post, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	return service.repo.Related(ctx, post, service.clock.Now(), limit)
}

// LoadOwner resolves a post for comments and menu links.
func (service *Service) LoadOwner(ctx context.Context, id string) (owner.Snapshot, error) {
	post, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return owner.Snapshot{}, err
	}

	return owner.Snapshot{
		Ref:            owner.Ref{Type: owner.TypePost, ID: post.ID},
		Title:          post.Title,
		Path:           post.Path(),
		AllowsComments: post.AllowComments && post.IsLive(service.clock.Now()),
	}, nil
}

// # Management

/*
Create validates and stores a new post with its tags. The status follows the
publish time: none yields a draft, a future one schedules the post.

Returns:
  - error: VALIDATION_ERROR, CONFLICT, NOT_FOUND (category)
*/
func (service *Service) Create(ctx context.Context, post *Post, explicitSlug string, tagNames []string) error {
	post.Title = strings.TrimSpace(post.Title)

	validator := &validate.Validator{}
	validator.Required(FieldTitle, post.Title).MaxLen(FieldTitle, post.Title, maxTitleLength)
	if explicitSlug != "" {
		validator.Slug(FieldSlug, explicitSlug)
	}
	validator.Custom(FieldTitle, explicitSlug == "" && post.Title != "" && slug.From(post.Title) == "",
		"Title must contain at least one letter or digit")
	validator.Custom(FieldTags, len(tagNames) > maxTagsPerPost, "Too many tags")
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.checkCategory(ctx, post.CategoryID); err != nil {
		return err
	}

	now := service.clock.Now()
	state, err := publication.Draft().SetPublishAt(post.PublishAt, now)
	if err != nil {
		return err
	}
	post.State = state

	if post.Excerpt == nil || *post.Excerpt == "" {
		excerpt := DeriveExcerpt(post.Content)
		post.Excerpt = &excerpt
	}

	post.applySluggable(sluggable.OnCreate(post.Title, explicitSlug))
	if err := service.claimSlug(ctx, post); err != nil {
		return err
	}

	post.ID = uuid.New()
	post.ViewCount = 0
	post.LikeCount = 0
	post.CommentCount = 0
	post.CreatedAt = now
	post.UpdatedAt = now
	post.Tags = make([]TagRef, 0)

	if err := service.repo.Create(ctx, post); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "post_created",
		slog.String("post_id", post.ID),
		slog.String("slug", post.Slug),
		slog.String("status", string(post.Status)),
	)

	if len(tagNames) == 0 {
		return nil
	}
	_, err = service.syncTags(ctx, post, tagNames)
	return err
}

// Update applies a partial update. An emptied excerpt is derived again from
// the content.
func (service *Service) Update(ctx context.Context, id string, update Update) (*Post, error) {
	post, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	if update.Title != nil {
		trimmed := strings.TrimSpace(*update.Title)
		update.Title = &trimmed
		validator.Required(FieldTitle, trimmed).MaxLen(FieldTitle, trimmed, maxTitleLength)
	}
	if update.Slug != nil && *update.Slug != "" {
		validator.Slug(FieldSlug, *update.Slug)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if update.CategoryID != nil {
		if err := service.checkCategory(ctx, update.CategoryID); err != nil {
			return nil, err
		}
		post.CategoryID = update.CategoryID
	}
	if update.ClearCategory {
		post.CategoryID = nil
	}

	previous := post.Slug
	post.applySluggable(sluggable.OnUpdate(post.Sluggable(), update.Title, update.Slug))
	if post.Slug != previous {
		if err := service.claimSlug(ctx, post); err != nil {
			return nil, err
		}
	}

	if update.Content != nil {
		post.Content = *update.Content
	}
	if update.Excerpt != nil {
		post.Excerpt = update.Excerpt
	}
	if post.Excerpt == nil || *post.Excerpt == "" {
		excerpt := DeriveExcerpt(post.Content)
		post.Excerpt = &excerpt
	}
	if update.FeaturedImage != nil {
		post.FeaturedImage = update.FeaturedImage
	}
	if update.AllowComments != nil {
		post.AllowComments = *update.AllowComments
	}
	if update.IsFeatured != nil {
		post.IsFeatured = *update.IsFeatured
	}
	if update.IsSticky != nil {
		post.IsSticky = *update.IsSticky
	}
	post.UpdatedAt = service.clock.Now()

	if err := service.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

/*
SyncTags replaces the tags of a post by name. Unknown names create tags.
Usage counts move only when the post is live.
*/
func (service *Service) SyncTags(ctx context.Context, id string, names []string) (*Post, error) {
	validator := &validate.Validator{}
	validator.Custom(FieldTags, len(names) > maxTagsPerPost, "Too many tags")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	post, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return service.syncTags(ctx, post, names)
}

// Duplicate copies a post as a new draft titled "<title> (Copy)" with the
// same tags and fresh counters.
func (service *Service) Duplicate(ctx context.Context, id string) (*Post, error) {
	source, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := service.clock.Now()
	clone := &Post{
		ID:            uuid.New(),
		Excerpt:       source.Excerpt,
		Content:       source.Content,
		FeaturedImage: source.FeaturedImage,
		State:         publication.Draft(),
		AuthorID:      source.AuthorID,
		CategoryID:    source.CategoryID,
		IsFeatured:    source.IsFeatured,
		AllowComments: source.AllowComments,
		IsSticky:      source.IsSticky,
		CreatedAt:     now,
		UpdatedAt:     now,
		Tags:          slices.Clone(source.Tags),
	}
	clone.applySluggable(sluggable.OnCreate(source.Title+copySuffix, ""))
	if err := service.claimSlug(ctx, clone); err != nil {
		return nil, err
	}

	if err := service.repo.Create(ctx, clone); err != nil {
		return nil, err
	}
	if err := service.repo.SetTags(ctx, clone.ID, clone.TagIDs(), now); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "post_duplicated",
		slog.String("source_id", source.ID),
		slog.String("post_id", clone.ID),
	)
	return clone, nil
}

// Delete removes a post with its tag links and comments.
func (service *Service) Delete(ctx context.Context, id string) error {
	post, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := service.repo.Delete(ctx, id); err != nil {
		return err
	}

	if post.IsLive(service.clock.Now()) && len(post.Tags) > 0 {
		if err := service.tags.Detached(ctx, post.TagIDs()); err != nil {
			return err
		}
	}

	service.logger.WarnContext(ctx, "post_deleted", slog.String("post_id", id))
	return nil
}

// # Publication

// Publish makes the post live now.
func (service *Service) Publish(ctx context.Context, id string) (*Post, error) {
	return service.transition(ctx, id, "post_published", func(state publication.State, now time.Time) (publication.State, error) {
		return state.Publish(now)
	})
}

// Unpublish returns the post to draft.
func (service *Service) Unpublish(ctx context.Context, id string) (*Post, error) {
	return service.transition(ctx, id, "post_unpublished", func(state publication.State, _ time.Time) (publication.State, error) {
		return state.Unpublish()
	})
}

// Schedule sets or clears the publish time and re-derives the status.
func (service *Service) Schedule(ctx context.Context, id string, at *time.Time) (*Post, error) {
	return service.transition(ctx, id, "post_scheduled", func(state publication.State, now time.Time) (publication.State, error) {
		return state.SetPublishAt(at, now)
	})
}

// Archive retires the post.
func (service *Service) Archive(ctx context.Context, id string) (*Post, error) {
	return service.transition(ctx, id, "post_archived", func(state publication.State, _ time.Time) (publication.State, error) {
		return state.Archive(), nil
	})
}

// Reactivate brings an archived post back as a draft.
func (service *Service) Reactivate(ctx context.Context, id string) (*Post, error) {
	return service.transition(ctx, id, "post_reactivated", func(state publication.State, _ time.Time) (publication.State, error) {
		return state.Reactivate()
	})
}

/*
PromoteDue publishes every scheduled post whose time has come, credits their
tags, and returns how many were promoted. A post changed concurrently is
skipped.
*/
func (service *Service) PromoteDue(ctx context.Context) (int, error) {
	now := service.clock.Now()

	due, err := service.repo.ListDue(ctx, now)
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, post := range due {
		next, changed := post.State.Promote(now)
		if !changed {
			continue
		}

		written, err := service.repo.SwapState(ctx, post.ID, post.State, next, now)
		if err != nil {
			return promoted, err
		}
		if !written {
			continue
		}

		promoted++
		if len(post.Tags) > 0 {
			if err := service.tags.Attached(ctx, post.TagIDs()); err != nil {
				return promoted, err
			}
		}
	}

	if promoted > 0 {
		service.logger.InfoContext(ctx, "posts_promoted", slog.Int("count", promoted))
	}
	return promoted, nil
}

// # Internal Helpers

type transitionFunc func(state publication.State, now time.Time) (publication.State, error)

// maxSwapAttempts bounds how often a transition re-reads a post whose state
// moved under it before giving up with a conflict.
const maxSwapAttempts = 3

/*
transition applies a lifecycle change as a compare-and-set on the stored
state. Tags are credited only by the caller whose write landed, so two
concurrent publishes count a post once.
*/
func (service *Service) transition(ctx context.Context, id, event string, apply transitionFunc) (*Post, error) {
	for range maxSwapAttempts {
		post, err := service.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}

		now := service.clock.Now()
		next, err := apply(post.State, now)
		if err != nil {
			return nil, err
		}

		written, err := service.repo.SwapState(ctx, id, post.State, next, now)
		if err != nil {
			return nil, err
		}
		if !written {
			continue
		}

		wasLive := post.IsLive(now)
		from := post.Status
		post.State = next
		post.UpdatedAt = now

		if err := service.creditTags(ctx, post.TagIDs(), wasLive, post.IsLive(now)); err != nil {
			return nil, err
		}

		service.logger.InfoContext(ctx, event,
			slog.String("post_id", id),
			slog.String("from", string(from)),
			slog.String("to", string(next.Status)),
		)
		return post, nil
	}

	service.logger.WarnContext(ctx, "post_transition_conflict",
		slog.String("post_id", id),
		slog.String("event", event),
	)
	return nil, apperr.Conflict("Post was changed concurrently, retry the request")
}

// creditTags reports a crossing of the live boundary to the tag domain.
func (service *Service) creditTags(ctx context.Context, ids []string, wasLive, isLive bool) error {
	if len(ids) == 0 || wasLive == isLive {
		return nil
	}
	if isLive {
		return service.tags.Attached(ctx, ids)
	}
	return service.tags.Detached(ctx, ids)
}

func (service *Service) syncTags(ctx context.Context, post *Post, names []string) (*Post, error) {
	resolved, err := service.tags.ResolveNames(ctx, names)
	if err != nil {
		return nil, err
	}

	next := make([]TagRef, len(resolved))
	for i, t := range resolved {
		next[i] = TagRef{ID: t.ID, Name: t.Name, Slug: t.Slug}
	}
	added, removed := diffTags(post.Tags, next)

	now := service.clock.Now()
	if err := service.repo.SetTags(ctx, post.ID, tagIDs(next), now); err != nil {
		return nil, err
	}
	post.Tags = next

	if post.IsLive(now) {
		if len(added) > 0 {
			if err := service.tags.Attached(ctx, added); err != nil {
				return nil, err
			}
		}
		if len(removed) > 0 {
			if err := service.tags.Detached(ctx, removed); err != nil {
				return nil, err
			}
		}
	}

	service.logger.InfoContext(ctx, "post_tags_synced",
		slog.String("post_id", post.ID),
		slog.Int("added", len(added)),
		slog.Int("removed", len(removed)),
	)
	return post, nil
}

// diffTags returns the ids present only in next and only in current.
func diffTags(current, next []TagRef) (added, removed []string) {
	currentIDs := tagIDs(current)
	nextIDs := tagIDs(next)

	for _, id := range nextIDs {
		if !slices.Contains(currentIDs, id) {
			added = append(added, id)
		}
	}
	for _, id := range currentIDs {
		if !slices.Contains(nextIDs, id) {
			removed = append(removed, id)
		}
	}
	return added, removed
}

func tagIDs(refs []TagRef) []string {
	return Post{Tags: refs}.TagIDs()
}

func (service *Service) checkCategory(ctx context.Context, categoryID *string) error {
	if categoryID == nil {
		return nil
	}
	if _, err := service.categories.SubtreeIDs(ctx, *categoryID); err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return apperr.NotFound("Category")
		}
		return err
	}
	return nil
}

// claimSlug makes a derived slug unique and rejects a taken explicit one.
func (service *Service) claimSlug(ctx context.Context, post *Post) error {
	exists := func(ctx context.Context, candidate string) (bool, error) {
		return service.repo.SlugExists(ctx, candidate, post.ID)
	}

	if post.SlugCustom {
		taken, err := exists(ctx, post.Slug)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("Post slug is already in use")
		}
		return nil
	}

	unique, err := sluggable.Unique(ctx, post.Slug, exists)
	if err != nil {
		return err
	}
	post.Slug = unique
	return nil
}
