// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package page

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/core/publication"
	"github.com/taibuivan/yomira-cms/internal/core/sluggable"
	"github.com/taibuivan/yomira-cms/internal/core/tree"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/clock"
	"github.com/taibuivan/yomira-cms/internal/platform/validate"
	"github.com/taibuivan/yomira-cms/pkg/slug"
	"github.com/taibuivan/yomira-cms/pkg/uuid"
)

const (
	maxTitleLength    = 255
	maxTemplateLength = 50
)

// # Service Layer

// Service manages the page hierarchy and its publication.
type Service struct {
	repo   Repository
	clock  clock.Clock
	logger *slog.Logger
}

// NewService constructs a new page [Service].
func NewService(repo Repository, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{repo: repo, clock: clock, logger: logger}
}

// # Reads

// Tree returns the nested hierarchy. With liveOnly, pages that are not live
// are left out together with their subtrees.
func (service *Service) Tree(ctx context.Context, liveOnly bool) ([]tree.Branch[Page], error) {
	forest, err := service.forest(ctx)
	if err != nil {
		return nil, err
	}

	branches, err := forest.Branches(nil)
	if err != nil {
		return nil, err
	}
	if liveOnly {
		branches = prune(branches, func(p Page) bool { return p.IsLive(service.clock.Now()) })
	}
	return branches, nil
}

// MenuPages returns the live pages flagged for navigation, nested.
func (service *Service) MenuPages(ctx context.Context) ([]tree.Branch[Page], error) {
	branches, err := service.Tree(ctx, true)
	if err != nil {
		return nil, err
	}
	return prune(branches, func(p Page) bool { return p.ShowInMenu }), nil
}

// Get returns a page with its path, breadcrumb and direct children.
func (service *Service) Get(ctx context.Context, id string) (*Detail, error) {
	forest, err := service.forest(ctx)
	if err != nil {
		return nil, err
	}
	return detail(forest, id)
}

/*
GetBySlug is [Service.Get] keyed by slug.

With liveOnly, a page that is not live (or that sits below a page that is not
live) reports NOT_FOUND, so drafts never leak through public routes.
*/
func (service *Service) GetBySlug(ctx context.Context, pageSlug string, liveOnly bool) (*Detail, error) {
	found, err := service.repo.FindBySlug(ctx, pageSlug)
	if err != nil {
		return nil, err
	}

	forest, err := service.forest(ctx)
	if err != nil {
		return nil, err
	}

	result, err := detail(forest, found.ID)
	if err != nil {
		return nil, err
	}
	if !liveOnly {
		return result, nil
	}

	now := service.clock.Now()
	ancestors, err := forest.Ancestors(found.ID)
	if err != nil {
		return nil, err
	}
	if !result.IsLive(now) {
		return nil, apperr.NotFound("Page")
	}
	for _, ancestor := range ancestors {
		if !ancestor.IsLive(now) {
			return nil, apperr.NotFound("Page")
		}
	}

	children := make([]Page, 0, len(result.Children))
	for _, child := range result.Children {
		if child.IsLive(now) {
			children = append(children, child)
		}
	}
	result.Children = children
	return result, nil
}

/*
LoadOwner resolves a page for comments and menu links.

Comments are accepted only while the page allows them and is live.
*/
func (service *Service) LoadOwner(ctx context.Context, id string) (owner.Snapshot, error) {
	forest, err := service.forest(ctx)
	if err != nil {
		return owner.Snapshot{}, err
	}

	page, ok := forest.Get(id)
	if !ok {
		return owner.Snapshot{}, apperr.NotFound("Page")
	}

	breadcrumb, err := forest.Breadcrumb(id)
	if err != nil {
		return owner.Snapshot{}, err
	}

	return owner.Snapshot{
		Ref:            owner.Ref{Type: owner.TypePage, ID: page.ID},
		Title:          page.NavigationTitle(),
		Path:           Path(breadcrumb),
		AllowsComments: page.AllowComments && page.IsLive(service.clock.Now()),
	}, nil
}

// # Management

/*
Create validates and stores a new page. A page created with a publish time is
scheduled or published according to that time; otherwise it starts as a draft.

Returns:
  - error: VALIDATION_ERROR, CONFLICT, NOT_FOUND (parent)
*/
func (service *Service) Create(ctx context.Context, page *Page, explicitSlug string) error {
	page.Title = strings.TrimSpace(page.Title)
	if page.Template == "" {
		page.Template = DefaultTemplate
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, page.Title).MaxLen(FieldTitle, page.Title, maxTitleLength)
	if explicitSlug != "" {
		validator.Slug(FieldSlug, explicitSlug)
	}
	validator.Custom(FieldTitle, explicitSlug == "" && page.Title != "" && slug.From(page.Title) == "",
		"Title must contain at least one letter or digit")
	validator.Slug(FieldTemplate, page.Template).MaxLen(FieldTemplate, page.Template, maxTemplateLength)
	if err := validator.Err(); err != nil {
		return err
	}

	if page.ParentID != nil {
		if _, err := service.repo.FindByID(ctx, *page.ParentID); err != nil {
			if apperr.Is(err, apperr.CodeNotFound) {
				return apperr.NotFound("Parent page")
			}
			return err
		}
	}

	now := service.clock.Now()
	state, err := publication.Draft().SetPublishAt(page.PublishAt, now)
	if err != nil {
		return err
	}
	page.State = state

	page.applySluggable(sluggable.OnCreate(page.Title, explicitSlug))
	if err := service.claimSlug(ctx, page); err != nil {
		return err
	}

	page.ID = uuid.New()
	page.CommentCount = 0
	page.ViewCount = 0
	page.CreatedAt = now
	page.UpdatedAt = now

	if err := service.repo.Create(ctx, page); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "page_created",
		slog.String("page_id", page.ID),
		slog.String("slug", page.Slug),
		slog.String("status", string(page.Status)),
	)
	return nil
}

// Update applies a partial update. Lifecycle changes go through the
// dedicated transitions.
func (service *Service) Update(ctx context.Context, id string, update Update) (*Page, error) {
	page, err := service.repo.FindByID(ctx, id)
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
	if update.Template != nil {
		validator.Slug(FieldTemplate, *update.Template).MaxLen(FieldTemplate, *update.Template, maxTemplateLength)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	previous := page.Slug
	page.applySluggable(sluggable.OnUpdate(page.Sluggable(), update.Title, update.Slug))
	if page.Slug != previous {
		if err := service.claimSlug(ctx, page); err != nil {
			return nil, err
		}
	}

	if update.Excerpt != nil {
		page.Excerpt = update.Excerpt
	}
	if update.Content != nil {
		page.Content = *update.Content
	}
	if update.SortOrder != nil {
		page.SortOrder = *update.SortOrder
	}
	if update.ShowInMenu != nil {
		page.ShowInMenu = *update.ShowInMenu
	}
	if update.MenuTitle != nil {
		page.MenuTitle = update.MenuTitle
	}
	if update.Template != nil {
		page.Template = *update.Template
	}
	if update.AllowComments != nil {
		page.AllowComments = *update.AllowComments
	}
	page.UpdatedAt = service.clock.Now()

	if err := service.repo.Update(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

/*
Move reparents a page (nil parent makes it a root) and optionally changes its
sort order. The public path of the whole subtree changes with it.

Returns:
  - error: INVALID_PARENT, NOT_FOUND, CYCLE_DETECTED
*/
func (service *Service) Move(ctx context.Context, id string, parentID *string, sortOrder *int) (*Page, error) {
	page, err := service.repo.Move(ctx, func(all []Page) (*Page, error) {
		forest := tree.New(all)

		page, ok := forest.Get(id)
		if !ok {
			return nil, apperr.NotFound("Page")
		}

		if err := forest.Reparent(id, parentID); err != nil {
			return nil, err
		}

		page.ParentID = parentID
		if sortOrder != nil {
			page.SortOrder = *sortOrder
		}
		page.UpdatedAt = service.clock.Now()
		return &page, nil
	})
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "page_moved",
		slog.String("page_id", id),
		slog.Any("parent_id", parentID),
	)
	return page, nil
}

// Delete removes a page with its subtree and their comments, returning the
// removed page ids.
func (service *Service) Delete(ctx context.Context, id string) ([]string, error) {
	forest, err := service.forest(ctx)
	if err != nil {
		return nil, err
	}

	removed, err := forest.Remove(id)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return nil, apperr.NotFound("Page")
		}
		return nil, err
	}

	if err := service.repo.DeleteMany(ctx, removed); err != nil {
		return nil, err
	}

	service.logger.WarnContext(ctx, "page_deleted",
		slog.String("page_id", id),
		slog.Int("removed", len(removed)),
	)
	return removed, nil
}

// # Publication

// Publish makes the page live now.
func (service *Service) Publish(ctx context.Context, id string) (*Page, error) {
	return service.transition(ctx, id, "page_published", func(state publication.State, now time.Time) (publication.State, error) {
		return state.Publish(now)
	})
}

// Unpublish returns the page to draft.
func (service *Service) Unpublish(ctx context.Context, id string) (*Page, error) {
	return service.transition(ctx, id, "page_unpublished", func(state publication.State, _ time.Time) (publication.State, error) {
		return state.Unpublish()
	})
}

// Schedule sets or clears the publish time and re-derives the status.
func (service *Service) Schedule(ctx context.Context, id string, at *time.Time) (*Page, error) {
	return service.transition(ctx, id, "page_scheduled", func(state publication.State, now time.Time) (publication.State, error) {
		return state.SetPublishAt(at, now)
	})
}

// Archive retires the page.
func (service *Service) Archive(ctx context.Context, id string) (*Page, error) {
	return service.transition(ctx, id, "page_archived", func(state publication.State, _ time.Time) (publication.State, error) {
		return state.Archive(), nil
	})
}

// Reactivate brings an archived page back as a draft.
func (service *Service) Reactivate(ctx context.Context, id string) (*Page, error) {
	return service.transition(ctx, id, "page_reactivated", func(state publication.State, _ time.Time) (publication.State, error) {
		return state.Reactivate()
	})
}

/*
PromoteDue publishes every scheduled page whose time has come and returns how
many were promoted. A page changed concurrently is skipped and picked up by
the next sweep if still due.
*/
func (service *Service) PromoteDue(ctx context.Context) (int, error) {
	now := service.clock.Now()

	due, err := service.repo.ListDue(ctx, now)
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, page := range due {
		next, changed := page.State.Promote(now)
		if !changed {
			continue
		}

		written, err := service.repo.SwapState(ctx, page.ID, page.State, next, now)
		if err != nil {
			return promoted, err
		}
		if written {
			promoted++
		}
	}

	if promoted > 0 {
		service.logger.InfoContext(ctx, "pages_promoted", slog.Int("count", promoted))
	}
	return promoted, nil
}

// # Internal Helpers

type transitionFunc func(state publication.State, now time.Time) (publication.State, error)

// maxSwapAttempts bounds how often a transition re-reads a page whose state
// moved under it before giving up with a conflict.
const maxSwapAttempts = 3

func (service *Service) transition(ctx context.Context, id, event string, apply transitionFunc) (*Page, error) {
	for range maxSwapAttempts {
		page, err := service.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}

		now := service.clock.Now()
		next, err := apply(page.State, now)
		if err != nil {
			return nil, err
		}

		written, err := service.repo.SwapState(ctx, id, page.State, next, now)
		if err != nil {
			return nil, err
		}
		if !written {
			continue
		}

		from := page.Status
		page.State = next
		page.UpdatedAt = now

		service.logger.InfoContext(ctx, event,
			slog.String("page_id", id),
			slog.String("from", string(from)),
			slog.String("to", string(next.Status)),
		)
		return page, nil
	}

	service.logger.WarnContext(ctx, "page_transition_conflict",
		slog.String("page_id", id),
		slog.String("event", event),
	)
	return nil, apperr.Conflict("Page was changed concurrently, retry the request")
}

func (service *Service) forest(ctx context.Context) (*tree.Forest[Page], error) {
	pages, err := service.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	return tree.New(pages), nil
}

func detail(forest *tree.Forest[Page], id string) (*Detail, error) {
	page, ok := forest.Get(id)
	if !ok {
		return nil, apperr.NotFound("Page")
	}

	breadcrumb, err := forest.Breadcrumb(id)
	if err != nil {
		return nil, err
	}

	children, err := forest.Children(id)
	if err != nil {
		return nil, err
	}

	return &Detail{Page: page, Path: Path(breadcrumb), Breadcrumb: breadcrumb, Children: children}, nil
}

// prune drops every branch failing keep together with its children.
func prune(branches []tree.Branch[Page], keep func(Page) bool) []tree.Branch[Page] {
	kept := make([]tree.Branch[Page], 0, len(branches))
	for _, branch := range branches {
		if !keep(branch.Value) {
			continue
		}
		branch.Children = prune(branch.Children, keep)
		kept = append(kept, branch)
	}
	return kept
}

// claimSlug makes a derived slug unique and rejects a taken explicit one.
func (service *Service) claimSlug(ctx context.Context, page *Page) error {
	exists := func(ctx context.Context, candidate string) (bool, error) {
		return service.repo.SlugExists(ctx, candidate, page.ID)
	}

	if page.SlugCustom {
		taken, err := exists(ctx, page.Slug)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("Page slug is already in use")
		}
		return nil
	}

	unique, err := sluggable.Unique(ctx, page.Slug, exists)
	if err != nil {
		return err
	}
	page.Slug = unique
	return nil
}
