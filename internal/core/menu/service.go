// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package menu

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/yomira-cms/internal/core/access"
	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/core/sluggable"
	"github.com/taibuivan/yomira-cms/internal/core/tree"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/clock"
	"github.com/taibuivan/yomira-cms/internal/platform/validate"
	"github.com/taibuivan/yomira-cms/pkg/slug"
	"github.com/taibuivan/yomira-cms/pkg/uuid"
)

const (
	maxNameLength  = 100
	maxTitleLength = 150
	maxURLLength   = 2048
)

// # Service Layer

// Service manages menus and renders them for viewers.
type Service struct {
	repo   Repository
	owners *owner.Registry
	clock  clock.Clock
	logger *slog.Logger
}

// NewService constructs a new menu [Service]. owners resolves items that link
// to posts and pages.
func NewService(repo Repository, owners *owner.Registry, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{repo: repo, owners: owners, clock: clock, logger: logger}
}

// # Menus

// Get returns a menu by id.
func (service *Service) Get(ctx context.Context, id string) (*Menu, error) {
	return service.repo.FindByID(ctx, id)
}

// List returns every menu, optionally narrowed to one location.
func (service *Service) List(ctx context.Context, location *string) ([]*Menu, error) {
	return service.repo.List(ctx, location, false)
}

// Create validates and stores a menu.
func (service *Service) Create(ctx context.Context, menu *Menu, explicitSlug string) error {
	menu.Name = strings.TrimSpace(menu.Name)

	validator := &validate.Validator{}
	validator.Required(FieldName, menu.Name).MaxLen(FieldName, menu.Name, maxNameLength)
	if explicitSlug != "" {
		validator.Slug(FieldSlug, explicitSlug)
	}
	validator.Custom(FieldName, explicitSlug == "" && menu.Name != "" && slug.From(menu.Name) == "",
		"Name must contain at least one letter or digit")
	if menu.Location != nil {
		validator.MaxLen(FieldLocation, *menu.Location, 50)
	}
	if err := validator.Err(); err != nil {
		return err
	}

	menu.applySluggable(sluggable.OnCreate(menu.Name, explicitSlug))
	if err := service.claimSlug(ctx, menu); err != nil {
		return err
	}

	now := service.clock.Now()
	menu.ID = uuid.New()
	menu.IsActive = true
	menu.CreatedAt = now
	menu.UpdatedAt = now

	if err := service.repo.Create(ctx, menu); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "menu_created",
		slog.String("menu_id", menu.ID),
		slog.String("slug", menu.Slug),
	)
	return nil
}

// Update applies a partial update.
func (service *Service) Update(ctx context.Context, id string, update Update) (*Menu, error) {
	menu, err := service.repo.FindByID(ctx, id)
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
	if err := validator.Err(); err != nil {
		return nil, err
	}

	previous := menu.Slug
	menu.applySluggable(sluggable.OnUpdate(menu.Sluggable(), update.Name, update.Slug))
	if menu.Slug != previous {
		if err := service.claimSlug(ctx, menu); err != nil {
			return nil, err
		}
	}

	if update.Description != nil {
		menu.Description = update.Description
	}
	if update.Location != nil {
		menu.Location = update.Location
	}
	if update.IsActive != nil {
		menu.IsActive = *update.IsActive
	}
	menu.UpdatedAt = service.clock.Now()

	if err := service.repo.Update(ctx, menu); err != nil {
		return nil, err
	}
	return menu, nil
}

// Delete removes a menu and all of its items.
func (service *Service) Delete(ctx context.Context, id string) error {
	if err := service.repo.Delete(ctx, id); err != nil {
		return err
	}
	service.logger.WarnContext(ctx, "menu_deleted", slog.String("menu_id", id))
	return nil
}

// # Rendering

/*
Render returns an active menu with the items viewer may see.

Returns:
  - error: NOT_FOUND when the menu is missing or inactive
*/
func (service *Service) Render(ctx context.Context, menuSlug string, viewer *access.User) (*View, error) {
	menu, err := service.repo.FindBySlug(ctx, menuSlug)
	if err != nil {
		return nil, err
	}
	if !menu.IsActive {
		return nil, apperr.NotFound("Menu")
	}
	return service.render(ctx, menu, viewer)
}

// Location renders every active menu assigned to location.
func (service *Service) Location(ctx context.Context, location string, viewer *access.User) ([]View, error) {
	menus, err := service.repo.List(ctx, &location, true)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(menus))
	for _, menu := range menus {
		view, err := service.render(ctx, menu, viewer)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (service *Service) render(ctx context.Context, menu *Menu, viewer *access.User) (*View, error) {
	items, err := service.repo.Items(ctx, menu.ID)
	if err != nil {
		return nil, err
	}

	branches, err := VisibleTree(items, viewer)
	if err != nil {
		return nil, err
	}

	links, err := service.resolveLinks(ctx, branches)
	if err != nil {
		return nil, err
	}

	return &View{Menu: *menu, Items: Render(branches, links)}, nil
}

// resolveLinks loads the linked entity of every visible item that has no
// literal URL. Links to entities that no longer exist fall back to "#".
func (service *Service) resolveLinks(ctx context.Context, branches []tree.Branch[Item]) (map[string]owner.Snapshot, error) {
	links := make(map[string]owner.Snapshot)

	var walk func([]tree.Branch[Item]) error
	walk = func(level []tree.Branch[Item]) error {
		for _, branch := range level {
			item := branch.Value
			if item.Link != nil && (item.URL == nil || *item.URL == "") {
				snapshot, err := service.owners.Load(ctx, *item.Link)
				switch {
				case err == nil:
					links[item.ID] = snapshot
				case apperr.Is(err, apperr.CodeNotFound), apperr.Is(err, apperr.CodeValidation):
					service.logger.DebugContext(ctx, "menu_link_unresolved",
						slog.String("item_id", item.ID),
						slog.String("link_type", string(item.Link.Type)),
					)
				default:
					return err
				}
			}
			if err := walk(branch.Children); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(branches); err != nil {
		return nil, err
	}
	return links, nil
}

// # Items

// Items returns the full item tree of a menu, hidden items included.
func (service *Service) Items(ctx context.Context, menuID string) ([]tree.Branch[Item], error) {
	if _, err := service.repo.FindByID(ctx, menuID); err != nil {
		return nil, err
	}

	items, err := service.repo.Items(ctx, menuID)
	if err != nil {
		return nil, err
	}
	return tree.New(items).Branches(nil)
}

/*
AddItem appends an item to a menu, optionally below parentID.

Returns:
  - error: VALIDATION_ERROR, NOT_FOUND (menu, parent or linked entity)
*/
func (service *Service) AddItem(ctx context.Context, menuID string, parentID *string, input ItemInput) (*Item, error) {
	if _, err := service.repo.FindByID(ctx, menuID); err != nil {
		return nil, err
	}

	now := service.clock.Now()
	item := &Item{
		ID:        uuid.New(),
		MenuID:    menuID,
		Target:    TargetSelf,
		IsActive:  true,
		Rules:     []Rule{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	item.apply(input)

	if err := service.validateItem(ctx, item, input); err != nil {
		return nil, err
	}

	if parentID != nil {
		parent, err := service.repo.FindItem(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.MenuID != menuID {
			return nil, apperr.InvalidParent("Parent item belongs to another menu")
		}
		item.ParentID = parentID
	}

	if err := service.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "menu_item_created",
		slog.String("menu_id", menuID),
		slog.String("item_id", item.ID),
	)
	return item, nil
}

// UpdateItem applies a partial update to an item. The parent is changed with
// [Service.MoveItem].
func (service *Service) UpdateItem(ctx context.Context, id string, input ItemInput) (*Item, error) {
	item, err := service.repo.FindItem(ctx, id)
	if err != nil {
		return nil, err
	}

	item.apply(input)
	if err := service.validateItem(ctx, item, input); err != nil {
		return nil, err
	}
	item.UpdatedAt = service.clock.Now()

	if err := service.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

/*
MoveItem reparents an item within its menu (nil parent moves it to the top
level) and optionally changes its sort order.

Returns:
  - error: INVALID_PARENT when the move would create a cycle, NOT_FOUND
*/
func (service *Service) MoveItem(ctx context.Context, id string, parentID *string, sortOrder *int) (*Item, error) {
	found, err := service.repo.FindItem(ctx, id)
	if err != nil {
		return nil, err
	}

	item, err := service.repo.MoveItem(ctx, found.MenuID, func(items []Item) (*Item, error) {
		forest := tree.New(items)

		item, ok := forest.Get(id)
		if !ok {
			return nil, apperr.NotFound("Menu item")
		}
		if parentID != nil {
			if _, ok := forest.Get(*parentID); !ok {
				return nil, apperr.InvalidParent("Parent item belongs to another menu")
			}
		}
		if err := forest.Reparent(id, parentID); err != nil {
			return nil, err
		}

		item.ParentID = parentID
		if sortOrder != nil {
			item.SortOrder = *sortOrder
		}
		item.UpdatedAt = service.clock.Now()
		return &item, nil
	})
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "menu_item_moved", slog.String("item_id", id))
	return item, nil
}

// DeleteItem removes an item with its whole subtree and returns the removed ids.
func (service *Service) DeleteItem(ctx context.Context, id string) ([]string, error) {
	item, err := service.repo.FindItem(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := service.repo.Items(ctx, item.MenuID)
	if err != nil {
		return nil, err
	}

	removed, err := tree.New(items).Remove(id)
	if err != nil {
		return nil, err
	}

	if err := service.repo.DeleteItems(ctx, removed); err != nil {
		return nil, err
	}

	service.logger.WarnContext(ctx, "menu_item_deleted",
		slog.String("item_id", id),
		slog.Int("removed", len(removed)),
	)
	return removed, nil
}

// # Internal Helpers

// apply copies the non-nil parts of input onto the item.
func (i *Item) apply(input ItemInput) {
	if input.Title != nil {
		i.Title = strings.TrimSpace(*input.Title)
	}
	if input.ClearURL {
		i.URL = nil
	} else if input.URL != nil {
		i.URL = input.URL
	}
	if input.ClearLink {
		i.Link = nil
	} else if input.Link != nil {
		i.Link = input.Link
	}
	if input.SortOrder != nil {
		i.SortOrder = *input.SortOrder
	}
	if input.Target != nil {
		i.Target = *input.Target
	}
	if input.CSSClass != nil {
		i.CSSClass = input.CSSClass
	}
	if input.Icon != nil {
		i.Icon = input.Icon
	}
	if input.IsActive != nil {
		i.IsActive = *input.IsActive
	}
	if input.Rules != nil {
		i.Rules = *input.Rules
	}
}

/*
validateItem checks an item before it is written.

Rules of unknown kind are accepted and evaluated as visible. They are logged
so that a typo in a rule does not silently expose an item.
*/
func (service *Service) validateItem(ctx context.Context, item *Item, input ItemInput) error {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, item.Title).MaxLen(FieldTitle, item.Title, maxTitleLength)
	validator.OneOf(FieldTarget, item.Target, TargetSelf, TargetBlank)
	if item.URL != nil {
		validator.MaxLen(FieldURL, *item.URL, maxURLLength)
	}
	for _, rule := range item.Rules {
		validator.Custom(FieldRules, rule.Kind == "" || strings.TrimSpace(rule.Value) == "",
			"Every rule needs a type and a value")
	}
	if err := validator.Err(); err != nil {
		return err
	}

	if input.Link != nil && !input.ClearLink {
		if _, err := service.owners.Load(ctx, *input.Link); err != nil {
			return err
		}
	}

	for _, rule := range UnknownRules(item.Rules) {
		service.logger.WarnContext(ctx, "menu_rule_unknown",
			slog.String("item_id", item.ID),
			slog.String("type", string(rule.Kind)),
			slog.String("value", rule.Value),
		)
	}
	return nil
}

// claimSlug makes a derived slug unique and rejects a taken explicit one.
func (service *Service) claimSlug(ctx context.Context, menu *Menu) error {
	exists := func(ctx context.Context, candidate string) (bool, error) {
		return service.repo.SlugExists(ctx, candidate, menu.ID)
	}

	if menu.SlugCustom {
		taken, err := exists(ctx, menu.Slug)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("Menu slug is already in use")
		}
		return nil
	}

	unique, err := sluggable.Unique(ctx, menu.Slug, exists)
	if err != nil {
		return err
	}
	menu.Slug = unique
	return nil
}
