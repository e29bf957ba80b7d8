// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package menu_test

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-cms/internal/core/menu"
	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/clock"
	"github.com/taibuivan/yomira-cms/pkg/pointer"
)

type memoryRepository struct {
	mu    sync.Mutex
	menus map[string]*menu.Menu
	items []menu.Item
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{menus: make(map[string]*menu.Menu)}
}

func (repo *memoryRepository) FindByID(_ context.Context, id string) (*menu.Menu, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	found, ok := repo.menus[id]
	if !ok {
		return nil, apperr.NotFound("Menu")
	}
	copied := *found
	return &copied, nil
}

func (repo *memoryRepository) FindBySlug(_ context.Context, slug string) (*menu.Menu, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, found := range repo.menus {
		if found.Slug == slug {
			copied := *found
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Menu")
}

func (repo *memoryRepository) List(_ context.Context, location *string, activeOnly bool) ([]*menu.Menu, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var out []*menu.Menu
	for _, found := range repo.menus {
		if location != nil && (found.Location == nil || *found.Location != *location) {
			continue
		}
		if activeOnly && !found.IsActive {
			continue
		}
		copied := *found
		out = append(out, &copied)
	}
	return out, nil
}

func (repo *memoryRepository) Create(_ context.Context, m *menu.Menu) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	copied := *m
	repo.menus[m.ID] = &copied
	return nil
}

func (repo *memoryRepository) Update(ctx context.Context, m *menu.Menu) error {
	return repo.Create(ctx, m)
}

func (repo *memoryRepository) Delete(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	delete(repo.menus, id)
	repo.items = slices.DeleteFunc(repo.items, func(item menu.Item) bool { return item.MenuID == id })
	return nil
}

func (repo *memoryRepository) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for id, found := range repo.menus {
		if id != excludeID && found.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (repo *memoryRepository) Items(_ context.Context, menuID string) ([]menu.Item, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var out []menu.Item
	for _, item := range repo.items {
		if item.MenuID == menuID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (repo *memoryRepository) FindItem(_ context.Context, id string) (*menu.Item, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, item := range repo.items {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, apperr.NotFound("Menu item")
}

func (repo *memoryRepository) CreateItem(_ context.Context, item *menu.Item) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.items = append(repo.items, *item)
	return nil
}

func (repo *memoryRepository) UpdateItem(_ context.Context, item *menu.Item) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i := range repo.items {
		if repo.items[i].ID == item.ID {
			updated := *item
			updated.ParentID = repo.items[i].ParentID
			repo.items[i] = updated
			return nil
		}
	}
	return apperr.NotFound("Menu item")
}

func (repo *memoryRepository) MoveItem(_ context.Context, menuID string, plan menu.MovePlan) (*menu.Item, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var items []menu.Item
	for _, item := range repo.items {
		if item.MenuID == menuID {
			items = append(items, item)
		}
	}

	moved, err := plan(items)
	if err != nil {
		return nil, err
	}
	for i := range repo.items {
		if repo.items[i].ID == moved.ID && repo.items[i].MenuID == menuID {
			repo.items[i].ParentID = moved.ParentID
			repo.items[i].SortOrder = moved.SortOrder
			repo.items[i].UpdatedAt = moved.UpdatedAt
			return moved, nil
		}
	}
	return nil, apperr.NotFound("Menu item")
}

func (repo *memoryRepository) DeleteItems(_ context.Context, ids []string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.items = slices.DeleteFunc(repo.items, func(item menu.Item) bool { return slices.Contains(ids, item.ID) })
	return nil
}

func newService(t *testing.T) (*menu.Service, *memoryRepository) {
	t.Helper()

	owners := owner.NewRegistry()
	owners.Register(owner.TypePage, owner.LoaderFunc(func(_ context.Context, id string) (owner.Snapshot, error) {
		if id != "about" {
			return owner.Snapshot{}, apperr.NotFound("Page")
		}
		return owner.Snapshot{Ref: owner.Ref{Type: owner.TypePage, ID: id}, Path: "/pages/about"}, nil
	}))

	repo := newMemoryRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := clock.Fixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return menu.NewService(repo, owners, now, logger), repo
}

func createMenu(t *testing.T, service *menu.Service, name string) *menu.Menu {
	t.Helper()

	created := &menu.Menu{Name: name, Location: pointer.To("header")}
	require.NoError(t, service.Create(context.Background(), created, ""))
	return created
}

func addItem(t *testing.T, service *menu.Service, menuID string, parent *string, title string, rules ...menu.Rule) *menu.Item {
	t.Helper()

	input := menu.ItemInput{Title: pointer.To(title)}
	if rules != nil {
		input.Rules = &rules
	}
	item, err := service.AddItem(context.Background(), menuID, parent, input)
	require.NoError(t, err)
	return item
}

/*
TestService_CreateMenu verifies slug derivation and suffixing.
*/
func TestService_CreateMenu(t *testing.T) {
	service, _ := newService(t)

	first := createMenu(t, service, "Main Menu")
	second := createMenu(t, service, "Main menu")

	assert.Equal(t, "main-menu", first.Slug)
	assert.Equal(t, "main-menu-2", second.Slug)
	assert.True(t, first.IsActive)
}

/*
TestService_AddItem covers defaults, parents and link checks.
*/
func TestService_AddItem(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	main := createMenu(t, service, "Main")
	footer := createMenu(t, service, "Footer")

	parent := addItem(t, service, main.ID, nil, "Company")
	assert.Equal(t, menu.TargetSelf, parent.Target)
	assert.True(t, parent.IsActive)

	_, err := service.AddItem(ctx, footer.ID, &parent.ID, menu.ItemInput{Title: pointer.To("Stray")})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidParent))

	_, err = service.AddItem(ctx, main.ID, nil, menu.ItemInput{
		Title: pointer.To("Gone"),
		Link:  &owner.Ref{Type: owner.TypePage, ID: "missing"},
	})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	_, err = service.AddItem(ctx, main.ID, nil, menu.ItemInput{Title: pointer.To("  ")})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = service.AddItem(ctx, main.ID, nil, menu.ItemInput{Title: pointer.To("New tab"), Target: pointer.To("_top")})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	unknown := addItem(t, service, main.ID, nil, "Odd", menu.Rule{Kind: "weekday", Value: "friday"})
	assert.Len(t, unknown.Rules, 1)
}

/*
TestService_MoveItem verifies cycle prevention leaves the item untouched.
*/
func TestService_MoveItem(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()
	main := createMenu(t, service, "Main")

	a := addItem(t, service, main.ID, nil, "A")
	b := addItem(t, service, main.ID, &a.ID, "B")
	c := addItem(t, service, main.ID, &b.ID, "C")

	_, err := service.MoveItem(ctx, a.ID, &c.ID, nil)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidParent))

	stored, err := repo.FindItem(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ParentID)

	moved, err := service.MoveItem(ctx, c.ID, nil, pointer.To(5))
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
	assert.Equal(t, 5, moved.SortOrder)
}

/*
TestService_ConcurrentCrossMoves verifies two items moved under each other at
the same time never end up as each other's parent.
*/
func TestService_ConcurrentCrossMoves(t *testing.T) {
	for range 20 {
		service, repo := newService(t)
		ctx := context.Background()
		main := createMenu(t, service, "Main")

		left := addItem(t, service, main.ID, nil, "Left")
		right := addItem(t, service, main.ID, nil, "Right")

		var start, done sync.WaitGroup
		start.Add(1)
		errs := make([]error, 2)
		moves := [][2]string{{left.ID, right.ID}, {right.ID, left.ID}}
		for i, move := range moves {
			done.Add(1)
			go func() {
				defer done.Done()
				start.Wait()
				_, errs[i] = service.MoveItem(ctx, move[0], &move[1], nil)
			}()
		}
		start.Done()
		done.Wait()

		failed := 0
		for _, err := range errs {
			if err != nil {
				assert.True(t, apperr.Is(err, apperr.CodeInvalidParent))
				failed++
			}
		}
		assert.Equal(t, 1, failed)

		items, err := repo.Items(ctx, main.ID)
		require.NoError(t, err)
		roots := slices.DeleteFunc(items, func(item menu.Item) bool { return item.ParentID != nil })
		assert.Len(t, roots, 1)
	}
}

/*
TestService_DeleteItemCascades verifies the subtree goes with its root.
*/
func TestService_DeleteItemCascades(t *testing.T) {
	service, repo := newService(t)
	ctx := context.Background()
	main := createMenu(t, service, "Main")

	a := addItem(t, service, main.ID, nil, "A")
	b := addItem(t, service, main.ID, &a.ID, "B")
	c := addItem(t, service, main.ID, &b.ID, "C")
	keep := addItem(t, service, main.ID, nil, "Keep")

	removed, err := service.DeleteItem(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, removed)
	require.Len(t, repo.items, 1)
	assert.Equal(t, keep.ID, repo.items[0].ID)
}

/*
TestService_Render verifies visibility and link resolution for a guest.
*/
func TestService_Render(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()
	main := createMenu(t, service, "Main")

	_, err := service.AddItem(ctx, main.ID, nil, menu.ItemInput{
		Title: pointer.To("About"),
		Link:  &owner.Ref{Type: owner.TypePage, ID: "about"},
	})
	require.NoError(t, err)

	account := addItem(t, service, main.ID, nil, "Account", menu.Rule{Kind: menu.RuleAuth, Value: menu.AuthLoggedIn})
	addItem(t, service, main.ID, &account.ID, "Profile")

	view, err := service.Render(ctx, main.Slug, nil)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "About", view.Items[0].Title)
	assert.Equal(t, "/pages/about", view.Items[0].URL)

	views, err := service.Location(ctx, "header", nil)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, main.ID, views[0].ID)

	_, err = service.Update(ctx, main.ID, menu.Update{IsActive: pointer.To(false)})
	require.NoError(t, err)

	_, err = service.Render(ctx, main.Slug, nil)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}
