// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category_test

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

	"github.com/taibuivan/yomira-cms/internal/core/category"
	"github.com/taibuivan/yomira-cms/internal/core/tree"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/clock"
	"github.com/taibuivan/yomira-cms/pkg/pointer"
)

type memoryRepository struct {
	mu         sync.Mutex
	categories []category.Category
}

func (repo *memoryRepository) All(context.Context) ([]category.Category, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return slices.Clone(repo.categories), nil
}

func (repo *memoryRepository) FindByID(_ context.Context, id string) (*category.Category, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, found := range repo.categories {
		if found.ID == id {
			return &found, nil
		}
	}
	return nil, apperr.NotFound("Category")
}

func (repo *memoryRepository) FindBySlug(_ context.Context, slug string) (*category.Category, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, found := range repo.categories {
		if found.Slug == slug {
			return &found, nil
		}
	}
	return nil, apperr.NotFound("Category")
}

func (repo *memoryRepository) Create(_ context.Context, c *category.Category) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.categories = append(repo.categories, *c)
	return nil
}

func (repo *memoryRepository) Update(_ context.Context, c *category.Category) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i := range repo.categories {
		if repo.categories[i].ID == c.ID {
			updated := *c
			updated.ParentID = repo.categories[i].ParentID
			repo.categories[i] = updated
			return nil
		}
	}
	return apperr.NotFound("Category")
}

func (repo *memoryRepository) Move(_ context.Context, plan category.MovePlan) (*category.Category, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	moved, err := plan(slices.Clone(repo.categories))
	if err != nil {
		return nil, err
	}
	for i := range repo.categories {
		if repo.categories[i].ID == moved.ID {
			repo.categories[i].ParentID = moved.ParentID
			repo.categories[i].SortOrder = moved.SortOrder
			repo.categories[i].UpdatedAt = moved.UpdatedAt
			return moved, nil
		}
	}
	return nil, apperr.NotFound("Category")
}

func (repo *memoryRepository) DeleteMany(_ context.Context, ids []string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.categories = slices.DeleteFunc(repo.categories, func(c category.Category) bool {
		return slices.Contains(ids, c.ID)
	})
	return nil
}

func (repo *memoryRepository) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	return slices.ContainsFunc(repo.categories, func(c category.Category) bool {
		return c.ID != excludeID && c.Slug == slug
	}), nil
}

func newService() (*category.Service, *memoryRepository) {
	repo := &memoryRepository{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := clock.Fixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return category.NewService(repo, now, logger), repo
}

func create(t *testing.T, service *category.Service, name string, parent *string) *category.Category {
	t.Helper()

	created := &category.Category{Name: name, ParentID: parent}
	require.NoError(t, service.Create(context.Background(), created, ""))
	return created
}

/*
TestService_Detail verifies breadcrumbs run from the root to the category.
*/
func TestService_Detail(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	tech := create(t, service, "Technology", nil)
	software := create(t, service, "Software", &tech.ID)
	golang := create(t, service, "Go Programming", &software.ID)

	detail, err := service.Get(ctx, golang.ID)
	require.NoError(t, err)
	assert.Equal(t, []tree.Crumb{
		{ID: tech.ID, Name: "Technology", Slug: "technology"},
		{ID: software.ID, Name: "Software", Slug: "software"},
		{ID: golang.ID, Name: "Go Programming", Slug: "go-programming"},
	}, detail.Breadcrumb)
	assert.Empty(t, detail.Children)

	bySlug, err := service.GetBySlug(ctx, "software")
	require.NoError(t, err)
	require.Len(t, bySlug.Children, 1)
	assert.Equal(t, golang.ID, bySlug.Children[0].ID)

	ids, err := service.SubtreeIDs(ctx, tech.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{tech.ID, software.ID, golang.ID}, ids)
}

/*
TestService_CreateRejections covers missing parents and bad input.
*/
func TestService_CreateRejections(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	err := service.Create(ctx, &category.Category{Name: "Orphan", ParentID: pointer.To("missing")}, "")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	err = service.Create(ctx, &category.Category{Name: "Painted", Color: pointer.To("red")}, "")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	err = service.Create(ctx, &category.Category{Name: "  "}, "")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	create(t, service, "News", nil)
	err = service.Create(ctx, &category.Category{Name: "Headlines"}, "news")
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
}

/*
TestService_MoveRejectsCycles verifies a category cannot move below itself.
*/
func TestService_MoveRejectsCycles(t *testing.T) {
	service, repo := newService()
	ctx := context.Background()

	root := create(t, service, "Root", nil)
	child := create(t, service, "Child", &root.ID)
	grandchild := create(t, service, "Grandchild", &child.ID)

	_, err := service.Move(ctx, root.ID, &grandchild.ID, nil)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidParent))

	_, err = service.Move(ctx, child.ID, &child.ID, nil)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidParent))

	stored, err := repo.FindByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ParentID)

	moved, err := service.Move(ctx, grandchild.ID, nil, pointer.To(3))
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
	assert.Equal(t, 3, moved.SortOrder)

	branches, err := service.Tree(ctx, false)
	require.NoError(t, err)
	assert.Len(t, branches, 2)
}

/*
TestService_ConcurrentCrossMoves verifies two categories moved under each other
at the same time never end up as each other's parent.
*/
func TestService_ConcurrentCrossMoves(t *testing.T) {
	for range 20 {
		service, repo := newService()
		ctx := context.Background()

		left := create(t, service, "Left", nil)
		right := create(t, service, "Right", nil)

		var start, done sync.WaitGroup
		start.Add(1)
		errs := make([]error, 2)
		moves := [][2]string{{left.ID, right.ID}, {right.ID, left.ID}}
		for i, move := range moves {
			done.Add(1)
			go func() {
				defer done.Done()
				start.Wait()
				_, errs[i] = service.Move(ctx, move[0], &move[1], nil)
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

		all, err := repo.All(ctx)
		require.NoError(t, err)
		roots := slices.DeleteFunc(all, func(c category.Category) bool { return c.ParentID != nil })
		assert.Len(t, roots, 1)
	}
}

/*
TestService_DeleteCascades verifies descendants are removed with their root.
*/
func TestService_DeleteCascades(t *testing.T) {
	service, repo := newService()
	ctx := context.Background()

	root := create(t, service, "Root", nil)
	child := create(t, service, "Child", &root.ID)
	create(t, service, "Grandchild", &child.ID)
	other := create(t, service, "Other", nil)

	removed, err := service.Delete(ctx, root.ID)
	require.NoError(t, err)
	assert.Len(t, removed, 3)
	require.Len(t, repo.categories, 1)
	assert.Equal(t, other.ID, repo.categories[0].ID)

	_, err = service.Delete(ctx, root.ID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

/*
TestService_TreeActiveOnly verifies inactive categories hide their subtree.
*/
func TestService_TreeActiveOnly(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	archive := create(t, service, "Archive", nil)
	create(t, service, "2019", &archive.ID)
	create(t, service, "Current", nil)

	_, err := service.Update(ctx, archive.ID, category.Update{IsActive: pointer.To(false)})
	require.NoError(t, err)

	active, err := service.Tree(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Current", active[0].Value.Name)

	all, err := service.Tree(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
