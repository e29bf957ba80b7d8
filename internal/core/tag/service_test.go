// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-cms/internal/core/tag"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/clock"
	"github.com/taibuivan/yomira-cms/pkg/pointer"
)

type memoryRepository struct {
	mu           sync.Mutex
	tags         map[string]*tag.Tag
	associations []tag.Association
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{tags: make(map[string]*tag.Tag)}
}

func (repo *memoryRepository) FindByID(_ context.Context, id string) (*tag.Tag, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	found, ok := repo.tags[id]
	if !ok {
		return nil, apperr.NotFound("Tag")
	}
	copied := *found
	return &copied, nil
}

func (repo *memoryRepository) FindBySlug(_ context.Context, slug string) (*tag.Tag, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, found := range repo.tags {
		if strings.EqualFold(found.Slug, slug) {
			copied := *found
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Tag")
}

func (repo *memoryRepository) List(context.Context, tag.Filter, int, int) ([]*tag.Tag, int, error) {
	return nil, 0, nil
}

func (repo *memoryRepository) Popular(context.Context, int) ([]*tag.Tag, error) {
	return nil, nil
}

func (repo *memoryRepository) All(context.Context) ([]tag.Tag, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	out := make([]tag.Tag, 0, len(repo.tags))
	for _, found := range repo.tags {
		out = append(out, *found)
	}
	return out, nil
}

func (repo *memoryRepository) Create(_ context.Context, t *tag.Tag) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, found := range repo.tags {
		if strings.EqualFold(found.Slug, t.Slug) {
			return false, nil
		}
	}
	copied := *t
	repo.tags[t.ID] = &copied
	return true, nil
}

func (repo *memoryRepository) Update(_ context.Context, t *tag.Tag) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	copied := *t
	repo.tags[t.ID] = &copied
	return nil
}

func (repo *memoryRepository) Delete(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	delete(repo.tags, id)
	return nil
}

func (repo *memoryRepository) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for id, found := range repo.tags {
		if id != excludeID && strings.EqualFold(found.Slug, slug) {
			return true, nil
		}
	}
	return false, nil
}

func (repo *memoryRepository) AdjustUsage(_ context.Context, ids []string, delta int) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, id := range ids {
		found, ok := repo.tags[id]
		if !ok {
			continue
		}
		if delta > 0 {
			found.UsageCount = tag.IncrementOnAttach(found.UsageCount)
		} else {
			found.UsageCount, _ = tag.DecrementOnDetach(found.UsageCount)
		}
	}
	return nil
}

func (repo *memoryRepository) Associations(_ context.Context, ids []string) ([]tag.Association, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if len(ids) == 0 {
		return append([]tag.Association(nil), repo.associations...), nil
	}

	var out []tag.Association
	for _, association := range repo.associations {
		for _, id := range ids {
			if association.TagID == id {
				out = append(out, association)
			}
		}
	}
	return out, nil
}

func (repo *memoryRepository) ApplyCorrections(_ context.Context, corrections []tag.Correction) ([]tag.Correction, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var applied []tag.Correction
	for _, correction := range corrections {
		if found, ok := repo.tags[correction.TagID]; ok && found.UsageCount == correction.From {
			found.UsageCount = correction.To
			applied = append(applied, correction)
		}
	}
	return applied, nil
}

// interleavedRepository runs during once, right after the first association
// read, to stand in for content published while a reconcile is running.
type interleavedRepository struct {
	*memoryRepository
	once   sync.Once
	during func()
}

func (repo *interleavedRepository) Associations(ctx context.Context, ids []string) ([]tag.Association, error) {
	out, err := repo.memoryRepository.Associations(ctx, ids)
	repo.once.Do(repo.during)
	return out, err
}

func newService() (*tag.Service, *memoryRepository) {
	repo := newMemoryRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return tag.NewService(repo, clock.Fixed(now), logger), repo
}

/*
TestService_FindOrCreateByName verifies names converge on one slug.
*/
func TestService_FindOrCreateByName(t *testing.T) {
	service, repo := newService()
	ctx := context.Background()

	created, err := service.FindOrCreateByName(ctx, "  Crème Brûlée ")
	require.NoError(t, err)
	assert.Equal(t, "creme-brulee", created.Slug)
	assert.Equal(t, "Crème Brûlée", created.Name)
	assert.Zero(t, created.UsageCount)

	again, err := service.FindOrCreateByName(ctx, "CREME BRULEE")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Len(t, repo.tags, 1)

	_, err = service.FindOrCreateByName(ctx, "!!!")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

/*
TestService_ResolveNames verifies duplicate names collapse.
*/
func TestService_ResolveNames(t *testing.T) {
	service, _ := newService()

	tags, err := service.ResolveNames(context.Background(), []string{"Go", "go", "Rust", "GO "})
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "go", tags[0].Slug)
	assert.Equal(t, "rust", tags[1].Slug)
}

/*
TestService_CreateSlugPolicy covers derived suffixes and explicit conflicts.
*/
func TestService_CreateSlugPolicy(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	first := &tag.Tag{Name: "News"}
	require.NoError(t, service.Create(ctx, first, ""))
	assert.Equal(t, "news", first.Slug)

	second := &tag.Tag{Name: "News!"}
	require.NoError(t, service.Create(ctx, second, ""))
	assert.Equal(t, "news-2", second.Slug)

	err := service.Create(ctx, &tag.Tag{Name: "Headlines"}, "news")
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	custom := &tag.Tag{Name: "Breaking"}
	require.NoError(t, service.Create(ctx, custom, "hot"))

	renamed, err := service.Update(ctx, custom.ID, tag.Update{Name: pointer.To("Breaking News")})
	require.NoError(t, err)
	assert.Equal(t, "hot", renamed.Slug)

	renamed, err = service.Update(ctx, first.ID, tag.Update{Name: pointer.To("World")})
	require.NoError(t, err)
	assert.Equal(t, "world", renamed.Slug)
}

/*
TestService_UsageTracking verifies the fast path and reconciliation.
*/
func TestService_UsageTracking(t *testing.T) {
	service, repo := newService()
	ctx := context.Background()

	goTag, err := service.FindOrCreateByName(ctx, "Go")
	require.NoError(t, err)

	require.NoError(t, service.Attached(ctx, []string{goTag.ID}))
	require.NoError(t, service.Attached(ctx, []string{goTag.ID}))
	require.NoError(t, service.Detached(ctx, []string{goTag.ID}))
	require.NoError(t, service.Detached(ctx, []string{goTag.ID}))
	require.NoError(t, service.Detached(ctx, []string{goTag.ID}))

	stored, err := service.Get(ctx, goTag.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.UsageCount)

	repo.associations = []tag.Association{
		association(goTag.ID, "p1", live()),
		association(goTag.ID, "p2", live()),
	}

	corrections, err := service.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tag.Correction{{TagID: goTag.ID, From: 0, To: 2}}, corrections)

	corrections, err = service.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, corrections)

	repo.associations = repo.associations[:1]
	recomputed, err := service.Recompute(ctx, goTag.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, recomputed.UsageCount)
}

/*
TestService_ReconcileKeepsConcurrentAttach verifies a correction computed
before a concurrent attach is skipped instead of overwriting it, and the next
run settles on the true count.
*/
func TestService_ReconcileKeepsConcurrentAttach(t *testing.T) {
	seed, repo := newService()
	ctx := context.Background()

	goTag, err := seed.FindOrCreateByName(ctx, "Go")
	require.NoError(t, err)
	repo.associations = []tag.Association{association(goTag.ID, "p1", live())}

	interleaved := &interleavedRepository{memoryRepository: repo}
	interleaved.during = func() {
		repo.mu.Lock()
		repo.associations = append(repo.associations, association(goTag.ID, "p2", live()))
		repo.mu.Unlock()
		assert.NoError(t, repo.AdjustUsage(ctx, []string{goTag.ID}, 1))
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := tag.NewService(interleaved, clock.Fixed(now), logger)

	corrections, err := service.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, corrections)

	stored, err := service.Get(ctx, goTag.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsageCount)

	corrections, err = service.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tag.Correction{{TagID: goTag.ID, From: 1, To: 2}}, corrections)

	stored, err = service.Get(ctx, goTag.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.UsageCount)
}
