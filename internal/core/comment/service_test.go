// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comment_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-cms/internal/core/comment"
	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/clock"
	"github.com/taibuivan/yomira-cms/pkg/pointer"
)

// memoryRepository applies deltas under one mutex, mirroring the row-lock
// guarantees of the PostgreSQL store.
type memoryRepository struct {
	mu       sync.Mutex
	order    []string
	comments map[string]*comment.Comment
	owners   map[owner.Ref]int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		comments: make(map[string]*comment.Comment),
		owners:   make(map[owner.Ref]int),
	}
}

func (repo *memoryRepository) FindByID(_ context.Context, id string) (*comment.Comment, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	found, ok := repo.comments[id]
	if !ok {
		return nil, apperr.NotFound("Comment")
	}
	copied := *found
	return &copied, nil
}

func (repo *memoryRepository) ListThread(_ context.Context, ref owner.Ref) ([]comment.Comment, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.thread(ref), nil
}

func (repo *memoryRepository) List(_ context.Context, filter comment.Filter, _, _ int) ([]*comment.Comment, int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var out []*comment.Comment
	for _, id := range repo.order {
		c := repo.comments[id]
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (repo *memoryRepository) Create(_ context.Context, c *comment.Comment, deltas []comment.Delta) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	copied := *c
	repo.comments[c.ID] = &copied
	repo.order = append(repo.order, c.ID)
	repo.apply(deltas)
	return nil
}

func (repo *memoryRepository) Transition(_ context.Context, id string, apply comment.TransitionFunc) (*comment.Comment, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	current, ok := repo.comments[id]
	if !ok {
		return nil, apperr.NotFound("Comment")
	}

	next, deltas, err := apply(*current)
	if err != nil {
		return nil, err
	}
	*current = next
	repo.apply(deltas)

	copied := next
	return &copied, nil
}

func (repo *memoryRepository) Delete(_ context.Context, id string, plan comment.PlanFunc) (comment.DeletionPlan, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	target, ok := repo.comments[id]
	if !ok {
		return comment.DeletionPlan{}, apperr.NotFound("Comment")
	}

	planned, err := plan(repo.thread(target.Owner))
	if err != nil {
		return comment.DeletionPlan{}, err
	}

	for _, removed := range planned.Removed {
		delete(repo.comments, removed)
	}
	repo.apply(planned.Deltas)
	return planned, nil
}

func (repo *memoryRepository) ApplyDeltas(_ context.Context, deltas []comment.Delta) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.apply(deltas)
	return nil
}

func (repo *memoryRepository) thread(ref owner.Ref) []comment.Comment {
	var out []comment.Comment
	for _, id := range repo.order {
		if c, ok := repo.comments[id]; ok && c.Owner == ref {
			out = append(out, *c)
		}
	}
	return out
}

func (repo *memoryRepository) apply(deltas []comment.Delta) {
	for _, delta := range deltas {
		switch delta.Counter {
		case comment.CounterOwnerComments:
			repo.owners[delta.Owner], _ = comment.ApplyCounter(repo.owners[delta.Owner], delta.Amount)
		case comment.CounterReplies:
			if c, ok := repo.comments[delta.CommentID]; ok {
				c.RepliesCount, _ = comment.ApplyCounter(c.RepliesCount, delta.Amount)
			}
		case comment.CounterLikes:
			if c, ok := repo.comments[delta.CommentID]; ok {
				c.LikesCount, _ = comment.ApplyCounter(c.LikesCount, delta.Amount)
			}
		}
	}
}

func newService(t *testing.T, allowComments bool) (*comment.Service, *memoryRepository) {
	t.Helper()

	registry := owner.NewRegistry()
	registry.Register(owner.TypePost, owner.LoaderFunc(func(_ context.Context, id string) (owner.Snapshot, error) {
		if id != post.ID {
			return owner.Snapshot{}, apperr.NotFound("Post")
		}
		return owner.Snapshot{Ref: post, AllowsComments: allowComments}, nil
	}))

	repo := newMemoryRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return comment.NewService(repo, registry, clock.Fixed(now), logger), repo
}

func submit(t *testing.T, service *comment.Service, parent *string) *comment.Comment {
	t.Helper()

	c := &comment.Comment{
		ParentID: parent,
		Owner:    post,
		Author:   comment.Author{GuestName: "Guest", GuestEmail: "guest@example.com"},
		Content:  "Nice post",
	}
	require.NoError(t, service.Create(context.Background(), c))
	return c
}

/*
TestService_RepliesCounter creates three replies and deletes one.
*/
func TestService_RepliesCounter(t *testing.T) {
	service, repo := newService(t, true)
	ctx := context.Background()

	root := submit(t, service, nil)
	assert.Equal(t, comment.StatusPending, root.Status)

	replies := []*comment.Comment{
		submit(t, service, &root.ID),
		submit(t, service, &root.ID),
		submit(t, service, &root.ID),
	}

	stored, err := repo.FindByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.RepliesCount)

	removed, err := service.Delete(ctx, replies[1].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{replies[1].ID}, removed)

	stored, err = repo.FindByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.RepliesCount)
}

/*
TestService_ApproveOnce verifies the owner counter moves once per approval edge.
*/
func TestService_ApproveOnce(t *testing.T) {
	service, repo := newService(t, true)
	ctx := context.Background()

	c := submit(t, service, nil)

	_, err := service.Approve(ctx, c.ID, pointer.To("mod-1"))
	require.NoError(t, err)
	_, err = service.Approve(ctx, c.ID, pointer.To("mod-1"))
	require.NoError(t, err)
	assert.Equal(t, 1, repo.owners[post])

	_, err = service.MarkSpam(ctx, c.ID, nil)
	require.NoError(t, err)
	_, err = service.Reject(ctx, c.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, repo.owners[post])
}

/*
TestService_DeleteApprovedSubtree verifies the owner loses every approved comment removed.
*/
func TestService_DeleteApprovedSubtree(t *testing.T) {
	service, repo := newService(t, true)
	ctx := context.Background()

	root := submit(t, service, nil)
	reply := submit(t, service, &root.ID)
	nested := submit(t, service, &reply.ID)

	for _, id := range []string{root.ID, reply.ID, nested.ID} {
		_, err := service.Approve(ctx, id, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, repo.owners[post])

	removed, err := service.Delete(ctx, reply.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{reply.ID, nested.ID}, removed)
	assert.Equal(t, 1, repo.owners[post])

	stored, err := repo.FindByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.RepliesCount)
}

/*
TestService_CreateRejections covers closed owners, bad input and cross-thread replies.
*/
func TestService_CreateRejections(t *testing.T) {
	closed, _ := newService(t, false)
	err := closed.Create(context.Background(), &comment.Comment{
		Owner:   post,
		Author:  comment.Author{GuestName: "Guest"},
		Content: "hi",
	})
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))

	service, _ := newService(t, true)
	err = service.Create(context.Background(), &comment.Comment{Owner: post, Content: "hi"})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	err = service.Create(context.Background(), &comment.Comment{
		Owner:   owner.Ref{Type: owner.TypePost, ID: "other"},
		Author:  comment.Author{GuestName: "Guest"},
		Content: "hi",
	})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	err = service.Create(context.Background(), &comment.Comment{
		ParentID: pointer.To("ghost"),
		Owner:    post,
		Author:   comment.Author{GuestName: "Guest"},
		Content:  "hi",
	})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

/*
TestService_LikesFloor verifies likes never go negative.
*/
func TestService_LikesFloor(t *testing.T) {
	service, repo := newService(t, true)
	ctx := context.Background()

	c := submit(t, service, nil)
	require.NoError(t, service.Like(ctx, c.ID, true))
	require.NoError(t, service.Like(ctx, c.ID, false))
	require.NoError(t, service.Like(ctx, c.ID, false))

	stored, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.LikesCount)
}

/*
TestService_Thread verifies only approved branches are exposed.
*/
func TestService_Thread(t *testing.T) {
	service, _ := newService(t, true)
	ctx := context.Background()

	root := submit(t, service, nil)
	hidden := submit(t, service, &root.ID)
	_ = submit(t, service, &hidden.ID)

	_, err := service.Approve(ctx, root.ID, nil)
	require.NoError(t, err)

	branches, err := service.Thread(ctx, post)
	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.Equal(t, root.ID, branches[0].Value.ID)
	assert.Empty(t, branches[0].Children)
}
