// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/core/tag"
	"github.com/taibuivan/yomira-cms/internal/jobs"
	"github.com/taibuivan/yomira-cms/internal/platform/redis"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newRunner(t *testing.T) (*jobs.Runner, *redis.Locker) {
	t.Helper()

	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := redis.NewLocker(client, "test:")
	return jobs.NewRunner(locker, discard), locker
}

type promoterFunc func(ctx context.Context) (int, error)

func (f promoterFunc) PromoteDue(ctx context.Context) (int, error) { return f(ctx) }

type reconcilerFunc func(ctx context.Context) ([]tag.Correction, error)

func (f reconcilerFunc) ReconcileAll(ctx context.Context) ([]tag.Correction, error) { return f(ctx) }

/*
TestRunner_RunOnceSkipsWhenLocked verifies a run yields to another holder.
*/
func TestRunner_RunOnceSkipsWhenLocked(t *testing.T) {
	runner, locker := newRunner(t)
	ctx := context.Background()

	var runs atomic.Int32
	job := jobs.Job{Name: "sweep", Interval: time.Minute, Run: func(context.Context) error {
		runs.Add(1)
		return nil
	}}

	ran, err := runner.RunOnce(ctx, job)
	require.NoError(t, err)
	assert.True(t, ran)

	held, err := locker.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)

	ran, err = runner.RunOnce(ctx, job)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, int32(1), runs.Load())

	require.NoError(t, held.Release(ctx))
}

/*
TestPublishSweep verifies every content type is swept even when one fails.
*/
func TestPublishSweep(t *testing.T) {
	runner, _ := newRunner(t)
	boom := errors.New("boom")

	var pages atomic.Int32
	job := jobs.PublishSweep(time.Minute, map[owner.Type]jobs.Promoter{
		owner.TypePost: promoterFunc(func(context.Context) (int, error) { return 1, boom }),
		owner.TypePage: promoterFunc(func(context.Context) (int, error) {
			pages.Add(1)
			return 2, nil
		}),
	}, discard)

	ran, err := runner.RunOnce(context.Background(), job)
	assert.True(t, ran)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), pages.Load())
}

/*
TestTagReconcile verifies the reconciler runs under the job name.
*/
func TestTagReconcile(t *testing.T) {
	runner, _ := newRunner(t)

	called := false
	job := jobs.TagReconcile(time.Minute, reconcilerFunc(func(context.Context) ([]tag.Correction, error) {
		called = true
		return []tag.Correction{{TagID: "t1", From: 3, To: 1}}, nil
	}))
	assert.Equal(t, jobs.TagReconcileName, job.Name)

	ran, err := runner.RunOnce(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.True(t, called)
}

/*
TestRunner_StartStops verifies ticking jobs stop with their context.
*/
func TestRunner_StartStops(t *testing.T) {
	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var runs atomic.Int32
	runner := jobs.NewRunner(redis.NewLocker(client, "test:"), discard,
		jobs.Job{Name: "fast", Interval: 10 * time.Millisecond, Run: func(context.Context) error {
			runs.Add(1)
			return nil
		}},
		jobs.Job{Name: "disabled", Interval: 0},
	)

	ctx, cancel := context.WithCancel(context.Background())
	runner.Start(ctx)

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	runner.Wait()
}
