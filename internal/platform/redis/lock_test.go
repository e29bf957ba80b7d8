// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-cms/internal/platform/redis"
)

func newLocker(t *testing.T) (*redis.Locker, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return redis.NewLocker(client, "yomira:lock:"), server
}

/*
TestLocker_Exclusive verifies a held lock cannot be taken twice.
*/
func TestLocker_Exclusive(t *testing.T) {
	locker, server := newLocker(t)
	ctx := context.Background()

	lock, err := locker.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	assert.True(t, server.Exists("yomira:lock:sweep"))

	_, err = locker.Acquire(ctx, "sweep", time.Minute)
	assert.ErrorIs(t, err, redis.ErrLockHeld)

	other, err := locker.Acquire(ctx, "reconcile", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, lock.Release(ctx))
	assert.False(t, server.Exists("yomira:lock:sweep"))

	again, err := locker.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

/*
TestLock_ReleaseAfterExpiry verifies an expired lock taken by someone else is
left alone.
*/
func TestLock_ReleaseAfterExpiry(t *testing.T) {
	locker, server := newLocker(t)
	ctx := context.Background()

	stale, err := locker.Acquire(ctx, "sweep", time.Second)
	require.NoError(t, err)

	server.FastForward(2 * time.Second)

	fresh, err := locker.Acquire(ctx, "sweep", time.Minute)
	require.NoError(t, err)

	assert.ErrorIs(t, stale.Release(ctx), redis.ErrLockLost)
	assert.True(t, server.Exists("yomira:lock:sweep"), "the new holder keeps the lock")

	require.NoError(t, fresh.Release(ctx))
}

/*
TestLocker_WithLock verifies fn runs under the lock and errors propagate.
*/
func TestLocker_WithLock(t *testing.T) {
	locker, server := newLocker(t)
	ctx := context.Background()

	ran := false
	err := locker.WithLock(ctx, "sweep", time.Minute, func(context.Context) error {
		ran = true
		assert.True(t, server.Exists("yomira:lock:sweep"))

		nested := locker.WithLock(ctx, "sweep", time.Minute, func(context.Context) error {
			t.Fatal("nested holder must not run")
			return nil
		})
		assert.ErrorIs(t, nested, redis.ErrLockHeld)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, server.Exists("yomira:lock:sweep"))

	boom := errors.New("boom")
	err = locker.WithLock(ctx, "sweep", time.Minute, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, server.Exists("yomira:lock:sweep"))
}
