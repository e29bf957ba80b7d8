// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis

import (
	stdctx "context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-cms/pkg/uuid"
)

// ErrLockHeld is returned when another holder owns the lock.
var ErrLockHeld = errors.New("redis: lock held by another holder")

// ErrLockLost is returned by [Lock.Release] when the lock expired or was
// taken over before release.
var ErrLockLost = errors.New("redis: lock no longer owned")

// releaseScript deletes the key only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out named, expiring locks.
type Locker struct {
	client redis.UniversalClient
	prefix string
}

// NewLocker constructs a [Locker]. Every key is namespaced with prefix.
func NewLocker(client redis.UniversalClient, prefix string) *Locker {
	return &Locker{client: client, prefix: prefix}
}

// Lock is an acquired lock. It expires on its own after its TTL.
type Lock struct {
	client redis.UniversalClient
	key    string
	token  string
}

/*
Acquire takes the named lock for ttl.

Returns:
  - *Lock: The held lock
  - error: ErrLockHeld when someone else owns it
*/
func (locker *Locker) Acquire(context stdctx.Context, name string, ttl time.Duration) (*Lock, error) {
	key := locker.prefix + name
	token := uuid.New()

	acquired, err := locker.client.SetNX(context, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: acquire %s: %w", name, err)
	}
	if !acquired {
		return nil, ErrLockHeld
	}
	return &Lock{client: locker.client, key: key, token: token}, nil
}

// Release frees the lock if it is still ours.
func (lock *Lock) Release(context stdctx.Context) error {
	deleted, err := releaseScript.Run(context, lock.client, []string{lock.key}, lock.token).Int()
	if err != nil {
		return fmt.Errorf("redis: release %s: %w", lock.key, err)
	}
	if deleted == 0 {
		return ErrLockLost
	}
	return nil
}

/*
WithLock runs fn while holding the named lock and releases it afterwards.
Returns ErrLockHeld without running fn when the lock is taken.
*/
func (locker *Locker) WithLock(context stdctx.Context, name string, ttl time.Duration, fn func(stdctx.Context) error) (err error) {
	lock, err := locker.Acquire(context, name, ttl)
	if err != nil {
		return err
	}

	defer func() {
		if releaseErr := lock.Release(context); releaseErr != nil && err == nil {
			err = releaseErr
		}
	}()

	return fn(context)
}
