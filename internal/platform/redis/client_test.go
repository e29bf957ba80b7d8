// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-cms/internal/platform/redis"
)

/*
TestNewClient verifies the URL is honoured and a dead server fails fast.
*/
func TestNewClient(t *testing.T) {
	server := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := redis.NewClient(context.Background(), "redis://"+server.Addr()+"/0", logger)
	require.NoError(t, err)
	assert.NoError(t, redis.Ping(context.Background(), client))
	require.NoError(t, client.Close())

	_, err = redis.NewClient(context.Background(), "not a url", logger)
	assert.Error(t, err)

	server.Close()
	_, err = redis.NewClient(context.Background(), "redis://"+server.Addr()+"/0", logger)
	assert.Error(t, err)
}
