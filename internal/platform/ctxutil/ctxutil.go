// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil stores the per-request values set by middleware: the
// correlation ID, the request logger and the verified token claims.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/yomira-cms/internal/platform/sec"
)

// contextKey is unexported so no other package can collide with these keys.
type contextKey int

const (
	requestIDKey contextKey = iota
	loggerKey
	userKey
)

// WithRequestID attaches the X-Request-ID value.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID is empty outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithLogger attaches the request scoped logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger falls back to [slog.Default] so callers never nil-check.
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// WithAuthUser attaches verified token claims.
func WithAuthUser(ctx context.Context, claims *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, userKey, claims)
}

// GetAuthUser is nil for anonymous requests.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, _ := ctx.Value(userKey).(*sec.AuthClaims)
	return claims
}
