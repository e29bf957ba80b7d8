// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package constants holds the fixed timings, header names and JSON keys
// shared by the platform packages. Tunables belong in config instead.
package constants

import "time"

const (
	AppName    = "yomira-cms"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	DefaultReadTimeout       = 5 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout cancels the request context of slow handlers.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is the drain window for in-flight requests.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// RateLimitCleanupInterval is how often idle buckets are swept.
	RateLimitCleanupInterval = time.Minute

	// RateLimitClientTTL is the idle time after which a bucket is dropped.
	RateLimitClientTTL = 3 * time.Minute
)

// # HTTP Headers

const (
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderOrigin        = "Origin"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderUserAgent     = "User-Agent"
)

// # JSON Keys

const (
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Redis Keys

// RedisPrefixLock namespaces the job locks.
const RedisPrefixLock = "cms:lock:"
