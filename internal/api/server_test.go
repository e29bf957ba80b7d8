// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-cms/internal/api"
	"github.com/taibuivan/yomira-cms/internal/platform/sec"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type devConfig struct{}

func (devConfig) IsDevelopment() bool      { return true }
func (devConfig) AllowedOrigins() []string { return nil }

type rejectAll struct{}

func (rejectAll) VerifyToken(string) (*sec.AuthClaims, error) { return nil, sec.ErrInvalidToken }

type echoRouter string

func (prefix echoRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(writer, string(prefix))
	})
	return router
}

func newRouter(checks ...api.Check) http.Handler {
	liveness, readiness := api.NewHealthHandlers(discard, checks...)
	return api.NewRouter(devConfig{}, discard, rejectAll{}, nil, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Posts:     echoRouter("posts"),
		Pages:     echoRouter("pages"),
	})
}

func get(handler http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, path, nil)
	if len(header) == 2 {
		request.Header.Set(header[0], header[1])
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestRouter_Mounts verifies domain handlers are reachable under /api/v1.
*/
func TestRouter_Mounts(t *testing.T) {
	router := newRouter()

	assert.Equal(t, "posts", get(router, "/api/v1/posts").Body.String())
	assert.Equal(t, "pages", get(router, "/api/v1/pages").Body.String())
	assert.Equal(t, http.StatusNotFound, get(router, "/api/v1/tags").Code)
	assert.Equal(t, http.StatusOK, get(router, "/metrics").Code)
}

/*
TestRouter_RejectsBadToken verifies an invalid bearer token is refused before
the domain handler runs.
*/
func TestRouter_RejectsBadToken(t *testing.T) {
	recorder := get(newRouter(), "/api/v1/posts", "Authorization", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestHealth verifies liveness always answers and readiness reflects its checks.
*/
func TestHealth(t *testing.T) {
	healthy := newRouter(api.Check{Name: "postgres", Probe: func(context.Context) error { return nil }})
	assert.Equal(t, http.StatusOK, get(healthy, "/health").Code)
	assert.Equal(t, http.StatusOK, get(healthy, "/ready").Code)

	degraded := newRouter(
		api.Check{Name: "postgres", Probe: func(context.Context) error { return nil }},
		api.Check{Name: "redis", Probe: func(context.Context) error { return errors.New("dial tcp: refused") }},
	)
	recorder := get(degraded, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"degraded"`)
	assert.Contains(t, recorder.Body.String(), "refused")
	assert.Equal(t, http.StatusOK, get(degraded, "/health").Code)
}
