// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/yomira-cms/internal/platform/request"
	"github.com/taibuivan/yomira-cms/internal/platform/sec"
)

func withParam(request *http.Request, name, value string) *http.Request {
	routeContext := chi.NewRouteContext()
	routeContext.URLParams.Add(name, value)
	return request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, routeContext))
}

/*
TestID verifies only UUID path parameters are accepted.
*/
func TestID(t *testing.T) {
	request := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "0190f3c4-5a6b-7c8d-9e0f-112233445566")
	id, err := requestutil.ID(request, "id")
	require.NoError(t, err)
	assert.Equal(t, "0190f3c4-5a6b-7c8d-9e0f-112233445566", id)

	request = withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "about-us")
	_, err = requestutil.ID(request, "id")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

/*
TestDecodeJSON verifies malformed and unknown-field bodies are rejected.
*/
func TestDecodeJSON(t *testing.T) {
	var body struct {
		Title string `json:"title"`
	}

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Hello"}`))
	require.NoError(t, requestutil.DecodeJSON(request, &body))
	assert.Equal(t, "Hello", body.Title)

	request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
	assert.Error(t, requestutil.DecodeJSON(request, &body))

	request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"x","status":"published"}`))
	assert.Error(t, requestutil.DecodeJSON(request, &body))
}

/*
TestUserID verifies anonymous and authenticated callers.
*/
func TestUserID(t *testing.T) {
	anonymous := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, requestutil.OptionalUserID(anonymous))
	_, err := requestutil.RequiredUserID(anonymous)
	assert.True(t, apperr.Is(err, apperr.CodeUnauthorized))

	ctx := ctxutil.WithAuthUser(anonymous.Context(), &sec.AuthClaims{UserID: "u1"})
	signedIn := anonymous.WithContext(ctx)
	userID, err := requestutil.RequiredUserID(signedIn)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}
