// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/constants"
	"github.com/taibuivan/yomira-cms/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-cms/internal/platform/respond"
	"github.com/taibuivan/yomira-cms/internal/platform/sec"
)

// TokenVerifier verifies bearer tokens on behalf of [Authenticate].
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// PermissionChecker answers whether a user currently holds a permission.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID, permission string) (bool, error)
}

// Guard produces a middleware requiring the given permission.
//
// Handlers receive a Guard instead of the checker so they can declare their
// requirements next to the routes they protect.
type Guard func(permission string) func(http.Handler) http.Handler

// # Authentication

/*
Authenticate verifies the bearer token in the Authorization header.

A request without the header continues anonymously. A malformed or invalid
token is a 401, never a silent downgrade. Verified requests carry the claims
in the context and a request logger tagged with user_id.
*/
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			header := request.Header.Get(constants.HeaderAuthorization)
			if header == "" {
				next.ServeHTTP(writer, request)
				return
			}

			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || token == "" || strings.Contains(token, " ") {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			ctx = ctxutil.WithLogger(ctx, ctxutil.GetLogger(ctx).With(slog.String("user_id", claims.UserID)))
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks anonymous requests. Mount after [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// # Authorization

/*
RequirePermission blocks requests whose user lacks permission.

Anonymous requests get 401, authenticated users without the grant get 403.
A checker failure is reported as a server error, never as a grant.
*/
func RequirePermission(checker PermissionChecker, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			allowed, err := checker.HasPermission(request.Context(), claims.UserID, permission)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			if !allowed {
				ctxutil.GetLogger(request.Context()).InfoContext(request.Context(), "permission_denied",
					slog.String("user_id", claims.UserID),
					slog.String("permission", permission),
				)
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// NewGuard binds checker into a [Guard].
func NewGuard(checker PermissionChecker) Guard {
	return func(permission string) func(http.Handler) http.Handler {
		return RequirePermission(checker, permission)
	}
}
