// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil reads path parameters, bodies and the caller identity
from an incoming request.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-cms/internal/platform/validate"
	"github.com/taibuivan/yomira-cms/pkg/uuid"
)

// MaxBodyBytes caps JSON bodies. Post content is the largest payload.
const MaxBodyBytes = 4 << 20

// DecodeJSON decodes the body into target, rejecting unknown fields.
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, request.Body, MaxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// ID returns the named path parameter, which must be a UUID.
func ID(request *http.Request, name string) (string, error) {
	value := chi.URLParam(request, name)
	if !uuid.Valid(value) {
		return "", apperr.ValidationError("Invalid identifier",
			apperr.FieldError{Field: name, Message: "Must be a valid UUID"})
	}
	return value, nil
}

// Param returns the named path parameter as is.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// OptionalUserID is nil for anonymous callers.
func OptionalUserID(request *http.Request) *string {
	if claims := ctxutil.GetAuthUser(request.Context()); claims != nil {
		return &claims.UserID
	}
	return nil
}

// RequiredUserID fails with UNAUTHORIZED for anonymous callers.
func RequiredUserID(request *http.Request) (string, error) {
	if userID := OptionalUserID(request); userID != nil {
		return *userID, nil
	}
	return "", apperr.Unauthorized("Authentication required")
}
