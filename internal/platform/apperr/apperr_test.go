// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
)

/*
TestConstructors verifies each constructor's status and code.
*/
func TestConstructors(t *testing.T) {
	tests := []struct {
		err    *apperr.AppError
		status int
		code   string
	}{
		{apperr.NotFound("Post"), http.StatusNotFound, apperr.CodeNotFound},
		{apperr.Unauthorized("no"), http.StatusUnauthorized, apperr.CodeUnauthorized},
		{apperr.Forbidden("no"), http.StatusForbidden, apperr.CodeForbidden},
		{apperr.Conflict("taken"), http.StatusConflict, apperr.CodeConflict},
		{apperr.ValidationError("bad"), http.StatusBadRequest, apperr.CodeValidation},
		{apperr.RateLimited(2), http.StatusTooManyRequests, apperr.CodeRateLimited},
		{apperr.InvalidParent("loop"), http.StatusUnprocessableEntity, apperr.CodeInvalidParent},
		{apperr.InvalidTransition("draft", "archived"), http.StatusConflict, apperr.CodeInvalidTransition},
		{apperr.CycleDetected("n1"), http.StatusInternalServerError, apperr.CodeCycleDetected},
		{apperr.Internal(nil), http.StatusInternalServerError, apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.Error())
		})
	}

	assert.Equal(t, "Post not found", apperr.NotFound("Post").Error())
}

/*
TestInspection verifies codes are found through wrapping.
*/
func TestInspection(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := fmt.Errorf("save: %w", apperr.Internal(cause))

	assert.True(t, apperr.IsAppError(wrapped))
	assert.True(t, apperr.Is(wrapped, apperr.CodeInternal))
	assert.False(t, apperr.Is(wrapped, apperr.CodeNotFound))
	assert.ErrorIs(t, wrapped, cause)

	assert.Nil(t, apperr.As(cause))
	assert.False(t, apperr.Is(nil, apperr.CodeInternal))
}
