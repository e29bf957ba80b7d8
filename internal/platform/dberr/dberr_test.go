// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/dberr"
)

/*
TestWrap verifies each pgx failure maps to its application error.
*/
func TestWrap(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"no_rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), apperr.CodeNotFound, http.StatusNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, apperr.CodeConflict, http.StatusConflict},
		{"foreign_key", &pgconn.PgError{Code: "23503"}, apperr.CodeUnprocessable, http.StatusUnprocessableEntity},
		{"other", errors.New("connection reset"), apperr.CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := apperr.As(dberr.Wrap(tt.err, "insert post"))
			if assert.NotNil(t, wrapped) {
				assert.Equal(t, tt.code, wrapped.Code)
				assert.Equal(t, tt.status, wrapped.HTTPStatus)
				assert.ErrorIs(t, wrapped, tt.err)
			}
		})
	}
}

/*
TestWrap_PassThrough verifies nil and domain errors are returned unchanged.
*/
func TestWrap_PassThrough(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "noop"))

	domain := apperr.InvalidTransition("draft", "archived")
	assert.Same(t, domain, dberr.Wrap(domain, "update post"))
}

/*
TestIsNotFound verifies raw and classified missing rows are recognised.
*/
func TestIsNotFound(t *testing.T) {
	assert.True(t, dberr.IsNotFound(pgx.ErrNoRows))
	assert.True(t, dberr.IsNotFound(apperr.NotFound("Post")))
	assert.False(t, dberr.IsNotFound(errors.New("boom")))
}
