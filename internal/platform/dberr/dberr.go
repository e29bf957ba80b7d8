// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr classifies pgx errors into [apperr.AppError] values.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
)

/*
Wrap classifies err from a query performed while doing action.

  - an [apperr.AppError] passes through, so domain errors raised inside a
    transaction keep their code
  - pgx.ErrNoRows becomes NOT_FOUND
  - unique and foreign key violations become CONFLICT and UNPROCESSABLE
  - anything else becomes INTERNAL_ERROR naming action
*/
func Wrap(err error, action string) error {
	if err == nil || apperr.IsAppError(err) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Resource").WithCause(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Conflict("Resource already exists").WithCause(err)
		case pgerrcode.ForeignKeyViolation:
			return apperr.Unprocessable("Referenced resource does not exist").WithCause(err)
		}
	}

	internal := apperr.Internal(err)
	internal.Message = "An unexpected error occurred while performing " + action
	return internal
}

// IsNotFound reports whether err means a missing row, raw or classified.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || apperr.Is(err, apperr.CodeNotFound)
}
