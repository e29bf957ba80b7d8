// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr is the error vocabulary shared by services and the HTTP layer.

Services return [*AppError] values; respond.Error turns them into the JSON
error envelope. Anything else reaching the edge is treated as a 500.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Codes

const (
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeConflict          = "CONFLICT"
	CodeValidation        = "VALIDATION_ERROR"
	CodeRateLimited       = "RATE_LIMITED"
	CodeUnprocessable     = "UNPROCESSABLE"
	CodeInvalidParent     = "INVALID_PARENT"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeCycleDetected     = "CYCLE_DETECTED"
	CodeInternal          = "INTERNAL_ERROR"
)

/*
AppError pairs a client-safe message with an HTTP status and a stable code.

Cause is logged server side and never serialized.
*/
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	Details    []FieldError `json:"details,omitempty"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
}

// FieldError names one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func newError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause attaches the underlying error for logging and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// # Client Errors

// NotFound reports a missing resource: NotFound("Post") reads "Post not found".
func NotFound(resource string) *AppError {
	return newError(http.StatusNotFound, CodeNotFound, resource+" not found")
}

func Unauthorized(message string) *AppError {
	return newError(http.StatusUnauthorized, CodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return newError(http.StatusForbidden, CodeForbidden, message)
}

// Conflict reports a uniqueness clash such as a taken slug.
func Conflict(message string) *AppError {
	return newError(http.StatusConflict, CodeConflict, message)
}

// ValidationError is a 400 listing every rejected field.
func ValidationError(message string, details ...FieldError) *AppError {
	appError := newError(http.StatusBadRequest, CodeValidation, message)
	appError.Details = details
	return appError
}

func RateLimited(retryAfterSeconds int) *AppError {
	return newError(http.StatusTooManyRequests, CodeRateLimited,
		fmt.Sprintf("Too many requests, retry in %ds", retryAfterSeconds))
}

// Unprocessable is a 422 for well-formed input that references something
// unusable, like a missing category.
func Unprocessable(message string) *AppError {
	return newError(http.StatusUnprocessableEntity, CodeUnprocessable, message)
}

// # Domain Errors

// InvalidParent rejects a move under the node itself or one of its
// descendants.
func InvalidParent(message string) *AppError {
	return newError(http.StatusUnprocessableEntity, CodeInvalidParent, message)
}

// InvalidTransition rejects a status change the lifecycle does not allow.
func InvalidTransition(from, to string) *AppError {
	return newError(http.StatusConflict, CodeInvalidTransition,
		fmt.Sprintf("Cannot transition from %q to %q", from, to))
}

// CycleDetected means stored hierarchy data loops back on nodeID. It is a
// server fault, so the client only sees a generic message.
func CycleDetected(nodeID string) *AppError {
	return newError(http.StatusInternalServerError, CodeCycleDetected, "Hierarchy data is inconsistent").
		WithCause(fmt.Errorf("cycle detected at node %s", nodeID))
}

// # Server Errors

// Internal hides cause behind a generic 500 message.
func Internal(cause error) *AppError {
	return newError(http.StatusInternalServerError, CodeInternal, "An unexpected error occurred").
		WithCause(cause)
}

// # Inspection

// IsAppError reports whether err's chain holds an [*AppError].
func IsAppError(err error) bool {
	return As(err) != nil
}

// Is reports whether err's chain holds an [*AppError] with code.
func Is(err error, code string) bool {
	appError := As(err)
	return appError != nil && appError.Code == code
}

// As returns the first [*AppError] in err's chain, or nil.
func As(err error) *AppError {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError
	}
	return nil
}
