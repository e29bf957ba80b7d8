// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package validate collects field errors for one input and reports them as a
single VALIDATION_ERROR.

	validator := &validate.Validator{}
	validator.Required(FieldTitle, title).MaxLen(FieldTitle, title, 255)
	if err := validator.Err(); err != nil {
		return err
	}

Services validate; handlers only decode. A Validator is single use.
*/
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/pkg/uuid"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

	// ErrInvalidJSON is returned for a body that does not decode.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator accumulates failures. The zero value is ready to use.
type Validator struct {
	failures []apperr.FieldError
}

// Required fails on blank input.
func (v *Validator) Required(field, value string) *Validator {
	return v.check(field, strings.TrimSpace(value) == "", "This field is required")
}

// MaxLen counts runes, not bytes.
func (v *Validator) MaxLen(field, value string, limit int) *Validator {
	return v.check(field, utf8.RuneCountInString(value) > limit, fmt.Sprintf("Maximum %d characters", limit))
}

// Email uses the RFC 5322 parser from net/mail.
func (v *Validator) Email(field, value string) *Validator {
	_, err := mail.ParseAddress(value)
	return v.check(field, err != nil, "Must be a valid email address")
}

// Slug requires lowercase alphanumeric runs joined by single hyphens.
func (v *Validator) Slug(field, value string) *Validator {
	return v.check(field, !slugPattern.MatchString(value), "Must be a valid URL slug (lowercase letters, digits, hyphens only)")
}

// UUID requires the canonical hyphenated form.
func (v *Validator) UUID(field, value string) *Validator {
	return v.check(field, !uuid.Valid(value), "Must be a valid UUID")
}

// HexColor requires #rrggbb.
func (v *Validator) HexColor(field, value string) *Validator {
	return v.check(field, !colorPattern.MatchString(value), "Must be a hex color like #1a2b3c")
}

// OneOf requires an exact match against allowed.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	return v.check(field, !slices.Contains(allowed, value), "Must be one of: "+strings.Join(allowed, ", "))
}

// Custom records message when failed is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	return v.check(field, failed, message)
}

// Err returns nil when every rule passed.
func (v *Validator) Err() error {
	if len(v.failures) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.failures...)
}

func (v *Validator) check(field string, failed bool, message string) *Validator {
	if failed {
		v.failures = append(v.failures, apperr.FieldError{Field: field, Message: message})
	}
	return v
}
