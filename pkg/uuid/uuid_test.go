// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-cms/pkg/uuid"
)

/*
TestNew verifies identifiers are valid, distinct and time ordered.
*/
func TestNew(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	assert.True(t, uuid.Valid(first))
	assert.NotEqual(t, first, second)
	assert.Equal(t, byte('7'), first[14])
}

/*
TestValid rejects non-canonical forms.
*/
func TestValid(t *testing.T) {
	assert.True(t, uuid.Valid("0190a6a2-3b4c-7d5e-8f60-718293a4b5c6"))
	assert.False(t, uuid.Valid(""))
	assert.False(t, uuid.Valid("not-a-uuid"))
	assert.False(t, uuid.Valid("{0190a6a2-3b4c-7d5e-8f60-718293a4b5c6}"))
	assert.False(t, uuid.Valid("0190a6a23b4c7d5e8f60718293a4b5c6"))
}
