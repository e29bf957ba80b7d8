// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sluggable_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-cms/internal/core/sluggable"
	"github.com/taibuivan/yomira-cms/pkg/pointer"
)

/*
TestOnCreate verifies derivation only happens when no slug is given.
*/
func TestOnCreate(t *testing.T) {
	derived := sluggable.OnCreate("Hello World", "")
	assert.Equal(t, sluggable.Fields{Name: "Hello World", Slug: "hello-world"}, derived)

	explicit := sluggable.OnCreate("Hello World", "welcome")
	assert.Equal(t, "welcome", explicit.Slug)
	assert.True(t, explicit.SlugCustom)
}

/*
TestOnUpdate covers the re-derivation policy for partial updates.
*/
func TestOnUpdate(t *testing.T) {
	auto := sluggable.Fields{Name: "Old", Slug: "old"}
	custom := sluggable.Fields{Name: "Old", Slug: "pinned", SlugCustom: true}

	tests := []struct {
		name     string
		current  sluggable.Fields
		newName  *string
		explicit *string
		want     sluggable.Fields
	}{
		{"name_changed_rederives", auto, pointer.To("New Title"), nil,
			sluggable.Fields{Name: "New Title", Slug: "new-title"}},
		{"name_unchanged_keeps", auto, pointer.To("Old"), nil, auto},
		{"nothing_sent_keeps", auto, nil, nil, auto},
		{"explicit_in_same_update_wins", auto, pointer.To("New Title"), pointer.To("chosen"),
			sluggable.Fields{Name: "New Title", Slug: "chosen", SlugCustom: true}},
		{"custom_never_overwritten", custom, pointer.To("New Title"), nil,
			sluggable.Fields{Name: "New Title", Slug: "pinned", SlugCustom: true}},
		{"empty_explicit_releases_custom", custom, nil, pointer.To(""),
			sluggable.Fields{Name: "Old", Slug: "old"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sluggable.OnUpdate(tt.current, tt.newName, tt.explicit))
		})
	}
}

/*
TestOnUpdate_Deterministic verifies the same name always yields the same slug.
*/
func TestOnUpdate_Deterministic(t *testing.T) {
	current := sluggable.Fields{Name: "A", Slug: "a"}
	first := sluggable.OnUpdate(current, pointer.To("Crème Brûlée"), nil)
	second := sluggable.OnUpdate(current, pointer.To("Crème Brûlée"), nil)
	assert.Equal(t, first, second)
	assert.Equal(t, "creme-brulee", first.Slug)
}

/*
TestUnique verifies numeric suffixing and error propagation.
*/
func TestUnique(t *testing.T) {
	taken := map[string]bool{"news": true, "news-2": true}
	exists := func(_ context.Context, candidate string) (bool, error) {
		return taken[candidate], nil
	}

	got, err := sluggable.Unique(context.Background(), "news", exists)
	require.NoError(t, err)
	assert.Equal(t, "news-3", got)

	got, err = sluggable.Unique(context.Background(), "fresh", exists)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)

	boom := errors.New("boom")
	_, err = sluggable.Unique(context.Background(), "news", func(context.Context, string) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}
