// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-cms/internal/core/post"
)

/*
TestStripTags verifies markup removal and whitespace collapsing.
*/
func TestStripTags(t *testing.T) {
	tests := map[string]struct {
		input string
		want  string
	}{
		"plain":      {input: "Hello world", want: "Hello world"},
		"paragraphs": {input: "<p>Hello</p><p>world</p>", want: "Hello world"},
		"attributes": {input: `<a href="/x" class="y">link</a> text`, want: "link text"},
		"entities":   {input: "Fish &amp; chips", want: "Fish & chips"},
		"multiline":  {input: "<div\n class=\"a\">\n  spaced\n\n out </div>", want: "spaced out"},
		"empty":      {input: "", want: ""},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, post.StripTags(tc.input))
		})
	}
}

/*
TestDeriveExcerpt verifies the rune limit and the ellipsis on cut text.
*/
func TestDeriveExcerpt(t *testing.T) {
	short := "<p>A short post.</p>"
	assert.Equal(t, "A short post.", post.DeriveExcerpt(short))

	long := "<p>" + strings.Repeat("é", 200) + "</p>"
	excerpt := post.DeriveExcerpt(long)
	assert.True(t, strings.HasSuffix(excerpt, "..."))
	assert.Equal(t, post.ExcerptLength+3, utf8.RuneCountInString(excerpt))

	exact := strings.Repeat("a", post.ExcerptLength)
	assert.Equal(t, exact, post.DeriveExcerpt(exact))

	// The cut lands right after a space, which is trimmed before the ellipsis.
	spaced := strings.Repeat("a", post.ExcerptLength-1) + " tail"
	assert.Equal(t, strings.Repeat("a", post.ExcerptLength-1)+"...", post.DeriveExcerpt(spaced))
}

/*
TestPost_ReadingMinutes verifies the 200 words per minute estimate.
*/
func TestPost_ReadingMinutes(t *testing.T) {
	assert.Equal(t, 1, post.Post{}.ReadingMinutes())
	assert.Equal(t, 1, post.Post{Content: strings.Repeat("word ", 200)}.ReadingMinutes())
	assert.Equal(t, 2, post.Post{Content: "<p>" + strings.Repeat("word ", 201) + "</p>"}.ReadingMinutes())
}
