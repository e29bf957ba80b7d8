// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-cms/pkg/slug"
)

var urlSafe = regexp.MustCompile(`^([a-z0-9]+(-[a-z0-9]+)*)?$`)

/*
TestFrom covers the transformation pipeline on representative inputs.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Hello World", "hello-world"},
		{"accents", "Crème Brûlée à la carte", "creme-brulee-a-la-carte"},
		{"vietnamese", "Đường đến Sài Gòn", "duong-den-sai-gon"},
		{"german", "Straße", "strasse"},
		{"ligature", "Æsop's Fables", "aesop-s-fables"},
		{"ampersand", "Tips & Tricks", "tips-and-tricks"},
		{"punctuation_runs", "--Hello,,,   World!!--", "hello-world"},
		{"digits", "Top 10 Posts of 2026", "top-10-posts-of-2026"},
		{"dotted_capital_i", "İstanbul", "istanbul"},
		{"non_latin_only", "日本語", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}

/*
TestFrom_Idempotent verifies From(From(s)) == From(s) and URL safety.
*/
func TestFrom_Idempotent(t *testing.T) {
	inputs := []string{
		"Hello World", "  leading and trailing  ", "ÀÉÎÕÜ", "a--b__c", "Đà Nẵng",
		"C++ & Go", "🚀 Launch day 🚀", "ØRESUND", "x", "-", "Привет мир 2",
	}

	for _, in := range inputs {
		once := slug.From(in)
		assert.Regexp(t, urlSafe, once, "input %q", in)
		assert.Equal(t, once, slug.From(once), "input %q", in)
		assert.Equal(t, once, slug.From(in), "deterministic for %q", in)
	}
}
