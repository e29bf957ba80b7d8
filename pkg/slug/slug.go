// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slug turns titles into the ASCII identifiers used in URLs.

[From] is total and idempotent: the result is zero or more [a-z0-9] runs
joined by single hyphens, and From(From(s)) == From(s).
*/
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Separator joins the alphanumeric runs of a slug.
const Separator = '-'

// folds covers letters that NFD leaves intact, plus "&".
var folds = strings.NewReplacer(
	"ß", "ss", "ẞ", "ss",
	"æ", "ae", "Æ", "ae",
	"œ", "oe", "Œ", "oe",
	"ø", "o", "Ø", "o",
	"đ", "d", "Đ", "d",
	"ð", "d", "Ð", "d",
	"ł", "l", "Ł", "l",
	"þ", "th", "Þ", "th",
	"ı", "i",
	"&", " and ",
)

// From slugifies s. Letters outside Latin script are dropped.
func From(s string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(stripMarks, folds.Replace(strings.ToLower(s)))
	if err != nil {
		folded = s
	}

	var builder strings.Builder
	builder.Grow(len(folded))

	pending := false
	for _, r := range folded {
		if !isSlugRune(r) {
			pending = builder.Len() > 0
			continue
		}
		if pending {
			builder.WriteRune(Separator)
			pending = false
		}
		builder.WriteRune(unicode.ToLower(r))
	}
	return builder.String()
}

func isSlugRune(r rune) bool {
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
