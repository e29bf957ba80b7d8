// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

const (
	// ExcerptLength is the rune limit of a derived excerpt.
	ExcerptLength = 160

	excerptEllipsis = "..."
	wordsPerMinute  = 200
)

var tagRegex = regexp.MustCompile(`(?s)<[^>]*>`)

// StripTags removes markup, decodes entities and collapses whitespace.
func StripTags(content string) string {
	text := html.UnescapeString(tagRegex.ReplaceAllString(content, " "))
	return strings.Join(strings.Fields(text), " ")
}

// WordCount counts runs of letters and digits.
func WordCount(text string) int {
	return len(strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\'' && r != '-'
	}))
}

/*
DeriveExcerpt builds an excerpt from post content: markup is stripped and the
text is cut to [ExcerptLength] runes, with trailing whitespace trimmed and an
ellipsis appended when something was cut.
*/
func DeriveExcerpt(content string) string {
	text := StripTags(content)

	runes := []rune(text)
	if len(runes) <= ExcerptLength {
		return text
	}
	return strings.TrimRightFunc(string(runes[:ExcerptLength]), unicode.IsSpace) + excerptEllipsis
}
