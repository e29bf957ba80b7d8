// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination reads ?page=&limit= and builds the list "meta" block.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20

	// MaxLimit caps a single page. Larger requests are clamped, not rejected.
	MaxLimit = 100
)

// Params is a 1-indexed page request.
type Params struct {
	Page  int
	Limit int
}

// Offset is the number of rows to skip.
func (p Params) Offset() int {
	return (max(p.Page, 1) - 1) * p.Limit
}

// Meta describes the page returned alongside list data.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// NewMeta derives the page count from total.
func NewMeta(page, limit, total int) Meta {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: pages,
		HasNext:    page < pages,
	}
}

// FromRequest parses the query string. Missing or malformed values fall back
// to the defaults and an oversized limit is clamped to [MaxLimit].
func FromRequest(request *http.Request) Params {
	query := request.URL.Query()

	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 {
		page = DefaultPage
	}

	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}

	return Params{Page: page, Limit: min(limit, MaxLimit)}
}
