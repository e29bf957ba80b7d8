// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema holds the table and column names of the PostgreSQL schema so
// that repositories never hard-code identifiers in query strings.
package schema

import "strings"

// Qualify renders columns as a comma-separated select list, each prefixed
// with alias when one is given.
//
// Example:
//
//	schema.Qualify("p", schema.CorePost.ID, schema.CorePost.Title) // "p.id, p.title"
func Qualify(alias string, columns ...string) string {
	if alias == "" {
		return strings.Join(columns, ", ")
	}

	qualified := make([]string, len(columns))
	for i, column := range columns {
		qualified[i] = alias + "." + column
	}
	return strings.Join(qualified, ", ")
}
