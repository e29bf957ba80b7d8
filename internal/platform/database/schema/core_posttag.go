// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CorePostTagTable represents the 'core.posttag' table
type CorePostTagTable struct {
	Table     string
	PostID    string
	TagID     string
	CreatedAt string
}

// CorePostTag is the schema definition for core.posttag
var CorePostTag = CorePostTagTable{
	Table:     "core.posttag",
	PostID:    "postid",
	TagID:     "tagid",
	CreatedAt: "createdat",
}
