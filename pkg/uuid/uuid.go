// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid wraps google/uuid for the string identifiers stored as keys.

New returns Version 7 values so rows created together are adjacent in
B-tree indexes.
*/
package uuid

import "github.com/google/uuid"

// canonicalLength is the hyphenated 8-4-4-4-12 form.
const canonicalLength = 36

// New returns a fresh time-ordered identifier. It panics only if the system
// entropy source fails.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Valid reports whether s is a hyphenated UUID of any version. Braced, URN
// and unhyphenated forms are rejected even though uuid.Parse accepts them.
func Valid(s string) bool {
	return len(s) == canonicalLength && uuid.Validate(s) == nil
}
