// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package clock provides the injectable "current time" source.
//
// Decision functions in the core never read the wall clock themselves; they
// receive "now" as a parameter. Services obtain it from a [Clock] so tests
// can pin time with [Fixed].
package clock

import "time"

// Clock returns the evaluation-time "now".
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in UTC.
type System struct{}

// Now implements [Clock].
func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant.
type Fixed time.Time

// Now implements [Clock].
func (f Fixed) Now() time.Time { return time.Time(f) }
