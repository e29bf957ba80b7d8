// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"time"

	"github.com/taibuivan/yomira-cms/internal/core/owner"
)

// # Usage Projection

// Recompute returns the number of distinct live contents associated with
// tagID at now.
func Recompute(tagID string, associations []Association, now time.Time) int {
	seen := make(map[owner.Ref]struct{})
	for _, association := range associations {
		if association.TagID != tagID || !association.State.IsLive(now) {
			continue
		}
		seen[association.Content] = struct{}{}
	}
	return len(seen)
}

// IncrementOnAttach is the fast path for a tag newly attached to live content.
func IncrementOnAttach(current int) int {
	return current + 1
}

// DecrementOnDetach is the fast path for a tag removed from live content.
// The count floors at zero; clamped reports that drift was absorbed.
func DecrementOnDetach(current int) (next int, clamped bool) {
	if current <= 0 {
		return 0, true
	}
	return current - 1, false
}

/*
Reconcile compares every tag's cached count against the association set.

It returns one [Correction] per drifted tag, in the order of tags. Running it
again after applying the corrections returns nothing.
*/
func Reconcile(tags []Tag, associations []Association, now time.Time) []Correction {
	live := make(map[string]map[owner.Ref]struct{})
	for _, association := range associations {
		if !association.State.IsLive(now) {
			continue
		}
		contents, ok := live[association.TagID]
		if !ok {
			contents = make(map[owner.Ref]struct{})
			live[association.TagID] = contents
		}
		contents[association.Content] = struct{}{}
	}

	var corrections []Correction
	for _, tag := range tags {
		actual := len(live[tag.ID])
		if actual != tag.UsageCount {
			corrections = append(corrections, Correction{TagID: tag.ID, From: tag.UsageCount, To: actual})
		}
	}
	return corrections
}
