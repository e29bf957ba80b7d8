// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/core/publication"
	"github.com/taibuivan/yomira-cms/internal/core/tag"
)

var now = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func live() publication.State {
	at := now.Add(-time.Hour)
	return publication.State{Status: publication.StatusPublished, PublishAt: &at}
}

// drifted is published content whose publish time is still ahead of now.
func drifted() publication.State {
	at := now.Add(time.Hour)
	return publication.State{Status: publication.StatusPublished, PublishAt: &at}
}

func association(tagID, postID string, state publication.State) tag.Association {
	return tag.Association{TagID: tagID, Content: owner.Ref{Type: owner.TypePost, ID: postID}, State: state}
}

/*
TestRecompute counts only distinct live content.
*/
func TestRecompute(t *testing.T) {
	associations := []tag.Association{
		association("go", "p1", live()),
		association("go", "p1", live()),
		association("go", "p2", publication.Draft()),
		association("go", "p3", drifted()),
		association("go", "p4", live()),
		association("rust", "p5", live()),
	}

	assert.Equal(t, 2, tag.Recompute("go", associations, now))
	assert.Equal(t, 1, tag.Recompute("rust", associations, now))
	assert.Equal(t, 0, tag.Recompute("zig", associations, now))

	// The drifted post counts once its publish time passes.
	assert.Equal(t, 3, tag.Recompute("go", associations, now.Add(2*time.Hour)))
}

/*
TestFastPath verifies increments and the zero floor.
*/
func TestFastPath(t *testing.T) {
	assert.Equal(t, 1, tag.IncrementOnAttach(0))

	next, clamped := tag.DecrementOnDetach(3)
	assert.Equal(t, 2, next)
	assert.False(t, clamped)

	next, clamped = tag.DecrementOnDetach(0)
	assert.Equal(t, 0, next)
	assert.True(t, clamped)
}

/*
TestReconcile verifies drift detection and idempotence.
*/
func TestReconcile(t *testing.T) {
	tags := []tag.Tag{
		{ID: "go", UsageCount: 5},
		{ID: "rust", UsageCount: 1},
		{ID: "zig", UsageCount: 0},
		{ID: "elm", UsageCount: 2},
	}
	associations := []tag.Association{
		association("go", "p1", live()),
		association("go", "p2", live()),
		association("rust", "p3", live()),
		association("elm", "p4", publication.Draft()),
	}

	corrections := tag.Reconcile(tags, associations, now)
	assert.Equal(t, []tag.Correction{
		{TagID: "go", From: 5, To: 2},
		{TagID: "elm", From: 2, To: 0},
	}, corrections)

	for i := range tags {
		for _, correction := range corrections {
			if tags[i].ID == correction.TagID {
				tags[i].UsageCount = correction.To
			}
		}
	}
	assert.Empty(t, tag.Reconcile(tags, associations, now))
}
