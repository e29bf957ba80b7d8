// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publication_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-cms/internal/core/publication"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

/*
TestSetPublishAt_FromDraft verifies status derivation from the publish time.
*/
func TestSetPublishAt_FromDraft(t *testing.T) {
	tests := []struct {
		name string
		at   *time.Time
		want publication.Status
	}{
		{"future_schedules", at(time.Hour), publication.StatusScheduled},
		{"past_publishes", at(-time.Hour), publication.StatusPublished},
		{"exactly_now_publishes", at(0), publication.StatusPublished},
		{"cleared_stays_draft", nil, publication.StatusDraft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := publication.Draft().SetPublishAt(tt.at, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, next.Status)
			assert.Equal(t, tt.at, next.PublishAt)
		})
	}
}

/*
TestSetPublishAt_FromScheduled verifies rescheduling and unscheduling.
*/
func TestSetPublishAt_FromScheduled(t *testing.T) {
	scheduled, err := publication.Draft().SetPublishAt(at(time.Hour), now)
	require.NoError(t, err)

	moved, err := scheduled.SetPublishAt(at(2*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, publication.StatusScheduled, moved.Status)

	cleared, err := scheduled.SetPublishAt(nil, now)
	require.NoError(t, err)
	assert.Equal(t, publication.StatusDraft, cleared.Status)
}

/*
TestSetPublishAt_FromPublished rejects moving live content into the future.
*/
func TestSetPublishAt_FromPublished(t *testing.T) {
	live, err := publication.Draft().Publish(now)
	require.NoError(t, err)

	backdated, err := live.SetPublishAt(at(-24*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, publication.StatusPublished, backdated.Status)

	_, err = live.SetPublishAt(at(time.Hour), now)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidTransition))

	_, err = live.SetPublishAt(nil, now)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidTransition))
}

/*
TestPublish verifies the publish time defaults to now and is never in the future.
*/
func TestPublish(t *testing.T) {
	fresh, err := publication.Draft().Publish(now)
	require.NoError(t, err)
	assert.Equal(t, publication.StatusPublished, fresh.Status)
	assert.Equal(t, now, *fresh.PublishAt)

	past := publication.State{Status: publication.StatusDraft, PublishAt: at(-time.Hour)}
	kept, err := past.Publish(now)
	require.NoError(t, err)
	assert.Equal(t, *at(-time.Hour), *kept.PublishAt)

	early := publication.State{Status: publication.StatusScheduled, PublishAt: at(time.Hour)}
	forced, err := early.Publish(now)
	require.NoError(t, err)
	assert.Equal(t, now, *forced.PublishAt)
	assert.True(t, forced.IsLive(now))

	_, err = publication.Draft().Archive().Publish(now)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidTransition))
}

/*
TestUnpublish keeps the publish history.
*/
func TestUnpublish(t *testing.T) {
	live, err := publication.Draft().Publish(now)
	require.NoError(t, err)

	draft, err := live.Unpublish()
	require.NoError(t, err)
	assert.Equal(t, publication.StatusDraft, draft.Status)
	assert.Equal(t, now, *draft.PublishAt)
	assert.False(t, draft.IsLive(now))
}

/*
TestArchive_Reactivate verifies archived is terminal except for reactivation.
*/
func TestArchive_Reactivate(t *testing.T) {
	archived := publication.Draft().Archive()
	assert.Equal(t, publication.StatusArchived, archived.Status)
	assert.Equal(t, archived, archived.Archive())

	recorded, err := archived.SetPublishAt(at(time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, publication.StatusArchived, recorded.Status)

	_, err = archived.Unpublish()
	assert.True(t, apperr.Is(err, apperr.CodeInvalidTransition))

	back, err := archived.Reactivate()
	require.NoError(t, err)
	assert.Equal(t, publication.StatusDraft, back.Status)

	_, err = publication.Draft().Reactivate()
	assert.True(t, apperr.Is(err, apperr.CodeInvalidTransition))
}

/*
TestIsLive_RechecksTime verifies a stale published status is not trusted.
*/
func TestIsLive_RechecksTime(t *testing.T) {
	stale := publication.State{Status: publication.StatusPublished, PublishAt: at(time.Hour)}
	assert.False(t, stale.IsLive(now))
	assert.True(t, stale.IsLive(now.Add(2*time.Hour)))

	undated := publication.State{Status: publication.StatusPublished}
	assert.False(t, undated.IsLive(now))
}

/*
TestPromote verifies the sweep publishes due scheduled content only.
*/
func TestPromote(t *testing.T) {
	scheduled, err := publication.Draft().SetPublishAt(at(time.Hour), now)
	require.NoError(t, err)
	assert.True(t, scheduled.IsScheduled(now))

	same, changed := scheduled.Promote(now)
	assert.False(t, changed)
	assert.Equal(t, scheduled, same)

	later := now.Add(time.Hour)
	promoted, changed := scheduled.Promote(later)
	assert.True(t, changed)
	assert.Equal(t, publication.StatusPublished, promoted.Status)
	assert.True(t, promoted.IsLive(later))
}

/*
TestState_Equal verifies comparison by status and publish instant.
*/
func TestState_Equal(t *testing.T) {
	scheduled := publication.State{Status: publication.StatusScheduled, PublishAt: at(time.Hour)}
	sameInstant := now.Add(time.Hour).In(time.FixedZone("JST", 9*60*60))

	assert.True(t, publication.Draft().Equal(publication.Draft()))
	assert.True(t, scheduled.Equal(publication.State{Status: publication.StatusScheduled, PublishAt: &sameInstant}))
	assert.False(t, scheduled.Equal(publication.State{Status: publication.StatusPublished, PublishAt: at(time.Hour)}))
	assert.False(t, scheduled.Equal(publication.State{Status: publication.StatusScheduled, PublishAt: at(2 * time.Hour)}))
	assert.False(t, scheduled.Equal(publication.State{Status: publication.StatusScheduled}))
}
