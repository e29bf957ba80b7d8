// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package publication implements the lifecycle state machine for publishable
content (posts and pages).

# States

	draft ──► scheduled ──► published
	  │                        ▲
	  └────────────────────────┘   (publish time not in the future)

	draft | scheduled | published ──► archived ──► draft (manual reactivation)

Status is derived, not assigned, whenever the publish time changes on draft
or scheduled content. Every operation takes the evaluation-time "now" as a
parameter; the package never reads the wall clock.
*/
package publication

import (
	"time"

	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
)

// Status is the lifecycle state of publishable content.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Statuses lists every valid status, for request validation.
var Statuses = []string{
	string(StatusDraft),
	string(StatusScheduled),
	string(StatusPublished),
	string(StatusArchived),
}

// State is the publishable part of a content entity.
type State struct {
	Status    Status     `json:"status"`
	PublishAt *time.Time `json:"published_at"`
}

// Draft returns the initial state of new content.
func Draft() State {
	return State{Status: StatusDraft}
}

// # Transitions

/*
SetPublishAt records a new publish time and re-derives the status.

  - draft / scheduled: a future time yields scheduled, a present or past time
    yields published, clearing the time yields draft.
  - published: the time may move but must stay present and not in the future.
  - archived: the time is recorded, the status stays archived.
*/
func (s State) SetPublishAt(at *time.Time, now time.Time) (State, error) {
	next := State{Status: s.Status, PublishAt: cloneTime(at)}

	switch s.Status {
	case StatusDraft, StatusScheduled:
		next.Status = derive(next.PublishAt, now)
	case StatusPublished:
		if at == nil || at.After(now) {
			return s, apperr.InvalidTransition(string(StatusPublished), string(derive(at, now)))
		}
	case StatusArchived:
	default:
		return s, apperr.InvalidTransition(string(s.Status), string(StatusDraft))
	}

	return next, nil
}

// Publish forces the content live. The publish time becomes now when it is
// unset or still in the future, so a published item is never dated ahead.
func (s State) Publish(now time.Time) (State, error) {
	if s.Status == StatusArchived {
		return s, apperr.InvalidTransition(string(s.Status), string(StatusPublished))
	}

	next := State{Status: StatusPublished, PublishAt: cloneTime(s.PublishAt)}
	if next.PublishAt == nil || next.PublishAt.After(now) {
		at := now
		next.PublishAt = &at
	}
	return next, nil
}

// Unpublish returns the content to draft and keeps the publish time so it can
// be republished later without losing its history.
func (s State) Unpublish() (State, error) {
	if s.Status == StatusArchived {
		return s, apperr.InvalidTransition(string(s.Status), string(StatusDraft))
	}
	return State{Status: StatusDraft, PublishAt: cloneTime(s.PublishAt)}, nil
}

// Archive moves the content to the terminal archived state. Archiving twice
// is a no-op.
func (s State) Archive() State {
	return State{Status: StatusArchived, PublishAt: cloneTime(s.PublishAt)}
}

// Reactivate is the only exit from archived and always lands in draft.
func (s State) Reactivate() (State, error) {
	if s.Status != StatusArchived {
		return s, apperr.InvalidTransition(string(s.Status), string(StatusDraft))
	}
	return State{Status: StatusDraft, PublishAt: cloneTime(s.PublishAt)}, nil
}

// # Queries

// IsLive re-checks the publish time instead of trusting a stored status that
// may have been written under a different clock.
func (s State) IsLive(now time.Time) bool {
	return s.Status == StatusPublished && s.PublishAt != nil && !s.PublishAt.After(now)
}

// IsScheduled reports whether the content waits for a future publish time.
func (s State) IsScheduled(now time.Time) bool {
	return s.Status == StatusScheduled && s.PublishAt != nil && s.PublishAt.After(now)
}

// Due reports whether scheduled content has reached its publish time.
func (s State) Due(now time.Time) bool {
	return s.Status == StatusScheduled && s.PublishAt != nil && !s.PublishAt.After(now)
}

// Promote publishes due scheduled content. The second result is false when
// nothing changed.
func (s State) Promote(now time.Time) (State, bool) {
	if !s.Due(now) {
		return s, false
	}
	return State{Status: StatusPublished, PublishAt: cloneTime(s.PublishAt)}, true
}

// Equal reports whether both states carry the same status and publish time.
func (s State) Equal(other State) bool {
	if s.Status != other.Status {
		return false
	}
	if s.PublishAt == nil || other.PublishAt == nil {
		return s.PublishAt == nil && other.PublishAt == nil
	}
	return s.PublishAt.Equal(*other.PublishAt)
}

// # Internal Helpers

func derive(at *time.Time, now time.Time) Status {
	switch {
	case at == nil:
		return StatusDraft
	case at.After(now):
		return StatusScheduled
	default:
		return StatusPublished
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
