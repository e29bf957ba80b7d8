// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comment

import (
	"slices"
	"time"

	"github.com/taibuivan/yomira-cms/internal/core/tree"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
)

/*
CreationDeltas returns the counter changes caused by inserting c.

  - A reply bumps its parent's replies counter.
  - A comment created directly as approved (moderator import) bumps the owner.
*/
func CreationDeltas(c Comment) []Delta {
	var deltas []Delta

	if c.ParentID != nil {
		deltas = append(deltas, Delta{Counter: CounterReplies, CommentID: *c.ParentID, Amount: 1})
	}
	if c.IsApproved() {
		deltas = append(deltas, ownerDelta(c, 1))
	}
	return deltas
}

/*
Transition moves c to status `to`.

Any status may be reclassified into any other. The owner counter changes
exactly once per crossing of the approved boundary:

  - entering approved: +1, stamps approval time and moderator
  - leaving approved: -1
  - same status, or a move between two non-approved statuses: no delta

A same-status request returns c unchanged, so re-approving never counts twice.
*/
func Transition(c Comment, to Status, moderatorID *string, now time.Time) (Comment, []Delta, error) {
	if !slices.Contains(Statuses, string(to)) {
		return c, nil, apperr.ValidationError("Invalid comment status",
			apperr.FieldError{Field: FieldStatus, Message: "Must be one of the moderation statuses"})
	}

	if c.Status == to {
		return c, nil, nil
	}

	next := c
	next.Status = to
	next.UpdatedAt = now

	switch {
	case to == StatusApproved:
		stamp := now
		next.ApprovedAt = &stamp
		next.ApprovedBy = cloneID(moderatorID)
		return next, []Delta{ownerDelta(c, 1)}, nil

	case c.Status == StatusApproved:
		return next, []Delta{ownerDelta(c, -1)}, nil
	}

	return next, nil, nil
}

/*
PlanDeletion computes the cascade delete of id within its thread.

The whole subtree goes, found through the cycle-safe traversal of [tree].
Only the root of the removed subtree leaves a surviving parent, so a single
replies decrement is requested. The owner loses one comment per approved
comment removed.
*/
func PlanDeletion(thread *tree.Forest[Comment], id string) (DeletionPlan, error) {
	target, ok := thread.Get(id)
	if !ok {
		return DeletionPlan{}, apperr.NotFound("Comment")
	}

	descendants, err := thread.Descendants(id)
	if err != nil {
		return DeletionPlan{}, err
	}

	removed := make([]string, 0, len(descendants)+1)
	removed = append(removed, id)

	approved := 0
	if target.IsApproved() {
		approved++
	}
	for _, reply := range descendants {
		removed = append(removed, reply.ID)
		if reply.IsApproved() {
			approved++
		}
	}

	var deltas []Delta
	if target.ParentID != nil {
		deltas = append(deltas, Delta{Counter: CounterReplies, CommentID: *target.ParentID, Amount: -1})
	}
	if approved > 0 {
		deltas = append(deltas, ownerDelta(target, -approved))
	}

	return DeletionPlan{Removed: removed, Deltas: deltas}, nil
}

// LikeDelta returns the likes adjustment for a like (+1) or unlike (-1).
func LikeDelta(commentID string, liked bool) Delta {
	amount := 1
	if !liked {
		amount = -1
	}
	return Delta{Counter: CounterLikes, CommentID: commentID, Amount: amount}
}

/*
ApplyCounter adds amount to a cached counter, flooring at zero.

The second result is true when the floor was hit: the stored value had already
drifted below what the operation assumed. Callers log that as an invariant
violation; it is never returned as an error.
*/
func ApplyCounter(current, amount int) (next int, clamped bool) {
	next = current + amount
	if next < 0 {
		return 0, true
	}
	return next, false
}

// # Internal Helpers

func ownerDelta(c Comment, amount int) Delta {
	return Delta{Counter: CounterOwnerComments, Owner: c.Owner, Amount: amount}
}

func cloneID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
