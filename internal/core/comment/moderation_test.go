// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comment_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-cms/internal/core/comment"
	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/core/tree"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/pkg/pointer"
)

var (
	now  = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	post = owner.Ref{Type: owner.TypePost, ID: "post-1"}
)

func newComment(id string, parent *string, status comment.Status) comment.Comment {
	return comment.Comment{
		ID:       id,
		ParentID: parent,
		Owner:    post,
		Author:   comment.Author{GuestName: "Guest"},
		Content:  "hello",
		Status:   status,
	}
}

/*
TestCreationDeltas covers root comments, replies and approved imports.
*/
func TestCreationDeltas(t *testing.T) {
	assert.Empty(t, comment.CreationDeltas(newComment("c1", nil, comment.StatusPending)))

	reply := comment.CreationDeltas(newComment("c2", pointer.To("c1"), comment.StatusPending))
	assert.Equal(t, []comment.Delta{{Counter: comment.CounterReplies, CommentID: "c1", Amount: 1}}, reply)

	imported := comment.CreationDeltas(newComment("c3", nil, comment.StatusApproved))
	assert.Equal(t, []comment.Delta{{Counter: comment.CounterOwnerComments, Owner: post, Amount: 1}}, imported)
}

/*
TestTransition_ApprovalBoundary verifies one owner delta per boundary crossing.
*/
func TestTransition_ApprovalBoundary(t *testing.T) {
	tests := []struct {
		name  string
		from  comment.Status
		to    comment.Status
		delta int
	}{
		{"pending_to_approved", comment.StatusPending, comment.StatusApproved, 1},
		{"spam_to_approved", comment.StatusSpam, comment.StatusApproved, 1},
		{"approved_to_rejected", comment.StatusApproved, comment.StatusRejected, -1},
		{"approved_to_spam", comment.StatusApproved, comment.StatusSpam, -1},
		{"pending_to_spam", comment.StatusPending, comment.StatusSpam, 0},
		{"rejected_to_pending", comment.StatusRejected, comment.StatusPending, 0},
		{"approved_to_approved", comment.StatusApproved, comment.StatusApproved, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, deltas, err := comment.Transition(newComment("c1", nil, tt.from), tt.to, nil, now)
			require.NoError(t, err)

			total := 0
			for _, delta := range deltas {
				assert.Equal(t, comment.CounterOwnerComments, delta.Counter)
				total += delta.Amount
			}
			assert.Equal(t, tt.delta, total)
		})
	}
}

/*
TestTransition_StampsApproval verifies approval metadata and idempotence.
*/
func TestTransition_StampsApproval(t *testing.T) {
	approved, _, err := comment.Transition(newComment("c1", nil, comment.StatusPending), comment.StatusApproved, pointer.To("mod-1"), now)
	require.NoError(t, err)
	assert.Equal(t, comment.StatusApproved, approved.Status)
	assert.Equal(t, now, *approved.ApprovedAt)
	assert.Equal(t, "mod-1", *approved.ApprovedBy)

	again, deltas, err := comment.Transition(approved, comment.StatusApproved, pointer.To("mod-2"), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, deltas)
	assert.Equal(t, approved, again)

	_, _, err = comment.Transition(approved, "deleted", nil, now)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

/*
TestPlanDeletion_Cascade verifies the subtree goes and counters follow.
*/
func TestPlanDeletion_Cascade(t *testing.T) {
	// root
	// └── a (approved)
	//     ├── b (approved)
	//     └── c (pending)
	thread := tree.New([]comment.Comment{
		newComment("root", nil, comment.StatusApproved),
		newComment("a", pointer.To("root"), comment.StatusApproved),
		newComment("b", pointer.To("a"), comment.StatusApproved),
		newComment("c", pointer.To("a"), comment.StatusPending),
	})

	plan, err := comment.PlanDeletion(thread, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, plan.Removed)
	assert.Equal(t, []comment.Delta{
		{Counter: comment.CounterReplies, CommentID: "root", Amount: -1},
		{Counter: comment.CounterOwnerComments, Owner: post, Amount: -2},
	}, plan.Deltas)

	leaf, err := comment.PlanDeletion(thread, "c")
	require.NoError(t, err)
	assert.Equal(t, []comment.Delta{{Counter: comment.CounterReplies, CommentID: "a", Amount: -1}}, leaf.Deltas)

	_, err = comment.PlanDeletion(thread, "missing")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

/*
TestPlanDeletion_CycleSafe verifies a corrupted thread fails instead of looping.
*/
func TestPlanDeletion_CycleSafe(t *testing.T) {
	thread := tree.New([]comment.Comment{
		newComment("x", pointer.To("y"), comment.StatusPending),
		newComment("y", pointer.To("x"), comment.StatusPending),
	})

	_, err := comment.PlanDeletion(thread, "x")
	assert.True(t, apperr.Is(err, apperr.CodeCycleDetected))
}

/*
TestApplyCounter verifies the zero floor and clamp reporting.
*/
func TestApplyCounter(t *testing.T) {
	next, clamped := comment.ApplyCounter(2, -1)
	assert.Equal(t, 1, next)
	assert.False(t, clamped)

	next, clamped = comment.ApplyCounter(0, -1)
	assert.Equal(t, 0, next)
	assert.True(t, clamped)

	assert.Equal(t, comment.Delta{Counter: comment.CounterLikes, CommentID: "c1", Amount: -1}, comment.LikeDelta("c1", false))
}
