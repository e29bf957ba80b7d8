// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comment

import (
	"context"

	"github.com/taibuivan/yomira-cms/internal/core/owner"
)

// TransitionFunc computes the next state of a locked comment and the counter
// deltas the change requires.
type TransitionFunc func(current Comment) (Comment, []Delta, error)

// PlanFunc computes a deletion plan from the locked thread of the comment.
type PlanFunc func(thread []Comment) (DeletionPlan, error)

/*
Repository persists comments and applies counter deltas.

Every mutating method runs the status write and its deltas as one atomic unit
while holding row locks on the mutated comments, so concurrent moderators of
the same thread serialize instead of drifting the counters.
*/
type Repository interface {
	FindByID(ctx context.Context, id string) (*Comment, error)

	// ListThread returns every comment of an owner, oldest first.
	ListThread(ctx context.Context, ref owner.Ref) ([]Comment, error)

	// List returns the moderation queue, newest first, and the total count.
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Comment, int, error)

	// Create inserts c and applies its creation deltas atomically.
	Create(ctx context.Context, c *Comment, deltas []Delta) error

	// Transition locks the comment, calls apply and persists the result
	// together with the returned deltas.
	Transition(ctx context.Context, id string, apply TransitionFunc) (*Comment, error)

	// Delete locks the thread of id, calls plan and removes the planned rows
	// while applying the planned deltas.
	Delete(ctx context.Context, id string, plan PlanFunc) (DeletionPlan, error)

	// ApplyDeltas applies standalone deltas (likes) atomically.
	ApplyDeltas(ctx context.Context, deltas []Delta) error
}
