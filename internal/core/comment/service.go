// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comment

import (
	"context"
	"log/slog"
	"slices"

	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/core/tree"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/clock"
	"github.com/taibuivan/yomira-cms/internal/platform/validate"
	"github.com/taibuivan/yomira-cms/pkg/uuid"
)

// maxContentLength bounds a single comment body, in characters.
const maxContentLength = 10000

// # Service Layer

// Service orchestrates comment submission and moderation.
//
// Counter side effects are computed by the pure functions of this package and
// handed to the [Repository], which applies them atomically with the write.
type Service struct {
	repo   Repository
	owners *owner.Registry
	clock  clock.Clock
	logger *slog.Logger
}

// NewService constructs a new comment [Service].
func NewService(repo Repository, owners *owner.Registry, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		owners: owners,
		clock:  clock,
		logger: logger,
	}
}

// # Submission

/*
Create validates and stores a new comment.

Description: The owner is resolved through the registry and must accept
comments. A reply must belong to the same owner as its parent. New comments
start pending unless a moderator explicitly submits them approved.

Returns:
  - error: VALIDATION_ERROR, NOT_FOUND (owner or parent), FORBIDDEN when the
    owner has comments disabled
*/
func (service *Service) Create(ctx context.Context, comment *Comment) error {
	validator := &validate.Validator{}
	validator.Required(FieldContent, comment.Content).MaxLen(FieldContent, comment.Content, maxContentLength)
	validator.Required(FieldOwnerType, string(comment.Owner.Type))
	validator.Required(FieldOwnerID, comment.Owner.ID)

	if comment.Author.IsGuest() {
		validator.Required(FieldGuestName, comment.Author.GuestName).MaxLen(FieldGuestName, comment.Author.GuestName, 100)
		if comment.Author.GuestEmail != "" {
			validator.Email(FieldGuestEmail, comment.Author.GuestEmail)
		}
	}

	if comment.Status == "" {
		comment.Status = StatusPending
	}
	validator.OneOf(FieldStatus, string(comment.Status), Statuses...)

	if err := validator.Err(); err != nil {
		return err
	}

	// Owner resolution
	snapshot, err := service.owners.Load(ctx, comment.Owner)
	if err != nil {
		return err
	}
	if !snapshot.AllowsComments {
		return apperr.Forbidden("Comments are disabled for this content")
	}

	// Thread consistency
	if comment.ParentID != nil {
		parent, err := service.repo.FindByID(ctx, *comment.ParentID)
		if err != nil {
			return err
		}
		if parent.Owner != comment.Owner {
			return apperr.ValidationError("Reply must belong to the same thread",
				apperr.FieldError{Field: FieldParentID, Message: "Parent comment belongs to another owner"})
		}
	}

	now := service.clock.Now()
	comment.ID = uuid.New()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	comment.RepliesCount = 0
	comment.LikesCount = 0
	if comment.IsApproved() {
		comment.ApprovedAt = &now
	}

	if err := service.repo.Create(ctx, comment, CreationDeltas(*comment)); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "comment_created",
		slog.String("comment_id", comment.ID),
		slog.String("owner_type", string(comment.Owner.Type)),
		slog.String("owner_id", comment.Owner.ID),
		slog.String("status", string(comment.Status)),
	)

	return nil
}

// # Moderation

// Moderate reclassifies a comment. Re-applying the current status is a no-op.
func (service *Service) Moderate(ctx context.Context, id string, to Status, moderatorID *string) (*Comment, error) {
	now := service.clock.Now()

	var from Status
	updated, err := service.repo.Transition(ctx, id, func(current Comment) (Comment, []Delta, error) {
		from = current.Status
		return Transition(current, to, moderatorID, now)
	})
	if err != nil {
		return nil, err
	}

	if from != updated.Status {
		service.logger.InfoContext(ctx, "comment_moderated",
			slog.String("comment_id", id),
			slog.String("from", string(from)),
			slog.String("to", string(updated.Status)),
		)
	}

	return updated, nil
}

// Approve is [Service.Moderate] with [StatusApproved].
func (service *Service) Approve(ctx context.Context, id string, moderatorID *string) (*Comment, error) {
	return service.Moderate(ctx, id, StatusApproved, moderatorID)
}

// Reject is [Service.Moderate] with [StatusRejected].
func (service *Service) Reject(ctx context.Context, id string, moderatorID *string) (*Comment, error) {
	return service.Moderate(ctx, id, StatusRejected, moderatorID)
}

// MarkSpam is [Service.Moderate] with [StatusSpam].
func (service *Service) MarkSpam(ctx context.Context, id string, moderatorID *string) (*Comment, error) {
	return service.Moderate(ctx, id, StatusSpam, moderatorID)
}

/*
Delete removes a comment together with its replies.

Returns the ids that were removed. Counter decrements are applied in the same
transaction as the delete.
*/
func (service *Service) Delete(ctx context.Context, id string) ([]string, error) {
	plan, err := service.repo.Delete(ctx, id, func(thread []Comment) (DeletionPlan, error) {
		return PlanDeletion(tree.New(thread), id)
	})
	if err != nil {
		return nil, err
	}

	service.logger.WarnContext(ctx, "comment_deleted",
		slog.String("comment_id", id),
		slog.Int("removed", len(plan.Removed)),
	)

	return plan.Removed, nil
}

// Like adds (liked=true) or removes one like.
func (service *Service) Like(ctx context.Context, id string, liked bool) error {
	if _, err := service.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return service.repo.ApplyDeltas(ctx, []Delta{LikeDelta(id, liked)})
}

// # Lookups

// Get returns a single comment.
func (service *Service) Get(ctx context.Context, id string) (*Comment, error) {
	return service.repo.FindByID(ctx, id)
}

// List returns the moderation queue.
func (service *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]*Comment, int, error) {
	return service.repo.List(ctx, filter, limit, offset)
}

/*
Thread returns the approved discussion of an owner as nested branches.

Replies under a comment that is not approved are hidden along with it.
*/
func (service *Service) Thread(ctx context.Context, ref owner.Ref) ([]tree.Branch[Comment], error) {
	all, err := service.repo.ListThread(ctx, ref)
	if err != nil {
		return nil, err
	}

	approved := slices.DeleteFunc(all, func(c Comment) bool { return !c.IsApproved() })
	return tree.New(approved).Branches(nil)
}
