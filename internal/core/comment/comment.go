// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comment

import (
	"time"

	"github.com/taibuivan/yomira-cms/internal/core/owner"
)

// # Field Names

const (
	FieldContent    = "content"
	FieldStatus     = "status"
	FieldOwnerType  = "owner_type"
	FieldOwnerID    = "owner_id"
	FieldGuestName  = "guest_name"
	FieldGuestEmail = "guest_email"
	FieldParentID   = "parent_id"
)

// # Moderation Status

// Status is the moderation state of a comment.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusSpam     Status = "spam"
)

// Statuses lists every valid status, for request validation.
var Statuses = []string{
	string(StatusPending),
	string(StatusApproved),
	string(StatusRejected),
	string(StatusSpam),
}

// # Entities

// Author identifies who wrote a comment: a registered account or a guest.
type Author struct {
	UserID       *string `json:"user_id,omitempty"`
	GuestName    string  `json:"guest_name,omitempty"`
	GuestEmail   string  `json:"guest_email,omitempty"`
	GuestWebsite string  `json:"guest_website,omitempty"`
	IPAddress    string  `json:"-"`
	UserAgent    string  `json:"-"`
}

// IsGuest reports whether the author has no account.
func (a Author) IsGuest() bool { return a.UserID == nil }

// Comment is one entry of a threaded discussion attached to an owner entity.
type Comment struct {
	ID           string     `json:"id"`
	ParentID     *string    `json:"parent_id"`
	Owner        owner.Ref  `json:"owner"`
	Author       Author     `json:"author"`
	Content      string     `json:"content"`
	Status       Status     `json:"status"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	ApprovedBy   *string    `json:"approved_by,omitempty"`
	RepliesCount int        `json:"replies_count"`
	LikesCount   int        `json:"likes_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsApproved reports whether the comment counts toward its owner's total.
func (c Comment) IsApproved() bool { return c.Status == StatusApproved }

// TreeKey implements tree.Item.
func (c Comment) TreeKey() string { return c.ID }

// TreeParent implements tree.Item.
func (c Comment) TreeParent() *string { return c.ParentID }

// TreeOrder implements tree.Item. Threads are loaded oldest first, so ties
// fall back to creation order.
func (c Comment) TreeOrder() int { return 0 }

// TreeLabel implements tree.Item.
func (c Comment) TreeLabel() (name, slug string) {
	if c.Author.IsGuest() {
		return c.Author.GuestName, ""
	}
	return *c.Author.UserID, ""
}

// # Counter Deltas

// Counter names a cached aggregate maintained by moderation side effects.
type Counter string

const (
	// CounterReplies is a comment's number of direct replies.
	CounterReplies Counter = "replies"
	// CounterLikes is a comment's number of likes.
	CounterLikes Counter = "likes"
	// CounterOwnerComments is the owner's number of approved comments.
	CounterOwnerComments Counter = "owner_comments"
)

// Delta is a counter adjustment the storage layer applies atomically with the
// status write that caused it.
type Delta struct {
	Counter Counter `json:"counter"`
	// CommentID targets replies and likes.
	CommentID string `json:"comment_id,omitempty"`
	// Owner targets owner comment totals.
	Owner  owner.Ref `json:"owner,omitempty"`
	Amount int       `json:"amount"`
}

// DeletionPlan lists the rows a delete removes and the deltas it requests.
type DeletionPlan struct {
	Removed []string `json:"removed"`
	Deltas  []Delta  `json:"deltas"`
}

// Filter narrows the moderation queue.
type Filter struct {
	Status *Status
	Owner  *owner.Ref
}
