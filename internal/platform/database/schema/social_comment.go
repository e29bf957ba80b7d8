// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// SocialCommentTable represents the 'social.comment' table
type SocialCommentTable struct {
	Table        string
	ID           string
	OwnerType    string
	OwnerID      string
	ParentID     string
	UserID       string
	GuestName    string
	GuestEmail   string
	GuestWebsite string
	IPAddress    string
	UserAgent    string
	Content      string
	Status       string
	ApprovedAt   string
	ApprovedBy   string
	LikeCount    string
	ReplyCount   string
	CreatedAt    string
	UpdatedAt    string
}

// SocialComment is the schema definition for social.comment
var SocialComment = SocialCommentTable{
	Table:        "social.comment",
	ID:           "id",
	OwnerType:    "ownertype",
	OwnerID:      "ownerid",
	ParentID:     "parentid",
	UserID:       "userid",
	GuestName:    "guestname",
	GuestEmail:   "guestemail",
	GuestWebsite: "guestwebsite",
	IPAddress:    "ipaddress",
	UserAgent:    "useragent",
	Content:      "content",
	Status:       "status",
	ApprovedAt:   "approvedat",
	ApprovedBy:   "approvedby",
	LikeCount:    "likecount",
	ReplyCount:   "replycount",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

func (t SocialCommentTable) Columns() []string {
	return []string{
		t.ID, t.OwnerType, t.OwnerID, t.ParentID, t.UserID, t.GuestName, t.GuestEmail,
		t.GuestWebsite, t.IPAddress, t.UserAgent, t.Content, t.Status, t.ApprovedAt,
		t.ApprovedBy, t.LikeCount, t.ReplyCount, t.CreatedAt, t.UpdatedAt,
	}
}
