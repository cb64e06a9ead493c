package models

import (
	"time"
)

// CommentStatus is the moderation state of a comment
type CommentStatus int

const (
	CommentPending  CommentStatus = 0
	CommentApproved CommentStatus = 1
	CommentDeleted  CommentStatus = 2
)

func (s CommentStatus) String() string {
	switch s {
	case CommentPending:
		return "pending"
	case CommentApproved:
		return "approved"
	case CommentDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// MaxCommentLength is the maximum comment length in characters
const MaxCommentLength = 1000

// Comment represents a comment on an article
type Comment struct {
	ID          int64         `json:"id" db:"id"`
	ArticleID   int64         `json:"article_id" db:"article_id"`
	AuthorID    int64         `json:"author_id" db:"author_id"`
	ParentID    int64         `json:"parent_id" db:"parent_id"`
	ReplyToID   *int64        `json:"reply_to_id,omitempty" db:"reply_to_id"`
	Content     string        `json:"content" db:"content"`
	LikeCount   int           `json:"like_count" db:"like_count"`
	Status      CommentStatus `json:"status" db:"status"`
	AuditReason string        `json:"audit_reason,omitempty" db:"audit_reason"`
	IPAddress   string        `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent   string        `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
	Deleted     bool          `json:"-" db:"deleted"`

	Replies []*Comment `json:"replies,omitempty" db:"-"`
}

// IsTopLevel reports whether the comment is addressed at the article itself
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == 0
}

// CommentInput is a create request
type CommentInput struct {
	Content   string `json:"content" validate:"required,max=1000"`
	ArticleID int64  `json:"article_id" validate:"required,gt=0"`
	ParentID  int64  `json:"parent_id" validate:"gte=0"`
	ReplyToID *int64 `json:"reply_to_id" validate:"omitempty,gte=0"`
}

// Column widths of the captured client info
const (
	MaxIPAddressLength = 64
	MaxUserAgentLength = 512
)

// ClientInfo is captured with every new comment for audit purposes
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// Clipped returns the client info cut down to the stored column widths
func (c ClientInfo) Clipped() ClientInfo {
	return ClientInfo{
		IPAddress: clip(c.IPAddress, MaxIPAddressLength),
		UserAgent: clip(c.UserAgent, MaxUserAgentLength),
	}
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// CommentAuditRequest is the moderator's decision on a pending comment
type CommentAuditRequest struct {
	Status      CommentStatus `json:"status" validate:"comment_audit_status"`
	AuditReason string        `json:"audit_reason" validate:"max=500"`
}

// CommentQuery holds paging and filters for comment listings
type CommentQuery struct {
	ArticleID *int64         `form:"article_id"`
	Status    *CommentStatus `form:"status"`
	SortOrder string         `form:"sort_order"` // asc|desc by created_at
	Page      int            `form:"page"`
	PageSize  int            `form:"page_size"`
}
