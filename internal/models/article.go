package models

import (
	"time"
)

// ArticleStatus is the lifecycle state of an article
type ArticleStatus int

const (
	ArticleDraft     ArticleStatus = 0
	ArticleReviewing ArticleStatus = 1
	ArticlePublished ArticleStatus = 2
	ArticleRejected  ArticleStatus = 3
	ArticleOffline   ArticleStatus = 4
)

func (s ArticleStatus) String() string {
	switch s {
	case ArticleDraft:
		return "draft"
	case ArticleReviewing:
		return "reviewing"
	case ArticlePublished:
		return "published"
	case ArticleRejected:
		return "rejected"
	case ArticleOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// AuthorStatuses are the statuses an author may request on create/update
var AuthorStatuses = map[ArticleStatus]bool{
	ArticleDraft:     true,
	ArticleReviewing: true,
	ArticlePublished: true,
}

// Article represents a blog article
type Article struct {
	ID           int64         `json:"id" db:"id"`
	Title        string        `json:"title" db:"title"`
	Slug         string        `json:"slug" db:"slug"`
	Summary      string        `json:"summary" db:"summary"`
	Content      string        `json:"content,omitempty" db:"content"`
	ContentHTML  string        `json:"content_html,omitempty" db:"content_html"`
	CoverImage   string        `json:"cover_image,omitempty" db:"cover_image"`
	CategoryID   *int64        `json:"category_id,omitempty" db:"category_id"`
	Password     string        `json:"-" db:"password"`
	HasPassword  bool          `json:"has_password" db:"-"`
	AuthorID     int64         `json:"author_id" db:"author_id"`
	Status       ArticleStatus `json:"status" db:"status"`
	IsTop        bool          `json:"is_top" db:"is_top"`
	IsRecommend  bool          `json:"is_recommend" db:"is_recommend"`
	IsOriginal   bool          `json:"is_original" db:"is_original"`
	SourceURL    string        `json:"source_url,omitempty" db:"source_url"`
	ViewCount    int           `json:"view_count" db:"view_count"`
	LikeCount    int           `json:"like_count" db:"like_count"`
	CommentCount int           `json:"comment_count" db:"comment_count"`
	WordCount    int           `json:"word_count" db:"word_count"`
	ReadingTime  int           `json:"reading_time" db:"reading_time"`
	AuditReason  string        `json:"audit_reason,omitempty" db:"audit_reason"`
	PublishedAt  *time.Time    `json:"published_at,omitempty" db:"published_at"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
	Deleted      bool          `json:"-" db:"deleted"`

	Tags []Tag `json:"tags" db:"-"`
}

// ArticleInput is the author's create/update request
type ArticleInput struct {
	Title       string        `json:"title" validate:"required,max=200"`
	Slug        string        `json:"slug" validate:"omitempty,max=100,slug"`
	Summary     string        `json:"summary" validate:"max=500"`
	Content     string        `json:"content" validate:"required"`
	CoverImage  string        `json:"cover_image" validate:"omitempty,max=500"`
	CategoryID  *int64        `json:"category_id" validate:"omitempty,gt=0"`
	TagIDs      *[]int64      `json:"tag_ids" validate:"omitempty,max=20,dive,gt=0"`
	IsTop       bool          `json:"is_top"`
	IsRecommend bool          `json:"is_recommend"`
	IsOriginal  bool          `json:"is_original"`
	SourceURL   string        `json:"source_url" validate:"omitempty,max=500,url"`
	Password    string        `json:"password" validate:"max=64"`
	Status      ArticleStatus `json:"status" validate:"author_status"`
}

// ArticleAuditRequest is the moderator's review decision
type ArticleAuditRequest struct {
	Status      ArticleStatus `json:"status" validate:"audit_status"`
	AuditReason string        `json:"audit_reason" validate:"max=500"`
}

// ArticleOfflineRequest takes a published article offline
type ArticleOfflineRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// Sort fields accepted by article listings
const (
	SortPublishedAt = "published_at"
	SortViewCount   = "view_count"
	SortLikeCount   = "like_count"
)

// ArticleQuery holds the listing filters
type ArticleQuery struct {
	CategoryID  *int64         `form:"category_id"`
	TagID       *int64         `form:"tag_id"`
	AuthorID    *int64         `form:"author_id"`
	Status      *ArticleStatus `form:"status"`
	IsTop       *bool          `form:"is_top"`
	IsRecommend *bool          `form:"is_recommend"`
	Keyword     string         `form:"keyword"`
	SortBy      string         `form:"sort_by"`
	SortOrder   string         `form:"sort_order"`
	Page        int            `form:"page"`
	PageSize    int            `form:"page_size"`
}

// ArticleNDJSON is one line of an article export
type ArticleNDJSON struct {
	ID          int64      `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content"`
	AuthorID    int64      `json:"author_id"`
	CategoryID  *int64     `json:"category_id,omitempty"`
	TagIDs      []int64    `json:"tag_ids"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
