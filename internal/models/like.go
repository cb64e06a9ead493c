package models

import (
	"time"
)

// LikeTarget is the kind of content a like points at
type LikeTarget int

const (
	LikeArticle LikeTarget = 1
	LikeComment LikeTarget = 2
)

func (t LikeTarget) String() string {
	switch t {
	case LikeArticle:
		return "article"
	case LikeComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Valid reports whether t is a known target type
func (t LikeTarget) Valid() bool {
	return t == LikeArticle || t == LikeComment
}

// Like is one user's like of one target
type Like struct {
	ID         int64      `json:"id" db:"id"`
	UserID     int64      `json:"user_id" db:"user_id"`
	TargetID   int64      `json:"target_id" db:"target_id"`
	TargetType LikeTarget `json:"target_type" db:"target_type"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// LikeStatus is returned by like/unlike/status calls
type LikeStatus struct {
	TargetID   int64      `json:"target_id"`
	TargetType LikeTarget `json:"target_type"`
	Liked      bool       `json:"liked"`
	LikeCount  int        `json:"like_count"`
}
