package models

import (
	"time"
)

// Taxonomy status values shared by tags and categories
const (
	StatusDisabled = 0
	StatusEnabled  = 1
)

// Tag groups articles across categories
type Tag struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Slug         string    `json:"slug" db:"slug"`
	Description  string    `json:"description,omitempty" db:"description"`
	ArticleCount int       `json:"article_count" db:"article_count"`
	Status       int       `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Enabled reports whether the tag may be attached to articles
func (t *Tag) Enabled() bool {
	return t.Status == StatusEnabled
}

// Category is a node in the category tree (ParentID 0 = root)
type Category struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Slug         string    `json:"slug" db:"slug"`
	Description  string    `json:"description,omitempty" db:"description"`
	ParentID     int64     `json:"parent_id" db:"parent_id"`
	SortOrder    int       `json:"sort_order" db:"sort_order"`
	ArticleCount int       `json:"article_count" db:"article_count"`
	Status       int       `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Children []*Category `json:"children,omitempty" db:"-"`
}

// Enabled reports whether articles may be filed under the category
func (c *Category) Enabled() bool {
	return c.Status == StatusEnabled
}

// TagInput creates or updates a tag
type TagInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Slug        string `json:"slug" validate:"omitempty,max=100,slug"`
	Description string `json:"description" validate:"max=255"`
	Status      *int   `json:"status" validate:"omitempty,oneof=0 1"`
}

// CategoryInput creates or updates a category
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Slug        string `json:"slug" validate:"omitempty,max=100,slug"`
	Description string `json:"description" validate:"max=255"`
	ParentID    int64  `json:"parent_id" validate:"gte=0"`
	SortOrder   int    `json:"sort_order"`
	Status      *int   `json:"status" validate:"omitempty,oneof=0 1"`
}
