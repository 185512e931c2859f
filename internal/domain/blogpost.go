package domain

import (
	"time"
)

// Blog post status constants.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// BlogPost represents a blog post. The counters and last_reaction are a
// denormalized aggregate derived from the blog_post_reactions ledger; the
// per-user reaction rows are authoritative and last_reaction is a display
// convenience only (it reflects the most recent reactor's direction).
type BlogPost struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Slug       string  `json:"slug"`
	Body       string  `json:"body"`
	AuthorID   string  `json:"author_id"`
	CategoryID *string `json:"category_id,omitempty"`
	Status     string  `json:"status"`

	ViewCount    int64      `json:"view_count"`
	LikeCount    int64      `json:"like_count"`
	DislikeCount int64      `json:"dislike_count"`
	LastReaction *Direction `json:"last_reaction,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsValidPostStatus checks whether the given status string is a valid blog
// post status.
func IsValidPostStatus(status string) bool {
	return status == PostStatusDraft || status == PostStatusPublished
}
