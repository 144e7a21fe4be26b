package models

import "time"

// Thought is a short message on the ephemeral board. Rows past ExpiresAt
// are never returned; expiry is a read-side filter, not a sweeper.
type Thought struct {
	ID          string    `db:"id" json:"id"`
	Content     string    `db:"content" json:"content"`
	College     string    `db:"college" json:"college"`
	AuthorName  string    `db:"author_name" json:"author_name"`
	AuthorEmail string    `db:"author_email" json:"author_email"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	ExpiresAt   time.Time `db:"expires_at" json:"expires_at"`
}

// ThoughtFilter narrows thought listings.
type ThoughtFilter struct {
	College  string
	Page     int
	PageSize int
}
