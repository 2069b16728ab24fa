package models

import "time"

// ForumPost is a community discussion thread.
// Upvotes and Downvotes are display-only counters.
type ForumPost struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	DomainID  *int64    `json:"domain_id" db:"domain_id"`
	Upvotes   int       `json:"upvotes" db:"upvotes"`
	Downvotes int       `json:"downvotes" db:"downvotes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ForumComment is a reply to a post
type ForumComment struct {
	ID        int64     `json:"id" db:"id"`
	PostID    int64     `json:"post_id" db:"post_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	Upvotes   int       `json:"upvotes" db:"upvotes"`
	Downvotes int       `json:"downvotes" db:"downvotes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
