package models

import "time"

// Announcement represents a persisted announcement row.
type Announcement struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Pinned    bool      `db:"pinned" json:"pinned"`
	PostedBy  string    `db:"posted_by" json:"posted_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CreateAnnouncementInput holds the caller-supplied fields for a new
// announcement. New announcements always start unpinned.
type CreateAnnouncementInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateAnnouncementInput holds a partial update. Nil fields are left
// unchanged.
type UpdateAnnouncementInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Pinned  *bool   `json:"pinned"`
}

// AnnouncementFilter pages through the announcement feed.
type AnnouncementFilter struct {
	Page     int
	PageSize int
}
