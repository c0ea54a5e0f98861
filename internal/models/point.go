package models

import "time"

// PointEntry represents one manual experience point award.
type PointEntry struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Amount    int       `db:"amount" json:"amount"`
	Reason    string    `db:"reason" json:"reason"`
	GivenBy   string    `db:"given_by" json:"given_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GrantPointsInput holds the caller-supplied fields for a new award.
type GrantPointsInput struct {
	StudentID string `json:"student_id" validate:"required"`
	Amount    int    `json:"amount"`
	Reason    string `json:"reason"`
}

// PointSummary aggregates a student's ledger.
type PointSummary struct {
	StudentID string `json:"student_id"`
	Total     int    `json:"total"`
	Entries   int    `json:"entries"`
}
