package models

import "time"

// GroupAssignment maps a student to their current group leader. The
// student key is unique, so a student has at most one leader at a time.
// Reassignment replaces the row in place and refreshes assigned_at.
type GroupAssignment struct {
	ID         string    `db:"id" json:"id"`
	LeaderID   string    `db:"leader_id" json:"leader_id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
}

// GroupMember is one roster row: the assignment joined with the student's
// profile.
type GroupMember struct {
	AssignmentID string    `db:"assignment_id" json:"assignment_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	AssignedAt   time.Time `db:"assigned_at" json:"assigned_at"`
}

// AssignGroupInput holds the caller-supplied assignment pair.
type AssignGroupInput struct {
	LeaderID  string `json:"leader_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
}
