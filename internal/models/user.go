package models

import "time"

// UserRole represents the available roles for authorization checks.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleStaff   UserRole = "STAFF"
	RoleStudent UserRole = "STUDENT"
)

// IsStudent reports whether the role is the student role.
func (r UserRole) IsStudent() bool {
	return r == RoleStudent
}

// CanGrantPoints reports whether the role may award manual points.
func (r UserRole) CanGrantPoints() bool {
	return r == RoleStaff || r == RoleAdmin
}

// CanRevokePoint reports whether the role may revoke a point entry.
// Admins revoke any entry, everyone else only entries they granted.
func (r UserRole) CanRevokePoint(isOwner bool) bool {
	if r == RoleAdmin {
		return true
	}
	return isOwner
}

// CanLeadGroup reports whether the role may be assigned as a group leader.
func (r UserRole) CanLeadGroup() bool {
	return r == RoleStaff
}

// User represents an application user stored in the users table. Accounts
// are provisioned by an external identity system, so no credentials live
// here.
type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Role      UserRole  `db:"role" json:"role"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
