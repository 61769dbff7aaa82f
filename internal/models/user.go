package models

import "time"

// UserRole is the closed set of roles known to the RBAC system.
type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleStaff   UserRole = "STAFF"
	RoleAdmin   UserRole = "ADMIN"
)

// Valid reports whether the role is one of the known variants.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// ApprovalState gates staff accounts. Students and admins are stored
// AUTHORIZED at creation; only staff ever sit in PENDING or REJECTED.
type ApprovalState string

const (
	ApprovalPending    ApprovalState = "PENDING"
	ApprovalAuthorized ApprovalState = "AUTHORIZED"
	ApprovalRejected   ApprovalState = "REJECTED"
)

// Valid reports whether the approval state is a known variant.
func (s ApprovalState) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalAuthorized, ApprovalRejected:
		return true
	}
	return false
}

// User represents an account stored in the users table.
type User struct {
	ID            string        `db:"id" json:"id"`
	Email         string        `db:"email" json:"email"`
	PasswordHash  string        `db:"password_hash" json:"-"`
	FullName      string        `db:"full_name" json:"full_name"`
	Role          UserRole      `db:"role" json:"role"`
	ApprovalState ApprovalState `db:"approval_state" json:"approval_state"`
	RollNumber    *string       `db:"roll_number" json:"roll_number,omitempty"`
	Branch        *string       `db:"branch" json:"branch,omitempty"`
	LastLogin     *time.Time    `db:"last_login" json:"last_login,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// StaffOption is a minimal projection used for the assignment dropdown.
type StaffOption struct {
	ID       string `db:"id" json:"id"`
	FullName string `db:"full_name" json:"name"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
