package models

import "time"

// ComplaintStatus is the canonical lifecycle vocabulary. The staff surface is
// a restriction of this set; the admin surface accepts every variant.
type ComplaintStatus string

const (
	StatusUnsolved   ComplaintStatus = "UNSOLVED"
	StatusPending    ComplaintStatus = "PENDING"
	StatusInProgress ComplaintStatus = "IN_PROGRESS"
	StatusSolved     ComplaintStatus = "SOLVED"
	StatusRejected   ComplaintStatus = "REJECTED"
)

// Valid reports whether the status is a known variant.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusUnsolved, StatusPending, StatusInProgress, StatusSolved, StatusRejected:
		return true
	}
	return false
}

// StaffAssignable reports whether staff may set this status. Staff are
// restricted to the subset the triage screen exposes.
func (s ComplaintStatus) StaffAssignable() bool {
	switch s {
	case StatusUnsolved, StatusPending, StatusSolved:
		return true
	}
	return false
}

// Complaint is a student-submitted ticket tracked through the status lifecycle.
type Complaint struct {
	ID            string          `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"user_id"`
	Subject       string          `db:"subject" json:"subject"`
	Type          string          `db:"type" json:"type"`
	Description   string          `db:"description" json:"description"`
	AttachmentKey *string         `db:"attachment_key" json:"attachment_key,omitempty"`
	Status        ComplaintStatus `db:"status" json:"status"`
	AssignedTo    *string         `db:"assigned_to" json:"assigned_to,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// ComplaintListItem joins author and assignee display fields for list views.
type ComplaintListItem struct {
	Complaint
	AuthorName   string  `db:"author_name" json:"author"`
	AuthorRole   string  `db:"author_role" json:"author_role"`
	AssigneeName *string `db:"assignee_name" json:"assigned_to_name,omitempty"`
}

// Comment is an append-only admin note on a complaint thread.
type Comment struct {
	ID          string    `db:"id" json:"id"`
	ComplaintID string    `db:"complaint_id" json:"complaint_id"`
	AdminID     string    `db:"admin_id" json:"admin_id"`
	AdminName   string    `db:"admin_name" json:"admin_name"`
	Body        string    `db:"body" json:"body"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ComplaintFilter captures the staff/admin search parameters.
type ComplaintFilter struct {
	UserID     *string
	Status     *ComplaintStatus
	NotStatus  *ComplaintStatus
	Type       string
	AuthorRole *UserRole
	Search     string
	Page       int
	PageSize   int
}
