package dto

import "time"

// TypeCount is a per-category complaint count.
type TypeCount struct {
	Type  string `db:"type" json:"type"`
	Count int    `db:"count" json:"count"`
}

// RoleCount is a per-submitter-role complaint count.
type RoleCount struct {
	Role  string `db:"role" json:"role"`
	Count int    `db:"count" json:"count"`
}

// StatisticsSummary carries the admin statistics cards and breakdowns.
type StatisticsSummary struct {
	TotalComplaints   int         `json:"totalComplaints"`
	Pending           int         `json:"pending"`
	InProgress        int         `json:"inProgress"`
	Solved            int         `json:"solved"`
	Rejected          int         `json:"rejected"`
	Unsolved          int         `json:"unsolved"`
	Unassigned        int         `json:"unassigned"`
	AvgResolutionDays float64     `json:"avgResolutionDays"`
	ByType            []TypeCount `json:"byType"`
	ByRole            []RoleCount `json:"byRole"`
	GeneratedAt       time.Time   `json:"generatedAt"`
}

// LongestOpenRow describes one of the oldest still-open complaints.
type LongestOpenRow struct {
	ID           string    `db:"id" json:"id"`
	Subject      string    `db:"subject" json:"subject"`
	Status       string    `db:"status" json:"status"`
	AuthorName   string    `db:"author_name" json:"user"`
	AuthorRole   string    `db:"author_role" json:"role"`
	AssigneeName *string   `db:"assignee_name" json:"assignedTo,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	DaysOpen     int       `json:"daysOpen"`
}

// LongestOpenFilter narrows the longest-open listing.
type LongestOpenFilter struct {
	Search string
	Status string
	Role   string
}

// RecentlyClosedRow describes a recently solved complaint.
type RecentlyClosedRow struct {
	ID           string    `db:"id" json:"id"`
	Subject      string    `db:"subject" json:"subject"`
	AuthorName   string    `db:"author_name" json:"user"`
	AuthorRole   string    `db:"author_role" json:"role"`
	AssigneeName *string   `db:"assignee_name" json:"assignedTo,omitempty"`
	ClosedAt     time.Time `db:"closed_at" json:"closedAt"`
}

// StaffLoadRow is the per-staff assigned-complaint count.
type StaffLoadRow struct {
	StaffID   string `db:"staff_id" json:"staffId"`
	StaffName string `db:"staff_name" json:"staff"`
	Assigned  int    `db:"assigned" json:"assigned"`
}

// RecentComplaintRow is a row of the admin dashboard table.
type RecentComplaintRow struct {
	ID         string    `db:"id" json:"id"`
	AuthorName string    `db:"author_name" json:"user"`
	Subject    string    `db:"subject" json:"subject"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// AdminDashboard carries the admin landing page cards.
type AdminDashboard struct {
	TotalUsers         int                  `json:"totalUsers"`
	TotalComplaints    int                  `json:"totalComplaints"`
	SolvedComplaints   int                  `json:"solvedComplaints"`
	NewComplaintsToday int                  `json:"newComplaints"`
	Recent             []RecentComplaintRow `json:"recent"`
}

// TypeStatusCount breaks one complaint category down by status.
type TypeStatusCount struct {
	Type     string `db:"type" json:"type"`
	Unsolved int    `db:"unsolved" json:"unsolved"`
	Pending  int    `db:"pending" json:"pending"`
	Solved   int    `db:"solved" json:"solved"`
	Total    int    `db:"total" json:"total"`
}

// StaffOverview carries the staff dashboard stats and chart data.
type StaffOverview struct {
	Total    int               `json:"total"`
	Unsolved int               `json:"unsolved"`
	Pending  int               `json:"pending"`
	Solved   int               `json:"solved"`
	ByType   []TypeStatusCount `json:"byType"`
}
