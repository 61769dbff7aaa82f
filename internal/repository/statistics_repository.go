package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campusdesk/complaint-api/internal/dto"
)

type queryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// StatisticsRepository runs the aggregate queries behind the admin and staff
// dashboards. Every method computes from live rows; callers decide whether
// the result is cached.
type StatisticsRepository struct {
	db      *sqlx.DB
	metrics queryObserver
}

// NewStatisticsRepository creates a new instance of StatisticsRepository.
func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// WithQueryObserver attaches a timing observer for the aggregate queries.
func (r *StatisticsRepository) WithQueryObserver(obs queryObserver) *StatisticsRepository {
	r.metrics = obs
	return r
}

func (r *StatisticsRepository) observe(label string, start time.Time) {
	if r.metrics != nil {
		r.metrics.ObserveDBQuery(label, time.Since(start))
	}
}

type summaryCounts struct {
	Total      int `db:"total"`
	Pending    int `db:"pending"`
	InProgress int `db:"in_progress"`
	Solved     int `db:"solved"`
	Rejected   int `db:"rejected"`
	Unsolved   int `db:"unsolved"`
	Unassigned int `db:"unassigned"`
}

// SummaryCounts returns the per-status totals and the unassigned count in a
// single scan over the complaints table.
func (r *StatisticsRepository) SummaryCounts(ctx context.Context) (*dto.StatisticsSummary, error) {
	defer r.observe("statistics_summary", time.Now())
	const query = `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'PENDING') AS pending,
		COUNT(*) FILTER (WHERE status = 'IN_PROGRESS') AS in_progress,
		COUNT(*) FILTER (WHERE status = 'SOLVED') AS solved,
		COUNT(*) FILTER (WHERE status = 'REJECTED') AS rejected,
		COUNT(*) FILTER (WHERE status = 'UNSOLVED') AS unsolved,
		COUNT(*) FILTER (WHERE assigned_to IS NULL) AS unassigned
	FROM complaints`

	var counts summaryCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("statistics summary counts: %w", err)
	}

	return &dto.StatisticsSummary{
		TotalComplaints: counts.Total,
		Pending:         counts.Pending,
		InProgress:      counts.InProgress,
		Solved:          counts.Solved,
		Rejected:        counts.Rejected,
		Unsolved:        counts.Unsolved,
		Unassigned:      counts.Unassigned,
	}, nil
}

// AvgResolutionDays returns the mean created-to-solved interval in days,
// rounded to two decimals, or 0 when nothing is solved yet.
func (r *StatisticsRepository) AvgResolutionDays(ctx context.Context) (float64, error) {
	defer r.observe("statistics_avg_resolution", time.Now())
	const query = `SELECT COALESCE(ROUND(AVG(EXTRACT(EPOCH FROM (updated_at - created_at)) / 86400.0)::numeric, 2), 0) FROM complaints WHERE status = 'SOLVED'`
	var avg float64
	if err := r.db.GetContext(ctx, &avg, query); err != nil {
		return 0, fmt.Errorf("statistics avg resolution days: %w", err)
	}
	return avg, nil
}

// CountByType returns complaint totals per category, largest first.
func (r *StatisticsRepository) CountByType(ctx context.Context) ([]dto.TypeCount, error) {
	defer r.observe("statistics_by_type", time.Now())
	const query = `SELECT type, COUNT(*) AS count FROM complaints GROUP BY type ORDER BY count DESC, type ASC`
	var rows []dto.TypeCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("statistics count by type: %w", err)
	}
	return rows, nil
}

// CountByRole returns complaint totals per submitter role.
func (r *StatisticsRepository) CountByRole(ctx context.Context) ([]dto.RoleCount, error) {
	defer r.observe("statistics_by_role", time.Now())
	const query = `SELECT u.role, COUNT(*) AS count FROM complaints c JOIN users u ON u.id = c.user_id GROUP BY u.role ORDER BY count DESC, u.role ASC`
	var rows []dto.RoleCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("statistics count by role: %w", err)
	}
	return rows, nil
}

// LongestOpen returns the oldest complaints that are not yet solved,
// oldest first, capped at 15 rows.
func (r *StatisticsRepository) LongestOpen(ctx context.Context, filter dto.LongestOpenFilter) ([]dto.LongestOpenRow, error) {
	defer r.observe("statistics_longest_open", time.Now())
	conditions := []string{"c.status <> 'SOLVED'"}
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("u.role = $%d", len(args)+1))
		args = append(args, filter.Role)
	}
	if filter.Search != "" {
		placeholder := fmt.Sprintf("$%d", len(args)+1)
		conditions = append(conditions, fmt.Sprintf("(LOWER(c.subject) LIKE %s OR LOWER(u.full_name) LIKE %s)", placeholder, placeholder))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	query := fmt.Sprintf(`SELECT c.id, c.subject, c.status, u.full_name AS author_name, u.role AS author_role, a.full_name AS assignee_name, c.created_at
	FROM complaints c
	JOIN users u ON u.id = c.user_id
	LEFT JOIN users a ON a.id = c.assigned_to
	WHERE %s
	ORDER BY c.created_at ASC
	LIMIT 15`, strings.Join(conditions, " AND "))

	var rows []dto.LongestOpenRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("statistics longest open: %w", err)
	}
	return rows, nil
}

// RecentlyClosed returns the ten most recently solved complaints.
func (r *StatisticsRepository) RecentlyClosed(ctx context.Context) ([]dto.RecentlyClosedRow, error) {
	defer r.observe("statistics_recently_closed", time.Now())
	const query = `SELECT c.id, c.subject, u.full_name AS author_name, u.role AS author_role, a.full_name AS assignee_name, c.updated_at AS closed_at
	FROM complaints c
	JOIN users u ON u.id = c.user_id
	LEFT JOIN users a ON a.id = c.assigned_to
	WHERE c.status = 'SOLVED'
	ORDER BY c.updated_at DESC
	LIMIT 10`
	var rows []dto.RecentlyClosedRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("statistics recently closed: %w", err)
	}
	return rows, nil
}

// StaffLoad returns how many complaints are assigned to each staff member,
// counting every assignment regardless of status, busiest first with name as
// the tie-breaker, capped at 20 rows.
func (r *StatisticsRepository) StaffLoad(ctx context.Context) ([]dto.StaffLoadRow, error) {
	defer r.observe("statistics_staff_load", time.Now())
	const query = `SELECT s.id AS staff_id, s.full_name AS staff_name, COUNT(c.id) AS assigned
	FROM users s
	LEFT JOIN complaints c ON c.assigned_to = s.id
	WHERE s.role = 'STAFF'
	GROUP BY s.id, s.full_name
	ORDER BY assigned DESC, staff_name ASC
	LIMIT 20`
	var rows []dto.StaffLoadRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("statistics staff load: %w", err)
	}
	return rows, nil
}

type dashboardCounts struct {
	TotalUsers      int `db:"total_users"`
	TotalComplaints int `db:"total_complaints"`
	Solved          int `db:"solved"`
	NewToday        int `db:"new_today"`
}

// Dashboard returns the admin landing page cards plus the ten most recent
// complaints.
func (r *StatisticsRepository) Dashboard(ctx context.Context) (*dto.AdminDashboard, error) {
	defer r.observe("admin_dashboard", time.Now())
	const countsQuery = `SELECT
		(SELECT COUNT(*) FROM users) AS total_users,
		COUNT(*) AS total_complaints,
		COUNT(*) FILTER (WHERE status = 'SOLVED') AS solved,
		COUNT(*) FILTER (WHERE created_at >= date_trunc('day', NOW())) AS new_today
	FROM complaints`

	var counts dashboardCounts
	if err := r.db.GetContext(ctx, &counts, countsQuery); err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}

	const recentQuery = `SELECT c.id, u.full_name AS author_name, c.subject, c.status, c.created_at
	FROM complaints c
	JOIN users u ON u.id = c.user_id
	ORDER BY c.created_at DESC
	LIMIT 10`

	var recent []dto.RecentComplaintRow
	if err := r.db.SelectContext(ctx, &recent, recentQuery); err != nil {
		return nil, fmt.Errorf("dashboard recent complaints: %w", err)
	}

	return &dto.AdminDashboard{
		TotalUsers:         counts.TotalUsers,
		TotalComplaints:    counts.TotalComplaints,
		SolvedComplaints:   counts.Solved,
		NewComplaintsToday: counts.NewToday,
		Recent:             recent,
	}, nil
}

// StaffOverview returns the status totals and per-category breakdown scoped
// to the statuses a staff member works with.
func (r *StatisticsRepository) StaffOverview(ctx context.Context) (*dto.StaffOverview, error) {
	defer r.observe("staff_overview", time.Now())
	const countsQuery = `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'UNSOLVED') AS unsolved,
		COUNT(*) FILTER (WHERE status = 'PENDING') AS pending,
		COUNT(*) FILTER (WHERE status = 'SOLVED') AS solved
	FROM complaints
	WHERE status IN ('UNSOLVED', 'PENDING', 'SOLVED')`

	var counts struct {
		Total    int `db:"total"`
		Unsolved int `db:"unsolved"`
		Pending  int `db:"pending"`
		Solved   int `db:"solved"`
	}
	if err := r.db.GetContext(ctx, &counts, countsQuery); err != nil {
		return nil, fmt.Errorf("staff overview counts: %w", err)
	}

	const byTypeQuery = `SELECT type,
		COUNT(*) FILTER (WHERE status = 'UNSOLVED') AS unsolved,
		COUNT(*) FILTER (WHERE status = 'PENDING') AS pending,
		COUNT(*) FILTER (WHERE status = 'SOLVED') AS solved,
		COUNT(*) AS total
	FROM complaints
	WHERE status IN ('UNSOLVED', 'PENDING', 'SOLVED')
	GROUP BY type
	ORDER BY total DESC, type ASC`

	var byType []dto.TypeStatusCount
	if err := r.db.SelectContext(ctx, &byType, byTypeQuery); err != nil {
		return nil, fmt.Errorf("staff overview by type: %w", err)
	}

	return &dto.StaffOverview{
		Total:    counts.Total,
		Unsolved: counts.Unsolved,
		Pending:  counts.Pending,
		Solved:   counts.Solved,
		ByType:   byType,
	}, nil
}
