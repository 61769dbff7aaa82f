package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/complaint-api/internal/dto"
)

func TestSummaryCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatisticsRepository(db)

	rows := sqlmock.NewRows([]string{"total", "pending", "in_progress", "solved", "rejected", "unsolved", "unassigned"}).
		AddRow(10, 2, 1, 4, 1, 2, 3)
	mock.ExpectQuery(regexp.QuoteMeta("FILTER (WHERE assigned_to IS NULL) AS unassigned")).WillReturnRows(rows)

	summary, err := repo.SummaryCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, summary.TotalComplaints)
	assert.Equal(t, 4, summary.Solved)
	assert.Equal(t, 3, summary.Unassigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvgResolutionDays(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatisticsRepository(db)

	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(2.37))

	avg, err := repo.AvgResolutionDays(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 2.37, avg, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvgResolutionDaysNoSolved(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatisticsRepository(db)

	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0.0))

	avg, err := repo.AvgResolutionDays(context.Background())
	require.NoError(t, err)
	assert.Zero(t, avg)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByType(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatisticsRepository(db)

	rows := sqlmock.NewRows([]string{"type", "count"}).
		AddRow("Hostel", 5).
		AddRow("Academic", 3)
	mock.ExpectQuery("SELECT type, COUNT").WillReturnRows(rows)

	counts, err := repo.CountByType(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "Hostel", counts[0].Type)
	assert.Equal(t, 5, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLongestOpenWithFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatisticsRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "subject", "status", "author_name", "author_role", "assignee_name", "created_at"}).
		AddRow("c1", "Broken fan", "UNSOLVED", "Student One", "STUDENT", nil, now.AddDate(0, 0, -30))
	mock.ExpectQuery("ORDER BY c.created_at ASC").
		WithArgs("UNSOLVED", "%fan%").
		WillReturnRows(rows)

	result, err := repo.LongestOpen(context.Background(), dto.LongestOpenFilter{Status: "UNSOLVED", Search: "Fan"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Broken fan", result[0].Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentlyClosed(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatisticsRepository(db)

	now := time.Now()
	assignee := "Staff One"
	rows := sqlmock.NewRows([]string{"id", "subject", "author_name", "author_role", "assignee_name", "closed_at"}).
		AddRow("c2", "Wifi down", "Student Two", "STUDENT", assignee, now)
	mock.ExpectQuery("ORDER BY c.updated_at DESC").WillReturnRows(rows)

	result, err := repo.RecentlyClosed(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Wifi down", result[0].Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffLoad(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatisticsRepository(db)

	// every assignment counts, open or closed, for every staff account
	rows := sqlmock.NewRows([]string{"staff_id", "staff_name", "assigned"}).
		AddRow("s1", "Alice Staff", 4).
		AddRow("s2", "Bob Staff", 0)
	mock.ExpectQuery(`ON c\.assigned_to = s\.id\s+WHERE s\.role = 'STAFF'\s+GROUP BY`).WillReturnRows(rows)

	result, err := repo.StaffLoad(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, 4, result[0].Assigned)
	assert.Equal(t, 0, result[1].Assigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboard(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatisticsRepository(db)

	counts := sqlmock.NewRows([]string{"total_users", "total_complaints", "solved", "new_today"}).
		AddRow(40, 12, 5, 2)
	mock.ExpectQuery("total_users").WillReturnRows(counts)

	recent := sqlmock.NewRows([]string{"id", "author_name", "subject", "status", "created_at"}).
		AddRow("c1", "Student One", "Broken fan", "UNSOLVED", time.Now())
	mock.ExpectQuery("ORDER BY c.created_at DESC").WillReturnRows(recent)

	dashboard, err := repo.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40, dashboard.TotalUsers)
	assert.Equal(t, 2, dashboard.NewComplaintsToday)
	require.Len(t, dashboard.Recent, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffOverview(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatisticsRepository(db)

	counts := sqlmock.NewRows([]string{"total", "unsolved", "pending", "solved"}).
		AddRow(9, 3, 2, 4)
	mock.ExpectQuery("FROM complaints").WillReturnRows(counts)

	byType := sqlmock.NewRows([]string{"type", "unsolved", "pending", "solved", "total"}).
		AddRow("Hostel", 2, 1, 3, 6).
		AddRow("Academic", 1, 1, 1, 3)
	mock.ExpectQuery("GROUP BY type").WillReturnRows(byType)

	overview, err := repo.StaffOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, overview.Total)
	require.Len(t, overview.ByType, 2)
	assert.Equal(t, 6, overview.ByType[0].Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
