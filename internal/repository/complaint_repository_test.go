package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/complaint-api/internal/models"
)

func complaintRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "subject", "type", "description", "attachment_key", "status", "assigned_to", "created_at", "updated_at", "author_name", "author_role", "assignee_name"}).
		AddRow("c1", "u1", "Broken fan", "Hostel", "Fan in room 12 is broken", nil, string(models.StatusUnsolved), nil, now, now, "Student One", string(models.RoleStudent), nil)
}

func TestCreateComplaint(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectExec("INSERT INTO complaints").WillReturnResult(sqlmock.NewResult(1, 1))

	complaint := &models.Complaint{UserID: "u1", Subject: "Broken fan", Type: "Hostel", Description: "Fan in room 12 is broken", Status: models.StatusUnsolved}
	err := repo.Create(context.Background(), complaint)
	require.NoError(t, err)
	assert.NotEmpty(t, complaint.ID)
	assert.False(t, complaint.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindComplaintByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectQuery("SELECT c.id, c.user_id").
		WithArgs("c1").
		WillReturnRows(complaintRows(time.Now()))

	item, err := repo.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Broken fan", item.Subject)
	assert.Equal(t, "Student One", item.AuthorName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListComplaintsByUserAndStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectQuery("SELECT c.id, c.user_id").
		WithArgs("u1", string(models.StatusUnsolved)).
		WillReturnRows(complaintRows(time.Now()))

	userID := "u1"
	status := models.StatusUnsolved
	items, err := repo.List(context.Background(), models.ComplaintFilter{UserID: &userID, Status: &status})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateComplaintStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE complaints SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("c1", string(models.StatusSolved), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "c1", models.StatusSolved)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateComplaintStatusMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectExec("UPDATE complaints SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.StatusSolved)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateComplaintAssignment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	staffID := "s1"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE complaints SET assigned_to = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("c1", &staffID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateAssignment(context.Background(), "c1", &staffID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateComplaintAssignmentUnassign(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectExec("UPDATE complaints SET assigned_to").
		WithArgs("c1", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateAssignment(context.Background(), "c1", nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteComplaintMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM complaints WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddComment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectExec("INSERT INTO complaint_comments").WillReturnResult(sqlmock.NewResult(1, 1))

	comment := &models.Comment{ComplaintID: "c1", AdminID: "a1", Body: "Forwarded to maintenance."}
	err := repo.AddComment(context.Background(), comment)
	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListComments(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "complaint_id", "admin_id", "admin_name", "body", "created_at"}).
		AddRow("m1", "c1", "a1", "Admin One", "Looking into it.", now.Add(-time.Hour)).
		AddRow("m2", "c1", "a1", "Admin One", "Resolved.", now)
	mock.ExpectQuery("SELECT cc.id, cc.complaint_id").
		WithArgs("c1").
		WillReturnRows(rows)

	comments, err := repo.ListComments(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Looking into it.", comments[0].Body)
	assert.NoError(t, mock.ExpectationsWereMet())
}
