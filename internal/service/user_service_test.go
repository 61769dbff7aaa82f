package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusdesk/complaint-api/internal/models"
	appErrors "github.com/campusdesk/complaint-api/pkg/errors"
)

type mockUserRepo struct {
	users       []models.User
	total       int
	byID        *models.User
	approvalErr error
	deleteErr   error
	approvals   map[string]models.ApprovalState
	deleted     []string
	auditLogs   []*models.AuditLog
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.byID == nil {
		return nil, sql.ErrNoRows
	}
	return m.byID, nil
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	return m.users, m.total, nil
}

func (m *mockUserRepo) UpdateApproval(ctx context.Context, id string, state models.ApprovalState) error {
	if m.approvalErr != nil {
		return m.approvalErr
	}
	if m.approvals == nil {
		m.approvals = make(map[string]models.ApprovalState)
	}
	m.approvals[id] = state
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func newUserService(repo *mockUserRepo) *UserService {
	return NewUserService(repo, validator.New(), zap.NewNop())
}

func TestUserServiceListPagination(t *testing.T) {
	repo := &mockUserRepo{users: []models.User{{ID: "1"}, {ID: "2"}}, total: 42}
	svc := newUserService(repo)

	users, pagination, err := svc.List(context.Background(), models.UserFilter{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	require.NotNil(t, pagination)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 42, pagination.TotalCount)
}

func TestUserServiceListUnknownRole(t *testing.T) {
	svc := newUserService(&mockUserRepo{})

	bad := models.UserRole("WIZARD")
	_, _, err := svc.List(context.Background(), models.UserFilter{Role: &bad})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestUserServiceSetApproval(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newUserService(repo)

	err := svc.SetApproval(context.Background(), "admin-1", "staff-1", models.ApprovalAuthorized)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalAuthorized, repo.approvals["staff-1"])
	require.NotEmpty(t, repo.auditLogs)
	assert.Equal(t, models.AuditActionApprovalChange, repo.auditLogs[0].Action)
}

func TestUserServiceSetApprovalUnknownState(t *testing.T) {
	svc := newUserService(&mockUserRepo{})

	err := svc.SetApproval(context.Background(), "admin-1", "staff-1", models.ApprovalState("MAYBE"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestUserServiceSetApprovalNotStaff(t *testing.T) {
	repo := &mockUserRepo{approvalErr: sql.ErrNoRows}
	svc := newUserService(repo)

	err := svc.SetApproval(context.Background(), "admin-1", "student-1", models.ApprovalAuthorized)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestUserServiceDelete(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newUserService(repo)

	err := svc.Delete(context.Background(), "admin-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1"}, repo.deleted)
}

func TestUserServiceDeleteSelf(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newUserService(repo)

	err := svc.Delete(context.Background(), "admin-1", "admin-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, repo.deleted)
}
