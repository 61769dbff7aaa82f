package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusdesk/complaint-api/internal/middleware"
	"github.com/campusdesk/complaint-api/internal/models"
	"github.com/campusdesk/complaint-api/internal/service"
)

type userRepoStub struct {
	users       []models.User
	byID        *models.User
	staff       []models.StaffOption
	authorized  map[string]bool
	approvalSet *models.ApprovalState
	deletedID   string
}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if s.byID == nil {
		return nil, sql.ErrNoRows
	}
	return s.byID, nil
}

func (s *userRepoStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	return s.users, len(s.users), nil
}

func (s *userRepoStub) UpdateApproval(ctx context.Context, id string, state models.ApprovalState) error {
	if s.byID == nil {
		return sql.ErrNoRows
	}
	s.approvalSet = &state
	return nil
}

func (s *userRepoStub) Delete(ctx context.Context, id string) error {
	if s.byID == nil {
		return sql.ErrNoRows
	}
	s.deletedID = id
	return nil
}

func (s *userRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return nil
}

func (s *userRepoStub) AuthorizedStaff(ctx context.Context) ([]models.StaffOption, error) {
	return s.staff, nil
}

func (s *userRepoStub) IsAuthorizedStaff(ctx context.Context, id string) (bool, error) {
	return s.authorized[id], nil
}

func newAdminHandler(complaints *complaintRepoStub, users *userRepoStub) *AdminHandler {
	return NewAdminHandler(
		newComplaintService(complaints),
		service.NewAssignmentService(complaints, users, zap.NewNop()),
		service.NewUserService(users, nil, zap.NewNop()),
		nil,
	)
}

func adminContext(t *testing.T, method, target string, payload interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	c, w := staffContext(t, method, target, payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	return c, w
}

func TestAdminHandlerAssignComplaint(t *testing.T) {
	staffID := "staff-9"
	complaints := &complaintRepoStub{byID: &models.ComplaintListItem{Complaint: models.Complaint{ID: "c1"}}}
	users := &userRepoStub{authorized: map[string]bool{staffID: true}}
	handler := newAdminHandler(complaints, users)

	c, w := adminContext(t, http.MethodPatch, "/admin/complaints/c1/assign", models.AssignComplaintRequest{StaffID: &staffID})
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	handler.AssignComplaint(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, complaints.assigned)
	assert.Equal(t, staffID, *complaints.assigned)
}

func TestAdminHandlerAssignUnauthorizedStaff(t *testing.T) {
	staffID := "pending-staff"
	complaints := &complaintRepoStub{byID: &models.ComplaintListItem{Complaint: models.Complaint{ID: "c1"}}}
	handler := newAdminHandler(complaints, &userRepoStub{authorized: map[string]bool{}})

	c, w := adminContext(t, http.MethodPatch, "/admin/complaints/c1/assign", models.AssignComplaintRequest{StaffID: &staffID})
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	handler.AssignComplaint(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, complaints.assignCalled)
}

func TestAdminHandlerUnassignComplaint(t *testing.T) {
	current := "staff-9"
	complaints := &complaintRepoStub{byID: &models.ComplaintListItem{Complaint: models.Complaint{ID: "c1", AssignedTo: &current}}}
	handler := newAdminHandler(complaints, &userRepoStub{})

	c, w := adminContext(t, http.MethodPatch, "/admin/complaints/c1/assign", models.AssignComplaintRequest{StaffID: nil})
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	handler.AssignComplaint(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, complaints.assignCalled)
	assert.Nil(t, complaints.assigned)
}

func TestAdminHandlerUpdateStatusAnyValue(t *testing.T) {
	complaints := &complaintRepoStub{byID: &models.ComplaintListItem{Complaint: models.Complaint{ID: "c1", Status: models.StatusUnsolved}}}
	handler := newAdminHandler(complaints, &userRepoStub{})

	c, w := adminContext(t, http.MethodPatch, "/admin/complaints/c1/status", models.UpdateStatusRequest{Status: models.StatusInProgress})
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	handler.UpdateComplaintStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, complaints.statusSet)
	assert.Equal(t, models.StatusInProgress, *complaints.statusSet)
}

func TestAdminHandlerAddComment(t *testing.T) {
	complaints := &complaintRepoStub{byID: &models.ComplaintListItem{Complaint: models.Complaint{ID: "c1"}}}
	handler := newAdminHandler(complaints, &userRepoStub{})

	c, w := adminContext(t, http.MethodPost, "/admin/complaints/c1/comments", models.AddCommentRequest{Body: "looking into it"})
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	handler.AddComment(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, complaints.comments, 1)
	assert.Equal(t, "admin-1", complaints.comments[0].AdminID)
}

func TestAdminHandlerDeleteComplaint(t *testing.T) {
	complaints := &complaintRepoStub{byID: &models.ComplaintListItem{Complaint: models.Complaint{ID: "c1"}}}
	handler := newAdminHandler(complaints, &userRepoStub{})

	c, w := adminContext(t, http.MethodDelete, "/admin/complaints/c1", nil)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	handler.DeleteComplaint(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAdminHandlerSetApproval(t *testing.T) {
	users := &userRepoStub{byID: &models.User{ID: "staff-2", Role: models.RoleStaff}}
	handler := newAdminHandler(&complaintRepoStub{}, users)

	c, w := adminContext(t, http.MethodPatch, "/admin/users/staff-2/approval", gin.H{"approval_state": "AUTHORIZED"})
	c.Params = gin.Params{{Key: "id", Value: "staff-2"}}
	handler.SetApproval(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, users.approvalSet)
	assert.Equal(t, models.ApprovalAuthorized, *users.approvalSet)
}

func TestAdminHandlerSetApprovalUnknownState(t *testing.T) {
	users := &userRepoStub{byID: &models.User{ID: "staff-2", Role: models.RoleStaff}}
	handler := newAdminHandler(&complaintRepoStub{}, users)

	c, w := adminContext(t, http.MethodPatch, "/admin/users/staff-2/approval", gin.H{"approval_state": "MAYBE"})
	c.Params = gin.Params{{Key: "id", Value: "staff-2"}}
	handler.SetApproval(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, users.approvalSet)
}

func TestAdminHandlerDeleteOwnAccount(t *testing.T) {
	users := &userRepoStub{byID: &models.User{ID: "admin-1", Role: models.RoleAdmin}}
	handler := newAdminHandler(&complaintRepoStub{}, users)

	c, w := adminContext(t, http.MethodDelete, "/admin/users/admin-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "admin-1"}}
	handler.DeleteUser(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, users.deletedID)
}

func TestAdminHandlerAuthorizedStaff(t *testing.T) {
	users := &userRepoStub{staff: []models.StaffOption{{ID: "s1", FullName: "Asha Verma"}}}
	handler := newAdminHandler(&complaintRepoStub{}, users)

	c, w := adminContext(t, http.MethodGet, "/admin/authorized-staff", nil)
	handler.AuthorizedStaff(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Asha Verma")
}

func TestAdminHandlerListUsers(t *testing.T) {
	users := &userRepoStub{users: []models.User{{ID: "u1", Email: "one@example.com"}}}
	handler := newAdminHandler(&complaintRepoStub{}, users)

	c, w := adminContext(t, http.MethodGet, "/admin/users?role=STUDENT&page=2", nil)
	handler.ListUsers(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "one@example.com")
	assert.Contains(t, w.Body.String(), `"pagination"`)
}
