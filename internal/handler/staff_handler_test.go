package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusdesk/complaint-api/internal/middleware"
	"github.com/campusdesk/complaint-api/internal/models"
	"github.com/campusdesk/complaint-api/internal/service"
)

type complaintRepoStub struct {
	byID         *models.ComplaintListItem
	items        []models.ComplaintListItem
	comments     []models.Comment
	lastFilter   models.ComplaintFilter
	statusSet    *models.ComplaintStatus
	assigned     *string
	assignCalled bool
}

func (s *complaintRepoStub) Create(ctx context.Context, complaint *models.Complaint) error {
	return nil
}

func (s *complaintRepoStub) FindByID(ctx context.Context, id string) (*models.ComplaintListItem, error) {
	if s.byID == nil {
		return nil, sql.ErrNoRows
	}
	return s.byID, nil
}

func (s *complaintRepoStub) List(ctx context.Context, filter models.ComplaintFilter) ([]models.ComplaintListItem, error) {
	s.lastFilter = filter
	return s.items, nil
}

func (s *complaintRepoStub) UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) error {
	if s.byID == nil {
		return sql.ErrNoRows
	}
	s.statusSet = &status
	return nil
}

func (s *complaintRepoStub) UpdateAssignment(ctx context.Context, id string, staffID *string) error {
	if s.byID == nil {
		return sql.ErrNoRows
	}
	s.assigned = staffID
	s.assignCalled = true
	return nil
}

func (s *complaintRepoStub) Delete(ctx context.Context, id string) error {
	if s.byID == nil {
		return sql.ErrNoRows
	}
	return nil
}

func (s *complaintRepoStub) AddComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = "comment-1"
	s.comments = append(s.comments, *comment)
	return nil
}

func (s *complaintRepoStub) ListComments(ctx context.Context, complaintID string) ([]models.Comment, error) {
	return s.comments, nil
}

func (s *complaintRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return nil
}

type attachmentStoreStub struct{}

func (attachmentStoreStub) Save(filename string, data []byte) (string, error) { return filename, nil }
func (attachmentStoreStub) Delete(filename string) error                      { return nil }
func (attachmentStoreStub) Path(filename string) string                       { return "/data/" + filename }

type attachmentSignerStub struct{}

func (attachmentSignerStub) Generate(id, relPath string) (string, time.Time, error) {
	return "token-" + id, time.Now().Add(time.Hour), nil
}

func (attachmentSignerStub) Parse(token string, allowExpired bool) (string, string, time.Time, error) {
	return "c1", "c1/file.png", time.Now().Add(time.Hour), nil
}

func newComplaintService(repo *complaintRepoStub) *service.ComplaintService {
	return service.NewComplaintService(repo, attachmentStoreStub{}, attachmentSignerStub{}, nil, zap.NewNop())
}

func staffContext(t *testing.T, method, target string, payload interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "staff-1", Role: models.RoleStaff})
	return c, w
}

func TestStaffHandlerListDefaultsToOpen(t *testing.T) {
	repo := &complaintRepoStub{items: []models.ComplaintListItem{{Complaint: models.Complaint{ID: "c1"}}}}
	handler := NewStaffHandler(newComplaintService(repo), nil)

	c, w := staffContext(t, http.MethodGet, "/staff/complaints", nil)
	handler.ListComplaints(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.lastFilter.NotStatus)
	assert.Equal(t, models.StatusSolved, *repo.lastFilter.NotStatus)
	assert.Nil(t, repo.lastFilter.Status)
}

func TestStaffHandlerListWithStatusFilter(t *testing.T) {
	repo := &complaintRepoStub{}
	handler := NewStaffHandler(newComplaintService(repo), nil)

	c, w := staffContext(t, http.MethodGet, "/staff/complaints?status=PENDING", nil)
	handler.ListComplaints(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.lastFilter.Status)
	assert.Equal(t, models.StatusPending, *repo.lastFilter.Status)
	assert.Nil(t, repo.lastFilter.NotStatus)
}

func TestStaffHandlerListUnknownStatus(t *testing.T) {
	handler := NewStaffHandler(newComplaintService(&complaintRepoStub{}), nil)

	c, w := staffContext(t, http.MethodGet, "/staff/complaints?status=BOGUS", nil)
	handler.ListComplaints(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStaffHandlerListSolvedForcesSolved(t *testing.T) {
	repo := &complaintRepoStub{}
	handler := NewStaffHandler(newComplaintService(repo), nil)

	c, w := staffContext(t, http.MethodGet, "/staff/complaints/solved", nil)
	handler.ListSolved(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.lastFilter.Status)
	assert.Equal(t, models.StatusSolved, *repo.lastFilter.Status)
}

func TestStaffHandlerUpdateStatusAllowed(t *testing.T) {
	repo := &complaintRepoStub{byID: &models.ComplaintListItem{Complaint: models.Complaint{ID: "c1", Status: models.StatusUnsolved}}}
	handler := NewStaffHandler(newComplaintService(repo), nil)

	c, w := staffContext(t, http.MethodPatch, "/staff/complaints/c1/status", models.UpdateStatusRequest{Status: models.StatusSolved})
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	handler.UpdateStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.statusSet)
	assert.Equal(t, models.StatusSolved, *repo.statusSet)
}

func TestStaffHandlerUpdateStatusRestricted(t *testing.T) {
	repo := &complaintRepoStub{byID: &models.ComplaintListItem{Complaint: models.Complaint{ID: "c1", Status: models.StatusUnsolved}}}
	handler := NewStaffHandler(newComplaintService(repo), nil)

	c, w := staffContext(t, http.MethodPatch, "/staff/complaints/c1/status", models.UpdateStatusRequest{Status: models.StatusInProgress})
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	handler.UpdateStatus(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, repo.statusSet)
}

func TestStaffHandlerGetNotFound(t *testing.T) {
	handler := NewStaffHandler(newComplaintService(&complaintRepoStub{}), nil)

	c, w := staffContext(t, http.MethodGet, "/staff/complaints/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
