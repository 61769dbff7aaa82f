package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/complaint-api/internal/middleware"
	"github.com/campusdesk/complaint-api/internal/models"
)

func studentContext(t *testing.T, method, target string, body *bytes.Buffer, contentType string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if body == nil {
		body = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
	return c, w
}

func multipartComplaint(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("attachment", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestComplaintHandlerCreate(t *testing.T) {
	repo := &complaintRepoStub{}
	handler := NewComplaintHandler(newComplaintService(repo), 0)

	body, contentType := multipartComplaint(t, map[string]string{
		"subject":     "Broken fan",
		"type":        "Hostel",
		"description": "The ceiling fan in room 12 stopped working.",
	}, "", nil)

	c, w := studentContext(t, http.MethodPost, "/complaints", body, contentType)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"UNSOLVED"`)
}

func TestComplaintHandlerCreateWithAttachment(t *testing.T) {
	repo := &complaintRepoStub{}
	handler := NewComplaintHandler(newComplaintService(repo), 0)

	body, contentType := multipartComplaint(t, map[string]string{
		"subject":     "Water leak",
		"type":        "Hostel",
		"description": "Water leaking from the bathroom ceiling.",
	}, "leak.png", []byte("fake image bytes"))

	c, w := studentContext(t, http.MethodPost, "/complaints", body, contentType)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "attachment_key")
}

func TestComplaintHandlerCreateMissingFields(t *testing.T) {
	handler := NewComplaintHandler(newComplaintService(&complaintRepoStub{}), 0)

	body, contentType := multipartComplaint(t, map[string]string{"subject": "Only subject"}, "", nil)

	c, w := studentContext(t, http.MethodPost, "/complaints", body, contentType)
	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComplaintHandlerCreateAttachmentTooLarge(t *testing.T) {
	handler := NewComplaintHandler(newComplaintService(&complaintRepoStub{}), 16)

	body, contentType := multipartComplaint(t, map[string]string{
		"subject":     "Big file",
		"type":        "Hostel",
		"description": "Attachment should be rejected.",
	}, "big.bin", bytes.Repeat([]byte("x"), 64))

	c, w := studentContext(t, http.MethodPost, "/complaints", body, contentType)
	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComplaintHandlerGetOwnComplaint(t *testing.T) {
	repo := &complaintRepoStub{byID: &models.ComplaintListItem{Complaint: models.Complaint{ID: "c1", UserID: "student-1", Subject: "Broken fan"}}}
	handler := NewComplaintHandler(newComplaintService(repo), 0)

	c, w := studentContext(t, http.MethodGet, "/complaints/c1", nil, "")
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	handler.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Broken fan")
}

func TestComplaintHandlerGetForeignComplaintHidden(t *testing.T) {
	repo := &complaintRepoStub{byID: &models.ComplaintListItem{Complaint: models.Complaint{ID: "c1", UserID: "someone-else"}}}
	handler := NewComplaintHandler(newComplaintService(repo), 0)

	c, w := studentContext(t, http.MethodGet, "/complaints/c1", nil, "")
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComplaintHandlerListTabs(t *testing.T) {
	repo := &complaintRepoStub{}
	handler := NewComplaintHandler(newComplaintService(repo), 0)

	c, w := studentContext(t, http.MethodGet, "/complaints/unsolved", nil, "")
	handler.ListUnsolved(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.lastFilter.NotStatus)
	assert.Equal(t, models.StatusSolved, *repo.lastFilter.NotStatus)

	c, w = studentContext(t, http.MethodGet, "/complaints/solved", nil, "")
	handler.ListSolved(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.lastFilter.Status)
	assert.Equal(t, models.StatusSolved, *repo.lastFilter.Status)
}
