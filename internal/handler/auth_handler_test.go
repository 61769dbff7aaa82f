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
	"golang.org/x/crypto/bcrypt"

	"github.com/campusdesk/complaint-api/internal/models"
	"github.com/campusdesk/complaint-api/internal/service"
	"github.com/campusdesk/complaint-api/pkg/response"
)

type authRepoStub struct {
	userByEmail *models.User
	created     *models.User
}

func (s *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return s.userByEmail, nil
}

func (s *authRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if s.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return s.userByEmail, nil
}

func (s *authRepoStub) Create(ctx context.Context, user *models.User) error {
	user.ID = "new-id"
	s.created = user
	return nil
}

func (s *authRepoStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (s *authRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return nil
}

func newAuthHandler(repo *authRepoStub) *AuthHandler {
	svc := service.NewAuthService(repo, nil, zap.NewNop(), service.AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: 24 * time.Hour,
	})
	return NewAuthHandler(svc)
}

func performJSON(t *testing.T, h gin.HandlerFunc, method, target string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, _ := http.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	h(c)
	return w
}

func TestAuthHandlerRegisterStaffNoToken(t *testing.T) {
	repo := &authRepoStub{}
	handler := newAuthHandler(repo)

	w := performJSON(t, handler.Register, http.MethodPost, "/auth/register", models.RegisterRequest{
		FirstName: "Ravi",
		LastName:  "Kumar",
		Email:     "ravi@example.com",
		Password:  "password",
		Role:      models.RoleStaff,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var res models.RegisterResponse
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Empty(t, res.AccessToken)
	require.NotNil(t, repo.created)
	assert.Equal(t, models.ApprovalPending, repo.created.ApprovalState)
}

func TestAuthHandlerRegisterInvalidBody(t *testing.T) {
	handler := newAuthHandler(&authRepoStub{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Register(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerLoginSuccess(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &authRepoStub{userByEmail: &models.User{
		ID: "u1", Email: "user@example.com", PasswordHash: string(hash),
		Role: models.RoleStudent, ApprovalState: models.ApprovalAuthorized,
	}}
	handler := newAuthHandler(repo)

	w := performJSON(t, handler.Login, http.MethodPost, "/auth/login", models.LoginRequest{
		Email:    "user@example.com",
		Password: "password",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")
}

func TestAuthHandlerLoginUnknownEmail(t *testing.T) {
	handler := newAuthHandler(&authRepoStub{})

	w := performJSON(t, handler.Login, http.MethodPost, "/auth/login", models.LoginRequest{
		Email:    "missing@example.com",
		Password: "password",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandlerLoginPendingStaff(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	handler := newAuthHandler(&authRepoStub{userByEmail: &models.User{
		ID: "s1", Email: "staff@example.com", PasswordHash: string(hash),
		Role: models.RoleStaff, ApprovalState: models.ApprovalPending,
	}})

	w := performJSON(t, handler.Login, http.MethodPost, "/auth/login", models.LoginRequest{
		Email:    "staff@example.com",
		Password: "password",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "APPROVAL_PENDING")
}

func TestAuthHandlerMeWithoutClaims(t *testing.T) {
	handler := newAuthHandler(&authRepoStub{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Request = req

	handler.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
