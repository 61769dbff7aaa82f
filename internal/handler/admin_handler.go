package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/complaint-api/internal/models"
	"github.com/campusdesk/complaint-api/internal/service"
	appErrors "github.com/campusdesk/complaint-api/pkg/errors"
	"github.com/campusdesk/complaint-api/pkg/response"
)

// AdminHandler serves the admin complaint and account management endpoints.
type AdminHandler struct {
	complaints  *service.ComplaintService
	assignments *service.AssignmentService
	users       *service.UserService
	statistics  *service.StatisticsService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(complaints *service.ComplaintService, assignments *service.AssignmentService, users *service.UserService, statistics *service.StatisticsService) *AdminHandler {
	return &AdminHandler{complaints: complaints, assignments: assignments, users: users, statistics: statistics}
}

// ListComplaints godoc
// @Summary List all complaints
// @Tags Admin
// @Produce json
// @Param status query string false "Status filter"
// @Param type query string false "Category filter"
// @Param role query string false "Submitter role filter"
// @Param search query string false "Search"
// @Success 200 {object} response.Envelope
// @Router /admin/complaints [get]
func (h *AdminHandler) ListComplaints(c *gin.Context) {
	filter, err := complaintFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	items, listErr := h.complaints.List(c.Request.Context(), filter)
	if listErr != nil {
		response.Error(c, listErr)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// GetComplaint godoc
// @Summary Get a complaint with its comment thread
// @Tags Admin
// @Produce json
// @Param id path string true "Complaint id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/complaints/{id} [get]
func (h *AdminHandler) GetComplaint(c *gin.Context) {
	detail, err := h.complaints.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// UpdateComplaintStatus godoc
// @Summary Change complaint status
// @Description Admin may set any valid status
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Complaint id"
// @Param payload body models.UpdateStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/complaints/{id}/status [patch]
func (h *AdminHandler) UpdateComplaintStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	if err := h.complaints.UpdateStatus(c.Request.Context(), claims, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": c.Param("id"), "status": req.Status}, nil)
}

// AssignComplaint godoc
// @Summary Assign a complaint to a staff member
// @Description A null staff_id clears the assignment
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Complaint id"
// @Param payload body models.AssignComplaintRequest true "Assignment"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/complaints/{id}/assign [patch]
func (h *AdminHandler) AssignComplaint(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.AssignComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	if err := h.assignments.Assign(c.Request.Context(), claims.UserID, c.Param("id"), req.StaffID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": c.Param("id"), "staff_id": req.StaffID}, nil)
}

// AddComment godoc
// @Summary Add an admin comment
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Complaint id"
// @Param payload body models.AddCommentRequest true "Comment body"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/complaints/{id}/comments [post]
func (h *AdminHandler) AddComment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}

	comment, err := h.complaints.AddComment(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}

// DeleteComplaint godoc
// @Summary Delete a complaint
// @Tags Admin
// @Param id path string true "Complaint id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/complaints/{id} [delete]
func (h *AdminHandler) DeleteComplaint(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.complaints.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListUsers godoc
// @Summary List accounts
// @Tags Admin
// @Produce json
// @Param role query string false "Role filter"
// @Param search query string false "Search email or name"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	filter := models.UserFilter{
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("role"); raw != "" {
		role := models.UserRole(raw)
		filter.Role = &role
	}
	if raw := c.Query("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			filter.Page = page
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		if pageSize, err := strconv.Atoi(raw); err == nil {
			filter.PageSize = pageSize
		}
	}

	users, pagination, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// GetUser godoc
// @Summary Get an account
// @Tags Admin
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{id} [get]
func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// SetApproval godoc
// @Summary Approve or reject a staff account
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Staff user id"
// @Param payload body object true "Approval state"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{id}/approval [patch]
func (h *AdminHandler) SetApproval(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		ApprovalState models.ApprovalState `json:"approval_state" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid approval payload"))
		return
	}

	if err := h.users.SetApproval(c.Request.Context(), claims.UserID, c.Param("id"), payload.ApprovalState); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": c.Param("id"), "approval_state": payload.ApprovalState}, nil)
}

// DeleteUser godoc
// @Summary Delete an account
// @Tags Admin
// @Param id path string true "User id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.users.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AuthorizedStaff godoc
// @Summary List authorized staff for assignment
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/authorized-staff [get]
func (h *AdminHandler) AuthorizedStaff(c *gin.Context) {
	staff, err := h.assignments.AuthorizedStaff(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, staff, nil)
}

// Dashboard godoc
// @Summary Admin dashboard
// @Description Headline counters and the most recent complaints
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.statistics.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}
