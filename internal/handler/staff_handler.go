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

// StaffHandler serves the staff triage endpoints.
type StaffHandler struct {
	complaints *service.ComplaintService
	statistics *service.StatisticsService
}

// NewStaffHandler creates a new handler.
func NewStaffHandler(complaints *service.ComplaintService, statistics *service.StatisticsService) *StaffHandler {
	return &StaffHandler{complaints: complaints, statistics: statistics}
}

// ListComplaints godoc
// @Summary List open complaints for triage
// @Tags Staff
// @Produce json
// @Param status query string false "Status filter"
// @Param type query string false "Category filter"
// @Param search query string false "Search by author, subject or category"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /staff/complaints [get]
func (h *StaffHandler) ListComplaints(c *gin.Context) {
	filter, err := complaintFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if filter.Status == nil {
		solved := models.StatusSolved
		filter.NotStatus = &solved
	}

	items, listErr := h.complaints.List(c.Request.Context(), filter)
	if listErr != nil {
		response.Error(c, listErr)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// ListSolved godoc
// @Summary List solved complaints
// @Tags Staff
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /staff/complaints/solved [get]
func (h *StaffHandler) ListSolved(c *gin.Context) {
	filter, err := complaintFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	solved := models.StatusSolved
	filter.Status = &solved
	filter.NotStatus = nil

	items, listErr := h.complaints.List(c.Request.Context(), filter)
	if listErr != nil {
		response.Error(c, listErr)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary View a complaint
// @Tags Staff
// @Produce json
// @Param id path string true "Complaint id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /staff/complaints/{id} [get]
func (h *StaffHandler) Get(c *gin.Context) {
	detail, err := h.complaints.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// UpdateStatus godoc
// @Summary Change complaint status
// @Description Staff may set UNSOLVED, PENDING or SOLVED
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path string true "Complaint id"
// @Param payload body models.UpdateStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /staff/complaints/{id}/status [patch]
func (h *StaffHandler) UpdateStatus(c *gin.Context) {
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

// Overview godoc
// @Summary Staff dashboard
// @Description Status totals and per-category breakdown
// @Tags Staff
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /staff/overview [get]
func (h *StaffHandler) Overview(c *gin.Context) {
	overview, err := h.statistics.StaffOverview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

func complaintFilterFromQuery(c *gin.Context) (models.ComplaintFilter, error) {
	filter := models.ComplaintFilter{
		Type:   c.Query("type"),
		Search: c.Query("search"),
	}

	if raw := c.Query("status"); raw != "" {
		status := models.ComplaintStatus(raw)
		if !status.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "unknown complaint status")
		}
		filter.Status = &status
	}
	if raw := c.Query("role"); raw != "" {
		role := models.UserRole(raw)
		if !role.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "unknown role")
		}
		filter.AuthorRole = &role
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
	return filter, nil
}
