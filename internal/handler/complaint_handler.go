package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/complaint-api/internal/models"
	"github.com/campusdesk/complaint-api/internal/service"
	appErrors "github.com/campusdesk/complaint-api/pkg/errors"
	"github.com/campusdesk/complaint-api/pkg/response"
)

// ComplaintHandler serves the student-facing complaint endpoints.
type ComplaintHandler struct {
	service       *service.ComplaintService
	maxAttachment int64
}

// NewComplaintHandler creates a new handler.
func NewComplaintHandler(svc *service.ComplaintService, maxAttachment int64) *ComplaintHandler {
	if maxAttachment <= 0 {
		maxAttachment = 5 << 20
	}
	return &ComplaintHandler{service: svc, maxAttachment: maxAttachment}
}

// Create godoc
// @Summary Submit a complaint
// @Description Submit a new complaint with an optional attachment (multipart form)
// @Tags Complaints
// @Accept mpfd
// @Produce json
// @Param subject formData string true "Subject"
// @Param type formData string true "Category"
// @Param description formData string true "Description"
// @Param attachment formData file false "Attachment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /complaints [post]
func (h *ComplaintHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req := models.CreateComplaintRequest{
		Subject:     c.PostForm("subject"),
		Type:        c.PostForm("type"),
		Description: c.PostForm("description"),
	}

	var attachment []byte
	var attachmentName string
	if file, err := c.FormFile("attachment"); err == nil && file != nil {
		if file.Size > h.maxAttachment {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "attachment exceeds the size limit"))
			return
		}
		src, err := file.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable attachment"))
			return
		}
		defer src.Close() //nolint:errcheck
		attachment, err = io.ReadAll(io.LimitReader(src, h.maxAttachment+1))
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable attachment"))
			return
		}
		if int64(len(attachment)) > h.maxAttachment {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "attachment exceeds the size limit"))
			return
		}
		attachmentName = file.Filename
	}

	complaint, err := h.service.Create(c.Request.Context(), claims.UserID, req, attachmentName, attachment)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, complaint)
}

// ListUnsolved godoc
// @Summary List own open complaints
// @Tags Complaints
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /complaints/unsolved [get]
func (h *ComplaintHandler) ListUnsolved(c *gin.Context) {
	h.listOwn(c, false)
}

// ListSolved godoc
// @Summary List own solved complaints
// @Tags Complaints
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /complaints/solved [get]
func (h *ComplaintHandler) ListSolved(c *gin.Context) {
	h.listOwn(c, true)
}

func (h *ComplaintHandler) listOwn(c *gin.Context, solved bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	items, err := h.service.ListOwn(c.Request.Context(), claims.UserID, solved)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get one of your complaints
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /complaints/{id} [get]
func (h *ComplaintHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	// Students may only read their own complaints; staff and admin see all.
	if claims.Role == models.RoleStudent && detail.UserID != claims.UserID {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "complaint not found"))
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// DownloadAttachment godoc
// @Summary Download a complaint attachment
// @Description Serves an attachment referenced by a signed token
// @Tags Complaints
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /attachments/{token} [get]
func (h *ComplaintHandler) DownloadAttachment(c *gin.Context) {
	path, err := h.service.ResolveAttachment(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.File(path)
}
